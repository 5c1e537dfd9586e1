package hydrobricks

// ModelSpec is the declarative model specification (§6 "Model
// specification"), normally parsed from TOML by io/spec.go. It names
// every brick, process, splitter, and the log selection the graph
// builder (model.go) materialises into a *Graph.
type ModelSpec struct {
	Solver    string
	Timer     TimerSpec
	LandCovers []LandCoverSpec
	Bricks    []BrickSpec
	Splitters []SplitterSpec
	Logging   LoggingSpec
}

// TimerSpec declares the simulation's date range and step size.
type TimerSpec struct {
	Start    string // ISO date, "YYYY-MM-DD"
	End      string
	Step     int
	StepUnit string // minute | hour | day | week
}

// LandCoverSpec names one of the basin's land-cover types and the
// brick kind it instantiates (ground -> generic surface, glacier ->
// glacier). No snowpack is created automatically; snowpacks are
// declared as bricks like any other.
type LandCoverSpec struct {
	Name string
	Kind string // ground | glacier | vegetation | urban
}

// BrickSpec declares one brick: its kind, which level it belongs to
// ("subbasin" or an HRU's land-cover slot), capacity/infinite flags,
// inline parameters, forcing bindings, its processes, and log
// selections.
type BrickSpec struct {
	Name     string
	Kind     string // storage | land_cover | snowpack | glacier | generic_surface | vegetation | urban
	Level    string // "subbasin" or "" (meaning: instantiated once per HRU)
	Capacity float64
	Bounded  bool
	Infinite bool

	// LandCoverOf names the land-cover brick this surface component is
	// a child of, when Kind is snowpack/glacier and it must inherit a
	// land cover's fraction.
	LandCoverOf string
	// NoMeltWhenSnowCover applies only to glacier bricks.
	NoMeltWhenSnowCover bool

	// Processes are the brick's processes. Each ProcessSpec carries
	// inline scalar Params read directly by buildProcess, and ParamRefs
	// naming a ParameterSet scalar to pull the initial value from and
	// register for later ParametersUpdate mutation (or, for the monthly
	// degree-day melt's "factor", a keyed variable looked up per month
	// inside the process).
	Processes []ProcessSpec
	Log       []string // container/flux items to log, e.g. "content", "ice"

	// ForcingBindings attaches a forcing directly to this brick's
	// primary container (role -> Variable name), bypassing any process
	// or splitter — the precipitation-into-reservoir case.
	ForcingBindings map[string]string
}

// Forcings returns the brick's direct forcing bindings, nil-safe.
func (b BrickSpec) Forcings() map[string]string { return b.ForcingBindings }

// ProcessOutputSpec declares one output flux of a process.
type ProcessOutputSpec struct {
	Target        string // brick/splitter name, or "outlet"
	FluxType      string // water | snow | ice
	Instantaneous bool
	Static        bool
}

// ProcessSpec declares one process attached to its owning BrickSpec.
type ProcessSpec struct {
	Name      string
	Kind      string // see process_*.go constructors
	Params    map[string]float64
	ParamRefs map[string]string // field name -> ParameterSet scalar/keyed name
	Forcings  map[string]string // role (e.g. "temperature") -> Variable name
	Target    string            // downstream brick name, for "needs target" processes
	Outputs   []ProcessOutputSpec
	Log       []string // output-flux names to log
}

// SplitterSpec declares one splitter.
type SplitterSpec struct {
	Name     string
	Kind     string // rain_snow | multi_flux
	T0, T1   float64
	Inputs   []string // flux/forcing role names, kind-specific
	Outputs  []string // target names; for rain_snow: [rain_target, snow_target]
	FluxType string
}

// LoggingSpec selects the result-sink verbosity (supplement #3).
type LoggingSpec struct {
	IncludeDistributed bool
}
