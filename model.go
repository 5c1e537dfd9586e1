package hydrobricks

import "strings"

// Graph is the materialised model graph (§4.8): a sub-basin of HRUs
// with their bricks, processes, splitters, and fluxes wired together,
// the resolved forcing cursors, the partition of bricks into
// solver-handled vs direct-apply, and the resolved log pointer sets.
// It is built once before time-stepping begins and mutated only by
// actions between steps.
type Graph struct {
	SubBasin *SubBasin
	Params   *ParameterSet

	// ParamBindings exposes live pointers to process fields that were
	// wired from a named ParameterSet entry (ProcessSpec.ParamRefs),
	// letting the ParametersUpdate action mutate a running process
	// without rebuilding the graph (SPEC_FULL supplement #2).
	ParamBindings map[string]*float64

	forcingSeries []*ForcingSeries
	forcingFluxes []*ForcingFlux

	DirectBricks []Brick
	SolverBricks []Brick
	solverProcesses []Process

	BasinLog *LogSet
	HRULogs  map[int]*LogSet
}

// ForcingSeriesAll returns every forcing cursor the builder resolved,
// for the processor to advance once per step.
func (g *Graph) ForcingSeriesAll() []*ForcingSeries { return g.forcingSeries }

// ForcingFluxes returns every brick-level forcing flux the builder
// wired directly into a container's static accumulator.
func (g *Graph) ForcingFluxes() []*ForcingFlux { return g.forcingFluxes }

// buildCtx carries the builder's working state across its five passes
// (§4.8): name-keyed lookup tables and the resolved graph under
// construction, mirroring the teacher's staged-construction builders
// (vargrid.go's addCells/InsertCell/neighborInfo passes).
type buildCtx struct {
	spec    *ModelSpec
	basin   *HydroUnits
	source  ForcingsSource
	timer   *Timer
	graph   *Graph
}

// BuildGraph materialises bricks/fluxes/splitters from a parsed model
// specification and hydro-units source, implementing the graph
// builder's five-step algorithm (§4.8).
func BuildGraph(spec *ModelSpec, basin *HydroUnits, source ForcingsSource, params *ParameterSet, timer *Timer) (*Graph, error) {
	if err := basin.Validate(); err != nil {
		return nil, err
	}

	g := &Graph{
		SubBasin:      NewSubBasin(),
		Params:        params,
		ParamBindings: make(map[string]*float64),
		BasinLog:      newLogSet(),
		HRULogs:       make(map[int]*LogSet),
	}
	ctx := &buildCtx{spec: spec, basin: basin, source: source, timer: timer, graph: g}

	// Step 1: instantiate sub-basin bricks, then every HRU's bricks in
	// builder order (surface components, then land covers, then the
	// remaining bricks), tracking the solver-handled partition as we go.
	if err := ctx.instantiateSubBasinBricks(); err != nil {
		return nil, err
	}
	for _, u := range basin.Units {
		hru := NewHRU(u.ID, u.Area, u.Elevation)
		hru.SetProperty("slope", u.Slope, "fraction")
		hru.SetProperty("aspect", u.Aspect, "degrees")
		g.SubBasin.AddHRU(hru)
		if err := ctx.instantiateHRUBricks(hru, u); err != nil {
			return nil, err
		}
	}

	// Step 2+3+4: processes, outputs/fluxes, target linking, forcings.
	if err := ctx.wireSubBasinProcesses(); err != nil {
		return nil, err
	}
	for _, hru := range g.SubBasin.HRUs() {
		if err := ctx.wireHRUProcesses(hru); err != nil {
			return nil, err
		}
		if err := ctx.wireHRUSplitters(hru); err != nil {
			return nil, err
		}
	}

	// Step 5: resolve the log pointer set.
	if err := ctx.resolveLogs(); err != nil {
		return nil, err
	}

	return g, nil
}

func brickSpecsAtLevel(spec *ModelSpec, level string) []BrickSpec {
	var out []BrickSpec
	for _, b := range spec.Bricks {
		if b.Level == level {
			out = append(out, b)
		}
	}
	return out
}

func (c *buildCtx) instantiateSubBasinBricks() error {
	for _, bs := range brickSpecsAtLevel(c.spec, "subbasin") {
		b, err := newBrickFromSpec(bs)
		if err != nil {
			return err
		}
		c.graph.SubBasin.AddBrick(b)
		c.graph.SolverBricks = append(c.graph.SolverBricks, b)
		c.graph.solverProcesses = append(c.graph.solverProcesses, b.Processes()...)
	}
	return nil
}

// instantiateHRUBricks builds one HRU's bricks in the order step 1
// names: snowpack, then glacier (both "surface component"), then land
// cover (wiring Children for any surface component whose LandCoverOf
// names it), then the remaining per-HRU bricks.
func (c *buildCtx) instantiateHRUBricks(hru *HRU, u HRUUnit) error {
	perHRU := brickSpecsAtLevel(c.spec, "")
	solverSeen := false

	addBrick := func(bs BrickSpec, b Brick) {
		hru.AddBrick(b)
		solverHandled := bs.Kind == "storage" || solverSeen
		if bs.Kind == "storage" {
			solverSeen = true
		}
		if solverHandled {
			c.graph.SolverBricks = append(c.graph.SolverBricks, b)
			c.graph.solverProcesses = append(c.graph.solverProcesses, b.Processes()...)
		} else {
			c.graph.DirectBricks = append(c.graph.DirectBricks, b)
		}
	}

	surfaceByName := make(map[string]Brick)
	for _, bs := range perHRU {
		if bs.Kind != "snowpack" {
			continue
		}
		b, err := newBrickFromSpec(bs)
		if err != nil {
			return err
		}
		surfaceByName[bs.Name] = b
		addBrick(bs, b)
	}
	for _, bs := range perHRU {
		if bs.Kind != "glacier" {
			continue
		}
		b, err := newBrickFromSpec(bs)
		if err != nil {
			return err
		}
		surfaceByName[bs.Name] = b
		addBrick(bs, b)
	}
	for _, bs := range perHRU {
		if bs.Kind != "land_cover" {
			continue
		}
		fraction, ok := u.Fractions[bs.Name]
		if !ok {
			return newErr(KindInvalidArgument, "model:build",
				"HRU has no fraction declared for land cover "+bs.Name)
		}
		lc := NewLandCoverBrick(bs.Name, fraction)
		for _, sb := range perHRU {
			if sb.LandCoverOf == bs.Name {
				if child, ok := surfaceByName[sb.Name]; ok {
					lc.AddChild(child)
					if gl, ok := child.(*GlacierBrick); ok {
						for _, sib := range perHRU {
							if sib.Kind == "snowpack" && sib.LandCoverOf == bs.Name {
								if sp, ok := surfaceByName[sib.Name].(*SnowpackBrick); ok {
									gl.PairedSnowpack = sp
								}
							}
						}
					}
				}
			}
		}
		addBrick(bs, lc)
	}
	for _, bs := range perHRU {
		switch bs.Kind {
		case "snowpack", "glacier", "land_cover":
			continue
		}
		b, err := newBrickFromSpec(bs)
		if err != nil {
			return err
		}
		addBrick(bs, b)
	}
	return nil
}

func newBrickFromSpec(bs BrickSpec) (Brick, error) {
	switch bs.Kind {
	case "storage":
		b := NewStorageBrick(bs.Name)
		applyCapacity(b.Water(), bs)
		return b, nil
	case "snowpack":
		return NewSnowpackBrick(bs.Name), nil
	case "glacier":
		b := NewGlacierBrick(bs.Name)
		b.NoMeltWhenSnowCover = bs.NoMeltWhenSnowCover
		if bs.Bounded {
			b.Ice().SetInfinite(false)
			applyCapacity(b.Ice(), bs)
		}
		return b, nil
	case "land_cover":
		return nil, newErr(KindConceptionIssue, "model:build", "land cover bricks need a fraction, build via instantiateHRUBricks")
	case "generic_surface":
		b := NewGenericSurfaceBrick(bs.Name, BrickGenericSurface)
		applyCapacity(b.Water(), bs)
		return b, nil
	case "vegetation":
		b := NewGenericSurfaceBrick(bs.Name, BrickVegetation)
		applyCapacity(b.Water(), bs)
		return b, nil
	case "urban":
		b := NewGenericSurfaceBrick(bs.Name, BrickUrban)
		applyCapacity(b.Water(), bs)
		return b, nil
	default:
		return nil, newErr(KindInvalidArgument, "model:build", "unrecognised brick kind: "+bs.Kind)
	}
}

func applyCapacity(c *Container, bs BrickSpec) {
	if bs.Infinite {
		c.SetInfinite(true)
		return
	}
	if bs.Bounded {
		c.SetCapacity(bs.Capacity)
	}
}

// findBrick locates a brick by name, searching the HRU first (if
// non-nil) then the sub-basin.
func (c *buildCtx) findBrick(hru *HRU, name string) (Brick, bool) {
	if hru != nil {
		if b, ok := hru.Brick(name); ok {
			return b, true
		}
	}
	return c.graph.SubBasin.Brick(name)
}

func (c *buildCtx) findSplitter(hru *HRU, name string) (Splitter, bool) {
	if hru == nil {
		return nil, false
	}
	return hru.Splitter(name)
}

// containerOf resolves a brick's named container by the suffix used in
// flux-target and log declarations ("water"/"snow"/"ice", or "" for the
// brick's primary container). An unrecognised suffix, or one that names
// a container the brick doesn't have (e.g. "snow" on a non-snowpack
// brick), is an error rather than a silent fall-back to the primary
// container; callers that want to log an arbitrary struct field
// instead of a container fall back to fieldByTagName on this error.
func containerOf(b Brick, suffix string) (*Container, error) {
	switch suffix {
	case "", "content", "water":
		return b.Containers()[0], nil
	case "snow":
		if sp, ok := b.(*SnowpackBrick); ok {
			return sp.Snow(), nil
		}
		return nil, newErr(KindConceptionIssue, "model:build",
			"brick "+b.Name()+" has no snow container")
	case "ice":
		if gl, ok := b.(*GlacierBrick); ok {
			return gl.Ice(), nil
		}
		return nil, newErr(KindConceptionIssue, "model:build",
			"brick "+b.Name()+" has no ice container")
	default:
		return nil, newErr(KindConceptionIssue, "model:build",
			"brick "+b.Name()+" has no container named "+suffix)
	}
}

func (c *buildCtx) wireSubBasinProcesses() error {
	perSubBasin := brickSpecsAtLevel(c.spec, "subbasin")
	for _, bs := range perSubBasin {
		b, _ := c.graph.SubBasin.Brick(bs.Name)
		if err := c.wireBrickProcesses(nil, b, bs); err != nil {
			return err
		}
	}
	return nil
}

func (c *buildCtx) wireHRUProcesses(hru *HRU) error {
	for _, bs := range brickSpecsAtLevel(c.spec, "") {
		b, ok := hru.Brick(bs.Name)
		if !ok {
			continue
		}
		if err := c.wireBrickProcesses(hru, b, bs); err != nil {
			return err
		}
	}
	return nil
}

// wireBrickProcesses is steps 2-4 of the builder for one brick: build
// each declared process, construct its output fluxes by resolving
// each target name, link "needs target" processes, and attach forcing
// bindings (brick-level forcing fluxes plus per-process forcing
// cursors).
func (c *buildCtx) wireBrickProcesses(hru *HRU, b Brick, bs BrickSpec) error {
	for _, fs := range bs.Processes {
		// Melt draws from a snowpack's snow or a glacier's ice, and
		// snow-to-ice transformation from a snowpack's snow; every other
		// process draws from the brick's primary container.
		container := b.Containers()[0]
		switch fs.Kind {
		case "degree_day_melt", "monthly_degree_day_melt", "degree_day_radiation_melt":
			switch v := b.(type) {
			case *SnowpackBrick:
				container = v.Snow()
			case *GlacierBrick:
				container = v.Ice()
			}
		case "constant_snow_to_ice", "swat_snow_to_ice":
			if sp, ok := b.(*SnowpackBrick); ok {
				container = sp.Snow()
			}
		}

		p, err := c.buildProcess(hru, container, fs)
		if err != nil {
			return err
		}
		b.AddProcess(p)

		for _, out := range fs.Outputs {
			flux, err := c.buildFlux(hru, b, p, out)
			if err != nil {
				return err
			}
			p.AddOutput(flux)
			container.AttachOutgoing(flux)
			if _, ok := p.(*OverflowOutflow); ok {
				container.SetOverflow(flux)
			}
		}

		if p.NeedsTarget() {
			targetBrick, ok := c.findBrick(hru, fs.Target)
			if !ok {
				return newErr(KindConceptionIssue, "model:build",
					"process "+fs.Name+" needs target brick "+fs.Target+" which was not found")
			}
			targetContainer, err := containerOf(targetBrick, "")
			if err != nil {
				return err
			}
			if err := p.LinkTarget(targetContainer); err != nil {
				return err
			}
		}
	}
	return nil
}

// buildFlux resolves one process output's target and constructs the
// matching flux variant, attaching it to the target container's
// incoming-flux bookkeeping and computing its weighting.
func (c *buildCtx) buildFlux(hru *HRU, sourceBrick Brick, p Process, out ProcessOutputSpec) (Flux, error) {
	material, err := parseMaterial(out.FluxType)
	if err != nil {
		return nil, err
	}
	name := p.Name() + "->" + out.Target
	weight := sourceWeight(hru, sourceBrick)
	// A flux leaving an HRU for the sub-basin level (the outlet or a
	// sub-basin brick) also carries the HRU's share of the basin area.
	areaShare := 1.0
	if hru != nil && c.graph.SubBasin.Area() > 0 {
		areaShare = hru.Area / c.graph.SubBasin.Area()
	}

	if out.Target == "outlet" {
		f := NewToOutletFlux(name, material)
		f.SetWeight(weight * areaShare)
		c.graph.SubBasin.AddOutlet(f)
		return f, nil
	}

	if sp, ok := c.findSplitter(hru, out.Target); ok {
		f := NewSimpleFlux(name, material)
		f.SetWeight(weight)
		wireSplitterInput(sp, f)
		return f, nil
	}

	targetBrick, ok := c.findBrick(hru, out.Target)
	if !ok {
		return nil, newErr(KindConceptionIssue, "model:build",
			"process "+p.Name()+" targets unknown brick/splitter "+out.Target)
	}
	if hru != nil {
		if _, inHRU := hru.Brick(out.Target); !inHRU {
			weight *= areaShare
		}
	}
	targetContainer, err := containerOf(targetBrick, materialSuffix(material))
	if err != nil {
		return nil, err
	}

	if out.Instantaneous {
		f := NewToContainerInstantaneousFlux(name, material, targetContainer)
		f.SetWeight(weight)
		return f, nil
	}
	f := NewToContainerFlux(name, material, targetContainer)
	f.SetWeight(weight)
	targetContainer.AttachIncomingDynamic(f)
	return f, nil
}

// wireSplitterInput hooks a SimpleFlux as a splitter's sole input for
// the splitter kinds the builder supports. Splitters whose inputs are
// forcing-backed (rain/snow) are wired directly from forcing cursors
// when the splitter itself is built (wireHRUSplitters), not here.
func wireSplitterInput(s Splitter, f *SimpleFlux) {
	if m, ok := s.(*MultiFluxSplitter); ok {
		m.Input = f
	}
}

func materialSuffix(m Material) string {
	switch m {
	case MaterialSnow:
		return "snow"
	case MaterialIce:
		return "ice"
	default:
		return "water"
	}
}

func parseMaterial(s string) (Material, error) {
	switch strings.ToLower(s) {
	case "water", "":
		return MaterialWater, nil
	case "snow":
		return MaterialSnow, nil
	case "ice":
		return MaterialIce, nil
	default:
		return 0, newErr(KindInvalidArgument, "model:build", "unrecognised flux type: "+s)
	}
}

// sourceWeight computes the needs_weighting fraction (§4.2): a land
// cover or surface component's fraction of its HRU. Bricks with no
// area fraction (storage, generic surface) weight 1. buildFlux
// multiplies in the HRU's area share of the basin for fluxes that
// cross into the sub-basin level.
func sourceWeight(hru *HRU, b Brick) float64 {
	weight := 1.0
	if hru != nil {
		if lc, ok := b.(*LandCoverBrick); ok {
			weight *= lc.Fraction()
		} else if parentFraction, ok := surfaceComponentFraction(hru, b); ok {
			weight *= parentFraction
		}
	}
	return weight
}

// surfaceComponentFraction looks up the land-cover fraction a
// snowpack/glacier surface component inherits multiplicatively, by
// scanning the HRU's land covers for one that lists b as a child.
func surfaceComponentFraction(hru *HRU, b Brick) (float64, bool) {
	for _, lc := range hru.LandCovers() {
		for _, child := range lc.Children {
			if child == b {
				return lc.Fraction(), true
			}
		}
	}
	return 0, false
}

// buildProcess constructs one process from its spec, resolving inline
// or referenced parameters and forcing bindings.
func (c *buildCtx) buildProcess(hru *HRU, container *Container, fs ProcessSpec) (Process, error) {
	switch fs.Kind {
	case "linear_outflow":
		k, ref, err := c.paramRef(fs, "k", 0)
		if err != nil {
			return nil, err
		}
		p := NewLinearOutflow(fs.Name, container, k)
		c.bindParam(ref, &p.ResponseFactor)
		return p, nil
	case "constant_outflow":
		rate, ref, err := c.paramRef(fs, "rate", 0)
		if err != nil {
			return nil, err
		}
		p := NewConstantOutflow(fs.Name, container, rate)
		c.bindParam(ref, &p.Rate)
		return p, nil
	case "direct_outflow":
		return NewDirectOutflow(fs.Name, container), nil
	case "rest_direct_outflow":
		return NewRestDirectOutflow(fs.Name, container), nil
	case "overflow_outflow":
		return NewOverflowOutflow(fs.Name, container), nil
	case "socont_et":
		pet, err := c.forcing(hru, fs, "pet", VarPET)
		if err != nil {
			return nil, err
		}
		exponent, _, err := c.paramRefOptional(fs, "exponent", 0.5)
		if err != nil {
			return nil, err
		}
		return NewSocontET(fs.Name, container, pet, exponent), nil
	case "socont_infiltration":
		return NewSocontInfiltration(fs.Name, container), nil
	case "socont_runoff":
		beta, _, err := c.paramRef(fs, "beta", -1)
		if err != nil {
			return nil, err
		}
		slope, ok := hru.PropertyValue("slope")
		if v, ok2 := fs.Params["slope"]; ok2 {
			slope, ok = v, true
		}
		if !ok {
			return nil, newErr(KindMissingParameter, "model:build", "runoff process "+fs.Name+" has no slope")
		}
		return NewSocontRunoff(fs.Name, container, beta, slope), nil
	case "degree_day_melt":
		temp, err := c.forcing(hru, fs, "temperature", VarTemperature)
		if err != nil {
			return nil, err
		}
		factor, ref, err := c.paramRef(fs, "factor", -1)
		if err != nil {
			return nil, err
		}
		meltTemp, _, err := c.paramRefOptional(fs, "melt_temp", 0)
		if err != nil {
			return nil, err
		}
		p := NewDegreeDayMelt(fs.Name, container, temp, factor, meltTemp)
		c.bindParam(ref, &p.Factor)
		return p, nil
	case "monthly_degree_day_melt":
		temp, err := c.forcing(hru, fs, "temperature", VarTemperature)
		if err != nil {
			return nil, err
		}
		meltTemp, _, err := c.paramRefOptional(fs, "melt_temp", 0)
		if err != nil {
			return nil, err
		}
		factorName := fs.ParamRefs["factor"]
		if factorName == "" {
			return nil, newErr(KindMissingParameter, "model:build",
				"monthly degree-day process "+fs.Name+" needs param_refs.factor naming a keyed parameter")
		}
		return NewMonthlyDegreeDayMelt(fs.Name, container, temp, c.graph.Params, factorName, meltTemp, c.timer), nil
	case "degree_day_radiation_melt":
		temp, err := c.forcing(hru, fs, "temperature", VarTemperature)
		if err != nil {
			return nil, err
		}
		radiation, _ := c.forcing(hru, fs, "radiation", VarCustom1)
		factor, _, err := c.paramRef(fs, "factor", -1)
		if err != nil {
			return nil, err
		}
		radCoef, _, err := c.paramRefOptional(fs, "radiation_coef", 0)
		if err != nil {
			return nil, err
		}
		meltTemp, _, err := c.paramRefOptional(fs, "melt_temp", 0)
		if err != nil {
			return nil, err
		}
		return NewDegreeDayRadiationMelt(fs.Name, container, temp, radiation, factor, radCoef, meltTemp), nil
	case "constant_snow_to_ice":
		rate, ref, err := c.paramRef(fs, "rate", -1)
		if err != nil {
			return nil, err
		}
		p := NewConstantSnowToIce(fs.Name, container, rate)
		c.bindParam(ref, &p.Rate)
		return p, nil
	case "swat_snow_to_ice":
		basal, ref, err := c.paramRef(fs, "basal_rate", -1)
		if err != nil {
			return nil, err
		}
		hemisphere := HemisphereNorth
		if fs.Params["hemisphere_south"] != 0 {
			hemisphere = HemisphereSouth
		}
		p := NewSWATSnowToIce(fs.Name, container, basal, hemisphere, c.timer)
		c.bindParam(ref, &p.BasalRate)
		return p, nil
	default:
		return nil, newErr(KindInvalidArgument, "model:build", "unrecognised process kind: "+fs.Kind)
	}
}

func (c *buildCtx) bindParam(ref string, field *float64) {
	if ref != "" {
		c.graph.ParamBindings[ref] = field
	}
}

// paramRef resolves a required field: inline Params first, then
// ParamRefs (returning the ref name for later binding), failing with
// MissingParameter if neither is present and def < 0 (the "required"
// sentinel).
func (c *buildCtx) paramRef(fs ProcessSpec, field string, def float64) (float64, string, error) {
	if v, ok := fs.Params[field]; ok {
		return v, "", nil
	}
	if ref, ok := fs.ParamRefs[field]; ok {
		v, ok := c.graph.Params.Scalar(ref)
		if !ok {
			return 0, "", newErr(KindMissingParameter, "model:build", "missing parameter "+ref)
		}
		return v, ref, nil
	}
	if def >= 0 {
		return def, "", nil
	}
	return 0, "", newErr(KindMissingParameter, "model:build", "process "+fs.Name+" missing parameter "+field)
}

func (c *buildCtx) paramRefOptional(fs ProcessSpec, field string, def float64) (float64, string, error) {
	return c.paramRef(fs, field, def)
}

// forcing resolves a process's forcing binding for role, defaulting to
// variable def when the spec names no override. When role is optional
// (e.g. "radiation") and absent from the spec, it returns (nil, nil)
// rather than an error.
func (c *buildCtx) forcing(hru *HRU, fs ProcessSpec, role string, def Variable) (*ForcingSeries, error) {
	name, declared := fs.Forcings[role]
	if !declared && optionalRoles[role] {
		return nil, nil
	}
	variable := def
	if declared {
		v, err := parseVariable(name)
		if err != nil {
			return nil, err
		}
		variable = v
	}
	return c.resolveForcing(hru, variable)
}

// optionalRoles names forcing roles a process may omit entirely.
var optionalRoles = map[string]bool{"radiation": true}

func (c *buildCtx) resolveForcing(hru *HRU, v Variable) (*ForcingSeries, error) {
	if fs, ok := hru.Forcing(v); ok {
		return fs, nil
	}
	values, ok := c.source.Series(v, hru.ID)
	if !ok {
		return nil, newErr(KindMissingParameter, "model:build",
			"no forcing data for variable "+v.String()+" at HRU")
	}
	series := NewForcingSeries(v, values)
	hru.SetForcing(v, series)
	c.graph.forcingSeries = append(c.graph.forcingSeries, series)
	return series, nil
}

func parseVariable(s string) (Variable, error) {
	switch strings.ToLower(s) {
	case "precipitation", "precip":
		return VarPrecipitation, nil
	case "temperature", "temp":
		return VarTemperature, nil
	case "pet":
		return VarPET, nil
	case "custom1", "radiation":
		return VarCustom1, nil
	case "custom2":
		return VarCustom2, nil
	case "custom3":
		return VarCustom3, nil
	default:
		return 0, newErr(KindInvalidArgument, "model:build", "unrecognised forcing variable: "+s)
	}
}

// wireHRUSplitters builds this HRU's splitters and their forcing-fed
// inputs, and wires a brick-level precipitation forcing flux directly
// into a land-cover/storage brick's container when the model spec
// declares a brick-level forcing without a splitter in between.
func (c *buildCtx) wireHRUSplitters(hru *HRU) error {
	for _, ss := range c.spec.Splitters {
		switch ss.Kind {
		case "rain_snow":
			precip, err := c.resolveForcing(hru, VarPrecipitation)
			if err != nil {
				return err
			}
			temp, err := c.resolveForcing(hru, VarTemperature)
			if err != nil {
				return err
			}
			if len(ss.Outputs) != 2 {
				return newErr(KindConceptionIssue, "model:build",
					"rain_snow splitter "+ss.Name+" needs exactly 2 outputs (rain, snow)")
			}
			rainTarget, ok := c.findBrick(hru, ss.Outputs[0])
			if !ok {
				return newErr(KindConceptionIssue, "model:build", "rain_snow splitter target not found: "+ss.Outputs[0])
			}
			snowTarget, ok := c.findBrick(hru, ss.Outputs[1])
			if !ok {
				return newErr(KindConceptionIssue, "model:build", "rain_snow splitter target not found: "+ss.Outputs[1])
			}
			rainContainer, err := containerOf(rainTarget, "water")
			if err != nil {
				return err
			}
			snowContainer, err := containerOf(snowTarget, "snow")
			if err != nil {
				return err
			}
			rainFlux := NewToContainerInstantaneousFlux(ss.Name+":rain", MaterialWater, rainContainer)
			snowFlux := NewToContainerInstantaneousFlux(ss.Name+":snow", MaterialSnow, snowContainer)
			sp := NewRainSnowSplitter(ss.Name, precip, temp, ss.T0, ss.T1, rainFlux, snowFlux)
			hru.AddSplitter(sp)
		case "multi_flux":
			sp := NewMultiFluxSplitter(ss.Name, nil, nil)
			for _, targetName := range ss.Outputs {
				material, err := parseMaterial(ss.FluxType)
				if err != nil {
					return err
				}
				target, ok := c.findBrick(hru, targetName)
				if !ok {
					return newErr(KindConceptionIssue, "model:build", "multi_flux target not found: "+targetName)
				}
				targetContainer, err := containerOf(target, materialSuffix(material))
				if err != nil {
					return err
				}
				out := NewToContainerFlux(ss.Name+"->"+targetName, material, targetContainer)
				targetContainer.AttachIncomingDynamic(out)
				sp.Outputs = append(sp.Outputs, out)
			}
			hru.AddSplitter(sp)
		default:
			return newErr(KindInvalidArgument, "model:build", "unrecognised splitter kind: "+ss.Kind)
		}
	}

	// Brick-level direct forcing attachment (e.g. precipitation feeding
	// a linear storage brick with no splitter in between, as in the
	// single-land-cover scenarios).
	for _, bs := range brickSpecsAtLevel(c.spec, "") {
		b, ok := hru.Brick(bs.Name)
		if !ok {
			continue
		}
		for role, varName := range bs.Forcings() {
			variable, err := parseVariable(varName)
			if err != nil {
				return err
			}
			series, err := c.resolveForcing(hru, variable)
			if err != nil {
				return err
			}
			ff := NewForcingFlux(bs.Name+":"+role, MaterialWater, series, b.Containers()[0])
			c.graph.forcingFluxes = append(c.graph.forcingFluxes, ff)
		}
	}
	return nil
}

// resolveLogs is step 5 of the builder: register every declared log
// item under its "brick:item" or "brick:process:item" label.
func (c *buildCtx) resolveLogs() error {
	for _, bs := range brickSpecsAtLevel(c.spec, "subbasin") {
		b, ok := c.graph.SubBasin.Brick(bs.Name)
		if !ok {
			continue
		}
		if err := c.registerBrickLogs(c.graph.BasinLog, b, bs); err != nil {
			return err
		}
	}
	for _, hru := range c.graph.SubBasin.HRUs() {
		log := newLogSet()
		c.graph.HRULogs[hru.ID] = log
		for _, bs := range brickSpecsAtLevel(c.spec, "") {
			b, ok := hru.Brick(bs.Name)
			if !ok {
				continue
			}
			if err := c.registerBrickLogs(log, b, bs); err != nil {
				return err
			}
		}
	}
	return nil
}

// registerBrickLogs resolves one brick's Log declarations to recordable
// pointers. An item naming a known container ("content", "water",
// "snow", "ice") is registered straight off containerOf; anything else
// falls back to fieldByTagName, so a model spec can log an arbitrary
// numeric brick field (e.g. a property) by name. An item matching
// neither is a build-time error rather than a silently mislabeled
// sample.
func (c *buildCtx) registerBrickLogs(log *LogSet, b Brick, bs BrickSpec) error {
	for _, item := range bs.Log {
		item := item // capture per iteration; closures below outlive the loop
		label := brickWaterLabel(b.Name(), item)
		cont, err := containerOf(b, item)
		if err != nil {
			if _, units, ok := fieldByTagName(b, item); ok {
				log.Register(label, units, func() float64 {
					v, _, _ := fieldByTagName(b, item)
					return v
				})
				continue
			}
			return err
		}
		log.Register(label, "mm", cont.Content)
	}
	for _, ps := range bs.Processes {
		for _, p := range b.Processes() {
			if p.Name() != ps.Name {
				continue
			}
			for _, fluxName := range ps.Log {
				for _, f := range p.Outputs() {
					if f.Name() != fluxName {
						continue
					}
					label := processFluxLabel(b.Name(), p.Name(), f.Name())
					log.Register(label, "mm/day", f.Rate)
				}
			}
		}
	}
	return nil
}
