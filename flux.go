package hydrobricks

// Material tags what a flux carries, mirroring the {water, snow, ice}
// type tag in the data model.
type Material int

const (
	MaterialWater Material = iota
	MaterialSnow
	MaterialIce
)

// Flux is a directed edge carrying an amount (mm, this step) and a
// rate (mm/day, written by the solver or direct apply) between graph
// nodes. A flux owns no data beyond its own fields; it borrows
// pointers to upstream/downstream participants. Variants differ only
// in how Update/Amount/Deliver behave at the target end.
type Flux interface {
	Name() string
	Material() Material
	Static() bool
	Instantaneous() bool
	NeedsWeighting() bool
	SetWeight(w float64)
	Weight() float64

	// Update stores amount (scaled by the cached weight) into the
	// flux, or, for instantaneous fluxes, delivers it directly to the
	// target container's static accumulator.
	Update(amount float64)
	// Amount returns the flux's stored amount this step; 0 for
	// instantaneous fluxes (to avoid double counting downstream).
	Amount() float64
	// Deliver pushes the already-stored (weighted) amount into a
	// target container's dynamic accumulator, for variants that
	// target a container via the solver's dynamic integration path.
	// It is a no-op for variants with no container target (outlet,
	// atmosphere, simple, instantaneous — the latter delivers inside
	// Update instead).
	Deliver()

	// Rate/SetRate expose the mm/day rate link written during the
	// solver's rate-computation stage and mutated in place by
	// Container.ApplyConstraints.
	Rate() float64
	SetRate(r float64)

	// Active reports whether this flux currently has a live source; a
	// deactivated flux (null rate pointer in the source design) is
	// skipped by ApplyConstraints rather than treated as a zero rate.
	Active() bool
	SetActive(active bool)
}

// fluxBase implements the fields and behaviour shared by every flux
// variant; concrete types embed it and override Update/Amount/Deliver
// where the spec calls for different target-end behaviour.
type fluxBase struct {
	name           string
	material       Material
	static         bool
	instantaneous  bool
	needsWeighting bool
	weight         float64
	amount         float64
	rate           float64
	active         bool
}

func newFluxBase(name string, material Material) fluxBase {
	return fluxBase{name: name, material: material, weight: 1, active: true}
}

func (f *fluxBase) Name() string          { return f.name }
func (f *fluxBase) Material() Material    { return f.material }
func (f *fluxBase) Static() bool          { return f.static }
func (f *fluxBase) Instantaneous() bool   { return f.instantaneous }
func (f *fluxBase) NeedsWeighting() bool  { return f.needsWeighting }
func (f *fluxBase) SetWeight(w float64)   { f.weight = w }
func (f *fluxBase) Weight() float64       { return f.weight }
func (f *fluxBase) Rate() float64         { return f.rate }
func (f *fluxBase) SetRate(r float64)     { f.rate = r }
func (f *fluxBase) Active() bool          { return f.active }
func (f *fluxBase) SetActive(active bool) { f.active = active }
func (f *fluxBase) Amount() float64       { return f.amount }
func (f *fluxBase) Update(amount float64) { f.amount = amount * f.weight }
func (f *fluxBase) Deliver()              {}

// ToContainerFlux delivers its amount into a downstream container's
// dynamic accumulator during the solver's apply step.
type ToContainerFlux struct {
	fluxBase
	Target *Container
}

// NewToContainerFlux builds a flux that feeds target's dynamic
// accumulator once the solver applies its integrated amount.
func NewToContainerFlux(name string, material Material, target *Container) *ToContainerFlux {
	return &ToContainerFlux{fluxBase: newFluxBase(name, material), Target: target}
}

func (f *ToContainerFlux) Deliver() {
	if f.Target != nil {
		f.Target.AddDynamic(f.amount)
	}
}

// ToContainerInstantaneousFlux adds its amount directly to the target
// container's static accumulator and always reports zero via Amount,
// to prevent double counting in the dynamic rate-sum pass.
type ToContainerInstantaneousFlux struct {
	fluxBase
	Target *Container
}

func NewToContainerInstantaneousFlux(name string, material Material, target *Container) *ToContainerInstantaneousFlux {
	f := &ToContainerInstantaneousFlux{fluxBase: newFluxBase(name, material), Target: target}
	f.instantaneous = true
	f.static = true
	return f
}

func (f *ToContainerInstantaneousFlux) Update(amount float64) {
	f.Target.AddStatic(amount * f.weight)
}

func (f *ToContainerInstantaneousFlux) Amount() float64 { return 0 }

// ToOutletFlux stores its amount for the owning sub-basin to sum every
// step into the outlet total.
type ToOutletFlux struct {
	fluxBase
}

func NewToOutletFlux(name string, material Material) *ToOutletFlux {
	return &ToOutletFlux{fluxBase: newFluxBase(name, material)}
}

// ToAtmosphereFlux is the ET/sublimation sink: it behaves like a plain
// stored-amount flux but never targets a container.
type ToAtmosphereFlux struct {
	fluxBase
}

func NewToAtmosphereFlux(name string, material Material) *ToAtmosphereFlux {
	return &ToAtmosphereFlux{fluxBase: newFluxBase(name, material)}
}

// SimpleFlux is a splitter-intermediate edge: it just stores the
// amount it was given, with weighting encoded per-output-flux.
type SimpleFlux struct {
	fluxBase
}

func NewSimpleFlux(name string, material Material) *SimpleFlux {
	return &SimpleFlux{fluxBase: newFluxBase(name, material)}
}

// ForcingFlux is a source edge driven directly by a meteorological
// input channel. With no Target it is a pure read-only source a
// process can query via Amount(); with a Target it delivers its
// current value into the target container's static accumulator once
// per step (the precipitation-into-reservoir case), bypassing the
// solver the way every static input does.
type ForcingFlux struct {
	fluxBase
	source *ForcingSeries
	Target *Container
}

func NewForcingFlux(name string, material Material, source *ForcingSeries, target *Container) *ForcingFlux {
	f := &ForcingFlux{fluxBase: newFluxBase(name, material), source: source, Target: target}
	f.static = true
	return f
}

func (f *ForcingFlux) Amount() float64 {
	if f.source == nil {
		return 0
	}
	return f.source.Current()
}

func (f *ForcingFlux) Update(amount float64) { f.amount = amount }

// Deliver pushes the forcing's current value into Target's static
// accumulator; called once per step before rates are computed.
func (f *ForcingFlux) Deliver() {
	if f.Target == nil || f.source == nil {
		return
	}
	amt := f.source.Current() * f.weight
	f.amount = amt
	f.Target.AddStatic(amt)
}
