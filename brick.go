package hydrobricks

// Kind tags the enumerated brick variants from the data model; Go has
// no sum types, so dispatch is by interface + concrete type rather
// than by switching on Kind, but Kind is kept for model-spec parsing
// and diagnostics.
type BrickKind int

const (
	BrickStorage BrickKind = iota
	BrickLandCover
	BrickSnowpack
	BrickGlacier
	BrickGenericSurface
	BrickVegetation
	BrickUrban
)

// Brick is a named node holding one or more water containers and zero
// or more processes. Variants (storage, land cover, snowpack, glacier,
// generic surface) embed baseBrick and add their own fields.
type Brick interface {
	Name() string
	Kind() BrickKind
	// Containers returns the primary container first, followed by any
	// secondary phase-specific containers (e.g. snow, ice).
	Containers() []*Container
	Processes() []Process
	AddProcess(p Process)
	// Finalize commits every container's accumulators; called once
	// per step after the solver (or direct apply) integrates.
	Finalize() error
}

type baseBrick struct {
	name       string
	kind       BrickKind
	containers []*Container
	processes  []Process
}

func newBaseBrick(name string, kind BrickKind, containers ...*Container) baseBrick {
	return baseBrick{name: name, kind: kind, containers: containers}
}

func (b *baseBrick) Name() string             { return b.name }
func (b *baseBrick) Kind() BrickKind          { return b.kind }
func (b *baseBrick) Containers() []*Container { return b.containers }
func (b *baseBrick) Processes() []Process     { return b.processes }
func (b *baseBrick) AddProcess(p Process)     { b.processes = append(b.processes, p) }

func (b *baseBrick) Finalize() error {
	for _, c := range b.containers {
		if err := c.Finalize(); err != nil {
			return err
		}
	}
	return nil
}
