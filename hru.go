package hydrobricks

// Property is a numeric or string HRU attribute (aspect, slope, ...)
// with unit-aware retrieval.
type Property struct {
	Name        string
	Value       float64
	StringValue string
	IsString    bool
	Units       string
}

// HRU is a Hydrological Response Unit: a spatial partition assumed
// homogeneous for modelling. It owns its bricks, splitters, forcing
// handles, and properties; fraction-closure invariants are enforced
// across its land-cover bricks.
type HRU struct {
	ID        int
	Area      float64 // m^2
	Elevation float64

	bricks       []Brick
	bricksByName map[string]Brick

	splitters       []Splitter
	splittersByName map[string]Splitter

	forcings map[Variable]*ForcingSeries

	properties map[string]Property
}

// NewHRU builds an empty HRU ready for the graph builder to populate.
func NewHRU(id int, area, elevation float64) *HRU {
	return &HRU{
		ID: id, Area: area, Elevation: elevation,
		bricksByName:    make(map[string]Brick),
		splittersByName: make(map[string]Splitter),
		forcings:        make(map[Variable]*ForcingSeries),
		properties:      make(map[string]Property),
	}
}

// AddBrick registers a brick under this HRU, preserving insertion
// order for deterministic traversal.
func (h *HRU) AddBrick(b Brick) {
	h.bricks = append(h.bricks, b)
	h.bricksByName[b.Name()] = b
}

// Bricks returns the HRU's bricks in insertion (traversal) order.
func (h *HRU) Bricks() []Brick { return h.bricks }

// Brick looks up a brick by name.
func (h *HRU) Brick(name string) (Brick, bool) {
	b, ok := h.bricksByName[name]
	return b, ok
}

// AddSplitter registers a splitter under this HRU.
func (h *HRU) AddSplitter(s Splitter) {
	h.splitters = append(h.splitters, s)
	h.splittersByName[s.Name()] = s
}

// Splitters returns the HRU's splitters in insertion order.
func (h *HRU) Splitters() []Splitter { return h.splitters }

// Splitter looks up a splitter by name.
func (h *HRU) Splitter(name string) (Splitter, bool) {
	s, ok := h.splittersByName[name]
	return s, ok
}

// SetForcing attaches a forcing series to this HRU under the variable
// it carries.
func (h *HRU) SetForcing(v Variable, series *ForcingSeries) { h.forcings[v] = series }

// Forcing returns the forcing series bound to variable v, if any.
func (h *HRU) Forcing(v Variable) (*ForcingSeries, bool) {
	s, ok := h.forcings[v]
	return s, ok
}

// SetProperty records a numeric property (slope, aspect, ...).
func (h *HRU) SetProperty(name string, value float64, units string) {
	h.properties[name] = Property{Name: name, Value: value, Units: units}
}

// SetStringProperty records a string-valued property.
func (h *HRU) SetStringProperty(name, value string) {
	h.properties[name] = Property{Name: name, StringValue: value, IsString: true}
}

// PropertyValue returns a numeric property's value.
func (h *HRU) PropertyValue(name string) (float64, bool) {
	p, ok := h.properties[name]
	if !ok || p.IsString {
		return 0, false
	}
	return p.Value, true
}

// LandCovers returns every land-cover brick owned by this HRU, in
// traversal order.
func (h *HRU) LandCovers() []*LandCoverBrick {
	var out []*LandCoverBrick
	for _, b := range h.bricks {
		if lc, ok := b.(*LandCoverBrick); ok {
			out = append(out, lc)
		}
	}
	return out
}

// LandCoverFractionSum sums every land-cover brick's current fraction.
func (h *HRU) LandCoverFractionSum() float64 {
	sum := 0.0
	for _, lc := range h.LandCovers() {
		sum += lc.Fraction()
	}
	return sum
}

// landCoverFractionTolerance is the closure tolerance the source uses
// and the spec keeps (§8 invariant 5, §9 open question).
const landCoverFractionTolerance = 1e-4

// CheckLandCoverFractions verifies the sum of land-cover fractions is
// within tolerance of 1.
func (h *HRU) CheckLandCoverFractions() error {
	sum := h.LandCoverFractionSum()
	if sum-1 > landCoverFractionTolerance || 1-sum > landCoverFractionTolerance {
		return newErr(KindInvalidArgument, "hru:check_land_cover_fractions",
			"land cover fractions do not sum to 1 for HRU")
	}
	return nil
}

// RenormalizeLandCoverFractions sets target's fraction to newFraction
// and rescales every other land-cover brick's fraction so the sum
// stays 1, used by the land-cover-change action.
func (h *HRU) RenormalizeLandCoverFractions(target *LandCoverBrick, newFraction float64) error {
	others := make([]*LandCoverBrick, 0)
	othersSum := 0.0
	for _, lc := range h.LandCovers() {
		if lc == target {
			continue
		}
		others = append(others, lc)
		othersSum += lc.Fraction()
	}
	remaining := 1 - newFraction
	if remaining < 0 {
		remaining = 0
	}
	target.SetFraction(newFraction)
	if len(others) == 0 {
		return nil
	}
	if othersSum <= epsilon {
		// nothing to scale from; distribute evenly
		share := remaining / float64(len(others))
		for _, lc := range others {
			lc.SetFraction(share)
		}
		return nil
	}
	scale := remaining / othersSum
	for _, lc := range others {
		lc.SetFraction(lc.Fraction() * scale)
	}
	return nil
}
