package hydrobricks

// SubBasin owns an ordered list of HRUs, any sub-basin-level lumped
// bricks, a set of outlet-bound fluxes, and a total area.
type SubBasin struct {
	hrus       []*HRU
	bricks     []Brick
	bricksByName map[string]Brick
	outlets    []*ToOutletFlux
}

// NewSubBasin builds an empty sub-basin.
func NewSubBasin() *SubBasin {
	return &SubBasin{bricksByName: make(map[string]Brick)}
}

// AddHRU appends an HRU and updates the total area.
func (s *SubBasin) AddHRU(h *HRU) { s.hrus = append(s.hrus, h) }

// HRUs returns the sub-basin's HRUs in insertion order.
func (s *SubBasin) HRUs() []*HRU { return s.hrus }

// HRU looks up an HRU by id.
func (s *SubBasin) HRU(id int) (*HRU, bool) {
	for _, h := range s.hrus {
		if h.ID == id {
			return h, true
		}
	}
	return nil, false
}

// Area returns the total area across all HRUs (m^2).
func (s *SubBasin) Area() float64 {
	total := 0.0
	for _, h := range s.hrus {
		total += h.Area
	}
	return total
}

// AddBrick registers a sub-basin-level lumped brick.
func (s *SubBasin) AddBrick(b Brick) {
	s.bricks = append(s.bricks, b)
	s.bricksByName[b.Name()] = b
}

// Bricks returns the sub-basin-level bricks.
func (s *SubBasin) Bricks() []Brick { return s.bricks }

// Brick looks up a sub-basin-level brick by name.
func (s *SubBasin) Brick(name string) (Brick, bool) {
	b, ok := s.bricksByName[name]
	return b, ok
}

// AddOutlet registers an outlet-bound flux the sub-basin sums every
// step.
func (s *SubBasin) AddOutlet(f *ToOutletFlux) { s.outlets = append(s.outlets, f) }

// Outlets returns the registered outlet fluxes.
func (s *SubBasin) Outlets() []*ToOutletFlux { return s.outlets }

// OutletTotal sums every outlet flux's stored amount this step,
// satisfying the outlet-identity invariant (§8.6).
func (s *SubBasin) OutletTotal() float64 {
	total := 0.0
	for _, o := range s.outlets {
		total += o.Amount()
	}
	return total
}
