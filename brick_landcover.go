package hydrobricks

// LandCoverBrick is one water container plus a mutable area fraction
// in [0,1]; it may carry surface-component children (snowpack,
// glacier). Its fraction times the HRU area gives the physical area
// it covers; the sum of land-cover fractions in an HRU must equal 1
// within 1e-4 after every mutation.
type LandCoverBrick struct {
	baseBrick
	fraction float64
	Children []Brick
}

// NewLandCoverBrick builds a land cover brick with the given initial
// fraction of its host HRU's area.
func NewLandCoverBrick(name string, fraction float64) *LandCoverBrick {
	return &LandCoverBrick{baseBrick: newBaseBrick(name, BrickLandCover, NewContainer(name)), fraction: fraction}
}

// Water returns the land cover's primary container.
func (b *LandCoverBrick) Water() *Container { return b.containers[0] }

// Fraction returns the current area fraction.
func (b *LandCoverBrick) Fraction() float64 { return b.fraction }

// SetFraction sets the area fraction without bounds-checking; callers
// (actions, HRU re-normalisation) are responsible for the [0,1] and
// sum-to-1 invariants.
func (b *LandCoverBrick) SetFraction(f float64) { b.fraction = f }

// AddChild records a surface-component brick (snowpack, glacier,
// generic surface) that inherits this land cover's fraction
// multiplicatively. Children are still independent entries in the
// HRU's flat brick list — traversed and finalized there — this is
// purely a parent/fraction-inheritance reference.
func (b *LandCoverBrick) AddChild(c Brick) { b.Children = append(b.Children, c) }
