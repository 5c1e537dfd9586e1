package hydrobricks

// GlacierBrick holds two containers: water and ice. Ice defaults to
// infinite (reference-mode glacier). The optional
// no-melt-when-snow-cover rule zeroes all outgoing ice rates at
// constraint time when the paired snowpack still carries snow.
type GlacierBrick struct {
	baseBrick
	NoMeltWhenSnowCover bool
	PairedSnowpack      *SnowpackBrick
}

func NewGlacierBrick(name string) *GlacierBrick {
	water := NewContainer(name + ":water")
	ice := NewContainer(name + ":ice")
	ice.SetInfinite(true)
	b := &GlacierBrick{baseBrick: newBaseBrick(name, BrickGlacier, water, ice)}
	return b
}

// Water returns the water-phase container.
func (b *GlacierBrick) Water() *Container { return b.containers[0] }

// Ice returns the ice-phase container.
func (b *GlacierBrick) Ice() *Container { return b.containers[1] }

// PreConstraints implements the processor's pre-constraint hook: it
// zeroes the ice container's outgoing rates when the paired snowpack
// still has snow cover, per the no-melt-when-snow-cover rule.
func (b *GlacierBrick) PreConstraints() error {
	if b.NoMeltWhenSnowCover && b.PairedSnowpack != nil && b.PairedSnowpack.HasSnow() {
		b.Ice().ZeroOutgoingRates()
	}
	return nil
}
