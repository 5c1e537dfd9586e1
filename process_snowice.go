package hydrobricks

import "math"

// Hemisphere selects which reference day-of-year the SWAT seasonal
// snow-to-ice law uses.
type Hemisphere int

const (
	HemisphereNorth Hemisphere = iota
	HemisphereSouth
)

func (h Hemisphere) referenceDOY() float64 {
	if h == HemisphereSouth {
		return 264
	}
	return 81
}

// ConstantSnowToIce transforms snow into ice at a fixed mm/day rate.
type ConstantSnowToIce struct {
	baseProcess
	Rate float64
}

func NewConstantSnowToIce(name string, container *Container, rate float64) *ConstantSnowToIce {
	return &ConstantSnowToIce{baseProcess: newBaseProcess(name, container), Rate: rate}
}

func (p *ConstantSnowToIce) ComputeRates() ([]float64, error) {
	return []float64{p.Rate}, nil
}

// clock is the minimal time source a seasonal process needs; *Timer
// satisfies it.
type clock interface {
	DayOfYear() int
}

// SWATSnowToIce is the SWAT seasonal snow-to-ice law:
// c_basal * (1 + sin(2*pi*(doy - doy_ref)/365)) * S.
type SWATSnowToIce struct {
	baseProcess
	BasalRate  float64
	Hemisphere Hemisphere
	clock      clock
}

func NewSWATSnowToIce(name string, container *Container, basalRate float64, hemisphere Hemisphere, c clock) *SWATSnowToIce {
	return &SWATSnowToIce{baseProcess: newBaseProcess(name, container), BasalRate: basalRate, Hemisphere: hemisphere, clock: c}
}

func (p *SWATSnowToIce) ComputeRates() ([]float64, error) {
	doy := float64(p.clock.DayOfYear())
	seasonal := 1 + math.Sin(2*math.Pi*(doy-p.Hemisphere.referenceDOY())/365)
	rate := p.BasalRate * seasonal * p.container.Content()
	return []float64{rate}, nil
}
