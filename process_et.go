package hydrobricks

import "math"

// SocontET is the Socont-family evapotranspiration process:
// PET * (S/C)^exponent, drawing from its own container's fill ratio.
// The container must carry a capacity for the ratio to be defined.
type SocontET struct {
	baseProcess
	PET       *ForcingSeries
	Exponent  float64 // default 0.5
}

// NewSocontET defaults Exponent to 0.5 when exponent <= 0 is passed.
func NewSocontET(name string, container *Container, pet *ForcingSeries, exponent float64) *SocontET {
	if exponent <= 0 {
		exponent = 0.5
	}
	return &SocontET{baseProcess: newBaseProcess(name, container), PET: pet, Exponent: exponent}
}

func (p *SocontET) ComputeRates() ([]float64, error) {
	capacity, bounded := p.container.Capacity()
	if !bounded || capacity <= 0 {
		return nil, newErr(KindConceptionIssue, "process:socont_et",
			"ET process "+p.name+" requires a capacity-bounded container")
	}
	ratio := p.container.Content() / capacity
	if ratio < 0 {
		ratio = 0
	}
	rate := p.PET.Current() * math.Pow(ratio, p.Exponent)
	return []float64{rate}, nil
}
