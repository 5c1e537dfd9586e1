package hydrobricks

import "math"

// SocontInfiltration drains proportionally to the downstream target
// container's remaining headroom: S * (1 - (S_target/C_target)^2).
// It is a "needs target brick" process: the builder must link it to
// its downstream container or the model is a ConceptionIssue.
type SocontInfiltration struct {
	baseProcess
	targetedProcess
}

func NewSocontInfiltration(name string, container *Container) *SocontInfiltration {
	return &SocontInfiltration{baseProcess: newBaseProcess(name, container)}
}

// NeedsTarget and LinkTarget are defined explicitly here because
// SocontInfiltration embeds both baseProcess and targetedProcess,
// which would otherwise promote two conflicting methods at the same
// depth; delegating to targetedProcess resolves the ambiguity.
func (p *SocontInfiltration) NeedsTarget() bool { return p.targetedProcess.NeedsTarget() }
func (p *SocontInfiltration) LinkTarget(target *Container) error {
	return p.targetedProcess.LinkTarget(target)
}

func (p *SocontInfiltration) ComputeRates() ([]float64, error) {
	if p.target == nil {
		return nil, newErr(KindConceptionIssue, "process:socont_infiltration",
			"infiltration process "+p.name+" has no linked target container")
	}
	capacity, bounded := p.target.Capacity()
	if !bounded || capacity <= 0 {
		return nil, newErr(KindConceptionIssue, "process:socont_infiltration",
			"infiltration target for "+p.name+" must be capacity-bounded")
	}
	ratio := p.target.Content() / capacity
	if ratio < 0 {
		ratio = 0
	}
	if ratio > 1 {
		ratio = 1
	}
	rate := p.container.Content() * (1 - ratio*ratio)
	return []float64{rate}, nil
}

// SocontRunoff is the Socont Manning-like runoff law:
// min(S, beta * slope^0.5 * S^(5/3)), slope read from an HRU property
// resolved at build time.
type SocontRunoff struct {
	baseProcess
	Beta  float64
	Slope float64 // fraction, e.g. 0.1 for 10%
}

func NewSocontRunoff(name string, container *Container, beta, slope float64) *SocontRunoff {
	return &SocontRunoff{baseProcess: newBaseProcess(name, container), Beta: beta, Slope: slope}
}

func (p *SocontRunoff) ComputeRates() ([]float64, error) {
	s := p.container.Content()
	candidate := p.Beta * math.Sqrt(p.Slope) * math.Pow(s, 5.0/3.0)
	if candidate > s {
		candidate = s
	}
	return []float64{candidate}, nil
}
