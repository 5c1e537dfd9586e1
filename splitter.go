package hydrobricks

import "math"

// Splitter is a stateless fan-out node: it writes every output flux's
// amount from its rule once per step, before the solver runs.
type Splitter interface {
	Name() string
	Compute() error
}

// RainSnowSplitter divides a precipitation input into rain and snow
// outputs by a temperature threshold with a transition band:
// rainFraction = clamp((T - T0)/(T1 - T0), 0, 1).
type RainSnowSplitter struct {
	name        string
	Precip      *ForcingSeries
	Temperature *ForcingSeries
	T0, T1      float64
	Rain, Snow  Flux
}

func NewRainSnowSplitter(name string, precip, temperature *ForcingSeries, t0, t1 float64, rain, snow Flux) *RainSnowSplitter {
	return &RainSnowSplitter{name: name, Precip: precip, Temperature: temperature, T0: t0, T1: t1, Rain: rain, Snow: snow}
}

func (s *RainSnowSplitter) Name() string { return s.name }

func (s *RainSnowSplitter) Compute() error {
	precip := s.Precip.Current()
	t := s.Temperature.Current()
	var fraction float64
	if s.T1 == s.T0 {
		if t >= s.T0 {
			fraction = 1
		}
	} else {
		fraction = (t - s.T0) / (s.T1 - s.T0)
		fraction = math.Max(0, math.Min(1, fraction))
	}
	s.Rain.Update(precip * fraction)
	s.Snow.Update(precip * (1 - fraction))
	return nil
}

// MultiFluxSplitter broadcasts input[0]'s amount, unchanged, to every
// output; per-output weighting is encoded on the output fluxes
// themselves.
type MultiFluxSplitter struct {
	name    string
	Input   Flux
	Outputs []Flux
}

func NewMultiFluxSplitter(name string, input Flux, outputs []Flux) *MultiFluxSplitter {
	return &MultiFluxSplitter{name: name, Input: input, Outputs: outputs}
}

func (s *MultiFluxSplitter) Name() string { return s.name }

func (s *MultiFluxSplitter) Compute() error {
	amount := s.Input.Amount()
	for _, out := range s.Outputs {
		out.Update(amount)
	}
	return nil
}
