package hydrobricks

// monthKeys are the keyed-parameter names a monthly-varying factor is
// looked up under, indexed by calendar month (1-12).
var monthKeys = [...]string{"", "jan", "feb", "mar", "apr", "may", "jun", "jul", "aug", "sep", "oct", "nov", "dec"}

// monthClock is the minimal time source a monthly-varying process
// needs; *Timer satisfies it.
type monthClock interface {
	CurrentMonth() int
}

// MonthlyDegreeDayMelt is the degree-day law with the factor looked up
// per calendar month from a keyed parameter (ParameterSet's
// ParameterVariable-equivalent, see SPEC_FULL supplement #1) instead of
// a single scalar.
type MonthlyDegreeDayMelt struct {
	baseProcess
	Temperature *ForcingSeries
	Params      *ParameterSet
	FactorName  string // keyed parameter name, e.g. "degree_day_factor"
	MeltTemp    float64
	clock       monthClock
}

func NewMonthlyDegreeDayMelt(name string, container *Container, temperature *ForcingSeries, params *ParameterSet, factorName string, meltTemp float64, c monthClock) *MonthlyDegreeDayMelt {
	return &MonthlyDegreeDayMelt{
		baseProcess: newBaseProcess(name, container), Temperature: temperature,
		Params: params, FactorName: factorName, MeltTemp: meltTemp, clock: c,
	}
}

func (p *MonthlyDegreeDayMelt) ComputeRates() ([]float64, error) {
	t := p.Temperature.Current()
	if t < p.MeltTemp {
		return []float64{0}, nil
	}
	key := monthKeys[p.clock.CurrentMonth()]
	factor, ok := p.Params.Keyed(p.FactorName, key)
	if !ok {
		return nil, newErr(KindMissingParameter, "process:monthly_degree_day_melt",
			"missing monthly factor "+key+" for "+p.FactorName)
	}
	return []float64{factor * (t - p.MeltTemp)}, nil
}

// DegreeDayMelt is the classic positive-degree-day melt law: zero
// below the melt threshold, f_dd*(T - T_melt) above it.
type DegreeDayMelt struct {
	baseProcess
	Temperature *ForcingSeries
	Factor      float64 // f_dd, mm/day/degC
	MeltTemp    float64 // T_melt, degC
}

func NewDegreeDayMelt(name string, container *Container, temperature *ForcingSeries, factor, meltTemp float64) *DegreeDayMelt {
	return &DegreeDayMelt{baseProcess: newBaseProcess(name, container), Temperature: temperature, Factor: factor, MeltTemp: meltTemp}
}

func (p *DegreeDayMelt) ComputeRates() ([]float64, error) {
	t := p.Temperature.Current()
	if t < p.MeltTemp {
		return []float64{0}, nil
	}
	return []float64{p.Factor * (t - p.MeltTemp)}, nil
}

// DegreeDayRadiationMelt augments the degree-day law with a
// shortwave-radiation term: (T - T_melt) * (f + c_r*R).
type DegreeDayRadiationMelt struct {
	baseProcess
	Temperature  *ForcingSeries
	Radiation    *ForcingSeries
	Factor       float64 // f, mm/day/degC
	RadiationCoef float64 // c_r
	MeltTemp     float64 // degC
}

func NewDegreeDayRadiationMelt(name string, container *Container, temperature, radiation *ForcingSeries, factor, radiationCoef, meltTemp float64) *DegreeDayRadiationMelt {
	return &DegreeDayRadiationMelt{
		baseProcess: newBaseProcess(name, container), Temperature: temperature, Radiation: radiation,
		Factor: factor, RadiationCoef: radiationCoef, MeltTemp: meltTemp,
	}
}

func (p *DegreeDayRadiationMelt) ComputeRates() ([]float64, error) {
	t := p.Temperature.Current()
	if t < p.MeltTemp {
		return []float64{0}, nil
	}
	r := 0.0
	if p.Radiation != nil {
		r = p.Radiation.Current()
	}
	return []float64{(t - p.MeltTemp) * (p.Factor + p.RadiationCoef*r)}, nil
}
