package hydrobricks

// ParameterSet holds scalar and keyed model parameters resolved by
// the graph builder when instantiating bricks/processes/splitters.
// Keyed variables (per-land-cover, per-month, ...) generalise a
// ParameterVariable from the original source beyond a single scalar.
type ParameterSet struct {
	scalars map[string]float64
	keyed   map[string]map[string]float64
}

// NewParameterSet builds an empty parameter set.
func NewParameterSet() *ParameterSet {
	return &ParameterSet{scalars: make(map[string]float64), keyed: make(map[string]map[string]float64)}
}

// SetScalar records a plain scalar parameter.
func (p *ParameterSet) SetScalar(name string, value float64) { p.scalars[name] = value }

// Scalar looks up a scalar parameter.
func (p *ParameterSet) Scalar(name string) (float64, bool) {
	v, ok := p.scalars[name]
	return v, ok
}

// RequireScalar looks up a scalar parameter, returning a
// MissingParameter error if absent.
func (p *ParameterSet) RequireScalar(name string) (float64, error) {
	v, ok := p.scalars[name]
	if !ok {
		return 0, newErr(KindMissingParameter, "parameters:require_scalar", "missing parameter: "+name)
	}
	return v, nil
}

// SetKeyed records a keyed parameter value (e.g. a monthly degree-day
// factor keyed by month name, or a per-land-cover value keyed by
// land-cover name).
func (p *ParameterSet) SetKeyed(name, key string, value float64) {
	m, ok := p.keyed[name]
	if !ok {
		m = make(map[string]float64)
		p.keyed[name] = m
	}
	m[key] = value
}

// Keyed looks up a keyed parameter value.
func (p *ParameterSet) Keyed(name, key string) (float64, bool) {
	m, ok := p.keyed[name]
	if !ok {
		return 0, false
	}
	v, ok := m[key]
	return v, ok
}

// Update swaps in a new scalar value for name mid-run, without
// rebuilding the graph — the hook the ParametersUpdate action uses.
func (p *ParameterSet) Update(name string, value float64) { p.scalars[name] = value }
