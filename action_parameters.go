package hydrobricks

// ParametersUpdate swaps a scalar parameter's value mid-run (supplement
// #2): it updates the ParameterSet itself, then writes through any
// live binding the graph builder recorded for that name so a process
// already built against the old value sees the change on its very
// next ComputeRates call, with no graph rebuild.
type ParametersUpdate struct {
	Name  string
	Value float64
}

// NewParametersUpdate builds a scalar-parameter-update action.
func NewParametersUpdate(name string, value float64) *ParametersUpdate {
	return &ParametersUpdate{Name: name, Value: value}
}

func (a *ParametersUpdate) Apply(g *Graph, date MJD) error {
	g.Params.Update(a.Name, a.Value)
	if ptr, ok := g.ParamBindings[a.Name]; ok {
		*ptr = a.Value
	}
	return nil
}
