package hydrobricks

// Processor drives one time step over a built Graph (§4.9): it runs
// splitters, steps direct-apply bricks one at a time to completion,
// then hands the solver-handled bricks to the configured Solver as one
// shared batch.
type Processor struct {
	Graph  *Graph
	Solver *Solver
}

// NewProcessor pairs a graph with the solver it should drive.
func NewProcessor(g *Graph, s *Solver) *Processor {
	return &Processor{Graph: g, Solver: s}
}

// Step runs one full time step of length dt (days): forcing delivery,
// splitters, direct bricks, then the batched solver call, in the order
// spec.md §2's control-flow line names (actions are applied by the
// caller, the Model, before Step runs; forcing-cursor advance happens
// after, also by the caller, so Step always sees the forcing values
// for the date it is integrating).
func (p *Processor) Step(dt float64) error {
	for _, ff := range p.Graph.ForcingFluxes() {
		ff.Deliver()
	}

	for _, hru := range p.Graph.SubBasin.HRUs() {
		for _, sp := range hru.Splitters() {
			if err := sp.Compute(); err != nil {
				return err
			}
		}
	}

	for _, b := range p.Graph.DirectBricks {
		if err := p.stepDirectBrick(b, dt); err != nil {
			return err
		}
	}

	if len(p.Graph.SolverBricks) > 0 {
		if err := p.Solver.Integrate(p.Graph.SolverBricks, p.Graph.solverProcesses, dt); err != nil {
			return err
		}
		for _, b := range p.Graph.SolverBricks {
			if err := b.Finalize(); err != nil {
				return err
			}
		}
	}

	return nil
}

// stepDirectBrick runs one direct-apply brick's full mass-balance step
// in isolation: compute rates, apply the container constraint system,
// commit, finalize. It reuses the solver's Euler-equivalent helpers
// (stageRates/commitFinal) since the direct-apply algorithm (§4.9 step
// 2) is exactly a one-stage Euler pass scoped to a single brick.
func (p *Processor) stepDirectBrick(b Brick, dt float64) error {
	containers := b.Containers()
	processes := b.Processes()
	if len(processes) == 0 {
		return b.Finalize()
	}

	rates, err := stageRates([]Brick{b}, containers, processes, dt, true)
	if err != nil {
		return err
	}
	commitFinal(processes, rates, dt)
	return b.Finalize()
}
