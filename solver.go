package hydrobricks

import "gonum.org/v1/gonum/mat"

// SolverKind selects one of the three explicit ODE integrators the
// engine supports.
type SolverKind int

const (
	SolverEuler SolverKind = iota
	SolverHeun
	SolverRK4
)

// ParseSolverKind maps the model spec's solver name to a SolverKind.
func ParseSolverKind(s string) (SolverKind, error) {
	switch s {
	case "euler_explicit":
		return SolverEuler, nil
	case "heun_explicit":
		return SolverHeun, nil
	case "rk4":
		return SolverRK4, nil
	default:
		return 0, newErr(KindInvalidArgument, "solver:parse_kind", "unrecognised solver: "+s)
	}
}

// preConstrained is implemented by bricks that need a hook invoked
// before Container.ApplyConstraints runs (the glacier's
// no-melt-when-snow-cover rule).
type preConstrained interface {
	PreConstraints() error
}

// Solver integrates the solver-handled bricks' processes over the
// assembled state vector, sharing the working rate matrix R and
// snapshot matrix S the way the source's multi-stage solvers do.
type Solver struct {
	Kind SolverKind

	lastR *mat.Dense // last step's working rate matrix [n_solvable, stages]
	lastS *mat.Dense // last step's content snapshot matrix [n_state, stages+1]
}

// LastWorking returns the rate and snapshot matrices built during the
// most recent Integrate call, for convergence/property checks that
// want the raw numeric working set rather than re-deriving it.
func (s *Solver) LastWorking() (r, snapshots *mat.Dense) { return s.lastR, s.lastS }

func NewSolver(kind SolverKind) *Solver { return &Solver{Kind: kind} }

// Integrate runs one full step of the configured solver over bricks'
// processes, then leaves every container's dynamic accumulator
// populated for the caller to Finalize.
func (s *Solver) Integrate(bricks []Brick, processes []Process, dt float64) error {
	if len(processes) == 0 {
		return nil
	}
	containers := collectContainers(bricks)
	stages := map[SolverKind]int{SolverEuler: 1, SolverHeun: 2, SolverRK4: 4}[s.Kind]
	r, st := workingMatrices(processes, containers, stages)
	s.lastR, s.lastS = r, st
	recordSnapshotColumn(st, containers, 0)

	switch s.Kind {
	case SolverEuler:
		return s.euler(bricks, containers, processes, dt, r)
	case SolverHeun:
		return s.heun(bricks, containers, processes, dt, r, st)
	case SolverRK4:
		return s.rk4(bricks, containers, processes, dt, r, st)
	default:
		return newErr(KindNotImplemented, "solver:integrate", "unknown solver kind")
	}
}

// recordRateColumn flattens every process's rate vector into column
// col of r, in processes' declared order.
func recordRateColumn(r *mat.Dense, processes []Process, rates map[Process][]float64, col int) {
	row := 0
	for _, p := range processes {
		for _, v := range rates[p] {
			r.Set(row, col, v)
			row++
		}
	}
}

// recordSnapshotColumn records every container's current content into
// column col of st, in containers' declared order.
func recordSnapshotColumn(st *mat.Dense, containers []*Container, col int) {
	for i, c := range containers {
		st.Set(i, col, c.Content())
	}
}

func collectContainers(bricks []Brick) []*Container {
	var out []*Container
	seen := make(map[*Container]bool)
	for _, b := range bricks {
		for _, c := range b.Containers() {
			if !seen[c] {
				seen[c] = true
				out = append(out, c)
			}
		}
	}
	return out
}

// stageRates computes every process's rates for this stage, writes
// them onto the output fluxes' Rate fields, runs the rest-direct
// bookkeeping, and — when applyConstraints is set — runs the
// pre-constraint brick hooks and each container's ApplyConstraints.
// It returns, per process, the (possibly constraint-adjusted) final
// rate vector read back off the fluxes.
func stageRates(bricks []Brick, containers []*Container, processes []Process, dt float64, applyConstraints bool) (map[Process][]float64, error) {
	for _, c := range containers {
		c.ResetRouted()
	}
	for _, p := range processes {
		rates, err := computeClamped(p)
		if err != nil {
			return nil, err
		}
		outs := p.Outputs()
		sum := 0.0
		for i, r := range rates {
			outs[i].SetRate(r)
			sum += r
		}
		if c := p.Container(); c != nil {
			c.RegisterRouted(sum)
		}
	}
	if applyConstraints {
		for _, b := range bricks {
			if pc, ok := b.(preConstrained); ok {
				if err := pc.PreConstraints(); err != nil {
					return nil, err
				}
			}
		}
		for _, c := range containers {
			if err := c.ApplyConstraints(dt); err != nil {
				return nil, err
			}
		}
	}
	result := make(map[Process][]float64, len(processes))
	for _, p := range processes {
		outs := p.Outputs()
		rates := make([]float64, len(outs))
		for i, f := range outs {
			rates[i] = f.Rate()
		}
		result[p] = rates
	}
	return result, nil
}

// applyProvisional advances every container's content directly
// (bypassing the accumulators) by rates*dt, for intermediate stages
// that must be undone with restoreSnapshot. It also folds in each
// container's already-accumulated static/forcing change once per
// advance, matching the source's ApplyProcesses calling
// UpdateContentFromInputs() before every rate-apply stage: without
// that, a multi-stage solver computes k2/k3/k4 off content that has
// not yet seen this step's forcing, diverging from the single-stage
// (Euler) trajectory from the second stage onward.
func applyProvisional(processes []Process, rates map[Process][]float64, dt float64, containers []*Container) {
	for _, p := range processes {
		outs := p.Outputs()
		r := rates[p]
		total := 0.0
		for i, f := range outs {
			raw := r[i] * dt
			total += raw
			f.Update(raw)
			if tc, ok := f.(*ToContainerFlux); ok && tc.Target != nil {
				tc.Target.ApplyRaw(f.Amount())
			}
		}
		if c := p.Container(); c != nil {
			c.ApplyRaw(-total)
		}
	}
	for _, c := range containers {
		c.ApplyRaw(c.staticChange)
	}
}

// commitFinal performs the one true commit of a solver step: it pushes
// final rates into the normal accumulator path (AddDynamic/Deliver) so
// the subsequent brick.Finalize() call (run uniformly after every
// solver call) settles content exactly once.
func commitFinal(processes []Process, rates map[Process][]float64, dt float64) {
	for _, p := range processes {
		outs := p.Outputs()
		r := rates[p]
		total := 0.0
		for i, f := range outs {
			raw := r[i] * dt
			total += raw
			f.Update(raw)
			f.Deliver()
		}
		if c := p.Container(); c != nil {
			c.AddDynamic(-total)
		}
	}
}

func snapshotAll(containers []*Container) map[*Container]float64 {
	m := make(map[*Container]float64, len(containers))
	for _, c := range containers {
		m[c] = c.Snapshot()
	}
	return m
}

func restoreAll(containers []*Container, snap map[*Container]float64) {
	for _, c := range containers {
		c.Restore(snap[c])
	}
}

func averageWithSnapshot(containers []*Container, snap map[*Container]float64) {
	for _, c := range containers {
		c.Restore((c.Snapshot() + snap[c]) / 2)
	}
}

func addRates(a, b map[Process][]float64, wa, wb float64, processes []Process) map[Process][]float64 {
	out := make(map[Process][]float64, len(processes))
	for _, p := range processes {
		ra, rb := a[p], b[p]
		combined := make([]float64, len(ra))
		for i := range ra {
			combined[i] = ra[i]*wa + rb[i]*wb
		}
		out[p] = combined
	}
	return out
}

// euler: one stage. Compute rates with constraints, apply once, let
// the caller finalize.
func (s *Solver) euler(bricks []Brick, containers []*Container, processes []Process, dt float64, r *mat.Dense) error {
	rates, err := stageRates(bricks, containers, processes, dt, true)
	if err != nil {
		return err
	}
	recordRateColumn(r, processes, rates, 0)
	commitFinal(processes, rates, dt)
	return nil
}

// heun: snapshot, k1 (constrained), provisional apply, k2
// (unconstrained), reset, average rate, constrained commit.
func (s *Solver) heun(bricks []Brick, containers []*Container, processes []Process, dt float64, r, st *mat.Dense) error {
	snap := snapshotAll(containers)

	k1, err := stageRates(bricks, containers, processes, dt, true)
	if err != nil {
		return err
	}
	recordRateColumn(r, processes, k1, 0)
	applyProvisional(processes, k1, dt, containers)
	recordSnapshotColumn(st, containers, 1)

	k2, err := stageRates(bricks, containers, processes, dt, false)
	if err != nil {
		return err
	}
	recordRateColumn(r, processes, k2, 1)
	restoreAll(containers, snap)

	final := addRates(k1, k2, 0.5, 0.5, processes)
	if err := writeRatesAndConstrain(bricks, containers, processes, final, dt); err != nil {
		return err
	}
	commitFinal(processes, final, dt)
	return nil
}

// rk4: classical four-stage Runge-Kutta, expressed through full-step
// provisional applies averaged back to the midpoint the way the
// source's snapshot/average sequence does.
func (s *Solver) rk4(bricks []Brick, containers []*Container, processes []Process, dt float64, r, st *mat.Dense) error {
	s0 := snapshotAll(containers)

	k1, err := stageRates(bricks, containers, processes, dt, true)
	if err != nil {
		return err
	}
	recordRateColumn(r, processes, k1, 0)
	applyProvisional(processes, k1, dt, containers)
	averageWithSnapshot(containers, s0) // content now at S0 + dt/2*k1
	recordSnapshotColumn(st, containers, 1)

	k2, err := stageRates(bricks, containers, processes, dt, false)
	if err != nil {
		return err
	}
	recordRateColumn(r, processes, k2, 1)
	restoreAll(containers, s0)
	applyProvisional(processes, k2, dt, containers)
	averageWithSnapshot(containers, s0) // content now at S0 + dt/2*k2
	recordSnapshotColumn(st, containers, 2)

	k3, err := stageRates(bricks, containers, processes, dt, false)
	if err != nil {
		return err
	}
	recordRateColumn(r, processes, k3, 2)
	restoreAll(containers, s0)
	applyProvisional(processes, k3, dt, containers) // content now at S0 + dt*k3
	recordSnapshotColumn(st, containers, 3)

	k4, err := stageRates(bricks, containers, processes, dt, false)
	if err != nil {
		return err
	}
	recordRateColumn(r, processes, k4, 3)
	restoreAll(containers, s0)

	final := make(map[Process][]float64, len(processes))
	for _, p := range processes {
		r1, r2, r3, r4 := k1[p], k2[p], k3[p], k4[p]
		combined := make([]float64, len(r1))
		for i := range r1 {
			combined[i] = (r1[i] + 2*r2[i] + 2*r3[i] + r4[i]) / 6
		}
		final[p] = combined
	}

	if err := writeRatesAndConstrain(bricks, containers, processes, final, dt); err != nil {
		return err
	}
	commitFinal(processes, final, dt)
	return nil
}

// writeRatesAndConstrain writes a combined rate vector back onto the
// output fluxes and runs the constraint pass once, used by Heun/RK4's
// final stage before committing.
func writeRatesAndConstrain(bricks []Brick, containers []*Container, processes []Process, rates map[Process][]float64, dt float64) error {
	for _, c := range containers {
		c.ResetRouted()
	}
	for _, p := range processes {
		outs := p.Outputs()
		r := rates[p]
		sum := 0.0
		for i, v := range r {
			outs[i].SetRate(v)
			sum += v
		}
		if c := p.Container(); c != nil {
			c.RegisterRouted(sum)
		}
	}
	for _, b := range bricks {
		if pc, ok := b.(preConstrained); ok {
			if err := pc.PreConstraints(); err != nil {
				return err
			}
		}
	}
	for _, c := range containers {
		if err := c.ApplyConstraints(dt); err != nil {
			return err
		}
	}
	// ApplyConstraints may have adjusted rates in place on the fluxes;
	// read them back so commitFinal sees the constrained values.
	for _, p := range processes {
		r := rates[p]
		for i, f := range p.Outputs() {
			r[i] = f.Rate()
		}
	}
	return nil
}

// workingMatrices builds the gonum matrices the source's multi-stage
// solvers share: R holds one row per output-flux slot across the
// solvable processes, one column per stage; S holds one row per
// container, one column per stage snapshot. hydrobricks uses them for
// diagnostics and property tests (§8) rather than as the control-flow
// backbone — Go's map-based stage bookkeeping above plays that role —
// but they are built here so callers needing the raw numeric working
// set (e.g. a convergence check across many steps) can get it without
// re-deriving indices.
func workingMatrices(processes []Process, containers []*Container, stages int) (*mat.Dense, *mat.Dense) {
	nSolvable := 0
	for _, p := range processes {
		nSolvable += len(p.Outputs())
	}
	r := mat.NewDense(maxInt(nSolvable, 1), maxInt(stages, 1), nil)
	st := mat.NewDense(maxInt(len(containers), 1), maxInt(stages+1, 1), nil)
	return r, st
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
