package hydrobricks

// epsilon is the tolerance used throughout constraint evaluation for
// "close enough to zero/capacity" comparisons.
const epsilon = 1e-10

// Container is a scalar water/snow/ice stock with an optional capacity
// and overflow hook. It is the unit the constraint system in
// ApplyConstraints operates on; every brick owns one or more of these.
type Container struct {
	Name     string `desc:"container content" units:"mm"`
	content  float64
	capacity float64
	bounded  bool
	infinite bool

	dynamicChange float64
	staticChange  float64

	overflowFlux Flux // set when a process overflow-links to this container

	outgoingFluxes        []Flux // fluxes leaving this container via its attached processes
	incomingDynamicFluxes []Flux // non-static, non-instantaneous fluxes targeting this container

	routedSoFar float64 // sum of sibling processes' rates already computed this stage, for rest-direct
}

// NewContainer builds an unbounded, finite container starting empty.
func NewContainer(name string) *Container {
	return &Container{Name: name}
}

// SetCapacity bounds the container at capacity mm.
func (c *Container) SetCapacity(capacity float64) {
	c.capacity = capacity
	c.bounded = true
}

// SetInfinite marks the container as never depleting (e.g. a glacier's
// ice reservoir in reference mode): ApplyConstraints skips its capacity
// check and negative-content reduction never applies to it either,
// since an infinite container is assumed to always have enough content.
func (c *Container) SetInfinite(infinite bool) { c.infinite = infinite }

// Infinite reports whether the container never depletes.
func (c *Container) Infinite() bool { return c.infinite }

// Capacity returns the configured capacity and whether one is set.
func (c *Container) Capacity() (float64, bool) { return c.capacity, c.bounded }

// Content returns the current committed content.
func (c *Container) Content() float64 { return c.content }

// SetContent forces the content value, used by action handlers and by
// Reset/initial-state setup. It does not go through the accumulators.
func (c *Container) SetContent(v float64) { c.content = v }

// AddStatic accumulates an instantaneous/forcing delta (mm) to be
// committed at Finalize.
func (c *Container) AddStatic(delta float64) { c.staticChange += delta }

// AddDynamic accumulates a solver-controlled delta (mm) to be
// committed at Finalize.
func (c *Container) AddDynamic(delta float64) { c.dynamicChange += delta }

// AttachOutgoing registers f as a flux whose rate is written by a
// process attached to this container; ApplyConstraints reduces these
// proportionally when content would go negative.
func (c *Container) AttachOutgoing(f Flux) { c.outgoingFluxes = append(c.outgoingFluxes, f) }

// AttachIncomingDynamic registers f as a non-static, non-instantaneous
// flux whose target is this container; ApplyConstraints reduces these
// proportionally when content would exceed capacity.
func (c *Container) AttachIncomingDynamic(f Flux) {
	c.incomingDynamicFluxes = append(c.incomingDynamicFluxes, f)
}

// SetOverflow links the lone output flux of this container's overflow
// process: on capacity breach with no other headroom, ApplyConstraints
// writes the excess rate directly onto this flux instead of reducing
// incoming rates.
func (c *Container) SetOverflow(f Flux) { c.overflowFlux = f }

// ResetRouted zeros the rest-direct bookkeeping accumulator; called by
// the processor before each rate-computation stage.
func (c *Container) ResetRouted() { c.routedSoFar = 0 }

// RegisterRouted adds amount (mm/day) to the routed-so-far total,
// called by the processor immediately after each sibling process of
// this container computes its rates.
func (c *Container) RegisterRouted(amount float64) { c.routedSoFar += amount }

// RoutedSoFar returns the sum of sibling processes' rates already
// computed this stage, read by the rest-direct outflow process.
func (c *Container) RoutedSoFar() float64 { return c.routedSoFar }

// Reset clears accumulators and, if initial is non-nil, restores
// content to *initial.
func (c *Container) Reset(initial *float64) {
	c.dynamicChange = 0
	c.staticChange = 0
	if initial != nil {
		c.content = *initial
	}
}

// Finalize commits both accumulators into content, zeros them, and
// asserts non-negativity. It is the only place content is committed;
// besides it, action handlers set content directly and the solver's
// provisional stages move it with ApplyRaw/Restore, always restoring
// the snapshot before the final commit.
func (c *Container) Finalize() error {
	c.content += c.dynamicChange + c.staticChange
	c.dynamicChange = 0
	c.staticChange = 0
	if c.content < -1e-8 {
		return newErr(KindConceptionIssue, "container:finalize",
			"content went negative for "+c.Name)
	}
	if c.content < 0 {
		c.content = 0
	}
	return nil
}

// ApplyRaw mutates content directly, bypassing the dynamic/static
// accumulators. It is used only by the solver's provisional
// intermediate stages (Heun's k2, RK4's midpoint evaluations), which
// need to advance and reset state between rate computations without
// going through a full Finalize commit.
func (c *Container) ApplyRaw(delta float64) { c.content += delta }

// Snapshot returns the current content, for the solver to restore
// after a provisional stage.
func (c *Container) Snapshot() float64 { return c.content }

// Restore sets content back to a value captured by Snapshot.
func (c *Container) Restore(v float64) { c.content = v }

// ZeroOutgoingRates forces every active outgoing flux's rate to zero,
// used by the glacier's no-melt-when-snow-cover rule before
// ApplyConstraints runs.
func (c *Container) ZeroOutgoingRates() {
	for _, f := range c.outgoingFluxes {
		if f.Active() {
			f.SetRate(0)
		}
	}
}

// ApplyConstraints is the heart of the engine's correctness: it runs
// after every rate-computation stage of the solver, reducing
// just-computed rates in place so that the content projected forward
// by dt never goes negative and never exceeds capacity without an
// overflow outlet.
func (c *Container) ApplyConstraints(dt float64) error {
	if c.infinite {
		return nil
	}

	outputs := 0.0
	for _, f := range c.outgoingFluxes {
		if !f.Active() {
			continue
		}
		r := f.Rate()
		if r < 0 {
			r = 0
			f.SetRate(0)
		}
		outputs += r
	}

	inputsDynamic := 0.0
	for _, f := range c.incomingDynamicFluxes {
		if !f.Active() {
			continue
		}
		inputsDynamic += f.Rate()
	}
	inputsStatic := c.staticChange

	contentAfter := c.content + inputsStatic + (inputsDynamic-outputs)*dt

	if contentAfter < -epsilon {
		deficit := -contentAfter
		if outputs > 0 && dt > 0 {
			reduceBy := deficit / dt
			if reduceBy >= outputs {
				for _, f := range c.outgoingFluxes {
					if f.Active() {
						f.SetRate(0)
					}
				}
				outputs = 0
			} else {
				factor := (outputs - reduceBy) / outputs
				for _, f := range c.outgoingFluxes {
					if !f.Active() {
						continue
					}
					f.SetRate(f.Rate() * factor)
				}
				outputs -= reduceBy
			}
		}
		contentAfter = 0
	}

	if c.bounded && contentAfter > c.capacity+epsilon {
		excess := (contentAfter - c.capacity) / dt
		if c.overflowFlux != nil {
			c.overflowFlux.SetRate(excess)
			return nil
		}
		if c.content+inputsStatic > c.capacity+epsilon {
			return newErr(KindConceptionIssue, "container:apply_constraints",
				"forcing directly fills a bounded brick with no overflow: "+c.Name)
		}
		if inputsDynamic > 0 && dt > 0 {
			allowedInputs := (c.capacity-c.content-inputsStatic)/dt + outputs
			if allowedInputs < 0 {
				allowedInputs = 0
			}
			factor := allowedInputs / inputsDynamic
			for _, f := range c.incomingDynamicFluxes {
				if !f.Active() {
					continue
				}
				f.SetRate(f.Rate() * factor)
			}
		}
	}
	return nil
}
