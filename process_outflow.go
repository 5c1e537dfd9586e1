package hydrobricks

// LinearOutflow releases k*S per day, k a response factor (1/day), S
// the container's current content.
type LinearOutflow struct {
	baseProcess
	ResponseFactor float64 // 1/day
}

func NewLinearOutflow(name string, container *Container, responseFactor float64) *LinearOutflow {
	p := &LinearOutflow{baseProcess: newBaseProcess(name, container), ResponseFactor: responseFactor}
	return p
}

func (p *LinearOutflow) ComputeRates() ([]float64, error) {
	return []float64{p.ResponseFactor * p.container.Content()}, nil
}

// ConstantOutflow releases a fixed parameter rate regardless of
// content (the engine's empty-container short-circuit still zeroes it
// when the container has nothing left).
type ConstantOutflow struct {
	baseProcess
	Rate float64 // mm/day
}

func NewConstantOutflow(name string, container *Container, rate float64) *ConstantOutflow {
	return &ConstantOutflow{baseProcess: newBaseProcess(name, container), Rate: rate}
}

func (p *ConstantOutflow) ComputeRates() ([]float64, error) {
	return []float64{p.Rate}, nil
}

// DirectOutflow releases the full current stock in one step: reported
// as a rate numerically equal to the content (mm/day), matching the
// source's convention of expressing "release everything" as a rate.
type DirectOutflow struct {
	baseProcess
}

func NewDirectOutflow(name string, container *Container) *DirectOutflow {
	return &DirectOutflow{baseProcess: newBaseProcess(name, container)}
}

func (p *DirectOutflow) ComputeRates() ([]float64, error) {
	return []float64{p.container.Content()}, nil
}

// RestDirectOutflow releases whatever remains of the stock after
// sibling processes attached to the same container have already
// claimed their share this stage — the "whatever's left goes here"
// sink. It must run after its siblings register their routed amount.
type RestDirectOutflow struct {
	baseProcess
}

func NewRestDirectOutflow(name string, container *Container) *RestDirectOutflow {
	return &RestDirectOutflow{baseProcess: newBaseProcess(name, container)}
}

func (p *RestDirectOutflow) ComputeRates() ([]float64, error) {
	remainder := p.container.Content() - p.container.RoutedSoFar()
	if remainder < 0 {
		remainder = 0
	}
	return []float64{remainder}, nil
}

// OverflowOutflow always reports zero rates; its lone output flux's
// rate is written externally by Container.ApplyConstraints when
// content would exceed capacity.
type OverflowOutflow struct {
	baseProcess
}

func NewOverflowOutflow(name string, container *Container) *OverflowOutflow {
	return &OverflowOutflow{baseProcess: newBaseProcess(name, container)}
}

func (p *OverflowOutflow) ComputeRates() ([]float64, error) {
	return []float64{0}, nil
}
