package hydrobricks

import (
	"fmt"
	"math"

	"github.com/Knetic/govaluate"
)

// StepRecord is one time step's worth of sampled log values, handed to
// a ResultsSink by the model loop. HRU and LandCovers are nil unless
// the sink was built with IncludeDistributed set (supplement #3).
type StepRecord struct {
	Date        MJD
	Basin       map[string]float64
	HRU         map[int]map[string]float64
	LandCovers  map[int]map[string]float64 // HRU id -> land cover name -> fraction
	OutletTotal float64
}

// ResultsSink receives one StepRecord per time step, including an
// initial record taken before the first step (the original source's
// "log initial state as step 0" behaviour, supplement #3).
type ResultsSink interface {
	Record(rec StepRecord) error
	Close() error
}

// MemorySink is an in-memory ResultsSink: the default sink for tests
// and for any caller that wants to inspect a run's results directly
// rather than through io/netcdf.go or io/csv.go.
type MemorySink struct {
	IncludeDistributed bool
	Derived            *DerivedOutputs

	Dates         []MJD
	Basin         []map[string]float64
	HRU           map[int][]map[string]float64
	LandCovers    map[int][]map[string]float64
	DerivedSeries map[string][]float64
}

// NewMemorySink builds an in-memory results sink. derived may be nil.
func NewMemorySink(includeDistributed bool, derived *DerivedOutputs) *MemorySink {
	return &MemorySink{
		IncludeDistributed: includeDistributed,
		Derived:            derived,
		HRU:                make(map[int][]map[string]float64),
		LandCovers:         make(map[int][]map[string]float64),
		DerivedSeries:      make(map[string][]float64),
	}
}

func (s *MemorySink) Record(rec StepRecord) error {
	s.Dates = append(s.Dates, rec.Date)
	s.Basin = append(s.Basin, rec.Basin)

	if s.IncludeDistributed {
		for id, vals := range rec.HRU {
			s.HRU[id] = append(s.HRU[id], vals)
		}
		for id, fracs := range rec.LandCovers {
			s.LandCovers[id] = append(s.LandCovers[id], fracs)
		}
	}

	if s.Derived != nil {
		vars := make(map[string]interface{}, len(rec.Basin))
		for k, v := range rec.Basin {
			vars[k] = v
		}
		vars["outlet"] = rec.OutletTotal
		values, err := s.Derived.Evaluate(vars)
		if err != nil {
			return err
		}
		for name, v := range values {
			s.DerivedSeries[name] = append(s.DerivedSeries[name], v)
		}
	}
	return nil
}

func (s *MemorySink) Close() error { return nil }

// DerivedOutputs evaluates govaluate expressions over a step's logged
// values, mirroring the teacher's Outputter.outputVariables (io.go):
// computed channels like "TotalStorage = snowpack:snow + glacier:ice
// + storage:content" defined declaratively rather than hand-coded.
type DerivedOutputs struct {
	expressions map[string]*govaluate.EvaluableExpression
	order       []string
}

// derivedFunctions are the built-in functions available to every
// derived-output expression.
var derivedFunctions = map[string]govaluate.ExpressionFunction{
	"exp": func(args ...interface{}) (interface{}, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("hydrobricks: exp takes 1 argument, got %d", len(args))
		}
		return math.Exp(args[0].(float64)), nil
	},
	"log": func(args ...interface{}) (interface{}, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("hydrobricks: log takes 1 argument, got %d", len(args))
		}
		return math.Log(args[0].(float64)), nil
	},
	"log10": func(args ...interface{}) (interface{}, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("hydrobricks: log10 takes 1 argument, got %d", len(args))
		}
		return math.Log10(args[0].(float64)), nil
	},
}

// NewDerivedOutputs compiles a set of named expressions. defs maps an
// output channel name to the expression computing it, referencing any
// label the ResultsSink's StepRecord.Basin carries (e.g. container
// content labels, "outlet" for the step's outlet total).
func NewDerivedOutputs(defs map[string]string) (*DerivedOutputs, error) {
	d := &DerivedOutputs{expressions: make(map[string]*govaluate.EvaluableExpression, len(defs))}
	for name, expr := range defs {
		e, err := govaluate.NewEvaluableExpressionWithFunctions(expr, derivedFunctions)
		if err != nil {
			return nil, wrapErr(KindInvalidArgument, "results:derived_outputs",
				"cannot compile derived output "+name, err)
		}
		d.expressions[name] = e
		d.order = append(d.order, name)
	}
	return d, nil
}

// Evaluate computes every compiled expression against vars. An
// expression that cannot be evaluated (e.g. it names an absent label)
// yields a MissingParameter-kind error; one that evaluates to a
// non-number yields an InvalidArgument-kind error.
func (d *DerivedOutputs) Evaluate(vars map[string]interface{}) (map[string]float64, error) {
	out := make(map[string]float64, len(d.order))
	for _, name := range d.order {
		v, err := d.expressions[name].Evaluate(vars)
		if err != nil {
			return nil, wrapErr(KindMissingParameter, "results:derived_outputs",
				"derived output "+name+" could not be evaluated", err)
		}
		f, ok := v.(float64)
		if !ok {
			return nil, newErr(KindInvalidArgument, "results:derived_outputs",
				"derived output "+name+" did not evaluate to a number")
		}
		out[name] = f
	}
	return out, nil
}
