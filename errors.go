package hydrobricks

import (
	"errors"
	"fmt"
)

// Kind classifies an EngineError so callers can branch with errors.Is
// against the sentinel Kind values below instead of parsing messages.
type Kind int

const (
	// KindMissingParameter indicates a parameter referenced by a
	// process, brick, or splitter was not supplied by the model spec.
	KindMissingParameter Kind = iota
	// KindInvalidArgument indicates a CLI/date/format parse failure,
	// an unrecognised solver or forcing type, land-cover fractions not
	// summing to 1, or an HRU id not found.
	KindInvalidArgument
	// KindConceptionIssue indicates a structural wiring error: an
	// unknown target name, a bounded brick with forcing and no
	// overflow, or a similar graph-construction defect.
	KindConceptionIssue
	// KindNotFound indicates a named brick, splitter, or process is
	// absent.
	KindNotFound
	// KindNotImplemented indicates a requested feature is declared but
	// not built (variable time step, multi-structure models, ...).
	KindNotImplemented
)

func (k Kind) String() string {
	switch k {
	case KindMissingParameter:
		return "missing parameter"
	case KindInvalidArgument:
		return "invalid argument"
	case KindConceptionIssue:
		return "conception issue"
	case KindNotFound:
		return "not found"
	case KindNotImplemented:
		return "not implemented"
	default:
		return "unknown"
	}
}

// EngineError is the structured error type the engine returns from its
// public API (BuildGraph, ModelHydro.Run) and from invariant checks
// during stepping. Kind lets callers use errors.Is/errors.As instead of
// matching on message text.
type EngineError struct {
	Kind    Kind
	Op      string // component:operation that raised the error, e.g. "container:apply_constraints"
	Message string
	Cause   error
}

func (e *EngineError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *EngineError) Unwrap() error { return e.Cause }

// Is reports whether target is an EngineError of the same Kind, so
// callers can write errors.Is(err, &EngineError{Kind: KindNotFound}).
func (e *EngineError) Is(target error) bool {
	t, ok := target.(*EngineError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

func newErr(kind Kind, op, message string) *EngineError {
	return &EngineError{Kind: kind, Op: op, Message: message}
}

func wrapErr(kind Kind, op, message string, cause error) *EngineError {
	return &EngineError{Kind: kind, Op: op, Message: message, Cause: cause}
}

// ErrNotImplemented is returned by stub actions (delta-h glacier
// evolution) whose rate law has not been specified yet.
var ErrNotImplemented = errors.New("not implemented")
