package vm

import "fmt"

// Kind of runtime error a goal can throw (spec.md §4, "six error kinds").
// Modeled on the teacher's scanner.Error/ErrorList shape (a typed error with
// a position-like locator and a message), simplified here to a predicate
// indicator locator since clause bytecode carries no per-instruction
// source position at runtime.
type ErrorKind uint8

const (
	ErrInstantiation ErrorKind = iota // an argument required to be bound was unbound
	ErrType                          // an argument had the wrong Tag for the operation
	ErrDomain                        // an argument's value was out of the expected domain
	ErrExistence                     // called an indicator with no matching predicate
	ErrPermission                    // e.g. modifying a table/primop as if it were a rule predicate
	ErrBudget                        // MaxSteps or the time budget was exceeded
)

func (k ErrorKind) String() string {
	switch k {
	case ErrInstantiation:
		return "instantiation_error"
	case ErrType:
		return "type_error"
	case ErrDomain:
		return "domain_error"
	case ErrExistence:
		return "existence_error"
	case ErrPermission:
		return "permission_error"
	case ErrBudget:
		return "budget_error"
	default:
		return "error"
	}
}

// Error is a thrown runtime error (spec.md's uncaught-throw propagation:
// an error aborts the current Solve/NextSolution call rather than simply
// failing the goal).
type Error struct {
	Kind    ErrorKind
	Pred    Indicator // zero value if not associated with a specific call
	Message string
}

func (e *Error) Error() string {
	if e.Pred.Name != nil {
		return fmt.Sprintf("%s: %s (in %s)", e.Kind, e.Message, e.Pred)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func newError(kind ErrorKind, pred Indicator, format string, args ...any) *Error {
	return &Error{Kind: kind, Pred: pred, Message: fmt.Sprintf(format, args...)}
}
