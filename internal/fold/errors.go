package fold

import (
	"errors"
	"fmt"

	"github.com/roach88/arbor/internal/ir"
)

// EvalError is an error raised during a fold.
//
// Evaluation errors propagate synchronously through the handler chain to
// the Fold caller. Retrying or timing out is the caller's business,
// expressed through ordinary wrapper kinds, never by the evaluator.
type EvalError struct {
	// Code identifies the error category.
	Code EvalErrorCode

	// ID is the entry under evaluation when the error was raised.
	ID ir.NodeID

	// Kind is the entry's kind, when known.
	Kind string

	// Message is a human-readable description.
	Message string

	// Err is the handler's own failure, for HANDLER_FAILED.
	Err error
}

// EvalErrorCode categorizes evaluation errors.
type EvalErrorCode string

const (
	// ErrCodeUnknownKind indicates no handler is registered for a kind.
	ErrCodeUnknownKind EvalErrorCode = "UNKNOWN_KIND"

	// ErrCodeMissingEntry indicates a child id resolved to no entry.
	ErrCodeMissingEntry EvalErrorCode = "MISSING_ENTRY"

	// ErrCodeHandlerFailed indicates a handler returned an error.
	ErrCodeHandlerFailed EvalErrorCode = "HANDLER_FAILED"

	// ErrCodeCycle indicates evaluation re-entered an active entry.
	ErrCodeCycle EvalErrorCode = "CYCLE_DETECTED"

	// ErrCodeBadChild indicates a handler requested an invalid child.
	ErrCodeBadChild EvalErrorCode = "BAD_CHILD"
)

// Error implements the error interface.
func (e *EvalError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Kind != "" {
		msg += fmt.Sprintf(" (kind=%s, id=%s)", e.Kind, e.ID)
	} else if e.ID != "" {
		msg += fmt.Sprintf(" (id=%s)", e.ID)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes the handler's own failure for errors.Is/As.
func (e *EvalError) Unwrap() error {
	return e.Err
}

// IsUnknownKind reports whether err is an unknown-kind evaluation error.
func IsUnknownKind(err error) bool {
	var ee *EvalError
	return errors.As(err, &ee) && ee.Code == ErrCodeUnknownKind
}

// IsHandlerFailure reports whether err originated in a handler.
func IsHandlerFailure(err error) bool {
	var ee *EvalError
	return errors.As(err, &ee) && ee.Code == ErrCodeHandlerFailed
}

func asEvalError(err error, target **EvalError) bool {
	return errors.As(err, target)
}
