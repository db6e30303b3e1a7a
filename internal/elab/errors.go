package elab

import (
	"errors"
	"fmt"

	"github.com/roach88/arbor/internal/ir"
)

// Error is a structural elaboration failure. All elaboration errors are
// raised before any evaluation occurs and are fatal to the operation
// that triggered them: no partial IR is ever returned.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Kind is the offending kind or trait name.
	Kind string

	// Pos is the zero-based argument position, -1 when not positional.
	Pos int

	// Want and Got carry the two types of a mismatch.
	Want ir.Type
	Got  ir.Type

	// Message is a human-readable description.
	Message string
}

// ErrorCode categorizes elaboration errors.
type ErrorCode string

const (
	// ErrCodeUnknownKind indicates the registry knows no such kind.
	ErrCodeUnknownKind ErrorCode = "UNKNOWN_KIND"

	// ErrCodeArityMismatch indicates the wrong number of arguments.
	ErrCodeArityMismatch ErrorCode = "ARITY_MISMATCH"

	// ErrCodeTypeMismatch indicates an argument's output type differs
	// from the expected type. No coercion is ever attempted.
	ErrCodeTypeMismatch ErrorCode = "TYPE_MISMATCH"

	// ErrCodeNoLift indicates a raw value whose type tag has no lift rule.
	ErrCodeNoLift ErrorCode = "NO_LIFT"

	// ErrCodeNoTraitInstance indicates a trait has no implementation for
	// the operands' discovered type.
	ErrCodeNoTraitInstance ErrorCode = "NO_TRAIT_INSTANCE"

	// ErrCodeTraitOperandMismatch indicates a trait's operands
	// elaborated to differing types.
	ErrCodeTraitOperandMismatch ErrorCode = "TRAIT_OPERAND_MISMATCH"

	// ErrCodeShapeMismatch indicates a structural argument does not
	// match the expected record or tuple shape.
	ErrCodeShapeMismatch ErrorCode = "SHAPE_MISMATCH"

	// ErrCodeDepthExceeded indicates the tree exceeds the walk's depth
	// bound.
	ErrCodeDepthExceeded ErrorCode = "DEPTH_EXCEEDED"

	// ErrCodeBadArgument indicates an argument form the position can
	// never accept, independent of types.
	ErrCodeBadArgument ErrorCode = "BAD_ARGUMENT"
)

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Kind != "" {
		msg += fmt.Sprintf(" (kind=%s", e.Kind)
		if e.Pos >= 0 {
			msg += fmt.Sprintf(", arg=%d", e.Pos)
		}
		msg += ")"
	}
	if e.Want != "" || e.Got != "" {
		msg += fmt.Sprintf(": want %s, got %s", e.Want, e.Got)
	}
	return msg
}

// IsTypeMismatch reports whether err is a type mismatch.
func IsTypeMismatch(err error) bool {
	return hasCode(err, ErrCodeTypeMismatch)
}

// IsUnknownKind reports whether err is an unknown-kind failure.
func IsUnknownKind(err error) bool {
	return hasCode(err, ErrCodeUnknownKind)
}

// IsTraitMismatch reports whether err is a trait operand mismatch.
func IsTraitMismatch(err error) bool {
	return hasCode(err, ErrCodeTraitOperandMismatch)
}

func hasCode(err error, code ErrorCode) bool {
	var ee *Error
	return errors.As(err, &ee) && ee.Code == code
}
