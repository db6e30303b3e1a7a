package registry

import (
	"errors"
	"fmt"
)

// ComposeError is a configuration error raised when kind sets are
// composed into a Registry.
type ComposeError struct {
	Code    ComposeErrorCode
	Kind    string
	Tag     Tag
	Message string
}

// ComposeErrorCode categorizes composition errors.
type ComposeErrorCode string

const (
	// ErrCodeKindCollision indicates two sets define the same name.
	ErrCodeKindCollision ComposeErrorCode = "KIND_COLLISION"

	// ErrCodeLiftCollision indicates two sets lift the same type tag.
	ErrCodeLiftCollision ComposeErrorCode = "LIFT_COLLISION"

	// ErrCodeBadPrefix indicates a set violates its namespace prefix.
	ErrCodeBadPrefix ComposeErrorCode = "BAD_PREFIX"
)

// Error implements the error interface.
func (e *ComposeError) Error() string {
	switch {
	case e.Kind != "":
		return fmt.Sprintf("%s: %s: %s", e.Code, e.Kind, e.Message)
	case e.Tag != "":
		return fmt.Sprintf("%s: tag %s: %s", e.Code, e.Tag, e.Message)
	default:
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
}

// IsCollision reports whether err is a kind or lift collision.
func IsCollision(err error) bool {
	var ce *ComposeError
	if errors.As(err, &ce) {
		return ce.Code == ErrCodeKindCollision || ce.Code == ErrCodeLiftCollision
	}
	return false
}
