package dirty

import (
	"errors"
	"fmt"

	"github.com/roach88/arbor/internal/ir"
)

// CommitError is a validation failure raised at Commit, never silently
// dropped or auto-healed.
type CommitError struct {
	// Code identifies the error category.
	Code CommitErrorCode

	// From is the referencing entry, for missing-child errors.
	From ir.NodeID

	// Missing is the id that failed to resolve.
	Missing ir.NodeID

	// Message is a human-readable description.
	Message string
}

// CommitErrorCode categorizes commit errors.
type CommitErrorCode string

const (
	// ErrCodeMissingRoot indicates the root id resolves to no entry.
	ErrCodeMissingRoot CommitErrorCode = "MISSING_ROOT"

	// ErrCodeMissingChild indicates a referenced child id resolves to
	// no entry.
	ErrCodeMissingChild CommitErrorCode = "MISSING_CHILD"
)

// Error implements the error interface.
func (e *CommitError) Error() string {
	if e.Code == ErrCodeMissingChild {
		return fmt.Sprintf("%s: entry %s references missing id %s", e.Code, e.From, e.Missing)
	}
	return fmt.Sprintf("%s: %s (id=%s)", e.Code, e.Message, e.Missing)
}

// IsMissingRoot reports whether err is a missing-root commit error.
func IsMissingRoot(err error) bool {
	var ce *CommitError
	return errors.As(err, &ce) && ce.Code == ErrCodeMissingRoot
}

// IsMissingChild reports whether err is a missing-child commit error.
func IsMissingChild(err error) bool {
	var ce *CommitError
	return errors.As(err, &ce) && ce.Code == ErrCodeMissingChild
}
