package storage

import (
	"errors"
	"fmt"
)

// Error kinds surfaced to callers. Handlers map these to HTTP status codes;
// anything else is an opaque storage failure.
var (
	// ErrNotFound covers both unknown IDs and rows owned by another user.
	// The two causes are deliberately indistinguishable so that probing
	// for other users' data reveals nothing.
	ErrNotFound = errors.New("not found")

	// ErrConflict reports an operation that clashes with current state,
	// e.g. starting a session while one is active, or ending a session
	// that is not active.
	ErrConflict = errors.New("conflict")

	// ErrInvalidArgument reports a structurally valid request that refers
	// to an impossible position, e.g. a set index out of range.
	ErrInvalidArgument = errors.New("invalid argument")

	// errNoRows is the backend-neutral no-rows sentinel. Both drivers
	// translate their native error to this; store methods then decide
	// between ErrNotFound and nil-result semantics.
	errNoRows = errors.New("no rows")
)

// ValidationError reports a bad input value, naming the offending field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func validationErr(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
