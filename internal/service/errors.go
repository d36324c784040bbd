package service

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidID is returned when an id is not a 24-character hex ObjectID.
	// It is always detected before the store is touched.
	ErrInvalidID = errors.New("invalid recipe id")
	// ErrBadRequest covers missing or malformed input other than ids.
	ErrBadRequest = errors.New("bad request")
	// ErrNotFound is returned when a well-formed id matches no recipe.
	ErrNotFound = errors.New("recipe not found")
	// ErrStoreUnavailable wraps any failure reported by the record store.
	ErrStoreUnavailable = errors.New("record store unavailable")
)

// ValidationError carries a client-facing message and matches ErrBadRequest.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return ErrBadRequest
}

func badRequest(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

func storeError(op string, err error) error {
	return fmt.Errorf("%w: failed to %s: %w", ErrStoreUnavailable, op, err)
}
