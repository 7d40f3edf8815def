// Package common defines shared constants and sentinel errors used across
// the artwall client layers. Callers should use errors.Is to match these
// values.
package common

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation is returned for input rejected on the client before any
	// network call is made, and for 400/422 answers from the server.
	ErrValidation = errors.New("validation failed")

	// ErrNetwork means the request could not complete (dial, timeout, reset).
	ErrNetwork = errors.New("network failure")

	// ErrUnauthorized maps 401/403 answers on gated calls.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNotFound means the target entity vanished on the server.
	ErrNotFound = errors.New("not found")

	// ErrServer covers 5xx answers and payloads that could not be decoded
	// into typed entities.
	ErrServer = errors.New("server error")

	// ErrBadCredentials is returned by the admin login exchange when the
	// password is rejected. It matches ErrUnauthorized as well.
	ErrBadCredentials = fmt.Errorf("bad credentials: %w", ErrUnauthorized)
)

// ValidationError names the field that failed a client-side check.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", ErrValidation, e.Reason)
	}
	return fmt.Sprintf("%s: %s %s", ErrValidation, e.Field, e.Reason)
}

// Is makes errors.Is(err, ErrValidation) hold for every ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Invalid builds a ValidationError for field.
func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
