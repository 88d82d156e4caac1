// Package errs contains the sentinel errors shared by the repository, service
// and handler layers.
package errs

import (
	"errors"
	"sort"
	"strings"
)

var (
	// ErrUnauthenticated indicates a request without a valid session or token.
	ErrUnauthenticated = errors.New("authentication required")

	// ErrForbidden indicates an authenticated caller lacking the admin role.
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound indicates a missing row, or a row the caller may not see.
	ErrNotFound = errors.New("not found")

	// ErrConflict indicates a uniqueness violation such as a taken username.
	ErrConflict = errors.New("conflict")

	// ErrInvalidCredentials is returned for any failed login attempt.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrSelfDemotion is returned when an admin tries to demote themselves.
	ErrSelfDemotion = errors.New("cannot demote yourself")

	// ErrValidation is wrapped by every *ValidationError.
	ErrValidation = errors.New("validation error")
)

// ValidationError carries field-level messages keyed by the JSON field name.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError builds a ValidationError from field/message pairs.
func NewValidationError(fields map[string]string) *ValidationError {
	return &ValidationError{Fields: fields}
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation error: " + strings.Join(parts, "; ")
}

// Unwrap lets errors.Is(err, ErrValidation) match.
func (e *ValidationError) Unwrap() error { return ErrValidation }

// AsValidation extracts a *ValidationError from err.
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
