package entity

import (
	"errors"
	"fmt"
)

// Sentinel errors for domain layer operations.
var (
	// ErrMalformedEntry indicates that a feed entry lacks a required element
	// or carries a value that cannot be interpreted.
	ErrMalformedEntry = errors.New("malformed feed entry")

	// ErrPointOutOfRange indicates a chart point index outside the series.
	ErrPointOutOfRange = errors.New("chart point index out of range")
)

// ValidationError represents a validation error with detailed field information.
// It wraps ErrMalformedEntry so callers can match it with errors.Is.
type ValidationError struct {
	Field   string
	Message string
}

// Error returns a formatted error message for the validation error.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}

// Unwrap lets errors.Is(err, ErrMalformedEntry) succeed.
func (e *ValidationError) Unwrap() error {
	return ErrMalformedEntry
}
