package ports

import (
	"errors"
	"fmt"
)

// Standard application-level errors.
// Adapters should wrap underlying infrastructure errors with these standard errors.
var (
	// General Errors
	ErrInvalidRequest     = errors.New("invalid request parameters or format")
	ErrTimeout            = errors.New("operation timed out")
	ErrContextCanceled    = errors.New("operation canceled via context")
	ErrConfigurationError = errors.New("invalid or missing configuration")

	// Detection Errors
	ErrValidation       = errors.New("candle validation failed")
	ErrModelUnavailable = errors.New("confidence model unavailable")
	ErrModelInference   = errors.New("confidence model inference failed")
	ErrInvalidArtifact  = errors.New("invalid confidence model artifact")

	// Database Specific Errors
	ErrDBConnection = errors.New("database connection error")
	ErrQueryFailed  = errors.New("database query failed")
)

// ValidationError describes why an input batch was rejected.
// It matches ErrValidation via errors.Is.
type ValidationError struct {
	Index  int    // Offending candle index, -1 when the error concerns the whole request
	Field  string // Offending field name
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("%v: %s: %s", ErrValidation, e.Field, e.Reason)
	}
	return fmt.Sprintf("%v: candle %d: %s: %s", ErrValidation, e.Index, e.Field, e.Reason)
}

// Unwrap lets errors.Is match ErrValidation.
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// NewValidationError builds a ValidationError for a candle index.
func NewValidationError(index int, field, reason string) *ValidationError {
	return &ValidationError{Index: index, Field: field, Reason: reason}
}
