package models

import (
	"errors"
	"fmt"
)

// Sentinel errors for authentication and authorization.
var (
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("insufficient role for this operation")
)

// ErrNotFound indicates that no log rows matched a delete or export request.
var ErrNotFound = errors.New("no log entries match the request")

// ValidationError reports a bad or missing request field.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}

	return e.Field + ": " + e.Message
}

// ComplianceViolation reports an attempt to purge a category protected by
// compliance rules. It unwraps to a *ValidationError, so callers matching
// validation failures also match it; no role can override it.
type ComplianceViolation struct {
	Category Category
}

// Error implements the error interface.
func (e *ComplianceViolation) Error() string {
	return fmt.Sprintf("category %s cannot be deleted for compliance reasons", e.Category)
}

// Unwrap exposes the validation error view of the violation.
func (e *ComplianceViolation) Unwrap() error {
	return &ValidationError{Field: "category", Message: e.Error()}
}

// PersistenceError wraps a store failure together with the stage it happened in.
type PersistenceError struct {
	Stage string
	Err   error
}

// Error implements the error interface.
func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

// Unwrap returns the underlying store error.
func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// IsValidation reports whether err is (or wraps) a validation failure.
func IsValidation(err error) bool {
	var ve *ValidationError

	return errors.As(err, &ve)
}

// IsCompliance reports whether err is (or wraps) a compliance violation.
func IsCompliance(err error) bool {
	var cv *ComplianceViolation

	return errors.As(err, &cv)
}
