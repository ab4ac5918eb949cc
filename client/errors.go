package client

import (
	"encoding/json"
	"errors"
	"fmt"
)

// APIError represents a structured error response from the auditkeeper API.
type APIError struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"message"`
	RequestID  string `json:"request_id,omitempty"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.RequestID != "" {
		return fmt.Sprintf("auditkeeper: %d %s: %s (request_id=%s)", e.StatusCode, e.Code, e.Message, e.RequestID)
	}
	return fmt.Sprintf("auditkeeper: %d %s: %s", e.StatusCode, e.Code, e.Message)
}

func hasStatus(err error, status int) bool {
	var e *APIError
	return errors.As(err, &e) && e.StatusCode == status
}

func hasCode(err error, code string) bool {
	var e *APIError
	return errors.As(err, &e) && e.Code == code
}

// IsNotFound returns true if the error is a 404 (no matching rows).
func IsNotFound(err error) bool { return hasStatus(err, 404) }

// IsUnauthorized returns true if the credential was missing or rejected.
func IsUnauthorized(err error) bool { return hasStatus(err, 401) }

// IsForbidden returns true if the caller's role is too low.
func IsForbidden(err error) bool { return hasCode(err, "forbidden") }

// IsComplianceViolation returns true if the request targeted a protected category.
func IsComplianceViolation(err error) bool { return hasCode(err, "compliance_violation") }

// IsValidation returns true if the server rejected the request parameters.
func IsValidation(err error) bool { return hasCode(err, "validation_error") }

// IsRateLimited returns true if the error is a 429 rate limit.
func IsRateLimited(err error) bool { return hasStatus(err, 429) }

// parseAPIError attempts to decode a JSON error body; falls back to raw text.
func parseAPIError(statusCode int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: statusCode}
	if err := json.Unmarshal(body, apiErr); err != nil || apiErr.Code == "" {
		apiErr.Code = "unknown"
		apiErr.Message = string(body)
	}
	return apiErr
}
