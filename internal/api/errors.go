package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/learnhub/auditkeeper/internal/httputil"
	"github.com/learnhub/auditkeeper/internal/middleware"
	"github.com/learnhub/auditkeeper/internal/models"
)

// Error code constants for standardized API responses.
const (
	ErrCodeInvalidRequest      = "invalid_request"
	ErrCodeNotFound            = "not_found"
	ErrCodeInternalError       = "internal_error"
	ErrCodeUnauthorized        = "unauthorized"
	ErrCodeForbidden           = "forbidden"
	ErrCodeComplianceViolation = "compliance_violation"
	ErrCodeRateLimited         = "rate_limited"
	ErrCodeValidationError     = "validation_error"
)

func respondError(c *gin.Context, status int, code, message string) {
	httputil.RespondError(c, status, code, message)
}

// respondServiceError maps a service error onto the HTTP error taxonomy.
// Unexpected errors are logged and reported as "failed to <action>".
func respondServiceError(c *gin.Context, log *logrus.Logger, err error, action string) {
	switch {
	case errors.Is(err, models.ErrUnauthenticated):
		respondError(c, http.StatusUnauthorized, ErrCodeUnauthorized, err.Error())
	case errors.Is(err, models.ErrForbidden):
		respondError(c, http.StatusForbidden, ErrCodeForbidden, err.Error())
	case models.IsCompliance(err):
		respondError(c, http.StatusForbidden, ErrCodeComplianceViolation, err.Error())
	case models.IsValidation(err):
		respondError(c, http.StatusBadRequest, ErrCodeValidationError, err.Error())
	case errors.Is(err, models.ErrNotFound):
		respondError(c, http.StatusNotFound, ErrCodeNotFound, err.Error())
	default:
		log.WithError(err).WithField("request_id", c.GetString(middleware.RequestIDKey)).Error("failed to " + action)
		respondError(c, http.StatusInternalServerError, ErrCodeInternalError, "failed to "+action)
	}
}
