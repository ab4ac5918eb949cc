package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/learnhub/auditkeeper/internal/domain"
	"github.com/learnhub/auditkeeper/internal/middleware"
	"github.com/learnhub/auditkeeper/internal/models"
)

// RetentionHandler serves bulk deletion of aged log rows.
type RetentionHandler struct {
	svc domain.RetentionService
	log *logrus.Logger
}

// NewRetentionHandler creates a RetentionHandler.
func NewRetentionHandler(svc domain.RetentionService, log *logrus.Logger) *RetentionHandler {
	return &RetentionHandler{svc: svc, log: log}
}

type purgeResponse struct {
	Category              models.Category `json:"category"`
	DeletedCount          int64           `json:"deleted_count"`
	MinAgeDays            int             `json:"min_age_days"`
	SecurityEventRecorded bool            `json:"security_event_recorded"`
	Message               string          `json:"message"`
}

// Purge handles DELETE /api/v1/logs.
func (h *RetentionHandler) Purge(c *gin.Context) {
	var req models.RetentionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid request body")
		return
	}

	res, err := h.svc.Purge(c.Request.Context(), middleware.ActorFrom(c), req)
	if err != nil {
		respondServiceError(c, h.log, err, "delete logs")
		return
	}

	c.JSON(http.StatusOK, purgeResponse{
		Category:              res.Category,
		DeletedCount:          res.DeletedCount,
		MinAgeDays:            res.MinAgeDays,
		SecurityEventRecorded: true,
		Message:               fmt.Sprintf("Deleted %d %s entries older than %d days", res.DeletedCount, res.Category, res.MinAgeDays),
	})
}
