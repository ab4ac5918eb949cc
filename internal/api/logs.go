package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/learnhub/auditkeeper/internal/domain"
	"github.com/learnhub/auditkeeper/internal/middleware"
)

// LogHandler serves the read-only log endpoints.
type LogHandler struct {
	svc domain.LogService
	log *logrus.Logger
}

// NewLogHandler creates a LogHandler.
func NewLogHandler(svc domain.LogService, log *logrus.Logger) *LogHandler {
	return &LogHandler{svc: svc, log: log}
}

// List handles GET /api/v1/logs.
func (h *LogHandler) List(c *gin.Context) {
	res, err := h.svc.List(c.Request.Context(), middleware.ActorFrom(c), c.Query("category"), filtersFromQuery(c), parsePage(c))
	if err != nil {
		respondServiceError(c, h.log, err, "list logs")
		return
	}

	c.JSON(http.StatusOK, res)
}

// Summary handles GET /api/v1/logs/summary.
func (h *LogHandler) Summary(c *gin.Context) {
	sum, err := h.svc.Summary(c.Request.Context(), middleware.ActorFrom(c))
	if err != nil {
		respondServiceError(c, h.log, err, "summarize logs")
		return
	}

	c.JSON(http.StatusOK, sum)
}

// Categories handles GET /api/v1/logs/categories.
func (h *LogHandler) Categories(c *gin.Context) {
	cats, err := h.svc.Categories(c.Request.Context(), middleware.ActorFrom(c))
	if err != nil {
		respondServiceError(c, h.log, err, "list categories")
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": cats})
}
