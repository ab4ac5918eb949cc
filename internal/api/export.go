package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/learnhub/auditkeeper/internal/domain"
	"github.com/learnhub/auditkeeper/internal/middleware"
)

// Export response headers.
const (
	HeaderExportRowCount  = "X-Export-Row-Count"
	HeaderExportTruncated = "X-Export-Truncated"
)

// ExportHandler serves CSV downloads.
type ExportHandler struct {
	svc domain.ExportService
	log *logrus.Logger
}

// NewExportHandler creates an ExportHandler.
func NewExportHandler(svc domain.ExportService, log *logrus.Logger) *ExportHandler {
	return &ExportHandler{svc: svc, log: log}
}

// Export handles GET /api/v1/logs/export.
func (h *ExportHandler) Export(c *gin.Context) {
	doc, err := h.svc.Export(c.Request.Context(), middleware.ActorFrom(c), c.Query("category"), filtersFromQuery(c))
	if err != nil {
		respondServiceError(c, h.log, err, "export logs")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Filename))
	c.Header(HeaderExportRowCount, strconv.Itoa(doc.RowCount))
	c.Header(HeaderExportTruncated, strconv.FormatBool(doc.Truncated))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", doc.Data)
}
