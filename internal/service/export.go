package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/learnhub/auditkeeper/internal/domain"
	"github.com/learnhub/auditkeeper/internal/metrics"
	"github.com/learnhub/auditkeeper/internal/models"
)

// exportStore reads export rows.
type exportStore interface {
	ExportRows(ctx context.Context, d models.CategoryDescriptor, f models.FilterSpec, limit int) ([]models.LogRecord, error)
}

// privilegedRecorder writes the entries a privileged operation leaves behind.
type privilegedRecorder interface {
	RecordPrivilegedAction(ctx context.Context, entry models.ActivityEntry, event models.SecurityEvent) error
}

// Compile-time check: *ExportService must satisfy domain.ExportService.
var _ domain.ExportService = (*ExportService)(nil)

// ExportService renders a category as CSV and records that it did so.
type ExportService struct {
	store    exportStore
	recorder privilegedRecorder
	log      *logrus.Logger
	now      func() time.Time
}

// NewExportService creates an ExportService.
func NewExportService(store exportStore, recorder privilegedRecorder, log *logrus.Logger) *ExportService {
	return &ExportService{store: store, recorder: recorder, log: log, now: time.Now}
}

// Export returns up to models.ExportRowCap rows of an explicitly named category
// as CSV. Zero matching rows is models.ErrNotFound and leaves no trace. On
// success an activity entry and a high-severity security event are committed
// before the document is returned.
func (s *ExportService) Export(
	ctx context.Context, actor models.Actor, category string, f models.FilterSpec,
) (*models.ExportDocument, error) {
	if err := models.Authorize(&actor.Identity, models.ExportRoles...); err != nil {
		return nil, err
	}

	d, err := models.ResolveStrict(category)
	if err != nil {
		return nil, err
	}

	honored := f.Honored(d)

	dr, err := models.ParseDateRange(honored[models.DateFromKey], honored[models.DateToKey])
	if err != nil {
		return nil, err
	}

	records, err := s.store.ExportRows(ctx, d, honored, models.ExportRowCap+1)
	if err != nil {
		return nil, err
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("exporting %s for %s: %w", d.ID, dr, models.ErrNotFound)
	}

	truncated := len(records) > models.ExportRowCap
	if truncated {
		records = records[:models.ExportRowCap]
	}

	data, err := encodeCSV(records)
	if err != nil {
		return nil, err
	}

	description := fmt.Sprintf("Exported %d %s entries (%s)", len(records), d.ID, dr)
	meta := map[string]any{
		"category":  string(d.ID),
		"row_count": len(records),
		"truncated": truncated,
		"filters":   honored,
	}

	err = s.recorder.RecordPrivilegedAction(ctx,
		models.ActivityEntry{
			UserEmail:    actor.Email,
			ActivityType: models.ActivityExport,
			Description:  description,
			Success:      true,
			IPAddress:    actor.IPAddress,
			UserAgent:    actor.UserAgent,
			Metadata:     meta,
		},
		models.SecurityEvent{
			EventType:   models.EventAuditLogExport,
			Severity:    models.SeverityHigh,
			Title:       "Audit logs exported",
			Description: fmt.Sprintf("%s: %s", actor.Name(), description),
			Email:       actor.Email,
			IPAddress:   actor.IPAddress,
			UserAgent:   actor.UserAgent,
			Metadata:    meta,
		},
	)
	if err != nil {
		return nil, err
	}

	metrics.ExportRows.WithLabelValues(string(d.ID)).Add(float64(len(records)))

	s.log.WithFields(logrus.Fields{
		"action":    "logs.export",
		"actor":     actor.Name(),
		"category":  d.ID,
		"row_count": len(records),
		"truncated": truncated,
	}).Info("audit")

	return &models.ExportDocument{
		Category:  d.ID,
		Filename:  models.ExportFilename(d.ID, s.now()),
		Data:      data,
		RowCount:  len(records),
		Truncated: truncated,
	}, nil
}
