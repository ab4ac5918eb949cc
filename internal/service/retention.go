package service

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/learnhub/auditkeeper/internal/domain"
	"github.com/learnhub/auditkeeper/internal/metrics"
	"github.com/learnhub/auditkeeper/internal/models"
)

// retentionStore runs the transactional purge.
type retentionStore interface {
	Purge(ctx context.Context, d models.CategoryDescriptor, minAgeDays int, actor models.Actor) (*models.RetentionResult, error)
}

// Compile-time check: *RetentionService must satisfy domain.RetentionService.
var _ domain.RetentionService = (*RetentionService)(nil)

// RetentionService validates and executes bulk deletion of aged log rows.
type RetentionService struct {
	store retentionStore
	log   *logrus.Logger
}

// NewRetentionService creates a RetentionService.
func NewRetentionService(store retentionStore, log *logrus.Logger) *RetentionService {
	return &RetentionService{store: store, log: log}
}

// Purge deletes rows older than req.MinAgeDays from req.Category.
//
// The caller must be authenticated. The protected category is refused with a
// ComplianceViolation for every caller; the role check then runs before the
// remaining field validation. Nothing is written unless both pass.
func (s *RetentionService) Purge(
	ctx context.Context, actor models.Actor, req models.RetentionRequest,
) (*models.RetentionResult, error) {
	if actor.Subject == "" {
		return nil, models.ErrUnauthenticated
	}

	if err := req.CheckProtected(); err != nil {
		s.log.WithFields(logrus.Fields{
			"actor":    actor.Name(),
			"category": req.Category,
		}).Warn("retention request for protected category refused")

		return nil, err
	}

	if err := models.Authorize(&actor.Identity, models.PurgeRoles...); err != nil {
		return nil, err
	}

	d, err := req.Validate()
	if err != nil {
		return nil, err
	}

	res, err := s.store.Purge(ctx, d, req.MinAgeDays, actor)
	if err != nil {
		var pe *models.PersistenceError
		if errors.As(err, &pe) {
			metrics.RetentionFailures.WithLabelValues(pe.Stage).Inc()
		}

		return nil, err
	}

	metrics.RetentionDeletedRows.WithLabelValues(string(res.Category)).Add(float64(res.DeletedCount))

	s.log.WithFields(logrus.Fields{
		"action":        "logs.purge",
		"actor":         actor.Name(),
		"category":      res.Category,
		"deleted_count": res.DeletedCount,
		"min_age_days":  res.MinAgeDays,
	}).Info("audit")

	return res, nil
}
