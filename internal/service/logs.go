// Package service implements the audit-log operations: listing, aggregation,
// export, and retention. Every entry point checks the caller's role before
// touching the store.
package service

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/learnhub/auditkeeper/internal/domain"
	"github.com/learnhub/auditkeeper/internal/models"
)

// logReadStore is the read surface LogService depends on.
type logReadStore interface {
	List(ctx context.Context, d models.CategoryDescriptor, f models.FilterSpec, page models.PageRequest) (*models.PageResult, error)
	Summary(ctx context.Context) (*models.Summary, error)
}

// Compile-time check: *LogService must satisfy domain.LogService.
var _ domain.LogService = (*LogService)(nil)

// LogService serves read-only views of the log categories.
type LogService struct {
	store logReadStore
	log   *logrus.Logger
}

// NewLogService creates a LogService.
func NewLogService(store logReadStore, log *logrus.Logger) *LogService {
	return &LogService{store: store, log: log}
}

// List returns one filtered page of a category together with the cross-category
// summary and the filters that were honored. An unknown category falls back to
// the default one.
func (s *LogService) List(
	ctx context.Context, actor models.Actor, category string, f models.FilterSpec, page models.PageRequest,
) (*models.ListResult, error) {
	if err := models.Authorize(&actor.Identity, models.ReadRoles...); err != nil {
		return nil, err
	}

	d := models.ResolveOrDefault(category)
	honored := f.Honored(d)

	res, err := s.store.List(ctx, d, honored, page)
	if err != nil {
		return nil, err
	}

	sum, err := s.store.Summary(ctx)
	if err != nil {
		return nil, err
	}

	return &models.ListResult{
		Category:   d.ID,
		Rows:       res.Rows,
		Pagination: res.Pagination,
		Summary:    sum,
		Filters:    honored,
	}, nil
}

// Summary returns per-category row counts.
func (s *LogService) Summary(ctx context.Context, actor models.Actor) (*models.Summary, error) {
	if err := models.Authorize(&actor.Identity, models.ReadRoles...); err != nil {
		return nil, err
	}

	return s.store.Summary(ctx)
}

// Categories returns every category descriptor in display order.
func (s *LogService) Categories(_ context.Context, actor models.Actor) ([]models.CategoryDescriptor, error) {
	if err := models.Authorize(&actor.Identity, models.ReadRoles...); err != nil {
		return nil, err
	}

	return models.Descriptors(), nil
}
