package api_test

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/learnhub/auditkeeper/internal/models"
)

// mockLogService implements domain.LogService for testing.
type mockLogService struct {
	listFn       func(ctx context.Context, actor models.Actor, category string, f models.FilterSpec, page models.PageRequest) (*models.ListResult, error)
	summaryFn    func(ctx context.Context, actor models.Actor) (*models.Summary, error)
	categoriesFn func(ctx context.Context, actor models.Actor) ([]models.CategoryDescriptor, error)
}

func (m *mockLogService) List(ctx context.Context, actor models.Actor, category string, f models.FilterSpec, page models.PageRequest) (*models.ListResult, error) {
	return m.listFn(ctx, actor, category, f, page)
}

func (m *mockLogService) Summary(ctx context.Context, actor models.Actor) (*models.Summary, error) {
	return m.summaryFn(ctx, actor)
}

func (m *mockLogService) Categories(ctx context.Context, actor models.Actor) ([]models.CategoryDescriptor, error) {
	return m.categoriesFn(ctx, actor)
}

// mockExportService implements domain.ExportService for testing.
type mockExportService struct {
	exportFn func(ctx context.Context, actor models.Actor, category string, f models.FilterSpec) (*models.ExportDocument, error)
}

func (m *mockExportService) Export(ctx context.Context, actor models.Actor, category string, f models.FilterSpec) (*models.ExportDocument, error) {
	return m.exportFn(ctx, actor, category, f)
}

// mockRetentionService implements domain.RetentionService for testing.
type mockRetentionService struct {
	purgeFn func(ctx context.Context, actor models.Actor, req models.RetentionRequest) (*models.RetentionResult, error)
}

func (m *mockRetentionService) Purge(ctx context.Context, actor models.Actor, req models.RetentionRequest) (*models.RetentionResult, error) {
	return m.purgeFn(ctx, actor, req)
}

// mockVerifier implements domain.IdentityVerifier for testing.
type mockVerifier struct {
	tokens map[string]models.Identity
}

func (m *mockVerifier) VerifyToken(_ context.Context, token string) (*models.Identity, error) {
	id, ok := m.tokens[token]
	if !ok {
		return nil, models.ErrUnauthenticated
	}
	return &id, nil
}

// mockPool implements api.HealthPool for testing.
type mockPool struct {
	healthErr error
	missing   int
	queryErr  error
}

func (m *mockPool) HealthCheck(context.Context) error { return m.healthErr }

func (m *mockPool) QueryRow(context.Context, string, ...any) pgx.Row {
	return mockRow{value: m.missing, err: m.queryErr}
}

type mockRow struct {
	value int
	err   error
}

func (r mockRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if p, ok := dest[0].(*int); ok {
		*p = r.value
	}
	return nil
}
