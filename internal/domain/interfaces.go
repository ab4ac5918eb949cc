// Package domain defines the canonical service interfaces shared by the API
// layer and the services. Consumers should depend on these interfaces rather
// than re-declaring equivalent ones.
package domain

import (
	"context"

	"github.com/learnhub/auditkeeper/internal/models"
)

// LogService defines the read-only log operations.
type LogService interface {
	List(ctx context.Context, actor models.Actor, category string, f models.FilterSpec, page models.PageRequest) (*models.ListResult, error)
	Summary(ctx context.Context, actor models.Actor) (*models.Summary, error)
	Categories(ctx context.Context, actor models.Actor) ([]models.CategoryDescriptor, error)
}

// ExportService defines CSV export of a category.
type ExportService interface {
	Export(ctx context.Context, actor models.Actor, category string, f models.FilterSpec) (*models.ExportDocument, error)
}

// RetentionService defines bulk deletion of aged log rows.
type RetentionService interface {
	Purge(ctx context.Context, actor models.Actor, req models.RetentionRequest) (*models.RetentionResult, error)
}

// IdentityVerifier turns a bearer credential into an identity.
// It returns models.ErrUnauthenticated for credentials it does not accept.
type IdentityVerifier interface {
	VerifyToken(ctx context.Context, token string) (*models.Identity, error)
}
