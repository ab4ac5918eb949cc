package api

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// HealthPool is the database surface the health endpoints probe.
// *dbpool.Pool satisfies it.
type HealthPool interface {
	HealthCheck(ctx context.Context) error
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}
