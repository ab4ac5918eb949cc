package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/learnhub/auditkeeper/internal/models"
)

// LogStore provides read-only access to the category tables.
type LogStore struct {
	Base
}

// NewLogStore creates a LogStore.
func NewLogStore(base Base) *LogStore {
	return &LogStore{Base: base}
}

// List returns one page of rows, most recent first. The COUNT(*) and the page
// query share the same predicate, so Total always describes the filtered set.
// A page past the end yields no rows and still reports the correct totals.
func (s *LogStore) List(
	ctx context.Context, d models.CategoryDescriptor, f models.FilterSpec, page models.PageRequest,
) (*models.PageResult, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	page = page.Normalize()

	pred, err := buildFilter(d, f)
	if err != nil {
		return nil, err
	}

	var total int64
	if err := s.Pool.QueryRow(ctx, countQuery(d, pred), pred.args...).Scan(&total); err != nil {
		return nil, &models.PersistenceError{Stage: "counting " + d.Table, Err: err}
	}

	args := append(append([]any{}, pred.args...), page.PageSize, page.Offset())

	records, err := s.queryRecords(ctx, selectQuery(d, d.Columns, pred, true), args)
	if err != nil {
		return nil, &models.PersistenceError{Stage: "listing " + d.Table, Err: err}
	}

	return &models.PageResult{
		Rows:       records,
		Pagination: models.NewPagination(page, total),
	}, nil
}

// ExportRows returns up to limit rows of the curated export columns, most recent first.
func (s *LogStore) ExportRows(
	ctx context.Context, d models.CategoryDescriptor, f models.FilterSpec, limit int,
) ([]models.LogRecord, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	pred, err := buildFilter(d, f)
	if err != nil {
		return nil, err
	}

	args := append(append([]any{}, pred.args...), limit)

	records, err := s.queryRecords(ctx, selectQuery(d, d.ExportColumns, pred, false), args)
	if err != nil {
		return nil, &models.PersistenceError{Stage: "exporting " + d.Table, Err: err}
	}

	return records, nil
}

// Count returns the unfiltered row count of one category.
func (s *LogStore) Count(ctx context.Context, d models.CategoryDescriptor) (int64, error) {
	var n int64
	if err := s.Pool.QueryRow(ctx, countQuery(d, &predicate{})).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting %s: %w", d.Table, err)
	}

	return n, nil
}

// queryRecords runs query and scans every row into a column-keyed record.
func (s *LogStore) queryRecords(ctx context.Context, query string, args []any) ([]models.LogRecord, error) {
	rows, err := s.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying log rows: %w", err)
	}

	maps, err := pgx.CollectRows(rows, pgx.RowToMap)
	if err != nil {
		return nil, fmt.Errorf("scanning log rows: %w", err)
	}

	records := make([]models.LogRecord, len(maps))
	for i, m := range maps {
		records[i] = models.LogRecord(m)
	}

	return records, nil
}
