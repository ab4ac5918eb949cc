package store

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/learnhub/auditkeeper/internal/models"
)

// Summary counts rows in every category concurrently. Each count acquires its
// own pooled connection; nothing is cached between calls.
func (s *LogStore) Summary(ctx context.Context) (*models.Summary, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	descriptors := models.Descriptors()
	counts := make([]int64, len(descriptors))

	g, gctx := errgroup.WithContext(ctx)
	for i, d := range descriptors {
		g.Go(func() error {
			n, err := s.Count(gctx, d)
			if err != nil {
				return err
			}
			counts[i] = n

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, &models.PersistenceError{Stage: "summarizing categories", Err: err}
	}

	sum := &models.Summary{Counts: make(map[models.Category]int64, len(descriptors))}
	for i, d := range descriptors {
		sum.Counts[d.ID] = counts[i]
		sum.Total += counts[i]
	}

	return sum, nil
}
