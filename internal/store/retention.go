package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/learnhub/auditkeeper/internal/models"
)

// errCountMismatch means the DELETE removed a different number of rows than were backed up.
var errCountMismatch = errors.New("deleted row count does not match backed-up count")

// RetentionStore deletes aged rows together with their backup and audit entries.
type RetentionStore struct {
	Base
}

// NewRetentionStore creates a RetentionStore.
func NewRetentionStore(base Base) *RetentionStore {
	return &RetentionStore{Base: base}
}

// Purge deletes rows of d older than minAgeDays in a single transaction.
//
// Inside the transaction it counts the matching rows, writes a data_changes
// backup entry describing them, deletes them, then records a security event
// and an activity entry naming the actor. Any failure rolls everything back.
// Concurrent purges of the same category are serialized by a transaction-level
// advisory lock so the counted and deleted sets agree.
//
// Returns models.ErrNotFound (wrapped) when nothing is old enough.
func (s *RetentionStore) Purge(
	ctx context.Context, d models.CategoryDescriptor, minAgeDays int, actor models.Actor,
) (*models.RetentionResult, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tx, err := s.beginTx(ctx)
	if err != nil {
		return nil, &models.PersistenceError{Stage: string(models.StateValidated), Err: err}
	}
	defer tx.Rollback(ctx) //nolint:errcheck // best-effort rollback on early return.

	if _, err := tx.Exec(ctx,
		"SELECT pg_advisory_xact_lock(hashtext($1))", "auditkeeper.retention."+d.Table,
	); err != nil {
		return nil, &models.PersistenceError{Stage: "locking " + d.Table, Err: err}
	}

	ts := ident(d.TimestampColumn)
	aged := " WHERE " + ts + " < NOW() - make_interval(days => $1)"

	var count int64
	if err := tx.QueryRow(ctx,
		"SELECT COUNT(*) FROM "+ident(d.Table)+aged, minAgeDays,
	).Scan(&count); err != nil {
		return nil, &models.PersistenceError{Stage: string(models.StateCounted), Err: err}
	}

	if count == 0 {
		return nil, fmt.Errorf("%s older than %d days: %w", d.ID, minAgeDays, models.ErrNotFound)
	}

	if err := insertDataChange(ctx, tx, models.DataChange{
		UserEmail: actor.Email,
		TableName: d.Table,
		Operation: models.OperationDelete,
		OldData: map[string]any{
			"rows_to_delete": count,
			"min_age_days":   minAgeDays,
			"category":       string(d.ID),
		},
		NewData:      map[string]any{"status": "deleted"},
		ChangeReason: fmt.Sprintf("Bulk deletion of %s older than %d days", d.ID, minAgeDays),
		IPAddress:    actor.IPAddress,
	}); err != nil {
		return nil, &models.PersistenceError{Stage: string(models.StateBackedUp), Err: err}
	}

	tag, err := tx.Exec(ctx, "DELETE FROM "+ident(d.Table)+aged, minAgeDays)
	if err != nil {
		return nil, &models.PersistenceError{Stage: string(models.StateDeleted), Err: err}
	}

	if tag.RowsAffected() != count {
		return nil, &models.PersistenceError{
			Stage: string(models.StateDeleted),
			Err:   fmt.Errorf("%w: counted %d, deleted %d", errCountMismatch, count, tag.RowsAffected()),
		}
	}

	description := fmt.Sprintf("%s deleted %d %s entries older than %d days",
		actor.Name(), count, d.ID, minAgeDays)

	if err := insertSecurityEvent(ctx, tx, models.SecurityEvent{
		EventType:   models.EventAuditLogDeletion,
		Severity:    models.SeverityCritical,
		Title:       "Audit logs deleted",
		Description: description,
		Email:       actor.Email,
		IPAddress:   actor.IPAddress,
		UserAgent:   actor.UserAgent,
		Resolved:    true,
		Metadata: map[string]any{
			"category":      string(d.ID),
			"deleted_count": count,
			"min_age_days":  minAgeDays,
		},
	}); err != nil {
		return nil, &models.PersistenceError{Stage: string(models.StateLogged), Err: err}
	}

	if err := insertActivity(ctx, tx, models.ActivityEntry{
		UserEmail:    actor.Email,
		ActivityType: models.ActivityDeleteAuditLogs,
		Description:  description,
		Success:      true,
		IPAddress:    actor.IPAddress,
		UserAgent:    actor.UserAgent,
		Metadata: map[string]any{
			"category":      string(d.ID),
			"deleted_count": count,
		},
	}); err != nil {
		return nil, &models.PersistenceError{Stage: string(models.StateLogged), Err: err}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, &models.PersistenceError{Stage: string(models.StateCommitted), Err: err}
	}

	s.Log.WithFields(logrus.Fields{
		"category":      d.ID,
		"deleted_count": count,
		"min_age_days":  minAgeDays,
		"actor":         actor.Name(),
	}).Info("retention purge committed")

	return &models.RetentionResult{
		Category:     d.ID,
		DeletedCount: count,
		MinAgeDays:   minAgeDays,
	}, nil
}
