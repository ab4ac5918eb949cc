package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/learnhub/auditkeeper/internal/models"
)

// ActivityStore writes the entries privileged operations leave behind.
type ActivityStore struct {
	Base
}

// NewActivityStore creates an ActivityStore.
func NewActivityStore(base Base) *ActivityStore {
	return &ActivityStore{Base: base}
}

// RecordPrivilegedAction writes an activity entry and a security event in one
// transaction: either both rows exist afterwards or neither does.
func (s *ActivityStore) RecordPrivilegedAction(
	ctx context.Context, entry models.ActivityEntry, event models.SecurityEvent,
) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tx, err := s.beginTx(ctx)
	if err != nil {
		return &models.PersistenceError{Stage: "recording privileged action", Err: err}
	}
	defer tx.Rollback(ctx) //nolint:errcheck // best-effort rollback on early return.

	if err := insertActivity(ctx, tx, entry); err != nil {
		return &models.PersistenceError{Stage: "recording privileged action", Err: err}
	}

	if err := insertSecurityEvent(ctx, tx, event); err != nil {
		return &models.PersistenceError{Stage: "recording privileged action", Err: err}
	}

	if err := tx.Commit(ctx); err != nil {
		return &models.PersistenceError{Stage: "recording privileged action", Err: err}
	}

	return nil
}

func marshalJSON(v map[string]any) ([]byte, error) {
	if v == nil {
		return nil, nil
	}

	return json.Marshal(v)
}

func insertActivity(ctx context.Context, q Querier, e models.ActivityEntry) error {
	meta, err := marshalJSON(e.Metadata)
	if err != nil {
		return fmt.Errorf("marshaling activity metadata: %w", err)
	}

	_, err = q.Exec(ctx, `
		INSERT INTO user_activities
			(user_email, activity_type, description, success, ip_address, user_agent, metadata, started_at, ended_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())`,
		nullIfEmpty(e.UserEmail), e.ActivityType, e.Description, e.Success,
		nullIfEmpty(e.IPAddress), nullIfEmpty(e.UserAgent), meta,
	)
	if err != nil {
		return fmt.Errorf("inserting activity entry: %w", err)
	}

	return nil
}

func insertSecurityEvent(ctx context.Context, q Querier, ev models.SecurityEvent) error {
	meta, err := marshalJSON(ev.Metadata)
	if err != nil {
		return fmt.Errorf("marshaling security event metadata: %w", err)
	}

	_, err = q.Exec(ctx, `
		INSERT INTO security_events
			(event_type, severity, title, description, email, ip_address, user_agent, resolved, metadata, detected_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())`,
		ev.EventType, ev.Severity, ev.Title, ev.Description,
		nullIfEmpty(ev.Email), nullIfEmpty(ev.IPAddress), nullIfEmpty(ev.UserAgent), ev.Resolved, meta,
	)
	if err != nil {
		return fmt.Errorf("inserting security event: %w", err)
	}

	return nil
}

func insertDataChange(ctx context.Context, q Querier, dc models.DataChange) error {
	oldData, err := marshalJSON(dc.OldData)
	if err != nil {
		return fmt.Errorf("marshaling old data: %w", err)
	}

	newData, err := marshalJSON(dc.NewData)
	if err != nil {
		return fmt.Errorf("marshaling new data: %w", err)
	}

	_, err = q.Exec(ctx, `
		INSERT INTO data_changes
			(user_email, table_name, operation, old_data, new_data, change_reason, ip_address, changed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())`,
		nullIfEmpty(dc.UserEmail), dc.TableName, dc.Operation, oldData, newData,
		dc.ChangeReason, nullIfEmpty(dc.IPAddress),
	)
	if err != nil {
		return fmt.Errorf("inserting data change: %w", err)
	}

	return nil
}
