package service

import (
	"context"
	"io"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/learnhub/auditkeeper/internal/models"
)

// mockLogStore records calls and returns configured responses.
type mockLogStore struct {
	mu    sync.Mutex
	calls []string

	list       func(ctx context.Context, d models.CategoryDescriptor, f models.FilterSpec, page models.PageRequest) (*models.PageResult, error)
	summary    func(ctx context.Context) (*models.Summary, error)
	exportRows func(ctx context.Context, d models.CategoryDescriptor, f models.FilterSpec, limit int) ([]models.LogRecord, error)
}

func (m *mockLogStore) record(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, name)
}

func (m *mockLogStore) List(ctx context.Context, d models.CategoryDescriptor, f models.FilterSpec, page models.PageRequest) (*models.PageResult, error) {
	m.record("List")
	return m.list(ctx, d, f, page)
}

func (m *mockLogStore) Summary(ctx context.Context) (*models.Summary, error) {
	m.record("Summary")
	return m.summary(ctx)
}

func (m *mockLogStore) ExportRows(ctx context.Context, d models.CategoryDescriptor, f models.FilterSpec, limit int) ([]models.LogRecord, error) {
	m.record("ExportRows")
	return m.exportRows(ctx, d, f, limit)
}

// mockRecorder captures privileged action entries.
type mockRecorder struct {
	mu      sync.Mutex
	entries []models.ActivityEntry
	events  []models.SecurityEvent
	err     error
}

func (m *mockRecorder) RecordPrivilegedAction(_ context.Context, entry models.ActivityEntry, event models.SecurityEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return m.err
	}
	m.entries = append(m.entries, entry)
	m.events = append(m.events, event)

	return nil
}

// mockRetentionStore records purge calls.
type mockRetentionStore struct {
	mu    sync.Mutex
	calls int

	purge func(ctx context.Context, d models.CategoryDescriptor, minAgeDays int, actor models.Actor) (*models.RetentionResult, error)
}

func (m *mockRetentionStore) Purge(ctx context.Context, d models.CategoryDescriptor, minAgeDays int, actor models.Actor) (*models.RetentionResult, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()

	return m.purge(ctx, d, minAgeDays, actor)
}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)

	return log
}

func actorWithRole(role models.Role) models.Actor {
	return models.Actor{
		Identity:  models.Identity{Subject: "user-" + string(role), Email: string(role) + "@school.test", Role: role},
		IPAddress: "198.51.100.7",
		UserAgent: "service-test",
	}
}
