package service

import (
	"context"
	"errors"
	"testing"

	"github.com/learnhub/auditkeeper/internal/models"
)

func newListStore(captured *models.CategoryDescriptor, filters *models.FilterSpec) *mockLogStore {
	return &mockLogStore{
		list: func(_ context.Context, d models.CategoryDescriptor, f models.FilterSpec, page models.PageRequest) (*models.PageResult, error) {
			*captured = d
			*filters = f
			page = page.Normalize()

			return &models.PageResult{
				Rows:       []models.LogRecord{{"id": int64(1)}},
				Pagination: models.NewPagination(page, 1),
			}, nil
		},
		summary: func(context.Context) (*models.Summary, error) {
			return &models.Summary{Counts: map[models.Category]int64{models.CategoryVisitors: 1}, Total: 1}, nil
		},
	}
}

func TestLogServiceListDefaultsUnknownCategory(t *testing.T) {
	var d models.CategoryDescriptor
	var f models.FilterSpec
	svc := NewLogService(newListStore(&d, &f), testLogger())

	res, err := svc.List(context.Background(), actorWithRole(models.RoleAdmin), "nonsense",
		models.FilterSpec{"activity_type": "login", "severity": "high", "user_email": ""}, models.PageRequest{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}

	if d.ID != models.CategoryUserActivities || res.Category != models.CategoryUserActivities {
		t.Errorf("category = %s / %s, want user_activities", d.ID, res.Category)
	}
	if len(f) != 1 || f["activity_type"] != "login" {
		t.Errorf("filters passed to store = %v, want only activity_type", f)
	}
	if res.Summary == nil || res.Summary.Total != 1 {
		t.Errorf("summary = %+v, want total 1", res.Summary)
	}
	if res.Pagination.PageSize != models.DefaultPageSize {
		t.Errorf("page size = %d, want %d", res.Pagination.PageSize, models.DefaultPageSize)
	}
}

func TestLogServiceAccess(t *testing.T) {
	tests := []struct {
		name    string
		actor   models.Actor
		wantErr error
	}{
		{"anonymous", models.Actor{}, models.ErrUnauthenticated},
		{"student", actorWithRole(models.RoleStudent), models.ErrForbidden},
		{"teacher", actorWithRole(models.RoleTeacher), models.ErrForbidden},
		{"admin", actorWithRole(models.RoleAdmin), nil},
		{"superadmin", actorWithRole(models.RoleSuperadmin), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var d models.CategoryDescriptor
			var f models.FilterSpec
			store := newListStore(&d, &f)
			svc := NewLogService(store, testLogger())

			_, err := svc.List(context.Background(), tt.actor, "visitors", nil, models.PageRequest{})
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("List err = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr != nil && len(store.calls) != 0 {
				t.Errorf("store called %v after access failure", store.calls)
			}

			if _, err := svc.Summary(context.Background(), tt.actor); !errors.Is(err, tt.wantErr) {
				t.Errorf("Summary err = %v, want %v", err, tt.wantErr)
			}
			if _, err := svc.Categories(context.Background(), tt.actor); !errors.Is(err, tt.wantErr) {
				t.Errorf("Categories err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestLogServicePropagatesValidation(t *testing.T) {
	store := &mockLogStore{
		list: func(context.Context, models.CategoryDescriptor, models.FilterSpec, models.PageRequest) (*models.PageResult, error) {
			return nil, &models.ValidationError{Field: "success", Message: "must be true or false"}
		},
	}
	svc := NewLogService(store, testLogger())

	_, err := svc.List(context.Background(), actorWithRole(models.RoleAdmin), "login_attempts",
		models.FilterSpec{"success": "maybe"}, models.PageRequest{})
	if !models.IsValidation(err) {
		t.Fatalf("err = %v, want validation error", err)
	}
}

func TestLogServiceCategories(t *testing.T) {
	svc := NewLogService(&mockLogStore{}, testLogger())

	got, err := svc.Categories(context.Background(), actorWithRole(models.RoleAdmin))
	if err != nil {
		t.Fatalf("Categories: %v", err)
	}
	if len(got) != 5 || got[0].ID != models.CategoryVisitors {
		t.Errorf("Categories = %d entries starting %v", len(got), got[0].ID)
	}
}
