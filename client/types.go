package client

import "time"

// Category names one of the log classes.
type Category string

// Log categories.
const (
	CategoryVisitors       Category = "visitors"
	CategoryLoginAttempts  Category = "login_attempts"
	CategoryUserActivities Category = "user_activities"
	CategoryDataChanges    Category = "data_changes"
	CategorySecurityEvents Category = "security_events"
)

// ConfirmationPhrase must be sent verbatim to purge logs.
const ConfirmationPhrase = "DELETE AUDIT LOGS"

// Record is one log row keyed by column name.
type Record map[string]any

// Pagination carries page metadata.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// Summary holds row counts per category.
type Summary struct {
	Counts map[Category]int64 `json:"counts"`
	Total  int64              `json:"total"`
}

// ListResult is one page of a category plus summary and honored filters.
type ListResult struct {
	Category   Category          `json:"category"`
	Data       []Record          `json:"data"`
	Pagination Pagination        `json:"pagination"`
	Summary    *Summary          `json:"summary"`
	Filters    map[string]string `json:"filters"`
}

// FilterField describes one filter key of a category.
type FilterField struct {
	Key    string `json:"key"`
	Column string `json:"column"`
	Kind   string `json:"kind"`
}

// CategoryInfo describes a category as reported by the server.
type CategoryInfo struct {
	ID              Category      `json:"id"`
	Table           string        `json:"table"`
	TimestampColumn string        `json:"timestamp_column"`
	Filters         []FilterField `json:"filters"`
	Columns         []string      `json:"columns"`
	ExportColumns   []string      `json:"export_columns"`
}

// ListOptions selects a page of a category. Filters holds category filter keys.
type ListOptions struct {
	Category Category
	Page     int
	PageSize int
	DateFrom time.Time
	DateTo   time.Time
	Filters  map[string]string
}

// ExportOptions selects the rows of an export.
type ExportOptions struct {
	Category Category
	DateFrom time.Time
	DateTo   time.Time
	Filters  map[string]string
}

// Export is a downloaded CSV document.
type Export struct {
	Filename  string
	Data      []byte
	RowCount  int
	Truncated bool
}

// PurgeRequest asks the server to delete rows older than MinAgeDays.
type PurgeRequest struct {
	Category         Category `json:"category"`
	MinAgeDays       int      `json:"min_age_days"`
	ConfirmationText string   `json:"confirmation_text"`
}

// PurgeResult reports a committed purge.
type PurgeResult struct {
	Category              Category `json:"category"`
	DeletedCount          int64    `json:"deleted_count"`
	MinAgeDays            int      `json:"min_age_days"`
	SecurityEventRecorded bool     `json:"security_event_recorded"`
	Message               string   `json:"message"`
}

// HealthResponse is returned by the liveness endpoint.
type HealthResponse struct {
	Status        string  `json:"status"`
	Version       string  `json:"version"`
	Database      string  `json:"database"`
	UptimeSeconds float64 `json:"uptime_seconds"`
}

// ReadinessResponse is returned by the readiness endpoint.
type ReadinessResponse struct {
	Status        string            `json:"status"`
	SchemaVersion int               `json:"schema_version"`
	Checks        map[string]string `json:"checks"`
}
