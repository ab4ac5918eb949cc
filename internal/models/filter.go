package models

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Shared date-range filter keys, honored by every category.
const (
	DateFromKey = "date_from"
	DateToKey   = "date_to"
)

// Pagination limits.
const (
	DefaultPageSize = 50
	MaxPageSize     = 200
)

// ExportRowCap is the hard ceiling on rows returned by a single export.
const ExportRowCap = 10000

// dateOnly is the layout accepted for bare calendar dates.
const dateOnly = "2006-01-02"

// FilterSpec maps request filter keys to raw values.
type FilterSpec map[string]string

// Honored returns the subset of f the category recognizes, including the date range.
// Empty values are dropped.
func (f FilterSpec) Honored(d CategoryDescriptor) FilterSpec {
	out := make(FilterSpec)

	for k, v := range f {
		if strings.TrimSpace(v) == "" {
			continue
		}

		if _, ok := d.Filter(k); ok || k == DateFromKey || k == DateToKey {
			out[k] = v
		}
	}

	return out
}

// ParseBool parses a boolean filter value for the given key.
func ParseBool(key, v string) (bool, error) {
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return false, &ValidationError{Field: key, Message: "must be true or false"}
	}

	return b, nil
}

// DateRange bounds the timestamp column of a category. Nil ends are open.
type DateRange struct {
	From *time.Time
	To   *time.Time
}

// IsZero reports whether neither end is set.
func (r DateRange) IsZero() bool {
	return r.From == nil && r.To == nil
}

// String renders the range for human-readable audit descriptions.
func (r DateRange) String() string {
	if r.IsZero() {
		return "all time"
	}

	from, to := "beginning", "now"
	if r.From != nil {
		from = r.From.UTC().Format(time.RFC3339)
	}

	if r.To != nil {
		to = r.To.UTC().Format(time.RFC3339)
	}

	return from + " to " + to
}

// ParseDateRange parses RFC3339 or YYYY-MM-DD bounds. A bare date for the upper
// bound covers that whole day.
func ParseDateRange(from, to string) (DateRange, error) {
	var r DateRange

	if s := strings.TrimSpace(from); s != "" {
		t, _, err := parseTime(s)
		if err != nil {
			return DateRange{}, &ValidationError{Field: DateFromKey, Message: "must be RFC3339 or YYYY-MM-DD"}
		}
		r.From = &t
	}

	if s := strings.TrimSpace(to); s != "" {
		t, bare, err := parseTime(s)
		if err != nil {
			return DateRange{}, &ValidationError{Field: DateToKey, Message: "must be RFC3339 or YYYY-MM-DD"}
		}
		if bare {
			t = t.Add(24*time.Hour - time.Microsecond)
		}
		r.To = &t
	}

	if r.From != nil && r.To != nil && r.To.Before(*r.From) {
		return DateRange{}, &ValidationError{Field: DateToKey, Message: "must not be before date_from"}
	}

	return r, nil
}

func parseTime(s string) (time.Time, bool, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, false, nil
	}

	t, err := time.ParseInLocation(dateOnly, s, time.UTC)
	if err != nil {
		return time.Time{}, false, err
	}

	return t, true, nil
}

// PageRequest asks for one 1-based page of results.
type PageRequest struct {
	Page     int
	PageSize int
}

// MaxPage bounds the page number so Offset cannot overflow.
const MaxPage = math.MaxInt32 / MaxPageSize

// Normalize clamps the page number to [1, MaxPage] and the size to (0, MaxPageSize].
func (p PageRequest) Normalize() PageRequest {
	if p.Page < 1 {
		p.Page = 1
	}

	if p.Page > MaxPage {
		p.Page = MaxPage
	}

	if p.PageSize <= 0 {
		p.PageSize = DefaultPageSize
	}

	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}

	return p
}

// Offset returns the row offset of the page.
func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// LogRecord is one category-specific row keyed by column name.
type LogRecord map[string]any

// Pagination carries page metadata.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// NewPagination computes page metadata; TotalPages is ceil(total/pageSize).
func NewPagination(p PageRequest, total int64) Pagination {
	pages := 0
	if p.PageSize > 0 {
		pages = int((total + int64(p.PageSize) - 1) / int64(p.PageSize))
	}

	return Pagination{Page: p.Page, PageSize: p.PageSize, Total: total, TotalPages: pages}
}

// PageResult is one page of log rows plus its metadata.
type PageResult struct {
	Rows       []LogRecord `json:"data"`
	Pagination Pagination  `json:"pagination"`
}

// Summary holds row counts per category for dashboard display.
type Summary struct {
	Counts map[Category]int64 `json:"counts"`
	Total  int64              `json:"total"`
}

// ListResult is the full response of a list request.
type ListResult struct {
	Category   Category    `json:"category"`
	Rows       []LogRecord `json:"data"`
	Pagination Pagination  `json:"pagination"`
	Summary    *Summary    `json:"summary"`
	Filters    FilterSpec  `json:"filters"`
}
