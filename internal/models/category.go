// Package models defines data types for the audit-trail subsystem.
package models

import (
	"fmt"
	"slices"
)

// Category identifies one of the fixed audit-data classes.
type Category string

// The closed set of log categories.
const (
	CategoryVisitors       Category = "visitors"
	CategoryLoginAttempts  Category = "login_attempts"
	CategoryUserActivities Category = "user_activities"
	CategoryDataChanges    Category = "data_changes"
	CategorySecurityEvents Category = "security_events"
)

// DefaultCategory is what read paths fall back to for an unknown category.
const DefaultCategory = CategoryUserActivities

// FilterKind selects the predicate shape a filter key produces.
type FilterKind string

// Predicate shapes.
const (
	FilterEquals   FilterKind = "equals"
	FilterContains FilterKind = "contains"
	FilterBool     FilterKind = "bool"
)

// FilterField maps a request filter key onto a column of the category table.
type FilterField struct {
	Key    string     `json:"key"`
	Column string     `json:"column"`
	Kind   FilterKind `json:"kind"`
}

// CategoryDescriptor describes how a category is stored and queried.
type CategoryDescriptor struct {
	ID              Category      `json:"id"`
	Table           string        `json:"table"`
	TimestampColumn string        `json:"timestamp_column"`
	Filters         []FilterField `json:"filters"`
	Columns         []string      `json:"columns"`
	ExportColumns   []string      `json:"export_columns"`
}

// Filter returns the filter field registered under key.
func (d CategoryDescriptor) Filter(key string) (FilterField, bool) {
	for _, f := range d.Filters {
		if f.Key == key {
			return f, true
		}
	}

	return FilterField{}, false
}

// categoryOrder fixes the iteration order used by listings and summaries.
var categoryOrder = []Category{
	CategoryVisitors,
	CategoryLoginAttempts,
	CategoryUserActivities,
	CategoryDataChanges,
	CategorySecurityEvents,
}

// registry is built once at package init and never mutated.
var registry = map[Category]CategoryDescriptor{
	CategoryVisitors: {
		ID:              CategoryVisitors,
		Table:           "visitors",
		TimestampColumn: "accessed_at",
		Columns:         []string{"id", "ip_address", "user_agent", "page_url", "referrer", "country", "session_id", "accessed_at"},
		ExportColumns:   []string{"id", "ip_address", "user_agent", "page_url", "referrer", "country", "accessed_at"},
	},
	CategoryLoginAttempts: {
		ID:              CategoryLoginAttempts,
		Table:           "login_attempts",
		TimestampColumn: "attempted_at",
		Filters: []FilterField{
			{Key: "email", Column: "email", Kind: FilterContains},
			{Key: "success", Column: "success", Kind: FilterBool},
		},
		Columns:       []string{"id", "email", "success", "failure_reason", "ip_address", "user_agent", "attempted_at"},
		ExportColumns: []string{"id", "email", "success", "failure_reason", "ip_address", "user_agent", "attempted_at"},
	},
	CategoryUserActivities: {
		ID:              CategoryUserActivities,
		Table:           "user_activities",
		TimestampColumn: "started_at",
		Filters: []FilterField{
			{Key: "user_email", Column: "user_email", Kind: FilterContains},
			{Key: "activity_type", Column: "activity_type", Kind: FilterEquals},
			{Key: "success", Column: "success", Kind: FilterBool},
		},
		Columns: []string{
			"id", "user_id", "user_email", "activity_type", "description", "success",
			"ip_address", "user_agent", "metadata", "started_at", "ended_at",
		},
		ExportColumns: []string{
			"id", "user_email", "activity_type", "description", "success",
			"ip_address", "metadata", "started_at", "ended_at",
		},
	},
	CategoryDataChanges: {
		ID:              CategoryDataChanges,
		Table:           "data_changes",
		TimestampColumn: "changed_at",
		Filters: []FilterField{
			{Key: "user_email", Column: "user_email", Kind: FilterContains},
			{Key: "operation", Column: "operation", Kind: FilterEquals},
		},
		Columns: []string{
			"id", "user_id", "user_email", "table_name", "record_id", "operation",
			"old_data", "new_data", "change_reason", "ip_address", "changed_at",
		},
		ExportColumns: []string{
			"id", "user_email", "table_name", "record_id", "operation",
			"old_data", "new_data", "change_reason", "changed_at",
		},
	},
	CategorySecurityEvents: {
		ID:              CategorySecurityEvents,
		Table:           "security_events",
		TimestampColumn: "detected_at",
		Filters: []FilterField{
			{Key: "severity", Column: "severity", Kind: FilterEquals},
			{Key: "email", Column: "email", Kind: FilterContains},
			{Key: "resolved", Column: "resolved", Kind: FilterBool},
		},
		Columns: []string{
			"id", "event_type", "severity", "title", "description", "email",
			"ip_address", "user_agent", "resolved", "metadata", "detected_at",
		},
		ExportColumns: []string{
			"id", "event_type", "severity", "title", "description", "email",
			"ip_address", "resolved", "detected_at",
		},
	},
}

// Categories returns every category in display order.
func Categories() []Category {
	return slices.Clone(categoryOrder)
}

// Descriptors returns a copy of every registered descriptor in display order.
func Descriptors() []CategoryDescriptor {
	out := make([]CategoryDescriptor, 0, len(categoryOrder))
	for _, c := range categoryOrder {
		d, _ := Resolve(string(c))
		out = append(out, d)
	}

	return out
}

// Resolve looks up a category by identifier. The returned descriptor is a copy.
func Resolve(id string) (CategoryDescriptor, bool) {
	d, ok := registry[Category(id)]
	if !ok {
		return CategoryDescriptor{}, false
	}

	d.Filters = slices.Clone(d.Filters)
	d.Columns = slices.Clone(d.Columns)
	d.ExportColumns = slices.Clone(d.ExportColumns)

	return d, true
}

// ResolveOrDefault resolves id, falling back to DefaultCategory. Only read
// paths may use it; export and retention require an explicit category.
func ResolveOrDefault(id string) CategoryDescriptor {
	if d, ok := Resolve(id); ok {
		return d
	}

	d, _ := Resolve(string(DefaultCategory))

	return d
}

// ResolveStrict resolves id and reports a ValidationError when it is missing or unknown.
func ResolveStrict(id string) (CategoryDescriptor, error) {
	if id == "" {
		return CategoryDescriptor{}, &ValidationError{Field: "category", Message: "category is required"}
	}

	d, ok := Resolve(id)
	if !ok {
		return CategoryDescriptor{}, &ValidationError{Field: "category", Message: fmt.Sprintf("unknown category %q", id)}
	}

	return d, nil
}
