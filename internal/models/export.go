package models

import "time"

// ExportDocument is a rendered CSV export of one category.
type ExportDocument struct {
	Category  Category
	Filename  string
	Data      []byte
	RowCount  int
	Truncated bool
}

// ExportFilename names an export by category and UTC calendar date.
func ExportFilename(c Category, at time.Time) string {
	return string(c) + "_logs_" + at.UTC().Format(dateOnly) + ".csv"
}
