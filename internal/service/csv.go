package service

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/learnhub/auditkeeper/internal/models"
)

// encodeCSV renders records as CSV. The header is the sorted column set of the
// first record; missing and null values become empty fields.
func encodeCSV(records []models.LogRecord) ([]byte, error) {
	if len(records) == 0 {
		return nil, nil
	}

	header := make([]string, 0, len(records[0]))
	for k := range records[0] {
		header = append(header, k)
	}
	slices.Sort(header)

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("writing csv header: %w", err)
	}

	row := make([]string, len(header))
	for _, r := range records {
		for i, col := range header {
			cell, err := formatCell(r[col])
			if err != nil {
				return nil, fmt.Errorf("formatting column %s: %w", col, err)
			}
			row[i] = cell
		}

		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("writing csv row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flushing csv: %w", err)
	}

	return buf.Bytes(), nil
}

// formatCell converts a scanned column value to its CSV text. Structured values
// become compact JSON.
func formatCell(v any) (string, error) {
	switch t := v.(type) {
	case nil:
		return "", nil
	case string:
		return t, nil
	case bool:
		return strconv.FormatBool(t), nil
	case int64:
		return strconv.FormatInt(t, 10), nil
	case int32:
		return strconv.FormatInt(int64(t), 10), nil
	case int:
		return strconv.Itoa(t), nil
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), nil
	case time.Time:
		return t.UTC().Format(time.RFC3339), nil
	case map[string]any, []any:
		b, err := json.Marshal(t)
		if err != nil {
			return "", err
		}

		return string(b), nil
	case fmt.Stringer:
		return t.String(), nil
	default:
		return strings.TrimSpace(fmt.Sprint(t)), nil
	}
}
