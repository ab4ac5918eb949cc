package client

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// LogService handles the audit-log endpoints.
type LogService struct {
	c *Client
}

// List returns one page of a category.
func (s *LogService) List(ctx context.Context, opts *ListOptions) (*ListResult, error) {
	params := url.Values{}
	if opts != nil {
		if opts.Category != "" {
			params.Set("category", string(opts.Category))
		}
		if opts.Page > 0 {
			params.Set("page", strconv.Itoa(opts.Page))
		}
		if opts.PageSize > 0 {
			params.Set("page_size", strconv.Itoa(opts.PageSize))
		}
		setRange(params, opts.DateFrom, opts.DateTo)
		setFilters(params, opts.Filters)
	}

	var resp ListResult
	if err := s.c.get(ctx, "/api/v1/logs", params, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Summary returns row counts per category.
func (s *LogService) Summary(ctx context.Context) (*Summary, error) {
	var resp Summary
	if err := s.c.get(ctx, "/api/v1/logs/summary", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Categories returns the server's category registry.
func (s *LogService) Categories(ctx context.Context) ([]CategoryInfo, error) {
	var resp struct {
		Data []CategoryInfo `json:"data"`
	}
	if err := s.c.get(ctx, "/api/v1/logs/categories", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// Export downloads a category as CSV.
func (s *LogService) Export(ctx context.Context, opts ExportOptions) (*Export, error) {
	if opts.Category == "" {
		return nil, fmt.Errorf("category is required")
	}

	params := url.Values{}
	params.Set("category", string(opts.Category))
	setRange(params, opts.DateFrom, opts.DateTo)
	setFilters(params, opts.Filters)

	body, header, err := s.c.send(ctx, http.MethodGet, withQuery("/api/v1/logs/export", params), nil)
	if err != nil {
		return nil, err
	}

	exp := &Export{Data: body}
	exp.RowCount, _ = strconv.Atoi(header.Get("X-Export-Row-Count"))
	exp.Truncated, _ = strconv.ParseBool(header.Get("X-Export-Truncated"))
	if _, p, err := mime.ParseMediaType(header.Get("Content-Disposition")); err == nil {
		exp.Filename = p["filename"]
	}
	return exp, nil
}

// Purge deletes rows of req.Category older than req.MinAgeDays. An empty
// ConfirmationText is not filled in for the caller.
func (s *LogService) Purge(ctx context.Context, req PurgeRequest) (*PurgeResult, error) {
	var resp PurgeResult
	if err := s.c.del(ctx, "/api/v1/logs", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func setRange(params url.Values, from, to time.Time) {
	if !from.IsZero() {
		params.Set("date_from", from.Format(time.RFC3339))
	}
	if !to.IsZero() {
		params.Set("date_to", to.Format(time.RFC3339))
	}
}

func setFilters(params url.Values, filters map[string]string) {
	for k, v := range filters {
		if v != "" {
			params.Set(k, v)
		}
	}
}
