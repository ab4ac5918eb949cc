package main

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/learnhub/auditkeeper/client"
)

func newLogsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Browse, export, and purge audit logs",
	}

	cmd.AddCommand(newLogsListCmd())
	cmd.AddCommand(newLogsSummaryCmd())
	cmd.AddCommand(newLogsCategoriesCmd())
	cmd.AddCommand(newLogsExportCmd())
	cmd.AddCommand(newLogsPurgeCmd())

	return cmd
}

// parseDate accepts RFC3339 or YYYY-MM-DD.
func parseDate(flag, v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return time.Time{}, fmt.Errorf("--%s must be RFC3339 or YYYY-MM-DD, got %q", flag, v)
	}
	return t, nil
}

// parseFilters turns repeated key=value flags into a filter map.
func parseFilters(pairs []string) (map[string]string, error) {
	out := make(map[string]string, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("--filter must be key=value, got %q", p)
		}
		out[k] = v
	}
	return out, nil
}

func newLogsListCmd() *cobra.Command {
	var (
		page, pageSize int
		from, to       string
		filters        []string
	)

	cmd := &cobra.Command{
		Use:   "list [category]",
		Short: "List one page of a category (default user_activities)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := &client.ListOptions{Page: page, PageSize: pageSize}
			if len(args) == 1 {
				opts.Category = client.Category(args[0])
			}

			var err error
			if opts.DateFrom, err = parseDate("from", from); err != nil {
				return err
			}
			if opts.DateTo, err = parseDate("to", to); err != nil {
				return err
			}
			if opts.Filters, err = parseFilters(filters); err != nil {
				return err
			}

			res, err := apiClient.Logs.List(cmd.Context(), opts)
			if err != nil {
				return fmt.Errorf("list logs: %w", err)
			}

			switch flagFmt {
			case "table":
				headers, rows := recordTable(res.Data)
				formatTable(headers, rows)
				fmt.Printf("\npage %d/%d (%d rows)\n", res.Pagination.Page, res.Pagination.TotalPages, res.Pagination.Total)
			default:
				output(res, strconv.FormatInt(res.Pagination.Total, 10))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "Page number")
	cmd.Flags().IntVar(&pageSize, "page-size", 50, "Rows per page (max 200)")
	cmd.Flags().StringVar(&from, "from", "", "Only rows at or after this date")
	cmd.Flags().StringVar(&to, "to", "", "Only rows up to this date")
	cmd.Flags().StringArrayVar(&filters, "filter", nil, "Category filter as key=value (repeatable)")
	return cmd
}

func newLogsSummaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show row counts per category",
		RunE: func(cmd *cobra.Command, args []string) error {
			sum, err := apiClient.Logs.Summary(cmd.Context())
			if err != nil {
				return fmt.Errorf("summary: %w", err)
			}

			switch flagFmt {
			case "table":
				formatTable([]string{"CATEGORY", "ROWS"}, summaryRows(sum))
			default:
				output(sum, strconv.FormatInt(sum.Total, 10))
			}
			return nil
		},
	}
}

func newLogsCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List categories and their filter keys",
		RunE: func(cmd *cobra.Command, args []string) error {
			cats, err := apiClient.Logs.Categories(cmd.Context())
			if err != nil {
				return fmt.Errorf("categories: %w", err)
			}

			switch flagFmt {
			case "table":
				rows := make([][]string, 0, len(cats))
				for _, c := range cats {
					keys := make([]string, 0, len(c.Filters))
					for _, f := range c.Filters {
						keys = append(keys, f.Key)
					}
					rows = append(rows, []string{string(c.ID), c.TimestampColumn, strings.Join(keys, ",")})
				}
				formatTable([]string{"CATEGORY", "TIMESTAMP", "FILTERS"}, rows)
			default:
				output(cats, strconv.Itoa(len(cats)))
			}
			return nil
		},
	}
}

func newLogsExportCmd() *cobra.Command {
	var (
		outputPath string
		from, to   string
		filters    []string
	)

	cmd := &cobra.Command{
		Use:   "export <category>",
		Short: "Download a category as CSV (superadmin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := client.ExportOptions{Category: client.Category(args[0])}

			var err error
			if opts.DateFrom, err = parseDate("from", from); err != nil {
				return err
			}
			if opts.DateTo, err = parseDate("to", to); err != nil {
				return err
			}
			if opts.Filters, err = parseFilters(filters); err != nil {
				return err
			}

			exp, err := apiClient.Logs.Export(cmd.Context(), opts)
			if err != nil {
				return fmt.Errorf("export failed: %w", err)
			}

			if outputPath == "" {
				outputPath = exp.Filename
			}

			if outputPath == "-" {
				_, err = os.Stdout.Write(exp.Data)
				return err
			}

			if err := os.WriteFile(outputPath, exp.Data, 0o600); err != nil {
				return fmt.Errorf("writing export file: %w", err)
			}

			fmt.Fprintf(os.Stderr, "Exported %d rows to %s\n", exp.RowCount, outputPath)
			if exp.Truncated {
				fmt.Fprintln(os.Stderr, "Warning: export was truncated at the server row cap; narrow the date range")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file (default: server-provided filename, - for stdout)")
	cmd.Flags().StringVar(&from, "from", "", "Only rows at or after this date")
	cmd.Flags().StringVar(&to, "to", "", "Only rows up to this date")
	cmd.Flags().StringArrayVar(&filters, "filter", nil, "Category filter as key=value (repeatable)")
	return cmd
}

func newLogsPurgeCmd() *cobra.Command {
	var (
		minAgeDays int
		confirm    string
	)

	cmd := &cobra.Command{
		Use:   "purge <category>",
		Short: "Delete rows older than --min-age-days (superadmin)",
		Long: fmt.Sprintf(`Permanently delete rows of a category older than --min-age-days.
A backup of the deleted rows is kept in data_changes and a critical security
event is recorded. security_events can never be purged.

--confirm must be exactly %q.`, client.ConfirmationPhrase),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if confirm != client.ConfirmationPhrase {
				return fmt.Errorf("--confirm must be exactly %q", client.ConfirmationPhrase)
			}

			res, err := apiClient.Logs.Purge(cmd.Context(), client.PurgeRequest{
				Category:         client.Category(args[0]),
				MinAgeDays:       minAgeDays,
				ConfirmationText: confirm,
			})
			if err != nil {
				if client.IsNotFound(err) {
					fmt.Fprintln(os.Stderr, "Nothing to delete: no rows are that old")
				}
				return fmt.Errorf("purge failed: %w", err)
			}

			output(res, strconv.FormatInt(res.DeletedCount, 10))
			return nil
		},
	}

	cmd.Flags().IntVar(&minAgeDays, "min-age-days", 365, "Only delete rows at least this many days old (minimum 90)")
	cmd.Flags().StringVar(&confirm, "confirm", "", "Confirmation phrase")
	return cmd
}

// recordTable renders records with sorted column headers.
func recordTable(records []client.Record) ([]string, [][]string) {
	if len(records) == 0 {
		return []string{"(no rows)"}, nil
	}

	headers := make([]string, 0, len(records[0]))
	for k := range records[0] {
		headers = append(headers, k)
	}
	sort.Strings(headers)

	rows := make([][]string, 0, len(records))
	for _, r := range records {
		row := make([]string, len(headers))
		for i, h := range headers {
			if v, ok := r[h]; ok && v != nil {
				row[i] = fmt.Sprint(v)
			}
		}
		rows = append(rows, row)
	}

	return headers, rows
}

func summaryRows(sum *client.Summary) [][]string {
	cats := make([]string, 0, len(sum.Counts))
	for c := range sum.Counts {
		cats = append(cats, string(c))
	}
	sort.Strings(cats)

	rows := make([][]string, 0, len(cats)+1)
	for _, c := range cats {
		rows = append(rows, []string{c, strconv.FormatInt(sum.Counts[client.Category(c)], 10)})
	}
	return append(rows, []string{"total", strconv.FormatInt(sum.Total, 10)})
}
