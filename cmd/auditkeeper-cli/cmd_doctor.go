package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/learnhub/auditkeeper/client"
)

func newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Diagnose configuration and connectivity",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDoctor(cmd.Context(), apiClient)
		},
	}
}

type checkResult struct {
	Name   string
	Passed bool
	Detail string
	Hint   string
}

func runDoctor(ctx context.Context, c *client.Client) error {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	var results []checkResult

	if flagKey == "" {
		results = append(results, checkResult{
			Name: "API key", Hint: "Set --api-key, AUDITKEEPER_API_KEY, or run auditkeeper-cli init",
		})
	} else {
		results = append(results, checkResult{Name: "API key", Passed: true, Detail: "configured"})
	}

	if h, err := c.Health(ctx); err != nil {
		results = append(results, checkResult{
			Name: "Server reachable", Detail: flagURL, Hint: err.Error(),
		})
	} else {
		results = append(results, checkResult{
			Name: "Server reachable", Passed: true, Detail: fmt.Sprintf("%s (database %s)", h.Version, h.Database),
		})
	}

	if r, err := c.Ready(ctx); err != nil {
		results = append(results, checkResult{Name: "Schema", Hint: err.Error()})
	} else {
		results = append(results, checkResult{Name: "Schema", Passed: true, Detail: fmt.Sprintf("version %d", r.SchemaVersion)})
	}

	if flagKey != "" {
		if sum, err := c.Logs.Summary(ctx); err != nil {
			hint := err.Error()
			if client.IsForbidden(err) {
				hint = "credential is valid but its role cannot read logs (admin or superadmin required)"
			}
			results = append(results, checkResult{Name: "Authentication", Hint: hint})
		} else {
			results = append(results, checkResult{Name: "Authentication", Passed: true, Detail: fmt.Sprintf("%d log rows visible", sum.Total)})
		}
	}

	allPassed := true
	for _, r := range results {
		mark := "ok  "
		if !r.Passed {
			mark = "FAIL"
			allPassed = false
		}
		if r.Detail != "" {
			fmt.Printf("[%s] %s: %s\n", mark, r.Name, r.Detail)
		} else {
			fmt.Printf("[%s] %s\n", mark, r.Name)
		}
		if !r.Passed && r.Hint != "" {
			fmt.Printf("       hint: %s\n", r.Hint)
		}
	}

	if !allPassed {
		return fmt.Errorf("doctor found issues")
	}
	return nil
}
