// Package db applies the embedded schema migrations with goose.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver
	"github.com/pressly/goose/v3"
	"github.com/sirupsen/logrus"
)

// MigrationState describes one embedded migration against the live schema.
type MigrationState struct {
	Version   int64
	File      string
	Applied   bool
	AppliedAt time.Time
}

// withProvider opens a short-lived *sql.DB through the pgx stdlib driver,
// since goose cannot drive a pgxpool, and hands fn a provider over fsys.
func withProvider(connString string, fsys fs.FS, fn func(*goose.Provider) error) error {
	sqlDB, err := sql.Open("pgx", connString)
	if err != nil {
		return fmt.Errorf("opening sql.DB for migrations: %w", err)
	}
	defer sqlDB.Close()

	provider, err := goose.NewProvider(goose.DialectPostgres, sqlDB, fsys)
	if err != nil {
		return fmt.Errorf("creating goose provider: %w", err)
	}

	return fn(provider)
}

// RunMigrations applies every pending migration in fsys.
func RunMigrations(ctx context.Context, connString string, log *logrus.Logger, fsys fs.FS) error {
	return withProvider(connString, fsys, func(p *goose.Provider) error {
		results, err := p.Up(ctx)
		if err != nil {
			return fmt.Errorf("applying migrations: %w", err)
		}

		if len(results) == 0 {
			log.Debug("schema up to date")

			return nil
		}

		for _, r := range results {
			if r.Error != nil {
				return fmt.Errorf("migration %d (%s): %w", r.Source.Version, r.Source.Path, r.Error)
			}

			log.WithFields(logrus.Fields{
				"version":  r.Source.Version,
				"file":     r.Source.Path,
				"duration": r.Duration,
			}).Info("migration applied")
		}

		return nil
	})
}

// MigrationStatus reports every migration in fsys in version order.
func MigrationStatus(ctx context.Context, connString string, fsys fs.FS) ([]MigrationState, error) {
	var states []MigrationState

	err := withProvider(connString, fsys, func(p *goose.Provider) error {
		statuses, err := p.Status(ctx)
		if err != nil {
			return fmt.Errorf("reading migration status: %w", err)
		}

		states = make([]MigrationState, 0, len(statuses))
		for _, s := range statuses {
			states = append(states, MigrationState{
				Version:   s.Source.Version,
				File:      s.Source.Path,
				Applied:   s.State == goose.StateApplied,
				AppliedAt: s.AppliedAt,
			})
		}

		return nil
	})

	return states, err
}
