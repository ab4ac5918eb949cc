// Command auditkeeper serves the audit-log API and manages its credentials.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/learnhub/auditkeeper/internal/api"
	"github.com/learnhub/auditkeeper/internal/auth"
	"github.com/learnhub/auditkeeper/internal/config"
	"github.com/learnhub/auditkeeper/internal/db"
	"github.com/learnhub/auditkeeper/internal/db/migrations"
	"github.com/learnhub/auditkeeper/internal/dbpool"
	"github.com/learnhub/auditkeeper/internal/domain"
	"github.com/learnhub/auditkeeper/internal/metrics"
	"github.com/learnhub/auditkeeper/internal/service"
	"github.com/learnhub/auditkeeper/internal/store"
)

const (
	shutdownTimeout   = 15 * time.Second
	poolStatsInterval = 15 * time.Second
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "auditkeeper",
		Short:        "Audit-trail and retention service",
		Version:      config.Version,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context())
		},
	}
	rootCmd.SetVersionTemplate("{{.Version}}\n")

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newMigrateCmd())
	rootCmd.AddCommand(newCredentialCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API (default)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context())
		},
	}
}

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := bootstrap()
			if err != nil {
				return err
			}
			return db.RunMigrations(cmd.Context(), cfg.DatabaseURL.Value(), log, migrations.FS)
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "List embedded migrations and whether each is applied",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := bootstrap()
			if err != nil {
				return err
			}

			states, err := db.MigrationStatus(cmd.Context(), cfg.DatabaseURL.Value(), migrations.FS)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, s := range states {
				applied := "pending"
				if s.Applied {
					applied = s.AppliedAt.UTC().Format(time.RFC3339)
				}
				fmt.Fprintf(out, "%5d  %-32s  %s\n", s.Version, s.File, applied)
			}
			return nil
		},
	})

	return cmd
}

// bootstrap loads .env and the configuration and builds the logger.
func bootstrap() (*config.Config, *logrus.Logger, error) {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}

	return cfg, newLogger(cfg), nil
}

func newLogger(cfg *config.Config) *logrus.Logger {
	log := logrus.New()
	level, _ := logrus.ParseLevel(cfg.LogLevel) // validated by config.Load
	log.SetLevel(level)
	if cfg.LogFormat == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	}

	return log
}

func openPool(ctx context.Context, cfg *config.Config) (*dbpool.Pool, error) {
	return dbpool.NewPool(ctx, cfg.DatabaseURL.Value(), dbpool.Options{
		MaxConns:         cfg.DBMaxConns,
		MinConns:         cfg.DBMinConns,
		StatementTimeout: cfg.DBStatementTimeout,
	})
}

func serve(ctx context.Context) error {
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}

	if cfg.RunMigrations {
		if err := db.RunMigrations(ctx, cfg.DatabaseURL.Value(), log, migrations.FS); err != nil {
			return fmt.Errorf("running migrations: %w", err)
		}
	}

	pool, err := openPool(ctx, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	base := store.Base{Pool: pool, Log: log}
	logStore := store.NewLogStore(base)
	activityStore := store.NewActivityStore(base)

	verifier, err := newVerifier(ctx, cfg, base)
	if err != nil {
		return err
	}

	handler := api.NewRouter(ctx, &api.RouterDeps{
		Log:         log,
		Pool:        pool,
		Logs:        service.NewLogService(logStore, log),
		Export:      service.NewExportService(logStore, activityStore, log),
		Retention:   service.NewRetentionService(store.NewRetentionStore(base), log),
		Verifier:    verifier,
		CORSOrigins: cfg.CORSOrigins,
		Version:     config.Version,
		RateLimit:   cfg.RateLimit,
		RateBurst:   cfg.RateBurst,
	})

	go reportPoolStats(ctx, pool)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      2 * time.Minute,
		IdleTimeout:       2 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithFields(logrus.Fields{
			"addr":          cfg.Addr(),
			"version":       config.Version,
			"auth_provider": cfg.AuthProvider,
		}).Info("auditkeeper listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}

	return nil
}

// newVerifier builds the bearer credential verifier selected by AUTH_PROVIDER.
func newVerifier(ctx context.Context, cfg *config.Config, base store.Base) (domain.IdentityVerifier, error) {
	if cfg.AuthProvider != config.AuthProviderOIDC {
		return store.NewCredentialStore(base), nil
	}

	v, err := auth.NewOIDCVerifier(ctx, auth.OIDCOptions{
		IssuerURL:  cfg.OIDCIssuerURL,
		ClientID:   cfg.OIDCClientID,
		RoleClaim:  cfg.OIDCRoleClaim,
		EmailClaim: cfg.OIDCEmailClaim,
	})
	if err != nil {
		return nil, err
	}

	return v, nil
}

func reportPoolStats(ctx context.Context, pool *dbpool.Pool) {
	ticker := time.NewTicker(poolStatsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			acquired, _ := pool.Stats()
			metrics.PoolAcquiredConns.Set(float64(acquired))
		}
	}
}
