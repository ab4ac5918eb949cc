package store_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/learnhub/auditkeeper/internal/db"
	"github.com/learnhub/auditkeeper/internal/db/migrations"
	"github.com/learnhub/auditkeeper/internal/dbpool"
	"github.com/learnhub/auditkeeper/internal/store"
)

// testEnv holds shared test infrastructure (single pool across all tests).
type testEnv struct {
	url  string
	pool *dbpool.Pool
	log  *logrus.Logger
}

var sharedEnv *testEnv

// testDatabaseURL returns TEST_DATABASE_URL, or starts a disposable Postgres
// container when TEST_CONTAINERS is set. Skips the test when neither is available.
func testDatabaseURL(t *testing.T) string {
	t.Helper()

	if url := os.Getenv("TEST_DATABASE_URL"); url != "" {
		return url
	}

	if os.Getenv("TEST_CONTAINERS") == "" {
		t.Skip("TEST_DATABASE_URL not set and TEST_CONTAINERS disabled")
	}

	ctx := context.Background()

	container, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("auditkeeper_test"),
		postgres.WithUsername("auditkeeper"),
		postgres.WithPassword("auditkeeper"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Skipf("starting postgres container: %v", err)
	}

	url, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("container connection string: %v", err)
	}

	return url
}

func getTestEnv(t *testing.T) *testEnv {
	t.Helper()

	if sharedEnv != nil {
		return sharedEnv
	}

	dbURL := testDatabaseURL(t)
	ctx := context.Background()

	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)

	if err := db.RunMigrations(ctx, dbURL, log, migrations.FS); err != nil {
		t.Fatalf("running migrations: %v", err)
	}

	pool, err := dbpool.NewPool(ctx, dbURL, dbpool.Options{MaxConns: 10})
	if err != nil {
		t.Fatalf("connecting to test DB: %v", err)
	}

	sharedEnv = &testEnv{url: dbURL, pool: pool, log: log}

	return sharedEnv
}

// setupTestBase returns a Base over empty log tables, truncated again after the test.
func setupTestBase(t *testing.T) store.Base {
	t.Helper()

	env := getTestEnv(t)
	truncateAll(t, env.pool)
	t.Cleanup(func() { truncateAll(t, env.pool) })

	return store.Base{Pool: env.pool, Log: env.log}
}

func truncateAll(t *testing.T, pool *dbpool.Pool) {
	t.Helper()

	_, err := pool.Exec(context.Background(), `TRUNCATE visitors, login_attempts, user_activities,
		data_changes, security_events, admin_credentials RESTART IDENTITY`)
	if err != nil {
		t.Fatalf("truncating log tables: %v", err)
	}
}

func daysAgo(n int) time.Time {
	return time.Now().Add(-time.Duration(n) * 24 * time.Hour)
}

// seedVisitors inserts one visitor row per age (in days).
func seedVisitors(t *testing.T, pool *dbpool.Pool, ages ...int) {
	t.Helper()

	for _, age := range ages {
		_, err := pool.Exec(context.Background(),
			`INSERT INTO visitors (ip_address, user_agent, page_url, accessed_at) VALUES ($1, $2, $3, $4)`,
			"10.0.0.1", "test-agent", "/courses", daysAgo(age),
		)
		if err != nil {
			t.Fatalf("seeding visitor: %v", err)
		}
	}
}

// seedLoginAttempt inserts one login_attempts row.
func seedLoginAttempt(t *testing.T, pool *dbpool.Pool, email string, success bool, at time.Time) {
	t.Helper()

	_, err := pool.Exec(context.Background(),
		`INSERT INTO login_attempts (email, success, ip_address, attempted_at) VALUES ($1, $2, $3, $4)`,
		email, success, "10.0.0.2", at,
	)
	if err != nil {
		t.Fatalf("seeding login attempt: %v", err)
	}
}

func countRows(t *testing.T, pool *dbpool.Pool, query string, args ...any) int64 {
	t.Helper()

	var n int64
	if err := pool.QueryRow(context.Background(), query, args...).Scan(&n); err != nil {
		t.Fatalf("counting rows: %v", err)
	}

	return n
}

func TestMigrationStatus_AllApplied(t *testing.T) {
	env := getTestEnv(t)

	states, err := db.MigrationStatus(context.Background(), env.url, migrations.FS)
	if err != nil {
		t.Fatalf("MigrationStatus: %v", err)
	}

	if len(states) != db.SchemaVersion() {
		t.Fatalf("got %d migrations, want %d", len(states), db.SchemaVersion())
	}

	for _, s := range states {
		if !s.Applied {
			t.Errorf("migration %d (%s) not applied", s.Version, s.File)
		}
	}
}
