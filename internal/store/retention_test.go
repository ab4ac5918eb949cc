package store_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/learnhub/auditkeeper/internal/models"
	"github.com/learnhub/auditkeeper/internal/store"
)

var testActor = models.Actor{
	Identity:  models.Identity{Subject: "admin-1", Email: "root@school.test", Role: models.RoleSuperadmin},
	IPAddress: "192.0.2.10",
	UserAgent: "auditkeeper-test",
}

func TestPurgeDeletesOnlyAgedRows(t *testing.T) {
	base := setupTestBase(t)
	rs := store.NewRetentionStore(base)
	pool := sharedEnv.pool

	seedVisitors(t, pool, 10, 100, 200)

	d, _ := models.Resolve("visitors")

	res, err := rs.Purge(context.Background(), d, 90, testActor)
	if err != nil {
		t.Fatalf("Purge: %v", err)
	}

	if res.DeletedCount != 2 {
		t.Errorf("DeletedCount = %d, want 2", res.DeletedCount)
	}
	if n := countRows(t, pool, "SELECT COUNT(*) FROM visitors"); n != 1 {
		t.Errorf("remaining visitors = %d, want 1", n)
	}

	var rowsToDelete int64
	var operation string
	err = pool.QueryRow(context.Background(),
		`SELECT (old_data->>'rows_to_delete')::bigint, operation FROM data_changes WHERE table_name = 'visitors'`,
	).Scan(&rowsToDelete, &operation)
	if err != nil {
		t.Fatalf("reading backup entry: %v", err)
	}
	if rowsToDelete != 2 || operation != models.OperationDelete {
		t.Errorf("backup = (%d, %s), want (2, DELETE)", rowsToDelete, operation)
	}

	if n := countRows(t, pool,
		`SELECT COUNT(*) FROM security_events WHERE event_type = $1 AND severity = 'critical' AND resolved
		 AND email = $2 AND ip_address = $3`,
		models.EventAuditLogDeletion, testActor.Email, testActor.IPAddress,
	); n != 1 {
		t.Errorf("deletion security events = %d, want 1", n)
	}

	if n := countRows(t, pool,
		"SELECT COUNT(*) FROM user_activities WHERE activity_type = $1 AND user_email = $2",
		models.ActivityDeleteAuditLogs, testActor.Email,
	); n != 1 {
		t.Errorf("deletion activities = %d, want 1", n)
	}
}

func TestPurgeNothingOldEnough(t *testing.T) {
	base := setupTestBase(t)
	rs := store.NewRetentionStore(base)
	pool := sharedEnv.pool

	seedVisitors(t, pool, 5, 30)

	d, _ := models.Resolve("visitors")

	_, err := rs.Purge(context.Background(), d, 90, testActor)
	if !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}

	if n := countRows(t, pool, "SELECT COUNT(*) FROM visitors"); n != 2 {
		t.Errorf("visitors = %d, want 2", n)
	}
	if n := countRows(t, pool, "SELECT COUNT(*) FROM data_changes"); n != 0 {
		t.Errorf("data_changes = %d, want 0", n)
	}
	if n := countRows(t, pool, "SELECT COUNT(*) FROM security_events"); n != 0 {
		t.Errorf("security_events = %d, want 0", n)
	}
}

func TestPurgeConcurrentSameCategory(t *testing.T) {
	base := setupTestBase(t)
	rs := store.NewRetentionStore(base)
	pool := sharedEnv.pool

	seedVisitors(t, pool, 100, 120, 150, 180)

	d, _ := models.Resolve("visitors")

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		deleted int64
		misses  int
	)

	for range 2 {
		wg.Add(1)
		go func() {
			defer wg.Done()

			res, err := rs.Purge(context.Background(), d, 90, testActor)

			mu.Lock()
			defer mu.Unlock()

			switch {
			case err == nil:
				deleted += res.DeletedCount
			case errors.Is(err, models.ErrNotFound):
				misses++
			default:
				t.Errorf("Purge: %v", err)
			}
		}()
	}
	wg.Wait()

	if deleted != 4 {
		t.Errorf("total deleted = %d, want 4", deleted)
	}
	if misses != 1 {
		t.Errorf("not-found outcomes = %d, want 1", misses)
	}
	if n := countRows(t, pool, "SELECT COUNT(*) FROM data_changes"); n != 1 {
		t.Errorf("backup entries = %d, want 1", n)
	}
}

func TestCredentialLifecycle(t *testing.T) {
	base := setupTestBase(t)
	cs := store.NewCredentialStore(base)
	ctx := context.Background()

	want := models.Identity{Subject: "admin-7", Email: "ops@school.test", Role: models.RoleAdmin}
	if err := cs.CreateCredential(ctx, want, "raw-token-7"); err != nil {
		t.Fatalf("CreateCredential: %v", err)
	}

	got, err := cs.VerifyToken(ctx, "raw-token-7")
	if err != nil {
		t.Fatalf("VerifyToken: %v", err)
	}
	if *got != want {
		t.Errorf("identity = %+v, want %+v", *got, want)
	}

	if _, err := cs.VerifyToken(ctx, "wrong"); !errors.Is(err, models.ErrUnauthenticated) {
		t.Errorf("unknown token err = %v, want ErrUnauthenticated", err)
	}

	n, err := cs.RevokeCredential(ctx, "admin-7")
	if err != nil || n != 1 {
		t.Fatalf("RevokeCredential = (%d, %v), want (1, nil)", n, err)
	}

	if _, err := cs.VerifyToken(ctx, "raw-token-7"); !errors.Is(err, models.ErrUnauthenticated) {
		t.Errorf("revoked token err = %v, want ErrUnauthenticated", err)
	}
}
