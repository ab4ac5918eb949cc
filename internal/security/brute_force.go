// Package security tracks repeated authentication failures per bearer credential.
package security

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"slices"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Lockout thresholds.
const (
	MaxFailures    = 5
	FailureWindow  = 15 * time.Minute
	LockoutPeriod  = 5 * time.Minute
	cleanupPeriod  = 60 * time.Second
	maxTrackedKeys = 10000
)

type failureRecord struct {
	attempts  int
	firstFail time.Time
	lockedAt  time.Time
}

// CredentialGuard locks out credentials that fail verification MaxFailures
// times within FailureWindow. Raw credentials are never held; records are
// keyed by their SHA-256.
type CredentialGuard struct {
	mu      sync.Mutex
	records map[string]*failureRecord
	log     *logrus.Logger
	now     func() time.Time
}

// NewCredentialGuard creates a guard and starts its eviction loop, which stops when ctx is cancelled.
func NewCredentialGuard(ctx context.Context, log *logrus.Logger) *CredentialGuard {
	g := newGuard(log, time.Now)
	go g.cleanupLoop(ctx)

	return g
}

func newGuard(log *logrus.Logger, now func() time.Time) *CredentialGuard {
	return &CredentialGuard{
		records: make(map[string]*failureRecord),
		log:     log,
		now:     now,
	}
}

func fingerprint(credential string) string {
	h := sha256.Sum256([]byte(credential))
	return hex.EncodeToString(h[:])
}

// IsBlocked reports whether credential is inside a lockout period.
func (g *CredentialGuard) IsBlocked(credential string) bool {
	fp := fingerprint(credential)

	g.mu.Lock()
	defer g.mu.Unlock()

	rec, ok := g.records[fp]
	if !ok || rec.lockedAt.IsZero() {
		return false
	}

	return g.now().Sub(rec.lockedAt) < LockoutPeriod
}

// RecordFailure counts one failed verification of credential.
func (g *CredentialGuard) RecordFailure(credential string) {
	fp := fingerprint(credential)
	now := g.now()

	g.mu.Lock()
	defer g.mu.Unlock()

	rec, ok := g.records[fp]
	if !ok || now.Sub(rec.firstFail) > FailureWindow {
		g.records[fp] = &failureRecord{attempts: 1, firstFail: now}
		return
	}

	rec.attempts++
	if rec.attempts >= MaxFailures && rec.lockedAt.IsZero() {
		rec.lockedAt = now
		g.log.WithField("credential_hash", fp[:16]+"...").Warn("credential locked out after repeated verification failures")
	}
}

// Reset clears failure tracking for credential after a successful verification.
func (g *CredentialGuard) Reset(credential string) {
	fp := fingerprint(credential)

	g.mu.Lock()
	delete(g.records, fp)
	g.mu.Unlock()
}

func (g *CredentialGuard) cleanupLoop(ctx context.Context) {
	ticker := time.NewTicker(cleanupPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			g.sweep()
		}
	}
}

// sweep drops expired lockouts and stale windows, then trims to maxTrackedKeys
// by discarding the oldest windows.
func (g *CredentialGuard) sweep() {
	now := g.now()

	g.mu.Lock()
	defer g.mu.Unlock()

	for k, rec := range g.records {
		expiredLock := !rec.lockedAt.IsZero() && now.Sub(rec.lockedAt) >= LockoutPeriod
		if expiredLock || now.Sub(rec.firstFail) >= FailureWindow {
			delete(g.records, k)
		}
	}

	excess := len(g.records) - maxTrackedKeys
	if excess <= 0 {
		return
	}

	keys := make([]string, 0, len(g.records))
	for k := range g.records {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b string) int {
		return g.records[a].firstFail.Compare(g.records[b].firstFail)
	})

	for _, k := range keys[:excess] {
		delete(g.records, k)
	}
}
