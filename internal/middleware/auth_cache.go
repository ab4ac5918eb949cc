package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"sync"
	"time"

	"github.com/learnhub/auditkeeper/internal/models"
)

const (
	identityCacheTTL   = 5 * time.Minute
	negativeCacheTTL   = 30 * time.Second
	maxCacheEntries    = 10000
	cacheCleanupPeriod = 60 * time.Second
)

type cachedIdentity struct {
	identity  *models.Identity // nil marks a cached rejection
	fetchedAt time.Time
}

// ttl returns the appropriate TTL for this entry.
func (ci cachedIdentity) ttl() time.Duration {
	if ci.identity == nil {
		return negativeCacheTTL
	}
	return identityCacheTTL
}

// hashToken returns a hex-encoded SHA-256 of the token so raw credentials
// are never stored in memory.
func hashToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}

// CachedIdentityVerifier wraps an IdentityVerifier with a bounded in-memory cache.
// Only definite rejections (models.ErrUnauthenticated) are negatively cached;
// infrastructure errors are passed through uncached.
type CachedIdentityVerifier struct {
	inner IdentityVerifier
	mu    sync.RWMutex
	cache map[string]cachedIdentity
}

// NewCachedIdentityVerifier creates a caching wrapper around inner.
// The provided context controls the lifetime of the background eviction goroutine.
func NewCachedIdentityVerifier(ctx context.Context, inner IdentityVerifier) *CachedIdentityVerifier {
	c := &CachedIdentityVerifier{
		inner: inner,
		cache: make(map[string]cachedIdentity),
	}
	go c.evictLoop(ctx)
	return c
}

// evictLoop periodically removes expired entries from the cache.
func (c *CachedIdentityVerifier) evictLoop(ctx context.Context) {
	ticker := time.NewTicker(cacheCleanupPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.mu.Lock()
			c.evictExpiredLocked(time.Now())
			c.mu.Unlock()
		}
	}
}

func (c *CachedIdentityVerifier) evictExpiredLocked(now time.Time) {
	for k, v := range c.cache {
		if now.Sub(v.fetchedAt) >= v.ttl() {
			delete(c.cache, k)
		}
	}
}

// VerifyToken returns a cached identity or delegates to the inner verifier.
func (c *CachedIdentityVerifier) VerifyToken(ctx context.Context, token string) (*models.Identity, error) {
	hk := hashToken(token)

	c.mu.RLock()
	entry, ok := c.cache[hk]
	c.mu.RUnlock()

	if ok && time.Since(entry.fetchedAt) < entry.ttl() {
		if entry.identity == nil {
			return nil, models.ErrUnauthenticated
		}
		id := *entry.identity
		return &id, nil
	}

	id, err := c.inner.VerifyToken(ctx, token)
	if err != nil {
		if errors.Is(err, models.ErrUnauthenticated) {
			c.store(hk, cachedIdentity{fetchedAt: time.Now()})
		}
		return nil, err
	}

	stored := *id
	c.store(hk, cachedIdentity{identity: &stored, fetchedAt: time.Now()})

	return id, nil
}

func (c *CachedIdentityVerifier) store(hk string, entry cachedIdentity) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.cache) >= maxCacheEntries {
		c.evictExpiredLocked(time.Now())
		for k := range c.cache {
			if len(c.cache) < maxCacheEntries {
				break
			}
			delete(c.cache, k)
		}
	}
	c.cache[hk] = entry
}
