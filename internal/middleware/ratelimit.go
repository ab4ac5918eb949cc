// Package middleware provides HTTP middleware for auditkeeper.
package middleware

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const (
	// maxBuckets caps the number of tracked client IPs.
	maxBuckets = 100_000

	bucketIdleTTL   = 10 * time.Minute
	bucketSweepTick = 5 * time.Minute
)

// RateLimiter keeps one token bucket per client IP. Every request spends one
// token through Handler; costly routes spend more through Cost.
type RateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*clientBucket
	limit   rate.Limit
	burst   int
}

type clientBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter creates a RateLimiter refilling ratePerSec tokens per second
// up to burst. Idle buckets are swept until ctx is cancelled.
func NewRateLimiter(ctx context.Context, ratePerSec float64, burst int) *RateLimiter {
	rl := &RateLimiter{
		buckets: make(map[string]*clientBucket),
		limit:   rate.Limit(ratePerSec),
		burst:   burst,
	}
	go rl.sweepLoop(ctx)

	return rl
}

func (rl *RateLimiter) sweepLoop(ctx context.Context) {
	ticker := time.NewTicker(bucketSweepTick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			rl.mu.Lock()
			for ip, b := range rl.buckets {
				if now.Sub(b.lastSeen) > bucketIdleTTL {
					delete(rl.buckets, ip)
				}
			}
			rl.mu.Unlock()
		}
	}
}

// bucket returns the limiter for ip, creating it when there is room.
func (rl *RateLimiter) bucket(ip string) (*rate.Limiter, bool) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, ok := rl.buckets[ip]
	if !ok {
		if len(rl.buckets) >= maxBuckets {
			return nil, false
		}
		b = &clientBucket{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.buckets[ip] = b
	}
	b.lastSeen = time.Now()

	return b.limiter, true
}

// Handler spends one token per request.
func (rl *RateLimiter) Handler() gin.HandlerFunc {
	return rl.Cost(1)
}

// Cost spends n tokens per request. A cost above the burst is clamped to it.
func (rl *RateLimiter) Cost(n int) gin.HandlerFunc {
	n = max(1, min(n, rl.burst))

	return func(c *gin.Context) {
		// ClientIP ignores forwarding headers because the router trusts no proxies.
		lim, ok := rl.bucket(c.ClientIP())
		if !ok {
			respondError(c, http.StatusTooManyRequests, "rate_limited", "too many clients")

			return
		}

		res := lim.ReserveN(time.Now(), n)
		if delay := res.Delay(); delay > 0 {
			res.Cancel()
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(delay.Seconds()))))
			respondError(c, http.StatusTooManyRequests, "rate_limited", "rate limit exceeded")

			return
		}

		c.Next()
	}
}
