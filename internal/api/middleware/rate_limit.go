package middleware

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"showcase/internal/common"

	"golang.org/x/time/rate"
)

const (
	defaultLimiterIdleTTL = 10 * time.Minute
	limiterSweepInterval  = time.Minute
)

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen atomic.Int64 // unix nanos
}

// RateLimiter is a token bucket per client address. Buckets idle for longer
// than the idle TTL are dropped by Sweep.
type RateLimiter struct {
	limiters sync.Map // address -> *clientLimiter
	rate     rate.Limit
	burst    int
	idleTTL  time.Duration
	now      func() time.Time
}

// NewRateLimiter allows requestsPerSecond on average with bursts up to burst.
func NewRateLimiter(requestsPerSecond, burst int) *RateLimiter {
	return &RateLimiter{
		rate:    rate.Limit(requestsPerSecond),
		burst:   burst,
		idleTTL: defaultLimiterIdleTTL,
		now:     time.Now,
	}
}

func (rl *RateLimiter) getLimiter(key string) *rate.Limiter {
	v, ok := rl.limiters.Load(key)
	if !ok {
		v, _ = rl.limiters.LoadOrStore(key, &clientLimiter{limiter: rate.NewLimiter(rl.rate, rl.burst)})
	}
	cl := v.(*clientLimiter)
	cl.lastSeen.Store(rl.now().UnixNano())
	return cl.limiter
}

func (rl *RateLimiter) Allow(key string) bool {
	return rl.getLimiter(key).Allow()
}

// Sweep removes buckets not used within the idle TTL and returns how many
// were removed. An evicted client starts again with a full bucket.
func (rl *RateLimiter) Sweep() int {
	cutoff := rl.now().Add(-rl.idleTTL).UnixNano()
	removed := 0
	rl.limiters.Range(func(key, v any) bool {
		if v.(*clientLimiter).lastSeen.Load() < cutoff {
			rl.limiters.Delete(key)
			removed++
		}
		return true
	})
	return removed
}

// Run sweeps idle buckets periodically until ctx is cancelled.
func (rl *RateLimiter) Run(ctx context.Context) {
	ticker := time.NewTicker(limiterSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.Sweep()
		}
	}
}

// Handler limits by r.RemoteAddr, which chi's RealIP middleware has already
// rewritten from proxy headers.
func (rl *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		limiter := rl.getLimiter(remoteHost(r.RemoteAddr))
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(rl.burst))

		if !limiter.Allow() {
			w.Header().Set("X-RateLimit-Remaining", "0")
			w.Header().Set("Retry-After", "1")
			common.RespondWithError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(int(limiter.Tokens())))
		next.ServeHTTP(w, r)
	})
}

func remoteHost(addr string) string {
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}
