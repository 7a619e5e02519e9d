package http

import (
	"sync"
	"time"

	"github.com/jellydator/ttlcache/v3"
	"golang.org/x/time/rate"
)

// RateLimiter keeps one token bucket per client key. Buckets of clients idle
// for longer than the TTL are evicted, so returning clients start full.
type RateLimiter struct {
	mu      sync.Mutex
	clients *ttlcache.Cache[string, *rate.Limiter]
	limit   rate.Limit
	burst   int
	now     func() time.Time
}

// NewRateLimiter constructs a rate limiter and starts its eviction loop. Call Stop to release it.
func NewRateLimiter(burst int, refillPerSecond float64, ttl time.Duration) *RateLimiter {
	clients := ttlcache.New[string, *rate.Limiter](
		ttlcache.WithTTL[string, *rate.Limiter](ttl),
	)
	go clients.Start()

	return &RateLimiter{
		clients: clients,
		limit:   rate.Limit(refillPerSecond),
		burst:   burst,
		now:     time.Now,
	}
}

// Allow consumes a token for the provided key if possible.
func (rl *RateLimiter) Allow(key string) bool {
	if key == "" {
		key = "unknown"
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	var limiter *rate.Limiter
	if item := rl.clients.Get(key); item != nil {
		limiter = item.Value()
	} else {
		limiter = rate.NewLimiter(rl.limit, rl.burst)
		rl.clients.Set(key, limiter, ttlcache.DefaultTTL)
	}

	return limiter.AllowN(rl.now(), 1)
}

// Clients returns the number of tracked client buckets.
func (rl *RateLimiter) Clients() int {
	return rl.clients.Len()
}

// Stop halts the eviction loop.
func (rl *RateLimiter) Stop() {
	rl.clients.Stop()
}
