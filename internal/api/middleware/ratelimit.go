package middleware

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/clearcompass/clearcompass/backend/internal/infrastructure/observability"
)

// RateLimitStore counts requests per client key within a fixed window.
// Implementations must be safe for concurrent use.
type RateLimitStore interface {
	// Increment bumps the counter for key in the window starting at
	// windowStart and returns the new count.
	Increment(ctx context.Context, key string, windowStart time.Time, ttl time.Duration) (int, error)
}

// RateLimiter enforces a fixed-window request limit per client IP. The
// clock is injectable so window boundaries are testable.
type RateLimiter struct {
	store  RateLimitStore
	limit  int
	window time.Duration
	now    func() time.Time
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(store RateLimitStore, limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		store:  store,
		limit:  limit,
		window: window,
		now:    time.Now,
	}
}

// WithClock overrides the limiter's clock.
func (rl *RateLimiter) WithClock(now func() time.Time) *RateLimiter {
	rl.now = now
	return rl
}

// Middleware rejects requests over the per-window limit with 429. Store
// failures fail open; availability wins over strict limiting.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := clientIP(r)
		windowStart := rl.now().Truncate(rl.window)

		count, err := rl.store.Increment(r.Context(), key, windowStart, rl.window)
		if err != nil {
			observability.GetLogger().Warn().Err(err).Msg("rate limit store unavailable; allowing request")
			next.ServeHTTP(w, r)
			return
		}

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(rl.limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(max(0, rl.limit-count)))

		if count > rl.limit {
			w.Header().Set("Retry-After", strconv.Itoa(int(rl.window.Seconds())))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"error":"rate limit exceeded"}`))
			return
		}

		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return fwd
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// MemoryRateLimitStore is the in-process store used in development and
// tests. Stale windows are dropped on each increment.
type MemoryRateLimitStore struct {
	mu     sync.Mutex
	counts map[string]int
	window time.Time
}

// NewMemoryRateLimitStore creates a new in-memory store
func NewMemoryRateLimitStore() *MemoryRateLimitStore {
	return &MemoryRateLimitStore{counts: make(map[string]int)}
}

func (s *MemoryRateLimitStore) Increment(_ context.Context, key string, windowStart time.Time, _ time.Duration) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.window.Equal(windowStart) {
		s.counts = make(map[string]int)
		s.window = windowStart
	}
	s.counts[key]++
	return s.counts[key], nil
}

// RedisRateLimitStore shares counters across instances through Redis.
type RedisRateLimitStore struct {
	client *redis.Client
}

// NewRedisRateLimitStore creates a new Redis-backed store
func NewRedisRateLimitStore(client *redis.Client) *RedisRateLimitStore {
	return &RedisRateLimitStore{client: client}
}

func (s *RedisRateLimitStore) Increment(ctx context.Context, key string, windowStart time.Time, ttl time.Duration) (int, error) {
	redisKey := "ratelimit:" + key + ":" + strconv.FormatInt(windowStart.Unix(), 10)

	pipe := s.client.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	pipe.Expire(ctx, redisKey, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return int(incr.Val()), nil
}
