package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func doRequest(t *testing.T, handler http.Handler, remoteAddr string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("GET", "/api/fpl", nil)
	req.RemoteAddr = remoteAddr
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func TestRateLimiter_AllowsUnderLimit(t *testing.T) {
	limiter := NewRateLimiter(NewMemoryRateLimitStore(), 3, time.Minute)
	handler := limiter.Middleware(okHandler())

	for i := 0; i < 3; i++ {
		w := doRequest(t, handler, "10.0.0.1:1234")
		assert.Equal(t, http.StatusOK, w.Code)
	}
}

func TestRateLimiter_RejectsOverLimit(t *testing.T) {
	limiter := NewRateLimiter(NewMemoryRateLimitStore(), 2, time.Minute)
	handler := limiter.Middleware(okHandler())

	doRequest(t, handler, "10.0.0.1:1234")
	doRequest(t, handler, "10.0.0.1:1234")

	w := doRequest(t, handler, "10.0.0.1:1234")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
}

func TestRateLimiter_SeparateClientsSeparateCounters(t *testing.T) {
	limiter := NewRateLimiter(NewMemoryRateLimitStore(), 1, time.Minute)
	handler := limiter.Middleware(okHandler())

	assert.Equal(t, http.StatusOK, doRequest(t, handler, "10.0.0.1:1234").Code)
	assert.Equal(t, http.StatusOK, doRequest(t, handler, "10.0.0.2:1234").Code)
	assert.Equal(t, http.StatusTooManyRequests, doRequest(t, handler, "10.0.0.1:1234").Code)
}

func TestRateLimiter_WindowResets(t *testing.T) {
	current := time.Date(2024, 6, 1, 12, 0, 30, 0, time.UTC)
	limiter := NewRateLimiter(NewMemoryRateLimitStore(), 1, time.Minute).
		WithClock(func() time.Time { return current })
	handler := limiter.Middleware(okHandler())

	assert.Equal(t, http.StatusOK, doRequest(t, handler, "10.0.0.1:1234").Code)
	assert.Equal(t, http.StatusTooManyRequests, doRequest(t, handler, "10.0.0.1:1234").Code)

	// Advancing past the window boundary clears the counter
	current = current.Add(time.Minute)
	assert.Equal(t, http.StatusOK, doRequest(t, handler, "10.0.0.1:1234").Code)
}

type failingStore struct{}

func (failingStore) Increment(context.Context, string, time.Time, time.Duration) (int, error) {
	return 0, errors.New("store down")
}

func TestRateLimiter_FailsOpenOnStoreError(t *testing.T) {
	limiter := NewRateLimiter(failingStore{}, 1, time.Minute)
	handler := limiter.Middleware(okHandler())

	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, doRequest(t, handler, "10.0.0.1:1234").Code)
	}
}

func TestRateLimiter_SetsRemainingHeader(t *testing.T) {
	limiter := NewRateLimiter(NewMemoryRateLimitStore(), 3, time.Minute)
	handler := limiter.Middleware(okHandler())

	w := doRequest(t, handler, "10.0.0.1:1234")
	assert.Equal(t, "3", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "2", w.Header().Get("X-RateLimit-Remaining"))
}
