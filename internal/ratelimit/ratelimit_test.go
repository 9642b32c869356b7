package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyedRateLimiter_ReserveWithinBurst(t *testing.T) {
	tests := []struct {
		name     string
		burst    int
		calls    int
		wantPass int
	}{
		{"burst allows initial requests", 3, 3, 3},
		{"exceeding burst blocks", 2, 5, 2},
		{"single token", 1, 4, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rl := New(1, tt.burst, 0)
			defer rl.Stop()

			passed := 0
			for i := 0; i < tt.calls; i++ {
				if rl.Reserve("client") == 0 {
					passed++
				}
			}
			assert.Equal(t, tt.wantPass, passed)
		})
	}
}

func TestKeyedRateLimiter_IndependentKeys(t *testing.T) {
	rl := New(1, 1, 0)
	defer rl.Stop()

	require.Zero(t, rl.Reserve("10.0.0.1"))
	assert.Positive(t, rl.Reserve("10.0.0.1"))
	assert.Zero(t, rl.Reserve("10.0.0.2"))
}

func TestKeyedRateLimiter_ReserveDoesNotConsumeWhenDenied(t *testing.T) {
	rl := New(60, 1, 0)
	defer rl.Stop()

	assert.Zero(t, rl.Reserve("k"))

	wait := rl.Reserve("k")
	assert.Greater(t, wait, time.Duration(0))
	assert.LessOrEqual(t, wait, time.Second)

	// a denied reservation is returned, so the next wait is no longer
	assert.LessOrEqual(t, rl.Reserve("k"), wait)
}

func TestKeyedRateLimiter_SweepEvictsIdleKeys(t *testing.T) {
	rl := New(60, 1, time.Minute)
	defer rl.Stop()

	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	rl.Reserve("old")
	now = now.Add(2 * time.Minute)
	rl.Reserve("fresh")

	assert.Equal(t, 1, rl.Sweep())
	assert.Equal(t, 1, rl.Len())
}

func TestKeyedRateLimiter_StopIsIdempotent(t *testing.T) {
	rl := New(60, 1, time.Millisecond)
	assert.NotPanics(t, func() {
		rl.Stop()
		rl.Stop()
	})
}

func TestMiddleware(t *testing.T) {
	rl := New(1, 2, 0)
	defer rl.Stop()

	handler := Middleware(rl, nil)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	send := func(addr string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)
		req.RemoteAddr = addr
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusNoContent, send("192.0.2.1:5000").Code)
	assert.Equal(t, http.StatusNoContent, send("192.0.2.1:5001").Code)

	limited := send("192.0.2.1:5002")
	assert.Equal(t, http.StatusTooManyRequests, limited.Code)
	assert.NotEmpty(t, limited.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusNoContent, send("192.0.2.9:5000").Code)
}
