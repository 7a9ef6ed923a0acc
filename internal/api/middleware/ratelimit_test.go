package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/phrazzld/taskmanager-api/internal/metrics"
	"github.com/phrazzld/taskmanager-api/internal/ratelimit"
	"github.com/stretchr/testify/assert"
)

type stubLimiter struct {
	decision ratelimit.Decision
	err      error
	keys     []string
}

func (s *stubLimiter) Allow(_ context.Context, key string) (ratelimit.Decision, error) {
	s.keys = append(s.keys, key)
	return s.decision, s.err
}

type recordingObserver struct {
	outcomes []string
}

func (o *recordingObserver) ObserveRateLimit(_, outcome string) {
	o.outcomes = append(o.outcomes, outcome)
}

func TestRateLimit(t *testing.T) {
	tests := []struct {
		name           string
		limiter        *stubLimiter
		wantStatus     int
		wantRetryAfter string
		wantOutcome    string
	}{
		{
			name:        "allowed",
			limiter:     &stubLimiter{decision: ratelimit.Decision{Allowed: true}},
			wantStatus:  http.StatusOK,
			wantOutcome: metrics.OutcomeAllowed,
		},
		{
			name:           "blocked",
			limiter:        &stubLimiter{decision: ratelimit.Decision{RetryAfter: 1500 * time.Millisecond}},
			wantStatus:     http.StatusTooManyRequests,
			wantRetryAfter: "2",
			wantOutcome:    metrics.OutcomeBlocked,
		},
		{
			name:           "blocked without retry hint",
			limiter:        &stubLimiter{},
			wantStatus:     http.StatusTooManyRequests,
			wantRetryAfter: "1",
			wantOutcome:    metrics.OutcomeBlocked,
		},
		{
			name: "limiter failure fails open",
			limiter: &stubLimiter{
				decision: ratelimit.Decision{Allowed: true},
				err:      errors.New("redis: connection refused"),
			},
			wantStatus:  http.StatusOK,
			wantOutcome: metrics.OutcomeError,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			observer := &recordingObserver{}
			handler := RateLimit(tc.limiter, "login", observer)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodPost, "/users/login", nil)
			req.RemoteAddr = "203.0.113.7:51234"
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, tc.wantStatus, w.Code)
			assert.Equal(t, tc.wantRetryAfter, w.Header().Get("Retry-After"))
			assert.Equal(t, []string{tc.wantOutcome}, observer.outcomes)
			assert.Equal(t, []string{"login|203.0.113.7"}, tc.limiter.keys)
		})
	}
}

func TestRateLimit_MemoryLimiterPerClient(t *testing.T) {
	limiter := ratelimit.NewMemoryLimiter(2, time.Minute)
	handler := RateLimit(limiter, "register", nil)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	send := func(addr string) int {
		req := httptest.NewRequest(http.MethodPost, "/users", nil)
		req.RemoteAddr = addr
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusCreated, send("198.51.100.1:1000"))
	assert.Equal(t, http.StatusCreated, send("198.51.100.1:1001"))
	assert.Equal(t, http.StatusTooManyRequests, send("198.51.100.1:1002"))
	assert.Equal(t, http.StatusCreated, send("198.51.100.2:1000"))
}
