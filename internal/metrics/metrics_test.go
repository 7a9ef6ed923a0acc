package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return string(body)
}

func TestMiddleware_LabelsByRoutePattern(t *testing.T) {
	t.Parallel()

	m := New()
	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/tasks/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	for _, path := range []string{"/tasks/1", "/tasks/2", "/health"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	}

	out := scrape(t, m)
	assert.Contains(t, out, `taskmanager_http_requests_total{method="GET",route="/tasks/{id}",status="404"} 2`)
	assert.Contains(t, out, `taskmanager_http_requests_total{method="GET",route="/health",status="200"} 1`)
	assert.Contains(t, out, `taskmanager_http_request_duration_seconds_count{method="GET",route="/tasks/{id}"} 2`)
	assert.NotContains(t, out, `route="/tasks/1"`)
}

func TestCounters(t *testing.T) {
	t.Parallel()

	m := New()
	m.ObserveRateLimit("/users/login", OutcomeBlocked)
	m.ObserveJob("welcome_email", nil)
	m.ObserveJob("welcome_email", errors.New("smtp down"))
	m.ObserveJob("welcome_email", nil)
	m.AddSweptTokens(3)
	m.AddSweptTokens(0)

	out := scrape(t, m)
	assert.Contains(t, out, `taskmanager_rate_limiter_decisions_total{outcome="blocked",route="/users/login"} 1`)
	assert.Contains(t, out, `taskmanager_jobs_processed_total{result="success",type="welcome_email"} 2`)
	assert.Contains(t, out, `taskmanager_jobs_processed_total{result="failure",type="welcome_email"} 1`)
	assert.Contains(t, out, "taskmanager_session_tokens_swept_total 3")
	assert.Contains(t, out, "go_goroutines")
}

func TestRoutePattern_Unmatched(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "unmatched", RoutePattern(httptest.NewRequest(http.MethodGet, "/", nil)))
}
