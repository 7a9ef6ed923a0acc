package shared

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/phrazzld/taskmanager-api/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespondWithJSON(t *testing.T) {
	tests := []struct {
		name         string
		status       int
		data         interface{}
		expectedBody string
	}{
		{
			name:         "message",
			status:       http.StatusOK,
			data:         MessageResponse{Message: "The file was uploaded."},
			expectedBody: `{"message":"The file was uploaded."}`,
		},
		{
			name:         "empty list",
			status:       http.StatusOK,
			data:         []string{},
			expectedBody: `[]`,
		},
		{
			name:         "nil",
			status:       http.StatusOK,
			data:         nil,
			expectedBody: `null`,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			w := httptest.NewRecorder()

			RespondWithJSON(w, req, tc.status, tc.data)

			assert.Equal(t, tc.status, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
			assert.Equal(t, tc.expectedBody+"\n", w.Body.String())
		})
	}
}

func TestRespondWithError_Body(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/tasks/abc", nil)
	req = req.WithContext(SetTraceID(req.Context()))
	w := httptest.NewRecorder()

	RespondWithError(w, req, http.StatusNotFound, "Task not found")

	assert.Equal(t, http.StatusNotFound, w.Code)

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, http.StatusNotFound, body.Code)
	assert.Equal(t, "Task not found", body.Error)
	assert.Equal(t, GetTraceID(req.Context()), body.TraceID)
}

func TestRespondWithErrorAndLog_Levels(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		opts      []ResponseOption
		wantLevel string
	}{
		{name: "server error", status: http.StatusInternalServerError, wantLevel: "ERROR"},
		{name: "rate limited", status: http.StatusTooManyRequests, wantLevel: "WARN"},
		{name: "client error", status: http.StatusBadRequest, wantLevel: "DEBUG"},
		{
			name:      "elevated client error",
			status:    http.StatusUnauthorized,
			opts:      []ResponseOption{WithElevatedLogLevel()},
			wantLevel: "WARN",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			log := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

			req := httptest.NewRequest(http.MethodPost, "/users", nil)
			req = req.WithContext(logger.WithContext(req.Context(), log))
			w := httptest.NewRecorder()

			RespondWithErrorAndLog(w, req, tc.status, "Something failed", errors.New("boom"), tc.opts...)

			var entry map[string]interface{}
			require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
			assert.Equal(t, tc.wantLevel, entry["level"])
			assert.Equal(t, float64(tc.status), entry["status_code"])
			assert.Equal(t, "boom", entry["error"])
		})
	}
}

func TestRespondWithErrorAndLog_HidesInternalError(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, nil))

	req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
	req = req.WithContext(logger.WithContext(req.Context(), log))
	w := httptest.NewRecorder()

	internal := errors.New(`pq: relation "users" does not exist`)
	RespondWithErrorAndLog(w, req, http.StatusInternalServerError, "An unexpected error occurred", internal)

	assert.NotContains(t, w.Body.String(), "relation")
	assert.Contains(t, w.Body.String(), "An unexpected error occurred")
}
