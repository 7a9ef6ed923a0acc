package shared

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/phrazzld/taskmanager-api/internal/service/auth"
)

// Key type for context values
type ContextKey string

// Context keys for various values
const (
	// SessionContextKey is the context key for the authenticated session
	SessionContextKey ContextKey = "session"

	// TraceIDKey is the key for the trace ID in the request context
	TraceIDKey ContextKey = "traceID"

	// TraceIDLength is the number of bytes used to generate the trace ID
	TraceIDLength = 16 // 32 hex characters
)

// WithSession returns a copy of ctx carrying the authenticated session.
func WithSession(ctx context.Context, session *auth.Session) context.Context {
	return context.WithValue(ctx, SessionContextKey, session)
}

// SessionFromContext returns the authenticated session, if any.
func SessionFromContext(ctx context.Context) (*auth.Session, bool) {
	session, ok := ctx.Value(SessionContextKey).(*auth.Session)
	if !ok || session == nil || session.User == nil {
		return nil, false
	}
	return session, true
}

// SetTraceID adds a trace ID to the context.
// This is useful for correlating logs and error responses.
func SetTraceID(ctx context.Context) context.Context {
	return context.WithValue(ctx, TraceIDKey, generateTraceID(rand.Read))
}

// GetTraceID retrieves the trace ID from the context.
// If no trace ID exists, it returns an empty string.
func GetTraceID(ctx context.Context) string {
	traceID, ok := ctx.Value(TraceIDKey).(string)
	if !ok {
		return ""
	}
	return traceID
}

// generateTraceID returns 32 hex characters read from randRead. If randRead
// fails a random UUID's hex digits are used instead.
func generateTraceID(randRead func([]byte) (int, error)) string {
	b := make([]byte, TraceIDLength)
	n, err := randRead(b)
	if err != nil || n != TraceIDLength {
		slog.Error("failed to generate secure random trace ID",
			slog.Any("error", err),
			slog.Int("bytes_read", n),
			slog.String("fallback", "uuid"))
		return strings.ReplaceAll(uuid.NewString(), "-", "")
	}
	return hex.EncodeToString(b)
}
