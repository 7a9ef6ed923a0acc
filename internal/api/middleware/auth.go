package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/phrazzld/taskmanager-api/internal/api/shared"
	"github.com/phrazzld/taskmanager-api/internal/platform/logger"
	"github.com/phrazzld/taskmanager-api/internal/redact"
	"github.com/phrazzld/taskmanager-api/internal/service/auth"
)

// UnauthenticatedMessage is the body of every 401 produced by Authenticate.
const UnauthenticatedMessage = "Please authenticate."

// SessionVerifier resolves a bearer credential to a session.
type SessionVerifier interface {
	Verify(ctx context.Context, credential string) (*auth.Session, error)
}

// AuthMiddleware authenticates requests against the stored session tokens.
type AuthMiddleware struct {
	verifier SessionVerifier
}

// NewAuthMiddleware creates a new AuthMiddleware with the given dependencies.
func NewAuthMiddleware(verifier SessionVerifier) *AuthMiddleware {
	if verifier == nil {
		panic("session verifier cannot be nil")
	}
	return &AuthMiddleware{verifier: verifier}
}

// Authenticate verifies the bearer token of the request and stores the
// resulting session in the request context. Requests without a valid,
// unrevoked token are answered with 401 and never reach next.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, err := m.verifier.Verify(r.Context(), bearerToken(r))
		if err != nil {
			logger.FromContext(r.Context()).Debug("request rejected by authentication",
				slog.String("path", r.URL.Path),
				slog.String("reason", redact.Error(err)))
			shared.RespondWithError(w, r, http.StatusUnauthorized, UnauthenticatedMessage)
			return
		}

		log := logger.FromContext(r.Context()).With(slog.String("user_id", session.User.ID.String()))
		ctx := logger.WithContext(shared.WithSession(r.Context(), session), log)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// bearerToken returns the credential of an "Authorization: Bearer <token>"
// header, or "" when the header is absent or uses another scheme.
func bearerToken(r *http.Request) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(r.Header.Get("Authorization")), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// GetSession extracts the authenticated session from the request context.
func GetSession(r *http.Request) (*auth.Session, bool) {
	return shared.SessionFromContext(r.Context())
}
