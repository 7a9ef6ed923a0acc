package auth

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/taskmanager-api/internal/domain"
	"github.com/phrazzld/taskmanager-api/internal/platform/logger"
	"github.com/phrazzld/taskmanager-api/internal/store"
)

// Session is an authenticated request's identity: the resolved user and the
// raw credential it presented.
type Session struct {
	User  *domain.User
	Token string
}

// SessionVerifier resolves bearer credentials to sessions. A credential is
// accepted only if its signature and expiry are valid, its user exists, and
// it is still in that user's token set.
type SessionVerifier struct {
	tokens   JWTService
	users    store.UserStore
	sessions store.SessionStore
	logger   *slog.Logger
}

// NewSessionVerifier creates a SessionVerifier.
func NewSessionVerifier(
	tokens JWTService,
	users store.UserStore,
	sessions store.SessionStore,
	logger *slog.Logger,
) *SessionVerifier {
	if tokens == nil || users == nil || sessions == nil {
		panic("session verifier dependencies cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionVerifier{
		tokens:   tokens,
		users:    users,
		sessions: sessions,
		logger:   logger.With(slog.String("component", "session_verifier")),
	}
}

// Verify returns the session for credential. Every failure wraps
// ErrUnauthorized together with the reason.
func (v *SessionVerifier) Verify(ctx context.Context, credential string) (*Session, error) {
	log := logger.FromContextOrDefault(ctx, v.logger)

	if credential == "" {
		return nil, fmt.Errorf("%w: %w", ErrUnauthorized, ErrMissingToken)
	}

	claims, err := v.tokens.ValidateToken(ctx, credential)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}

	user, err := v.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if !store.IsNotFoundError(err) {
			log.Error("failed to load user for session",
				slog.String("user_id", claims.UserID.String()),
				slog.String("error", err.Error()))
		}
		return nil, fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}

	ok, err := v.sessions.HasToken(ctx, user.ID, credential)
	if err != nil {
		log.Error("failed to check session token",
			slog.String("user_id", user.ID.String()),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %w", ErrUnauthorized, ErrTokenRevoked)
	}

	return &Session{User: user, Token: credential}, nil
}
