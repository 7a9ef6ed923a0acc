package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// SessionStore persists the set of session tokens that are currently valid
// for each user. A token authenticates only while it is in its user's set.
type SessionStore interface {
	// AddToken appends token to the user's token set.
	// Returns ErrInvalidEntity if the user does not exist.
	AddToken(ctx context.Context, userID uuid.UUID, token string, expiresAt time.Time) error

	// HasToken reports whether token is in the user's token set.
	HasToken(ctx context.Context, userID uuid.UUID, token string) (bool, error)

	// ListTokens returns the user's tokens in the order they were issued.
	ListTokens(ctx context.Context, userID uuid.UUID) ([]string, error)

	// RemoveToken removes token from the user's token set. Removing a token
	// that is not in the set is not an error.
	RemoveToken(ctx context.Context, userID uuid.UUID, token string) error

	// ClearTokens empties the user's token set.
	ClearTokens(ctx context.Context, userID uuid.UUID) error

	// DeleteExpired removes every token whose expiry is before now and
	// returns how many were removed.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)

	// WithTx returns a new SessionStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) SessionStore
}
