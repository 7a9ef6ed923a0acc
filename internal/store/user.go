package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/taskmanager-api/internal/domain"
)

// UserStore defines the interface for user data persistence.
type UserStore interface {
	// Create saves a new user to the store.
	// It validates the user and hashes the plaintext Password internally.
	// Returns ErrEmailExists if the email is already taken.
	// Returns validation errors from the domain User if data is invalid.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by their unique ID.
	// Returns ErrUserNotFound if the user does not exist.
	// The avatar image is not loaded; use GetAvatar.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// GetByEmail retrieves a user by their (normalized) email address.
	// Returns ErrUserNotFound if the user does not exist.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// Update modifies an existing user's profile fields.
	// The caller MUST provide a complete user object including HashedPassword.
	// If a new plaintext Password is provided, it is hashed and replaces HashedPassword.
	// Returns ErrUserNotFound if the user does not exist.
	// Returns ErrEmailExists if updating to an email that already exists.
	Update(ctx context.Context, user *domain.User) error

	// Delete removes a user from the store by their ID and returns the removed
	// record. The user's tasks and session tokens are removed with it.
	// Returns ErrUserNotFound if the user does not exist.
	Delete(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// SetAvatar stores the encoded avatar image for a user. A nil image
	// clears it. Returns ErrUserNotFound if the user does not exist.
	SetAvatar(ctx context.Context, id uuid.UUID, image []byte) error

	// GetAvatar returns the stored avatar image.
	// Returns ErrUserNotFound or ErrAvatarNotFound.
	GetAvatar(ctx context.Context, id uuid.UUID) ([]byte, error)

	// WithTx returns a new UserStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) UserStore
}
