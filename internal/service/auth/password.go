package auth

import (
	"errors"
	"fmt"

	"github.com/phrazzld/taskmanager-api/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

// PasswordVerifier checks a plaintext password against a stored hash.
type PasswordVerifier interface {
	// Compare returns nil when password matches hashedPassword.
	Compare(hashedPassword, password string) error
}

// BcryptVerifier checks passwords hashed by domain.User.HashPassword.
type BcryptVerifier struct{}

// NewBcryptVerifier creates a new BcryptVerifier.
func NewBcryptVerifier() *BcryptVerifier {
	return &BcryptVerifier{}
}

// Compare returns ErrInvalidCredentials on a mismatch. A hash that bcrypt
// cannot parse is reported as a wrapped error instead.
func (v *BcryptVerifier) Compare(hashedPassword, password string) error {
	user := domain.User{HashedPassword: hashedPassword}
	err := user.CheckPassword(password)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return ErrInvalidCredentials
	default:
		return fmt.Errorf("failed to compare password: %w", err)
	}
}
