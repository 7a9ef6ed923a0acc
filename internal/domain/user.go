package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Password length bounds. The upper bound is bcrypt's input limit.
const (
	MinPasswordLength = 7
	MaxPasswordLength = 72
)

var validate = validator.New()

// User represents a registered account. Session tokens and the avatar image
// live alongside the user in storage but are never serialized.
type User struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Age            int       `json:"age"`
	Password       string    `json:"-"` // Plaintext, only set while registering or changing the password
	HashedPassword string    `json:"-"`
	Avatar         []byte    `json:"-"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewUser creates a new User with a fresh ID and timestamps. Inputs are
// normalized (trimmed, email lower-cased) before validation.
//
// The plaintext password is kept on the returned user; the store hashes it
// when the user is persisted.
func NewUser(name, email, password string, age int) (*User, error) {
	now := time.Now().UTC()
	user := &User{
		ID:        uuid.New(),
		Name:      name,
		Email:     email,
		Password:  password,
		Age:       age,
		CreatedAt: now,
		UpdatedAt: now,
	}
	user.Normalize()

	if err := user.Validate(); err != nil {
		return nil, err
	}

	return user, nil
}

// Normalize trims the user's text fields and lower-cases the email.
func (u *User) Normalize() {
	u.Name = strings.TrimSpace(u.Name)
	u.Email = NormalizeEmail(u.Email)
	u.Password = strings.TrimSpace(u.Password)
}

// Validate checks if the User has valid data.
func (u *User) Validate() error {
	if u.ID == uuid.Nil {
		return ErrInvalidID
	}
	if u.Name == "" {
		return ErrEmptyName
	}
	if err := ValidateEmail(u.Email); err != nil {
		return err
	}
	if u.Age < 0 {
		return ErrNegativeAge
	}

	// A stored user has only the hash; a new or changed password must satisfy
	// the password rules.
	if u.Password != "" {
		return ValidatePassword(u.Password)
	}
	if u.HashedPassword == "" {
		return ErrEmptyPassword
	}

	return nil
}

// HashPassword replaces the plaintext Password with its bcrypt hash at the
// given cost. It does nothing when no plaintext is set, so stores can call it
// on every write.
func (u *User) HashPassword(cost int) error {
	if u.Password == "" {
		return nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), cost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	u.HashedPassword = string(hash)
	u.Password = ""
	return nil
}

// CheckPassword compares password with the stored hash.
func (u *User) CheckPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.HashedPassword), []byte(password))
}

// HasAvatar reports whether an avatar image is stored for the user.
func (u *User) HasAvatar() bool {
	return len(u.Avatar) > 0
}

// NormalizeEmail trims and lower-cases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail checks that email is present and well-formed.
func ValidateEmail(email string) error {
	if email == "" {
		return ErrEmptyEmail
	}
	if err := validate.Var(email, "email"); err != nil {
		return ErrInvalidEmail
	}
	return nil
}

// ValidatePassword applies the password rules to a plaintext password.
func ValidatePassword(password string) error {
	switch {
	case password == "":
		return ErrEmptyPassword
	case len(password) < MinPasswordLength:
		return ErrPasswordTooShort
	case len(password) > MaxPasswordLength:
		return ErrPasswordTooLong
	case strings.Contains(strings.ToLower(password), "password"):
		return ErrPasswordContains
	}
	return nil
}
