package mocks

import "github.com/phrazzld/taskmanager-api/internal/service/auth"

// MockPasswordVerifier implements auth.PasswordVerifier for testing.
type MockPasswordVerifier struct {
	// ShouldSucceed determines whether Compare accepts every password.
	ShouldSucceed bool

	// CompareFn overrides the comparison when set.
	CompareFn func(hashedPassword, password string) error

	// LastPassword is the plaintext passed to the most recent Compare.
	LastPassword string
	CallCount    int
}

// Compare implements auth.PasswordVerifier. A failed comparison returns
// auth.ErrInvalidCredentials, as the real verifier does.
func (m *MockPasswordVerifier) Compare(hashedPassword, password string) error {
	m.LastPassword = password
	m.CallCount++

	if m.CompareFn != nil {
		return m.CompareFn(hashedPassword, password)
	}
	if m.ShouldSucceed {
		return nil
	}
	return auth.ErrInvalidCredentials
}
