package auth

import (
	"fmt"

	"github.com/phrazzld/taskmanager-api/internal/config"
)

// DefaultJWTConfig returns a standard configuration for session tokens
// suitable for testing.
func DefaultJWTConfig() config.AuthConfig {
	return config.AuthConfig{
		JWTSecret:            "test-jwt-secret-that-is-32-chars-long",
		TokenLifetimeMinutes: 60,
		BCryptCost:           4,
	}
}

// NewTestJWTService creates a JWT service with DefaultJWTConfig. It panics if
// the service cannot be built, which only happens if the defaults are wrong.
func NewTestJWTService() JWTService {
	svc, err := NewJWTService(DefaultJWTConfig())
	if err != nil {
		panic(fmt.Sprintf("failed to create test JWT service: %v", err))
	}
	return svc
}
