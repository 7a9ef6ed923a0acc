package service_test

import (
	"io"
	"log/slog"
	"testing"

	"github.com/phrazzld/taskmanager-api/internal/mocks"
	"github.com/phrazzld/taskmanager-api/internal/service"
	"github.com/phrazzld/taskmanager-api/internal/service/auth"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// avatarFunc adapts a function to service.AvatarProcessor.
type avatarFunc func(filename string, data []byte) ([]byte, error)

func (f avatarFunc) Process(filename string, data []byte) ([]byte, error) {
	return f(filename, data)
}

type userFixture struct {
	db       *mocks.Database
	users    *mocks.MockUserStore
	sessions *mocks.MockSessionStore
	tx       *mocks.MockTransactor
	notifier *mocks.MockNotifier
	tokens   auth.JWTService
	svc      service.UserService
}

func newUserFixture(t *testing.T) *userFixture {
	t.Helper()
	return newUserFixtureWith(t, auth.NewTestJWTService(), auth.NewBcryptVerifier())
}

// newUserFixtureWith builds a fixture around the given token service and
// password verifier.
func newUserFixtureWith(t *testing.T, tokens auth.JWTService, passwords auth.PasswordVerifier) *userFixture {
	t.Helper()

	db := mocks.NewDatabase()
	f := &userFixture{
		db:       db,
		users:    mocks.NewMockUserStore(db),
		sessions: mocks.NewMockSessionStore(db),
		tx:       &mocks.MockTransactor{},
		notifier: mocks.NewMockNotifier(),
		tokens:   tokens,
	}

	svc, err := service.NewUserService(service.UserServiceDeps{
		Users:     f.users,
		Sessions:  f.sessions,
		Tx:        f.tx,
		Tokens:    f.tokens,
		Passwords: passwords,
		Notifier:  f.notifier,
		Avatars: avatarFunc(func(filename string, data []byte) ([]byte, error) {
			return append([]byte("png:"), data...), nil
		}),
		Logger: discardLogger(),
	})
	require.NoError(t, err)
	f.svc = svc
	return f
}
