package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/taskmanager-api/internal/domain"
	"github.com/phrazzld/taskmanager-api/internal/platform/logger"
	"github.com/phrazzld/taskmanager-api/internal/redact"
	"github.com/phrazzld/taskmanager-api/internal/service/auth"
	"github.com/phrazzld/taskmanager-api/internal/store"
)

// AuthResult is a user together with a freshly issued session token.
type AuthResult struct {
	User  *domain.User
	Token string
}

// AvatarProcessor turns an uploaded image into the stored avatar encoding.
type AvatarProcessor interface {
	Process(filename string, data []byte) ([]byte, error)
}

// UserService provides account operations.
type UserService interface {
	// Register creates a user and its first session. A welcome notification
	// is dispatched after the user is stored.
	Register(ctx context.Context, name, email, password string, age int) (*AuthResult, error)

	// Login verifies credentials and opens a new session. Unknown emails and
	// wrong passwords both fail with auth.ErrInvalidCredentials.
	Login(ctx context.Context, email, password string) (*AuthResult, error)

	// Logout revokes a single session token.
	Logout(ctx context.Context, userID uuid.UUID, token string) error

	// LogoutAll revokes every session token of the user.
	LogoutAll(ctx context.Context, userID uuid.UUID) error

	// GetUser retrieves a user by their ID
	GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error)

	// UpdateProfile applies a partial update to the user's profile.
	UpdateProfile(ctx context.Context, userID uuid.UUID, patch domain.UserPatch) (*domain.User, error)

	// DeleteAccount removes the user with its tasks and sessions and returns
	// the removed record. A cancellation notification is dispatched.
	DeleteAccount(ctx context.Context, userID uuid.UUID) (*domain.User, error)

	// UploadAvatar processes and stores a new avatar image.
	UploadAvatar(ctx context.Context, userID uuid.UUID, filename string, data []byte) error

	// ClearAvatar removes the stored avatar image.
	ClearAvatar(ctx context.Context, userID uuid.UUID) error

	// GetAvatar returns the stored avatar image.
	GetAvatar(ctx context.Context, userID uuid.UUID) ([]byte, error)
}

// UserServiceDeps groups the collaborators of the user service.
type UserServiceDeps struct {
	Users     store.UserStore
	Sessions  store.SessionStore
	Tx        store.Transactor
	Tokens    auth.JWTService
	Passwords auth.PasswordVerifier
	Notifier  AccountNotifier
	Avatars   AvatarProcessor
	Logger    *slog.Logger
}

type userServiceImpl struct {
	users     store.UserStore
	sessions  store.SessionStore
	tx        store.Transactor
	tokens    auth.JWTService
	passwords auth.PasswordVerifier
	notifier  AccountNotifier
	avatars   AvatarProcessor
	logger    *slog.Logger
}

// NewUserService creates a new UserService.
// It returns an error if any of the required dependencies are nil.
func NewUserService(deps UserServiceDeps) (UserService, error) {
	switch {
	case deps.Users == nil:
		return nil, errors.New("user store cannot be nil")
	case deps.Sessions == nil:
		return nil, errors.New("session store cannot be nil")
	case deps.Tx == nil:
		return nil, errors.New("transactor cannot be nil")
	case deps.Tokens == nil:
		return nil, errors.New("token service cannot be nil")
	case deps.Passwords == nil:
		return nil, errors.New("password verifier cannot be nil")
	case deps.Notifier == nil:
		return nil, errors.New("notifier cannot be nil")
	case deps.Avatars == nil:
		return nil, errors.New("avatar processor cannot be nil")
	}

	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}

	return &userServiceImpl{
		users:     deps.Users,
		sessions:  deps.Sessions,
		tx:        deps.Tx,
		tokens:    deps.Tokens,
		passwords: deps.Passwords,
		notifier:  deps.Notifier,
		avatars:   deps.Avatars,
		logger:    log.With(slog.String("component", "user_service")),
	}, nil
}

// issueToken generates a session token and adds it to the user's token set.
func (s *userServiceImpl) issueToken(ctx context.Context, sessions store.SessionStore, userID uuid.UUID) (string, error) {
	token, expiresAt, err := s.tokens.GenerateToken(ctx, userID)
	if err != nil {
		return "", NewServiceError("issue token", "failed to generate token", err)
	}
	if err := sessions.AddToken(ctx, userID, token, expiresAt); err != nil {
		return "", NewServiceError("issue token", "failed to store token", err)
	}
	return token, nil
}

// Register implements UserService.Register.
func (s *userServiceImpl) Register(ctx context.Context, name, email, password string, age int) (*AuthResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := domain.NewUser(name, email, password, age)
	if err != nil {
		log.Debug("invalid registration", slog.String("error", err.Error()))
		return nil, err
	}

	var token string
	err = s.tx.RunInTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if err := s.users.WithTx(tx).Create(ctx, user); err != nil {
			return err
		}
		issued, err := s.issueToken(ctx, s.sessions.WithTx(tx), user.ID)
		if err != nil {
			return err
		}
		token = issued
		return nil
	})
	if err != nil {
		if errors.Is(err, store.ErrEmailExists) || errors.Is(err, domain.ErrValidation) {
			log.Debug("registration rejected", slog.String("error", err.Error()))
			return nil, err
		}
		log.Error("failed to register user", slog.String("error", redact.Error(err)))
		return nil, NewServiceError("register", "failed to create user", err)
	}

	log.Info("user registered", slog.String("user_id", user.ID.String()))
	s.notifier.NotifyWelcome(ctx, user)

	return &AuthResult{User: user, Token: token}, nil
}

// Login implements UserService.Login.
func (s *userServiceImpl) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if store.IsNotFoundError(err) {
			log.Debug("login for unknown email")
			return nil, auth.ErrInvalidCredentials
		}
		log.Error("failed to look up user for login", slog.String("error", redact.Error(err)))
		return nil, NewServiceError("login", "failed to look up user", err)
	}

	if err := s.passwords.Compare(user.HashedPassword, password); err != nil {
		log.Debug("login with wrong password", slog.String("user_id", user.ID.String()))
		return nil, auth.ErrInvalidCredentials
	}

	token, err := s.issueToken(ctx, s.sessions, user.ID)
	if err != nil {
		log.Error("failed to open session",
			slog.String("user_id", user.ID.String()),
			slog.String("error", redact.Error(err)))
		return nil, err
	}

	log.Info("user logged in", slog.String("user_id", user.ID.String()))
	return &AuthResult{User: user, Token: token}, nil
}

// Logout implements UserService.Logout.
func (s *userServiceImpl) Logout(ctx context.Context, userID uuid.UUID, token string) error {
	if err := s.sessions.RemoveToken(ctx, userID, token); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to revoke session",
			slog.String("user_id", userID.String()),
			slog.String("error", redact.Error(err)))
		return NewServiceError("logout", "failed to revoke session", err)
	}
	return nil
}

// LogoutAll implements UserService.LogoutAll.
func (s *userServiceImpl) LogoutAll(ctx context.Context, userID uuid.UUID) error {
	if err := s.sessions.ClearTokens(ctx, userID); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to revoke sessions",
			slog.String("user_id", userID.String()),
			slog.String("error", redact.Error(err)))
		return NewServiceError("logout all", "failed to revoke sessions", err)
	}
	return nil
}

// GetUser implements UserService.GetUser.
func (s *userServiceImpl) GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, err
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to retrieve user",
			slog.String("user_id", userID.String()),
			slog.String("error", redact.Error(err)))
		return nil, NewServiceError("get user", "failed to retrieve user", err)
	}
	return user, nil
}

// UpdateProfile implements UserService.UpdateProfile.
// The user is read and written in one transaction.
func (s *userServiceImpl) UpdateProfile(
	ctx context.Context,
	userID uuid.UUID,
	patch domain.UserPatch,
) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var updated *domain.User
	err := s.tx.RunInTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		users := s.users.WithTx(tx)

		user, err := users.GetByID(ctx, userID)
		if err != nil {
			return err
		}
		if err := patch.Apply(user); err != nil {
			return err
		}
		if err := users.Update(ctx, user); err != nil {
			return err
		}
		updated = user
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrValidation),
			errors.Is(err, store.ErrEmailExists),
			store.IsNotFoundError(err):
			log.Debug("profile update rejected",
				slog.String("user_id", userID.String()),
				slog.String("error", err.Error()))
			return nil, err
		}
		log.Error("failed to update profile",
			slog.String("user_id", userID.String()),
			slog.String("error", redact.Error(err)))
		return nil, NewServiceError("update profile", "failed to update user", err)
	}

	log.Info("user profile updated", slog.String("user_id", userID.String()))
	return updated, nil
}

// DeleteAccount implements UserService.DeleteAccount.
func (s *userServiceImpl) DeleteAccount(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var deleted *domain.User
	err := s.tx.RunInTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		user, err := s.users.WithTx(tx).Delete(ctx, userID)
		if err != nil {
			return err
		}
		deleted = user
		return nil
	})
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, err
		}
		log.Error("failed to delete user",
			slog.String("user_id", userID.String()),
			slog.String("error", redact.Error(err)))
		return nil, NewServiceError("delete account", "failed to delete user", err)
	}

	log.Info("user deleted", slog.String("user_id", userID.String()))
	s.notifier.NotifyCancellation(ctx, deleted)

	return deleted, nil
}

// UploadAvatar implements UserService.UploadAvatar. Processing errors are
// returned unwrapped so callers can report them to the client.
func (s *userServiceImpl) UploadAvatar(ctx context.Context, userID uuid.UUID, filename string, data []byte) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	image, err := s.avatars.Process(filename, data)
	if err != nil {
		log.Debug("avatar rejected",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()))
		return err
	}

	if err := s.users.SetAvatar(ctx, userID, image); err != nil {
		if store.IsNotFoundError(err) {
			return err
		}
		log.Error("failed to store avatar",
			slog.String("user_id", userID.String()),
			slog.String("error", redact.Error(err)))
		return NewServiceError("upload avatar", "failed to store avatar", err)
	}

	log.Info("avatar uploaded",
		slog.String("user_id", userID.String()),
		slog.Int("bytes", len(image)))
	return nil
}

// ClearAvatar implements UserService.ClearAvatar.
func (s *userServiceImpl) ClearAvatar(ctx context.Context, userID uuid.UUID) error {
	if err := s.users.SetAvatar(ctx, userID, nil); err != nil {
		if store.IsNotFoundError(err) {
			return err
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to clear avatar",
			slog.String("user_id", userID.String()),
			slog.String("error", redact.Error(err)))
		return NewServiceError("clear avatar", "failed to clear avatar", err)
	}
	return nil
}

// GetAvatar implements UserService.GetAvatar.
func (s *userServiceImpl) GetAvatar(ctx context.Context, userID uuid.UUID) ([]byte, error) {
	image, err := s.users.GetAvatar(ctx, userID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, err
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to load avatar",
			slog.String("user_id", userID.String()),
			slog.String("error", redact.Error(err)))
		return nil, NewServiceError("get avatar", "failed to load avatar", err)
	}
	return image, nil
}
