package mocks

import (
	"bytes"
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/taskmanager-api/internal/domain"
	"github.com/phrazzld/taskmanager-api/internal/store"
	"golang.org/x/crypto/bcrypt"
)

// MockUserStore implements store.UserStore over a Database.
// Passwords are hashed with bcrypt.MinCost to keep tests fast.
type MockUserStore struct {
	db *Database

	CreateFn     func(ctx context.Context, user *domain.User) error
	GetByIDFn    func(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmailFn func(ctx context.Context, email string) (*domain.User, error)
	UpdateFn     func(ctx context.Context, user *domain.User) error
	DeleteFn     func(ctx context.Context, id uuid.UUID) (*domain.User, error)
	SetAvatarFn  func(ctx context.Context, id uuid.UUID, image []byte) error
	GetAvatarFn  func(ctx context.Context, id uuid.UUID) ([]byte, error)
}

var _ store.UserStore = (*MockUserStore)(nil)

// NewMockUserStore creates a MockUserStore backed by db. A nil db gets a
// fresh Database.
func NewMockUserStore(db *Database) *MockUserStore {
	if db == nil {
		db = NewDatabase()
	}
	return &MockUserStore{db: db}
}

// WithTx returns the same store; the mock has no transactions.
func (m *MockUserStore) WithTx(*sql.Tx) store.UserStore {
	return m
}

// emailTaken must be called with db.mu held.
func (m *MockUserStore) emailTaken(email string, except uuid.UUID) bool {
	for id, u := range m.db.users {
		if id != except && u.Email == email {
			return true
		}
	}
	return false
}

// Create implements store.UserStore.Create.
func (m *MockUserStore) Create(ctx context.Context, user *domain.User) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, user)
	}
	if user.Password == "" {
		return domain.ErrEmptyPassword
	}
	if err := user.Validate(); err != nil {
		return err
	}
	if err := user.HashPassword(bcrypt.MinCost); err != nil {
		return err
	}

	m.db.mu.Lock()
	defer m.db.mu.Unlock()

	if _, exists := m.db.users[user.ID]; exists {
		return store.ErrDuplicate
	}
	if m.emailTaken(user.Email, uuid.Nil) {
		return store.ErrEmailExists
	}
	m.db.users[user.ID] = copyUser(user)
	return nil
}

// GetByID implements store.UserStore.GetByID.
func (m *MockUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}

	m.db.mu.Lock()
	defer m.db.mu.Unlock()

	u, ok := m.db.users[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	return copyUser(u), nil
}

// GetByEmail implements store.UserStore.GetByEmail.
func (m *MockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.GetByEmailFn != nil {
		return m.GetByEmailFn(ctx, email)
	}
	email = domain.NormalizeEmail(email)

	m.db.mu.Lock()
	defer m.db.mu.Unlock()

	for _, u := range m.db.users {
		if u.Email == email {
			return copyUser(u), nil
		}
	}
	return nil, store.ErrUserNotFound
}

// Update implements store.UserStore.Update.
func (m *MockUserStore) Update(ctx context.Context, user *domain.User) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, user)
	}
	if err := user.Validate(); err != nil {
		return err
	}
	if err := user.HashPassword(bcrypt.MinCost); err != nil {
		return err
	}

	m.db.mu.Lock()
	defer m.db.mu.Unlock()

	existing, ok := m.db.users[user.ID]
	if !ok {
		return store.ErrUserNotFound
	}
	if m.emailTaken(user.Email, user.ID) {
		return store.ErrEmailExists
	}
	updated := copyUser(user)
	updated.CreatedAt = existing.CreatedAt
	m.db.users[user.ID] = updated
	return nil
}

// Delete implements store.UserStore.Delete. The user's tasks and tokens
// are removed with it.
func (m *MockUserStore) Delete(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}

	m.db.mu.Lock()
	defer m.db.mu.Unlock()

	u, ok := m.db.users[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	m.db.deleteUser(id)
	return copyUser(u), nil
}

// SetAvatar implements store.UserStore.SetAvatar.
func (m *MockUserStore) SetAvatar(ctx context.Context, id uuid.UUID, image []byte) error {
	if m.SetAvatarFn != nil {
		return m.SetAvatarFn(ctx, id, image)
	}

	m.db.mu.Lock()
	defer m.db.mu.Unlock()

	if _, ok := m.db.users[id]; !ok {
		return store.ErrUserNotFound
	}
	if len(image) == 0 {
		delete(m.db.avatars, id)
		return nil
	}
	m.db.avatars[id] = bytes.Clone(image)
	return nil
}

// GetAvatar implements store.UserStore.GetAvatar.
func (m *MockUserStore) GetAvatar(ctx context.Context, id uuid.UUID) ([]byte, error) {
	if m.GetAvatarFn != nil {
		return m.GetAvatarFn(ctx, id)
	}

	m.db.mu.Lock()
	defer m.db.mu.Unlock()

	if _, ok := m.db.users[id]; !ok {
		return nil, store.ErrUserNotFound
	}
	image, ok := m.db.avatars[id]
	if !ok {
		return nil, store.ErrAvatarNotFound
	}
	return bytes.Clone(image), nil
}
