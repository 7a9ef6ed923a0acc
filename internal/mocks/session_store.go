package mocks

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskmanager-api/internal/store"
)

// MockSessionStore implements store.SessionStore over a Database.
type MockSessionStore struct {
	db *Database

	AddTokenFn      func(ctx context.Context, userID uuid.UUID, token string, expiresAt time.Time) error
	HasTokenFn      func(ctx context.Context, userID uuid.UUID, token string) (bool, error)
	RemoveTokenFn   func(ctx context.Context, userID uuid.UUID, token string) error
	ClearTokensFn   func(ctx context.Context, userID uuid.UUID) error
	DeleteExpiredFn func(ctx context.Context, now time.Time) (int64, error)
}

var _ store.SessionStore = (*MockSessionStore)(nil)

// NewMockSessionStore creates a MockSessionStore backed by db.
func NewMockSessionStore(db *Database) *MockSessionStore {
	if db == nil {
		db = NewDatabase()
	}
	return &MockSessionStore{db: db}
}

// WithTx returns the same store.
func (m *MockSessionStore) WithTx(*sql.Tx) store.SessionStore {
	return m
}

// AddToken implements store.SessionStore.AddToken.
func (m *MockSessionStore) AddToken(ctx context.Context, userID uuid.UUID, token string, expiresAt time.Time) error {
	if m.AddTokenFn != nil {
		return m.AddTokenFn(ctx, userID, token, expiresAt)
	}

	m.db.mu.Lock()
	defer m.db.mu.Unlock()

	if _, ok := m.db.users[userID]; !ok {
		return store.ErrInvalidEntity
	}
	for _, rec := range m.db.tokens {
		if rec.token == token {
			return store.ErrDuplicate
		}
	}
	m.db.tokens = append(m.db.tokens, tokenRecord{userID: userID, token: token, expiresAt: expiresAt})
	return nil
}

// HasToken implements store.SessionStore.HasToken.
func (m *MockSessionStore) HasToken(ctx context.Context, userID uuid.UUID, token string) (bool, error) {
	if m.HasTokenFn != nil {
		return m.HasTokenFn(ctx, userID, token)
	}

	m.db.mu.Lock()
	defer m.db.mu.Unlock()

	for _, rec := range m.db.tokens {
		if rec.userID == userID && rec.token == token {
			return true, nil
		}
	}
	return false, nil
}

// ListTokens implements store.SessionStore.ListTokens.
func (m *MockSessionStore) ListTokens(ctx context.Context, userID uuid.UUID) ([]string, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()

	tokens := []string{}
	for _, rec := range m.db.tokens {
		if rec.userID == userID {
			tokens = append(tokens, rec.token)
		}
	}
	return tokens, nil
}

// RemoveToken implements store.SessionStore.RemoveToken.
func (m *MockSessionStore) RemoveToken(ctx context.Context, userID uuid.UUID, token string) error {
	if m.RemoveTokenFn != nil {
		return m.RemoveTokenFn(ctx, userID, token)
	}
	m.removeWhere(func(rec tokenRecord) bool {
		return rec.userID == userID && rec.token == token
	})
	return nil
}

// ClearTokens implements store.SessionStore.ClearTokens.
func (m *MockSessionStore) ClearTokens(ctx context.Context, userID uuid.UUID) error {
	if m.ClearTokensFn != nil {
		return m.ClearTokensFn(ctx, userID)
	}
	m.removeWhere(func(rec tokenRecord) bool { return rec.userID == userID })
	return nil
}

// DeleteExpired implements store.SessionStore.DeleteExpired.
func (m *MockSessionStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	if m.DeleteExpiredFn != nil {
		return m.DeleteExpiredFn(ctx, now)
	}
	n := m.removeWhere(func(rec tokenRecord) bool { return rec.expiresAt.Before(now) })
	return int64(n), nil
}

func (m *MockSessionStore) removeWhere(match func(tokenRecord) bool) int {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()

	removed := 0
	kept := m.db.tokens[:0]
	for _, rec := range m.db.tokens {
		if match(rec) {
			removed++
			continue
		}
		kept = append(kept, rec)
	}
	m.db.tokens = kept
	return removed
}
