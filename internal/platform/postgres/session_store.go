package postgres

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskmanager-api/internal/platform/logger"
	"github.com/phrazzld/taskmanager-api/internal/redact"
	"github.com/phrazzld/taskmanager-api/internal/store"
)

// PostgresSessionStore implements store.SessionStore on the user_tokens table.
type PostgresSessionStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresSessionStore creates a new PostgresSessionStore.
func NewPostgresSessionStore(db store.DBTX, logger *slog.Logger) *PostgresSessionStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresSessionStore{
		db:     db,
		logger: logger.With(slog.String("component", "session_store")),
	}
}

var _ store.SessionStore = (*PostgresSessionStore)(nil)

// WithTx implements store.SessionStore.WithTx
func (s *PostgresSessionStore) WithTx(tx *sql.Tx) store.SessionStore {
	return &PostgresSessionStore{db: tx, logger: s.logger}
}

// AddToken implements store.SessionStore.AddToken
func (s *PostgresSessionStore) AddToken(
	ctx context.Context,
	userID uuid.UUID,
	token string,
	expiresAt time.Time,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		INSERT INTO user_tokens (id, user_id, token, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := s.db.ExecContext(ctx, query, uuid.New(), userID, token, expiresAt, time.Now().UTC())
	if err != nil {
		log.Error("failed to add session token",
			slog.String("error", redact.Error(err)),
			slog.String("user_id", userID.String()))
		return MapError(err)
	}

	return nil
}

// HasToken implements store.SessionStore.HasToken
func (s *PostgresSessionStore) HasToken(ctx context.Context, userID uuid.UUID, token string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM user_tokens WHERE user_id = $1 AND token = $2)`

	var exists bool
	if err := s.db.QueryRowContext(ctx, query, userID, token).Scan(&exists); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to look up session token",
			slog.String("error", redact.Error(err)),
			slog.String("user_id", userID.String()))
		return false, MapError(err)
	}
	return exists, nil
}

// ListTokens implements store.SessionStore.ListTokens
func (s *PostgresSessionStore) ListTokens(ctx context.Context, userID uuid.UUID) ([]string, error) {
	query := `SELECT token FROM user_tokens WHERE user_id = $1 ORDER BY created_at ASC`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	tokens := []string{}
	for rows.Next() {
		var token string
		if err := rows.Scan(&token); err != nil {
			return nil, err
		}
		tokens = append(tokens, token)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return tokens, nil
}

// RemoveToken implements store.SessionStore.RemoveToken
func (s *PostgresSessionStore) RemoveToken(ctx context.Context, userID uuid.UUID, token string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `DELETE FROM user_tokens WHERE user_id = $1 AND token = $2`
	if _, err := s.db.ExecContext(ctx, query, userID, token); err != nil {
		log.Error("failed to remove session token",
			slog.String("error", redact.Error(err)),
			slog.String("user_id", userID.String()))
		return MapError(err)
	}
	return nil
}

// ClearTokens implements store.SessionStore.ClearTokens
func (s *PostgresSessionStore) ClearTokens(ctx context.Context, userID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM user_tokens WHERE user_id = $1`, userID)
	if err != nil {
		log.Error("failed to clear session tokens",
			slog.String("error", redact.Error(err)),
			slog.String("user_id", userID.String()))
		return MapError(err)
	}

	if n, err := result.RowsAffected(); err == nil {
		log.Debug("cleared session tokens",
			slog.String("user_id", userID.String()),
			slog.Int64("count", n))
	}
	return nil
}

// DeleteExpired implements store.SessionStore.DeleteExpired
func (s *PostgresSessionStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM user_tokens WHERE expires_at < $1`, now)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to delete expired tokens",
			slog.String("error", redact.Error(err)))
		return 0, MapError(err)
	}
	return result.RowsAffected()
}
