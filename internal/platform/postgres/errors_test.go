package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/taskmanager-api/internal/store"
	"github.com/stretchr/testify/assert"
)

func TestMapError(t *testing.T) {
	t.Parallel()

	plain := errors.New("connection refused")

	tests := []struct {
		name    string
		err     error
		wantIs  error
		wantNil bool
	}{
		{name: "nil", err: nil, wantNil: true},
		{name: "no rows", err: sql.ErrNoRows, wantIs: store.ErrNotFound},
		{name: "unique violation", err: &pgconn.PgError{Code: uniqueViolationCode}, wantIs: store.ErrDuplicate},
		{name: "foreign key violation", err: &pgconn.PgError{Code: foreignKeyViolationCode}, wantIs: store.ErrInvalidEntity},
		{name: "check violation", err: &pgconn.PgError{Code: checkViolationCode}, wantIs: store.ErrInvalidEntity},
		{name: "not null violation", err: &pgconn.PgError{Code: notNullViolationCode}, wantIs: store.ErrInvalidEntity},
		{
			name:   "wrapped pg error",
			err:    fmt.Errorf("exec: %w", &pgconn.PgError{Code: uniqueViolationCode}),
			wantIs: store.ErrDuplicate,
		},
		{name: "unmapped error passes through", err: plain, wantIs: plain},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := MapError(tt.err)
			if tt.wantNil {
				assert.NoError(t, got)
				return
			}
			assert.ErrorIs(t, got, tt.wantIs)
		})
	}
}

func TestMapUniqueViolation(t *testing.T) {
	t.Parallel()

	unique := &pgconn.PgError{Code: uniqueViolationCode, ConstraintName: "users_email_key"}
	assert.ErrorIs(t, MapUniqueViolation(unique, store.ErrEmailExists), store.ErrEmailExists)
	assert.ErrorIs(t, MapUniqueViolation(unique, nil), store.ErrDuplicate)

	fk := &pgconn.PgError{Code: foreignKeyViolationCode}
	err := MapUniqueViolation(fk, store.ErrEmailExists)
	assert.NotErrorIs(t, err, store.ErrEmailExists)
	assert.ErrorIs(t, err, store.ErrInvalidEntity)
}

func TestCheckRowsAffected(t *testing.T) {
	t.Parallel()

	assert.NoError(t, CheckRowsAffected(sqlmock.NewResult(0, 1), store.ErrTaskNotFound))
	assert.ErrorIs(t, CheckRowsAffected(sqlmock.NewResult(0, 0), store.ErrTaskNotFound), store.ErrTaskNotFound)
	assert.ErrorIs(t, CheckRowsAffected(sqlmock.NewResult(0, 0), nil), store.ErrNotFound)
	assert.Error(t, CheckRowsAffected(nil, nil))

	failing := sqlmock.NewErrorResult(errors.New("driver does not support RowsAffected"))
	assert.ErrorContains(t, CheckRowsAffected(failing, nil), "failed to get rows affected")
}
