package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/taskmanager-api/internal/store"
)

// SQLSTATE codes recognized by MapError.
const (
	uniqueViolationCode     = "23505"
	foreignKeyViolationCode = "23503"
	checkViolationCode      = "23514"
	notNullViolationCode    = "23502"
)

// constraintViolations names the integrity violations reported as
// store.ErrInvalidEntity, such as a task whose owner no longer exists.
var constraintViolations = map[string]string{
	foreignKeyViolationCode: "foreign key violation",
	checkViolationCode:      "check constraint violation",
	notNullViolationCode:    "not null violation",
}

// MapError translates database/sql and PostgreSQL errors into store errors,
// keeping the original error in the message. Unrecognized errors are
// returned unchanged.
func MapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %v", store.ErrNotFound, err)
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	if pgErr.Code == uniqueViolationCode {
		return fmt.Errorf("%w: %v", store.ErrDuplicate, err)
	}
	if label, ok := constraintViolations[pgErr.Code]; ok {
		detail := pgErr.ConstraintName
		if pgErr.Code == notNullViolationCode {
			detail = pgErr.ColumnName
		}
		return fmt.Errorf("%w: %s (%s): %v", store.ErrInvalidEntity, label, detail, err)
	}
	return err
}

// IsUniqueViolation checks if the given error is a PostgreSQL unique constraint violation.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}

// MapUniqueViolation maps a unique violation to specificError, and any other
// error through MapError.
func MapUniqueViolation(err error, specificError error) error {
	if IsUniqueViolation(err) && specificError != nil {
		return fmt.Errorf("%w: %v", specificError, err)
	}
	return MapError(err)
}

// CheckRowsAffected returns notFound (store.ErrNotFound when nil) if the
// statement touched no rows.
func CheckRowsAffected(result sql.Result, notFound error) error {
	if result == nil {
		return fmt.Errorf("nil result provided to CheckRowsAffected")
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		if notFound == nil {
			return store.ErrNotFound
		}
		return notFound
	}

	return nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}
