// Package postgres provides PostgreSQL-specific implementations for the data
// storage interfaces defined in the internal/store package.
// It handles query execution, mapping between domain entities and database
// records, and translation of driver errors into store errors. The schema is
// managed by goose migrations embedded in the package (see Migrate).
package postgres
