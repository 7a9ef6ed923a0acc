// Package mocks provides in-memory test doubles for the store, transaction
// and notification interfaces.
//
// The store doubles share a Database so that behavior spanning several
// stores (deleting a user removes its tasks and session tokens) matches the
// PostgreSQL implementation. Each double also exposes function fields that
// override a single method, for tests that need to inject failures:
//
//	db := mocks.NewDatabase()
//	users := mocks.NewMockUserStore(db)
//	users.UpdateFn = func(ctx context.Context, u *domain.User) error {
//	    return errors.New("connection reset")
//	}
//
// Notifier and email sender doubles are built on testify's mock.Mock so that
// tests can assert on the calls made from background jobs.
package mocks
