package mocks

import (
	"context"

	"github.com/phrazzld/taskmanager-api/internal/store"
)

// MockTransactor implements store.Transactor without a database. fn is
// called with a nil transaction, which the mock stores ignore.
type MockTransactor struct {
	// BeginErr, when set, is returned without calling fn.
	BeginErr error

	Calls int
}

var _ store.Transactor = (*MockTransactor)(nil)

// RunInTx implements store.Transactor.
func (m *MockTransactor) RunInTx(ctx context.Context, fn store.TxFn) error {
	m.Calls++
	if m.BeginErr != nil {
		return m.BeginErr
	}
	return fn(ctx, nil)
}
