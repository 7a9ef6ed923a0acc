package mocks

import (
	"context"
	"database/sql"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/phrazzld/taskmanager-api/internal/domain"
	"github.com/phrazzld/taskmanager-api/internal/store"
)

// MockTaskStore implements store.TaskStore over a Database.
type MockTaskStore struct {
	db *Database

	CreateFn         func(ctx context.Context, task *domain.Task) error
	ListFn           func(ctx context.Context, q store.TaskQuery) ([]*domain.Task, error)
	GetForOwnerFn    func(ctx context.Context, id, ownerID uuid.UUID) (*domain.Task, error)
	UpdateFn         func(ctx context.Context, task *domain.Task) error
	DeleteForOwnerFn func(ctx context.Context, id, ownerID uuid.UUID) (*domain.Task, error)
}

var _ store.TaskStore = (*MockTaskStore)(nil)

// NewMockTaskStore creates a MockTaskStore backed by db.
func NewMockTaskStore(db *Database) *MockTaskStore {
	if db == nil {
		db = NewDatabase()
	}
	return &MockTaskStore{db: db}
}

// WithTx returns the same store.
func (m *MockTaskStore) WithTx(*sql.Tx) store.TaskStore {
	return m
}

// Create implements store.TaskStore.Create.
func (m *MockTaskStore) Create(ctx context.Context, task *domain.Task) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, task)
	}
	if err := task.Validate(); err != nil {
		return err
	}

	m.db.mu.Lock()
	defer m.db.mu.Unlock()

	if _, ok := m.db.users[task.OwnerID]; !ok {
		return store.ErrInvalidEntity
	}
	if _, exists := m.db.tasks[task.ID]; exists {
		return store.ErrDuplicate
	}
	m.db.tasks[task.ID] = &taskRecord{task: copyTask(task), seq: m.db.nextSeq()}
	return nil
}

// List implements store.TaskStore.List with the same ordering as the
// PostgreSQL store: the requested sort first, then creation order.
func (m *MockTaskStore) List(ctx context.Context, q store.TaskQuery) ([]*domain.Task, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, q)
	}

	m.db.mu.Lock()
	matched := make([]*taskRecord, 0)
	for _, rec := range m.db.tasks {
		if rec.task.OwnerID != q.OwnerID {
			continue
		}
		if q.Completed != nil && rec.task.Completed != *q.Completed {
			continue
		}
		matched = append(matched, &taskRecord{task: copyTask(rec.task), seq: rec.seq})
	}
	m.db.mu.Unlock()

	sort.SliceStable(matched, func(i, j int) bool {
		if q.Sort != nil {
			if c := compareTasks(matched[i].task, matched[j].task, q.Sort.Field); c != 0 {
				if q.Sort.Descending {
					return c > 0
				}
				return c < 0
			}
		}
		return matched[i].seq < matched[j].seq
	})

	if q.Skip > 0 {
		if q.Skip >= len(matched) {
			matched = matched[:0]
		} else {
			matched = matched[q.Skip:]
		}
	}
	if q.Limit > 0 && q.Limit < len(matched) {
		matched = matched[:q.Limit]
	}

	tasks := make([]*domain.Task, 0, len(matched))
	for _, rec := range matched {
		tasks = append(tasks, rec.task)
	}
	return tasks, nil
}

func compareTasks(a, b *domain.Task, field store.TaskSortField) int {
	switch field {
	case store.SortByCreatedAt:
		return a.CreatedAt.Compare(b.CreatedAt)
	case store.SortByUpdatedAt:
		return a.UpdatedAt.Compare(b.UpdatedAt)
	case store.SortByDescription:
		return strings.Compare(a.Description, b.Description)
	case store.SortByCompleted:
		switch {
		case a.Completed == b.Completed:
			return 0
		case b.Completed:
			return -1
		default:
			return 1
		}
	}
	return 0
}

// GetForOwner implements store.TaskStore.GetForOwner.
func (m *MockTaskStore) GetForOwner(ctx context.Context, id, ownerID uuid.UUID) (*domain.Task, error) {
	if m.GetForOwnerFn != nil {
		return m.GetForOwnerFn(ctx, id, ownerID)
	}

	m.db.mu.Lock()
	defer m.db.mu.Unlock()

	rec, ok := m.db.tasks[id]
	if !ok || rec.task.OwnerID != ownerID {
		return nil, store.ErrTaskNotFound
	}
	return copyTask(rec.task), nil
}

// Update implements store.TaskStore.Update.
func (m *MockTaskStore) Update(ctx context.Context, task *domain.Task) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, task)
	}
	if err := task.Validate(); err != nil {
		return err
	}

	m.db.mu.Lock()
	defer m.db.mu.Unlock()

	rec, ok := m.db.tasks[task.ID]
	if !ok || rec.task.OwnerID != task.OwnerID {
		return store.ErrTaskNotFound
	}
	rec.task.Description = task.Description
	rec.task.Completed = task.Completed
	rec.task.UpdatedAt = task.UpdatedAt
	return nil
}

// DeleteForOwner implements store.TaskStore.DeleteForOwner.
func (m *MockTaskStore) DeleteForOwner(ctx context.Context, id, ownerID uuid.UUID) (*domain.Task, error) {
	if m.DeleteForOwnerFn != nil {
		return m.DeleteForOwnerFn(ctx, id, ownerID)
	}

	m.db.mu.Lock()
	defer m.db.mu.Unlock()

	rec, ok := m.db.tasks[id]
	if !ok || rec.task.OwnerID != ownerID {
		return nil, store.ErrTaskNotFound
	}
	delete(m.db.tasks, id)
	return rec.task, nil
}
