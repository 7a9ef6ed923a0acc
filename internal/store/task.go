package store

import (
	"context"
	"database/sql"
	"strings"

	"github.com/google/uuid"
	"github.com/phrazzld/taskmanager-api/internal/domain"
)

// TaskSortField names a column tasks can be ordered by.
type TaskSortField string

// Sortable task fields.
const (
	SortByCreatedAt   TaskSortField = "created_at"
	SortByUpdatedAt   TaskSortField = "updated_at"
	SortByDescription TaskSortField = "description"
	SortByCompleted   TaskSortField = "completed"
)

var sortFieldAliases = map[string]TaskSortField{
	"createdAt":   SortByCreatedAt,
	"created_at":  SortByCreatedAt,
	"updatedAt":   SortByUpdatedAt,
	"updated_at":  SortByUpdatedAt,
	"description": SortByDescription,
	"completed":   SortByCompleted,
}

// TaskSort is an ordering applied to a task listing.
type TaskSort struct {
	Field      TaskSortField
	Descending bool
}

// ParseTaskSort parses a "field:direction" expression. The direction "asc"
// sorts ascending and anything else, including no direction, sorts
// descending. ok is false when the field is not sortable.
func ParseTaskSort(expr string) (sort TaskSort, ok bool) {
	name, direction, _ := strings.Cut(expr, ":")
	field, ok := sortFieldAliases[name]
	if !ok {
		return TaskSort{}, false
	}
	return TaskSort{Field: field, Descending: direction != "asc"}, true
}

// TaskQuery selects a page of one owner's tasks.
type TaskQuery struct {
	OwnerID uuid.UUID

	// Completed, when set, restricts the listing to tasks with that flag.
	Completed *bool

	// Sort, when set, orders the listing. Ties and unsorted listings fall back
	// to creation order.
	Sort *TaskSort

	// Limit and Skip page the listing; values <= 0 are not applied.
	Limit int
	Skip  int
}

// TaskStore defines the interface for task data persistence. Every lookup
// is scoped to an owner: a task belonging to another user is reported as
// ErrTaskNotFound.
type TaskStore interface {
	// Create saves a new task.
	// Returns validation errors from the domain Task if data is invalid.
	// Returns ErrInvalidEntity if the owner does not exist.
	Create(ctx context.Context, task *domain.Task) error

	// List returns the tasks matching q. The result is never nil.
	List(ctx context.Context, q TaskQuery) ([]*domain.Task, error)

	// GetForOwner retrieves a task by ID and owner.
	// Returns ErrTaskNotFound if no such task exists.
	GetForOwner(ctx context.Context, id, ownerID uuid.UUID) (*domain.Task, error)

	// Update saves the description, completion flag and update time of an
	// existing task. Returns ErrTaskNotFound if no such task exists for the
	// task's owner.
	Update(ctx context.Context, task *domain.Task) error

	// DeleteForOwner removes a task and returns the removed record.
	// Returns ErrTaskNotFound if no such task exists.
	DeleteForOwner(ctx context.Context, id, ownerID uuid.UUID) (*domain.Task, error)

	// WithTx returns a new TaskStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) TaskStore
}
