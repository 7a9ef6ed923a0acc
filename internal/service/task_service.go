package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/taskmanager-api/internal/domain"
	"github.com/phrazzld/taskmanager-api/internal/platform/logger"
	"github.com/phrazzld/taskmanager-api/internal/redact"
	"github.com/phrazzld/taskmanager-api/internal/store"
)

// TaskService provides task operations scoped to the task owner. A task
// that exists but belongs to someone else is reported as store.ErrTaskNotFound.
type TaskService interface {
	// CreateTask creates a task owned by ownerID.
	CreateTask(ctx context.Context, ownerID uuid.UUID, description string, completed bool) (*domain.Task, error)

	// ListTasks returns the owner's tasks matching q.
	ListTasks(ctx context.Context, q store.TaskQuery) ([]*domain.Task, error)

	// GetTask retrieves one of the owner's tasks.
	GetTask(ctx context.Context, taskID, ownerID uuid.UUID) (*domain.Task, error)

	// UpdateTask applies a partial update to one of the owner's tasks.
	UpdateTask(ctx context.Context, taskID, ownerID uuid.UUID, patch domain.TaskPatch) (*domain.Task, error)

	// DeleteTask removes one of the owner's tasks and returns it.
	DeleteTask(ctx context.Context, taskID, ownerID uuid.UUID) (*domain.Task, error)
}

type taskServiceImpl struct {
	tasks  store.TaskStore
	tx     store.Transactor
	logger *slog.Logger
}

// NewTaskService creates a new TaskService.
// It returns an error if any of the required dependencies are nil.
func NewTaskService(tasks store.TaskStore, tx store.Transactor, logger *slog.Logger) (TaskService, error) {
	if tasks == nil {
		return nil, errors.New("task store cannot be nil")
	}
	if tx == nil {
		return nil, errors.New("transactor cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &taskServiceImpl{
		tasks:  tasks,
		tx:     tx,
		logger: logger.With(slog.String("component", "task_service")),
	}, nil
}

// CreateTask implements TaskService.CreateTask.
func (s *taskServiceImpl) CreateTask(
	ctx context.Context,
	ownerID uuid.UUID,
	description string,
	completed bool,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task, err := domain.NewTask(ownerID, description, completed)
	if err != nil {
		log.Debug("invalid task", slog.String("error", err.Error()))
		return nil, err
	}

	if err := s.tasks.Create(ctx, task); err != nil {
		if errors.Is(err, domain.ErrValidation) {
			return nil, err
		}
		log.Error("failed to create task",
			slog.String("owner_id", ownerID.String()),
			slog.String("error", redact.Error(err)))
		return nil, NewServiceError("create task", "failed to save task", err)
	}

	log.Info("task created",
		slog.String("task_id", task.ID.String()),
		slog.String("owner_id", ownerID.String()))
	return task, nil
}

// ListTasks implements TaskService.ListTasks.
func (s *taskServiceImpl) ListTasks(ctx context.Context, q store.TaskQuery) ([]*domain.Task, error) {
	tasks, err := s.tasks.List(ctx, q)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list tasks",
			slog.String("owner_id", q.OwnerID.String()),
			slog.String("error", redact.Error(err)))
		return nil, NewServiceError("list tasks", "failed to query tasks", err)
	}
	return tasks, nil
}

// GetTask implements TaskService.GetTask.
func (s *taskServiceImpl) GetTask(ctx context.Context, taskID, ownerID uuid.UUID) (*domain.Task, error) {
	task, err := s.tasks.GetForOwner(ctx, taskID, ownerID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, err
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to retrieve task",
			slog.String("task_id", taskID.String()),
			slog.String("error", redact.Error(err)))
		return nil, NewServiceError("get task", "failed to retrieve task", err)
	}
	return task, nil
}

// UpdateTask implements TaskService.UpdateTask.
// The task is read and written in one transaction.
func (s *taskServiceImpl) UpdateTask(
	ctx context.Context,
	taskID, ownerID uuid.UUID,
	patch domain.TaskPatch,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var updated *domain.Task
	err := s.tx.RunInTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		tasks := s.tasks.WithTx(tx)

		task, err := tasks.GetForOwner(ctx, taskID, ownerID)
		if err != nil {
			return err
		}
		if err := patch.Apply(task); err != nil {
			return err
		}
		if err := tasks.Update(ctx, task); err != nil {
			return err
		}
		updated = task
		return nil
	})
	if err != nil {
		if store.IsNotFoundError(err) || errors.Is(err, domain.ErrValidation) {
			log.Debug("task update rejected",
				slog.String("task_id", taskID.String()),
				slog.String("error", err.Error()))
			return nil, err
		}
		log.Error("failed to update task",
			slog.String("task_id", taskID.String()),
			slog.String("error", redact.Error(err)))
		return nil, NewServiceError("update task", "failed to update task", err)
	}

	log.Info("task updated", slog.String("task_id", taskID.String()))
	return updated, nil
}

// DeleteTask implements TaskService.DeleteTask.
func (s *taskServiceImpl) DeleteTask(ctx context.Context, taskID, ownerID uuid.UUID) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task, err := s.tasks.DeleteForOwner(ctx, taskID, ownerID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, err
		}
		log.Error("failed to delete task",
			slog.String("task_id", taskID.String()),
			slog.String("error", redact.Error(err)))
		return nil, NewServiceError("delete task", "failed to delete task", err)
	}

	log.Info("task deleted", slog.String("task_id", taskID.String()))
	return task, nil
}
