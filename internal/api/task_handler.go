package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/taskmanager-api/internal/api/shared"
	"github.com/phrazzld/taskmanager-api/internal/domain"
	"github.com/phrazzld/taskmanager-api/internal/platform/logger"
	"github.com/phrazzld/taskmanager-api/internal/service"
)

// TaskHandler handles task-related HTTP requests. Every operation is scoped
// to the authenticated user's own tasks.
type TaskHandler struct {
	tasks  service.TaskService
	logger *slog.Logger
}

// NewTaskHandler creates a new TaskHandler
func NewTaskHandler(tasks service.TaskService, logger *slog.Logger) *TaskHandler {
	if tasks == nil {
		panic("task service cannot be nil for TaskHandler")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskHandler{
		tasks:  tasks,
		logger: logger.With(slog.String("component", "task_handler")),
	}
}

// CreateTask handles POST /tasks.
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	session, ok := requireSession(w, r)
	if !ok {
		return
	}

	var req CreateTaskRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	task, err := h.tasks.CreateTask(r.Context(), session.User.ID, req.Description, req.Completed)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create task")
		return
	}

	logger.FromContextOrDefault(r.Context(), h.logger).Debug("task created",
		slog.String("task_id", task.ID.String()))
	shared.RespondWithJSON(w, r, http.StatusCreated, taskToResponse(task))
}

// ListTasks handles GET /tasks?completed=&sortBy=&limit=&skip=.
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	session, ok := requireSession(w, r)
	if !ok {
		return
	}

	tasks, err := h.tasks.ListTasks(r.Context(), parseTaskQuery(session.User.ID, r.URL.Query()))
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list tasks")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, tasksToResponse(tasks))
}

// GetTask handles GET /tasks/{id}.
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	session, ok := requireSession(w, r)
	if !ok {
		return
	}
	taskID, ok := getPathUUID(r, "id")
	if !ok {
		shared.RespondWithError(w, r, http.StatusNotFound, MsgTaskNotFound)
		return
	}

	task, err := h.tasks.GetTask(r.Context(), taskID, session.User.ID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get task")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(task))
}

// UpdateTask handles PATCH /tasks/{id}. Only description and completed may
// be changed; a body naming any other field is rejected without applying
// anything.
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	session, ok := requireSession(w, r)
	if !ok {
		return
	}

	var req UpdateTaskRequest
	keys, err := shared.DecodeJSONObject(w, r, &req)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	if err := domain.ValidateUpdateFields(keys, domain.TaskUpdatableFields); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	taskID, ok := getPathUUID(r, "id")
	if !ok {
		shared.RespondWithError(w, r, http.StatusNotFound, MsgTaskNotFound)
		return
	}

	task, err := h.tasks.UpdateTask(r.Context(), taskID, session.User.ID, req.patch())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update task")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(task))
}

// DeleteTask handles DELETE /tasks/{id} and responds with the removed task.
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	session, ok := requireSession(w, r)
	if !ok {
		return
	}
	taskID, ok := getPathUUID(r, "id")
	if !ok {
		shared.RespondWithError(w, r, http.StatusNotFound, MsgTaskNotFound)
		return
	}

	task, err := h.tasks.DeleteTask(r.Context(), taskID, session.User.ID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to delete task")
		return
	}

	logger.FromContextOrDefault(r.Context(), h.logger).Debug("task deleted",
		slog.String("task_id", task.ID.String()))
	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(task))
}
