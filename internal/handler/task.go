package handler

import (
	"context"
	"database/sql"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/mkravets/projecthub/internal/audit"
	"github.com/mkravets/projecthub/internal/model"
	"github.com/mkravets/projecthub/internal/policy"
	"github.com/mkravets/projecthub/internal/queue"
	"github.com/mkravets/projecthub/internal/repository"
	queue_publisher "github.com/mkravets/projecthub/internal/service"
)

// TaskHandler bundles the repositories behind the task endpoints.
// Creation and update are limited to ADMIN and MANAGER; deletion
// requires ADMIN. The router gates the routes and the handlers
// re-check the role themselves.
type TaskHandler struct {
	Tasks    *repository.TaskRepo
	Projects *repository.ProjectRepo
	Users    *repository.UserRepo
	Audit    *audit.Recorder
	AMQPURL  string
}

func NewTaskHandler(t *repository.TaskRepo, p *repository.ProjectRepo, u *repository.UserRepo, a *audit.Recorder, amqpURL string) *TaskHandler {
	return &TaskHandler{Tasks: t, Projects: p, Users: u, Audit: a, AMQPURL: amqpURL}
}

type taskResp struct {
	ID          uint64    `json:"id"`
	ProjectID   uint64    `json:"project_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	Priority    string    `json:"priority"`
	AssigneeID  *uint64   `json:"assignee_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toTaskResp(t model.Task) taskResp {
	return taskResp{
		ID: t.ID, ProjectID: t.ProjectID, Title: t.Title,
		Description: t.Description, Status: t.Status, Priority: t.Priority,
		AssigneeID: t.AssigneeID, CreatedAt: t.CreatedAt, UpdatedAt: t.UpdatedAt,
	}
}

// Create handles POST /v1/projects/:id/tasks.
func (h *TaskHandler) Create(c echo.Context) error {
	actorID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
	}
	if !policy.CanWriteTask(getRole(c)) {
		return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
	}
	projectID, err := parseIDParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"})
	}
	var req struct {
		Title       string  `json:"title"`
		Description string  `json:"description"`
		Status      string  `json:"status"`
		Priority    string  `json:"priority"`
		AssigneeID  *uint64 `json:"assignee_id"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "title is required"})
	}
	if req.Status == "" {
		req.Status = model.TaskToDo
	}
	if !model.ValidTaskStatus(req.Status) {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "unknown status"})
	}
	if req.Priority == "" {
		req.Priority = model.PriorityMedium
	}
	if !model.ValidPriority(req.Priority) {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "unknown priority"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	project, err := h.Projects.GetByID(ctx, projectID)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "project not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
	}
	var assignee *model.User
	if req.AssigneeID != nil {
		u, err := h.Users.GetByID(ctx, *req.AssigneeID)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "unknown assignee"})
		}
		assignee = &u
	}

	t := model.Task{
		ProjectID: projectID, Title: req.Title, Description: req.Description,
		Status: req.Status, Priority: req.Priority, AssigneeID: req.AssigneeID,
	}

	tx, err := h.Tasks.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := h.Tasks.CreateTx(ctx, tx, &t); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "could not create task"})
	}
	if err := h.Audit.TaskCreated(ctx, tx, actorID, t); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "could not create task"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "could not create task"})
	}
	committed = true

	if assignee != nil && assignee.ID != actorID {
		h.notifyAssignee(ctx, c, *assignee, project.Title, t.Title)
	}
	return c.JSON(http.StatusCreated, toTaskResp(t))
}

// Update handles PUT /v1/tasks/:id. A status change writes exactly one
// activity row encoding the transition as old→new; any other change
// writes one generic update row.
func (h *TaskHandler) Update(c echo.Context) error {
	actorID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
	}
	if !policy.CanWriteTask(getRole(c)) {
		return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"})
	}
	var req struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
		Status      *string `json:"status"`
		Priority    *string `json:"priority"`
		AssigneeID  *uint64 `json:"assignee_id"`
		Unassign    bool    `json:"unassign"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	t, err := h.Tasks.GetByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "task not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
	}
	oldStatus := t.Status
	oldAssignee := t.AssigneeID

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "title is required"})
		}
		t.Title = title
	}
	if req.Description != nil {
		t.Description = *req.Description
	}
	if req.Status != nil {
		if !model.ValidTaskStatus(*req.Status) {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "unknown status"})
		}
		t.Status = *req.Status
	}
	if req.Priority != nil {
		if !model.ValidPriority(*req.Priority) {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "unknown priority"})
		}
		t.Priority = *req.Priority
	}
	var newAssignee *model.User
	if req.Unassign {
		t.AssigneeID = nil
	} else if req.AssigneeID != nil {
		u, err := h.Users.GetByID(ctx, *req.AssigneeID)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "unknown assignee"})
		}
		t.AssigneeID = req.AssigneeID
		newAssignee = &u
	}

	tx, err := h.Tasks.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := h.Tasks.UpdateTx(ctx, tx, &t); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "update failed"})
	}
	if t.Status != oldStatus {
		err = h.Audit.TaskStatusChanged(ctx, tx, actorID, t, oldStatus)
	} else {
		err = h.Audit.TaskUpdated(ctx, tx, actorID, t)
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "update failed"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "update failed"})
	}
	committed = true

	reassigned := newAssignee != nil &&
		(oldAssignee == nil || *oldAssignee != newAssignee.ID) &&
		newAssignee.ID != actorID
	if reassigned {
		project, err := h.Projects.GetByID(ctx, t.ProjectID)
		if err == nil {
			h.notifyAssignee(ctx, c, *newAssignee, project.Title, t.Title)
		}
	}
	return c.JSON(http.StatusOK, toTaskResp(t))
}

// Get handles GET /v1/tasks/:id.
func (h *TaskHandler) Get(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"})
	}
	t, err := h.Tasks.GetByID(c.Request().Context(), id)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "task not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
	}
	return c.JSON(http.StatusOK, toTaskResp(t))
}

// ListByProject handles GET /v1/projects/:id/tasks.
func (h *TaskHandler) ListByProject(c echo.Context) error {
	projectID, err := parseIDParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"})
	}
	ctx := c.Request().Context()
	if ok, err := h.Projects.Exists(ctx, projectID); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
	} else if !ok {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "project not found"})
	}
	items, err := h.Tasks.ListByProject(ctx, projectID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
	}
	out := make([]taskResp, 0, len(items))
	for _, t := range items {
		out = append(out, toTaskResp(t))
	}
	return c.JSON(http.StatusOK, map[string]any{"items": out})
}

// ListMine handles GET /v1/my-tasks.
func (h *TaskHandler) ListMine(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
	}
	items, err := h.Tasks.ListByAssignee(c.Request().Context(), uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
	}
	out := make([]taskResp, 0, len(items))
	for _, t := range items {
		out = append(out, toTaskResp(t))
	}
	return c.JSON(http.StatusOK, map[string]any{"items": out})
}

// Delete handles DELETE /v1/tasks/:id (ADMIN only, enforced by the
// router). The removal itself is recorded before the row disappears.
func (h *TaskHandler) Delete(c echo.Context) error {
	actorID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
	}
	if !policy.CanDeleteTask(getRole(c)) {
		return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	t, err := h.Tasks.GetByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "task not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
	}

	tx, err := h.Tasks.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := h.Tasks.DeleteTx(ctx, tx, id); err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "task not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "delete failed"})
	}
	if err := h.Audit.TaskDeleted(ctx, tx, actorID, t); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "delete failed"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "delete failed"})
	}
	committed = true
	return c.NoContent(http.StatusNoContent)
}

func (h *TaskHandler) notifyAssignee(ctx context.Context, c echo.Context, u model.User, project, task string) {
	_ = queue_publisher.PublishNotification(ctx, h.AMQPURL, queue.NotificationEvent{
		ID:             uuid.NewString(),
		Kind:           queue.KindTaskAssigned,
		RecipientEmail: u.Email,
		RecipientName:  u.Name,
		ActorName:      getUserName(c),
		ProjectTitle:   project,
		TaskTitle:      task,
		CreatedAt:      time.Now().UTC().Format(time.RFC3339),
	})
}
