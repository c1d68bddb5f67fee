package handler

import (
	"context"
	"database/sql"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/mkravets/projecthub/internal/audit"
	"github.com/mkravets/projecthub/internal/model"
	"github.com/mkravets/projecthub/internal/policy"
	"github.com/mkravets/projecthub/internal/repository"
)

// CommentHandler bundles the repositories behind the comment endpoints.
type CommentHandler struct {
	Comments *repository.CommentRepo
	Tasks    *repository.TaskRepo
	Projects *repository.ProjectRepo
	Audit    *audit.Recorder
}

func NewCommentHandler(cm *repository.CommentRepo, t *repository.TaskRepo, p *repository.ProjectRepo, a *audit.Recorder) *CommentHandler {
	return &CommentHandler{Comments: cm, Tasks: t, Projects: p, Audit: a}
}

type commentResp struct {
	ID        uint64    `json:"id"`
	Content   string    `json:"content"`
	TaskID    *uint64   `json:"task_id,omitempty"`
	ProjectID *uint64   `json:"project_id,omitempty"`
	AuthorID  uint64    `json:"author_id"`
	CreatedAt time.Time `json:"created_at"`
}

func toCommentResp(cm model.Comment) commentResp {
	return commentResp{
		ID: cm.ID, Content: cm.Content, TaskID: cm.TaskID,
		ProjectID: cm.ProjectID, AuthorID: cm.AuthorID, CreatedAt: cm.CreatedAt,
	}
}

// Create handles POST /v1/comments. The body must reference exactly
// one of task_id or project_id.
func (h *CommentHandler) Create(c echo.Context) error {
	actorID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
	}
	var req struct {
		Content   string  `json:"content"`
		TaskID    *uint64 `json:"task_id"`
		ProjectID *uint64 `json:"project_id"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	req.Content = strings.TrimSpace(req.Content)
	if req.Content == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "content is required"})
	}
	if err := policy.CheckCommentTarget(req.TaskID, req.ProjectID); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	projectID, status, msg := h.resolveTarget(ctx, req.TaskID, req.ProjectID)
	if status != 0 {
		return c.JSON(status, map[string]string{"error": msg})
	}

	cm := model.Comment{
		Content: req.Content, TaskID: req.TaskID,
		ProjectID: req.ProjectID, AuthorID: actorID,
	}

	tx, err := h.Comments.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := h.Comments.CreateTx(ctx, tx, &cm); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "could not create comment"})
	}
	if err := h.Audit.CommentAdded(ctx, tx, actorID, projectID, cm.Content); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "could not create comment"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "could not create comment"})
	}
	committed = true
	return c.JSON(http.StatusCreated, toCommentResp(cm))
}

// Update handles PUT /v1/comments/:id. Only the author or an admin may
// edit.
func (h *CommentHandler) Update(c echo.Context) error {
	actorID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"})
	}
	var req struct {
		Content string `json:"content"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	req.Content = strings.TrimSpace(req.Content)
	if req.Content == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "content is required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	cm, err := h.Comments.GetByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "comment not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
	}
	if err := policy.CanEditComment(cm, actorID, getRole(c)); err != nil {
		return c.JSON(http.StatusForbidden, map[string]string{"error": err.Error()})
	}

	projectID, status, msg := h.resolveTarget(ctx, cm.TaskID, cm.ProjectID)
	if status != 0 {
		return c.JSON(status, map[string]string{"error": msg})
	}

	tx, err := h.Comments.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := h.Comments.UpdateContentTx(ctx, tx, id, req.Content); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "update failed"})
	}
	if err := h.Audit.CommentUpdated(ctx, tx, actorID, projectID, req.Content); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "update failed"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "update failed"})
	}
	committed = true

	cm.Content = req.Content
	return c.JSON(http.StatusOK, toCommentResp(cm))
}

// Delete handles DELETE /v1/comments/:id. Any authenticated caller may
// remove a comment.
func (h *CommentHandler) Delete(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"})
	}
	if err := h.Comments.Delete(c.Request().Context(), id); err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "comment not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// ListByTask handles GET /v1/tasks/:id/comments.
func (h *CommentHandler) ListByTask(c echo.Context) error {
	taskID, err := parseIDParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"})
	}
	ctx := c.Request().Context()
	if _, err := h.Tasks.GetByID(ctx, taskID); err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "task not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
	}
	items, err := h.Comments.ListByTask(ctx, taskID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
	}
	out := make([]commentResp, 0, len(items))
	for _, cm := range items {
		out = append(out, toCommentResp(cm))
	}
	return c.JSON(http.StatusOK, map[string]any{"items": out})
}

// ListByProject handles GET /v1/projects/:id/comments.
func (h *CommentHandler) ListByProject(c echo.Context) error {
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
	items, err := h.Comments.ListByProject(ctx, projectID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
	}
	out := make([]commentResp, 0, len(items))
	for _, cm := range items {
		out = append(out, toCommentResp(cm))
	}
	return c.JSON(http.StatusOK, map[string]any{"items": out})
}

// resolveTarget maps the comment's target to its project id for audit
// attribution. Returns a non-zero HTTP status and message on failure.
func (h *CommentHandler) resolveTarget(ctx context.Context, taskID, projectID *uint64) (uint64, int, string) {
	if taskID != nil {
		t, err := h.Tasks.GetByID(ctx, *taskID)
		if err != nil {
			if err == sql.ErrNoRows {
				return 0, http.StatusNotFound, "task not found"
			}
			return 0, http.StatusInternalServerError, "db error"
		}
		return t.ProjectID, 0, ""
	}
	ok, err := h.Projects.Exists(ctx, *projectID)
	if err != nil {
		return 0, http.StatusInternalServerError, "db error"
	}
	if !ok {
		return 0, http.StatusNotFound, "project not found"
	}
	return *projectID, 0, ""
}
