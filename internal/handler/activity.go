package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/mkravets/projecthub/internal/model"
	"github.com/mkravets/projecthub/internal/repository"
)

// ActivityHandler serves read-only audit trails.
type ActivityHandler struct {
	Activity *repository.ActivityRepo
	Projects *repository.ProjectRepo
}

func NewActivityHandler(a *repository.ActivityRepo, p *repository.ProjectRepo) *ActivityHandler {
	return &ActivityHandler{Activity: a, Projects: p}
}

type activityResp struct {
	ID             uint64    `json:"id"`
	Action         string    `json:"action"`
	ActorID        uint64    `json:"actor_id"`
	ProjectID      uint64    `json:"project_id"`
	TaskTitle      *string   `json:"task_title,omitempty"`
	TaskStatus     *string   `json:"task_status,omitempty"`
	CommentSnippet *string   `json:"comment_snippet,omitempty"`
	ProjectStatus  *string   `json:"project_status,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

func toActivityResp(l model.ActivityLog) activityResp {
	return activityResp{
		ID: l.ID, Action: l.Action, ActorID: l.ActorID, ProjectID: l.ProjectID,
		TaskTitle: l.TaskTitle, TaskStatus: l.TaskStatus,
		CommentSnippet: l.CommentSnippet, ProjectStatus: l.ProjectStatus,
		CreatedAt: l.CreatedAt,
	}
}

// ListByProject handles GET /v1/projects/:id/activity, newest first.
func (h *ActivityHandler) ListByProject(c echo.Context) error {
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
	items, err := h.Activity.ListByProject(ctx, projectID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
	}
	out := make([]activityResp, 0, len(items))
	for _, l := range items {
		out = append(out, toActivityResp(l))
	}
	return c.JSON(http.StatusOK, map[string]any{"items": out})
}

// ListAll handles GET /v1/activity, the admin-only global feed.
func (h *ActivityHandler) ListAll(c echo.Context) error {
	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid limit"})
		}
		limit = n
	}
	items, err := h.Activity.ListAll(c.Request().Context(), limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
	}
	out := make([]activityResp, 0, len(items))
	for _, l := range items {
		out = append(out, toActivityResp(l))
	}
	return c.JSON(http.StatusOK, map[string]any{"items": out})
}
