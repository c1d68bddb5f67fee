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

// ProjectHandler bundles the repositories behind the project endpoints.
type ProjectHandler struct {
	Projects *repository.ProjectRepo
	Users    *repository.UserRepo
	Audit    *audit.Recorder
	AMQPURL  string
}

func NewProjectHandler(p *repository.ProjectRepo, u *repository.UserRepo, a *audit.Recorder, amqpURL string) *ProjectHandler {
	return &ProjectHandler{Projects: p, Users: u, Audit: a, AMQPURL: amqpURL}
}

type projectReq struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	StartDate   string   `json:"start_date"` // "2006-01-02" or RFC3339
	Deadline    string   `json:"deadline"`
	Status      string   `json:"status"`
	AssigneeIDs []uint64 `json:"assignee_ids"`
}

type projectResp struct {
	ID          uint64    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	StartDate   time.Time `json:"start_date"`
	Deadline    time.Time `json:"deadline"`
	Status      string    `json:"status"`
	CreatorID   uint64    `json:"creator_id"`
	AssigneeIDs []uint64  `json:"assignee_ids,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toProjectResp(p model.Project, assignees []uint64) projectResp {
	return projectResp{
		ID: p.ID, Title: p.Title, Description: p.Description,
		StartDate: p.StartDate, Deadline: p.Deadline, Status: p.Status,
		CreatorID: p.CreatorID, AssigneeIDs: assignees,
		CreatedAt: p.CreatedAt, UpdatedAt: p.UpdatedAt,
	}
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

// Create handles POST /v1/projects (ADMIN, MANAGER). The creator is
// always part of the assignee set, so a fresh project can never
// violate the at-least-one-assignee invariant.
func (h *ProjectHandler) Create(c echo.Context) error {
	actorID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
	}
	var req projectReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "title is required"})
	}
	start, err := parseDate(req.StartDate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid start_date"})
	}
	deadline, err := parseDate(req.Deadline)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid deadline"})
	}
	if err := policy.CheckProjectDates(start, deadline); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	status := req.Status
	if status == "" {
		status = model.ProjectNotStarted
	}
	if !model.ValidProjectStatus(status) {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "unknown status"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	assignees, bad := h.resolveAssignees(ctx, req.AssigneeIDs, actorID)
	if bad != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": *bad})
	}

	p := model.Project{
		Title: req.Title, Description: req.Description,
		StartDate: start, Deadline: deadline,
		Status: status, CreatorID: actorID,
	}

	tx, err := h.Projects.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := h.Projects.CreateTx(ctx, tx, &p, assignees); err != nil {
		if err == repository.ErrTitleExists {
			return c.JSON(http.StatusConflict, map[string]string{"error": "project title already exists"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "could not create project"})
	}
	if err := h.Audit.ProjectCreated(ctx, tx, actorID, p); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "could not create project"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "could not create project"})
	}
	committed = true

	h.notifyAssigned(ctx, c, p, assignees, actorID)
	return c.JSON(http.StatusCreated, toProjectResp(p, assignees))
}

// Update handles PUT /v1/projects/:id (ADMIN, MANAGER). A status
// transition is audited as old→new; other field changes produce a
// generic update entry.
func (h *ProjectHandler) Update(c echo.Context) error {
	actorID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"})
	}
	var req struct {
		Title       *string  `json:"title"`
		Description *string  `json:"description"`
		StartDate   *string  `json:"start_date"`
		Deadline    *string  `json:"deadline"`
		Status      *string  `json:"status"`
		AssigneeIDs []uint64 `json:"assignee_ids"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p, err := h.Projects.GetByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "project not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
	}
	oldStatus := p.Status

	if req.Title != nil {
		t := strings.TrimSpace(*req.Title)
		if t == "" {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "title is required"})
		}
		p.Title = t
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.StartDate != nil {
		t, err := parseDate(*req.StartDate)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid start_date"})
		}
		p.StartDate = t
	}
	if req.Deadline != nil {
		t, err := parseDate(*req.Deadline)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid deadline"})
		}
		p.Deadline = t
	}
	if err := policy.CheckProjectDates(p.StartDate, p.Deadline); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	if req.Status != nil {
		if !model.ValidProjectStatus(*req.Status) {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "unknown status"})
		}
		p.Status = *req.Status
	}

	var newAssignees []uint64
	if req.AssigneeIDs != nil {
		if err := policy.CheckAssignees(req.AssigneeIDs); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		var bad *string
		newAssignees, bad = h.resolveAssignees(ctx, req.AssigneeIDs, 0)
		if bad != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": *bad})
		}
	}

	prevAssignees, err := h.Projects.Assignees(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
	}

	tx, err := h.Projects.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := h.Projects.UpdateTx(ctx, tx, &p); err != nil {
		if err == repository.ErrTitleExists {
			return c.JSON(http.StatusConflict, map[string]string{"error": "project title already exists"})
		}
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "project not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "update failed"})
	}
	if newAssignees != nil {
		if err := h.Projects.ReplaceAssigneesTx(ctx, tx, id, newAssignees); err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "update failed"})
		}
	}
	if p.Status != oldStatus {
		err = h.Audit.ProjectStatusChanged(ctx, tx, actorID, p, oldStatus)
	} else {
		err = h.Audit.ProjectUpdated(ctx, tx, actorID, p)
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "update failed"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "update failed"})
	}
	committed = true

	if newAssignees != nil {
		h.notifyAssigned(ctx, c, p, diffIDs(newAssignees, prevAssignees), actorID)
	}
	out := newAssignees
	if out == nil {
		out = prevAssignees
	}
	return c.JSON(http.StatusOK, toProjectResp(p, out))
}

// List handles GET /v1/projects.
func (h *ProjectHandler) List(c echo.Context) error {
	items, err := h.Projects.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
	}
	out := make([]projectResp, 0, len(items))
	for _, p := range items {
		out = append(out, toProjectResp(p, nil))
	}
	return c.JSON(http.StatusOK, map[string]any{"items": out})
}

// ListMine handles GET /v1/my-projects: projects the caller created or
// is assigned to.
func (h *ProjectHandler) ListMine(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
	}
	items, err := h.Projects.ListForUser(c.Request().Context(), uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
	}
	out := make([]projectResp, 0, len(items))
	for _, p := range items {
		out = append(out, toProjectResp(p, nil))
	}
	return c.JSON(http.StatusOK, map[string]any{"items": out})
}

// Get handles GET /v1/projects/:id.
func (h *ProjectHandler) Get(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"})
	}
	ctx := c.Request().Context()
	p, err := h.Projects.GetByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "project not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
	}
	assignees, err := h.Projects.Assignees(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
	}
	return c.JSON(http.StatusOK, toProjectResp(p, assignees))
}

// Delete handles DELETE /v1/projects/:id. Open to any authenticated
// caller; tasks, comments and the audit trail cascade away with the
// project.
func (h *ProjectHandler) Delete(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"})
	}
	if err := h.Projects.Delete(c.Request().Context(), id); err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "project not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// resolveAssignees validates the requested assignee ids and folds in
// the creator when given. Returns an error message for unknown ids.
func (h *ProjectHandler) resolveAssignees(ctx context.Context, ids []uint64, creatorID uint64) ([]uint64, *string) {
	seen := map[uint64]bool{}
	var out []uint64
	if creatorID != 0 {
		seen[creatorID] = true
		out = append(out, creatorID)
	}
	for _, id := range ids {
		if seen[id] {
			continue
		}
		if _, err := h.Users.GetByID(ctx, id); err != nil {
			msg := "unknown assignee"
			return nil, &msg
		}
		seen[id] = true
		out = append(out, id)
	}
	return out, nil
}

// notifyAssigned publishes best-effort project.assigned events for
// everyone except the actor. Publish errors are already logged by the
// publisher and deliberately ignored here.
func (h *ProjectHandler) notifyAssigned(ctx context.Context, c echo.Context, p model.Project, userIDs []uint64, actorID uint64) {
	for _, uid := range userIDs {
		if uid == actorID {
			continue
		}
		u, err := h.Users.GetByID(ctx, uid)
		if err != nil {
			continue
		}
		_ = queue_publisher.PublishNotification(ctx, h.AMQPURL, queue.NotificationEvent{
			ID:             uuid.NewString(),
			Kind:           queue.KindProjectAssigned,
			RecipientEmail: u.Email,
			RecipientName:  u.Name,
			ActorName:      getUserName(c),
			ProjectTitle:   p.Title,
			CreatedAt:      time.Now().UTC().Format(time.RFC3339),
		})
	}
}

// diffIDs returns the ids present in next but not in prev.
func diffIDs(next, prev []uint64) []uint64 {
	old := make(map[uint64]bool, len(prev))
	for _, id := range prev {
		old[id] = true
	}
	var out []uint64
	for _, id := range next {
		if !old[id] {
			out = append(out, id)
		}
	}
	return out
}
