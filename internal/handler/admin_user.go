package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/mkravets/projecthub/internal/model"
	"github.com/mkravets/projecthub/internal/policy"
	"github.com/mkravets/projecthub/internal/repository"
)

// AdminHandler serves the admin-only user management endpoints.
type AdminHandler struct {
	Users  *repository.UserRepo
	Tokens *repository.TokenRepo
}

func NewAdminHandler(u *repository.UserRepo, t *repository.TokenRepo) *AdminHandler {
	return &AdminHandler{Users: u, Tokens: t}
}

type adminUserResp struct {
	ID        uint64    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// ListUsers handles GET /v1/admin/users. Password hashes never leave
// the repository layer.
func (h *AdminHandler) ListUsers(c echo.Context) error {
	users, err := h.Users.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
	}
	out := make([]adminUserResp, 0, len(users))
	for _, u := range users {
		out = append(out, adminUserResp{
			ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role, CreatedAt: u.CreatedAt,
		})
	}
	return c.JSON(http.StatusOK, map[string]any{"items": out})
}

// UpdateRole handles PUT /v1/admin/users/:id/role. Demoting the last
// remaining admin is rejected, and a successful change revokes the
// target's refresh tokens so stale role claims cannot be renewed.
func (h *AdminHandler) UpdateRole(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"})
	}
	var req struct {
		Role string `json:"role"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if !model.ValidRole(req.Role) {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "unknown role"})
	}

	ctx := c.Request().Context()
	target, err := h.Users.GetByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
	}
	if target.Role == req.Role {
		return c.JSON(http.StatusOK, map[string]string{"message": "role unchanged"})
	}

	adminCount, err := h.Users.CountByRole(ctx, model.RoleAdmin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
	}
	if err := policy.CanChangeRole(target, req.Role, adminCount); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	if err := h.Users.UpdateRole(ctx, id, req.Role); err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "update failed"})
	}
	if err := h.Tokens.RevokeAllForUser(ctx, id); err != nil {
		c.Logger().Errorf("revoke refresh tokens for user %d: %v", id, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "role updated"})
}

// DeleteUser handles DELETE /v1/admin/users/:id. A user with remaining
// work, or the last admin, cannot be removed; the response lists every
// blocking reason.
func (h *AdminHandler) DeleteUser(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"})
	}

	ctx := c.Request().Context()
	target, err := h.Users.GetByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
	}

	adminCount, err := h.Users.CountByRole(ctx, model.RoleAdmin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
	}
	refs, err := h.Users.WorkRefs(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
	}
	if err := policy.CanDeleteUser(target, adminCount, refs.CreatedProjects, refs.AssignedProjects, refs.AssignedTasks); err != nil {
		var blocked *policy.UserBlockedError
		if errors.As(err, &blocked) {
			return c.JSON(http.StatusBadRequest, map[string]any{
				"error":   "user still has work",
				"reasons": blocked.Reasons,
			})
		}
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	if err := h.Tokens.RevokeAllForUser(ctx, id); err != nil {
		c.Logger().Errorf("revoke refresh tokens for user %d: %v", id, err)
	}
	if err := h.Users.Delete(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
