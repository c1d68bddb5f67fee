package router // admin-only routes

import (
	"github.com/labstack/echo/v4"

	"github.com/mkravets/projecthub/internal/handler"
	"github.com/mkravets/projecthub/internal/middleware"
	"github.com/mkravets/projecthub/internal/model"
)

// RegisterAdmin registers the ADMIN-scoped endpoints: user management
// and the global activity feed. All routes require a valid JWT carrying
// the ADMIN role.
func RegisterAdmin(e *echo.Echo, a *handler.AdminHandler, act *handler.ActivityHandler, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdmin),
	)

	// ---- Users ----
	g.GET("/admin/users", a.ListUsers)
	g.PUT("/admin/users/:id/role", a.UpdateRole)
	g.DELETE("/admin/users/:id", a.DeleteUser)

	// ---- Audit ----
	g.GET("/activity", act.ListAll)
}
