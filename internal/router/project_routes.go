package router // project, task and comment routes

import (
	"github.com/labstack/echo/v4"

	"github.com/mkravets/projecthub/internal/handler"
	"github.com/mkravets/projecthub/internal/middleware"
	"github.com/mkravets/projecthub/internal/model"
)

// RegisterProjects registers the project, task, comment and activity
// endpoints under /v1. Browse endpoints are open to every role; the
// cache middleware sits on them so repeated listings are served from
// Redis. Mutations on projects and tasks are restricted to admins and
// managers, and task deletion to admins alone.
func RegisterProjects(e *echo.Echo, p *handler.ProjectHandler, t *handler.TaskHandler, cm *handler.CommentHandler, act *handler.ActivityHandler, jwtSecret string, cache echo.MiddlewareFunc) {
	auth := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdmin, model.RoleManager, model.RoleDeveloper),
	)

	// ---- Browse (all roles) ----
	browse := auth.Group("", cache)
	browse.GET("/projects", p.List)
	browse.GET("/projects/:id", p.Get)
	browse.GET("/my-projects", p.ListMine)
	browse.GET("/projects/:id/tasks", t.ListByProject)
	browse.GET("/tasks/:id", t.Get)
	browse.GET("/my-tasks", t.ListMine)
	browse.GET("/tasks/:id/comments", cm.ListByTask)
	browse.GET("/projects/:id/comments", cm.ListByProject)
	browse.GET("/projects/:id/activity", act.ListByProject)

	// ---- Comments (all roles) ----
	auth.POST("/comments", cm.Create)
	auth.PUT("/comments/:id", cm.Update)
	auth.DELETE("/comments/:id", cm.Delete)

	// Project deletion is open to every role; the FK cascade takes the
	// tasks, comments and activity trail with it.
	auth.DELETE("/projects/:id", p.Delete)

	// ---- Project and task mutations (admin + manager) ----
	manage := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdmin, model.RoleManager),
	)
	manage.POST("/projects", p.Create)
	manage.PUT("/projects/:id", p.Update)
	manage.POST("/projects/:id/tasks", t.Create)
	manage.PUT("/tasks/:id", t.Update)

	// ---- Task deletion (admin only) ----
	admin := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdmin),
	)
	admin.DELETE("/tasks/:id", t.Delete)
}
