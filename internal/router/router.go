package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/mkravets/projecthub/internal/handler"
	"github.com/mkravets/projecthub/internal/middleware"
	"github.com/mkravets/projecthub/internal/model"
)

// RegisterRoutes registers routes that do not require authentication on
// the provided Echo instance. Currently it exposes only a health check
// used by load balancers and monitoring to verify the service is up.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the authentication and password-recovery
// endpoints. Unauthenticated operations live under /v1/auth and
// /v1/password; protected session endpoints live under /v1. The limit
// middleware throttles the credential-bearing routes so they cannot be
// brute-forced.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, pw *handler.PasswordHandler, jwtSecret string, limit echo.MiddlewareFunc) {
	// Operations that do not require an existing session. Each handler
	// issues or exchanges tokens itself.
	g := e.Group("/v1/auth", limit)
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	// Refresh rotates the refresh token: the presented one is consumed
	// and a brand new pair is returned.
	g.POST("/refresh", a.Refresh)
	// Logout takes the refresh token in the body and invalidates it, so
	// it does not need a valid access token.
	g.POST("/logout", a.Logout)

	// Password recovery is likewise unauthenticated. Forgot always
	// answers the same generic message regardless of whether the email
	// exists.
	p := e.Group("/v1/password", limit)
	p.POST("/forgot", pw.Forgot)
	p.POST("/reset", pw.Reset)

	// Routes below require a valid access token. RequireRole rejects
	// requests whose token carries a missing or unknown role.
	auth := e.Group("/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdmin, model.RoleManager, model.RoleDeveloper),
	)
	auth.GET("/me", a.Me)
}
