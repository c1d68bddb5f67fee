package middleware // contains reusable HTTP middleware functions

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/mkravets/projecthub/internal/utils"
)

// Context keys populated by JWTAuth for downstream handlers.
const (
	CtxUserID   = "user_id"
	CtxUserName = "user_name"
	CtxRole     = "role"
)

// JWTAuth returns an Echo middleware that validates a Bearer access
// token and injects the subject, name and role claims into the request
// context. The provided secret must match the one used when issuing
// tokens. Handlers behind this middleware read the caller's identity
// via c.Get(CtxUserID) and c.Get(CtxRole); the identity always comes
// from the verified token, never from the request payload.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "missing bearer token"})
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			claims, err := utils.ParseAccess(secret, raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid token"})
			}

			c.Set(CtxUserID, claims.UserID)
			c.Set(CtxUserName, claims.Name)
			c.Set(CtxRole, claims.Role)
			return next(c)
		}
	}
}
