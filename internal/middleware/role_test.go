package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/mkravets/projecthub/internal/model"
)

func requestWithRole(t *testing.T, role string, allowed ...string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	seed := func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if role != "" {
				c.Set(CtxRole, role)
			}
			return next(c)
		}
	}
	e.GET("/probe", okHandler, seed, RequireRole(allowed...))
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRequireRoleAllows(t *testing.T) {
	rec := requestWithRole(t, model.RoleManager, model.RoleAdmin, model.RoleManager)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRequireRoleRejectsOther(t *testing.T) {
	rec := requestWithRole(t, model.RoleDeveloper, model.RoleAdmin, model.RoleManager)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestRequireRoleRejectsMissing(t *testing.T) {
	rec := requestWithRole(t, "", model.RoleAdmin)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 when no role set, got %d", rec.Code)
	}
}
