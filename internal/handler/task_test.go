package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/mkravets/projecthub/internal/middleware"
	"github.com/mkravets/projecthub/internal/model"
)

func taskCtx(method, target, role string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(`{}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(middleware.CtxUserID, uint64(4))
	c.Set(middleware.CtxRole, role)
	return c, rec
}

// The role checks fire before any repository access, so a nil-repo
// handler is enough to verify them.
func TestTaskWriteForbiddenForDeveloper(t *testing.T) {
	h := NewTaskHandler(nil, nil, nil, nil, "")

	c, rec := taskCtx(http.MethodPost, "/v1/projects/1/tasks", model.RoleDeveloper)
	if err := h.Create(c); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if rec.Code != http.StatusForbidden {
		t.Fatalf("Create: got status %d, want %d", rec.Code, http.StatusForbidden)
	}

	c, rec = taskCtx(http.MethodPut, "/v1/tasks/1", model.RoleDeveloper)
	if err := h.Update(c); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if rec.Code != http.StatusForbidden {
		t.Fatalf("Update: got status %d, want %d", rec.Code, http.StatusForbidden)
	}
}

func TestTaskDeleteForbiddenBelowAdmin(t *testing.T) {
	h := NewTaskHandler(nil, nil, nil, nil, "")

	for _, role := range []string{model.RoleManager, model.RoleDeveloper} {
		c, rec := taskCtx(http.MethodDelete, "/v1/tasks/1", role)
		if err := h.Delete(c); err != nil {
			t.Fatalf("role %s: Delete returned error: %v", role, err)
		}
		if rec.Code != http.StatusForbidden {
			t.Fatalf("role %s: got status %d, want %d", role, rec.Code, http.StatusForbidden)
		}
	}
}
