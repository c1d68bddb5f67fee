package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/mkravets/projecthub/internal/middleware"
)

func newTestContext(t *testing.T) echo.Context {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	return e.NewContext(req, httptest.NewRecorder())
}

func TestGetUserID(t *testing.T) {
	c := newTestContext(t)
	c.Set(middleware.CtxUserID, uint64(12))
	id, err := getUserID(c)
	if err != nil || id != 12 {
		t.Fatalf("got id=%d err=%v", id, err)
	}

	c = newTestContext(t)
	if _, err := getUserID(c); err == nil {
		t.Fatal("expected error with no user in context")
	}
}

func TestParseIDParam(t *testing.T) {
	c := newTestContext(t)
	c.SetParamNames("id")
	c.SetParamValues("37")
	id, err := parseIDParam(c, "id")
	if err != nil || id != 37 {
		t.Fatalf("got id=%d err=%v", id, err)
	}

	c.SetParamValues("abc")
	if _, err := parseIDParam(c, "id"); err == nil {
		t.Fatal("expected error for non-numeric id")
	}
}

func TestHealth(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	if err := Health(e.NewContext(req, rec)); err != nil {
		t.Fatalf("Health: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
