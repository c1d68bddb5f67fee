package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/mkravets/projecthub/internal/model"
	"github.com/mkravets/projecthub/internal/utils"
)

const testSecret = "middleware-test-secret"

func okHandler(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

func doRequest(t *testing.T, mw echo.MiddlewareFunc, authHeader string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	e.GET("/probe", okHandler, mw)
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestJWTAuthValidToken(t *testing.T) {
	at, err := utils.NewAccessToken(testSecret, 9, "Lee", model.RoleManager, 5)
	if err != nil {
		t.Fatalf("NewAccessToken: %v", err)
	}
	rec := doRequest(t, JWTAuth(testSecret), "Bearer "+at.Token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestJWTAuthMissingHeader(t *testing.T) {
	rec := doRequest(t, JWTAuth(testSecret), "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestJWTAuthBadToken(t *testing.T) {
	rec := doRequest(t, JWTAuth(testSecret), "Bearer not-a-token")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestJWTAuthExpiredToken(t *testing.T) {
	at, err := utils.NewAccessToken(testSecret, 9, "Lee", model.RoleManager, -5)
	if err != nil {
		t.Fatalf("NewAccessToken: %v", err)
	}
	rec := doRequest(t, JWTAuth(testSecret), "Bearer "+at.Token)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for expired token, got %d", rec.Code)
	}
}

func TestJWTAuthPopulatesContext(t *testing.T) {
	at, err := utils.NewAccessToken(testSecret, 31, "Mori", model.RoleAdmin, 5)
	if err != nil {
		t.Fatalf("NewAccessToken: %v", err)
	}
	e := echo.New()
	e.GET("/probe", func(c echo.Context) error {
		if id, ok := c.Get(CtxUserID).(uint64); !ok || id != 31 {
			t.Fatalf("user id not in context: %v", c.Get(CtxUserID))
		}
		if role, _ := c.Get(CtxRole).(string); role != model.RoleAdmin {
			t.Fatalf("role not in context: %v", c.Get(CtxRole))
		}
		return c.NoContent(http.StatusOK)
	}, JWTAuth(testSecret))
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("Authorization", "Bearer "+at.Token)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
