package middleware

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/mkravets/projecthub/internal/config"
)

func cacheCtx(e *echo.Echo, target, routePattern string, userID uint64) echo.Context {
	req := httptest.NewRequest("GET", target, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath(routePattern)
	if userID != 0 {
		c.Set(CtxUserID, userID)
	}
	return c
}

func TestCacheKeySeparatesResourceIDs(t *testing.T) {
	e := echo.New()
	cfg := config.CacheConfig{Prefix: "cache", KeyStrategy: "user_path_query"}

	k1 := cacheKeyFrom(cfg, cacheCtx(e, "/v1/projects/1", "/v1/projects/:id", 7))
	k2 := cacheKeyFrom(cfg, cacheCtx(e, "/v1/projects/2", "/v1/projects/:id", 7))
	if k1 == k2 {
		t.Fatalf("distinct project ids share cache key %q", k1)
	}
}

func TestCacheKeySeparatesUsers(t *testing.T) {
	e := echo.New()
	cfg := config.CacheConfig{Prefix: "cache", KeyStrategy: "user_path_query"}

	kA := cacheKeyFrom(cfg, cacheCtx(e, "/v1/my-projects", "/v1/my-projects", 1))
	kB := cacheKeyFrom(cfg, cacheCtx(e, "/v1/my-projects", "/v1/my-projects", 2))
	if kA == kB {
		t.Fatalf("distinct users share cache key %q", kA)
	}
}

func TestCacheKeyStableForSameRequest(t *testing.T) {
	e := echo.New()
	cfg := config.CacheConfig{Prefix: "cache", KeyStrategy: "user_path_query"}

	k1 := cacheKeyFrom(cfg, cacheCtx(e, "/v1/projects?status=Active", "/v1/projects", 7))
	k2 := cacheKeyFrom(cfg, cacheCtx(e, "/v1/projects?status=Active", "/v1/projects", 7))
	if k1 != k2 {
		t.Fatalf("same request produced keys %q and %q", k1, k2)
	}
	if !strings.HasPrefix(k1, "cache:") {
		t.Fatalf("key %q missing prefix", k1)
	}
}

func TestCacheKeyPathStrategyIgnoresUser(t *testing.T) {
	e := echo.New()
	cfg := config.CacheConfig{Prefix: "cache", KeyStrategy: "path"}

	kA := cacheKeyFrom(cfg, cacheCtx(e, "/v1/projects", "/v1/projects", 1))
	kB := cacheKeyFrom(cfg, cacheCtx(e, "/v1/projects", "/v1/projects", 2))
	if kA != kB {
		t.Fatalf("path strategy keyed on user: %q vs %q", kA, kB)
	}
}
