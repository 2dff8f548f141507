package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestScopeRequiresHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Scope())
	router.GET("/api/v1/runs", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"scope": ScopeFromContext(c)})
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/runs", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without scope header, got %d", resp.Code)
	}
}

func TestScopeStoredInContext(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Scope())

	var seen string
	router.GET("/api/v1/runs", func(c *gin.Context) {
		seen = ScopeFromContext(c)
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/runs", nil)
	req.Header.Set("X-Scope-Id", "  scope-1  ")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if seen != "scope-1" {
		t.Fatalf("scope not trimmed and stored, got %q", seen)
	}
}

func TestScopeAllowsPreflight(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Scope())
	router.OPTIONS("/api/v1/runs", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/runs", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204 for preflight without scope, got %d", resp.Code)
	}
}
