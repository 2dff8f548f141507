package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"reconcile-backend/internal/shared/server/respond"
)

const scopeKey = "scope"

// Scope extracts the identity scope from the X-Scope-Id header and stores it
// in the request context. Authentication itself is handled upstream; this
// service only needs the scope boundary for matching and storage.
func Scope() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		scope := strings.TrimSpace(c.GetHeader("X-Scope-Id"))
		if scope == "" {
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "Missing scope identity", nil)
			return
		}

		c.Set(scopeKey, scope)
		c.Next()
	}
}

// ScopeFromContext fetches the scope set by the Scope middleware.
func ScopeFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	val, _ := c.Get(scopeKey)
	if scope, ok := val.(string); ok {
		return scope
	}
	return ""
}
