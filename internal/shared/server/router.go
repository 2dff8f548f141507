package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"reconcile-backend/internal/citations"
	"reconcile-backend/internal/documents"
	"reconcile-backend/internal/runs"
	"reconcile-backend/internal/shared/config"
	"reconcile-backend/internal/shared/metrics"
	"reconcile-backend/internal/shared/server/middleware"
	"reconcile-backend/internal/shared/server/respond"
)

// RouterDeps carries the handlers the router mounts. Bootstrap builds them.
type RouterDeps struct {
	Config          config.Config
	DocumentHandler *documents.Handler
	RunHandler      *runs.Handler
	CitationHandler *citations.Handler
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
	)

	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{"ok": true})
	})

	scoped := api.Group("")
	scoped.Use(middleware.Scope())
	if deps.DocumentHandler != nil {
		deps.DocumentHandler.RegisterRoutes(scoped)
	}
	if deps.RunHandler != nil {
		deps.RunHandler.RegisterRoutes(scoped)
	}
	if deps.CitationHandler != nil {
		deps.CitationHandler.RegisterRoutes(scoped)
	}

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
