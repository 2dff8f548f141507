package runs

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"reconcile-backend/internal/documents"
	"reconcile-backend/internal/shared/server/middleware"
	"reconcile-backend/internal/shared/server/respond"
)

// Handler exposes the run lifecycle endpoints.
type Handler struct {
	Service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{Service: service}
}

// RegisterRoutes mounts the run lifecycle endpoints on the given group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/documents/:id/reconcile", h.Submit)
	rg.GET("/runs", h.List)
	rg.GET("/runs/:id", h.Get)
	rg.POST("/runs/:id/resume", h.Resume)
	rg.POST("/runs/:id/cancel", h.Cancel)
}

// Submit handles POST /documents/:id/reconcile.
func (h *Handler) Submit(c *gin.Context) {
	scope := middleware.ScopeFromContext(c)
	documentID := strings.TrimSpace(c.Param("id"))

	ctx := WithRequestID(c.Request.Context(), middleware.RequestIDFromContext(c))
	run, err := h.Service.Submit(ctx, scope, documentID)
	if err != nil {
		switch {
		case errors.Is(err, documents.ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "Document not found", nil)
		case errors.Is(err, ErrDuplicateRun):
			respond.Error(c, http.StatusConflict, "duplicate_run", "An active run already exists for this document", nil)
		case errors.Is(err, ErrConcurrentRun):
			respond.Error(c, http.StatusConflict, "concurrent_run", "Another submission for this document is in flight", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "Failed to submit run", nil)
		}
		return
	}

	respond.JSON(c, http.StatusAccepted, gin.H{
		"runId": run.ID,
		"state": run.State,
	})
}

// Get handles GET /runs/:id.
func (h *Handler) Get(c *gin.Context) {
	scope := middleware.ScopeFromContext(c)
	runID := strings.TrimSpace(c.Param("id"))

	run, err := h.Service.GetRun(c.Request.Context(), scope, runID)
	if err != nil {
		if errors.Is(err, ErrRunNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "Run not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "Failed to load run", nil)
		return
	}
	respond.JSON(c, http.StatusOK, run)
}

// List handles GET /runs.
func (h *Handler) List(c *gin.Context) {
	scope := middleware.ScopeFromContext(c)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	listed, err := h.Service.List(c.Request.Context(), scope, limit, offset)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "Failed to list runs", nil)
		return
	}
	if listed == nil {
		listed = []Run{}
	}
	respond.JSON(c, http.StatusOK, gin.H{"runs": listed})
}

// Resume handles POST /runs/:id/resume.
func (h *Handler) Resume(c *gin.Context) {
	scope := middleware.ScopeFromContext(c)
	runID := strings.TrimSpace(c.Param("id"))

	decision, err := ParseDecision(c.Request.Body)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		return
	}

	ctx := WithRequestID(c.Request.Context(), middleware.RequestIDFromContext(c))
	run, err := h.Service.Resume(ctx, scope, runID, decision)
	if err != nil {
		switch {
		case errors.Is(err, ErrRunNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "Run not found", nil)
		case errors.Is(err, ErrInvalidState):
			respond.Error(c, http.StatusConflict, "invalid_state", "Run is not awaiting review", nil)
		case errors.Is(err, ErrConcurrentRun):
			respond.Error(c, http.StatusConflict, "concurrent_run", "Another operation on this run is in flight", nil)
		case strings.Contains(err.Error(), "decision"):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "Failed to resume run", nil)
		}
		return
	}
	respond.JSON(c, http.StatusOK, run)
}

// Cancel handles POST /runs/:id/cancel.
func (h *Handler) Cancel(c *gin.Context) {
	scope := middleware.ScopeFromContext(c)
	runID := strings.TrimSpace(c.Param("id"))

	ctx := WithRequestID(c.Request.Context(), middleware.RequestIDFromContext(c))
	run, err := h.Service.Cancel(ctx, scope, runID)
	if err != nil {
		switch {
		case errors.Is(err, ErrRunNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "Run not found", nil)
		case errors.Is(err, ErrInvalidState):
			respond.Error(c, http.StatusConflict, "invalid_state", "Run is not awaiting review", nil)
		case errors.Is(err, ErrConcurrentRun):
			respond.Error(c, http.StatusConflict, "concurrent_run", "Another operation on this run is in flight", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "Failed to cancel run", nil)
		}
		return
	}
	respond.JSON(c, http.StatusOK, run)
}
