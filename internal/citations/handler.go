package citations

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"reconcile-backend/internal/shared/server/respond"
)

// Handler exposes read access to the citation ledger.
type Handler struct {
	Ledger Ledger
}

func NewHandler(ledger Ledger) *Handler {
	return &Handler{Ledger: ledger}
}

// RegisterRoutes mounts the citation endpoints on the given group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/records/:id/citations", h.ListByRecord)
	rg.GET("/documents/:id/citations", h.ListByDocument)
}

// ListByRecord handles GET /records/:id/citations.
func (h *Handler) ListByRecord(c *gin.Context) {
	recordID := strings.TrimSpace(c.Param("id"))
	if recordID == "" {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "Record id is required", nil)
		return
	}

	rows, err := h.Ledger.ListByRecord(c.Request.Context(), recordID)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "Failed to list citations", nil)
		return
	}
	if rows == nil {
		rows = []Citation{}
	}
	respond.JSON(c, http.StatusOK, gin.H{"citations": rows})
}

// ListByDocument handles GET /documents/:id/citations. The path parameter
// is the document fingerprint, which is what citations are keyed by.
func (h *Handler) ListByDocument(c *gin.Context) {
	fingerprint := strings.TrimSpace(c.Param("id"))
	if fingerprint == "" {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "Document fingerprint is required", nil)
		return
	}

	rows, err := h.Ledger.ListByDocument(c.Request.Context(), fingerprint)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "Failed to list citations", nil)
		return
	}
	if rows == nil {
		rows = []Citation{}
	}
	respond.JSON(c, http.StatusOK, gin.H{"citations": rows})
}
