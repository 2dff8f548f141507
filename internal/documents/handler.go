package documents

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"reconcile-backend/internal/shared/server/middleware"
	"reconcile-backend/internal/shared/server/respond"
)

// Handler exposes document upload and lookup endpoints.
type Handler struct {
	Service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{Service: service}
}

// RegisterRoutes mounts the document endpoints on the given group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/documents", h.Upload)
	rg.GET("/documents", h.List)
	rg.GET("/documents/:id", h.Get)
}

type documentResponse struct {
	ID          string    `json:"id"`
	FileName    string    `json:"fileName"`
	MimeType    string    `json:"mimeType"`
	SizeBytes   int64     `json:"sizeBytes"`
	Fingerprint string    `json:"fingerprint"`
	CreatedAt   time.Time `json:"createdAt"`
}

func toResponse(doc Document) documentResponse {
	return documentResponse{
		ID:          doc.ID,
		FileName:    doc.FileName,
		MimeType:    doc.MimeType,
		SizeBytes:   doc.SizeBytes,
		Fingerprint: doc.Fingerprint,
		CreatedAt:   doc.CreatedAt,
	}
}

// Upload handles POST /documents (multipart form, field "file").
func (h *Handler) Upload(c *gin.Context) {
	scope := middleware.ScopeFromContext(c)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "A file upload is required", nil)
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "Could not read uploaded file", nil)
		return
	}
	defer f.Close()

	doc, err := h.Service.Upload(c.Request.Context(), scope, fileHeader.Filename, f)
	if err != nil {
		switch {
		case errors.Is(err, ErrTooLarge):
			respond.Error(c, http.StatusRequestEntityTooLarge, "validation_error", "Document exceeds the size limit", nil)
		case errors.Is(err, ErrUnsupportedType):
			respond.Error(c, http.StatusBadRequest, "validation_error", "Only PDF and DOCX documents are supported", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "Failed to store document", nil)
		}
		return
	}

	respond.JSON(c, http.StatusCreated, toResponse(doc))
}

// Get handles GET /documents/:id.
func (h *Handler) Get(c *gin.Context) {
	scope := middleware.ScopeFromContext(c)
	documentID := strings.TrimSpace(c.Param("id"))

	doc, err := h.Service.Repo.GetByID(c.Request.Context(), scope, documentID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "Document not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "Failed to load document", nil)
		return
	}
	respond.JSON(c, http.StatusOK, toResponse(doc))
}

// List handles GET /documents.
func (h *Handler) List(c *gin.Context) {
	scope := middleware.ScopeFromContext(c)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	docs, err := h.Service.Repo.ListByScope(c.Request.Context(), scope, limit, offset)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "Failed to list documents", nil)
		return
	}

	out := make([]documentResponse, 0, len(docs))
	for _, doc := range docs {
		out = append(out, toResponse(doc))
	}
	respond.JSON(c, http.StatusOK, gin.H{"documents": out})
}
