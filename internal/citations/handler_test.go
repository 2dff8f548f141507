package citations

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"reconcile-backend/internal/roles"
)

func setupCitationRouter(t *testing.T) (*gin.Engine, *MemoryLedger) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ledger := NewMemoryLedger()
	handler := NewHandler(ledger)

	router := gin.New()
	router.GET("/api/v1/records/:id/citations", handler.ListByRecord)
	router.GET("/api/v1/documents/:id/citations", handler.ListByDocument)
	return router, ledger
}

func TestListByRecordEndpoint(t *testing.T) {
	router, ledger := setupCitationRouter(t)

	err := ledger.Record(context.Background(), Citation{
		Fingerprint:   "fp-1",
		Span:          roles.SourceSpan{PageNumber: 1, Paragraph: 2},
		Field:         roles.FieldCompany,
		ExtractedText: "Acme Corp",
		RecordID:      "rec-1",
		CreatedAt:     time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("seed citation: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/records/rec-1/citations", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}

	var body struct {
		Citations []Citation `json:"citations"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(body.Citations) != 1 {
		t.Fatalf("expected 1 citation, got %d", len(body.Citations))
	}
	if body.Citations[0].ExtractedText != "Acme Corp" {
		t.Fatalf("unexpected citation: %+v", body.Citations[0])
	}
}

func TestListByRecordEmptyResult(t *testing.T) {
	router, _ := setupCitationRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/records/rec-none/citations", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	var body struct {
		Citations []Citation `json:"citations"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Citations == nil || len(body.Citations) != 0 {
		t.Fatalf("expected empty array, got %+v", body.Citations)
	}
}

func TestListByDocumentEndpoint(t *testing.T) {
	router, ledger := setupCitationRouter(t)

	for _, field := range []string{roles.FieldCompany, roles.FieldTitle} {
		err := ledger.Record(context.Background(), Citation{
			Fingerprint:   "fp-9",
			Span:          roles.SourceSpan{PageNumber: 1, Paragraph: 1},
			Field:         field,
			ExtractedText: "value",
		})
		if err != nil {
			t.Fatalf("seed citation: %v", err)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/documents/fp-9/citations", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	var body struct {
		Citations []Citation `json:"citations"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(body.Citations) != 2 {
		t.Fatalf("expected 2 citations, got %d", len(body.Citations))
	}
}
