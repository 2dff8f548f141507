package citations

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"reconcile-backend/internal/roles"
)

func TestPGLedgerRecordUsesConflictSkip(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	ledger := &PGLedger{DB: db}
	citation := Citation{
		Fingerprint:   "fp-1",
		Span:          roles.SourceSpan{PageNumber: 3, Paragraph: 2},
		Field:         roles.FieldTitle,
		ExtractedText: "Senior Software Engineer",
		RecordID:      "rec-1",
		CreatedAt:     time.Now().UTC(),
	}
	wantID := DeterministicID(citation.Fingerprint, citation.Span, citation.Field)

	mock.ExpectExec("INSERT INTO citations").
		WithArgs(
			wantID,
			citation.Fingerprint,
			citation.Span.PageNumber,
			citation.Span.Paragraph,
			citation.Span.LocationNote,
			citation.Field,
			citation.ExtractedText,
			citation.RecordID,
			citation.CreatedAt,
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := ledger.Record(context.Background(), citation); err != nil {
		t.Fatalf("Record: %v", err)
	}

	// Re-recording hits the conflict path; zero rows affected is still success.
	mock.ExpectExec("INSERT INTO citations").
		WithArgs(
			wantID,
			citation.Fingerprint,
			citation.Span.PageNumber,
			citation.Span.Paragraph,
			citation.Span.LocationNote,
			citation.Field,
			citation.ExtractedText,
			citation.RecordID,
			citation.CreatedAt,
		).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := ledger.Record(context.Background(), citation); err != nil {
		t.Fatalf("Record repeat: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGLedgerListByRecord(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	ledger := &PGLedger{DB: db}
	now := time.Now().UTC()

	rows := sqlmock.NewRows([]string{
		"id", "fingerprint", "page_number", "paragraph", "location_note",
		"field_name", "extracted_text", "record_id", "created_at",
	}).
		AddRow("cit-1", "fp-1", 1, 2, "", roles.FieldCompany, "Acme Corp", "rec-1", now).
		AddRow("cit-2", "fp-1", 1, 3, "header", roles.FieldTitle, "Engineer", "rec-1", now.Add(time.Second))

	mock.ExpectQuery("SELECT (.+) FROM citations").
		WithArgs("rec-1").
		WillReturnRows(rows)

	got, err := ledger.ListByRecord(context.Background(), "rec-1")
	if err != nil {
		t.Fatalf("ListByRecord: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(got))
	}
	if got[0].ID != "cit-1" || got[1].Span.LocationNote != "header" {
		t.Fatalf("unexpected rows: %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}
