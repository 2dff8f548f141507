package citations

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// PGLedger persists citations in Postgres. Inserts conflict on the
// deterministic ID and are dropped silently, keeping the ledger append-only
// and idempotent without a read-before-write.
type PGLedger struct {
	DB *sql.DB
}

var _ Ledger = (*PGLedger)(nil)

func NewPGLedger(db *sql.DB) *PGLedger {
	return &PGLedger{DB: db}
}

func (l *PGLedger) Record(ctx context.Context, citation Citation) error {
	if citation.Fingerprint == "" || citation.Field == "" {
		return ErrInvalidCitation
	}
	if citation.ID == "" {
		citation.ID = DeterministicID(citation.Fingerprint, citation.Span, citation.Field)
	}
	if citation.CreatedAt.IsZero() {
		citation.CreatedAt = time.Now().UTC()
	}

	const query = `
		INSERT INTO citations (id, fingerprint, page_number, paragraph, location_note, field_name, extracted_text, record_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO NOTHING`

	_, err := l.DB.ExecContext(ctx, query,
		citation.ID,
		citation.Fingerprint,
		citation.Span.PageNumber,
		citation.Span.Paragraph,
		citation.Span.LocationNote,
		citation.Field,
		citation.ExtractedText,
		citation.RecordID,
		citation.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert citation: %w", err)
	}
	return nil
}

func (l *PGLedger) ListByRecord(ctx context.Context, recordID string) ([]Citation, error) {
	const query = `
		SELECT id, fingerprint, page_number, paragraph, location_note, field_name, extracted_text, record_id, created_at
		FROM citations
		WHERE record_id = $1
		ORDER BY created_at, id`
	return l.list(ctx, query, recordID)
}

func (l *PGLedger) ListByDocument(ctx context.Context, fingerprint string) ([]Citation, error) {
	const query = `
		SELECT id, fingerprint, page_number, paragraph, location_note, field_name, extracted_text, record_id, created_at
		FROM citations
		WHERE fingerprint = $1
		ORDER BY created_at, id`
	return l.list(ctx, query, fingerprint)
}

func (l *PGLedger) list(ctx context.Context, query string, arg any) ([]Citation, error) {
	rows, err := l.DB.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("query citations: %w", err)
	}
	defer rows.Close()

	var out []Citation
	for rows.Next() {
		var c Citation
		if err := rows.Scan(
			&c.ID,
			&c.Fingerprint,
			&c.Span.PageNumber,
			&c.Span.Paragraph,
			&c.Span.LocationNote,
			&c.Field,
			&c.ExtractedText,
			&c.RecordID,
			&c.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan citation: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate citations: %w", err)
	}
	return out, nil
}
