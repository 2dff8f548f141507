package documents

import (
	"context"
	"database/sql"
	"errors"
)

// PGRepo implements DocumentsRepo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

var _ DocumentsRepo = (*PGRepo)(nil)

// Create inserts a new document.
func (r *PGRepo) Create(ctx context.Context, doc Document) error {
	const query = `
INSERT INTO documents (
    id,
    scope,
    file_name,
    mime_type,
    size_bytes,
    storage_key,
    fingerprint,
    created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	var storageKey sql.NullString
	if doc.StorageKey != "" {
		storageKey = sql.NullString{String: doc.StorageKey, Valid: true}
	}

	_, err := r.DB.ExecContext(
		ctx,
		query,
		doc.ID,
		doc.Scope,
		doc.FileName,
		doc.MimeType,
		doc.SizeBytes,
		storageKey,
		doc.Fingerprint,
		doc.CreatedAt,
	)
	return err
}

// GetByID fetches a document by ID within a scope.
func (r *PGRepo) GetByID(ctx context.Context, scope, documentID string) (Document, error) {
	const query = `
SELECT id, scope, file_name, mime_type, size_bytes, storage_key, fingerprint, created_at
FROM documents
WHERE scope = $1 AND id = $2
LIMIT 1`
	var doc Document
	var storageKey sql.NullString
	err := r.DB.QueryRowContext(ctx, query, scope, documentID).Scan(
		&doc.ID,
		&doc.Scope,
		&doc.FileName,
		&doc.MimeType,
		&doc.SizeBytes,
		&storageKey,
		&doc.Fingerprint,
		&doc.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Document{}, ErrNotFound
		}
		return Document{}, err
	}
	if storageKey.Valid {
		doc.StorageKey = storageKey.String
	}
	return doc, nil
}

// ListByScope lists documents ordered newest-first.
func (r *PGRepo) ListByScope(ctx context.Context, scope string, limit, offset int) ([]Document, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	const query = `
SELECT id, scope, file_name, mime_type, size_bytes, storage_key, fingerprint, created_at
FROM documents
WHERE scope = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`

	rows, err := r.DB.QueryContext(ctx, query, scope, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Document
	for rows.Next() {
		var doc Document
		var storageKey sql.NullString
		if err := rows.Scan(
			&doc.ID,
			&doc.Scope,
			&doc.FileName,
			&doc.MimeType,
			&doc.SizeBytes,
			&storageKey,
			&doc.Fingerprint,
			&doc.CreatedAt,
		); err != nil {
			return nil, err
		}
		if storageKey.Valid {
			doc.StorageKey = storageKey.String
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}
