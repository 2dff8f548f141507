package documents

import "context"

// DocumentsRepo defines persistence operations for documents.
type DocumentsRepo interface {
	Create(ctx context.Context, doc Document) error
	GetByID(ctx context.Context, scope, documentID string) (Document, error)
	ListByScope(ctx context.Context, scope string, limit, offset int) ([]Document, error)
}
