package recordstore

import (
	"context"

	"reconcile-backend/internal/roles"
)

// FieldValues is the flattened field set written to one record.
type FieldValues map[string]string

// Store is the system of record for employment roles. WriteFields with an
// empty recordID creates a new record and returns its ID; a non-empty
// recordID updates only the provided fields on that record.
type Store interface {
	ListByScope(ctx context.Context, scope string) ([]roles.StoredRole, error)
	WriteFields(ctx context.Context, scope, recordID string, fields FieldValues) (string, error)
}
