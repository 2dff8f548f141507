package extraction

import (
	"context"
	"errors"
	"fmt"

	"reconcile-backend/internal/roles"
)

// Request carries everything an extractor needs to pull roles out of a document.
type Request struct {
	DocumentID  string
	Fingerprint string
	StorageKey  string
	FileName    string
	MimeType    string
	Text        string
}

// Service abstracts role extraction providers.
type Service interface {
	ExtractRoles(ctx context.Context, req Request) ([]roles.ExtractedRole, error)
}

// Error marks a provider failure so the workflow can park the run as failed
// instead of retrying blindly.
type Error struct {
	Provider string
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("extraction provider %s: %v", e.Provider, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ErrNotImplemented is returned by the placeholder service.
var ErrNotImplemented = errors.New("extraction not implemented")

// Placeholder is a stub implementation until provider wiring is added.
type Placeholder struct{}

// ExtractRoles returns ErrNotImplemented.
func (Placeholder) ExtractRoles(ctx context.Context, req Request) ([]roles.ExtractedRole, error) {
	_ = ctx
	_ = req
	return nil, ErrNotImplemented
}
