package documents

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"reconcile-backend/internal/shared/storage/object"
	"reconcile-backend/internal/shared/util"
)

const maxUploadBytes = 5 << 20

var allowedMimeTypes = map[string]struct{}{
	"application/pdf": {},
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": {},
	"application/zip": {}, // docx uploads often sniff as zip
}

// ErrTooLarge is returned when an upload exceeds the size limit.
var ErrTooLarge = errors.New("document exceeds size limit")

// ErrUnsupportedType is returned for uploads that are not PDF or DOCX.
var ErrUnsupportedType = errors.New("unsupported document type")

// Service handles document ingestion: content hashing, object storage,
// and metadata persistence.
type Service struct {
	Repo  DocumentsRepo
	Store object.ObjectStore
}

// Upload stores a document and registers its metadata. The document
// fingerprint is the SHA-256 of the raw bytes, which downstream runs use
// for dedup and citation identity.
func (s *Service) Upload(ctx context.Context, scope, fileName string, r io.Reader) (Document, error) {
	if strings.TrimSpace(scope) == "" {
		return Document{}, errors.New("scope is required")
	}

	data, err := io.ReadAll(io.LimitReader(r, maxUploadBytes+1))
	if err != nil {
		return Document{}, fmt.Errorf("read upload: %w", err)
	}
	if len(data) == 0 {
		return Document{}, errors.New("empty upload")
	}
	if len(data) > maxUploadBytes {
		return Document{}, ErrTooLarge
	}

	// Reject unsupported content before anything lands in the object store,
	// so a failed upload leaves no orphaned object behind.
	mimeType := http.DetectContentType(data)
	if _, ok := allowedMimeTypes[strings.ToLower(strings.Split(mimeType, ";")[0])]; !ok {
		return Document{}, ErrUnsupportedType
	}

	fingerprint := util.Fingerprint(data)

	storageKey, size, mimeType, err := s.Store.Save(ctx, scope, fileName, bytes.NewReader(data))
	if err != nil {
		return Document{}, fmt.Errorf("store upload: %w", err)
	}

	doc := Document{
		ID:          uuid.NewString(),
		Scope:       scope,
		FileName:    fileName,
		MimeType:    mimeType,
		SizeBytes:   size,
		StorageKey:  storageKey,
		Fingerprint: fingerprint,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.Repo.Create(ctx, doc); err != nil {
		return Document{}, fmt.Errorf("persist document: %w", err)
	}
	return doc, nil
}
