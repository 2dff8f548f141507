package documents

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"strings"
	"testing"

	local "reconcile-backend/internal/shared/storage/object/local"
)

var pdfPayload = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n<< >>\n%%EOF")

func newTestService(t *testing.T) (*Service, *MemoryRepo) {
	t.Helper()
	repo := NewMemoryRepo()
	store := local.New(t.TempDir())
	return &Service{Repo: repo, Store: store}, repo
}

func TestUploadComputesFingerprint(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	doc, err := svc.Upload(ctx, "scope-1", "resume.pdf", bytes.NewReader(pdfPayload))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if doc.ID == "" || doc.Fingerprint == "" {
		t.Fatalf("incomplete document: %+v", doc)
	}
	if doc.MimeType != "application/pdf" {
		t.Fatalf("mime type = %q", doc.MimeType)
	}
	if doc.SizeBytes != int64(len(pdfPayload)) {
		t.Fatalf("size = %d, want %d", doc.SizeBytes, len(pdfPayload))
	}

	stored, err := repo.GetByID(ctx, "scope-1", doc.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if stored.Fingerprint != doc.Fingerprint {
		t.Fatalf("persisted fingerprint mismatch")
	}
}

func TestUploadSameBytesSameFingerprint(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.Upload(ctx, "scope-1", "a.pdf", bytes.NewReader(pdfPayload))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	second, err := svc.Upload(ctx, "scope-1", "b.pdf", bytes.NewReader(pdfPayload))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if first.Fingerprint != second.Fingerprint {
		t.Fatalf("same bytes should share a fingerprint: %s vs %s", first.Fingerprint, second.Fingerprint)
	}
	if first.ID == second.ID {
		t.Fatalf("documents should have distinct ids")
	}
}

func TestUploadRejectsUnsupportedType(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Upload(context.Background(), "scope-1", "notes.txt", strings.NewReader("plain text notes"))
	if !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("expected ErrUnsupportedType, got %v", err)
	}
}

func TestUploadRejectionLeavesStoreEmpty(t *testing.T) {
	dir := t.TempDir()
	svc := &Service{Repo: NewMemoryRepo(), Store: local.New(dir)}

	_, err := svc.Upload(context.Background(), "scope-1", "notes.txt", strings.NewReader("plain text notes"))
	if !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("expected ErrUnsupportedType, got %v", err)
	}

	var files int
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			files++
		}
		return nil
	})
	if err != nil {
		t.Fatalf("walk store dir: %v", err)
	}
	if files != 0 {
		t.Fatalf("rejected upload left %d object(s) in the store", files)
	}
}

func TestUploadRejectsOversized(t *testing.T) {
	svc, _ := newTestService(t)
	big := bytes.Repeat([]byte("a"), maxUploadBytes+1)
	copy(big, "%PDF-")
	_, err := svc.Upload(context.Background(), "scope-1", "big.pdf", bytes.NewReader(big))
	if !errors.Is(err, ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge, got %v", err)
	}
}

func TestUploadRejectsEmpty(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Upload(context.Background(), "scope-1", "empty.pdf", bytes.NewReader(nil))
	if err == nil {
		t.Fatalf("expected error for empty upload")
	}
}
