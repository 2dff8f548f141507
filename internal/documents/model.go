package documents

import "time"

// Document represents an uploaded source document within an identity scope.
type Document struct {
	ID          string
	Scope       string
	FileName    string
	MimeType    string
	SizeBytes   int64
	StorageKey  string
	Fingerprint string
	CreatedAt   time.Time
}
