package util

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
)

// HashScopeKey returns a filesystem-safe identifier for an identity scope.
func HashScopeKey(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// Fingerprint returns the hex SHA-256 of the given content bytes. It is the
// stable identity of a document regardless of where it is stored.
func Fingerprint(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// FingerprintReader consumes the reader and returns its content fingerprint.
func FingerprintReader(r io.Reader) (string, error) {
	h := sha256.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
