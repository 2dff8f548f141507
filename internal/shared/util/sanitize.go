package util

import (
	"errors"
	"path/filepath"
	"strings"
	"unicode"
)

// SanitizeFileName strips path components and unsafe characters from a
// user-supplied file name. Returns an error if nothing usable remains.
func SanitizeFileName(name string) (string, error) {
	base := filepath.Base(strings.TrimSpace(name))
	if base == "." || base == string(filepath.Separator) {
		return "", errors.New("empty file name")
	}

	var b strings.Builder
	for _, r := range base {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case r == '.' || r == '-' || r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}

	out := strings.Trim(b.String(), "._")
	if out == "" {
		return "", errors.New("file name has no usable characters")
	}
	return out, nil
}
