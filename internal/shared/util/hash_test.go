package util

import (
	"strings"
	"testing"
)

func TestHashScopeKey(t *testing.T) {
	id := "workspace:12345"
	got := HashScopeKey(id)
	if got != HashScopeKey(id) {
		t.Fatalf("expected stable hash, got %s", got)
	}
	for _, ch := range got {
		if !((ch >= 'a' && ch <= 'f') || (ch >= '0' && ch <= '9')) {
			t.Fatalf("hash contains non-hex character: %c", ch)
		}
	}
	if len(got) != 64 {
		t.Fatalf("expected 64 hex characters, got %d", len(got))
	}
}

func TestFingerprintMatchesReader(t *testing.T) {
	content := []byte("the same bytes, the same fingerprint")

	direct := Fingerprint(content)
	streamed, err := FingerprintReader(strings.NewReader(string(content)))
	if err != nil {
		t.Fatalf("FingerprintReader: %v", err)
	}
	if direct != streamed {
		t.Fatalf("fingerprints differ: %s vs %s", direct, streamed)
	}
	if direct == Fingerprint([]byte("different bytes")) {
		t.Fatalf("different content must not collide")
	}
}
