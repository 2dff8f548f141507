package recordstore

import (
	"errors"
	"fmt"
)

// ErrRecordNotFound is returned when an update targets a record that does not exist.
var ErrRecordNotFound = errors.New("record not found")

// WriteError wraps a failed record-store write with the record it targeted,
// so commit can report which candidate failed without parsing messages.
type WriteError struct {
	RecordID string
	Err      error
}

func (e *WriteError) Error() string {
	if e.RecordID == "" {
		return fmt.Sprintf("record store write (create): %v", e.Err)
	}
	return fmt.Sprintf("record store write %s: %v", e.RecordID, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}
