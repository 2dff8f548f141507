package citations

import "errors"

var (
	// ErrInvalidCitation is returned when a citation is missing its identity fields.
	ErrInvalidCitation = errors.New("citation missing fingerprint or field")
)
