package documents

import "errors"

// ErrNotFound is returned when a document does not exist in the scope.
var ErrNotFound = errors.New("document not found")
