package engine

import "errors"

// Errors returned by editor operations.
var (
	// ErrRangeInvalid is returned for a range whose start is negative or
	// past its end.
	ErrRangeInvalid = errors.New("invalid range")

	// ErrDocumentReleased is returned when a document handle is used after
	// Release. This is a caller error; the handle cannot be revived.
	ErrDocumentReleased = errors.New("document handle used after release")
)
