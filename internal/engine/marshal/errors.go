package marshal

import (
	"errors"
	"fmt"

	"github.com/editkit/scibridge/internal/engine/codepage"
)

// ErrRetryExhausted is returned when the buffer-grow retry loop exceeds its
// attempt budget without the engine reporting a stable length.
var ErrRetryExhausted = errors.New("buffer grow retry budget exhausted")

// EncodeError reports text that cannot be represented in the target encoding.
type EncodeError struct {
	Encoding codepage.Encoding
	Err      error
}

// Error implements the error interface.
func (e *EncodeError) Error() string {
	return fmt.Sprintf("encoding text as %s: %v", e.Encoding, e.Err)
}

// Unwrap returns the underlying codec error, if any.
func (e *EncodeError) Unwrap() error {
	return e.Err
}

// DecodeError reports engine bytes that are not valid under the declared
// encoding.
type DecodeError struct {
	Encoding codepage.Encoding
	Reason   string
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding %s bytes: %s", e.Encoding, e.Reason)
}
