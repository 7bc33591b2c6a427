package marshal

import (
	"strings"
	"unicode/utf8"

	"github.com/editkit/scibridge/internal/engine/call"
	"github.com/editkit/scibridge/internal/engine/codepage"
)

// Default sizing for inbound fetches whose length the engine does not
// pre-declare. Both are overridable through config; the defaults are policy,
// not a native contract.
const (
	// DefaultBufferSize is the initial capacity for unknown-length fetches.
	DefaultBufferSize = 10000

	// DefaultRetryBudget bounds the buffer-grow retry loop.
	DefaultRetryBudget = 3
)

// Decode converts engine bytes to a string under the declared encoding.
// Malformed bytes are a *DecodeError; nothing is silently replaced.
func Decode(data []byte, enc codepage.Encoding) (string, error) {
	if enc.IsUTF8() {
		if !utf8.Valid(data) {
			return "", &DecodeError{Encoding: enc, Reason: "malformed UTF-8 sequence"}
		}
		return string(data), nil
	}

	codec, err := codepage.Codec(enc)
	if err != nil {
		return "", &DecodeError{Encoding: enc, Reason: err.Error()}
	}

	decoded, err := codec.NewDecoder().Bytes(data)
	if err != nil {
		return "", &DecodeError{Encoding: enc, Reason: err.Error()}
	}
	// Legacy pages cannot encode U+FFFD, so a replacement rune in the output
	// always marks an undefined or malformed input byte.
	if strings.ContainsRune(string(decoded), utf8.RuneError) {
		return "", &DecodeError{Encoding: enc, Reason: "byte sequence not valid for code page"}
	}
	return string(decoded), nil
}

// DecodeReported decodes a buffer the engine filled under the text-out
// convention: reported is the engine's required capacity including one
// trailing NUL. Exactly one trailing NUL inside the reported window is
// stripped; nothing else is trimmed, since trailing zero-looking bytes may be
// legitimate tail bytes of a multi-byte sequence.
func DecodeReported(buf []byte, reported int, enc codepage.Encoding) (string, error) {
	n := reported
	if n > len(buf) {
		n = len(buf)
	}
	if n > 0 && buf[n-1] == 0 {
		n--
	}
	return Decode(buf[:n], enc)
}

// FetchFunc issues one engine call that writes into out and returns the
// engine's length word for that call.
type FetchFunc func(out []byte) (call.Word, error)

// FetchSized retrieves a value whose byte length was pre-declared by a
// preliminary query. fetch must return the number of data bytes written.
func FetchSized(fetch FetchFunc, size int, enc codepage.Encoding) (string, error) {
	buf := Acquire(size)
	defer buf.Release()

	out := buf.Window(size)
	n, err := fetch(out)
	if err != nil {
		return "", err
	}
	if int(n) > size {
		return "", &DecodeError{Encoding: enc, Reason: "engine wrote past pre-declared length"}
	}
	return Decode(out[:n], enc)
}

// FetchRetry retrieves a value of unknown length. fetch must follow the
// text-out convention: it returns the required capacity including one
// trailing NUL and fills at most len(out) bytes. A requirement larger than
// the buffer is the truncation signal; the call is reissued with a buffer of
// exactly the reported size. The regrow is mandatory for any unbounded-length
// operation and is bounded by budget attempts; exhaustion returns
// ErrRetryExhausted.
func FetchRetry(fetch FetchFunc, enc codepage.Encoding, bufSize, budget int) (string, error) {
	if bufSize <= 0 {
		bufSize = DefaultBufferSize
	}
	if budget <= 0 {
		budget = DefaultRetryBudget
	}

	buf := Acquire(bufSize)
	defer buf.Release()

	out := buf.Window(bufSize)
	for attempt := 0; ; attempt++ {
		need, err := fetch(out)
		if err != nil {
			return "", err
		}
		if int(need) <= len(out) {
			return DecodeReported(out, int(need), enc)
		}
		if attempt >= budget {
			return "", ErrRetryExhausted
		}
		out = buf.Window(int(need))
	}
}
