package marshal

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/editkit/scibridge/internal/engine/codepage"
)

// Encode converts text to the engine's byte encoding as a length-counted
// sequence: the exact byte count is significant and no terminator is
// appended. The result may contain zero bytes if the text does.
//
// A rune the target encoding cannot represent is an *EncodeError; text is
// never silently substituted or truncated.
func Encode(text string, enc codepage.Encoding) ([]byte, error) {
	if enc.IsUTF8() {
		if !utf8.ValidString(text) {
			return nil, &EncodeError{Encoding: enc, Err: errors.New("string contains invalid UTF-8")}
		}
		return []byte(text), nil
	}

	// The 7-bit ASCII codec substitutes unmappable runes instead of failing;
	// reject them up front so nothing is silently replaced.
	if enc.Page() == 20127 {
		for _, r := range text {
			if r > 0x7F {
				return nil, &EncodeError{Encoding: enc, Err: fmt.Errorf("rune %q not representable in 7-bit ASCII", r)}
			}
		}
	}

	codec, err := codepage.Codec(enc)
	if err != nil {
		return nil, &EncodeError{Encoding: enc, Err: err}
	}

	data, err := codec.NewEncoder().Bytes([]byte(text))
	if err != nil {
		return nil, &EncodeError{Encoding: enc, Err: err}
	}
	return data, nil
}

// EncodeTerminated converts text like Encode and appends a single NUL
// terminator, for calls whose native contract reads to NUL. Text containing
// U+0000 cannot travel on a NUL-terminated call and is an *EncodeError.
func EncodeTerminated(text string, enc codepage.Encoding) ([]byte, error) {
	if strings.ContainsRune(text, 0) {
		return nil, &EncodeError{Encoding: enc, Err: errors.New("text contains NUL, not representable on a NUL-terminated call")}
	}

	data, err := Encode(text, enc)
	if err != nil {
		return nil, err
	}
	return append(data, 0), nil
}
