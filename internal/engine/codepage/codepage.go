package codepage

import (
	"fmt"

	gdencoding "github.com/gdamore/encoding"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
	"golang.org/x/text/encoding/unicode"

	"github.com/editkit/scibridge/internal/engine/call"
)

// PageUTF8 is the code page identifier the engine reports when the document
// bytes are UTF-8.
const PageUTF8 = 65001

// Encoding identifies the byte encoding of the engine's document buffer.
// The zero value is the engine's default single-byte page (page 0).
type Encoding struct {
	page int
}

// UTF8 is the UTF-8 encoding.
var UTF8 = Encoding{page: PageUTF8}

// Legacy returns the encoding for a legacy code page identifier. Passing
// PageUTF8 returns UTF8.
func Legacy(id int) Encoding {
	return Encoding{page: id}
}

// Page returns the code page identifier.
func (e Encoding) Page() int {
	return e.page
}

// IsUTF8 reports whether the encoding is UTF-8.
func (e Encoding) IsUTF8() bool {
	return e.page == PageUTF8
}

// doubleBytePages are the legacy pages where a character may occupy two
// bytes. Every other legacy page is one byte per character.
var doubleBytePages = map[int]bool{
	932:  true, // Shift JIS
	936:  true, // GBK
	949:  true, // EUC-KR / Unified Hangul
	950:  true, // Big5
	1361: true, // Johab
}

// SingleByte reports whether every character occupies exactly one byte, in
// which case byte offsets and character indexes coincide.
func (e Encoding) SingleByte() bool {
	return !e.IsUTF8() && !doubleBytePages[e.page]
}

// String returns a human-readable name.
func (e Encoding) String() string {
	if e.IsUTF8() {
		return "utf-8"
	}
	return fmt.Sprintf("cp%d", e.page)
}

// Resolve queries the engine for its active code page. Call it at the start
// of every marshaling operation; the result must not be reused across
// operations because the engine's encoding may change between calls.
func Resolve(d call.Dispatcher) (Encoding, error) {
	page, err := call.GetCodePage(d)
	if err != nil {
		return Encoding{}, fmt.Errorf("resolving code page: %w", err)
	}
	return Legacy(int(page)), nil
}

// UnknownPageError reports a code page with no registered codec.
type UnknownPageError struct {
	Page int
}

// Error implements the error interface.
func (e *UnknownPageError) Error() string {
	return fmt.Sprintf("no codec for code page %d", e.Page)
}

// Codec returns the x/text codec for the encoding. Unregistered pages return
// *UnknownPageError.
func Codec(e Encoding) (encoding.Encoding, error) {
	switch e.page {
	case PageUTF8:
		return unicode.UTF8, nil
	case 0: // engine default single-byte page
		return charmap.ISO8859_1, nil
	case 20127:
		return gdencoding.ASCII, nil
	case 437:
		return charmap.CodePage437, nil
	case 850:
		return charmap.CodePage850, nil
	case 866:
		return charmap.CodePage866, nil
	case 874:
		return charmap.Windows874, nil
	case 932:
		return japanese.ShiftJIS, nil
	case 936:
		return simplifiedchinese.GBK, nil
	case 949:
		return korean.EUCKR, nil
	case 950:
		return traditionalchinese.Big5, nil
	case 1250:
		return charmap.Windows1250, nil
	case 1251:
		return charmap.Windows1251, nil
	case 1252:
		return charmap.Windows1252, nil
	case 1253:
		return charmap.Windows1253, nil
	case 1254:
		return charmap.Windows1254, nil
	case 1255:
		return charmap.Windows1255, nil
	case 1256:
		return charmap.Windows1256, nil
	case 1257:
		return charmap.Windows1257, nil
	case 1258:
		return charmap.Windows1258, nil
	case 28591:
		return charmap.ISO8859_1, nil
	case 28592:
		return charmap.ISO8859_2, nil
	case 28595:
		return charmap.ISO8859_5, nil
	case 28597:
		return charmap.ISO8859_7, nil
	case 28605:
		return charmap.ISO8859_15, nil
	default:
		return nil, &UnknownPageError{Page: e.page}
	}
}
