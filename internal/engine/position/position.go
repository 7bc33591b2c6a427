package position

import (
	"errors"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"

	"github.com/editkit/scibridge/internal/engine/codepage"
	"github.com/editkit/scibridge/internal/engine/marshal"
)

// Pos is a byte offset into the engine's document buffer. It never implies a
// character count.
type Pos int64

// CharIndex is a count of Unicode scalar values from the document start. It
// coincides with Pos only under single-byte encodings.
type CharIndex int64

// Errors returned by position translation.
var (
	// ErrInvalidPosition is returned for a position strictly inside a
	// multi-byte sequence. The policy is to reject, never to round silently;
	// use AlignDown first when rounding is wanted.
	ErrInvalidPosition = errors.New("position is inside a multi-byte sequence")

	// ErrPositionOutOfRange is returned for a position outside [0, len].
	ErrPositionOutOfRange = errors.New("position out of range")

	// ErrIndexOutOfRange is returned for a character index past the end.
	ErrIndexOutOfRange = errors.New("character index out of range")
)

// Scanner counts Unicode scalar values over a byte stream delivered in
// chunks. Chunk boundaries need not align with character boundaries; bytes of
// an unfinished sequence are carried into the next Feed.
type Scanner struct {
	enc   codepage.Encoding
	cd    *marshal.ChunkDecoder // double-byte pages only
	carry []byte                // UTF-8 incomplete tail
	count CharIndex
}

// NewScanner creates a scanner for the given encoding.
func NewScanner(enc codepage.Encoding) (*Scanner, error) {
	s := &Scanner{enc: enc}
	if !enc.IsUTF8() && !enc.SingleByte() {
		cd, err := marshal.NewChunkDecoder(enc)
		if err != nil {
			return nil, err
		}
		s.cd = cd
	}
	return s, nil
}

// Feed consumes the next chunk of document bytes.
func (s *Scanner) Feed(chunk []byte) error {
	switch {
	case s.enc.SingleByte():
		s.count += CharIndex(len(chunk))
		return nil
	case s.enc.IsUTF8():
		return s.feedUTF8(chunk)
	default:
		decoded, err := s.cd.Write(chunk)
		if err != nil {
			return err
		}
		s.count += CharIndex(utf8.RuneCountInString(decoded))
		return nil
	}
}

func (s *Scanner) feedUTF8(chunk []byte) error {
	data := chunk
	if len(s.carry) > 0 {
		data = append(s.carry, chunk...)
		s.carry = nil
	}

	cut := len(data) - utf8Incomplete(data)
	for i := 0; i < cut; {
		r, size := utf8.DecodeRune(data[i:])
		if r == utf8.RuneError && size == 1 {
			return &marshal.DecodeError{Encoding: s.enc, Reason: "malformed UTF-8 sequence"}
		}
		s.count++
		i += size
	}
	s.carry = append([]byte(nil), data[cut:]...)
	return nil
}

// utf8Incomplete returns how many bytes at the end of data begin a UTF-8
// sequence that is not yet complete.
func utf8Incomplete(data []byte) int {
	back := 0
	for back < utf8.UTFMax-1 && len(data)-back-1 >= 0 && data[len(data)-back-1]&0xC0 == 0x80 {
		back++
	}
	start := len(data) - back - 1
	if start < 0 {
		return 0
	}

	b := data[start]
	var need int
	switch {
	case b&0x80 == 0:
		need = 1
	case b&0xE0 == 0xC0:
		need = 2
	case b&0xF0 == 0xE0:
		need = 3
	case b&0xF8 == 0xF0:
		need = 4
	default:
		return 0
	}

	if have := back + 1; have < need {
		return have
	}
	return 0
}

// Chars returns the number of complete scalar values seen so far.
func (s *Scanner) Chars() CharIndex {
	return s.count
}

// AtBoundary reports whether the bytes fed so far end exactly on a character
// boundary.
func (s *Scanner) AtBoundary() bool {
	if s.cd != nil {
		return s.cd.Flush() == nil
	}
	return len(s.carry) == 0
}

// CharIndexAt converts a byte position to a character index, scanning data
// from the buffer start. data is the document byte context covering at least
// [0, p). A position inside a multi-byte sequence returns ErrInvalidPosition.
func CharIndexAt(data []byte, p Pos, enc codepage.Encoding) (CharIndex, error) {
	if p < 0 || int64(p) > int64(len(data)) {
		return 0, ErrPositionOutOfRange
	}

	s, err := NewScanner(enc)
	if err != nil {
		return 0, err
	}
	if err := s.Feed(data[:p]); err != nil {
		return 0, err
	}
	if !s.AtBoundary() {
		return 0, ErrInvalidPosition
	}
	return s.Chars(), nil
}

// PosOfChar converts a character index to a byte position, the exact inverse
// of CharIndexAt on valid boundaries.
func PosOfChar(data []byte, idx CharIndex, enc codepage.Encoding) (Pos, error) {
	if idx < 0 {
		return 0, ErrIndexOutOfRange
	}

	switch {
	case enc.SingleByte():
		if int64(idx) > int64(len(data)) {
			return 0, ErrIndexOutOfRange
		}
		return Pos(idx), nil
	case enc.IsUTF8():
		off := 0
		for n := CharIndex(0); n < idx; n++ {
			if off >= len(data) {
				return 0, ErrIndexOutOfRange
			}
			r, size := utf8.DecodeRune(data[off:])
			if r == utf8.RuneError && size == 1 {
				return 0, &marshal.DecodeError{Encoding: enc, Reason: "malformed UTF-8 sequence"}
			}
			off += size
		}
		return Pos(off), nil
	default:
		return posOfCharDoubleByte(data, idx, enc)
	}
}

// AlignDown rounds a position down to the nearest character boundary. Valid
// boundaries, 0, and len(data) are returned unchanged.
func AlignDown(data []byte, p Pos, enc codepage.Encoding) (Pos, error) {
	if p < 0 || int64(p) > int64(len(data)) {
		return 0, ErrPositionOutOfRange
	}

	switch {
	case enc.SingleByte():
		return p, nil
	case enc.IsUTF8():
		for p > 0 && int64(p) < int64(len(data)) && data[p]&0xC0 == 0x80 {
			p--
		}
		return p, nil
	default:
		off, _, err := walkDoubleByte(data, p, enc)
		return off, err
	}
}

// posOfCharDoubleByte steps character by character through a double-byte
// page until idx characters have been consumed.
func posOfCharDoubleByte(data []byte, idx CharIndex, enc codepage.Encoding) (Pos, error) {
	codec, err := codepage.Codec(enc)
	if err != nil {
		return 0, err
	}
	dec := codec.NewDecoder()

	off := int64(0)
	for n := CharIndex(0); n < idx; n++ {
		if off >= int64(len(data)) {
			return 0, ErrIndexOutOfRange
		}
		size, err := nextCharLen(dec, data[off:], enc)
		if err != nil {
			return 0, err
		}
		off += int64(size)
	}
	return Pos(off), nil
}

// walkDoubleByte scans boundaries from the start and returns the last
// boundary at or before p along with its character index.
func walkDoubleByte(data []byte, p Pos, enc codepage.Encoding) (Pos, CharIndex, error) {
	codec, err := codepage.Codec(enc)
	if err != nil {
		return 0, 0, err
	}
	dec := codec.NewDecoder()

	off := int64(0)
	count := CharIndex(0)
	for off < int64(p) {
		size, err := nextCharLen(dec, data[off:], enc)
		if err != nil {
			return 0, 0, err
		}
		if off+int64(size) > int64(p) {
			break
		}
		off += int64(size)
		count++
	}
	return Pos(off), count, nil
}

// nextCharLen determines the byte length of the next character by probing the
// code page's transform one byte, then two.
func nextCharLen(dec *encoding.Decoder, data []byte, enc codepage.Encoding) (int, error) {
	var dst [utf8.UTFMax]byte

	_, nSrc, err := dec.Transform(dst[:], data[:1], false)
	if nSrc == 1 {
		return 1, nil
	}
	if err != nil && err != transform.ErrShortSrc {
		return 0, &marshal.DecodeError{Encoding: enc, Reason: err.Error()}
	}
	if len(data) < 2 {
		return 0, &marshal.DecodeError{Encoding: enc, Reason: "truncated multi-byte sequence"}
	}

	dec.Reset()
	_, nSrc, err = dec.Transform(dst[:], data[:2], false)
	if err != nil && err != transform.ErrShortSrc {
		return 0, &marshal.DecodeError{Encoding: enc, Reason: err.Error()}
	}
	if nSrc != 2 {
		return 0, &marshal.DecodeError{Encoding: enc, Reason: "byte sequence not valid for code page"}
	}
	dec.Reset()
	return 2, nil
}
