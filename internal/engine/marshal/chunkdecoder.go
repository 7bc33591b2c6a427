package marshal

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"

	"github.com/editkit/scibridge/internal/engine/codepage"
)

// ChunkDecoder decodes a document delivered as a sequence of byte chunks
// whose boundaries need not align with character boundaries. Bytes of an
// unfinished multi-byte sequence are carried into the next Write; Flush
// verifies nothing was left dangling.
type ChunkDecoder struct {
	enc     codepage.Encoding
	dec     *encoding.Decoder // double-byte pages only
	pending []byte
}

// NewChunkDecoder creates a decoder for the given encoding.
func NewChunkDecoder(enc codepage.Encoding) (*ChunkDecoder, error) {
	d := &ChunkDecoder{enc: enc}
	if !enc.IsUTF8() && !enc.SingleByte() {
		codec, err := codepage.Codec(enc)
		if err != nil {
			return nil, &DecodeError{Encoding: enc, Reason: err.Error()}
		}
		d.dec = codec.NewDecoder()
	}
	return d, nil
}

// Write decodes the longest complete prefix of the carried bytes plus chunk
// and retains the remainder for the next call.
func (d *ChunkDecoder) Write(chunk []byte) (string, error) {
	if d.enc.SingleByte() {
		return Decode(chunk, d.enc)
	}

	data := chunk
	if len(d.pending) > 0 {
		data = append(d.pending, chunk...)
		d.pending = nil
	}

	if d.enc.IsUTF8() {
		cut := len(data) - trailingIncomplete(data)
		s, err := Decode(data[:cut], d.enc)
		if err != nil {
			return "", err
		}
		d.pending = append([]byte(nil), data[cut:]...)
		return s, nil
	}

	return d.writeDoubleByte(data)
}

// writeDoubleByte feeds data through the code page's transform, consuming as
// many complete characters as the transform accepts.
func (d *ChunkDecoder) writeDoubleByte(data []byte) (string, error) {
	var sb strings.Builder
	dst := make([]byte, len(data)*utf8.UTFMax+utf8.UTFMax)
	consumed := 0

	for consumed < len(data) {
		nDst, nSrc, err := d.dec.Transform(dst, data[consumed:], false)
		sb.Write(dst[:nDst])
		consumed += nSrc

		if err == nil || err == transform.ErrShortSrc {
			break
		}
		if err == transform.ErrShortDst {
			continue
		}
		return "", &DecodeError{Encoding: d.enc, Reason: err.Error()}
	}

	d.pending = append([]byte(nil), data[consumed:]...)

	s := sb.String()
	if strings.ContainsRune(s, utf8.RuneError) {
		return "", &DecodeError{Encoding: d.enc, Reason: "byte sequence not valid for code page"}
	}
	return s, nil
}

// Flush reports an error if the stream ended inside a multi-byte sequence.
func (d *ChunkDecoder) Flush() error {
	if len(d.pending) != 0 {
		return &DecodeError{Encoding: d.enc, Reason: "stream ends inside a multi-byte sequence"}
	}
	return nil
}

// trailingIncomplete returns how many bytes at the end of data begin a UTF-8
// sequence that is not yet complete. Malformed tails return 0 and are left
// for Decode to reject.
func trailingIncomplete(data []byte) int {
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
