package position

import (
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"

	"github.com/editkit/scibridge/internal/engine/codepage"
	"github.com/editkit/scibridge/internal/engine/marshal"
)

// Locator finds the byte offset of a target character index over a byte
// stream delivered in chunks, without materializing the document. Feed it
// chunks in document order until it reports done.
type Locator struct {
	enc    codepage.Encoding
	dec    *encoding.Decoder // double-byte pages only
	target CharIndex
	count  CharIndex
	offset int64
	carry  []byte
	done   bool
}

// NewLocator creates a locator for the character index target.
func NewLocator(enc codepage.Encoding, target CharIndex) (*Locator, error) {
	if target < 0 {
		return nil, ErrIndexOutOfRange
	}

	l := &Locator{enc: enc, target: target, done: target == 0}
	if !enc.IsUTF8() && !enc.SingleByte() {
		codec, err := codepage.Codec(enc)
		if err != nil {
			return nil, err
		}
		l.dec = codec.NewDecoder()
	}
	return l, nil
}

// Feed consumes the next chunk and reports whether the target has been
// reached. Once done, further chunks are ignored.
func (l *Locator) Feed(chunk []byte) (bool, error) {
	if l.done {
		return true, nil
	}

	if l.enc.SingleByte() {
		remaining := int64(l.target - l.count)
		if int64(len(chunk)) >= remaining {
			l.offset += remaining
			l.count = l.target
			l.done = true
		} else {
			l.offset += int64(len(chunk))
			l.count += CharIndex(len(chunk))
		}
		return l.done, nil
	}

	data := chunk
	if len(l.carry) > 0 {
		data = append(l.carry, chunk...)
		l.carry = nil
	}

	i := 0
	for l.count < l.target && i < len(data) {
		size, complete, err := l.charLen(data[i:])
		if err != nil {
			return false, err
		}
		if !complete {
			break
		}
		i += size
		l.count++
	}

	l.offset += int64(i)
	l.carry = append([]byte(nil), data[i:]...)
	if l.count == l.target {
		l.done = true
	}
	return l.done, nil
}

// charLen returns the byte length of the character at the head of data, or
// complete=false when data ends before the character does.
func (l *Locator) charLen(data []byte) (size int, complete bool, err error) {
	if l.enc.IsUTF8() {
		if !utf8.FullRune(data) {
			return 0, false, nil
		}
		r, size := utf8.DecodeRune(data)
		if r == utf8.RuneError && size == 1 {
			return 0, false, &marshal.DecodeError{Encoding: l.enc, Reason: "malformed UTF-8 sequence"}
		}
		return size, true, nil
	}

	var dst [utf8.UTFMax]byte
	_, nSrc, terr := l.dec.Transform(dst[:], data[:1], false)
	if nSrc == 1 {
		return 1, true, nil
	}
	if terr != nil && terr != transform.ErrShortSrc {
		return 0, false, &marshal.DecodeError{Encoding: l.enc, Reason: terr.Error()}
	}
	if len(data) < 2 {
		return 0, false, nil
	}

	l.dec.Reset()
	_, nSrc, terr = l.dec.Transform(dst[:], data[:2], false)
	l.dec.Reset()
	if terr != nil && terr != transform.ErrShortSrc {
		return 0, false, &marshal.DecodeError{Encoding: l.enc, Reason: terr.Error()}
	}
	if nSrc != 2 {
		return 0, false, &marshal.DecodeError{Encoding: l.enc, Reason: "byte sequence not valid for code page"}
	}
	return 2, true, nil
}

// Done reports whether the target index has been reached.
func (l *Locator) Done() bool {
	return l.done
}

// Offset returns the byte offset of the target once Done, or the offset of
// the last complete character boundary seen so far.
func (l *Locator) Offset() Pos {
	return Pos(l.offset)
}
