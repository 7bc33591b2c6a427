package engine

import (
	"errors"
	"io"
	"log/slog"
	"strings"

	"github.com/editkit/scibridge/internal/config"
	"github.com/editkit/scibridge/internal/engine/call"
	"github.com/editkit/scibridge/internal/engine/codepage"
	"github.com/editkit/scibridge/internal/engine/marshal"
	"github.com/editkit/scibridge/internal/engine/position"
	"github.com/editkit/scibridge/internal/engine/stream"
)

// errStopFetch ends a chunked fetch early once a locator is satisfied.
var errStopFetch = errors.New("stop fetch")

// Editor exposes the engine's text operations to Unicode callers. It holds
// no document state of its own; the encoding is resolved from the engine at
// the start of every text-bearing operation and never cached across them.
//
// An Editor is not safe for concurrent use: the engine accepts one call in
// flight at a time and callers must serialize.
type Editor struct {
	d      call.Dispatcher
	limits config.Limits
	log    *slog.Logger
}

// Option configures an Editor.
type Option func(*Editor)

// WithLimits sets the marshaling limits.
func WithLimits(limits config.Limits) Option {
	return func(e *Editor) {
		e.limits = limits
	}
}

// WithLogger sets the structured logger.
func WithLogger(log *slog.Logger) Option {
	return func(e *Editor) {
		e.log = log
	}
}

// New creates an Editor over a dispatcher.
func New(d call.Dispatcher, opts ...Option) *Editor {
	e := &Editor{
		d:      d,
		limits: config.Default(),
		log:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Length returns the document length in bytes.
func (e *Editor) Length() (int64, error) {
	n, err := call.GetLength(e.d)
	return int64(n), err
}

// Encoding returns the engine's active encoding.
func (e *Editor) Encoding() (codepage.Encoding, error) {
	return codepage.Resolve(e.d)
}

// SetEncoding changes the engine's active encoding. Existing document bytes
// are not converted; the engine reinterprets them.
func (e *Editor) SetEncoding(enc codepage.Encoding) error {
	return call.SetCodePage(e.d, call.Word(enc.Page()))
}

// InsertText inserts text at a byte position. The position must lie on a
// character boundary of the engine's current encoding.
func (e *Editor) InsertText(pos position.Pos, text string) error {
	enc, err := codepage.Resolve(e.d)
	if err != nil {
		return err
	}

	data, err := marshal.EncodeTerminated(text, enc)
	if err != nil {
		return err
	}
	if err := call.InsertBytes(e.d, call.Word(pos), data); err != nil {
		return err
	}
	e.log.Debug("inserted text", "pos", int64(pos), "bytes", len(data)-1, "encoding", enc.String())
	return nil
}

// FetchRange returns the text in the byte range [start, end). Small ranges
// use one pre-sized call; ranges past the block size stream in chunks.
func (e *Editor) FetchRange(start, end position.Pos) (string, error) {
	if start < 0 || end < start {
		return "", ErrRangeInvalid
	}
	if start == end {
		return "", nil
	}

	enc, err := codepage.Resolve(e.d)
	if err != nil {
		return "", err
	}

	size := int64(end - start)
	if size <= int64(e.limits.BlockSize) {
		return marshal.FetchSized(func(out []byte) (call.Word, error) {
			return call.GetTextRange(e.d, call.Word(start), call.Word(end), out)
		}, int(size), enc)
	}

	cd, err := marshal.NewChunkDecoder(enc)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	err = stream.FetchBytes(e.d, int64(start), int64(end), e.limits.BlockSize, e.log, func(block []byte) error {
		s, err := cd.Write(block)
		if err != nil {
			return err
		}
		sb.WriteString(s)
		return nil
	})
	if err != nil {
		return "", err
	}
	if err := cd.Flush(); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// FetchAll returns the whole document, streamed in bounded chunks.
func (e *Editor) FetchAll() (string, error) {
	enc, err := codepage.Resolve(e.d)
	if err != nil {
		return "", err
	}
	total, err := e.Length()
	if err != nil {
		return "", err
	}
	return stream.Fetch(e.d, total, e.limits.BlockSize, enc, e.log)
}

// FetchSelection returns the current selection. Selection length is
// unbounded, so the buffer-grow retry path is mandatory here.
func (e *Editor) FetchSelection() (string, error) {
	enc, err := codepage.Resolve(e.d)
	if err != nil {
		return "", err
	}
	return marshal.FetchRetry(func(out []byte) (call.Word, error) {
		return call.GetSelText(e.d, out)
	}, enc, e.limits.BufferSize, e.limits.RetryBudget)
}

// Selection returns the selection range in byte positions.
func (e *Editor) Selection() (start, end position.Pos, err error) {
	s, err := call.GetSelectionStart(e.d)
	if err != nil {
		return 0, 0, err
	}
	n, err := call.GetSelectionEnd(e.d)
	if err != nil {
		return 0, 0, err
	}
	return position.Pos(s), position.Pos(n), nil
}

// FetchLine returns one line without its line-end bytes. Lines are
// unbounded, so the retry path applies.
func (e *Editor) FetchLine(line int64) (string, error) {
	enc, err := codepage.Resolve(e.d)
	if err != nil {
		return "", err
	}
	return marshal.FetchRetry(func(out []byte) (call.Word, error) {
		return call.GetLine(e.d, call.Word(line), out)
	}, enc, e.limits.BufferSize, e.limits.RetryBudget)
}

// ReplaceTarget replaces the byte range [start, end) with text on the
// length-counted path, so the replacement may contain NUL characters.
func (e *Editor) ReplaceTarget(start, end position.Pos, text string) error {
	if start < 0 || end < start {
		return ErrRangeInvalid
	}

	enc, err := codepage.Resolve(e.d)
	if err != nil {
		return err
	}
	data, err := marshal.Encode(text, enc)
	if err != nil {
		return err
	}

	if err := call.SetTarget(e.d, call.Word(start), call.Word(end)); err != nil {
		return err
	}
	if _, err := call.ReplaceTarget(e.d, data); err != nil {
		return err
	}
	e.log.Debug("replaced target", "start", int64(start), "end", int64(end), "bytes", len(data))
	return nil
}

// CharIndexOf converts a byte position to a character index by scanning the
// document prefix in bounded chunks. A position inside a multi-byte sequence
// returns position.ErrInvalidPosition.
func (e *Editor) CharIndexOf(pos position.Pos) (position.CharIndex, error) {
	if pos < 0 {
		return 0, position.ErrPositionOutOfRange
	}

	enc, err := codepage.Resolve(e.d)
	if err != nil {
		return 0, err
	}
	total, err := e.Length()
	if err != nil {
		return 0, err
	}
	if int64(pos) > total {
		return 0, position.ErrPositionOutOfRange
	}
	if enc.SingleByte() {
		return position.CharIndex(pos), nil
	}

	scan, err := position.NewScanner(enc)
	if err != nil {
		return 0, err
	}
	err = stream.FetchBytes(e.d, 0, int64(pos), e.limits.BlockSize, e.log, func(block []byte) error {
		return scan.Feed(block)
	})
	if err != nil {
		return 0, err
	}
	if !scan.AtBoundary() {
		return 0, position.ErrInvalidPosition
	}
	return scan.Chars(), nil
}

// PositionOf converts a character index to a byte position, the exact
// inverse of CharIndexOf for valid boundaries.
func (e *Editor) PositionOf(idx position.CharIndex) (position.Pos, error) {
	enc, err := codepage.Resolve(e.d)
	if err != nil {
		return 0, err
	}
	total, err := e.Length()
	if err != nil {
		return 0, err
	}
	if enc.SingleByte() {
		if idx < 0 || int64(idx) > total {
			return 0, position.ErrIndexOutOfRange
		}
		return position.Pos(idx), nil
	}

	loc, err := position.NewLocator(enc, idx)
	if err != nil {
		return 0, err
	}
	err = stream.FetchBytes(e.d, 0, total, e.limits.BlockSize, e.log, func(block []byte) error {
		done, err := loc.Feed(block)
		if err != nil {
			return err
		}
		if done {
			return errStopFetch
		}
		return nil
	})
	if err != nil && !errors.Is(err, errStopFetch) {
		return 0, err
	}
	if !loc.Done() {
		return 0, position.ErrIndexOutOfRange
	}
	return loc.Offset(), nil
}

// GraphemesInRange counts user-perceived characters in the byte range
// [start, end).
func (e *Editor) GraphemesInRange(start, end position.Pos) (int, error) {
	text, err := e.FetchRange(start, end)
	if err != nil {
		return 0, err
	}
	return position.Graphemes(text), nil
}
