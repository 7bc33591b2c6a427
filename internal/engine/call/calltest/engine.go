// Package calltest provides an in-memory engine implementing the call
// contract, for tests and for driving the layer without a native engine.
//
// The fake honors every command's buffer convention bytewise: NUL-terminated
// inserts, length-counted appends, and text-out calls that report required
// capacity and truncate to the caller's buffer. Options inject the fault
// shapes the marshaling layer must survive: stalled ranged reads, partial
// appends, boundary-adjusted ranges, and forced error statuses.
package calltest

import (
	"bytes"

	"github.com/editkit/scibridge/internal/engine/call"
)

// Record captures one dispatched command for assertions.
type Record struct {
	Command call.Command
	Pos     call.Word
	N       call.Word
	InLen   int
	OutCap  int
}

// Engine is an in-memory engine. Not safe for concurrent use, matching the
// native engine's contract.
type Engine struct {
	doc  []byte
	page int

	selStart, selEnd       call.Word
	targetStart, targetEnd call.Word

	docs       map[call.Word]int
	nextHandle call.Word

	records []Record

	stallRanges    bool
	adjustRanges   bool
	partialAppends int
	failCommands   map[call.Command]call.Status
}

// Option configures the fake engine.
type Option func(*Engine)

// WithCodePage sets the initial code page. The default is 65001 (UTF-8).
func WithCodePage(page int) Option {
	return func(e *Engine) {
		e.page = page
	}
}

// WithDocument sets the initial document bytes.
func WithDocument(data []byte) Option {
	return func(e *Engine) {
		e.doc = append([]byte(nil), data...)
	}
}

// WithStalledRanges makes every ranged read return zero bytes, simulating an
// engine that never advances.
func WithStalledRanges() Option {
	return func(e *Engine) {
		e.stallRanges = true
	}
}

// WithBoundaryAdjustedRanges makes ranged reads shorten their end to the
// previous UTF-8 character boundary, simulating an engine that refuses to
// split characters.
func WithBoundaryAdjustedRanges() Option {
	return func(e *Engine) {
		e.adjustRanges = true
	}
}

// WithPartialAppends caps every append at n consumed bytes.
func WithPartialAppends(n int) Option {
	return func(e *Engine) {
		e.partialAppends = n
	}
}

// WithFailingCommand makes one command always complete with the given
// status.
func WithFailingCommand(cmd call.Command, status call.Status) Option {
	return func(e *Engine) {
		e.failCommands[cmd] = status
	}
}

// New creates a fake engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		page:         65001,
		docs:         make(map[call.Word]int),
		nextHandle:   1,
		failCommands: make(map[call.Command]call.Status),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Document returns the current document bytes.
func (e *Engine) Document() []byte {
	return append([]byte(nil), e.doc...)
}

// SetSelection sets the selection range used by the selection commands.
func (e *Engine) SetSelection(start, end call.Word) {
	e.selStart, e.selEnd = start, end
}

// RefCount returns the reference count of a document handle, 0 if freed.
func (e *Engine) RefCount(handle call.Word) int {
	return e.docs[handle]
}

// Records returns every dispatched command.
func (e *Engine) Records() []Record {
	return e.records
}

// RecordsFor returns the dispatched records for one command.
func (e *Engine) RecordsFor(cmd call.Command) []Record {
	var out []Record
	for _, r := range e.records {
		if r.Command == cmd {
			out = append(out, r)
		}
	}
	return out
}

func (e *Engine) fail(cmd call.Command, status call.Status) (call.Word, error) {
	return 0, &call.DispatchError{Command: cmd, Status: status}
}

// Dispatch implements call.Dispatcher.
func (e *Engine) Dispatch(req call.Request) (call.Word, error) {
	e.records = append(e.records, Record{
		Command: req.Command,
		Pos:     req.Pos,
		N:       req.N,
		InLen:   len(req.In),
		OutCap:  len(req.Out),
	})

	if status, ok := e.failCommands[req.Command]; ok {
		return e.fail(req.Command, status)
	}

	switch req.Command {
	case call.CmdGetCodePage:
		return call.Word(e.page), nil

	case call.CmdSetCodePage:
		e.page = int(req.N)
		return 0, nil

	case call.CmdGetLength:
		return call.Word(len(e.doc)), nil

	case call.CmdInsertText:
		nul := bytes.IndexByte(req.In, 0)
		if nul < 0 {
			return e.fail(req.Command, call.StatusFailure)
		}
		pos := int(req.Pos)
		if pos < 0 || pos > len(e.doc) {
			return e.fail(req.Command, call.StatusFailure)
		}
		e.doc = append(e.doc[:pos], append(append([]byte(nil), req.In[:nul]...), e.doc[pos:]...)...)
		return 0, nil

	case call.CmdAppendText:
		n := int(req.N)
		if n < 0 || n > len(req.In) {
			return e.fail(req.Command, call.StatusFailure)
		}
		if e.partialAppends > 0 && n > e.partialAppends {
			n = e.partialAppends
		}
		e.doc = append(e.doc, req.In[:n]...)
		return call.Word(n), nil

	case call.CmdGetTextRange:
		if e.stallRanges {
			return 0, nil
		}
		start, end := int(req.Pos), int(req.N)
		if start < 0 || end < start || end > len(e.doc) {
			return e.fail(req.Command, call.StatusFailure)
		}
		if e.adjustRanges && end < len(e.doc) {
			for end > start && e.doc[end]&0xC0 == 0x80 {
				end--
			}
		}
		n := copy(req.Out, e.doc[start:end])
		return call.Word(n), nil

	case call.CmdGetText:
		return textOut(req.Out, e.doc), nil

	case call.CmdGetSelText:
		start, end := int(e.selStart), int(e.selEnd)
		if start < 0 || end < start || end > len(e.doc) {
			return e.fail(req.Command, call.StatusFailure)
		}
		return textOut(req.Out, e.doc[start:end]), nil

	case call.CmdGetLine:
		line, ok := e.line(int(req.Pos))
		if !ok {
			return e.fail(req.Command, call.StatusFailure)
		}
		return textOut(req.Out, line), nil

	case call.CmdLineLength:
		line, ok := e.line(int(req.Pos))
		if !ok {
			return e.fail(req.Command, call.StatusFailure)
		}
		return call.Word(len(line)), nil

	case call.CmdGetSelStart:
		return e.selStart, nil

	case call.CmdGetSelEnd:
		return e.selEnd, nil

	case call.CmdSetTargetStart:
		e.targetStart = req.Pos
		return 0, nil

	case call.CmdSetTargetEnd:
		e.targetEnd = req.Pos
		return 0, nil

	case call.CmdReplaceTarget:
		n := int(req.N)
		start, end := int(e.targetStart), int(e.targetEnd)
		if n < 0 || n > len(req.In) || start < 0 || end < start || end > len(e.doc) {
			return e.fail(req.Command, call.StatusFailure)
		}
		e.doc = append(e.doc[:start], append(append([]byte(nil), req.In[:n]...), e.doc[end:]...)...)
		e.targetEnd = e.targetStart + call.Word(n)
		return call.Word(n), nil

	case call.CmdCreateDocument:
		h := e.nextHandle
		e.nextHandle++
		e.docs[h] = 1
		return h, nil

	case call.CmdAddRefDocument:
		if e.docs[req.Pos] == 0 {
			return e.fail(req.Command, call.StatusFailure)
		}
		e.docs[req.Pos]++
		return 0, nil

	case call.CmdReleaseDocument:
		if e.docs[req.Pos] == 0 {
			return e.fail(req.Command, call.StatusFailure)
		}
		e.docs[req.Pos]--
		if e.docs[req.Pos] == 0 {
			delete(e.docs, req.Pos)
		}
		return 0, nil

	case call.CmdGetStatus:
		return call.Word(call.StatusOK), nil

	default:
		return e.fail(req.Command, call.StatusFailure)
	}
}

// textOut fills out per the text-out convention: write at most len(out)
// bytes, terminate with NUL when the value fits, and return the required
// capacity counting the terminator.
func textOut(out, value []byte) call.Word {
	n := copy(out, value)
	if n < len(out) {
		out[n] = 0
	}
	return call.Word(len(value) + 1)
}

// line returns line n's bytes without line-end bytes.
func (e *Engine) line(n int) ([]byte, bool) {
	if n < 0 {
		return nil, false
	}
	rest := e.doc
	for i := 0; ; i++ {
		idx := bytes.IndexByte(rest, '\n')
		if i == n {
			if idx < 0 {
				return rest, true
			}
			line := rest[:idx]
			if len(line) > 0 && line[len(line)-1] == '\r' {
				line = line[:len(line)-1]
			}
			return line, true
		}
		if idx < 0 {
			return nil, false
		}
		rest = rest[idx+1:]
	}
}
