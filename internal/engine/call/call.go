package call

import "fmt"

// Word is the machine word exchanged with the native engine. Positions,
// lengths, code pages, and document handles all travel as words.
type Word = int64

// Command identifies a native engine message.
type Command uint32

// Command numbers understood by the engine. The values are part of the native
// wire contract and must not be renumbered.
const (
	CmdInsertText      Command = 2003 // Pos=position, In=NUL-terminated bytes
	CmdGetLength       Command = 2006 // returns document length in bytes
	CmdGetCodePage     Command = 2137 // returns active code page identifier
	CmdSetCodePage     Command = 2037 // N=code page identifier
	CmdGetSelText      Command = 2161 // Out=buffer, returns required capacity
	CmdGetTextRange    Command = 2162 // Pos=start, N=end, Out=buffer
	CmdGetText         Command = 2182 // Out=buffer, returns required capacity
	CmdGetLine         Command = 2153 // Pos=line, Out=buffer, returns required capacity
	CmdLineLength      Command = 2350 // Pos=line, returns line length in bytes
	CmdGetSelStart     Command = 2143 // returns selection start position
	CmdGetSelEnd       Command = 2145 // returns selection end position
	CmdSetTargetStart  Command = 2190 // Pos=position
	CmdSetTargetEnd    Command = 2192 // Pos=position
	CmdReplaceTarget   Command = 2194 // N=byte length, In=length-counted bytes
	CmdAppendText      Command = 2282 // N=byte length, In=length-counted bytes
	CmdGetStatus       Command = 2383 // returns last error status
	CmdCreateDocument  Command = 2375 // returns new document handle
	CmdAddRefDocument  Command = 2376 // Pos=document handle
	CmdReleaseDocument Command = 2377 // Pos=document handle
)

// String returns the command name for diagnostics.
func (c Command) String() string {
	switch c {
	case CmdInsertText:
		return "insert-text"
	case CmdGetLength:
		return "get-length"
	case CmdGetCodePage:
		return "get-code-page"
	case CmdSetCodePage:
		return "set-code-page"
	case CmdGetSelText:
		return "get-sel-text"
	case CmdGetTextRange:
		return "get-text-range"
	case CmdGetText:
		return "get-text"
	case CmdGetLine:
		return "get-line"
	case CmdLineLength:
		return "line-length"
	case CmdGetSelStart:
		return "get-sel-start"
	case CmdGetSelEnd:
		return "get-sel-end"
	case CmdSetTargetStart:
		return "set-target-start"
	case CmdSetTargetEnd:
		return "set-target-end"
	case CmdReplaceTarget:
		return "replace-target"
	case CmdAppendText:
		return "append-text"
	case CmdGetStatus:
		return "get-status"
	case CmdCreateDocument:
		return "create-document"
	case CmdAddRefDocument:
		return "addref-document"
	case CmdReleaseDocument:
		return "release-document"
	default:
		return fmt.Sprintf("command(%d)", uint32(c))
	}
}

// Status is the engine's error status word.
type Status Word

// Status words reported by the engine.
const (
	StatusOK       Status = 0
	StatusFailure  Status = 1
	StatusBadAlloc Status = 2
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusFailure:
		return "failure"
	case StatusBadAlloc:
		return "bad-alloc"
	default:
		return fmt.Sprintf("status(%d)", Word(s))
	}
}

// Request describes one engine call.
//
// Pos and N are the two numeric word parameters. In is an optional payload
// the engine reads; its interpretation (NUL-terminated or length-counted) is
// fixed per command. Out is an optional caller-owned buffer the engine writes
// into; the engine never retains it past the call.
type Request struct {
	Command Command
	Pos     Word
	N       Word
	In      []byte
	Out     []byte
}

// Dispatcher issues one synchronous, blocking engine call. Implementations
// must surface a non-ok engine status as *DispatchError and must not retry.
// Dispatchers are not assumed safe for concurrent callers; callers serialize.
type Dispatcher interface {
	Dispatch(req Request) (Word, error)
}

// DispatchError reports an engine call that completed with a non-ok status.
type DispatchError struct {
	Command Command
	Status  Status
}

// Error implements the error interface.
func (e *DispatchError) Error() string {
	return fmt.Sprintf("engine call %s failed: %s", e.Command, e.Status)
}
