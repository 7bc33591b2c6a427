package call

// Typed operation wrappers. Each wrapper fixes the parameter layout for one
// command so upper layers never assemble raw Requests.
//
// Text-out commands (GetText, GetSelText, GetLine) share one buffer
// convention: the engine writes at most len(out) bytes and returns the
// required capacity in bytes, counting a single trailing NUL terminator. The
// value is complete only when the returned word is <= len(out); a larger
// return is the truncation signal and the caller must reissue the call with
// a buffer of at least that capacity.

// GetCodePage returns the engine's active code page identifier.
func GetCodePage(d Dispatcher) (Word, error) {
	return d.Dispatch(Request{Command: CmdGetCodePage})
}

// SetCodePage changes the engine's active code page.
func SetCodePage(d Dispatcher, page Word) error {
	_, err := d.Dispatch(Request{Command: CmdSetCodePage, N: page})
	return err
}

// GetLength returns the document length in bytes.
func GetLength(d Dispatcher) (Word, error) {
	return d.Dispatch(Request{Command: CmdGetLength})
}

// InsertBytes inserts a NUL-terminated byte sequence at the given byte
// position. The data must carry exactly one terminator as its final byte;
// the engine reads up to, not including, the terminator.
func InsertBytes(d Dispatcher, pos Word, data []byte) error {
	_, err := d.Dispatch(Request{Command: CmdInsertText, Pos: pos, In: data})
	return err
}

// AppendBytes appends a length-counted byte sequence to the document end and
// returns the number of bytes the engine consumed. The data may contain NUL
// bytes; no terminator is read or expected.
func AppendBytes(d Dispatcher, data []byte) (Word, error) {
	return d.Dispatch(Request{Command: CmdAppendText, N: Word(len(data)), In: data})
}

// GetTextRange copies the bytes in [start, end) into out and returns the
// number of data bytes written. The caller sizes out to at least end-start.
func GetTextRange(d Dispatcher, start, end Word, out []byte) (Word, error) {
	return d.Dispatch(Request{Command: CmdGetTextRange, Pos: start, N: end, Out: out})
}

// GetText copies the whole document into out per the text-out convention.
func GetText(d Dispatcher, out []byte) (Word, error) {
	return d.Dispatch(Request{Command: CmdGetText, Out: out})
}

// GetSelText copies the current selection into out per the text-out
// convention.
func GetSelText(d Dispatcher, out []byte) (Word, error) {
	return d.Dispatch(Request{Command: CmdGetSelText, Out: out})
}

// GetLine copies one line, without its terminator, into out per the text-out
// convention.
func GetLine(d Dispatcher, line Word, out []byte) (Word, error) {
	return d.Dispatch(Request{Command: CmdGetLine, Pos: line, Out: out})
}

// LineLength returns the byte length of a line, excluding line-end bytes.
func LineLength(d Dispatcher, line Word) (Word, error) {
	return d.Dispatch(Request{Command: CmdLineLength, Pos: line})
}

// GetSelectionStart returns the selection start byte position.
func GetSelectionStart(d Dispatcher) (Word, error) {
	return d.Dispatch(Request{Command: CmdGetSelStart})
}

// GetSelectionEnd returns the selection end byte position.
func GetSelectionEnd(d Dispatcher) (Word, error) {
	return d.Dispatch(Request{Command: CmdGetSelEnd})
}

// SetTarget sets the engine's target range for a following ReplaceTarget.
func SetTarget(d Dispatcher, start, end Word) error {
	if _, err := d.Dispatch(Request{Command: CmdSetTargetStart, Pos: start}); err != nil {
		return err
	}
	_, err := d.Dispatch(Request{Command: CmdSetTargetEnd, Pos: end})
	return err
}

// ReplaceTarget replaces the engine's target range with a length-counted byte
// sequence. The data may contain NUL bytes.
func ReplaceTarget(d Dispatcher, data []byte) (Word, error) {
	return d.Dispatch(Request{Command: CmdReplaceTarget, N: Word(len(data)), In: data})
}

// CreateDocument creates a detached document and returns its handle. The
// handle starts with one reference owned by the caller.
func CreateDocument(d Dispatcher) (Word, error) {
	return d.Dispatch(Request{Command: CmdCreateDocument})
}

// AddRefDocument adds a reference to a document handle.
func AddRefDocument(d Dispatcher, handle Word) error {
	_, err := d.Dispatch(Request{Command: CmdAddRefDocument, Pos: handle})
	return err
}

// ReleaseDocument drops a reference to a document handle. The engine frees
// the document when the count reaches zero.
func ReleaseDocument(d Dispatcher, handle Word) error {
	_, err := d.Dispatch(Request{Command: CmdReleaseDocument, Pos: handle})
	return err
}
