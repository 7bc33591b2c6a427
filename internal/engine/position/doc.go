// Package position translates between the engine's byte offsets and
// character indexes.
//
// The engine addresses its document by byte offset. Under UTF-8 or a
// double-byte code page a byte offset is not a character count, so
// translation scans bytes from a known boundary counting Unicode scalar
// values. Translations are exact inverses on valid boundaries: a position
// strictly inside a multi-byte sequence is rejected with ErrInvalidPosition
// rather than rounded; AlignDown is the explicit rounding alternative.
//
// The Scanner counts characters incrementally across chunk boundaries so a
// large document can be translated without materializing it.
//
// Grapheme helpers (user-perceived characters) operate on decoded text and
// are independent of the engine's byte encoding.
package position
