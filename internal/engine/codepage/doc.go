// Package codepage resolves and describes the engine's active byte encoding.
//
// The engine stores document text as raw bytes in one process-wide encoding:
// UTF-8 or a legacy single- or double-byte code page. The encoding is mutable
// engine state, so it is resolved at the start of every marshaling operation
// and threaded through as a value; nothing here caches it across operations.
//
// Codec maps known code page identifiers to their x/text codecs so the
// marshal and position packages can convert without knowing page numbers.
package codepage
