// Package engine exposes the typed text operations of the native engine to
// Unicode callers.
//
// The Editor composes the lower layers: codepage resolves the engine's
// active encoding at the start of every text-bearing operation, marshal
// converts between strings and engine bytes, position translates byte
// offsets and character indexes, and stream moves large documents in
// bounded chunks. All operations are synchronous and blocking; the engine is
// not reentrant-safe, so callers serialize access to one Editor.
//
// Document handles obtained from CreateDocument are reference-counted engine
// resources: release each exactly once and never use it afterward.
package engine
