// Package marshal converts text between the caller's Unicode strings and the
// engine's raw document bytes.
//
// Outbound, Encode produces length-counted byte sequences and
// EncodeTerminated produces NUL-terminated ones; the two shapes must never be
// mixed on one call because length-counted payloads may legitimately contain
// zero bytes.
//
// Inbound, two response shapes exist. When the engine pre-declares the byte
// length, FetchSized allocates exactly once. When the length is unknown,
// FetchRetry starts from a default-capacity buffer and regrows to the
// engine-reported requirement; the regrow is mandatory and bounded by a retry
// budget. Decoding is strict: malformed bytes surface as *DecodeError rather
// than being silently replaced, preserving round-trip fidelity.
//
// Buffers handed to the engine are pooled; every fetch path releases its
// buffer on success and on error.
package marshal
