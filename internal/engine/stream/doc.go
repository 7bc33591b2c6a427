// Package stream moves arbitrarily large documents across the engine
// boundary in bounded-memory chunks.
//
// Insert issues ordered, length-counted append calls; the engine contract is
// all-or-nothing per block, so a short write aborts the operation as a
// *PartialWriteError with no rollback of what was already appended.
//
// Fetch issues ranged reads and advances by the bytes the engine actually
// returned, tolerating engines that shorten a range to a character boundary.
// An offset that fails to advance on two consecutive iterations aborts with
// ErrStalledFetch instead of looping forever.
package stream
