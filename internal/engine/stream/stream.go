package stream

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/editkit/scibridge/internal/engine/call"
	"github.com/editkit/scibridge/internal/engine/codepage"
	"github.com/editkit/scibridge/internal/engine/marshal"
)

// DefaultBlockSize bounds the bytes carried by one engine call. It is policy,
// sized to bound peak memory and stay within native call-size practicalities.
const DefaultBlockSize = 1 << 20

// ErrStalledFetch is returned when a ranged fetch fails to advance on two
// consecutive iterations.
var ErrStalledFetch = errors.New("ranged fetch failed to advance")

// PartialWriteError reports an append call that consumed fewer bytes than
// requested. The operation is aborted; bytes already appended stay in place.
type PartialWriteError struct {
	Offset    int64
	Requested int64
	Written   int64
}

// Error implements the error interface.
func (e *PartialWriteError) Error() string {
	return fmt.Sprintf("engine consumed %d of %d bytes at offset %d", e.Written, e.Requested, e.Offset)
}

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

// Insert appends the bytes read from r to the document in blocks of at most
// blockSize, strictly in order, and returns the total bytes appended. The
// source must already be in the engine's byte encoding; each block travels
// on the length-counted path, never NUL-terminated.
func Insert(d call.Dispatcher, r io.Reader, blockSize int, log *slog.Logger) (int64, error) {
	if blockSize <= 0 {
		blockSize = DefaultBlockSize
	}
	if log == nil {
		log = discard
	}

	block := make([]byte, blockSize)
	var written int64
	for {
		n, rerr := io.ReadFull(r, block)
		if n > 0 {
			w, err := call.AppendBytes(d, block[:n])
			if err != nil {
				return written, err
			}
			if w != call.Word(n) {
				return written, &PartialWriteError{Offset: written, Requested: int64(n), Written: int64(w)}
			}
			written += int64(n)
			log.Debug("appended block", "bytes", n, "total", written)
		}

		if rerr == io.EOF || rerr == io.ErrUnexpectedEOF {
			return written, nil
		}
		if rerr != nil {
			return written, fmt.Errorf("reading insert source: %w", rerr)
		}
	}
}

// FetchBytes reads the byte range [start, end) in blocks of at most
// blockSize, passing each block of raw engine bytes to fn in document order.
// The loop advances by the bytes the engine actually returned for each call.
func FetchBytes(d call.Dispatcher, start, end int64, blockSize int, log *slog.Logger, fn func([]byte) error) error {
	if blockSize <= 0 {
		blockSize = DefaultBlockSize
	}
	if log == nil {
		log = discard
	}
	if start < 0 || end < start {
		return fmt.Errorf("invalid fetch range [%d, %d)", start, end)
	}

	buf := marshal.Acquire(blockSize)
	defer buf.Release()

	offset := start
	stalls := 0
	for offset < end {
		want := offset + int64(blockSize)
		if want > end {
			want = end
		}

		out := buf.Window(int(want - offset))
		n, err := call.GetTextRange(d, offset, want, out)
		if err != nil {
			return err
		}
		if n <= 0 {
			stalls++
			if stalls >= 2 {
				return ErrStalledFetch
			}
			continue
		}
		stalls = 0

		if err := fn(out[:n]); err != nil {
			return err
		}
		offset += int64(n)
		log.Debug("fetched block", "offset", offset, "bytes", n, "end", end)
	}
	return nil
}

// Fetch retrieves and decodes the byte range [0, total) as one string,
// decoding each block as it arrives so peak memory stays bounded by the
// block size plus the result.
func Fetch(d call.Dispatcher, total int64, blockSize int, enc codepage.Encoding, log *slog.Logger) (string, error) {
	cd, err := marshal.NewChunkDecoder(enc)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	err = FetchBytes(d, 0, total, blockSize, log, func(block []byte) error {
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
