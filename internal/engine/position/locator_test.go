package position

import (
	"testing"

	"github.com/editkit/scibridge/internal/engine/codepage"
)

// locate feeds data in chunkSize pieces until the locator is done.
func locate(t *testing.T, enc codepage.Encoding, data []byte, target CharIndex, chunkSize int) (Pos, bool) {
	t.Helper()

	loc, err := NewLocator(enc, target)
	if err != nil {
		t.Fatalf("new locator: %v", err)
	}
	for off := 0; off < len(data) && !loc.Done(); off += chunkSize {
		end := off + chunkSize
		if end > len(data) {
			end = len(data)
		}
		if _, err := loc.Feed(data[off:end]); err != nil {
			t.Fatalf("feed at %d: %v", off, err)
		}
	}
	return loc.Offset(), loc.Done()
}

func TestLocatorUTF8(t *testing.T) {
	data := []byte("héllo") // boundaries: 0,1,3,4,5,6

	tests := []struct {
		target CharIndex
		want   Pos
	}{
		{0, 0},
		{1, 1},
		{2, 3},
		{3, 4},
		{5, 6},
	}

	for chunkSize := 1; chunkSize <= 4; chunkSize++ {
		for _, tt := range tests {
			got, done := locate(t, codepage.UTF8, data, tt.target, chunkSize)
			if !done {
				t.Fatalf("chunk %d target %d: locator never finished", chunkSize, tt.target)
			}
			if got != tt.want {
				t.Errorf("chunk %d target %d: expected pos %d, got %d", chunkSize, tt.target, tt.want, got)
			}
		}
	}
}

func TestLocatorSingleByte(t *testing.T) {
	enc := codepage.Legacy(1252)
	data := []byte("abcdef")

	got, done := locate(t, enc, data, 4, 2)
	if !done || got != 4 {
		t.Errorf("expected pos 4 done, got %d done=%v", got, done)
	}
}

func TestLocatorDoubleByte(t *testing.T) {
	enc := codepage.Legacy(932)
	data := encodeOrFail(t, "a日b", enc) // boundaries: 0,1,3,4

	tests := []struct {
		target CharIndex
		want   Pos
	}{
		{0, 0},
		{1, 1},
		{2, 3},
		{3, 4},
	}

	for chunkSize := 1; chunkSize <= 3; chunkSize++ {
		for _, tt := range tests {
			got, done := locate(t, enc, data, tt.target, chunkSize)
			if !done {
				t.Fatalf("chunk %d target %d: locator never finished", chunkSize, tt.target)
			}
			if got != tt.want {
				t.Errorf("chunk %d target %d: expected pos %d, got %d", chunkSize, tt.target, tt.want, got)
			}
		}
	}
}

func TestLocatorPastEnd(t *testing.T) {
	loc, err := NewLocator(codepage.UTF8, 10)
	if err != nil {
		t.Fatalf("new locator: %v", err)
	}
	done, err := loc.Feed([]byte("ab"))
	if err != nil {
		t.Fatalf("feed: %v", err)
	}
	if done {
		t.Error("locator reported done before reaching target")
	}
}
