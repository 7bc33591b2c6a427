package engine

import (
	"errors"
	"strings"
	"testing"

	"github.com/editkit/scibridge/internal/config"
	"github.com/editkit/scibridge/internal/engine/call"
	"github.com/editkit/scibridge/internal/engine/call/calltest"
	"github.com/editkit/scibridge/internal/engine/codepage"
	"github.com/editkit/scibridge/internal/engine/position"
)

func newEditor(t *testing.T, opts ...calltest.Option) (*Editor, *calltest.Engine) {
	t.Helper()
	fake := calltest.New(opts...)
	return New(fake), fake
}

func TestInsertAndFetchAllUTF8(t *testing.T) {
	ed, fake := newEditor(t)

	if err := ed.InsertText(0, "héllo"); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if got := len(fake.Document()); got != 6 {
		t.Errorf("expected 6 document bytes, got %d", got)
	}

	text, err := ed.FetchAll()
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if text != "héllo" {
		t.Errorf("expected %q, got %q", "héllo", text)
	}
}

func TestCharIndexOfMidSequence(t *testing.T) {
	ed, _ := newEditor(t)

	if err := ed.InsertText(0, "héllo"); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	// Position 2 is the continuation byte of the two-byte é: the policy is
	// to reject, never to return a silently wrong index.
	_, err := ed.CharIndexOf(2)
	if !errors.Is(err, position.ErrInvalidPosition) {
		t.Fatalf("expected ErrInvalidPosition, got %v", err)
	}

	idx, err := ed.CharIndexOf(3)
	if err != nil {
		t.Fatalf("char index failed: %v", err)
	}
	if idx != 2 {
		t.Errorf("expected char index 2 after é, got %d", idx)
	}
}

func TestSingleBytePositionsCoincide(t *testing.T) {
	ed, _ := newEditor(t, calltest.WithCodePage(1252))

	if err := ed.InsertText(0, "plain ascii"); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	total, err := ed.Length()
	if err != nil {
		t.Fatalf("length failed: %v", err)
	}
	for p := int64(0); p <= total; p++ {
		idx, err := ed.CharIndexOf(position.Pos(p))
		if err != nil {
			t.Fatalf("pos %d: %v", p, err)
		}
		if int64(idx) != p {
			t.Errorf("pos %d: expected identical index, got %d", p, idx)
		}
	}
}

func TestPositionInverseThroughEngine(t *testing.T) {
	// Small block size forces the translation scans through the chunked
	// path.
	fake := calltest.New()
	limits := config.Default()
	limits.BlockSize = 4
	ed := New(fake, WithLimits(limits))

	if err := ed.InsertText(0, "a日b語c"); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	total, err := ed.Length()
	if err != nil {
		t.Fatalf("length failed: %v", err)
	}
	for p := int64(0); p <= total; p++ {
		idx, err := ed.CharIndexOf(position.Pos(p))
		if errors.Is(err, position.ErrInvalidPosition) {
			continue
		}
		if err != nil {
			t.Fatalf("pos %d: %v", p, err)
		}
		back, err := ed.PositionOf(idx)
		if err != nil {
			t.Fatalf("index %d: %v", idx, err)
		}
		if int64(back) != p {
			t.Errorf("pos %d -> index %d -> pos %d, want exact inverse", p, idx, back)
		}
	}
}

func TestFetchRange(t *testing.T) {
	ed, _ := newEditor(t)

	if err := ed.InsertText(0, "héllo wörld"); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	got, err := ed.FetchRange(0, 3) // h + 2-byte é
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if got != "hé" {
		t.Errorf("expected %q, got %q", "hé", got)
	}

	if _, err := ed.FetchRange(3, 1); !errors.Is(err, ErrRangeInvalid) {
		t.Errorf("expected ErrRangeInvalid, got %v", err)
	}
	if got, err := ed.FetchRange(2, 2); err != nil || got != "" {
		t.Errorf("expected empty range, got %q err %v", got, err)
	}
}

func TestFetchRangeChunked(t *testing.T) {
	fake := calltest.New()
	limits := config.Default()
	limits.BlockSize = 4
	ed := New(fake, WithLimits(limits))

	text := "日本語日本語"
	if err := ed.InsertText(0, text); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	got, err := ed.FetchRange(0, position.Pos(len(text)))
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if got != text {
		t.Errorf("expected %q, got %q", text, got)
	}
}

func TestFetchSelectionRetries(t *testing.T) {
	// Selection three times the default buffer: the grow-and-retry path
	// must produce the full selection with exactly one retry.
	big := strings.Repeat("s", 30000)
	fake := calltest.New(calltest.WithDocument([]byte(big)))
	fake.SetSelection(0, 30000)
	ed := New(fake)

	got, err := ed.FetchSelection()
	if err != nil {
		t.Fatalf("fetch selection failed: %v", err)
	}
	if got != big {
		t.Errorf("expected %d bytes, got %d", len(big), len(got))
	}

	if calls := len(fake.RecordsFor(call.CmdGetSelText)); calls != 2 {
		t.Errorf("expected 2 selection calls (one retry), got %d", calls)
	}
}

func TestFetchLine(t *testing.T) {
	ed, _ := newEditor(t)

	if err := ed.InsertText(0, "first\nsécond\nthird"); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	got, err := ed.FetchLine(1)
	if err != nil {
		t.Fatalf("fetch line failed: %v", err)
	}
	if got != "sécond" {
		t.Errorf("expected %q, got %q", "sécond", got)
	}
}

func TestReplaceTargetWithEmbeddedNUL(t *testing.T) {
	ed, fake := newEditor(t)

	if err := ed.InsertText(0, "abcdef"); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if err := ed.ReplaceTarget(1, 4, "x\x00y"); err != nil {
		t.Fatalf("replace failed: %v", err)
	}

	want := "ax\x00yef"
	if got := string(fake.Document()); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestSetEncodingRoundTrip(t *testing.T) {
	ed, _ := newEditor(t, calltest.WithCodePage(1252))

	enc, err := ed.Encoding()
	if err != nil {
		t.Fatalf("encoding failed: %v", err)
	}
	if enc.Page() != 1252 {
		t.Errorf("expected page 1252, got %d", enc.Page())
	}

	if err := ed.SetEncoding(codepage.UTF8); err != nil {
		t.Fatalf("set encoding failed: %v", err)
	}
	enc, err = ed.Encoding()
	if err != nil {
		t.Fatalf("encoding failed: %v", err)
	}
	if !enc.IsUTF8() {
		t.Errorf("expected UTF-8 after set, got %s", enc)
	}
}

func TestUnencodableInsertSurfaces(t *testing.T) {
	ed, fake := newEditor(t, calltest.WithCodePage(1252))

	err := ed.InsertText(0, "日本語")
	if err == nil {
		t.Fatal("expected encode error for unrepresentable text")
	}
	if len(fake.Document()) != 0 {
		t.Error("document must be untouched after encode failure")
	}
}

func TestDispatchErrorSurfaces(t *testing.T) {
	ed, _ := newEditor(t, calltest.WithFailingCommand(call.CmdGetLength, call.StatusBadAlloc))

	_, err := ed.Length()
	var dispErr *call.DispatchError
	if !errors.As(err, &dispErr) {
		t.Fatalf("expected *DispatchError, got %v", err)
	}
	if dispErr.Status != call.StatusBadAlloc {
		t.Errorf("expected bad-alloc status, got %s", dispErr.Status)
	}
}

func TestGraphemesInRange(t *testing.T) {
	ed, _ := newEditor(t)

	if err := ed.InsertText(0, "héllo"); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	n, err := ed.GraphemesInRange(0, 6)
	if err != nil {
		t.Fatalf("graphemes failed: %v", err)
	}
	if n != 5 {
		t.Errorf("expected 5 graphemes, got %d", n)
	}
}
