package marshal

import (
	"bytes"
	"errors"
	"testing"

	"github.com/editkit/scibridge/internal/engine/codepage"
)

func TestEncodeUTF8(t *testing.T) {
	data, err := Encode("héllo", codepage.UTF8)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	want := []byte{'h', 0xC3, 0xA9, 'l', 'l', 'o'}
	if !bytes.Equal(data, want) {
		t.Errorf("expected % x, got % x", want, data)
	}
}

func TestEncodeUTF8KeepsNUL(t *testing.T) {
	data, err := Encode("a\x00b", codepage.UTF8)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	if !bytes.Equal(data, []byte{'a', 0, 'b'}) {
		t.Errorf("length-counted encode must preserve NUL, got % x", data)
	}
}

func TestEncodeInvalidUTF8(t *testing.T) {
	_, err := Encode("ok\xff", codepage.UTF8)

	var encErr *EncodeError
	if !errors.As(err, &encErr) {
		t.Fatalf("expected *EncodeError, got %v", err)
	}
}

func TestEncodeLegacy(t *testing.T) {
	data, err := Encode("héllo", codepage.Legacy(1252))
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	want := []byte{'h', 0xE9, 'l', 'l', 'o'}
	if !bytes.Equal(data, want) {
		t.Errorf("expected % x, got % x", want, data)
	}
}

func TestEncodeUnrepresentable(t *testing.T) {
	// U+4E16 has no mapping in Windows-1252.
	_, err := Encode("世", codepage.Legacy(1252))

	var encErr *EncodeError
	if !errors.As(err, &encErr) {
		t.Fatalf("expected *EncodeError, got %v", err)
	}
	if encErr.Encoding.Page() != 1252 {
		t.Errorf("expected page 1252 in error, got %d", encErr.Encoding.Page())
	}
}

func TestEncodeTerminated(t *testing.T) {
	data, err := EncodeTerminated("hi", codepage.UTF8)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	if !bytes.Equal(data, []byte{'h', 'i', 0}) {
		t.Errorf("expected trailing NUL, got % x", data)
	}
}

func TestEncodeTerminatedRejectsNUL(t *testing.T) {
	_, err := EncodeTerminated("a\x00b", codepage.UTF8)

	var encErr *EncodeError
	if !errors.As(err, &encErr) {
		t.Fatalf("expected *EncodeError for interior NUL, got %v", err)
	}
}

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		enc  codepage.Encoding
		text string
	}{
		{"utf8 ascii", codepage.UTF8, "plain text"},
		{"utf8 accents", codepage.UTF8, "héllo wörld"},
		{"utf8 cjk", codepage.UTF8, "日本語のテキスト"},
		{"utf8 emoji", codepage.UTF8, "a🙂b"},
		{"utf8 empty", codepage.UTF8, ""},
		{"cp1252", codepage.Legacy(1252), "café naïve"},
		{"cp1251", codepage.Legacy(1251), "текст"},
		{"cp932", codepage.Legacy(932), "日本語abc"},
		{"ascii", codepage.Legacy(20127), "seven bit only"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := Encode(tt.text, tt.enc)
			if err != nil {
				t.Fatalf("encode failed: %v", err)
			}
			got, err := Decode(data, tt.enc)
			if err != nil {
				t.Fatalf("decode failed: %v", err)
			}
			if got != tt.text {
				t.Errorf("round trip changed text: %q -> %q", tt.text, got)
			}
		})
	}
}
