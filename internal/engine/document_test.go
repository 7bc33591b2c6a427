package engine

import (
	"errors"
	"testing"
)

func TestDocumentLifecycle(t *testing.T) {
	ed, fake := newEditor(t)

	doc, err := ed.CreateDocument()
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	handle, err := doc.Handle()
	if err != nil {
		t.Fatalf("handle failed: %v", err)
	}
	if fake.RefCount(handle) != 1 {
		t.Errorf("expected refcount 1, got %d", fake.RefCount(handle))
	}

	if err := doc.AddRef(); err != nil {
		t.Fatalf("addref failed: %v", err)
	}
	if fake.RefCount(handle) != 2 {
		t.Errorf("expected refcount 2, got %d", fake.RefCount(handle))
	}

	if err := doc.Release(); err != nil {
		t.Fatalf("release failed: %v", err)
	}
	if fake.RefCount(handle) != 1 {
		t.Errorf("expected refcount 1 after release, got %d", fake.RefCount(handle))
	}
}

func TestDocumentUseAfterRelease(t *testing.T) {
	ed, _ := newEditor(t)

	doc, err := ed.CreateDocument()
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := doc.Release(); err != nil {
		t.Fatalf("release failed: %v", err)
	}

	if err := doc.Release(); !errors.Is(err, ErrDocumentReleased) {
		t.Errorf("expected ErrDocumentReleased on double release, got %v", err)
	}
	if err := doc.AddRef(); !errors.Is(err, ErrDocumentReleased) {
		t.Errorf("expected ErrDocumentReleased on addref, got %v", err)
	}
	if _, err := doc.Handle(); !errors.Is(err, ErrDocumentReleased) {
		t.Errorf("expected ErrDocumentReleased on handle, got %v", err)
	}
}

func TestDocumentIdentity(t *testing.T) {
	ed, _ := newEditor(t)

	a, err := ed.CreateDocument()
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	b, err := ed.CreateDocument()
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if a.ID() == b.ID() {
		t.Error("expected distinct document identities")
	}
}
