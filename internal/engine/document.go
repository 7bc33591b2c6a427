package engine

import (
	"sync"

	"github.com/google/uuid"

	"github.com/editkit/scibridge/internal/engine/call"
)

// Document wraps a reference-counted engine document handle. The engine owns
// the document; this wrapper tracks the reference this layer holds so the
// handle is released exactly once and never used afterward.
type Document struct {
	id     uuid.UUID
	handle call.Word
	d      call.Dispatcher

	mu       sync.Mutex
	released bool
}

// CreateDocument creates a detached engine document. The returned wrapper
// owns one reference; call Release exactly once when done.
func (e *Editor) CreateDocument() (*Document, error) {
	handle, err := call.CreateDocument(e.d)
	if err != nil {
		return nil, err
	}

	doc := &Document{
		id:     uuid.New(),
		handle: handle,
		d:      e.d,
	}
	e.log.Debug("created document", "doc", doc.id.String(), "handle", int64(handle))
	return doc, nil
}

// ID returns this wrapper's identity, used in logs and registries. It is
// distinct from the engine handle.
func (doc *Document) ID() uuid.UUID {
	return doc.id
}

// Handle returns the engine handle, or ErrDocumentReleased after Release.
func (doc *Document) Handle() (call.Word, error) {
	doc.mu.Lock()
	defer doc.mu.Unlock()

	if doc.released {
		return 0, ErrDocumentReleased
	}
	return doc.handle, nil
}

// AddRef adds an engine reference to the document.
func (doc *Document) AddRef() error {
	doc.mu.Lock()
	defer doc.mu.Unlock()

	if doc.released {
		return ErrDocumentReleased
	}
	return call.AddRefDocument(doc.d, doc.handle)
}

// Release drops this wrapper's reference. The engine frees the document when
// the count reaches zero. Releasing twice is a caller error.
func (doc *Document) Release() error {
	doc.mu.Lock()
	defer doc.mu.Unlock()

	if doc.released {
		return ErrDocumentReleased
	}
	doc.released = true
	return call.ReleaseDocument(doc.d, doc.handle)
}
