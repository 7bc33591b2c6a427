package marshal

import "sync"

// Buffer is a pooled, growable byte container handed to the engine as a
// call-scoped output buffer. Acquire one immediately before a call and
// Release it on every exit path; contents are undefined after Release.
type Buffer struct {
	data []byte
}

var bufferPool = sync.Pool{
	New: func() any {
		return &Buffer{data: make([]byte, DefaultBufferSize)}
	},
}

// Acquire returns a buffer with capacity for at least size bytes.
func Acquire(size int) *Buffer {
	b := bufferPool.Get().(*Buffer)
	if cap(b.data) < size {
		b.data = make([]byte, size)
	}
	return b
}

// Window returns a zeroed slice of exactly size bytes backed by the buffer,
// growing the buffer if needed. Any previous window is invalidated.
func (b *Buffer) Window(size int) []byte {
	if cap(b.data) < size {
		b.data = make([]byte, size)
	}
	w := b.data[:size]
	for i := range w {
		w[i] = 0
	}
	return w
}

// Release returns the buffer to the pool. The buffer and any window obtained
// from it must not be used afterward.
func (b *Buffer) Release() {
	bufferPool.Put(b)
}
