// Package pool provides reusable I/O buffers for file copies. The
// pipeline executes commands one at a time, but the pool still pays off
// across the thousands of copies a pass can perform: one steady-state
// buffer instead of one allocation per file.
package pool

import "sync"

const defaultBufferKB = 256

// BufferPool hands out fixed-size byte slices. Safe for concurrent use.
type BufferPool struct {
	size int
	pool sync.Pool
}

// NewBufferPool creates a pool of sizeKB-kilobyte buffers. A
// non-positive size falls back to the default.
func NewBufferPool(sizeKB int) *BufferPool {
	if sizeKB <= 0 {
		sizeKB = defaultBufferKB
	}
	size := sizeKB * 1024
	return &BufferPool{
		size: size,
		pool: sync.Pool{
			New: func() any {
				b := make([]byte, size)
				return &b
			},
		},
	}
}

// Get retrieves a buffer. The pointer indirection avoids an allocation
// on every Put (slices stored directly in a sync.Pool escape).
func (p *BufferPool) Get() *[]byte {
	return p.pool.Get().(*[]byte)
}

// Put returns a buffer to the pool. The length is reset to the full
// capacity so io.CopyBuffer always sees the whole buffer.
func (p *BufferPool) Put(b *[]byte) {
	*b = (*b)[:cap(*b)]
	p.pool.Put(b)
}
