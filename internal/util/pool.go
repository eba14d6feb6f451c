package util

import (
	"sync"
)

// BufferPool provides reusable byte buffers to reduce GC pressure during
// streaming file operations. Buffers are zeroed before being returned to
// the pool so plaintext never lingers in pooled memory.
type BufferPool struct {
	pool sync.Pool
	size int
}

// NewBufferPool creates a new buffer pool with the specified buffer size.
func NewBufferPool(size int) *BufferPool {
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

// Get retrieves a buffer from the pool.
// The buffer contents are undefined and should be overwritten.
func (p *BufferPool) Get() []byte {
	return *p.pool.Get().(*[]byte)
}

// Put returns a buffer to the pool after zeroing it.
// The buffer must not be used after calling Put.
func (p *BufferPool) Put(b []byte) {
	if len(b) != p.size {
		// Don't return mismatched buffers to avoid corruption
		return
	}
	for i := range b {
		b[i] = 0
	}
	p.pool.Put(&b)
}

// ReadPool provides 64 KiB buffers for the pack/unpack read loops.
var ReadPool = NewBufferPool(ReadBufSize)

// ComparePool provides 8 KiB buffers for lockstep file comparison.
var ComparePool = NewBufferPool(8 * KiB)
