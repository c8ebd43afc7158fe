package ocr

import (
	"bytes"
	"context"
)

// BufferPool is a fixed-size pool of reusable byte buffers for page-image
// encoding. Get blocks while the pool is exhausted so concurrent page workers
// respect the memory budget instead of allocating past it.
type BufferPool struct {
	buffers chan *bytes.Buffer
}

// NewBufferPool pre-populates a pool of size buffers, each with the given
// initial capacity.
func NewBufferPool(size, capacity int) *BufferPool {
	if size < 1 {
		size = 1
	}
	pool := &BufferPool{buffers: make(chan *bytes.Buffer, size)}
	for i := 0; i < size; i++ {
		buf := &bytes.Buffer{}
		buf.Grow(capacity)
		pool.buffers <- buf
	}
	return pool
}

// Get borrows a buffer, blocking until one is available or ctx is done.
func (p *BufferPool) Get(ctx context.Context) (*bytes.Buffer, error) {
	select {
	case buf := <-p.buffers:
		return buf, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Put resets and returns a borrowed buffer. Callers should pair Get with a
// deferred Put so early returns cannot leak buffers.
func (p *BufferPool) Put(buf *bytes.Buffer) {
	if buf == nil {
		return
	}
	buf.Reset()
	select {
	case p.buffers <- buf:
	default:
		// Foreign buffer returned to a full pool; drop it.
	}
}
