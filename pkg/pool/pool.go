// Package pool provides typed object pooling for the columnar engine.
// The writer assembles every page payload in a pooled buffer that is
// reused across pages and row groups.
package pool

import (
	"sync"
	"sync/atomic"
)

// Pool represents a generic object pool with type safety.
// It wraps sync.Pool with statistics tracking and automatic reset.
type Pool[T any] struct {
	pool  sync.Pool
	reset func(T)
	stats struct {
		allocated int64
		hits      int64
	}
}

// New creates a new typed pool with custom allocation and reset functions.
// The reset function, if non-nil, is called before an object is returned
// to the pool.
func New[T any](newFn func() T, reset func(T)) *Pool[T] {
	p := &Pool[T]{reset: reset}
	p.pool.New = func() interface{} {
		atomic.AddInt64(&p.stats.allocated, 1)
		return newFn()
	}
	return p
}

// Get retrieves an object from the pool
func (p *Pool[T]) Get() T {
	atomic.AddInt64(&p.stats.hits, 1)
	return p.pool.Get().(T)
}

// Put returns an object to the pool after resetting it
func (p *Pool[T]) Put(obj T) {
	if p.reset != nil {
		p.reset(obj)
	}
	p.pool.Put(obj)
}

// Stats returns cumulative pool counters
func (p *Pool[T]) Stats() (allocated, hits int64) {
	return atomic.LoadInt64(&p.stats.allocated), atomic.LoadInt64(&p.stats.hits)
}

// Buffer is a reusable byte slice handle
type Buffer struct {
	B []byte
}

var bufferPool = New(
	func() *Buffer { return &Buffer{B: make([]byte, 0, 4096)} },
	func(b *Buffer) { b.B = b.B[:0] },
)

// GetBuffer retrieves a pooled buffer with zero length
func GetBuffer() *Buffer {
	return bufferPool.Get()
}

// PutBuffer returns a buffer to the pool
func PutBuffer(b *Buffer) {
	bufferPool.Put(b)
}
