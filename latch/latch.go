// Package latch holds "latest observed value" registers shared between host
// input goroutines and the engine's UI goroutine.
//
// Hosts publish whenever they observe something (a resize, a pointer sample,
// a visibility change). The engine never processes those writes synchronously;
// it takes the newest value once per frame. Intermediate values are dropped.
package latch

import (
	"sync"
	"sync/atomic"
)

// Value is a single-slot register with a sequence counter.
//
// The zero value is ready to use and has sequence 0 (nothing published).
type Value[T any] struct {
	_   [0]func() // prevent accidental copying.
	mu  sync.Mutex
	seq atomic.Uint64
	v   T
}

// Publish stores v and returns its sequence number.
func (l *Value[T]) Publish(v T) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.v = v
	return l.seq.Add(1)
}

// Update replaces the value with fn applied to it, atomically with respect to
// other writers, and publishes the result.
func (l *Value[T]) Update(fn func(T) T) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.v = fn(l.v)
	return l.seq.Add(1)
}

// Load returns the current value and its sequence number.
func (l *Value[T]) Load() (T, uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.v, l.seq.Load()
}

// Seq returns the sequence of the last publish without locking.
func (l *Value[T]) Seq() uint64 { return l.seq.Load() }

// Take returns the current value if it was published after since.
func (l *Value[T]) Take(since uint64) (v T, seq uint64, ok bool) {
	if l.seq.Load() == since {
		return v, since, false
	}
	v, seq = l.Load()
	return v, seq, seq != since
}

// Reader tracks what a single consumer has already seen.
type Reader[T any] struct {
	src  *Value[T]
	seen uint64
}

// NewReader returns a consumer cursor over src.
func NewReader[T any](src *Value[T]) *Reader[T] {
	return &Reader[T]{src: src}
}

// Next returns the newest value if it changed since the previous call.
func (r *Reader[T]) Next() (T, bool) {
	var zero T
	if r == nil || r.src == nil {
		return zero, false
	}
	v, seq, ok := r.src.Take(r.seen)
	if !ok {
		return zero, false
	}
	r.seen = seq
	return v, true
}

// Latest returns the newest value regardless of whether it was seen before.
func (r *Reader[T]) Latest() (T, bool) {
	var zero T
	if r == nil || r.src == nil {
		return zero, false
	}
	v, seq := r.src.Load()
	if seq == 0 {
		return zero, false
	}
	r.seen = seq
	return v, true
}
