// Package naive contains the index flipping double buffer that swapbuf.Buffer
// replaces. It is kept to show that it tears under load, and must not be used
// for anything else.
package naive

import (
	"runtime"
	"sync/atomic"
)

type slot[T any] struct {
	refs atomic.Int32 // outstanding Refs
	val  T
}

// Buffer holds two copies of a value and an index of the published one.
// The zero value is safe to use.
type Buffer[T any] struct {
	index atomic.Int32
	slots [2]slot[T]
}

// Ref is a claimed copy of the value.
type Ref[T any] struct {
	s *slot[T]
}

// Value returns the claimed copy.
func (r Ref[T]) Value() *T { return &r.s.val }

// Release drops the claim and must be called exactly once.
func (r Ref[T]) Release() { r.s.refs.Add(-1) }

// Front returns the index of the published copy.
func (b *Buffer[T]) Front() int { return int(b.index.Load()) }

// Claim takes a reference to the copy at index i.
func (b *Buffer[T]) Claim(i int) Ref[T] {
	s := &b.slots[i]
	s.refs.Add(1)
	return Ref[T]{s: s}
}

// Refs returns the number of outstanding Refs to the copy at index i.
func (b *Buffer[T]) Refs(i int) int { return int(b.slots[i].refs.Load()) }

// Read returns a Ref to the published copy. Nothing prevents the writer from
// flipping the index and modifying the copy between the two steps.
func (b *Buffer[T]) Read() Ref[T] { return b.Claim(b.Front()) }

// Modify applies fn to the unpublished copy, flips the index, waits for the
// previous copy to have no Refs and applies fn to it. It must not be called
// concurrently.
func (b *Buffer[T]) Modify(fn func(*T)) {
	cur := b.index.Load()
	next := 1 - cur

	fn(&b.slots[next].val)
	b.index.Store(next)
	for b.slots[cur].refs.Load() != 0 {
		runtime.Gosched()
	}
	fn(&b.slots[cur].val)
}
