package swapbuf

import (
	"sync/atomic"

	"golang.org/x/sys/cpu"
)

// slot is one of the two copies of the value held by a Buffer. refs counts
// the outstanding Refs plus one for the Buffer itself, so a slot with a count
// of one is quiescent and may be mutated by the writer.
type slot[T any] struct {
	refs atomic.Int32
	_    cpu.CacheLinePad

	// gen and val are only written by the writer while the slot is not
	// published and is quiescent. synchronization for readers is provided by
	// the atomic loads and stores of the front pointer.
	gen uint64
	val T
	_   cpu.CacheLinePad
}

// init gives the slot the reference held by the Buffer. It is idempotent so
// that racing lazy initializations are harmless.
func (s *slot[T]) init() { s.refs.CompareAndSwap(0, 1) }

// acquire adds a reference to the slot.
func (s *slot[T]) acquire() { s.refs.Add(1) }

// release drops a reference to the slot.
func (s *slot[T]) release() {
	if s.refs.Add(-1) < 1 {
		panic("swapbuf: Ref released more than once")
	}
}

// quiescent reports if only the Buffer holds the slot.
func (s *slot[T]) quiescent() bool { return s.refs.Load() == 1 }
