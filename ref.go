package swapbuf

// Ref is a snapshot of a Buffer's published value. The value it points at is
// not modified until the Ref is Released, and a Modify will spin until that
// happens, so Refs should be short lived.
type Ref[T any] struct {
	s *slot[T]
}

// Value returns the snapshot. It must be treated as read-only and must not be
// used after Release.
func (r Ref[T]) Value() *T { return &r.s.val }

// Gen returns the number of Modify calls that were published when the
// snapshot was taken.
func (r Ref[T]) Gen() uint64 { return r.s.gen }

// Release invalidates the Ref and must be called exactly once.
func (r Ref[T]) Release() { r.s.release() }
