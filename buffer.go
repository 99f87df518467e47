package swapbuf

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
)

// ErrDeferred is wrapped by the error returned from ModifyContext when the
// update was published but the context ended before the previous copy could
// be brought up to date. The next Modify finishes the job.
var ErrDeferred = errors.New("swapbuf: update published, catch-up deferred")

// Buffer holds two copies of a value. Readers get snapshots of the published
// copy without blocking while a single writer modifies the other one. The zero
// value is safe to use.
type Buffer[T any] struct {
	front atomic.Pointer[slot[T]]
	slots [2]slot[T]

	// the rest is only touched by the writer.
	writing atomic.Bool
	gen     uint64
	stale   func(*T) // update the unpublished slot missed
	backoff Backoff
}

// New returns a Buffer configured with the options.
func New[T any](opts ...Option) *Buffer[T] {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	b := &Buffer[T]{backoff: o.backoff}
	b.load()
	return b
}

// load returns the published slot, publishing the first one if nothing has
// been published yet.
func (b *Buffer[T]) load() *slot[T] {
	s := b.front.Load()
	if s == nil {
		b.slots[0].init()
		b.slots[1].init()
		b.front.CompareAndSwap(nil, &b.slots[0])
		s = b.front.Load()
	}
	return s
}

// other returns the slot that is not s.
func (b *Buffer[T]) other(s *slot[T]) *slot[T] {
	if s == &b.slots[0] {
		return &b.slots[1]
	}
	return &b.slots[0]
}

// Read returns a Ref to the currently published value. It never blocks and
// is safe to be called concurrently with everything.
func (b *Buffer[T]) Read() Ref[T] {
	return b.acquire(b.load())
}

// acquire claims a reference to s if it is still published, or to whatever
// slot is published by the time the claim is validated.
func (b *Buffer[T]) acquire(s *slot[T]) Ref[T] {
	for {
		s.acquire()

		// double check that the slot is still published to ensure that the
		// writer, which unpublishes before it waits, is aware of our reference.
		next := b.front.Load()
		if s == next {
			return Ref[T]{s: s}
		}

		// we lost the race and hold a slot the writer may be about to mutate.
		// try again with the published one.
		s.release()
		s = next
	}
}

// View calls fn with a snapshot of the published value, releasing it when fn
// returns or panics.
func (b *Buffer[T]) View(fn func(*T)) {
	ref := b.Read()
	defer ref.Release()
	fn(ref.Value())
}

// Modify applies fn to the unpublished copy, publishes it, waits for every
// Ref to the previously published copy to be Released and applies fn to that
// copy too. Since fn runs once per copy it must produce the same result on
// both. A panic in fn leaves the copy it was applied to partially modified,
// so fn should not panic after it starts mutating. Only one goroutine may be calling Modify or ModifyContext at a time,
// and it will spin forever if a Ref is never Released.
func (b *Buffer[T]) Modify(fn func(*T)) {
	_ = b.ModifyContext(context.Background(), fn)
}

// ModifyContext is like Modify but stops waiting for Refs when ctx is done.
// If that happens before fn is published, fn is not applied and the returned
// error wraps ctx.Err(). If it happens after, readers observe fn, the error
// also wraps ErrDeferred, and the next call applies fn to the other copy
// before doing anything else.
func (b *Buffer[T]) ModifyContext(ctx context.Context, fn func(*T)) error {
	if !b.writing.CompareAndSwap(false, true) {
		panic("swapbuf: concurrent calls to Modify")
	}
	defer b.writing.Store(false)

	back := b.other(b.load())

	if b.stale != nil {
		if err := b.wait(ctx, back); err != nil {
			return fmt.Errorf("swapbuf: update not published: %w", err)
		}
		b.stale(&back.val)
		back.gen = b.gen
		b.stale = nil
	}

	b.gen++
	fn(&back.val)
	back.gen = b.gen

	// publish. the previously published slot may still be held by readers, so
	// it can only be brought up to date once it is quiescent.
	prev := b.front.Swap(back)
	// prev lags behind until fn returns. if fn panics, the next call replays
	// it before publishing anything else.
	b.stale = fn
	if err := b.wait(ctx, prev); err != nil {
		return fmt.Errorf("%w: %w", ErrDeferred, err)
	}
	fn(&prev.val)
	prev.gen = b.gen
	b.stale = nil

	return nil
}
