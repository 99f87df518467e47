package swapbuf

import (
	"context"
	"runtime"
	"time"

	"github.com/zeebo/pcg"
)

// Backoff is called by the writer every time it finds an unpublished slot
// still referenced by a reader. spins counts the failed checks for the
// current wait, starting at zero.
type Backoff func(spins int)

// Yield gives up the processor on every spin.
func Yield(spins int) { runtime.Gosched() }

// yieldSpins is how many times Exponential yields before it starts sleeping.
const yieldSpins = 64

// Exponential returns a Backoff that yields for a while and then sleeps for
// jittered durations doubling from min up to max. The returned Backoff keeps
// random state and must only be used by a single Buffer.
func Exponential(min, max time.Duration) Backoff {
	if min <= 0 {
		min = time.Microsecond
	}
	if max < min {
		max = min
	}
	rng := pcg.New(uint64(time.Now().UnixNano()))

	return func(spins int) {
		if spins < yieldSpins {
			runtime.Gosched()
			return
		}

		d := max
		if shift := spins - yieldSpins; shift < 32 {
			if n := min << uint(shift); n > 0 && n < max {
				d = n
			}
		}

		// sleep somewhere in [d/2, d] so that the writer does not wake in
		// lockstep with readers that hold snapshots for a fixed time.
		half := d / 2
		time.Sleep(half + time.Duration(uint64(rng.Uint32())%uint64(half+1)))
	}
}

// wait spins until s is quiescent or ctx is done.
func (b *Buffer[T]) wait(ctx context.Context, s *slot[T]) error {
	backoff := b.backoff
	if backoff == nil {
		backoff = Yield
	}
	done := ctx.Done()

	for spins := 0; !s.quiescent(); spins++ {
		if done != nil {
			select {
			case <-done:
				return ctx.Err()
			default:
			}
		}
		backoff(spins)
	}
	return nil
}
