package stress

import (
	"github.com/zeebo/swapbuf"
	"github.com/zeebo/swapbuf/internal/naive"
)

// Target is a double buffer of Payloads.
type Target interface {
	// Read returns the published Payload and a function to release it.
	Read() (*Payload, func())
	// Modify applies fn to the Payload. It is only called by one goroutine.
	Modify(fn func(*Payload))
}

// Safe adapts a swapbuf.Buffer.
func Safe(b *swapbuf.Buffer[Payload]) Target { return safeTarget{b: b} }

type safeTarget struct{ b *swapbuf.Buffer[Payload] }

func (t safeTarget) Read() (*Payload, func()) {
	ref := t.b.Read()
	return ref.Value(), ref.Release
}

func (t safeTarget) Modify(fn func(*Payload)) { t.b.Modify(fn) }

// Naive adapts a naive.Buffer. If gap is not nil it is called between loading
// the index and claiming the copy, widening the window where reads tear.
func Naive(b *naive.Buffer[Payload], gap func()) Target {
	return naiveTarget{b: b, gap: gap}
}

type naiveTarget struct {
	b   *naive.Buffer[Payload]
	gap func()
}

func (t naiveTarget) Read() (*Payload, func()) {
	i := t.b.Front()
	if t.gap != nil {
		t.gap()
	}
	ref := t.b.Claim(i)
	return ref.Value(), ref.Release
}

func (t naiveTarget) Modify(fn func(*Payload)) { t.b.Modify(fn) }
