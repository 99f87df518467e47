package naive

import (
	"sync/atomic"
	"testing"

	"github.com/zeebo/assert"
)

type value struct {
	updating atomic.Bool
	n        atomic.Int64
}

func TestBuffer(t *testing.T) {
	var b Buffer[int]
	for i := 0; i < 10; i++ {
		ref := b.Read()
		assert.Equal(t, *ref.Value(), i)
		assert.Equal(t, b.Refs(b.Front()), 1)
		ref.Release()
		b.Modify(func(v *int) { *v++ })
	}
	assert.Equal(t, b.Refs(0), 0)
	assert.Equal(t, b.Refs(1), 0)
}

func TestBufferTornRead(t *testing.T) {
	var b Buffer[value]

	// the reader loads the index, and then the writer flips it and starts
	// updating the copy the reader is about to claim.
	i := b.Front()

	mid := make(chan struct{})
	finish := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		calls := 0
		b.Modify(func(v *value) {
			calls++
			v.updating.Store(true)
			if calls == 2 {
				close(mid)
				<-finish
			}
			v.n.Add(1)
			v.updating.Store(false)
		})
	}()

	<-mid
	ref := b.Claim(i)
	assert.That(t, ref.Value().updating.Load())

	close(finish)
	<-done
	ref.Release()
}
