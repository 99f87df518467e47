package swapbuf

import (
	"testing"

	"github.com/zeebo/assert"
)

func TestSlot(t *testing.T) {
	var s slot[int]
	s.init()
	s.init()
	assert.That(t, s.quiescent())

	s.acquire()
	assert.That(t, !s.quiescent())
	for i := 0; i < 10; i++ {
		s.acquire()
		s.release()
	}
	assert.That(t, !s.quiescent())
	s.release()
	assert.That(t, s.quiescent())
}

func TestSlotDoubleRelease(t *testing.T) {
	var s slot[int]
	s.init()
	s.acquire()
	s.release()

	defer func() {
		assert.Equal(t, recover(), "swapbuf: Ref released more than once")
	}()
	s.release()
}
