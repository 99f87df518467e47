package stress

import "sync/atomic"

// sink keeps the allocations in Update from being optimized away.
var sink atomic.Pointer[int]

// Payload is a value that knows when it is in the middle of an Update. Its
// fields are atomics so that a torn read shows up through Updating rather than
// as a report from the race detector.
type Payload struct {
	updating atomic.Bool
	gen      atomic.Uint64
}

// Update marks the payload as updating, performs inner allocations and then
// records gen.
func (p *Payload) Update(gen uint64, inner int) {
	p.updating.Store(true)
	for i := 0; i < inner; i++ {
		v := i
		sink.Store(&v)
	}
	p.gen.Store(gen)
	p.updating.Store(false)
}

// Updating reports if an Update is in progress.
func (p *Payload) Updating() bool { return p.updating.Load() }

// Gen returns the gen of the last completed Update.
func (p *Payload) Gen() uint64 { return p.gen.Load() }
