// Package stress runs one writer and many readers against a double buffer and
// counts the reads that observed a Payload in the middle of an Update.
package stress

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/valyala/fastrand"
)

// checkEvery is how many reads happen between checks for cancellation.
const checkEvery = 1024

// Config describes a run.
type Config struct {
	Cycles  int // Modify calls by the writer. zero means until the readers finish
	Inner   int // allocations per Payload Update
	Readers int // number of reader goroutines, at least one
	Reads   int // Reads per reader
	Hold    int // readers hold each snapshot for a random number of spins below Hold

	// StopOnDirty ends the run after the first dirty read.
	StopOnDirty bool
}

// Report is the outcome of a run.
type Report struct {
	Cycles      uint64        // completed Modify calls
	Reads       uint64        // completed Reads
	Dirty       uint64        // Reads that observed an Update in progress
	Regressions uint64        // Reads older than an earlier Read by the same reader
	Elapsed     time.Duration // time from the start gate to the last goroutine exiting
}

// Run starts the writer and the readers together and waits for them to finish.
// It returns ctx.Err() along with the partial Report if ctx ends first.
func Run(ctx context.Context, target Target, cfg Config) (Report, error) {
	if cfg.Readers < 1 {
		cfg.Readers = 1
	}

	// internal cancellation stops the writer when the readers are done or
	// when a dirty read ends the run early.
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		rep   Report
		start = make(chan struct{})
		wwg   sync.WaitGroup
		rwg   sync.WaitGroup
	)

	wwg.Add(1)
	go func() {
		defer wwg.Done()
		<-start

		for i := 0; cfg.Cycles == 0 || i < cfg.Cycles; i++ {
			if runCtx.Err() != nil {
				return
			}
			gen := uint64(i + 1)
			target.Modify(func(p *Payload) { p.Update(gen, cfg.Inner) })
			atomic.AddUint64(&rep.Cycles, 1)
		}
	}()

	rwg.Add(cfg.Readers)
	for r := 0; r < cfg.Readers; r++ {
		go func() {
			defer rwg.Done()
			<-start

			var last uint64
			for i := 0; i < cfg.Reads; i++ {
				if i%checkEvery == 0 && runCtx.Err() != nil {
					return
				}

				p, release := target.Read()
				dirty := p.Updating()
				gen := p.Gen()
				hold(cfg.Hold)
				release()

				atomic.AddUint64(&rep.Reads, 1)
				if gen < last {
					atomic.AddUint64(&rep.Regressions, 1)
				}
				last = gen
				if dirty {
					atomic.AddUint64(&rep.Dirty, 1)
					if cfg.StopOnDirty {
						cancel()
						return
					}
				}
			}
		}()
	}

	began := time.Now()
	close(start)

	rwg.Wait()
	if cfg.Cycles == 0 {
		cancel()
	}
	wwg.Wait()
	rep.Elapsed = time.Since(began)

	return rep, ctx.Err()
}

// hold spins for a random number of iterations below n.
func hold(n int) {
	if n <= 0 {
		return
	}
	for i := fastrand.Uint32n(uint32(n)); i > 0; i-- {
		sink.Load()
	}
}
