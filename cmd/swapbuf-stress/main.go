package main

import (
	"context"
	"flag"
	"log"
	"os"
	"runtime"
	"time"

	"github.com/zeebo/swapbuf"
	"github.com/zeebo/swapbuf/internal/naive"
	"github.com/zeebo/swapbuf/internal/stress"
)

func main() {
	var (
		variant    = flag.String("variant", "safe", "buffer to stress: safe or naive")
		cycles     = flag.Int("cycles", 100000, "Modify calls by the writer")
		inner      = flag.Int("inner", 100, "allocations per update")
		readers    = flag.Int("readers", 1, "reader goroutines")
		reads      = flag.Int("reads", 10000000, "reads per reader")
		holdSpins  = flag.Int("hold", 0, "max spins a reader holds a snapshot")
		backoff    = flag.String("backoff", "yield", "writer wait strategy for the safe buffer: yield or exp")
		gap        = flag.Bool("gap", false, "yield between the naive buffer's index load and claim")
		timeout    = flag.Duration("timeout", time.Minute, "give up after this long")
		expectTear = flag.Bool("expect-tear", false, "fail if the naive buffer does not tear")
	)
	flag.Parse()

	var target stress.Target
	switch *variant {
	case "safe":
		var opts []swapbuf.Option
		switch *backoff {
		case "yield":
		case "exp":
			opts = append(opts, swapbuf.WithBackoff(swapbuf.Exponential(time.Microsecond, time.Millisecond)))
		default:
			log.Fatalf("unknown backoff %q", *backoff)
		}
		target = stress.Safe(swapbuf.New[stress.Payload](opts...))
	case "naive":
		var fn func()
		if *gap {
			fn = runtime.Gosched
		}
		target = stress.Naive(new(naive.Buffer[stress.Payload]), fn)
	default:
		log.Fatalf("unknown variant %q", *variant)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	log.Printf("stressing %s buffer: cycles=%d inner=%d readers=%d reads=%d gomaxprocs=%d",
		*variant, *cycles, *inner, *readers, *reads, runtime.GOMAXPROCS(0))

	rep, err := stress.Run(ctx, target, stress.Config{
		Cycles:      *cycles,
		Inner:       *inner,
		Readers:     *readers,
		Reads:       *reads,
		Hold:        *holdSpins,
		StopOnDirty: *variant == "naive",
	})
	if err != nil {
		log.Printf("run interrupted: %v", err)
	}

	log.Printf("cycles=%d reads=%d dirty=%d regressions=%d elapsed=%v",
		rep.Cycles, rep.Reads, rep.Dirty, rep.Regressions, rep.Elapsed)

	switch {
	case *variant == "safe" && (rep.Dirty > 0 || rep.Regressions > 0):
		log.Printf("safe buffer tore")
		os.Exit(1)
	case *variant == "naive" && *expectTear && rep.Dirty == 0:
		log.Printf("naive buffer did not tear")
		os.Exit(1)
	}
}
