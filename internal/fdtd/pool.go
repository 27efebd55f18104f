package fdtd

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// pool dispatches the data-parallel phases of spec.md §5: each phase
// partitions a disjoint range of work across goroutines and blocks
// until every partition finishes before the driver proceeds — an
// explicit barrier. This generalizes the teacher's hand-rolled
// sync.Cond broadcast/wait worker loop (worker.go's waveWorkerLoop)
// into a reusable primitive built on errgroup.Group, which gives the
// same "wait for every worker, then continue" contract with less
// bookkeeping per phase.
type pool struct {
	workers int
}

// newPool builds a pool sized to n workers. n <= 0 falls back to
// runtime.GOMAXPROCS(0), mirroring the teacher's runtime.NumCPU() default
// (main.go's stepWave).
func newPool(n int) *pool {
	if n <= 0 {
		n = runtime.GOMAXPROCS(0)
	}
	if n < 1 {
		n = 1
	}
	return &pool{workers: n}
}

// Run partitions [0, n) into contiguous chunks, one per worker, and
// calls fn(lo, hi) for each chunk concurrently. It returns only after
// every chunk's call has completed (the phase barrier of spec.md §5).
// Chunk boundaries are static and deterministic, so repeated runs over
// the same n and worker count produce identical partitioning —
// spec.md §5's "static scheduling ... for bit-reproducibility."
func (p *pool) Run(n int64, fn func(lo, hi int64)) {
	if n <= 0 {
		return
	}
	workers := p.workers
	if int64(workers) > n {
		workers = int(n)
	}
	chunk := (n + int64(workers) - 1) / int64(workers)

	var g errgroup.Group
	for w := 0; w < workers; w++ {
		lo := int64(w) * chunk
		if lo >= n {
			break
		}
		hi := lo + chunk
		if hi > n {
			hi = n
		}
		g.Go(func() error {
			fn(lo, hi)
			return nil
		})
	}
	_ = g.Wait() // fn never returns an error; Wait only provides the barrier
}
