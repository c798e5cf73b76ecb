// Copyright 2025 go-lie Authors. SPDX-License-Identifier: Apache-2.0

// Package workerpool provides a persistent pool of worker lanes for
// batched row-parallel kernels. A Pool is created once and reused across
// many kernel launches, so per-launch cost is a channel send per lane
// rather than goroutine spawning.
//
// Rows are assigned to lanes in contiguous blocks; a lane walks its block
// in order and never touches another lane's rows. A panic inside a lane is
// recovered and reported as an error from ParallelFor after all lanes have
// finished, so a failed launch can be surfaced to the caller instead of
// tearing the process down.
package workerpool

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
)

// Pool is a persistent set of worker lanes. Lanes are spawned once at
// creation and persist until Close is called.
type Pool struct {
	numWorkers int
	serial     bool
	workC      chan task
	closeOnce  sync.Once
	closed     atomic.Bool
}

type task struct {
	fn      func()
	barrier *sync.WaitGroup
}

// New creates a pool with the given number of lanes. If numWorkers <= 0,
// the LIE_NUM_WORKERS environment variable is consulted, then GOMAXPROCS.
// Setting LIE_NO_PARALLEL forces every launch to run sequentially on the
// calling goroutine, which is useful for debugging kernels.
func New(numWorkers int) *Pool {
	if numWorkers <= 0 {
		if v, err := strconv.Atoi(os.Getenv("LIE_NUM_WORKERS")); err == nil && v > 0 {
			numWorkers = v
		} else {
			numWorkers = runtime.GOMAXPROCS(0)
		}
	}

	p := &Pool{
		numWorkers: numWorkers,
		serial:     noParallelEnv(),
		workC:      make(chan task, numWorkers*2),
	}
	for i := 0; i < numWorkers; i++ {
		go p.worker()
	}
	return p
}

// noParallelEnv reports whether LIE_NO_PARALLEL is set. Any non-empty
// value that does not parse as false counts as set.
func noParallelEnv() bool {
	val := os.Getenv("LIE_NO_PARALLEL")
	if val == "" {
		return false
	}
	if b, err := strconv.ParseBool(val); err == nil {
		return b
	}
	return true
}

func (p *Pool) worker() {
	for item := range p.workC {
		item.fn()
		item.barrier.Done()
	}
}

// NumWorkers returns the number of lanes in the pool.
func (p *Pool) NumWorkers() int {
	return p.numWorkers
}

// Close shuts down the pool. Pending work completes first; calling Close
// more than once is safe. A closed pool still accepts ParallelFor calls
// and runs them sequentially.
func (p *Pool) Close() {
	p.closeOnce.Do(func() {
		p.closed.Store(true)
		close(p.workC)
	})
}

// ParallelFor runs fn over [0, n) split into contiguous blocks, one per
// lane, and blocks until every lane has finished. fn receives half-open
// [start, end) row ranges. If any lane panics, the first recovered panic
// is returned as an error once all lanes are done; the output rows of the
// panicking lane are unspecified.
func (p *Pool) ParallelFor(n int, fn func(start, end int)) error {
	if n <= 0 {
		return nil
	}

	workers := min(p.numWorkers, n)
	if workers == 1 || p.serial || p.closed.Load() {
		return p.run(fn, 0, n)
	}

	chunk := (n + workers - 1) / workers

	var firstErr atomic.Pointer[laneError]
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		start := i * chunk
		end := min(start+chunk, n)
		if start >= end {
			wg.Done()
			continue
		}
		p.workC <- task{
			fn: func() {
				if err := p.run(fn, start, end); err != nil {
					firstErr.CompareAndSwap(nil, &laneError{err})
				}
			},
			barrier: &wg,
		}
	}
	wg.Wait()

	if e := firstErr.Load(); e != nil {
		return e.err
	}
	return nil
}

type laneError struct{ err error }

// run executes one lane's block, converting a panic into an error.
func (p *Pool) run(fn func(start, end int), start, end int) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lane [%d:%d) panicked: %v", start, end, r)
		}
	}()
	fn(start, end)
	return nil
}
