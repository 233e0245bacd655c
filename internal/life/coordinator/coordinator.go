// Package coordinator implements barrier Variant C: a single coordinator
// goroutine holds the task list and drives a fixed pool of worker
// goroutines through per-worker atomic busy flags instead of a channel,
// grounded on the original engine's main_thread.cpp (thread_body,
// find_first_thread_free, barrier). It is the closest domain analogue of
// the teacher's pkg/parallel.WorkerPool, reshaped from channel-based
// dispatch to the spec's atomic busy-flag protocol.
package coordinator

import (
	"sync/atomic"

	"github.com/lifegrid/lifegrid/internal/life/grid"
	"github.com/lifegrid/lifegrid/internal/life/kernel"
	"github.com/lifegrid/lifegrid/internal/life/partition"
)

// worker is one long-lived goroutine's shared state: a busy flag the
// coordinator sets (release) and the worker clears (release) after
// computing its assigned range, and the range slot itself.
type worker struct {
	busy  atomic.Bool
	slot  partition.Range
	index int
}

// Pool owns a fixed set of worker goroutines synchronized with the
// coordinator through atomic busy flags and a shared terminate flag — no
// cyclic ownership, only shared atomics, per the spec's design note on
// expressing the coordinator/worker feedback loop in a memory-safe way.
type Pool struct {
	g          *grid.Grid
	workers    []*worker
	terminate  atomic.Bool
	vectorized bool
}

// New spawns numWorkers goroutines waiting on their busy flags. vectorized
// selects the batched-neighbor-count stencil path.
func New(g *grid.Grid, numWorkers int, vectorized bool) *Pool {
	p := &Pool{
		g:          g,
		workers:    make([]*worker, numWorkers),
		vectorized: vectorized,
	}
	for i := range p.workers {
		p.workers[i] = &worker{index: i}
	}

	for _, w := range p.workers {
		go p.runWorker(w)
	}
	return p
}

func (p *Pool) runWorker(w *worker) {
	var scratch []int
	if p.vectorized {
		scratch = make([]int, kernel.VectorWidth)
	}

	for !p.terminate.Load() {
		for !w.busy.Load() && !p.terminate.Load() {
			// Busy-spin: spec's coordinator variant has no suspension
			// points outside the barrier-equivalent join phase.
		}
		if p.terminate.Load() {
			return
		}

		if p.vectorized {
			kernel.ComputeVectorized(p.g, scratch, w.slot.Start, w.slot.End)
		} else {
			kernel.Compute(p.g, w.slot.Start, w.slot.End)
		}
		w.busy.Store(false)
	}
}

// Dispatch assigns every range in tasks to the first free worker, scanning
// linearly and busy-waiting when all workers are occupied, matching
// find_first_thread_free. It returns once every task has been handed off —
// not once every task has completed; call Join to wait for completion.
func (p *Pool) Dispatch(tasks []partition.Range) {
	for _, task := range tasks {
		w := p.findFreeWorker()
		w.slot = task
		w.busy.Store(true)
	}
}

func (p *Pool) findFreeWorker() *worker {
	for {
		for _, w := range p.workers {
			if !w.busy.Load() {
				return w
			}
		}
	}
}

// Join spins until every worker reports free, establishing that all writes
// for the current generation have completed before the caller proceeds to
// the serial phase.
func (p *Pool) Join() {
	for _, w := range p.workers {
		for w.busy.Load() {
			// Busy-spin; see ArriveAndWait's note on suspension points.
		}
	}
}

// Shutdown sets the terminate flag so every worker goroutine observes it and
// exits its busy-spin loop. Safe to call once after the final generation.
func (p *Pool) Shutdown() {
	p.terminate.Store(true)
}
