// Package kernel applies the Life rule to a contiguous flat-index range
// against a Grid's Read buffer, writing the Write buffer. It never blocks.
// Ranges handed out by the partition package span the flat interior range
// [InteriorStart, InteriorEnd), which also contains the left/right halo
// columns between interior rows; the values written there are overwritten
// by the next halo refresh.
package kernel

import "github.com/lifegrid/lifegrid/internal/life/grid"

// VectorWidth is the number of cells batched per iteration by
// ComputeVectorized, matching the original's VLEN (non-MIC variant).
const VectorWidth = 16

// Compute applies the Life rule to Write[start:end] reading only from Read,
// one cell at a time: the next state is alive iff it has exactly 3 live
// neighbors, or exactly 2 and was already alive.
func Compute(g *grid.Grid, start, end int) {
	width := g.Width() + 2
	posTop := start - width
	posBottom := start + width

	for pos := start; pos < end; pos++ {
		n := g.CountNeighbors(pos, posTop, posBottom)
		g.Write[pos] = n == 3 || (g.Read[pos] && n == 2)
		posTop++
		posBottom++
	}
}

// ComputeVectorized computes the same result as Compute, but batches
// VectorWidth neighbor counts into the caller-owned scratch buffer before
// applying the rule element-wise. scratch must have length >= VectorWidth
// and is reused across calls by a single worker (never shared between
// goroutines), matching the engine's no-per-generation-allocation contract.
func ComputeVectorized(g *grid.Grid, scratch []int, start, end int) {
	width := g.Width() + 2
	index := start
	indexTop := start - width
	indexBottom := start + width

	for index+VectorWidth < end {
		for v := 0; v < VectorWidth; v++ {
			scratch[v] = g.CountNeighbors(index+v, indexTop+v, indexBottom+v)
		}
		for v := 0; v < VectorWidth; v++ {
			p := index + v
			g.Write[p] = scratch[v] == 3 || (g.Read[p] && scratch[v] == 2)
		}
		index += VectorWidth
		indexTop += VectorWidth
		indexBottom += VectorWidth
	}

	// Remainder of at most VectorWidth cells, computed scalar.
	for ; index < end; index, indexTop, indexBottom = index+1, indexTop+1, indexBottom+1 {
		n := g.CountNeighbors(index, indexTop, indexBottom)
		g.Write[index] = n == 3 || (g.Read[index] && n == 2)
	}
}
