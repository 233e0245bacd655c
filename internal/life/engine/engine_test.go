package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lifegrid/lifegrid/internal/life/barrier"
	"github.com/lifegrid/lifegrid/internal/life/grid"
)

func newGridWithAlive(t *testing.T, rows, cols int, alive [][2]int) *grid.Grid {
	t.Helper()
	g, err := grid.New(rows, cols)
	require.NoError(t, err)
	for _, c := range alive {
		idx := c[0]*(cols+2) + c[1]
		g.Read[idx] = true
	}
	g.CopyBorder()
	return g
}

func aliveCells(g *grid.Grid) [][2]int {
	var cells [][2]int
	for i := 1; i <= g.Height(); i++ {
		for j := 1; j <= g.Width(); j++ {
			if g.Get(i, j) {
				cells = append(cells, [2]int{i, j})
			}
		}
	}
	return cells
}

// S1 — Blinker period 2.
func TestS1_Blinker(t *testing.T) {
	g := newGridWithAlive(t, 5, 5, [][2]int{{2, 1}, {2, 2}, {2, 3}})

	e, err := New(Config{Generations: 1, Workers: 1}, g)
	require.NoError(t, err)
	_, err = e.Run(context.Background())
	require.NoError(t, err)
	assert.ElementsMatch(t, [][2]int{{1, 2}, {2, 2}, {3, 2}}, aliveCells(g))

	g2 := newGridWithAlive(t, 5, 5, [][2]int{{2, 1}, {2, 2}, {2, 3}})
	e2, err := New(Config{Generations: 2, Workers: 1}, g2)
	require.NoError(t, err)
	_, err = e2.Run(context.Background())
	require.NoError(t, err)
	assert.ElementsMatch(t, [][2]int{{2, 1}, {2, 2}, {2, 3}}, aliveCells(g2))
}

// S2 — Block is still.
func TestS2_Block(t *testing.T) {
	g := newGridWithAlive(t, 4, 4, [][2]int{{1, 1}, {1, 2}, {2, 1}, {2, 2}})

	e, err := New(Config{Generations: 10, Workers: 1}, g)
	require.NoError(t, err)
	_, err = e.Run(context.Background())
	require.NoError(t, err)
	assert.ElementsMatch(t, [][2]int{{1, 1}, {1, 2}, {2, 1}, {2, 2}}, aliveCells(g))
}

// S3 — Glider on 10x10 torus: it moves (1,1) every 4 generations, so after
// 56 generations it has moved (14,14), i.e. (4,4) mod 10, crossing the wrap.
func TestS3_Glider(t *testing.T) {
	g := newGridWithAlive(t, 10, 10, [][2]int{{1, 2}, {2, 3}, {3, 1}, {3, 2}, {3, 3}})

	e, err := New(Config{Generations: 56, Workers: 1}, g)
	require.NoError(t, err)
	_, err = e.Run(context.Background())
	require.NoError(t, err)
	assert.ElementsMatch(t, [][2]int{{5, 6}, {6, 7}, {7, 5}, {7, 6}, {7, 7}}, aliveCells(g))
}

// S4 — Toroidal wrap: fully-alive 3x3 grid, every cell has 8 wrapped
// neighbors; the rule (n==3 || alive&&n==2) yields fully dead.
func TestS4_ToroidalWrapFullyAlive(t *testing.T) {
	g, err := grid.New(3, 3)
	require.NoError(t, err)
	for i := range g.Read {
		g.Read[i] = true
	}
	g.CopyBorder()

	e, err := New(Config{Generations: 1, Workers: 1}, g)
	require.NoError(t, err)
	_, err = e.Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, aliveCells(g))
}

// S5 — Parallel equals sequential across worker counts and barrier variants.
func TestS5_ParallelEqualsSequential(t *testing.T) {
	seq, err := grid.New(200, 200)
	require.NoError(t, err)
	seq.RandomFill(1234)

	ref := runGenerations(t, seq, 100, 1, barrier.VariantMutex)

	variants := []barrier.Variant{barrier.VariantMutex, barrier.VariantSpin, barrier.VariantCoordinator}
	workerCounts := []int{1, 8}

	for _, v := range variants {
		for _, w := range workerCounts {
			g2, err := grid.New(200, 200)
			require.NoError(t, err)
			g2.RandomFill(1234)

			got := runGenerations(t, g2, 100, w, v)
			assert.Equal(t, ref, got, "variant=%v workers=%d", v, w)
		}
	}
}

func runGenerations(t *testing.T, g *grid.Grid, generations, workers int, v barrier.Variant) []bool {
	t.Helper()
	e, err := New(Config{Generations: generations, Workers: workers, Variant: v}, g)
	require.NoError(t, err)
	_, err = e.Run(context.Background())
	require.NoError(t, err)
	out := make([]bool, len(g.Read))
	copy(out, g.Read)
	return out
}

// S6 — File round-trip with 0 generations is exercised in internal/life/grid;
// here we check the engine accepts Generations == 0 as a no-op.
func TestS6_ZeroGenerationsNoop(t *testing.T) {
	g, err := grid.New(16, 16)
	require.NoError(t, err)
	g.RandomFill(9)
	g.CopyBorder()
	before := make([]bool, len(g.Read))
	copy(before, g.Read)

	e, err := New(Config{Generations: 0, Workers: 1}, g)
	require.NoError(t, err)
	_, err = e.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, before, g.Read)
}

// The original engine sums serial_time and barrier_time across every
// generation rather than timing the whole run once; confirm the same holds
// for the barrier and coordinator variants' reported phases.
func TestRun_AccumulatesPhasesAcrossGenerations(t *testing.T) {
	g, err := grid.New(50, 50)
	require.NoError(t, err)
	g.RandomFill(7)

	e, err := New(Config{Generations: 5, Workers: 4, Variant: barrier.VariantMutex}, g)
	require.NoError(t, err)
	stats, err := e.Run(context.Background())
	require.NoError(t, err)

	var sawSerial, sawBarrier bool
	for _, p := range stats.Timer.GetPhases() {
		switch p.Name {
		case "serial phase":
			sawSerial = true
			assert.GreaterOrEqual(t, p.Duration, time.Duration(0))
		case "barrier phase":
			sawBarrier = true
		}
	}
	assert.True(t, sawSerial, "expected a serial phase entry accumulated across generations")
	assert.True(t, sawBarrier, "expected a barrier phase entry accumulated across generations")

	g2, err := grid.New(50, 50)
	require.NoError(t, err)
	g2.RandomFill(7)

	e2, err := New(Config{Generations: 5, Workers: 4, Variant: barrier.VariantCoordinator}, g2)
	require.NoError(t, err)
	stats2, err := e2.Run(context.Background())
	require.NoError(t, err)

	var borderDuration time.Duration
	for _, p := range stats2.Timer.GetPhases() {
		if p.Name == "copy border" {
			borderDuration = p.Duration
		}
	}
	assert.Greater(t, borderDuration, time.Duration(0), "copy border should accumulate the initial refresh plus every generation's refresh")
}

func TestNew_RejectsInvalidConfig(t *testing.T) {
	g, err := grid.New(2, 2)
	require.NoError(t, err)

	_, err = New(Config{Generations: -1, Workers: 1}, g)
	assert.Error(t, err)

	_, err = New(Config{Generations: 1, Workers: -1}, g)
	assert.Error(t, err)

	_, err = New(Config{Generations: 1, Workers: 1}, nil)
	assert.Error(t, err)
}
