// Package grid implements the double-buffered toroidal boolean field that
// backs the Game of Life engine: two equally-shaped buffers, Read and Write,
// separated by a one-cell halo that mirrors the opposite edge of the
// interior so the stencil kernel never needs to special-case a border.
package grid

import (
	"bufio"
	"fmt"
	"io"
	"math/rand"

	"github.com/lifegrid/lifegrid/pkg/lifeerrors"
)

// maxCells bounds the physical buffer size lifegrid will attempt to
// allocate; past this point a request is rejected as a configuration error
// rather than risking an out-of-memory panic deep inside make().
const maxCells = 1 << 34

// Grid is a double-buffered, toroidal boolean field with a one-cell halo.
// Read and Write are exchanged by pointer swap, never reallocated.
type Grid struct {
	rows, cols int // interior (user-visible) dimensions
	width      int // physical row width, cols+2
	height     int // physical row count, rows+2
	Read       []bool
	Write      []bool
}

// New allocates a Grid with the given interior dimensions. Both rows and
// cols must be positive; allocation failure (recovered from a panic inside
// make, which is the closest Go analogue to the original's caught
// bad_alloc) is reported as CodeAllocError.
func New(rows, cols int) (g *Grid, err error) {
	if rows <= 0 || cols <= 0 {
		return nil, lifeerrors.Newf(lifeerrors.CodeConfigError,
			"grid dimensions must be positive, got rows=%d cols=%d", rows, cols)
	}

	width := cols + 2
	height := rows + 2
	n := width * height
	if n > maxCells {
		return nil, lifeerrors.Newf(lifeerrors.CodeConfigError,
			"grid too large: %d cells exceeds maximum %d, reduce width/height", n, maxCells)
	}

	defer func() {
		if r := recover(); r != nil {
			g = nil
			err = lifeerrors.Newf(lifeerrors.CodeAllocError,
				"not enough memory to allocate %dx%d grid, reduce side value: %v", rows, cols, r)
		}
	}()

	return &Grid{
		rows:   rows,
		cols:   cols,
		width:  width,
		height: height,
		Read:   make([]bool, n),
		Write:  make([]bool, n),
	}, nil
}

// RandomFill fills Read with pseudo-random boolean values seeded
// deterministically by seed, matching the original's rand()>RAND_MAX/2 coin
// flip but driven by math/rand for reproducibility across platforms.
func (g *Grid) RandomFill(seed int64) {
	rng := rand.New(rand.NewSource(seed))
	for i := range g.Read {
		g.Read[i] = rng.Float64() > 0.5
	}
}

// LoadASCII parses a rectangular grid of '0'/'1' characters, one row per
// line, into a freshly allocated Grid. Every row must have equal width; any
// other byte is a parse error. An empty file is an error.
func LoadASCII(r io.Reader) (*Grid, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<24)

	var rows [][]bool
	width := -1
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		row := make([]bool, len(line))
		for i := 0; i < len(line); i++ {
			switch line[i] {
			case '0':
				row[i] = false
			case '1':
				row[i] = true
			default:
				return nil, lifeerrors.Newf(lifeerrors.CodeIOError,
					"invalid byte %q at row %d column %d, only '0'/'1' allowed", line[i], len(rows), i)
			}
		}
		if width == -1 {
			width = len(row)
		} else if len(row) != width {
			return nil, lifeerrors.Newf(lifeerrors.CodeIOError,
				"ragged row %d: expected width %d, got %d", len(rows), width, len(row))
		}
		rows = append(rows, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, lifeerrors.Wrap(lifeerrors.CodeIOError, "reading grid file", err)
	}
	if len(rows) == 0 {
		return nil, lifeerrors.New(lifeerrors.CodeIOError, "grid file is empty")
	}

	g, err := New(len(rows), width)
	if err != nil {
		return nil, err
	}
	for i, row := range rows {
		for j, v := range row {
			g.Read[g.idx(i+1, j+1)] = v
		}
	}
	g.CopyBorder()
	return g, nil
}

// WriteASCII writes the interior (no halo) as rows of '0'/'1' characters,
// one row per line, satisfying the round-trip property with LoadASCII.
func (g *Grid) WriteASCII(w io.Writer) error {
	bw := bufio.NewWriter(w)
	buf := make([]byte, g.cols+1)
	for i := 1; i <= g.rows; i++ {
		for j := 1; j <= g.cols; j++ {
			if g.Read[g.idx(i, j)] {
				buf[j-1] = '1'
			} else {
				buf[j-1] = '0'
			}
		}
		buf[g.cols] = '\n'
		if _, err := bw.Write(buf); err != nil {
			return lifeerrors.Wrap(lifeerrors.CodeIOError, "writing grid file", err)
		}
	}
	return bw.Flush()
}

// Width returns the interior (user-visible) column count.
func (g *Grid) Width() int { return g.cols }

// Height returns the interior (user-visible) row count.
func (g *Grid) Height() int { return g.rows }

// Size returns the total number of physical cells per buffer, (rows+2)*(cols+2).
func (g *Grid) Size() int { return g.width * g.height }

// idx converts interior-or-halo (row, col) coordinates, both 0-indexed over
// the physical grid, to a flat offset.
func (g *Grid) idx(i, j int) int { return i*g.width + j }

// Get returns the interior cell at 1-indexed (i, j), i.e. (1,1) is the
// top-left user-visible cell.
func (g *Grid) Get(i, j int) bool { return g.Read[g.idx(i, j)] }

// SetWrite sets the interior cell at 1-indexed (i, j) in the Write buffer.
func (g *Grid) SetWrite(i, j int, v bool) { g.Write[g.idx(i, j)] = v }

// InteriorStart returns the flat index of the first interior cell.
func (g *Grid) InteriorStart() int { return g.width + 1 }

// InteriorEnd returns the flat index one past the last interior cell.
func (g *Grid) InteriorEnd() int { return g.Size() - g.width - 1 }

// CountNeighbors sums the eight cells surrounding pos in Read, given the
// flat indices of the rows directly above (pos_top) and below (pos_bottom)
// pos. The halo guarantees all eight reads are in bounds.
func (g *Grid) CountNeighbors(pos, posTop, posBottom int) int {
	r := g.Read
	n := 0
	if r[posTop-1] {
		n++
	}
	if r[posTop] {
		n++
	}
	if r[posTop+1] {
		n++
	}
	if r[pos-1] {
		n++
	}
	if r[pos+1] {
		n++
	}
	if r[posBottom-1] {
		n++
	}
	if r[posBottom] {
		n++
	}
	if r[posBottom+1] {
		n++
	}
	return n
}

// CountNeighborsFlat derives pos_top and pos_bottom from pos and delegates
// to CountNeighbors.
func (g *Grid) CountNeighborsFlat(pos int) int {
	return g.CountNeighbors(pos, pos-g.width, pos+g.width)
}

// CopyBorder refreshes the halo against Read so it faithfully mirrors the
// toroidal wrap of the interior: top/bottom edge rows, left/right edge
// columns, and the four diagonal corners.
func (g *Grid) CopyBorder() {
	r := g.Read
	w, rows, cols := g.width, g.rows, g.cols

	// Top edge (row 0, interior columns) <- interior row `rows`.
	topRow := g.idx(0, 1)
	srcTop := g.idx(rows, 1)
	copy(r[topRow:topRow+cols], r[srcTop:srcTop+cols])

	// Bottom edge (row rows+1, interior columns) <- interior row 1.
	bottomRow := g.idx(rows+1, 1)
	srcBottom := g.idx(1, 1)
	copy(r[bottomRow:bottomRow+cols], r[srcBottom:srcBottom+cols])

	// Left & right edges.
	for i := 1; i <= rows; i++ {
		r[g.idx(i, 0)] = r[g.idx(i, cols)]
		r[g.idx(i, cols+1)] = r[g.idx(i, 1)]
	}

	// Corners, diagonally opposite.
	r[g.idx(0, 0)] = r[g.idx(rows, cols)]
	r[g.idx(0, cols+1)] = r[g.idx(rows, 1)]
	r[g.idx(rows+1, 0)] = r[g.idx(1, cols)]
	r[g.idx(rows+1, cols+1)] = r[g.idx(1, 1)]

	_ = w
}

// Swap exchanges the Read and Write buffer handles in constant time.
func (g *Grid) Swap() {
	g.Read, g.Write = g.Write, g.Read
}

// Print writes the interior (or, with border, the full physical grid) to w,
// preceded by a title line naming the dimensions.
func (g *Grid) Print(title string, border bool, w io.Writer) {
	add := 1
	rows, cols := g.rows, g.cols
	if border {
		add = 0
		rows, cols = g.height, g.width
	}
	fmt.Fprintf(w, "%s Grid (rows: %d, columns: %d) :\n", title, rows, cols)
	for i := add; i < g.height-add; i++ {
		pos := i * g.width
		for j := add; j < g.width-add; j++ {
			if j > add {
				fmt.Fprint(w, " ")
			}
			if g.Read[pos+j] {
				fmt.Fprint(w, "1")
			} else {
				fmt.Fprint(w, "0")
			}
		}
		fmt.Fprintln(w)
	}
}
