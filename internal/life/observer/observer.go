// Package observer defines the capability interface through which the
// engine reports cell changes and completed frames, replacing the original
// engine's virtual print/set methods on a graphical Grid subclass with a
// dependency the core never imports directly.
package observer

// Observer receives notifications as the engine advances generations. The
// engine holds only this interface; a concrete renderer, video encoder, or
// console printer is wired in by the caller.
type Observer interface {
	// CellChanged reports that the interior cell at (row, col), 1-indexed,
	// now holds alive after the most recent generation's serial phase.
	CellChanged(row, col int, alive bool)
	// FrameReady reports that generation has completed its serial phase and
	// the grid is stable for reading.
	FrameReady(generation int)
}

// Null is the zero-cost default Observer: every call is a no-op.
type Null struct{}

// CellChanged implements Observer.
func (Null) CellChanged(row, col int, alive bool) {}

// FrameReady implements Observer.
func (Null) FrameReady(generation int) {}
