// Command lifegrid runs a parallel Conway's Game of Life simulation on a
// toroidal grid and reports per-phase timing, grounded on the original
// engine's main()/thread_body control flow.
package main

import "github.com/lifegrid/lifegrid/cmd/lifegrid/cmd"

func main() {
	cmd.Execute()
}
