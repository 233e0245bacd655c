// Package testutil provides file-backed fixture helpers for grid tests:
// loading a checked-in ASCII pattern and round-tripping a grid through a
// temporary file, adapted from the teacher's generic fixture loader to the
// one file format this repo actually reads and writes.
package testutil

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/lifegrid/lifegrid/internal/life/grid"
)

// testdataPath searches for testdata/filename starting from the caller's
// directory and walking up, the same search the teacher's fixture loader
// used, since test packages live at varying depths under internal/life.
func testdataPath(t *testing.T, filename string) string {
	t.Helper()

	_, callerFile, _, ok := runtime.Caller(2)
	if !ok {
		t.Fatal("failed to get caller file path")
	}

	dir := filepath.Dir(callerFile)
	for i := 0; i < 5; i++ {
		path := filepath.Join(dir, "testdata", filename)
		if _, err := os.Stat(path); err == nil {
			return path
		}
		dir = filepath.Dir(dir)
	}
	return filepath.Join("testdata", filename)
}

// LoadGridFixture reads a checked-in ASCII grid pattern from testdata.
func LoadGridFixture(t *testing.T, filename string) *grid.Grid {
	t.Helper()
	path := testdataPath(t, filename)
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("failed to open fixture %s: %v", filename, err)
	}
	defer f.Close()

	g, err := grid.LoadASCII(f)
	if err != nil {
		t.Fatalf("failed to parse fixture %s: %v", filename, err)
	}
	return g
}

// RoundTripThroughFile writes g to a temporary ASCII file and reads it back,
// exercising WriteASCII and the same LoadASCII path the CLI's --input flag
// uses.
func RoundTripThroughFile(t *testing.T, g *grid.Grid) *grid.Grid {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "grid.txt")

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create temp grid file: %v", err)
	}
	if err := g.WriteASCII(f); err != nil {
		f.Close()
		t.Fatalf("failed to write grid file: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("failed to close grid file: %v", err)
	}

	r, err := os.Open(path)
	if err != nil {
		t.Fatalf("failed to reopen grid file: %v", err)
	}
	defer r.Close()

	out, err := grid.LoadASCII(r)
	if err != nil {
		t.Fatalf("failed to reload grid file: %v", err)
	}
	return out
}
