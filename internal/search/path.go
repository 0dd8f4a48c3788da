package search

import "github.com/joeycumines/go-hdastar/internal/grid"

// ReconstructPath walks the parent chains recorded by both directions,
// from the shared meeting cell back to each direction's origin, stamping
// every traversable cell it visits with grid.PathMark. It returns the
// total number of cells on the path, including the meeting cell.
//
// Forward and backward chains never form a cycle: each direction's
// parent pointers are edges of an acyclic chain toward its own origin,
// so the two walks below always terminate.
func ReconstructPath(g *grid.Grid, fwd, bwd *Table, meetX, meetY int) int {
	cells := 0

	for n := fwd.Load(meetX, meetY); n != nil; n = n.Parent() {
		markIfOpen(g, n.X, n.Y)
		cells++
	}

	// Start one step past the meeting cell on the backward side, so it
	// isn't counted twice.
	for n := bwd.Load(meetX, meetY).Parent(); n != nil; n = n.Parent() {
		markIfOpen(g, n.X, n.Y)
		cells++
	}

	return cells
}

// markIfOpen stamps (x, y) with PathMark unless it is one of the fixed
// Start/Goal cells, which are preserved verbatim.
func markIfOpen(g *grid.Grid, x, y int) {
	switch g.At(x, y) {
	case grid.Start, grid.Goal:
	default:
		g.WriteMark(x, y, grid.PathMark)
	}
}
