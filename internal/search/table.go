package search

import "sync/atomic"

// Table is a direction's dense (x, y) -> *Node mapping. A cell is
// allocated and mutated only by the worker that owns it (owner(x, y, W));
// any worker, including the counterpart direction's workers, may read a
// cell to detect a meeting (spec.md §3, "Node table").
type Table struct {
	cols, rows int
	cells      []atomic.Pointer[Node]
}

// NewTable allocates a direction's node table for a cols x rows grid.
func NewTable(cols, rows int) *Table {
	return &Table{
		cols:  cols,
		rows:  rows,
		cells: make([]atomic.Pointer[Node], cols*rows),
	}
}

func (t *Table) index(x, y int) int { return y*t.cols + x }

// Load returns the node at (x, y), or nil if that direction has not yet
// discovered the cell. Safe to call from any worker in either direction.
func (t *Table) Load(x, y int) *Node {
	return t.cells[t.index(x, y)].Load()
}

// Store publishes node as the table's entry for (x, y). Must only be
// called by the worker that owns (x, y); it is a plain atomic store
// because that worker is the cell's sole writer, matching spec.md §4.5's
// "the node_table pointer publication is a plain store because only that
// worker writes that slot."
func (t *Table) Store(x, y int, node *Node) {
	t.cells[t.index(x, y)].Store(node)
}

// owner returns the id, in [0, workers), of the worker responsible for
// cell (x, y): a static hash partition, per spec.md §3.
func owner(x, y, workers int) int {
	return ((x+y)%workers + workers) % workers
}
