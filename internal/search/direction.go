package search

import (
	"fmt"
	"sync/atomic"

	"github.com/joeycumines/go-hdastar/internal/grid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Direction is one of the two opposing HDA* searches: it owns W workers
// and their shared node table, and holds a read-only reference to the
// counterpart direction's table once both directions exist.
type Direction struct {
	Name string // "forward" or "backward", for logging only

	Table    *Table
	Counters *Counters
	Workers  []*Worker

	originX, originY int
	goalX, goalY      int
}

// NewDirection allocates a direction's table, counters, and worker pool,
// but does not seed the origin or wire the counterpart table -- callers
// must call SetCounterpart and Seed before Run.
func NewDirection(name string, cols, rows, workers, chunkBytes int, originX, originY, goalX, goalY int, g *grid.Grid, best *BestMeeting, term *atomic.Bool, log zerolog.Logger) *Direction {
	if workers < 1 {
		workers = 1
	}
	d := &Direction{
		Name:     name,
		Table:    NewTable(cols, rows),
		Counters: NewCounters(workers),
		Workers:  make([]*Worker, workers),
		originX:  originX, originY: originY,
		goalX: goalX, goalY: goalY,
	}

	for i := range d.Workers {
		w := NewWorker(i, workers, chunkBytes)
		w.Grid = g
		w.GoalX, w.GoalY = goalX, goalY
		w.Table = d.Table
		w.Counters = d.Counters
		w.Best = best
		w.Term = term
		w.Log = log.With().Str("direction", name).Int("worker", i).Logger()
		d.Workers[i] = w
	}

	peers := make([]*Inbox, workers)
	for i, w := range d.Workers {
		peers[i] = w.Inbox
	}
	for _, w := range d.Workers {
		w.Peers = peers
	}

	return d
}

// SetCounterpart installs the other direction's table as this one's
// read-only meeting-detection reference.
func (d *Direction) SetCounterpart(t *Table) {
	for _, w := range d.Workers {
		w.Counterpart = t
	}
}

// Seed installs the direction's origin node in whichever worker owns it.
func (d *Direction) Seed() {
	for _, w := range d.Workers {
		w.Seed(d.originX, d.originY)
	}
}

// quiescent reports whether every worker's inbox is empty and the
// direction's send/receive ledger agrees -- the per-direction half of
// unsolvable-maze detection. A single direction alone cannot decide a
// maze is unsolvable (its counterpart may still be mid-flight);
// Controller.watchForDeadlock combines both.
func (d *Direction) quiescent() bool {
	for _, w := range d.Workers {
		if !w.Inbox.Empty() {
			return false
		}
	}
	return d.Counters.balanced()
}

// Run spawns every worker as a goroutine and waits for all of them to
// exit (either because Term was observed, or because one of them
// panicked on an invariant violation, which is recovered into an error
// here and propagated up to the bidirectional controller).
func (d *Direction) Run() error {
	g := new(errgroup.Group)
	for _, w := range d.Workers {
		w := w
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("search: %s worker %d: %v", d.Name, w.ID, r)
				}
			}()
			w.Run()
			return nil
		})
	}
	return g.Wait()
}
