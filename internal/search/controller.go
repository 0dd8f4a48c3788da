package search

import (
	"runtime"
	"sync/atomic"

	"github.com/joeycumines/go-hdastar/internal/grid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Result is the outcome of a completed bidirectional search.
type Result struct {
	MeetX, MeetY int
	// Length is the edge-count shortest path length: forward.g(meet) +
	// backward.g(meet), under the 0-origin g convention (see Worker.Seed).
	Length int
	Found  bool
}

// Controller is the bidirectional controller: it owns the shared
// best-meeting record and termination flag, and spawns and joins the two
// opposing Directions.
type Controller struct {
	Grid     *grid.Grid
	Forward  *Direction
	Backward *Direction
	Best     *BestMeeting
	Term     *atomic.Bool
	Log      zerolog.Logger
}

// NewController wires up both directions against a shared best-meeting
// record and termination flag, pointed at each other's node tables.
func NewController(g *grid.Grid, workersPerDirection, chunkBytes int, log zerolog.Logger) *Controller {
	sx, sy := g.StartCell()
	gx, gy := g.GoalCell()

	best := NewBestMeeting()
	term := new(atomic.Bool)

	fwd := NewDirection("forward", g.Cols(), g.Rows(), workersPerDirection, chunkBytes, sx, sy, gx, gy, g, best, term, log)
	bwd := NewDirection("backward", g.Cols(), g.Rows(), workersPerDirection, chunkBytes, gx, gy, sx, sy, g, best, term, log)
	fwd.SetCounterpart(bwd.Table)
	bwd.SetCounterpart(fwd.Table)

	return &Controller{
		Grid:     g,
		Forward:  fwd,
		Backward: bwd,
		Best:     best,
		Term:     term,
		Log:      log,
	}
}

// Run seeds both origins, spawns both directions plus a deadlock
// watchdog, and blocks until the search concludes. The returned Result's
// Found field is false only when the maze has no solution: detected as
// global quiescence with min_len == +inf, so the search returns rather
// than spinning forever.
func (c *Controller) Run() (Result, error) {
	c.Forward.Seed()
	c.Backward.Seed()

	g := new(errgroup.Group)
	g.Go(c.Forward.Run)
	g.Go(c.Backward.Run)
	g.Go(c.watchForDeadlock)

	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	x, y, minLen := c.Best.Snapshot()
	if minLen >= inf {
		return Result{Found: false}, nil
	}
	return Result{MeetX: x, MeetY: y, Length: int(minLen), Found: true}, nil
}

// watchForDeadlock catches the unsolvable-maze case that a single
// direction cannot decide alone: a direction being quiescent
// only means it has no pending work of its own, not that the whole search
// is hopeless, since its counterpart might still complete the meeting any
// moment. Only when BOTH directions are quiescent simultaneously, with no
// meeting ever recorded, is a maze provably unsolvable.
func (c *Controller) watchForDeadlock() error {
	for {
		if c.Term.Load() {
			return nil
		}
		if c.Forward.quiescent() && c.Backward.quiescent() {
			if _, _, minLen := c.Best.Snapshot(); minLen >= inf {
				c.Term.Store(true)
				return nil
			}
		}
		runtime.Gosched()
	}
}
