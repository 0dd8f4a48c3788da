package search

import (
	"runtime"
	"sync/atomic"

	"github.com/joeycumines/go-hdastar/internal/arena"
	"github.com/joeycumines/go-hdastar/internal/grid"
	"github.com/rs/zerolog"
)

// neighborOffsets enumerates the four cardinal directions in the fixed
// order expansion always walks them in: +x, -x, +y, -y.
var neighborOffsets = [4][2]int{
	{1, 0},
	{-1, 0},
	{0, 1},
	{0, -1},
}

// Worker is one HDA* goroutine: it owns an arena, a heap, and an inbox,
// and is the sole writer for every cell (x, y) where owner(x, y, W) ==
// id. It never touches another worker's heap or arena.
type Worker struct {
	ID      int
	Workers int

	Grid *grid.Grid

	// GoalX, GoalY is this direction's target: the maze goal for the
	// forward direction, the maze start for the backward direction.
	GoalX, GoalY int

	Table       *Table // this direction's table, shared by all its workers
	Counterpart *Table // the other direction's table, read-only

	Peers []*Inbox // every worker's inbox in this direction, by id
	Inbox *Inbox    // == Peers[ID]

	Counters *Counters
	Best     *BestMeeting
	Term     *atomic.Bool

	Log zerolog.Logger

	arena *arena.Arena[Node]
	heap  *Heap
}

// NewWorker constructs a worker with its own arena, heap and Inbox. Callers
// must still assign Peers (with Peers[id] == Inbox) before Run.
func NewWorker(id, workers, chunkBytes int) *Worker {
	w := &Worker{
		ID:      id,
		Workers: workers,
		arena:   arena.New[Node](chunkBytes),
		heap:    NewHeap(),
		Inbox:   NewInbox(chunkBytes),
	}
	return w
}

// Seed installs the direction's origin node, if this worker owns it. Only
// one worker per direction (the one hash(start) selects) does real work
// here.
func (w *Worker) Seed(x, y int) {
	if owner(x, y, w.Workers) != w.ID {
		return
	}
	n := w.arena.Alloc()
	n.X, n.Y = x, y
	// g(origin) = 0: the standard A*, edge-counted convention, so that
	// forward.g(meet) + backward.g(meet) equals the shortest path length
	// exactly, with no off-by-one correction. See DESIGN.md.
	n.setScore(0, manhattan(x, y, w.GoalX, w.GoalY))
	w.Table.Store(x, y, n)
	w.heap.Insert(n)
	// Balances the nonexistent inbound message that would otherwise
	// have created this node.
	w.Counters.addSent(w.ID, 1)
}

// Run executes the worker's main loop until Term is set, then releases the
// worker's arena. It never returns an error: allocation failure and
// invariant violations panic; the caller (Direction.Run) recovers that
// panic into an error for the controller.
func (w *Worker) Run() {
	defer w.arena.Release()
	for {
		if w.Term.Load() {
			return
		}

		if w.heap.Len() > 0 {
			n := w.heap.ExtractMin()
			_, _, minLen := w.Best.Snapshot()

			switch {
			case n.G() >= minLen:
				// Prune: every remaining entry's f-lower-bound already
				// exceeds the best known total, by admissibility of the
				// heuristic. n's own extraction above still needs its
				// receive credit, same as the expand/meet-check branches,
				// on top of every entry discarded along with it.
				discarded := w.heap.Discard()
				w.Counters.addReceived(w.ID, uint64(discarded)+1)

			case w.checkMeeting(n):
				w.Counters.addReceived(w.ID, 1)

			default:
				w.expand(n)
				w.Counters.addReceived(w.ID, 1)
			}
		} else if !w.pollTermination() {
			return
		}

		w.drainInbox()
	}
}

// checkMeeting reports whether the counterpart direction has already
// discovered (n.X, n.Y), updating the shared best-meeting record if this
// combination improves on it.
func (w *Worker) checkMeeting(n *Node) bool {
	m := w.Counterpart.Load(n.X, n.Y)
	if m == nil {
		return false
	}
	if w.Best.TryUpdate(n.X, n.Y, n.G()+m.G()) {
		w.Log.Debug().Int("x", n.X).Int("y", n.Y).Int64("len", n.G()+m.G()).Msg("meeting point improved")
	}
	return true
}

// expand proposes each open neighbor of n to its owning worker.
func (w *Worker) expand(n *Node) {
	for _, d := range neighborOffsets {
		nx, ny := n.X+d[0], n.Y+d[1]
		if w.Grid.IsWall(nx, ny) {
			continue
		}
		gTentative := n.G() + 1
		if existing := w.Table.Load(nx, ny); existing != nil && existing.G() <= gTentative {
			continue
		}
		dst := owner(nx, ny, w.Workers)
		w.Peers[dst].Push(n, nx, ny, gTentative)
		w.Counters.addSent(w.ID, 1)
	}
}

// drainInbox processes every message currently queued for this worker.
func (w *Worker) drainInbox() {
	for _, m := range w.Inbox.Drain() {
		w.handleMessage(m)
		w.Inbox.Release(m)
	}
}

// handleMessage applies one routed proposal to this worker's table/heap.
//
// Accounting: a message that does not improve its target contributes no
// future work, so it is counted as received immediately. A message that
// improves an already-queued node is also counted immediately, because
// that node will only ever be extracted (and counted) once. A message
// that performs a fresh insert is deliberately NOT counted here: the
// single future extraction of that node (via expand, a meet-check, or a
// prune discard) supplies its matching receive.
func (w *Worker) handleMessage(m *message) {
	node := w.Table.Load(m.x, m.y)
	firstSight := node == nil
	if firstSight {
		node = w.arena.Alloc()
		node.X, node.Y = m.x, m.y
		node.setScore(inf, inf)
	}

	if m.g >= node.G() {
		w.Counters.addReceived(w.ID, 1)
		if firstSight {
			w.Table.Store(m.x, m.y, node)
		}
		return
	}

	node.setScore(m.g, m.g+manhattan(m.x, m.y, w.GoalX, w.GoalY))
	node.setParent(m.parent)

	if firstSight {
		// Publish the pointer last: every reader that loads it out of
		// the table observes the score/parent already set above.
		w.Table.Store(m.x, m.y, node)
	}

	if node.heapID > 0 {
		w.heap.DecreaseKey(node)
		w.Counters.addReceived(w.ID, 1)
	} else {
		w.heap.Insert(node)
	}
}

// pollTermination implements the per-worker half of termination
// detection: spin until either this worker's own inbox gains work, or the
// direction's
// counters agree and a finite meeting length is already known, in which
// case it is this worker that flips the shared Term flag for every peer
// (in both directions) to observe.
func (w *Worker) pollTermination() (resumed bool) {
	for {
		if !w.Inbox.Empty() {
			return true
		}
		if w.Term.Load() {
			return false
		}
		if w.Counters.balanced() {
			if _, _, minLen := w.Best.Snapshot(); minLen < inf {
				w.Term.Store(true)
				return false
			}
		}
		runtime.Gosched()
	}
}
