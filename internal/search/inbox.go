package search

import (
	"sync"
	"sync/atomic"
)

// message is one HDA* successor proposal: the worker that just expanded
// parent is proposing that (x, y) is reachable at cost g. It is routed to
// the inbox of the worker that owns (x, y).
type message struct {
	parent *Node
	x, y   int
	g      int64

	// next links the message into whichever stack currently owns it: the
	// inbox's pending chain while queued, or the pool's free-list once
	// released. The two uses never overlap.
	next atomic.Pointer[message]
}

// approxMessageSize is used only to size chunks; it need not be exact.
const approxMessageSize = 48

// messagePool is a per-inbox message allocator: a chunked bump allocator,
// analogous to the node arena, plus a recycling free-list, both guarded
// by one mutex rather than further CAS. A mutex-guarded chunked ingress
// queue outperforms a lock-free one under contention here: lock-free CAS
// causes O(N) retry storms when N producers compete for one slot, and
// with up to GOMAXPROCS/2 producer workers hammering one consumer's pool,
// that is precisely this allocator's access pattern. The Inbox itself,
// below, is the component that must stay lock-free; this allocator
// backing it is not.
type messagePool struct {
	mu       sync.Mutex
	chunkLen int
	cur      []message
	pos      int
	free     *message
}

func newMessagePool(chunkBytes int) *messagePool {
	if chunkBytes <= 0 {
		chunkBytes = 64 * 1024
	}
	n := chunkBytes / approxMessageSize
	if n < 1 {
		n = 1
	}
	return &messagePool{chunkLen: n}
}

// alloc returns a message initialized with the given fields, reused from
// the free-list when one is available.
func (p *messagePool) alloc(parent *Node, x, y int, g int64) *message {
	p.mu.Lock()
	var m *message
	if p.free != nil {
		m = p.free
		p.free = m.next.Load()
		m.next.Store(nil)
	} else {
		if p.cur == nil || p.pos == len(p.cur) {
			p.cur = make([]message, p.chunkLen)
			p.pos = 0
		}
		m = &p.cur[p.pos]
		p.pos++
	}
	p.mu.Unlock()

	m.parent, m.x, m.y, m.g = parent, x, y, g
	return m
}

// release returns m to the free-list for reuse by a future alloc.
func (p *messagePool) release(m *message) {
	p.mu.Lock()
	m.next.Store(p.free)
	p.free = m
	p.mu.Unlock()
}

// Inbox is a single-consumer, multi-producer lock-free stack of pending
// messages. Producers push via a compare-and-swap loop; the consumer
// drains by atomically exchanging the head with nil.
type Inbox struct {
	head atomic.Pointer[message]
	pool *messagePool
}

// NewInbox returns an empty inbox whose message allocator uses
// chunkBytes-sized chunks (0 selects a default).
func NewInbox(chunkBytes int) *Inbox {
	return &Inbox{pool: newMessagePool(chunkBytes)}
}

// Push enqueues a proposal that (x, y) is reachable from parent at cost g.
// Safe to call concurrently from any number of producer goroutines.
func (ib *Inbox) Push(parent *Node, x, y int, g int64) {
	m := ib.pool.alloc(parent, x, y, g)
	for {
		old := ib.head.Load()
		m.next.Store(old)
		if ib.head.CompareAndSwap(old, m) {
			return
		}
	}
}

// Empty reports whether the inbox currently has no pending messages. A
// false-negative race against a concurrent Push is inherent to polling an
// MPSC queue this way and is exactly what the termination detector's
// resample loop (Worker.pollTermination) accounts for.
func (ib *Inbox) Empty() bool {
	return ib.head.Load() == nil
}

// Drain atomically detaches the entire pending chain and returns it in
// arrival order (oldest first) -- the reverse of the LIFO order Push
// built it in. Every returned message must be passed to Release once
// consumed.
func (ib *Inbox) Drain() []*message {
	head := ib.head.Swap(nil)
	if head == nil {
		return nil
	}
	var msgs []*message
	for m := head; m != nil; {
		next := m.next.Load()
		msgs = append(msgs, m)
		m = next
	}
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs
}

// Release returns m to this inbox's pool for reuse.
func (ib *Inbox) Release(m *message) {
	ib.pool.release(m)
}
