package search

import (
	"sync"
	"sync/atomic"
)

// Counters holds one direction's per-worker message-sent/received
// ledgers. Each worker writes only its own slot, with an atomic add and no
// lock; any worker may sum the whole array with atomic loads when checking
// quiescence.
type Counters struct {
	sent     []atomic.Uint64
	received []atomic.Uint64
}

// NewCounters allocates a ledger pair for workers goroutines.
func NewCounters(workers int) *Counters {
	return &Counters{
		sent:     make([]atomic.Uint64, workers),
		received: make([]atomic.Uint64, workers),
	}
}

func (c *Counters) addSent(id int, n uint64)     { c.sent[id].Add(n) }
func (c *Counters) addReceived(id int, n uint64) { c.received[id].Add(n) }

// balanced reports whether the summed sent and received counters agree
// across every worker in the direction. Agreement alone does not imply
// quiescence: a worker must also have observed its own inbox empty
// immediately before the sums were sampled (see Worker.pollTermination
// and Direction.quiescent).
func (c *Counters) balanced() bool {
	var sent, received uint64
	for i := range c.sent {
		sent += c.sent[i].Load()
		received += c.received[i].Load()
	}
	return sent == received
}

// BestMeeting is the shared best-known meeting point. The prune test may
// compare against a length that has since gone stale -- min_len is
// monotonically non-increasing, so a stale-higher value only costs wasted
// work, never correctness. Reads and writes both go through the mutex.
type BestMeeting struct {
	mu          sync.Mutex
	x, y        int
	minLen      int64
	initialized bool
}

// NewBestMeeting returns the initial (-1, -1, +inf) record.
func NewBestMeeting() *BestMeeting {
	return &BestMeeting{x: -1, y: -1, minLen: inf}
}

// Snapshot returns the current best meeting coordinates and length. Safe
// for concurrent use; the read itself takes the mutex. The relaxed-read
// license described above applies to the prune comparison a caller
// performs against the returned length, not to this accessor racing the
// struct fields directly.
func (b *BestMeeting) Snapshot() (x, y int, minLen int64) {
	b.mu.Lock()
	x, y, minLen = b.x, b.y, b.minLen
	b.mu.Unlock()
	return
}

// TryUpdate installs (x, y, length) as the new best meeting point iff
// length improves on the current minLen. Returns whether it did.
func (b *BestMeeting) TryUpdate(x, y int, length int64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if length < b.minLen {
		b.x, b.y, b.minLen = x, y, length
		return true
	}
	return false
}
