package search

// Heap is a binary min-heap over *Node, keyed by f-score, with
// decrease-key support via each node's stored heapID back-pointer.
// It is not container/heap.Interface: container/heap has
// no O(log n) decrease-key, since it has no notion of "where is this
// element right now" without a linear Index scan, and the HDA* worker
// loop needs exactly that (a node's score can improve after it is already
// queued, every time a cheaper route to it is proposed).
//
// Index 0 of the backing slice is unused, so that a heapID of 0 can mean
// "not in any heap" without colliding with a valid position.
type Heap struct {
	nodes []*Node // nodes[0] is a sentinel, real entries start at 1
}

// NewHeap returns an empty heap.
func NewHeap() *Heap {
	return &Heap{nodes: make([]*Node, 1, 64)}
}

// Len returns the number of entries currently queued.
func (h *Heap) Len() int { return len(h.nodes) - 1 }

// Insert adds node to the heap and sifts it up to its sorted position.
func (h *Heap) Insert(n *Node) {
	h.nodes = append(h.nodes, n)
	i := len(h.nodes) - 1
	n.heapID = i
	h.siftUp(i)
}

// ExtractMin removes and returns the node with the smallest f-score.
// Panics if the heap is empty; callers must check Len() first.
func (h *Heap) ExtractMin() *Node {
	if h.Len() == 0 {
		panic("search: heap: extract-min on empty heap")
	}
	min := h.nodes[1]
	last := len(h.nodes) - 1
	h.nodes[1] = h.nodes[last]
	h.nodes = h.nodes[:last]
	min.heapID = 0
	if len(h.nodes) > 1 {
		h.nodes[1].heapID = 1
		h.siftDown(1)
	}
	return min
}

// DecreaseKey re-sifts n, whose f-score has just improved, up from its
// current position. n must already be in this heap (n.heapID > 0).
func (h *Heap) DecreaseKey(n *Node) {
	if n.heapID <= 0 || n.heapID >= len(h.nodes) || h.nodes[n.heapID] != n {
		panic("search: heap: decrease-key on node not present in this heap")
	}
	h.siftUp(n.heapID)
}

// Discard empties the heap, resetting every remaining entry's heapID to 0
// so a later message targeting one of them inserts it fresh instead of
// reaching DecreaseKey for a node no longer in any heap. Returns the
// number of entries discarded.
func (h *Heap) Discard() int {
	n := h.Len()
	for _, node := range h.nodes[1:] {
		node.heapID = 0
	}
	h.nodes = h.nodes[:1]
	return n
}

func (h *Heap) siftUp(i int) {
	for i > 1 {
		parent := i / 2
		if h.nodes[parent].F() <= h.nodes[i].F() {
			break
		}
		h.swap(parent, i)
		i = parent
	}
}

func (h *Heap) siftDown(i int) {
	n := len(h.nodes) - 1
	for {
		left, right := 2*i, 2*i+1
		smallest := i
		if left <= n && h.nodes[left].F() < h.nodes[smallest].F() {
			smallest = left
		}
		if right <= n && h.nodes[right].F() < h.nodes[smallest].F() {
			smallest = right
		}
		if smallest == i {
			return
		}
		h.swap(i, smallest)
		i = smallest
	}
}

func (h *Heap) swap(i, j int) {
	h.nodes[i], h.nodes[j] = h.nodes[j], h.nodes[i]
	h.nodes[i].heapID = i
	h.nodes[j].heapID = j
}
