package sssp

// MinHeap is a concrete-typed binary min-heap of (vertex, distance) pairs.
// Avoids interface boxing overhead of container/heap. Entries with equal
// distance pop in ascending vertex order so runs are deterministic.
type MinHeap struct {
	items []Pair
}

func (h *MinHeap) Len() int { return len(h.items) }

func (h *MinHeap) Push(vertex uint32, dist float64) {
	h.items = append(h.items, Pair{Vertex: vertex, Dist: dist})
	h.siftUp(len(h.items) - 1)
}

func (h *MinHeap) Pop() Pair {
	n := len(h.items)
	item := h.items[0]
	h.items[0] = h.items[n-1]
	h.items = h.items[:n-1]
	if len(h.items) > 0 {
		h.siftDown(0)
	}
	return item
}

// Reset empties the heap, keeping its capacity.
func (h *MinHeap) Reset() {
	h.items = h.items[:0]
}

func (h *MinHeap) siftUp(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if !h.items[i].less(h.items[parent]) {
			break
		}
		h.items[i], h.items[parent] = h.items[parent], h.items[i]
		i = parent
	}
}

func (h *MinHeap) siftDown(i int) {
	n := len(h.items)
	for {
		smallest := i
		left := 2*i + 1
		right := 2*i + 2
		if left < n && h.items[left].less(h.items[smallest]) {
			smallest = left
		}
		if right < n && h.items[right].less(h.items[smallest]) {
			smallest = right
		}
		if smallest == i {
			break
		}
		h.items[i], h.items[smallest] = h.items[smallest], h.items[i]
		i = smallest
	}
}
