package merge

import "github.com/Hydrohaven/cs121-A3/internal/indexer/segment"

// cursorHeap is a min-heap of segment cursors ordered by current term, with
// segment path as a stable tie-break.
type cursorHeap []*segment.Cursor

func (h cursorHeap) Len() int { return len(h) }

func (h cursorHeap) Less(i, j int) bool {
	ti, tj := h[i].Current().Term, h[j].Current().Term
	if ti != tj {
		return ti < tj
	}
	return h[i].Path() < h[j].Path()
}

func (h cursorHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *cursorHeap) Push(x interface{}) {
	*h = append(*h, x.(*segment.Cursor))
}

func (h *cursorHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
