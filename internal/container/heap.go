// Package container holds the low-level collections backing the simulation
// core: a weight-keyed binary min-heap and a doubly linked sequence that
// supports pruning while it is being traversed. Both are single-goroutine
// structures; callers serialize access through the engine loop.
package container

import "errors"

// ErrEmpty is returned when Pop, Peek or PeekWeight is called on an empty heap.
var ErrEmpty = errors.New("container: heap is empty")

type heapEntry[T any] struct {
	item   T
	weight float64
	seq    uint64
}

// Heap is a binary min-heap keyed by a float64 weight. Entries with equal
// weights are popped in insertion order: every Push stamps a monotonically
// increasing sequence number used as a secondary key, so drain order is
// deterministic and replayable.
type Heap[T any] struct {
	entries []heapEntry[T]
	nextSeq uint64
}

// NewHeap creates an empty heap.
func NewHeap[T any]() *Heap[T] {
	return &Heap[T]{}
}

// Len returns the number of entries currently held.
func (h *Heap[T]) Len() int {
	return len(h.entries)
}

// Push inserts an item with the given weight in O(log n).
func (h *Heap[T]) Push(item T, weight float64) {
	h.entries = append(h.entries, heapEntry[T]{item: item, weight: weight, seq: h.nextSeq})
	h.nextSeq++
	h.siftUp(len(h.entries) - 1)
}

// Peek returns the lowest-weight item without removing it.
func (h *Heap[T]) Peek() (T, error) {
	if len(h.entries) == 0 {
		var zero T
		return zero, ErrEmpty
	}
	return h.entries[0].item, nil
}

// PeekWeight returns the weight of the lowest-weight item.
func (h *Heap[T]) PeekWeight() (float64, error) {
	if len(h.entries) == 0 {
		return 0, ErrEmpty
	}
	return h.entries[0].weight, nil
}

// Pop removes and returns the lowest-weight item in O(log n).
func (h *Heap[T]) Pop() (T, error) {
	if len(h.entries) == 0 {
		var zero T
		return zero, ErrEmpty
	}
	top := h.entries[0].item
	last := len(h.entries) - 1
	h.entries[0] = h.entries[last]
	h.entries[last] = heapEntry[T]{} // release the reference
	h.entries = h.entries[:last]
	if len(h.entries) > 0 {
		h.siftDown(0)
	}
	return top, nil
}

// Items returns a snapshot of all held items in unspecified order.
// Used by aggregate queries that sum over the heap without draining it.
func (h *Heap[T]) Items() []T {
	items := make([]T, len(h.entries))
	for i, e := range h.entries {
		items[i] = e.item
	}
	return items
}

func (h *Heap[T]) less(i, j int) bool {
	a, b := h.entries[i], h.entries[j]
	if a.weight != b.weight {
		return a.weight < b.weight
	}
	return a.seq < b.seq
}

func (h *Heap[T]) siftUp(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if !h.less(i, parent) {
			return
		}
		h.entries[i], h.entries[parent] = h.entries[parent], h.entries[i]
		i = parent
	}
}

func (h *Heap[T]) siftDown(i int) {
	n := len(h.entries)
	for {
		smallest := i
		if left := 2*i + 1; left < n && h.less(left, smallest) {
			smallest = left
		}
		if right := 2*i + 2; right < n && h.less(right, smallest) {
			smallest = right
		}
		if smallest == i {
			return
		}
		h.entries[i], h.entries[smallest] = h.entries[smallest], h.entries[i]
		i = smallest
	}
}
