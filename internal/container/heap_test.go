package container

import (
	"errors"
	"testing"
)

func TestHeapPopsInWeightOrder(t *testing.T) {
	h := NewHeap[int]()
	weights := []float64{10, 1, 5, -5}
	for _, w := range weights {
		h.Push(int(w), w)
	}

	want := []int{-5, 1, 5, 10}
	for i, expected := range want {
		got, err := h.Pop()
		if err != nil {
			t.Fatalf("pop %d: unexpected error: %v", i, err)
		}
		if got != expected {
			t.Errorf("pop %d: expected %d, got %d", i, expected, got)
		}
	}
	if h.Len() != 0 {
		t.Errorf("expected empty heap after draining, len=%d", h.Len())
	}
}

func TestHeapEqualWeightsPopInInsertionOrder(t *testing.T) {
	h := NewHeap[string]()
	h.Push("first", 3)
	h.Push("second", 3)
	h.Push("third", 3)

	for _, expected := range []string{"first", "second", "third"} {
		got, err := h.Pop()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != expected {
			t.Errorf("expected %q, got %q", expected, got)
		}
	}
}

func TestHeapEmptyOperationsFail(t *testing.T) {
	h := NewHeap[int]()

	if _, err := h.Pop(); !errors.Is(err, ErrEmpty) {
		t.Errorf("expected ErrEmpty from Pop, got %v", err)
	}
	if _, err := h.Peek(); !errors.Is(err, ErrEmpty) {
		t.Errorf("expected ErrEmpty from Peek, got %v", err)
	}
	if _, err := h.PeekWeight(); !errors.Is(err, ErrEmpty) {
		t.Errorf("expected ErrEmpty from PeekWeight, got %v", err)
	}
}

func TestHeapPeekDoesNotRemove(t *testing.T) {
	h := NewHeap[string]()
	h.Push("late", 8)
	h.Push("early", 2)

	top, err := h.Peek()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if top != "early" {
		t.Errorf("expected peek to return lowest weight item, got %q", top)
	}
	w, err := h.PeekWeight()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w != 2 {
		t.Errorf("expected peek weight 2, got %v", w)
	}
	if h.Len() != 2 {
		t.Errorf("peek must not remove entries, len=%d", h.Len())
	}
}

func TestHeapItemsSnapshot(t *testing.T) {
	h := NewHeap[int]()
	h.Push(1, 1)
	h.Push(2, 2)
	h.Push(3, 3)

	items := h.Items()
	if len(items) != 3 {
		t.Fatalf("expected 3 items in snapshot, got %d", len(items))
	}
	sum := 0
	for _, v := range items {
		sum += v
	}
	if sum != 6 {
		t.Errorf("snapshot should contain every held item, sum=%d", sum)
	}
	if h.Len() != 3 {
		t.Errorf("snapshot must not drain the heap, len=%d", h.Len())
	}
}
