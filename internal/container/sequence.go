package container

import "iter"

type seqNode[T any] struct {
	value      T
	prev, next *seqNode[T]
}

// Sequence is a doubly linked list with O(1) append, prepend and unlink.
// Its distinguishing operation is KeepWhile, which sums and prunes in a
// single pass: elements failing the predicate are unlinked as the traversal
// walks over them instead of in a separate sweep.
type Sequence[T any] struct {
	head, tail *seqNode[T]
	length     int
}

// NewSequence creates an empty sequence.
func NewSequence[T any]() *Sequence[T] {
	return &Sequence[T]{}
}

// Len returns the number of elements currently linked.
func (s *Sequence[T]) Len() int {
	return s.length
}

// Append adds v at the tail in O(1).
func (s *Sequence[T]) Append(v T) {
	n := &seqNode[T]{value: v, prev: s.tail}
	if s.tail != nil {
		s.tail.next = n
	} else {
		s.head = n
	}
	s.tail = n
	s.length++
}

// Prepend adds v at the head in O(1).
func (s *Sequence[T]) Prepend(v T) {
	n := &seqNode[T]{value: v, next: s.head}
	if s.head != nil {
		s.head.prev = n
	} else {
		s.tail = n
	}
	s.head = n
	s.length++
}

// Remove unlinks the first element for which match returns true and reports
// whether one was found. The scan starts at the tail: removal targets are
// usually elements that were appended recently, so this is cheaper on
// average than a head scan. It is a heuristic only; correctness does not
// depend on it.
func (s *Sequence[T]) Remove(match func(T) bool) bool {
	for n := s.tail; n != nil; n = n.prev {
		if match(n.value) {
			s.unlink(n)
			return true
		}
	}
	return false
}

// Contains reports whether any linked element satisfies match.
func (s *Sequence[T]) Contains(match func(T) bool) bool {
	for n := s.tail; n != nil; n = n.prev {
		if match(n.value) {
			return true
		}
	}
	return false
}

// Clear unlinks every element.
func (s *Sequence[T]) Clear() {
	s.head = nil
	s.tail = nil
	s.length = 0
}

// Values returns a snapshot of the elements in head-to-tail order.
func (s *Sequence[T]) Values() []T {
	out := make([]T, 0, s.length)
	for n := s.head; n != nil; n = n.next {
		out = append(out, n.value)
	}
	return out
}

// KeepWhile returns a lazy head-to-tail traversal that yields elements
// satisfying keep and unlinks, in O(1) each, the elements that do not.
// Each call starts a fresh pass. Stopping the iteration early leaves the
// remainder of the sequence untouched, including elements that would have
// been unlinked.
func (s *Sequence[T]) KeepWhile(keep func(T) bool) iter.Seq[T] {
	return func(yield func(T) bool) {
		n := s.head
		for n != nil {
			next := n.next
			if keep(n.value) {
				if !yield(n.value) {
					return
				}
			} else {
				s.unlink(n)
			}
			n = next
		}
	}
}

func (s *Sequence[T]) unlink(n *seqNode[T]) {
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		s.head = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		s.tail = n.prev
	}
	n.prev = nil
	n.next = nil
	s.length--
}
