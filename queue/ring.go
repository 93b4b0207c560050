// Package queue provides the bounded FIFO used by protocols to hold
// completed results until a consumer drains them.
//
// A Ring never blocks and never fails: once it holds Cap() items, every Push
// silently discards the oldest item. This keeps memory bounded when nobody
// drains the queue, at the cost of losing data under overload. Callers that
// cannot tolerate loss must drain at least as fast as they feed.
//
// A Ring is not safe for concurrent use.
package queue

// DefaultCapacity is used when a non-positive capacity is requested.
const DefaultCapacity = 100

// Ring is a fixed-capacity, insertion-ordered queue with overwrite-oldest
// semantics.
type Ring[T any] struct {
	items []T
	head  int // index of the oldest item
	size  int
}

// New returns an empty Ring holding at most capacity items.
func New[T any](capacity int) *Ring[T] {
	if capacity < 1 {
		capacity = DefaultCapacity
	}
	return &Ring[T]{items: make([]T, capacity)}
}

// Push inserts item at the newest end. It reports whether the oldest item had
// to be evicted to make room.
func (r *Ring[T]) Push(item T) (evicted bool) {
	if r.size == len(r.items) {
		r.items[r.head] = item
		r.head = (r.head + 1) % len(r.items)
		return true
	}
	r.items[(r.head+r.size)%len(r.items)] = item
	r.size++
	return false
}

// Pop removes and returns the oldest item. ok is false when the ring is empty.
func (r *Ring[T]) Pop() (item T, ok bool) {
	if r.size == 0 {
		return item, false
	}
	var zero T
	item = r.items[r.head]
	r.items[r.head] = zero
	r.head = (r.head + 1) % len(r.items)
	r.size--
	return item, true
}

// Len returns the number of queued items.
func (r *Ring[T]) Len() int {
	return r.size
}

// Cap returns the fixed capacity.
func (r *Ring[T]) Cap() int {
	return len(r.items)
}

// Clear drops every queued item.
func (r *Ring[T]) Clear() {
	clear(r.items)
	r.head = 0
	r.size = 0
}
