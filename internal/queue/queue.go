// Package queue provides a slice-backed FIFO queue.
//
// It backs the SLIP frame reader, which extracts frames on the single
// reading goroutine; the queue itself is not goroutine-safe.
package queue

// FIFO is an unbounded slice-backed first-in-first-out queue.
type FIFO[T any] struct {
	items []T
}

// New creates a FIFO with capacity preallocated for prealloc items.
func New[T any](prealloc int) *FIFO[T] {
	return &FIFO[T]{items: make([]T, 0, prealloc)}
}

// Push adds an item to the tail of the queue.
func (q *FIFO[T]) Push(item T) {
	q.items = append(q.items, item)
}

// Pop removes and returns the item at the head of the queue.
// The second return value is false if the queue is empty.
func (q *FIFO[T]) Pop() (T, bool) {
	var zero T
	if len(q.items) == 0 {
		return zero, false
	}
	item := q.items[0]
	q.items[0] = zero // release the reference for GC
	q.items = q.items[1:]

	return item, true
}

// Peek returns the item at the head of the queue without removing it.
func (q *FIFO[T]) Peek() (T, bool) {
	var zero T
	if len(q.items) == 0 {
		return zero, false
	}
	return q.items[0], true
}

// Len returns the number of items in the queue.
func (q *FIFO[T]) Len() int {
	return len(q.items)
}

// Reset discards all queued items.
func (q *FIFO[T]) Reset() {
	clear(q.items)
	q.items = q.items[:0]
}
