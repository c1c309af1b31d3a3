// Package queue provides the bounded pending-candle queue between the engine
// and the persistence writer.
package queue

import "sync"

// Bounded is a thread-safe FIFO ring with a hard capacity. When a push would
// exceed the cap, the oldest entries are dropped: bounded memory wins over
// completeness during sustained storage outages. Failed batches go back to
// the front so retry preserves order.
type Bounded[T any] struct {
	mu       sync.Mutex
	buf      []T
	head     int // read position
	tail     int // write position
	count    int
	capacity int

	// Stats
	totalPushed  int64
	totalDrained int64
	totalDropped int64
}

// NewBounded creates a queue holding at most capacity items.
func NewBounded[T any](capacity int) *Bounded[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Bounded[T]{
		buf:      make([]T, capacity),
		capacity: capacity,
	}
}

// Push appends an item, dropping the oldest entry first if the queue is at
// capacity. Returns the number of items dropped (0 or 1).
func (q *Bounded[T]) Push(item T) int {
	q.mu.Lock()
	defer q.mu.Unlock()

	dropped := 0
	if q.count == q.capacity {
		q.dropOldestLocked()
		dropped = 1
	}

	q.buf[q.tail] = item
	q.tail = (q.tail + 1) % q.capacity
	q.count++
	q.totalPushed++
	return dropped
}

// PushFront returns a batch of items to the front of the queue in order, so
// items[0] is drained first again. Items that do not fit are dropped from the
// back of the provided batch; the drop count is returned. This only happens
// when the queue refilled to capacity between a drain and its requeue.
func (q *Bounded[T]) PushFront(items []T) int {
	q.mu.Lock()
	defer q.mu.Unlock()

	room := q.capacity - q.count
	dropped := 0
	if len(items) > room {
		dropped = len(items) - room
		q.totalDropped += int64(dropped)
		items = items[:room]
	}

	for i := len(items) - 1; i >= 0; i-- {
		q.head = (q.head - 1 + q.capacity) % q.capacity
		q.buf[q.head] = items[i]
		q.count++
	}
	return dropped
}

// Drain removes and returns up to max items (all items if max <= 0).
func (q *Bounded[T]) Drain(max int) []T {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.count == 0 {
		return nil
	}

	n := q.count
	if max > 0 && max < n {
		n = max
	}

	result := make([]T, n)
	for i := 0; i < n; i++ {
		result[i] = q.buf[q.head]
		var zero T
		q.buf[q.head] = zero // Clear reference for GC
		q.head = (q.head + 1) % q.capacity
		q.count--
		q.totalDrained++
	}
	return result
}

// Len returns the current number of queued items.
func (q *Bounded[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.count
}

// Stats returns queue statistics.
func (q *Bounded[T]) Stats() Stats {
	q.mu.Lock()
	defer q.mu.Unlock()
	return Stats{
		Count:        q.count,
		Capacity:     q.capacity,
		TotalPushed:  q.totalPushed,
		TotalDrained: q.totalDrained,
		TotalDropped: q.totalDropped,
	}
}

// Stats contains queue statistics.
type Stats struct {
	Count        int
	Capacity     int
	TotalPushed  int64
	TotalDrained int64
	TotalDropped int64
}

// dropOldestLocked removes the head entry. Must be called with lock held.
func (q *Bounded[T]) dropOldestLocked() {
	var zero T
	q.buf[q.head] = zero
	q.head = (q.head + 1) % q.capacity
	q.count--
	q.totalDropped++
}
