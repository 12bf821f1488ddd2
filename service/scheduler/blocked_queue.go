package scheduler

import "fmt"

// blockedQueue is a bounded circular FIFO of worker ids awaiting device
// service. Capacity equals the worker count; the one-outstanding-request-per-
// worker invariant guarantees it never overflows.
type blockedQueue struct {
	items []int
	head  int
	count int
}

func newBlockedQueue(capacity int) *blockedQueue {
	return &blockedQueue{items: make([]int, capacity)}
}

func (q *blockedQueue) enqueue(worker int) error {
	if q.count == len(q.items) {
		return fmt.Errorf("blocked queue full: capacity %d", len(q.items))
	}
	q.items[(q.head+q.count)%len(q.items)] = worker
	q.count++
	return nil
}

// dequeue removes and returns the head; the second return value is false when
// the queue is empty.
func (q *blockedQueue) dequeue() (int, bool) {
	if q.count == 0 {
		return 0, false
	}
	worker := q.items[q.head]
	q.head = (q.head + 1) % len(q.items)
	q.count--
	return worker, true
}

func (q *blockedQueue) isEmpty() bool {
	return q.count == 0
}

func (q *blockedQueue) size() int {
	return q.count
}
