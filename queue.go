package gated

import "sync"

// queueChunkSize is the number of items per node in the queue's linked list.
// Fixed-size arrays amortize allocation and keep traversal cache friendly.
const queueChunkSize = 128

type queueChunk[T any] struct {
	items [queueChunkSize]T
	next  *queueChunk[T]
	head  int
	tail  int
}

// queue is an unbounded FIFO over a chunked linked list, with chunks
// recycled through a sync.Pool so sustained traffic settles into a
// steady-state allocation footprint. Safe for concurrent use.
//
// Unboundedness is load-bearing: producers (sends, response posting) must
// never block on consumer progress.
type queue[T any] struct {
	mu   sync.Mutex
	head *queueChunk[T]
	tail *queueChunk[T]
	size int
	pool sync.Pool
}

func newQueue[T any]() *queue[T] {
	q := &queue[T]{}
	q.pool.New = func() any { return new(queueChunk[T]) }
	return q
}

func (q *queue[T]) push(v T) {
	q.mu.Lock()
	if q.tail == nil {
		c := q.pool.Get().(*queueChunk[T])
		q.head = c
		q.tail = c
	} else if q.tail.tail == queueChunkSize {
		c := q.pool.Get().(*queueChunk[T])
		q.tail.next = c
		q.tail = c
	}
	q.tail.items[q.tail.tail] = v
	q.tail.tail++
	q.size++
	q.mu.Unlock()
}

func (q *queue[T]) pop() (T, bool) {
	var zero T
	q.mu.Lock()
	if q.size == 0 {
		q.mu.Unlock()
		return zero, false
	}
	c := q.head
	v := c.items[c.head]
	c.items[c.head] = zero
	c.head++
	if c.head == c.tail {
		if c.next == nil {
			// Sole chunk drained; reset in place, skipping a pool round trip.
			c.head = 0
			c.tail = 0
		} else {
			q.head = c.next
			*c = queueChunk[T]{}
			q.pool.Put(c)
		}
	}
	q.size--
	q.mu.Unlock()
	return v, true
}

func (q *queue[T]) len() int {
	q.mu.Lock()
	n := q.size
	q.mu.Unlock()
	return n
}
