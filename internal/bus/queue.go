package bus

import "sync/atomic"

// Queue is a bounded single-producer single-consumer ring. Exactly one
// goroutine may push and exactly one may pop. Both positions only ever
// increase, so occupancy is always writePos - readPos and the ring is
// full when that difference reaches capacity.
type Queue[T any] struct {
	buf  []T
	mask uint64

	// The producer and consumer counters sit on their own cache
	// lines so the two sides do not false-share.
	_        [40]byte
	writePos atomic.Uint64
	_        [56]byte
	readPos  atomic.Uint64
	_        [56]byte
}

// NewQueue allocates a queue holding at least the given capacity,
// rounded up to a power of two.
func NewQueue[T any](capacity int) *Queue[T] {
	if capacity <= 0 {
		capacity = 1
	}
	size := uint64(1)
	for size < uint64(capacity) {
		size <<= 1
	}
	return &Queue[T]{
		buf:  make([]T, size),
		mask: size - 1,
	}
}

// TryPush enqueues a value without blocking. It reports false when the
// queue is full.
func (q *Queue[T]) TryPush(v T) bool {
	w := q.writePos.Load()
	if w-q.readPos.Load() > q.mask {
		return false
	}
	q.buf[w&q.mask] = v
	q.writePos.Store(w + 1)
	return true
}

// TryPop dequeues the oldest value without blocking. It reports false
// when the queue is empty.
func (q *Queue[T]) TryPop() (T, bool) {
	var zero T
	r := q.readPos.Load()
	if r == q.writePos.Load() {
		return zero, false
	}
	v := q.buf[r&q.mask]
	q.buf[r&q.mask] = zero // release the slot's reference
	q.readPos.Store(r + 1)
	return v, true
}

// Len returns the current occupancy. It is exact for the producer and
// consumer and a point-in-time estimate for anyone else.
func (q *Queue[T]) Len() int {
	return int(q.writePos.Load() - q.readPos.Load())
}

// Cap returns the queue capacity.
func (q *Queue[T]) Cap() int {
	return len(q.buf)
}

// Empty reports whether the queue has no buffered values.
func (q *Queue[T]) Empty() bool {
	return q.Len() == 0
}

// Full reports whether the queue cannot accept another value.
func (q *Queue[T]) Full() bool {
	return q.Len() > int(q.mask)
}
