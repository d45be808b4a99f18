package queue

import (
	"sync"
	"sync/atomic"
)

// QueuedChannel represents a channel on which queued items can be published without having to worry if the reader
// has actually consumed existing items first or if there's no way of knowing ahead of time what the ideal channel
// buffer size should be.
type QueuedChannel[T any] struct {
	ch     chan T
	items  []T
	cond   *sync.Cond
	closed atomic.Bool

	discardCh   chan struct{}
	discardOnce sync.Once
}

func NewQueuedChannel[T any](chanBufferSize, queueCapacity int) *QueuedChannel[T] {
	queue := &QueuedChannel[T]{
		ch:        make(chan T, chanBufferSize),
		items:     make([]T, 0, queueCapacity),
		cond:      sync.NewCond(&sync.Mutex{}),
		discardCh: make(chan struct{}),
	}

	go func() {
		defer close(queue.ch)

		for {
			item, ok := queue.pop()
			if !ok {
				return
			}

			select {
			case queue.ch <- item:

			case <-queue.discardCh:
				return
			}
		}
	}()

	return queue
}

func (q *QueuedChannel[T]) Enqueue(items ...T) bool {
	if q.closed.Load() {
		return false
	}

	q.cond.L.Lock()
	defer q.cond.L.Unlock()

	q.items = append(q.items, items...)

	q.cond.Broadcast()

	return true
}

func (q *QueuedChannel[T]) GetChannel() <-chan T {
	return q.ch
}

// Close stops accepting items. The items already queued can still be read from the channel.
func (q *QueuedChannel[T]) Close() {
	q.closed.Store(true)

	q.cond.L.Lock()
	defer q.cond.L.Unlock()

	q.cond.Broadcast()
}

// CloseAndDiscardQueued closes the queue and drops the items nobody read yet.
func (q *QueuedChannel[T]) CloseAndDiscardQueued() {
	q.closed.Store(true)

	q.discardOnce.Do(func() { close(q.discardCh) })

	q.cond.L.Lock()
	defer q.cond.L.Unlock()

	q.items = nil

	q.cond.Broadcast()
}

func (q *QueuedChannel[T]) pop() (T, bool) {
	q.cond.L.Lock()
	defer q.cond.L.Unlock()

	var item T

	// Wait until there are items to pop, returning false immediately if the queue is closed.
	// This allows the queue to continue popping elements if it's closed,
	// but will prevent it from hanging indefinitely once it runs out of items.
	for len(q.items) == 0 {
		if q.closed.Load() {
			return item, false
		}

		q.cond.Wait()
	}

	item, q.items = q.items[0], q.items[1:]

	return item, true
}
