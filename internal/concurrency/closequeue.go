// File: internal/concurrency/closequeue.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// CloseQueue is C2's mutex-guarded half: closes originate overwhelmingly
// from the loop thread itself, so a short-critical-section mutex swap
// (rather than the work queue's lock-free ring) is sufficient and simpler.
// Backed by github.com/eapache/queue, a growable ring-buffer FIFO — a
// teacher dependency (momentics-hioload-ws/go.mod) that was declared but
// never imported anywhere in the teacher tree; this is its first use.

package concurrency

import (
	"sync"

	"github.com/eapache/queue"
)

// CloseItem is a deferred handle-destruction unit, consumed on the loop
// thread. Fn must only touch Handle from that thread.
type CloseItem struct {
	Fn     func(h any) error
	Handle any
}

// CloseQueue double-buffers close items behind a mutex swap. eapache/queue
// grows without bound, so capacity isn't enforced by the backing structure
// itself; instead Enqueue reports whether the queue was at or over capacity
// so callers (and metrics) can observe sustained backlog instead of it
// growing silently forever.
type CloseQueue struct {
	mu       sync.Mutex
	adding   *queue.Queue
	capacity int
}

// NewCloseQueue returns a queue that reports itself over capacity once it
// holds capacity items. capacity <= 0 falls back to 256, matching
// config.DefaultConfig's CloseQueueCapacity.
func NewCloseQueue(capacity int) *CloseQueue {
	if capacity <= 0 {
		capacity = 256
	}
	return &CloseQueue{adding: queue.New(), capacity: capacity}
}

// Enqueue appends item to the current adding buffer. ok is false when the
// queue was already at or over capacity before this call — the item is
// still enqueued (a close must never be dropped), but the caller should log
// the backlog.
func (q *CloseQueue) Enqueue(item CloseItem) (ok bool) {
	q.mu.Lock()
	ok = q.adding.Length() < q.capacity
	q.adding.Add(item)
	q.mu.Unlock()
	return ok
}

// Drain swaps in a fresh adding buffer (so items enqueued during fn's
// execution defer to the next Drain call, never the current one), then
// invokes fn once per item from the swapped-out buffer in FIFO order.
// Returns the number of items drained.
func (q *CloseQueue) Drain(fn func(CloseItem)) int {
	q.mu.Lock()
	running := q.adding
	q.adding = queue.New()
	q.mu.Unlock()

	n := running.Length()
	for i := 0; i < n; i++ {
		fn(running.Remove().(CloseItem))
	}
	return n
}

// Len reports the approximate number of items awaiting the next drain.
func (q *CloseQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.adding.Length()
}
