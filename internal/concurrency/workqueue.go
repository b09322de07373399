// File: internal/concurrency/workqueue.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// WorkQueue is the C2 component's lock-free half: a multi-producer/
// single-consumer FIFO of WorkItems with an adding/running double buffer
// swapped atomically on every drain, so producers never observe (or block
// on) the buffer currently being consumed. Each half is a Vyukov-style
// MPMC cell ring (mpmcRing, below), paired into the adding/running buffers
// of the work queue.

package concurrency

import (
	"sync/atomic"

	"github.com/momentics/loopcore/future"
)

// WorkItem is a unit of cross-thread work posted to the loop. Completion is
// non-nil iff the item was posted via the awaitable variant (PostAsync).
type WorkItem struct {
	Fn         func() error
	Completion *future.Future
}

type mpmcCell[T any] struct {
	sequence atomic.Uint64
	data     T
}

// mpmcRing is a bounded multi-producer/multi-consumer ring buffer (Dmitry
// Vyukov's algorithm), used here as one half of the work queue's double
// buffer. Capacity is rounded up to a power of two.
type mpmcRing[T any] struct {
	_    [cacheLinePad]byte
	head uint64
	_    [cacheLinePad]byte
	tail uint64
	_    [cacheLinePad]byte
	mask uint64
	cell []mpmcCell[T]
}

const cacheLinePad = 64

func newMPMCRing[T any](capacity int) *mpmcRing[T] {
	if capacity < 2 {
		capacity = 2
	}
	size := 1
	for size < capacity {
		size <<= 1
	}
	r := &mpmcRing[T]{mask: uint64(size - 1), cell: make([]mpmcCell[T], size)}
	for i := range r.cell {
		r.cell[i].sequence.Store(uint64(i))
	}
	return r
}

func (r *mpmcRing[T]) enqueue(val T) bool {
	for {
		tail := atomic.LoadUint64(&r.tail)
		c := &r.cell[tail&r.mask]
		seq := c.sequence.Load()
		switch diff := int64(seq) - int64(tail); {
		case diff == 0:
			if atomic.CompareAndSwapUint64(&r.tail, tail, tail+1) {
				c.data = val
				c.sequence.Store(tail + 1)
				return true
			}
		case diff < 0:
			return false // full
		}
	}
}

func (r *mpmcRing[T]) dequeue() (val T, ok bool) {
	for {
		head := atomic.LoadUint64(&r.head)
		c := &r.cell[head&r.mask]
		seq := c.sequence.Load()
		switch diff := int64(seq) - int64(head+1); {
		case diff == 0:
			if atomic.CompareAndSwapUint64(&r.head, head, head+1) {
				val = c.data
				var zero T
				c.data = zero
				c.sequence.Store(head + r.mask + 1)
				return val, true
			}
		case diff < 0:
			return val, false // empty
		}
	}
}

// WorkQueue is the adding/running double-buffered MPMC work queue.
type WorkQueue struct {
	bufs      [2]*mpmcRing[WorkItem]
	addingIdx atomic.Uint32
}

// NewWorkQueue allocates a work queue whose each half holds up to capacity
// items before Enqueue starts returning false.
func NewWorkQueue(capacity int) *WorkQueue {
	return &WorkQueue{bufs: [2]*mpmcRing[WorkItem]{
		newMPMCRing[WorkItem](capacity),
		newMPMCRing[WorkItem](capacity),
	}}
}

// Enqueue adds an item to whichever buffer is currently "adding". Safe from
// any number of concurrent producer goroutines.
func (q *WorkQueue) Enqueue(item WorkItem) bool {
	idx := q.addingIdx.Load()
	return q.bufs[idx].enqueue(item)
}

// Drain swaps the adding/running roles — sequenced strictly before the drain
// loop below, so the buffer being drained is never the one producers are
// appending to — then dequeues every item from the now-running buffer in
// FIFO order, invoking fn for each. Returns the number of items drained.
func (q *WorkQueue) Drain(fn func(WorkItem)) int {
	oldIdx := q.addingIdx.Load()
	newIdx := 1 - oldIdx
	q.addingIdx.Store(newIdx)

	n := 0
	for {
		item, ok := q.bufs[oldIdx].dequeue()
		if !ok {
			return n
		}
		fn(item)
		n++
	}
}
