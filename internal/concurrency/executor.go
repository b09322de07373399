// File: internal/concurrency/executor.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Executor is the external collaborator the loop thread hands future
// resolution off to (ThreadPool wraps it): spec.md's "thread pool", which
// must never run a user continuation inline on the loop thread. Tasks land
// on a worker's completionRing by round robin, falling back to a shared
// channel when a worker's ring is momentarily full, and each worker drains
// its own ring before ever touching the shared one.

package concurrency

import (
	"errors"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/momentics/loopcore/affinity"
)

// ErrExecutorClosed is returned by Submit once Close has run.
var ErrExecutorClosed = errors.New("concurrency: executor closed")

// TaskFunc is a unit of work submitted to the executor — almost always a
// future.Future resolution closure built by ThreadPool.Complete/Error.
type TaskFunc func()

// Executor dispatches TaskFuncs across a fixed pool of worker goroutines.
type Executor struct {
	overflow   chan TaskFunc             // shared fallback when a worker's ring is full
	rings      []*completionRing[TaskFunc]
	workers    []*worker
	closeCh    chan struct{}
	closed     int32
	numWorkers int32
	mu         sync.Mutex // guards shutdown bookkeeping

	totalTasks     int64
	completedTasks int64
}

// NewExecutor builds an Executor with numWorkers goroutines (runtime.NumCPU
// if numWorkers <= 0), each pinned via affinity.SetAffinity to the logical
// CPU whose index equals numaNode when numaNode >= 0, and each
// worker's ring sized to ringSize (rounded up to a power of two; 1024 if
// ringSize <= 0, matching config.Config.ChannelSize's default).
func NewExecutor(numWorkers, numaNode, ringSize int) *Executor {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	if ringSize <= 0 {
		ringSize = 1024
	}
	e := &Executor{
		overflow:   make(chan TaskFunc, numWorkers*4),
		closeCh:    make(chan struct{}),
		numWorkers: int32(numWorkers),
	}
	e.rings = make([]*completionRing[TaskFunc], numWorkers)
	e.workers = make([]*worker, numWorkers)
	for i := 0; i < numWorkers; i++ {
		e.rings[i] = NewLockFreeQueue[TaskFunc](ringSize)
	}
	for i := 0; i < numWorkers; i++ {
		w := &worker{
			id:       i,
			executor: e,
			ring:     e.rings[i],
			stopCh:   make(chan struct{}),
		}
		e.workers[i] = w
		go w.run(numaNode)
	}
	return e
}

// Submit places task on a worker's ring by round robin, falling back to the
// shared overflow channel when that ring is momentarily full (waiting for
// room there if it is full too). Returns ErrExecutorClosed once Close has
// run.
func (e *Executor) Submit(task TaskFunc) error {
	if atomic.LoadInt32(&e.closed) == 1 {
		return ErrExecutorClosed
	}
	atomic.AddInt64(&e.totalTasks, 1)
	idx := int(atomic.LoadInt64(&e.totalTasks) % int64(e.NumWorkers()))
	if e.rings[idx].Enqueue(task) {
		return nil
	}
	select {
	case e.overflow <- task:
		return nil
	case <-e.closeCh:
		return ErrExecutorClosed
	}
}

// NumWorkers returns the current number of active workers.
func (e *Executor) NumWorkers() int {
	return int(atomic.LoadInt32(&e.numWorkers))
}

// Close signals every worker to drain its ring and exit, then returns once
// the shutdown signal has been delivered (does not block on worker exit).
func (e *Executor) Close() {
	if atomic.CompareAndSwapInt32(&e.closed, 0, 1) {
		close(e.closeCh)
		e.mu.Lock()
		defer e.mu.Unlock()
		for _, w := range e.workers {
			close(w.stopCh)
		}
	}
}

// Stats returns basic executor counters, surfaced for diagnostics.
func (e *Executor) Stats() map[string]int64 {
	return map[string]int64{
		"total_tasks":     atomic.LoadInt64(&e.totalTasks),
		"completed_tasks": atomic.LoadInt64(&e.completedTasks),
		"pending_tasks":   atomic.LoadInt64(&e.totalTasks) - atomic.LoadInt64(&e.completedTasks),
		"num_workers":     int64(e.NumWorkers()),
	}
}

// worker is one executor goroutine: it drains its own ring first, then the
// shared overflow channel, backing off briefly when both are empty.
type worker struct {
	id       int
	executor *Executor
	ring     *completionRing[TaskFunc]
	stopCh   chan struct{}
	stopped  int32
}

// run is the worker's main loop, optionally pinned to the logical CPU whose
// index equals numaNode for the whole goroutine lifetime.
func (w *worker) run(numaNode int) {
	defer atomic.StoreInt32(&w.stopped, 1)
	if numaNode >= 0 {
		runtime.LockOSThread()
		_ = affinity.SetAffinity(numaNode)
	}
	for {
		select {
		case <-w.stopCh:
			return
		default:
			if task, ok := w.ring.Dequeue(); ok {
				w.executeTask(task)
				continue
			}
			select {
			case task := <-w.executor.overflow:
				w.executeTask(task)
			case <-w.stopCh:
				return
			default:
				time.Sleep(time.Millisecond)
			}
		}
	}
}

// executeTask runs task, recovering from a panicking completion closure so
// one broken future resolution can't take the worker down with it.
func (w *worker) executeTask(task TaskFunc) {
	defer func() {
		if r := recover(); r != nil {
			// a completion closure panicked (e.g. a caller's own callback);
			// the worker keeps running rather than losing the whole ring.
		}
		atomic.AddInt64(&w.executor.completedTasks, 1)
	}()
	task()
}
