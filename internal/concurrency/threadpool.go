// File: internal/concurrency/threadpool.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// ThreadPool wraps Executor with a lock-free queue underneath, and is the
// external collaborator the loop thread uses to resolve futures: it never
// runs a user continuation inline on the loop thread (spec §6's thread_pool
// contract: complete(future), error(future, err)).

package concurrency

import "github.com/momentics/loopcore/future"

type ThreadPool struct {
	executor *Executor
}

func NewThreadPool(size, numaNode, channelSize int) *ThreadPool {
	return &ThreadPool{
		executor: NewExecutor(size, numaNode, channelSize),
	}
}

func (tp *ThreadPool) Submit(f func()) error {
	return tp.executor.Submit(f)
}

// Complete resolves fut with a nil error, off the calling (loop) thread.
func (tp *ThreadPool) Complete(fut *future.Future) error {
	return tp.executor.Submit(func() { fut.Resolve(nil) })
}

// Error resolves fut with err, off the calling (loop) thread.
func (tp *ThreadPool) Error(fut *future.Future, err error) error {
	return tp.executor.Submit(func() { fut.Resolve(err) })
}

func (tp *ThreadPool) NumWorkers() int {
	return tp.executor.NumWorkers()
}

func (tp *ThreadPool) Close() {
	tp.executor.Close()
}
