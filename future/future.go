// File: future/future.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Package future provides a minimal single-resolution completion primitive.
// It stands in for spec's "future<void>"/"future<T>" return values from
// Start, PostAsync, and Stop — resolved exactly once, from any goroutine,
// and observed by Wait/WaitContext from any other.
package future

import (
	"context"
	"sync"
)

// Future resolves exactly once with either nil or an error.
type Future struct {
	done chan struct{}
	once sync.Once
	err  error
}

// New returns an unresolved Future.
func New() *Future {
	return &Future{done: make(chan struct{})}
}

// Resolve completes the future with err (nil on success). Subsequent calls
// are no-ops — resolution happens at most once, matching spec's "completion
// resolves exactly once" invariant.
func (f *Future) Resolve(err error) {
	f.once.Do(func() {
		f.err = err
		close(f.done)
	})
}

// Done returns a channel closed once the future resolves.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Wait blocks until resolution and returns the captured error.
func (f *Future) Wait() error {
	<-f.done
	return f.err
}

// WaitContext blocks until resolution or ctx cancellation, whichever first.
// An already-resolved future returns its result even if ctx is already done.
func (f *Future) WaitContext(ctx context.Context) error {
	select {
	case <-f.done:
		return f.err
	default:
	}
	select {
	case <-f.done:
		return f.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Resolved reports whether the future has already resolved, without blocking.
func (f *Future) Resolved() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}
