// File: looprt/errors.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package looprt

import "errors"

var (
	// ErrLoopClosed is returned by Post/PostAsync once the loop thread has
	// exited, or when the loop was never started.
	ErrLoopClosed = errors.New("looprt: loop closed")

	// ErrQueueFull is returned when the work queue's adding buffer is at
	// capacity; callers should back off and retry.
	ErrQueueFull = errors.New("looprt: work queue full")

	// ErrNotLoopThread guards Walk against being invoked off the loop
	// thread, where touching native handles would violate the core's
	// affinity invariant.
	ErrNotLoopThread = errors.New("looprt: called from a non-loop thread")

	// ErrReactorNotReady is returned by RegisterIOHandler/UnregisterIOHandler
	// when called before Start has initialized the reactor.
	ErrReactorNotReady = errors.New("looprt: reactor not initialized, call Start first")
)
