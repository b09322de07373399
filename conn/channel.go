// File: conn/channel.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// ByteChannel is the output channel a connection's pump drains: request-
// processing code appends bytes on any goroutine, and the pump awaits
// availability, reads a [begin, end) range, and marks it consumed once
// written.

package conn

import (
	"context"
	"sync"

	"github.com/momentics/loopcore/pool"
)

// ByteChannel bridges producer goroutines and the loop-thread-bound output
// pump via a coalescing notify signal plus a cancellable context.
type ByteChannel struct {
	chain *pool.Chain

	mu       sync.Mutex
	consumed pool.BlockRef

	notify chan struct{}
	ctx    context.Context
	cancel context.CancelFunc
}

// NewByteChannel constructs a channel backed by chain.
func NewByteChannel(chain *pool.Chain) *ByteChannel {
	ctx, cancel := context.WithCancel(context.Background())
	return &ByteChannel{
		chain:    chain,
		consumed: chain.Begin(),
		notify:   make(chan struct{}, 1),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Write appends p to the channel and wakes any pending Await.
func (c *ByteChannel) Write(p []byte) pool.BlockRef {
	c.mu.Lock()
	end := c.chain.Append(p)
	c.mu.Unlock()
	select {
	case c.notify <- struct{}{}:
	default:
	}
	return end
}

// Await suspends until bytes are available, the caller's ctx is done, or
// the channel itself is cancelled — whichever comes first.
func (c *ByteChannel) Await(ctx context.Context) error {
	select {
	case <-c.notify:
		return nil
	case <-c.ctx.Done():
		return c.ctx.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Range returns the unconsumed [begin, end) span as of now.
func (c *ByteChannel) Range() (begin, end pool.BlockRef) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.consumed, c.chain.Begin()
}

// Consumed advances the consumed cursor to end and releases fully-consumed
// blocks back to the pool.
func (c *ByteChannel) Consumed(end pool.BlockRef) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.consumed = end
	c.chain.Release(end)
}

// Cancel signals the pump's next Await to return context.Canceled.
func (c *ByteChannel) Cancel() { c.cancel() }

// Done reports the channel's cancellation signal.
func (c *ByteChannel) Done() <-chan struct{} { return c.ctx.Done() }

// Close is an alias for Cancel, named for symmetry with the pump's
// "dispose the output channel" cleanup step.
func (c *ByteChannel) Close() { c.cancel() }
