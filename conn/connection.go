// File: conn/connection.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package conn

import (
	"errors"
	"sync"
	"sync/atomic"

	"golang.org/x/sys/unix"

	"github.com/momentics/loopcore/future"
	"github.com/momentics/loopcore/looprt"
	"github.com/momentics/loopcore/pool"
	"github.com/momentics/loopcore/reactor"
)

// errNotRegisteredForIO is returned by AwaitWritable when the connection's
// fd could not be registered with the reactor at construction time, so
// there is no event that would ever resolve the wait.
var errNotRegisteredForIO = errors.New("conn: fd not registered with reactor, cannot await writable")

// Connection holds a stream socket bound to the loop, its output channel,
// and a reference to the write-request pool the output pump draws from.
// The socket itself must only be touched on the loop thread.
type Connection struct {
	reactor.Refcounted

	ID     string
	Fd     uintptr
	Output *ByteChannel

	loop      *looprt.Loop
	writePool *pool.WriteRequestPool

	aborted atomic.Bool
	once    sync.Once
	done    chan struct{}

	ioRegistered bool
	writableMu   sync.Mutex
	writable     *future.Future
}

// New constructs a Connection bound to loop, registers it as a native
// handle, and returns it referenced (so it counts toward the loop's
// natural-exit condition until closed). fd is switched to non-blocking so
// the loop thread can never stall inside a write syscall on a full send
// buffer, and is registered with the reactor so the output pump can learn
// when a write that returned EAGAIN may be retried.
func New(id string, fd uintptr, loop *looprt.Loop, chain *pool.Chain, writePool *pool.WriteRequestPool) *Connection {
	_ = unix.SetNonblock(int(fd), true)

	c := &Connection{
		ID:        id,
		Fd:        fd,
		Output:    NewByteChannel(chain),
		loop:      loop,
		writePool: writePool,
		done:      make(chan struct{}),
	}
	c.Reference()
	loop.RegisterHandle(c)
	c.ioRegistered = loop.RegisterIOHandler(fd, c.onWritable) == nil
	return c
}

// AwaitWritable returns a future that resolves the next time the reactor
// observes an event on this connection's fd, for the output pump to await
// after a write returns EAGAIN. Safe to call from any goroutine.
func (c *Connection) AwaitWritable() *future.Future {
	c.writableMu.Lock()
	defer c.writableMu.Unlock()
	if !c.ioRegistered {
		f := future.New()
		f.Resolve(errNotRegisteredForIO)
		return f
	}
	if c.writable == nil || c.writable.Resolved() {
		c.writable = future.New()
	}
	return c.writable
}

// onWritable resolves any pending AwaitWritable future. Called on the loop
// thread from the reactor's dispatch loop.
func (c *Connection) onWritable() {
	c.writableMu.Lock()
	f := c.writable
	c.writableMu.Unlock()
	if f != nil {
		f.Resolve(nil)
	}
}

// Abort marks the connection failed and cancels its output channel so the
// pump's next await observes cancellation and begins cleanup.
func (c *Connection) Abort() {
	if c.aborted.CompareAndSwap(false, true) {
		c.Output.Cancel()
	}
}

// Aborted reports whether Abort has been called.
func (c *Connection) Aborted() bool { return c.aborted.Load() }

// OnSocketClosed is invoked by the output pump's guaranteed-release block
// once the socket handle has been disposed.
func (c *Connection) OnSocketClosed() {
	c.once.Do(func() { close(c.done) })
}

// Done reports the socket-closed signal, for WalkAndCloseAll to wait on.
func (c *Connection) Done() <-chan struct{} { return c.done }

// Dispose implements reactor.Handle: unregisters the connection and closes
// its socket. Called from the loop thread only (via Walk during StopRude,
// or explicitly after a graceful pump exit).
func (c *Connection) Dispose() error {
	c.Unreference()
	c.loop.UnregisterHandle(c)
	if c.ioRegistered {
		c.loop.UnregisterIOHandler(c.Fd)
	}
	c.Abort()
	err := unix.Close(int(c.Fd))
	c.OnSocketClosed()
	return err
}

var _ reactor.Handle = (*Connection)(nil)
