// File: pump/pump.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package pump

import (
	"context"
	"errors"

	"golang.org/x/sys/unix"

	"github.com/momentics/loopcore/conn"
	"github.com/momentics/loopcore/looprt"
	"github.com/momentics/loopcore/obslog"
	"github.com/momentics/loopcore/pool"
)

// errWouldBlock signals that a write attempt hit EAGAIN/EWOULDBLOCK: the
// range wasn't consumed and nothing was written, so writeAvailable should
// await writability and retry rather than treating it as connection_error.
var errWouldBlock = errors.New("pump: write would block")

// OutputPump drains one connection's output channel to its socket. One
// instance per connection; Run blocks until the socket closes or the
// channel is cancelled.
type OutputPump struct {
	loop      *looprt.Loop
	conn      *conn.Connection
	writePool *pool.WriteRequestPool
	log       obslog.Logger
}

// New constructs a pump bound to conn's loop and output channel.
func New(loop *looprt.Loop, c *conn.Connection, writePool *pool.WriteRequestPool, log obslog.Logger) *OutputPump {
	if log == nil {
		log = obslog.Discard{}
	}
	return &OutputPump{loop: loop, conn: c, writePool: writePool, log: log}
}

// Run is the pump's main loop. It returns once the connection's output
// channel is cancelled (graceful stop) or ctx is done.
func (p *OutputPump) Run(ctx context.Context) error {
	defer p.releaseConnection()

	for {
		if err := p.conn.Output.Await(ctx); err != nil {
			return p.cancel(ctx)
		}

		if err := p.writeAvailable(ctx); err != nil {
			p.log.WithError(err).Error("connection_error")
		}

		if p.conn.Aborted() {
			return nil
		}
	}
}

// writeAvailable switches onto the loop thread and attempts to write
// whatever is currently buffered. A transient EAGAIN/EWOULDBLOCK does not
// abort the connection: the attempt is retried once the connection's fd
// reports writable again, so the loop thread is never held waiting on a
// full send buffer — the wait happens on this (the pump's own) goroutine.
func (p *OutputPump) writeAvailable(ctx context.Context) error {
	for {
		err := p.attemptWrite()
		if !errors.Is(err, errWouldBlock) {
			return err
		}
		if err := p.conn.AwaitWritable().WaitContext(ctx); err != nil {
			return err
		}
	}
}

// attemptWrite performs one write attempt on the loop thread. It returns
// errWouldBlock (without consuming the range; the write request still goes
// back to the pool) when the socket isn't currently writable; any other
// error is a genuine write failure per the abort-on-error contract.
func (p *OutputPump) attemptWrite() error {
	fut := p.loop.PostAsync(func() error {
		begin, end := p.conn.Output.Range()
		total, nbufs := pool.Count(begin, end)
		if total == 0 {
			return nil
		}

		req := p.writePool.Take()
		var writeErr error
		if nbufs <= 1 {
			req.Buf = pool.Gather(begin, end)[0]
			_, writeErr = unix.Write(int(p.conn.Fd), req.Buf)
		} else {
			req.Bufs = pool.Gather(begin, end)
			_, writeErr = unix.Writev(int(p.conn.Fd), req.Bufs)
		}
		req.Fd = p.conn.Fd
		req.Err = writeErr

		if writeErr == unix.EAGAIN || writeErr == unix.EWOULDBLOCK {
			p.writePool.Return(req)
			return errWouldBlock
		}

		p.conn.Output.Consumed(end)
		p.writePool.Return(req)

		p.log.WithField("connection_id", p.conn.ID).Debug("connection_write_callback")
		if writeErr != nil {
			p.conn.Abort()
			return writeErr
		}
		return nil
	})
	return fut.Wait()
}

// cancel runs the pump's cancellation path: switch onto the loop thread and
// issue a half-close (SHUT_WR) unless the socket is already gone.
func (p *OutputPump) cancel(ctx context.Context) error {
	fut := p.loop.PostAsync(func() error {
		if p.conn.Aborted() {
			return nil
		}
		if err := unix.Shutdown(int(p.conn.Fd), unix.SHUT_WR); err != nil {
			return err
		}
		p.log.WithField("connection_id", p.conn.ID).Debug("connection_wrote_fin")
		return nil
	})
	if err := fut.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		p.log.WithError(err).Warn("connection_shutdown_failed")
	}
	return nil
}

// releaseConnection is the guaranteed-release block: dispose the socket
// handle, notify the connection, dispose the output channel.
func (p *OutputPump) releaseConnection() {
	_ = p.conn.Dispose()
	p.conn.Output.Close()
	p.log.WithField("connection_id", p.conn.ID).Debug("connection_stop")
}

// Stop requests cooperative termination: the pump observes it on its next
// Await.
func (p *OutputPump) Stop() { p.conn.Output.Cancel() }
