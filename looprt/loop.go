// File: looprt/loop.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Loop is the loop thread controller (the spec's core dispatch engine): it
// owns the reactor and wake primitive, drains the work and close-handle
// queues, and exposes Post/PostAsync/Walk/Stop to the rest of the core.

package looprt

import (
	"runtime"
	"sync"
	"sync/atomic"

	"golang.org/x/sys/unix"

	"github.com/momentics/loopcore/api"
	"github.com/momentics/loopcore/future"
	"github.com/momentics/loopcore/internal/concurrency"
	"github.com/momentics/loopcore/metrics"
	"github.com/momentics/loopcore/obslog"
	"github.com/momentics/loopcore/reactor"
)

// DefaultMaxLoops bounds how many work/close drain iterations a single
// wake-up may perform before yielding back to the reactor for one tick, so
// a task's own write burst cannot starve other reactor events indefinitely.
// Options.MaxLoops (in turn config.Config.MaxLoops) overrides this per Loop.
const DefaultMaxLoops = 8

type referencer interface {
	Referenced() bool
}

// Loop runs on one dedicated OS thread for its entire lifetime.
type Loop struct {
	log        obslog.Logger
	metrics    *metrics.Registry
	lifetime   api.ApplicationLifetime
	threadPool *concurrency.ThreadPool

	workQ  *concurrency.WorkQueue
	closeQ *concurrency.CloseQueue
	posted concurrency.PostedFlag

	reactor  reactor.EventReactor
	wake     *reactor.Wake
	maxLoops int

	handlesMu sync.Mutex
	handles   map[reactor.Handle]struct{}

	ioMu       sync.Mutex
	ioHandlers map[uintptr]func()

	startMu sync.Mutex
	ready   atomic.Bool
	tid     atomic.Int32

	stopImmediate atomic.Bool
	disposed      atomic.Bool
	hooks         StopHooks

	fatalMu  sync.Mutex
	fatalErr error

	done chan struct{}
}

// Options configures a Loop at construction time. All fields are optional;
// zero values fall back to discard logging, no metrics, and a no-op
// lifetime notification.
type Options struct {
	Log                obslog.Logger
	Metrics            *metrics.Registry
	Lifetime           api.ApplicationLifetime
	ThreadPool         *concurrency.ThreadPool
	QueueSize          int
	CloseQueueCapacity int
	MaxLoops           int
}

// New constructs an unstarted Loop.
func New(opts Options) *Loop {
	if opts.Log == nil {
		opts.Log = obslog.Discard{}
	}
	if opts.Lifetime == nil {
		opts.Lifetime = api.NopLifetime{}
	}
	if opts.ThreadPool == nil {
		opts.ThreadPool = concurrency.NewThreadPool(1, -1, 0)
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = 1024
	}
	if opts.CloseQueueCapacity <= 0 {
		opts.CloseQueueCapacity = 256
	}
	if opts.MaxLoops <= 0 {
		opts.MaxLoops = DefaultMaxLoops
	}
	return &Loop{
		log:        opts.Log,
		metrics:    opts.Metrics,
		lifetime:   opts.Lifetime,
		threadPool: opts.ThreadPool,
		maxLoops:   opts.MaxLoops,
		workQ:      concurrency.NewWorkQueue(opts.QueueSize),
		closeQ:     concurrency.NewCloseQueue(opts.CloseQueueCapacity),
		handles:    make(map[reactor.Handle]struct{}),
		ioHandlers: make(map[uintptr]func()),
		done:       make(chan struct{}),
	}
}

// Start spawns the loop thread and resolves the returned future once
// initialization completes, successfully or not. On failure, no other
// method is valid to call.
func (l *Loop) Start() *future.Future {
	startFut := future.New()

	go func() {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()

		l.startMu.Lock()
		r, err := reactor.NewReactor()
		if err != nil {
			l.startMu.Unlock()
			startFut.Resolve(err)
			return
		}
		l.reactor = r

		w, err := reactor.NewWake(r)
		if err != nil {
			_ = r.Close()
			l.startMu.Unlock()
			startFut.Resolve(err)
			return
		}
		l.wake = w
		l.registerHandle(w)

		l.tid.Store(int32(unix.Gettid()))
		l.ready.Store(true)
		l.startMu.Unlock()

		startFut.Resolve(nil)

		runErr := l.run()

		if !l.stopImmediate.Load() {
			if cleanupErr := l.cleanup(); cleanupErr != nil && runErr == nil {
				runErr = cleanupErr
			}
		}

		if runErr != nil {
			l.setFatal(runErr)
			l.lifetime.Stop()
		}
		l.disposed.Store(true)
		close(l.done)
	}()

	return startFut
}

// cleanup re-references the wake primitive, schedules its disposal through
// the close queue, and runs the reactor a second time to process it.
func (l *Loop) cleanup() error {
	l.wake.Reference()
	w := l.wake
	l.closeQ.Enqueue(concurrency.CloseItem{
		Handle: w,
		Fn: func(h any) error {
			wk := h.(*reactor.Wake)
			wk.Unreference()
			return wk.Dispose()
		},
	})
	if err := l.wake.Send(); err != nil {
		return err
	}
	if err := l.run(); err != nil {
		return err
	}
	return l.reactor.Close()
}

// run executes the reactor's event loop until every registered handle is
// unreferenced (natural exit) or stop-immediate was requested.
func (l *Loop) run() error {
	events := make([]reactor.Event, 64)
	for {
		n, err := l.reactor.Wait(events)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			return err
		}
		for i := 0; i < n; i++ {
			ev := events[i]
			if l.wake.IsWakeEvent(ev) {
				_ = l.wake.Drain()
				l.drainOnWake()
				continue
			}
			l.dispatchIO(ev)
		}
		if l.stopImmediate.Load() {
			return nil
		}
		if !l.anyReferenced() {
			return nil
		}
	}
}

// drainOnWake is the sole entry point draining the work and close-handle
// queues, up to maxLoops iterations per wake-up.
func (l *Loop) drainOnWake() {
	for i := 0; i < l.maxLoops; i++ {
		l.posted.Disarm()

		nWork := l.workQ.Drain(l.runWorkItem)
		nClose := l.closeQ.Drain(l.runCloseItem)

		if l.metrics != nil {
			l.metrics.CloseQueueDepth.Set(float64(l.closeQ.Len()))
		}

		if nWork == 0 && nClose == 0 {
			return
		}
	}
}

func (l *Loop) runWorkItem(item concurrency.WorkItem) {
	err := item.Fn()
	switch {
	case item.Completion != nil && err != nil:
		if tpErr := l.threadPool.Error(item.Completion, err); tpErr != nil {
			l.log.WithError(tpErr).Error("loop: failed to dispatch completion error")
		}
	case item.Completion != nil:
		if tpErr := l.threadPool.Complete(item.Completion); tpErr != nil {
			l.log.WithError(tpErr).Error("loop: failed to dispatch completion")
		}
	case err != nil:
		l.log.WithError(err).Error("loop: unhandled work item error")
		l.setFatal(err)
	}
}

func (l *Loop) runCloseItem(item concurrency.CloseItem) {
	if err := item.Fn(item.Handle); err != nil {
		l.log.WithError(err).Error("loop: close callback error")
		l.setFatal(err)
	}
}

// Post enqueues fire-and-forget work.
func (l *Loop) Post(fn func()) error {
	if l.disposed.Load() || !l.ready.Load() {
		return ErrLoopClosed
	}
	ok := l.workQ.Enqueue(concurrency.WorkItem{Fn: func() error { fn(); return nil }})
	if !ok {
		return ErrQueueFull
	}
	if l.posted.TryFire() {
		return l.wake.Send()
	}
	return nil
}

// PostAsync enqueues work whose completion (success or error) is delivered
// via the external thread pool, never inline on the loop thread.
func (l *Loop) PostAsync(fn func() error) *future.Future {
	fut := future.New()
	if l.disposed.Load() || !l.ready.Load() {
		fut.Resolve(ErrLoopClosed)
		return fut
	}
	ok := l.workQ.Enqueue(concurrency.WorkItem{Fn: fn, Completion: fut})
	if !ok {
		fut.Resolve(ErrQueueFull)
		return fut
	}
	if l.posted.TryFire() {
		if err := l.wake.Send(); err != nil {
			l.log.WithError(err).Warn("loop: wake signal failed after posting async work")
		}
	}
	return fut
}

// Walk invokes fn once per live native handle. Callable only from the loop
// thread.
func (l *Loop) Walk(fn func(reactor.Handle)) error {
	if !l.onLoopThread() {
		return ErrNotLoopThread
	}
	l.handlesMu.Lock()
	snapshot := make([]reactor.Handle, 0, len(l.handles))
	for h := range l.handles {
		snapshot = append(snapshot, h)
	}
	l.handlesMu.Unlock()
	for _, h := range snapshot {
		fn(h)
	}
	return nil
}

// RegisterHandle adds h to the handle registry Walk iterates.
func (l *Loop) RegisterHandle(h reactor.Handle) { l.registerHandle(h) }

func (l *Loop) registerHandle(h reactor.Handle) {
	l.handlesMu.Lock()
	l.handles[h] = struct{}{}
	l.handlesMu.Unlock()
}

// UnregisterHandle removes h from the handle registry.
func (l *Loop) UnregisterHandle(h reactor.Handle) {
	l.handlesMu.Lock()
	delete(l.handles, h)
	l.handlesMu.Unlock()
}

// RegisterIOHandler registers fd with the reactor and arranges for onEvent
// to run, on the loop thread from run's dispatch loop, whenever an epoll
// event for fd is observed. Used by conn.Connection so a write that returns
// EAGAIN can learn when the socket becomes writable again instead of
// retrying blind. Safe to call from any goroutine.
func (l *Loop) RegisterIOHandler(fd uintptr, onEvent func()) error {
	if l.reactor == nil {
		return ErrReactorNotReady
	}
	l.ioMu.Lock()
	l.ioHandlers[fd] = onEvent
	l.ioMu.Unlock()
	return l.reactor.Register(fd, uintptr(fd))
}

// UnregisterIOHandler drops fd's handler and removes it from the reactor.
// Safe to call on an fd about to be closed.
func (l *Loop) UnregisterIOHandler(fd uintptr) {
	l.ioMu.Lock()
	delete(l.ioHandlers, fd)
	l.ioMu.Unlock()
	if l.reactor != nil {
		_ = l.reactor.Unregister(fd)
	}
}

// dispatchIO runs the registered handler for a non-wake event, if any. A
// handler firing for a readable event as well as a writable one is treated
// as an imprecise but harmless wake-up by the only current consumer
// (conn.Connection's write-retry path).
func (l *Loop) dispatchIO(ev reactor.Event) {
	l.ioMu.Lock()
	fn := l.ioHandlers[ev.Fd]
	l.ioMu.Unlock()
	if fn != nil {
		fn()
	}
}

func (l *Loop) anyReferenced() bool {
	l.handlesMu.Lock()
	defer l.handlesMu.Unlock()
	for h := range l.handles {
		if r, ok := h.(referencer); ok && r.Referenced() {
			return true
		}
	}
	return false
}

func (l *Loop) onLoopThread() bool {
	return unix.Gettid() == int(l.tid.Load())
}

func (l *Loop) setFatal(err error) {
	l.fatalMu.Lock()
	if l.fatalErr == nil {
		l.fatalErr = err
	}
	l.fatalMu.Unlock()
	if l.metrics != nil {
		l.metrics.FatalErrorsTotal.Inc()
	}
}

// FatalError returns the captured fatal error from the loop thread, if any.
func (l *Loop) FatalError() error {
	l.fatalMu.Lock()
	defer l.fatalMu.Unlock()
	return l.fatalErr
}

// Ready reports whether Start has completed successfully.
func (l *Loop) Ready() bool { return l.ready.Load() }

// Reactor exposes the loop's event reactor, for components (e.g. the
// connection manager) that need to register or unregister their own
// handles against the same reactor.
func (l *Loop) Reactor() reactor.EventReactor { return l.reactor }
