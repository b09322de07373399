// File: looprt/stop.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Three-phase shutdown: AllowStop tries a graceful exit by unreferencing
// the wake primitive; StopRude walks and disposes every remaining handle if
// that timed out; StopImmediate forces the reactor to stop, leaking
// resources deliberately in exchange for a bounded shutdown.

package looprt

import (
	"context"
	"errors"
	"time"

	"github.com/momentics/loopcore/future"
)

// StopHooks are optional pre-stop callbacks run before the three-phase
// shutdown proper: closing live connections (C5) and disposing the
// write-request and memory pools (C3/C4). Any nil field is skipped.
type StopHooks struct {
	CloseConnections  func(ctx context.Context, timeout time.Duration) (bool, error)
	DisposeWritePool  func()
	DisposeMemoryPool func()
}

// SetStopHooks installs hooks to run at the start of Stop. Must be called
// before Stop; not safe for concurrent use with Stop itself.
func (l *Loop) SetStopHooks(hooks StopHooks) { l.hooks = hooks }

// Stop runs the pre-stop hooks (CloseConnections is given timeout), then the
// three shutdown phases, each waiting up to a third of timeout for the loop
// thread to exit. The returned future resolves once the thread has exited
// or the last phase has timed out, with any fatal error captured on the
// loop thread.
func (l *Loop) Stop(timeout time.Duration) *future.Future {
	result := future.New()

	l.startMu.Lock()
	if !l.ready.Load() {
		l.startMu.Unlock()
		result.Resolve(nil)
		return result
	}
	l.startMu.Unlock()

	go func() {
		l.runPreStopHooks(timeout)

		step := timeout / 3
		l.runPhase("allow_stop", step, func() error {
			return l.Post(func() { l.wake.Unreference() })
		})
		if !l.threadExited() {
			l.runPhase("stop_rude", step, func() error {
				return l.Post(l.disposeNonWakeHandles)
			})
		}
		if !l.threadExited() {
			l.runPhase("stop_immediate", step, func() error {
				return l.Post(func() { l.stopImmediate.Store(true) })
			})
		}

		if !l.threadExited() {
			l.log.Error("stop: loop thread failed to terminate")
		}
		result.Resolve(l.FatalError())
	}()

	return result
}

// runPreStopHooks runs the pre-stop callbacks strictly in order: close
// every connection (waiting up to timeout), then dispose the write-request
// pool, then dispose the memory pool. The pools must not be torn down while
// a connection could still be draining them, so nothing here runs
// concurrently with CloseConnections.
func (l *Loop) runPreStopHooks(timeout time.Duration) {
	if l.hooks.CloseConnections != nil {
		ok, err := l.hooks.CloseConnections(context.Background(), timeout)
		if err != nil {
			l.log.WithError(err).Warn("not_all_connections_closed_gracefully")
		} else if !ok {
			l.log.Warn("not_all_connections_closed_gracefully")
		}
	}
	if l.hooks.DisposeWritePool != nil {
		l.runPreStopStep(l.hooks.DisposeWritePool)
	}
	if l.hooks.DisposeMemoryPool != nil {
		l.runPreStopStep(l.hooks.DisposeMemoryPool)
	}
}

// runPreStopStep posts fn onto the loop thread and blocks until it has run,
// so the next pre-stop step never races it.
func (l *Loop) runPreStopStep(fn func()) {
	fut := l.PostAsync(func() error { fn(); return nil })
	if err := fut.Wait(); err != nil {
		l.log.WithError(err).Warn("stop: pre-stop step failed")
	}
}

// runPhase posts fn and waits up to step for the loop thread to exit,
// recording the outcome in metrics. An ErrLoopClosed from the post (loop
// thread already exited between phases) is swallowed; any other post error
// is recorded as the fatal error Stop resolves with. Either way the phase's
// timeout wait still runs so a concurrently-exiting thread is observed.
func (l *Loop) runPhase(phase string, step time.Duration, fn func() error) {
	if err := fn(); err != nil {
		l.log.WithField("phase", phase).WithError(err).Debug("stop phase post failed")
		if !errors.Is(err, ErrLoopClosed) {
			l.setFatal(err)
		}
	}

	outcome := "timeout"
	select {
	case <-l.done:
		outcome = "exited"
	case <-time.After(step):
	}

	if l.metrics != nil {
		l.metrics.ShutdownPhase.WithLabelValues(phase, outcome).Inc()
	}
}

func (l *Loop) threadExited() bool {
	select {
	case <-l.done:
		return true
	default:
		return false
	}
}

func (l *Loop) disposeNonWakeHandles() {
	l.handlesMu.Lock()
	snapshot := make([]interface {
		Dispose() error
	}, 0, len(l.handles))
	for h := range l.handles {
		if h == l.wake {
			continue
		}
		snapshot = append(snapshot, h)
	}
	l.handlesMu.Unlock()

	for _, h := range snapshot {
		if err := h.Dispose(); err != nil {
			l.log.WithError(err).Warn("stop_rude: handle disposal failed")
		}
	}
}
