// File: reactor/handle.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Handle is the loop's view of any native resource it owns: the wake
// primitive, a connection socket, or a pending write/shutdown request.
// Referenced-ness drives the loop's natural-exit condition (AllowStop
// unreferences the wake primitive; the reactor then returns on its own once
// nothing else keeps it busy).

package reactor

import "sync/atomic"

// Handle is disposed exactly once, only from the loop thread.
type Handle interface {
	Dispose() error
}

// Refcounted gives a Handle implementation the armed/fired-style reference
// bit described by the wake primitive's invariants: double-unreference is a
// no-op, and Referenced is safe to poll from the loop thread during Walk.
type Refcounted struct {
	ref atomic.Bool
}

// Reference marks the handle as keeping the loop alive.
func (r *Refcounted) Reference() { r.ref.Store(true) }

// Unreference marks the handle as no longer keeping the loop alive.
// Idempotent: a second call is a no-op.
func (r *Refcounted) Unreference() { r.ref.Store(false) }

// Referenced reports whether the handle currently keeps the loop alive.
func (r *Refcounted) Referenced() bool { return r.ref.Load() }
