//go:build linux
// +build linux

// File: reactor/wake_linux.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Wake is the eventfd(2)-backed async handle bound to a reactor: its drain
// is the loop thread controller's sole entry point for consuming the work
// and close-handle queues.

package reactor

import (
	"sync/atomic"

	"golang.org/x/sys/unix"
)

// wakeUserData is a sentinel distinguishing the wake fd's events from any
// registered connection fd, whose userData is the fd's own small integer
// value and can never reach the max uint32 (the reactor carries only the
// low 32 bits of userData).
const wakeUserData = uintptr(^uint32(0))

// Wake wraps an eventfd used purely as a cross-thread doorbell: producers
// write to it to signal "drain the queues"; the loop thread reads it (via
// Drain) to clear the counter before going back to sleep in Wait.
type Wake struct {
	Refcounted
	fd       int
	reactor  EventReactor
	disposed atomic.Bool
}

// NewWake creates an eventfd, registers it with r, and returns it already
// referenced (the loop should not exit before Start completes).
func NewWake(r EventReactor) (*Wake, error) {
	fd, err := unix.Eventfd(0, unix.EFD_NONBLOCK|unix.EFD_CLOEXEC)
	if err != nil {
		return nil, err
	}
	w := &Wake{fd: fd, reactor: r}
	w.Reference()
	if err := r.Register(uintptr(fd), wakeUserData); err != nil {
		_ = unix.Close(fd)
		return nil, err
	}
	return w, nil
}

// Send signals the wake fd. eventfd counters are additive, but the drain
// side only cares that the counter is non-zero, so concurrent Sends
// coalesce into a single wake-up for free.
func (w *Wake) Send() error {
	buf := [8]byte{1}
	_, err := unix.Write(w.fd, buf[:])
	if err == unix.EAGAIN {
		return nil
	}
	return err
}

// Drain clears the eventfd counter. Called once per wake event, before the
// queue drain loop, so a Send that arrives mid-drain is observed on the
// following Wait rather than lost.
func (w *Wake) Drain() error {
	buf := [8]byte{}
	_, err := unix.Read(w.fd, buf[:])
	if err == unix.EAGAIN {
		return nil
	}
	return err
}

// IsWakeEvent reports whether ev originated from this wake primitive,
// distinguishing it from connection-fd events during event dispatch.
func (w *Wake) IsWakeEvent(ev Event) bool {
	return ev.UserData == wakeUserData
}

// Dispose unregisters and closes the eventfd. Idempotent.
func (w *Wake) Dispose() error {
	if !w.disposed.CompareAndSwap(false, true) {
		return nil
	}
	_ = w.reactor.Unregister(uintptr(w.fd))
	return unix.Close(w.fd)
}
