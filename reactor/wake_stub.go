//go:build !linux
// +build !linux

// File: reactor/wake_stub.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Non-Linux placeholder so packages that reference *Wake for its type
// (rather than constructing one — NewReactor already fails on this
// platform) still compile.

package reactor

import "errors"

type Wake struct {
	Refcounted
}

func NewWake(EventReactor) (*Wake, error) {
	return nil, errors.New("reactor: wake primitive requires linux")
}

func (w *Wake) Send() error  { return errors.New("reactor: unsupported platform") }
func (w *Wake) Drain() error { return errors.New("reactor: unsupported platform") }
func (w *Wake) IsWakeEvent(Event) bool {
	return false
}
func (w *Wake) Dispose() error { return nil }
