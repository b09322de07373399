// File: obslog/logger.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Package obslog provides the structured-logging interface used throughout
// the loop core, modeled on github.com/joeycumines/go-utilpkg's sql/log
// package (a narrow subset of logrus.FieldLogger), backed by
// github.com/sirupsen/logrus rather than the teacher's unstructured stdlib
// log calls.
package obslog

// Logger is the logging interface used by this module.
type Logger interface {
	WithField(key string, value any) Logger
	WithFields(fields map[string]any) Logger
	WithError(err error) Logger
	Debug(args ...any)
	Info(args ...any)
	Warn(args ...any)
	Error(args ...any)
}

// Discard implements a Logger that does nothing.
type Discard struct{}

var _ Logger = Discard{}

func (Discard) WithField(string, any) Logger     { return Discard{} }
func (Discard) WithFields(map[string]any) Logger { return Discard{} }
func (Discard) WithError(error) Logger           { return Discard{} }
func (Discard) Debug(...any)                     {}
func (Discard) Info(...any)                      {}
func (Discard) Warn(...any)                      {}
func (Discard) Error(...any)                     {}
