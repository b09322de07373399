// File: obslog/logrus.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package obslog

import "github.com/sirupsen/logrus"

// Logrus adapts a logrus.FieldLogger to Logger.
type Logrus struct {
	entry logrus.FieldLogger
}

var _ Logger = Logrus{}

// NewLogrus wraps l, or a newly created logrus.Logger configured with the
// JSON formatter when l is nil.
func NewLogrus(l logrus.FieldLogger) Logrus {
	if l == nil {
		base := logrus.New()
		base.SetFormatter(&logrus.JSONFormatter{})
		l = base
	}
	return Logrus{entry: l}
}

func (x Logrus) WithField(key string, value any) Logger {
	return Logrus{entry: x.entry.WithField(key, value)}
}

func (x Logrus) WithFields(fields map[string]any) Logger {
	return Logrus{entry: x.entry.WithFields(logrus.Fields(fields))}
}

func (x Logrus) WithError(err error) Logger {
	return Logrus{entry: x.entry.WithError(err)}
}

func (x Logrus) Debug(args ...any) { x.entry.Debug(args...) }
func (x Logrus) Info(args ...any)  { x.entry.Info(args...) }
func (x Logrus) Warn(args ...any)  { x.entry.Warn(args...) }
func (x Logrus) Error(args ...any) { x.entry.Error(args...) }
