// File: obslog/logger_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package obslog

import (
	"errors"
	"testing"
)

func TestDiscardNeverPanics(t *testing.T) {
	var log Logger = Discard{}
	log = log.WithField("k", "v")
	log = log.WithFields(map[string]any{"a": 1})
	log = log.WithError(errors.New("boom"))
	log.Debug("x")
	log.Info("x")
	log.Warn("x")
	log.Error("x")
}
