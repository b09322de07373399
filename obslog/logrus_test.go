// File: obslog/logrus_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package obslog

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func newCapturingLogrus() (Logrus, *bytes.Buffer) {
	base := logrus.New()
	base.SetLevel(logrus.DebugLevel)
	base.SetFormatter(&logrus.JSONFormatter{})
	buf := &bytes.Buffer{}
	base.SetOutput(buf)
	return NewLogrus(base), buf
}

func TestLogrusWithFieldIncludesFieldInOutput(t *testing.T) {
	log, buf := newCapturingLogrus()
	log.WithField("connection_id", "abc-123").Info("connection_write_callback")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("json.Unmarshal: %v", err)
	}
	if entry["connection_id"] != "abc-123" {
		t.Fatalf("entry[connection_id] = %v, want abc-123", entry["connection_id"])
	}
	if entry["msg"] != "connection_write_callback" {
		t.Fatalf("entry[msg] = %v, want connection_write_callback", entry["msg"])
	}
}

func TestLogrusWithErrorIncludesErrorField(t *testing.T) {
	log, buf := newCapturingLogrus()
	log.WithError(errors.New("boom")).Error("connection_error")

	if !strings.Contains(buf.String(), "boom") {
		t.Fatalf("output %q should contain the wrapped error message", buf.String())
	}
}

func TestLogrusWithFieldsChaining(t *testing.T) {
	log, buf := newCapturingLogrus()
	log.WithFields(map[string]any{"a": 1, "b": 2}).WithField("c", 3).Debug("chained")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("json.Unmarshal: %v", err)
	}
	for _, key := range []string{"a", "b", "c"} {
		if _, ok := entry[key]; !ok {
			t.Fatalf("entry missing field %q: %v", key, entry)
		}
	}
}

func TestNewLogrusDefaultsWhenNil(t *testing.T) {
	log := NewLogrus(nil)
	log.Info("should not panic") // only checks no panic without a real sink
}
