// File: conn/connection_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package conn

import (
	"os"
	"testing"

	"github.com/momentics/loopcore/looprt"
	"github.com/momentics/loopcore/pool"
)

func newTestConnection(t *testing.T, id string) (*Connection, *looprt.Loop) {
	t.Helper()
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe: %v", err)
	}
	t.Cleanup(func() { _ = r.Close() })

	loop := looprt.New(looprt.Options{})
	bp := pool.NewBufferPoolManager().GetPool(-1)
	chain := pool.NewChain(bp, 64, -1)
	writePool := pool.NewWriteRequestPool(0)

	c := New(id, w.Fd(), loop, chain, writePool)
	return c, loop
}

func TestConnectionNewIsReferenced(t *testing.T) {
	c, _ := newTestConnection(t, "conn-1")
	if !c.Referenced() {
		t.Fatal("New() should leave the connection referenced")
	}
}

func TestConnectionAbortCancelsOutput(t *testing.T) {
	c, _ := newTestConnection(t, "conn-2")
	if c.Aborted() {
		t.Fatal("new connection should not start aborted")
	}
	c.Abort()
	if !c.Aborted() {
		t.Fatal("Abort() should mark the connection aborted")
	}
	select {
	case <-c.Output.Done():
	default:
		t.Fatal("Abort() should cancel the output channel")
	}

	// Abort is idempotent.
	c.Abort()
}

func TestConnectionDisposeUnreferencesAndClosesSocket(t *testing.T) {
	c, _ := newTestConnection(t, "conn-3")

	if err := c.Dispose(); err != nil {
		t.Fatalf("Dispose() = %v, want nil", err)
	}
	if c.Referenced() {
		t.Fatal("Dispose() should unreference the connection")
	}
	if !c.Aborted() {
		t.Fatal("Dispose() should abort the connection")
	}
	select {
	case <-c.Done():
	default:
		t.Fatal("Dispose() should signal Done()")
	}
}

func TestConnectionOnSocketClosedIdempotent(t *testing.T) {
	c, _ := newTestConnection(t, "conn-4")
	c.OnSocketClosed()
	c.OnSocketClosed() // must not panic on double-close
	select {
	case <-c.Done():
	default:
		t.Fatal("Done() should be signaled after OnSocketClosed")
	}
}
