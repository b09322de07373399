// File: looprt/loop_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package looprt

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/momentics/loopcore/reactor"
)

func startTestLoop(t *testing.T) *Loop {
	t.Helper()
	l := New(Options{})
	if err := l.Start().Wait(); err != nil {
		t.Fatalf("Start() = %v, want nil", err)
	}
	t.Cleanup(func() {
		_ = l.Stop(time.Second).Wait()
	})
	return l
}

func TestLoopStartReady(t *testing.T) {
	l := startTestLoop(t)
	if !l.Ready() {
		t.Fatal("Ready() should be true after successful Start")
	}
}

func TestLoopPostExecutesOnLoopThread(t *testing.T) {
	l := startTestLoop(t)

	var ran atomic.Bool
	if err := l.Post(func() { ran.Store(true) }); err != nil {
		t.Fatalf("Post() = %v, want nil", err)
	}

	deadline := time.Now().Add(time.Second)
	for !ran.Load() && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if !ran.Load() {
		t.Fatal("posted work never ran")
	}
}

func TestLoopPostAsyncResolvesFuture(t *testing.T) {
	l := startTestLoop(t)

	fut := l.PostAsync(func() error { return nil })
	if err := fut.Wait(); err != nil {
		t.Fatalf("PostAsync().Wait() = %v, want nil", err)
	}
}

func TestLoopWalkOnlyFromLoopThread(t *testing.T) {
	l := startTestLoop(t)
	if err := l.Walk(func(h reactor.Handle) {}); err != ErrNotLoopThread {
		t.Fatalf("Walk() from a non-loop goroutine = %v, want ErrNotLoopThread", err)
	}
}

func TestLoopPostAfterStopReturnsErrLoopClosed(t *testing.T) {
	l := New(Options{})
	if err := l.Start().Wait(); err != nil {
		t.Fatalf("Start() = %v, want nil", err)
	}
	if err := l.Stop(time.Second).Wait(); err != nil {
		t.Fatalf("Stop() = %v, want nil", err)
	}

	if err := l.Post(func() {}); err != ErrLoopClosed {
		t.Fatalf("Post() after Stop() = %v, want ErrLoopClosed", err)
	}
}
