// File: looprt/stop_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package looprt

import (
	"context"
	"testing"
	"time"
)

func TestStopWithoutStartIsNoop(t *testing.T) {
	l := New(Options{})
	if err := l.Stop(time.Second).Wait(); err != nil {
		t.Fatalf("Stop() on unstarted loop = %v, want nil", err)
	}
}

func TestStopRunsPreStopHooksAndExits(t *testing.T) {
	l := New(Options{})
	if err := l.Start().Wait(); err != nil {
		t.Fatalf("Start() = %v, want nil", err)
	}

	var closeCalled, writeDisposed, memDisposed bool
	l.SetStopHooks(StopHooks{
		CloseConnections: func(ctx context.Context, timeout time.Duration) (bool, error) {
			closeCalled = true
			return true, nil
		},
		DisposeWritePool:  func() { writeDisposed = true },
		DisposeMemoryPool: func() { memDisposed = true },
	})

	if err := l.Stop(3 * time.Second).Wait(); err != nil {
		t.Fatalf("Stop() = %v, want nil", err)
	}
	if !closeCalled {
		t.Fatal("CloseConnections hook was not invoked")
	}
	if !writeDisposed {
		t.Fatal("DisposeWritePool hook was not invoked")
	}
	if !memDisposed {
		t.Fatal("DisposeMemoryPool hook was not invoked")
	}
}

func TestStopRunsPreStopHooksInOrder(t *testing.T) {
	l := New(Options{})
	if err := l.Start().Wait(); err != nil {
		t.Fatalf("Start() = %v, want nil", err)
	}

	var order []string
	l.SetStopHooks(StopHooks{
		CloseConnections: func(ctx context.Context, timeout time.Duration) (bool, error) {
			order = append(order, "close_connections")
			return true, nil
		},
		DisposeWritePool:  func() { order = append(order, "dispose_write_pool") },
		DisposeMemoryPool: func() { order = append(order, "dispose_memory_pool") },
	})

	if err := l.Stop(3 * time.Second).Wait(); err != nil {
		t.Fatalf("Stop() = %v, want nil", err)
	}

	want := []string{"close_connections", "dispose_write_pool", "dispose_memory_pool"}
	if len(order) != len(want) {
		t.Fatalf("hook call order = %v, want %v", order, want)
	}
	for i, name := range want {
		if order[i] != name {
			t.Fatalf("hook call order = %v, want %v", order, want)
		}
	}
}

func TestStopIsBoundedByTimeout(t *testing.T) {
	l := New(Options{})
	if err := l.Start().Wait(); err != nil {
		t.Fatalf("Start() = %v, want nil", err)
	}

	start := time.Now()
	_ = l.Stop(300 * time.Millisecond).Wait()
	if elapsed := time.Since(start); elapsed > 3*time.Second {
		t.Fatalf("Stop() took %v, want well under a few seconds for a short timeout", elapsed)
	}
}
