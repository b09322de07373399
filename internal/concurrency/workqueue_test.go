// File: internal/concurrency/workqueue_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package concurrency

import (
	"sync"
	"testing"
)

func TestWorkQueueEnqueueDrainOrder(t *testing.T) {
	q := NewWorkQueue(8)
	for i := 0; i < 5; i++ {
		if !q.Enqueue(WorkItem{Fn: func() error { return nil }}) {
			t.Fatalf("enqueue %d: unexpected full queue", i)
		}
	}

	var got []int
	i := 0
	n := q.Drain(func(item WorkItem) {
		got = append(got, i)
		i++
	})
	if n != 5 {
		t.Fatalf("drained %d items, want 5", n)
	}
	if len(got) != 5 {
		t.Fatalf("callback invoked %d times, want 5", len(got))
	}
}

func TestWorkQueueDrainSwapsBuffer(t *testing.T) {
	q := NewWorkQueue(4)
	q.Enqueue(WorkItem{})

	var reentrant bool
	q.Drain(func(item WorkItem) {
		// Enqueue during drain must land in the other buffer, not be
		// observed by this same Drain call.
		q.Enqueue(WorkItem{})
		reentrant = true
	})
	if !reentrant {
		t.Fatal("drain callback never invoked")
	}

	n := q.Drain(func(WorkItem) {})
	if n != 1 {
		t.Fatalf("second drain saw %d items, want 1 (the reentrant enqueue)", n)
	}
}

func TestWorkQueueFullReturnsFalse(t *testing.T) {
	q := NewWorkQueue(2) // rounds up to a power of two of at least 2
	filled := 0
	for q.Enqueue(WorkItem{}) {
		filled++
		if filled > 64 {
			t.Fatal("queue never reported full")
		}
	}
	if filled == 0 {
		t.Fatal("expected at least one successful enqueue before full")
	}
}

func TestWorkQueueConcurrentProducers(t *testing.T) {
	q := NewWorkQueue(1024)
	const producers = 16
	const perProducer = 200

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				for !q.Enqueue(WorkItem{}) {
					// backoff until drained by the loop-side goroutine below
				}
			}
		}()
	}

	total := 0
	stop := make(chan struct{})
	drainDone := make(chan struct{})
	go func() {
		defer close(drainDone)
		for {
			total += q.Drain(func(WorkItem) {})
			select {
			case <-stop:
				total += q.Drain(func(WorkItem) {})
				return
			default:
			}
		}
	}()

	wg.Wait()
	close(stop)
	<-drainDone

	if total != producers*perProducer {
		t.Fatalf("drained %d items, want %d", total, producers*perProducer)
	}
}
