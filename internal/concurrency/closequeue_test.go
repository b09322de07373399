// File: internal/concurrency/closequeue_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package concurrency

import "testing"

func TestCloseQueueEnqueueDrainOrder(t *testing.T) {
	q := NewCloseQueue(0)
	for i := 0; i < 3; i++ {
		q.Enqueue(CloseItem{Handle: i})
	}
	if got := q.Len(); got != 3 {
		t.Fatalf("Len() = %d, want 3", got)
	}

	var got []int
	n := q.Drain(func(item CloseItem) {
		got = append(got, item.Handle.(int))
	})
	if n != 3 {
		t.Fatalf("drained %d items, want 3", n)
	}
	for i, v := range got {
		if v != i {
			t.Fatalf("drain order[%d] = %d, want %d", i, v, i)
		}
	}
	if got := q.Len(); got != 0 {
		t.Fatalf("Len() after drain = %d, want 0", got)
	}
}

func TestCloseQueueDrainDeferredReentrant(t *testing.T) {
	q := NewCloseQueue(0)
	q.Enqueue(CloseItem{Handle: 1})

	q.Drain(func(item CloseItem) {
		q.Enqueue(CloseItem{Handle: 2})
	})
	if got := q.Len(); got != 1 {
		t.Fatalf("Len() after reentrant enqueue = %d, want 1", got)
	}

	n := q.Drain(func(CloseItem) {})
	if n != 1 {
		t.Fatalf("second drain saw %d items, want 1", n)
	}
}

func TestCloseQueueDrainEmpty(t *testing.T) {
	q := NewCloseQueue(0)
	n := q.Drain(func(CloseItem) { t.Fatal("callback invoked on empty queue") })
	if n != 0 {
		t.Fatalf("drained %d items from empty queue, want 0", n)
	}
}

func TestCloseQueueEnqueueReportsOverCapacity(t *testing.T) {
	q := NewCloseQueue(2)
	if ok := q.Enqueue(CloseItem{Handle: 1}); !ok {
		t.Fatal("Enqueue() below capacity reported over-capacity")
	}
	if ok := q.Enqueue(CloseItem{Handle: 2}); !ok {
		t.Fatal("Enqueue() at capacity boundary reported over-capacity")
	}
	if ok := q.Enqueue(CloseItem{Handle: 3}); ok {
		t.Fatal("Enqueue() over capacity did not report it")
	}
	if got := q.Len(); got != 3 {
		t.Fatalf("Len() = %d, want 3 (over-capacity items are still enqueued)", got)
	}
}
