// File: pool/writereq_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package pool

import "testing"

func TestWriteRequestPoolTakeFreshWhenEmpty(t *testing.T) {
	p := NewWriteRequestPool(0)
	if got := p.Pooled(); got != 0 {
		t.Fatalf("Pooled() = %d, want 0", got)
	}
	req := p.Take()
	if req == nil {
		t.Fatal("Take() returned nil")
	}
}

func TestWriteRequestPoolReturnResetsAndReuses(t *testing.T) {
	p := NewWriteRequestPool(0)
	req := p.Take()
	req.Fd = 42
	req.Buf = []byte("hello")

	p.Return(req)
	if got := p.Pooled(); got != 1 {
		t.Fatalf("Pooled() = %d, want 1", got)
	}

	back := p.Take()
	if back != req {
		t.Fatal("Take() after Return should return the same record")
	}
	if back.Fd != 0 || back.Buf != nil {
		t.Fatal("Return() should Reset() the request before pooling it")
	}
}

func TestWriteRequestPoolCapEnforced(t *testing.T) {
	const cap = 4
	p := NewWriteRequestPool(cap)
	for i := 0; i < cap+10; i++ {
		p.Return(&WriteRequest{})
	}
	if got := p.Pooled(); got != cap {
		t.Fatalf("Pooled() = %d, want cap %d", got, cap)
	}
}

func TestWriteRequestPoolDefaultCap(t *testing.T) {
	p := NewWriteRequestPool(0)
	for i := 0; i < DefaultMaxPooledWriteReqs+10; i++ {
		p.Return(&WriteRequest{})
	}
	if got := p.Pooled(); got != DefaultMaxPooledWriteReqs {
		t.Fatalf("Pooled() = %d, want cap %d", got, DefaultMaxPooledWriteReqs)
	}
}
