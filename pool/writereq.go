// File: pool/writereq.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// WriteRequestPool is a bounded FIFO of reusable write-operation records,
// grounded on the teacher's pool.ObjectPool[T] contract but deliberately not
// backed by sync.Pool: sync.Pool's GC-driven eviction cannot honor a hard
// capacity, and the loop needs its cap enforced exactly.

package pool

// DefaultMaxPooledWriteReqs is config.Config.MaxPooledWriteReqs's default,
// used by NewWriteRequestPool when called with a non-positive cap (e.g. by
// tests that don't go through config).
const DefaultMaxPooledWriteReqs = 1024

// WriteRequest is an owned write record bound to the loop: at most one
// in-flight operation at a time. Buf/Bufs/Fd are set by the caller before
// submission and cleared on Reset.
type WriteRequest struct {
	Fd       uintptr
	Buf      []byte
	Bufs     [][]byte
	Err      error
	inFlight bool
}

// Reset clears the request for reuse, dropping any buffer references so the
// pool does not pin memory between uses.
func (r *WriteRequest) Reset() {
	r.Fd = 0
	r.Buf = nil
	r.Bufs = nil
	r.Err = nil
	r.inFlight = false
}

// WriteRequestPool is a single-threaded (loop-thread-only) FIFO of idle
// *WriteRequest, capped at cap.
type WriteRequestPool struct {
	idle []*WriteRequest
	cap  int
}

// NewWriteRequestPool returns an empty pool capped at cap idle requests.
// cap <= 0 falls back to DefaultMaxPooledWriteReqs, matching
// config.DefaultConfig's value.
func NewWriteRequestPool(cap int) *WriteRequestPool {
	if cap <= 0 {
		cap = DefaultMaxPooledWriteReqs
	}
	return &WriteRequestPool{cap: cap}
}

// Take dequeues the oldest idle request or constructs a fresh one.
func (p *WriteRequestPool) Take() *WriteRequest {
	if len(p.idle) == 0 {
		return &WriteRequest{}
	}
	req := p.idle[0]
	p.idle[0] = nil
	p.idle = p.idle[1:]
	return req
}

// Return pushes req back if under the cap, otherwise discards it.
func (p *WriteRequestPool) Return(req *WriteRequest) {
	if len(p.idle) >= p.cap {
		return
	}
	req.Reset()
	p.idle = append(p.idle, req)
}

// Pooled reports how many requests currently sit idle.
func (p *WriteRequestPool) Pooled() int { return len(p.idle) }
