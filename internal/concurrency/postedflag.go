// File: internal/concurrency/postedflag.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// PostedFlag deduplicates wake signals: a producer only signals the wake
// primitive if it wins the 0(armed)->1(fired) CAS; the consumer resets it
// to 0 before draining so a concurrently-enqueued item that arrives after
// the consumer's CAS but before it finishes draining is guaranteed to see
// the flag armed again and re-signal — at the cost of at most one
// redundant wake per drain.

package concurrency

import "sync/atomic"

type PostedFlag struct {
	v atomic.Bool // false=armed, true=fired
}

// TryFire attempts the armed->fired transition. Returns true iff this call
// won the race and is therefore responsible for signaling the wake
// primitive.
func (p *PostedFlag) TryFire() bool {
	return p.v.CompareAndSwap(false, true)
}

// Disarm performs the consumer's fired->armed transition, unconditionally
// safe to call even if already armed (single-consumer, so no race on the
// flag itself — only producers race the TryFire side).
func (p *PostedFlag) Disarm() {
	p.v.Store(false)
}
