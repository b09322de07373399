//go:build linux
// +build linux

// File: pool/bufferpool_linux.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Linux backend for a NUMA-segmented BufferPool: a sync.Pool per node plus
// atomic counters so BufferPoolManager can report occupancy without a
// second lock layered over sync.Pool's own.

package pool

import (
	"sync"
	"sync/atomic"

	"github.com/momentics/loopcore/api"
)

// linuxBuffer implements api.Buffer over a plain byte slice.
type linuxBuffer struct {
	data   []byte
	pool   *linuxBufferPool
	numaId int
	used   bool
	mu     sync.Mutex
}

func (b *linuxBuffer) Bytes() []byte { return b.data }

// Slice shares b's backing array; the sub-buffer is not itself poolable
// (Release on it is a no-op via used=false) since only the block that came
// out of Get owns the pool slot.
func (b *linuxBuffer) Slice(start, end int) api.Buffer {
	if start < 0 || end > len(b.data) || start > end {
		panic("api.Buffer: slice bounds out of range")
	}
	return &linuxBuffer{
		data:   b.data[start:end],
		pool:   b.pool,
		numaId: b.numaId,
	}
}

// Release returns the buffer to its pool. A no-op on sliced views and on a
// buffer already released, so double-Release from overlapping cleanup
// paths (pump abort racing normal consumption) is harmless.
func (b *linuxBuffer) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.used {
		return
	}
	b.pool.putBuffer(b)
	b.used = false
}

func (b *linuxBuffer) Copy() []byte {
	dst := make([]byte, len(b.data))
	copy(dst, b.data)
	return dst
}

func (b *linuxBuffer) NUMANode() int { return b.numaId }

// linuxBufferPool is a sync.Pool-backed api.BufferPool for one NUMA node.
// sync.Pool absorbs the allocate/reuse churn from a connection's send-side
// block chain; the counters below exist only so Stats/Dispose have
// something honest to report, since sync.Pool itself exposes none.
type linuxBufferPool struct {
	pool     sync.Pool
	numaId   int
	bufSize  int
	disposed atomic.Bool

	totalAlloc atomic.Int64
	totalFree  atomic.Int64
	inUse      atomic.Int64
}

func (bp *linuxBufferPool) getBuffer(size int) *linuxBuffer {
	if v := bp.pool.Get(); v != nil {
		buf := v.(*linuxBuffer)
		if cap(buf.data) < size {
			buf.data = make([]byte, size)
		} else {
			buf.data = buf.data[:size]
		}
		buf.used = true
		bp.inUse.Add(1)
		return buf
	}
	bp.totalAlloc.Add(1)
	bp.inUse.Add(1)
	return &linuxBuffer{
		data:   make([]byte, size),
		pool:   bp,
		numaId: bp.numaId,
		used:   true,
	}
}

func (bp *linuxBufferPool) putBuffer(b *linuxBuffer) {
	bp.inUse.Add(-1)
	bp.totalFree.Add(1)
	if bp.disposed.Load() {
		return
	}
	bp.pool.Put(b)
}

func (bp *linuxBufferPool) Get(size int, numaPreferred int) api.Buffer {
	return bp.getBuffer(size)
}

func (bp *linuxBufferPool) Put(b api.Buffer) {
	if lb, ok := b.(*linuxBuffer); ok {
		bp.putBuffer(lb)
	}
}

func (bp *linuxBufferPool) Stats() api.BufferPoolStats {
	return api.BufferPoolStats{
		TotalAlloc: bp.totalAlloc.Load(),
		TotalFree:  bp.totalFree.Load(),
		InUse:      bp.inUse.Load(),
		NUMAStats:  map[int]int64{bp.numaId: bp.totalAlloc.Load()},
	}
}

// Dispose drops the pool's sync.Pool contents. Idempotent: subsequent Puts
// from any buffer still in flight are counted but not retained, so a
// straggling Release after shutdown cannot resurrect freed memory into a
// pool nothing will ever drain again.
func (bp *linuxBufferPool) Dispose() error {
	if !bp.disposed.CompareAndSwap(false, true) {
		return nil
	}
	bp.pool = sync.Pool{}
	return nil
}

// newBufferPool (Linux) creates a buffer pool for the specified NUMA node.
// TODO: hugepage/mmap-backed allocation for the ultra-low-latency path;
// today every block is a plain make([]byte) under sync.Pool.
func newBufferPool(numaNode int) api.BufferPool {
	return &linuxBufferPool{
		numaId:  numaNode,
		bufSize: 65536,
	}
}
