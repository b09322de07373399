// File: api/buffer.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Buffer and BufferPool are the loop core's memory contract: every byte a
// connection writes flows through a pool.Chain of these, and the pool
// itself is NUMA-segmented so a connection pinned to one node never touches
// another node's cache lines for its send buffers. All operations are
// zero-copy unless Copy is explicitly called.

package api

// Buffer is a resliceable, poolable region backing one block of a
// connection's output chain.
type Buffer interface {
	// Bytes returns the current view of the buffer's data.
	Bytes() []byte

	// Slice produces a sub-buffer in O(1), sharing the same backing array.
	Slice(from, to int) Buffer

	// Release returns the buffer to the pool it came from. The caller must
	// not touch it afterwards.
	Release()

	// Copy returns a standalone copy of the buffer's contents, for callers
	// that must outlive Release.
	Copy() []byte

	// NUMANode reports which node this buffer was allocated from.
	NUMANode() int
}

// BufferPool is the per-NUMA-node allocator backing a connection's output
// chain (pool.Chain). Concrete implementations live per-platform, e.g.
// pool.linuxBufferPool.
type BufferPool interface {
	// Get returns a buffer of at least size bytes, preferring numaPreferred
	// when the pool serves more than one node.
	Get(size int, numaPreferred int) Buffer

	// Put returns b to the pool. b must not be used afterwards.
	Put(b Buffer)

	// Stats reports allocation/reuse counters for observability.
	Stats() BufferPoolStats

	// Dispose releases resources the pool holds outright (as opposed to
	// buffers merely idle in a sync.Pool), so a server shutdown does not
	// leak pool-owned state. Called once, from the loop's pre-stop phase,
	// after every connection using the pool has already closed.
	Dispose() error
}

// BufferPoolStats aggregates one pool's allocation and reuse counters.
type BufferPoolStats struct {
	TotalAlloc int64
	TotalFree  int64
	InUse      int64
	NUMAStats  map[int]int64
}
