// File: pool/chain.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Chain is the byte channel's backing store: an append-only linked sequence
// of fixed-size pooled blocks. BlockRef pairs (begin, end) describe a byte
// range spanning zero or more whole blocks plus partial head/tail blocks,
// without copying — the output pump gathers writev-ready slices directly
// from the underlying api.Buffer.

package pool

import "github.com/momentics/loopcore/api"

// Block is one fixed-size segment of a Chain.
type Block struct {
	buf  api.Buffer
	n    int // bytes written so far
	next *Block
}

// BlockRef is a position within a Chain: byte Index into Block.
type BlockRef struct {
	Block *Block
	Index int
}

// Chain appends caller bytes into pooled blocks of blockSize and hands out
// BlockRef iterators bounding the unconsumed range.
type Chain struct {
	pool      api.BufferPool
	blockSize int
	numaNode  int
	head      *Block
	tail      *Block
}

// NewChain constructs an empty chain drawing blocks of blockSize bytes from
// pool, preferring numaNode.
func NewChain(pool api.BufferPool, blockSize, numaNode int) *Chain {
	return &Chain{pool: pool, blockSize: blockSize, numaNode: numaNode}
}

// Begin returns a BlockRef at the chain's current tail, ready to append
// after it. On an empty chain it first allocates the head block, so the
// returned ref is always a valid range start for Count and Gather.
func (c *Chain) Begin() BlockRef {
	if c.tail == nil {
		b := &Block{buf: c.pool.Get(c.blockSize, c.numaNode)}
		c.head, c.tail = b, b
	}
	return BlockRef{Block: c.tail, Index: c.tail.n}
}

// Append copies p into the chain, allocating new blocks from the pool as
// needed, and returns the BlockRef positioned just past the appended bytes.
func (c *Chain) Append(p []byte) BlockRef {
	for len(p) > 0 {
		if c.tail == nil || c.tail.n == c.blockSize {
			b := &Block{buf: c.pool.Get(c.blockSize, c.numaNode)}
			if c.tail != nil {
				c.tail.next = b
			}
			c.tail = b
			if c.head == nil {
				c.head = b
			}
		}
		room := c.blockSize - c.tail.n
		n := len(p)
		if n > room {
			n = room
		}
		copy(c.tail.buf.Bytes()[c.tail.n:c.tail.n+n], p[:n])
		c.tail.n += n
		p = p[n:]
	}
	return BlockRef{Block: c.tail, Index: c.tail.n}
}

// Count walks from begin to end (exclusive), returning the total byte count
// and the number of distinct buffers the range spans. If begin and end land
// in the same block, the range is exactly one buffer of end.Index-begin.Index
// bytes.
func Count(begin, end BlockRef) (bytes, buffers int) {
	if begin.Block == end.Block {
		n := end.Index - begin.Index
		if n <= 0 {
			return 0, 0
		}
		return n, 1
	}
	bytes += begin.Block.n - begin.Index
	buffers++
	for b := begin.Block.next; b != end.Block; b = b.next {
		bytes += b.n
		buffers++
	}
	bytes += end.Index
	buffers++
	return bytes, buffers
}

// Gather returns writev-ready slices for [begin, end), one per buffer
// spanned by the range.
func Gather(begin, end BlockRef) [][]byte {
	if begin.Block == end.Block {
		if end.Index <= begin.Index {
			return nil
		}
		return [][]byte{begin.Block.buf.Bytes()[begin.Index:end.Index]}
	}
	out := [][]byte{begin.Block.buf.Bytes()[begin.Index:begin.Block.n]}
	for b := begin.Block.next; b != end.Block; b = b.next {
		out = append(out, b.buf.Bytes()[:b.n])
	}
	out = append(out, end.Block.buf.Bytes()[:end.Index])
	return out
}

// Release drops every block strictly before upto.Block, returning each to
// the pool. The chain's head becomes upto.Block, so previously-handed-out
// refs into released blocks must no longer be dereferenced.
func (c *Chain) Release(upto BlockRef) {
	for c.head != nil && c.head != upto.Block {
		next := c.head.next
		c.head.buf.Release()
		c.head = next
	}
}
