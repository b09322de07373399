// File: pool/chain_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package pool

import (
	"bytes"
	"testing"

	"github.com/momentics/loopcore/api"
)

func newTestPool() api.BufferPool {
	return NewBufferPoolManager().GetPool(-1)
}

func TestChainAppendWithinOneBlock(t *testing.T) {
	c := NewChain(newTestPool(), 64, -1)
	begin := c.Begin()
	end := c.Append([]byte("hello"))

	n, bufs := Count(begin, end)
	if n != 5 || bufs != 1 {
		t.Fatalf("Count() = (%d, %d), want (5, 1)", n, bufs)
	}
	gathered := Gather(begin, end)
	if len(gathered) != 1 || !bytes.Equal(gathered[0], []byte("hello")) {
		t.Fatalf("Gather() = %v, want [hello]", gathered)
	}
}

func TestChainAppendAcrossBlocks(t *testing.T) {
	c := NewChain(newTestPool(), 4, -1)
	begin := c.Begin()
	end := c.Append([]byte("hello world")) // spans multiple 4-byte blocks

	n, bufs := Count(begin, end)
	if n != 11 {
		t.Fatalf("Count() bytes = %d, want 11", n)
	}
	if bufs < 3 {
		t.Fatalf("Count() buffers = %d, want at least 3 for an 11-byte payload in 4-byte blocks", bufs)
	}

	gathered := Gather(begin, end)
	var got []byte
	for _, g := range gathered {
		got = append(got, g...)
	}
	if !bytes.Equal(got, []byte("hello world")) {
		t.Fatalf("Gather() reassembled = %q, want %q", got, "hello world")
	}
}

func TestChainSequentialAppendsAdvanceRange(t *testing.T) {
	c := NewChain(newTestPool(), 8, -1)
	first := c.Append([]byte("abc"))
	second := c.Append([]byte("def"))

	n, _ := Count(first, second)
	if n != 3 {
		t.Fatalf("Count() between successive appends = %d, want 3", n)
	}
	gathered := Gather(first, second)
	var got []byte
	for _, g := range gathered {
		got = append(got, g...)
	}
	if !bytes.Equal(got, []byte("def")) {
		t.Fatalf("Gather() = %q, want %q", got, "def")
	}
}

func TestChainReleaseAdvancesHead(t *testing.T) {
	c := NewChain(newTestPool(), 4, -1)
	c.Append([]byte("ab"))
	mid := c.Append([]byte("cdef")) // starts a new block
	c.Append([]byte("gh"))

	c.Release(mid)
	if c.head != mid.Block {
		t.Fatal("Release() should advance head to the given BlockRef's block")
	}
}

func TestChainEmptyRangeCount(t *testing.T) {
	c := NewChain(newTestPool(), 8, -1)
	ref := c.Append([]byte("abc"))

	n, bufs := Count(ref, ref)
	if n != 0 || bufs != 0 {
		t.Fatalf("Count() on empty range = (%d, %d), want (0, 0)", n, bufs)
	}
}
