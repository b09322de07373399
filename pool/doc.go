// Package pool
// Author: momentics <momentics@gmail.com>
//
// NUMA-aware buffer and object pooling for the loop core: the byte-channel's
// backing memory pool (bufferpool.go, bufferpool_linux.go), its block-chain
// iterator pair (chain.go), and the bounded write-request pool
// (writereq.go).
package pool
