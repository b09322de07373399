// File: pool/bufferpool.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// BufferPoolManager lazily builds one api.BufferPool per NUMA node on first
// use and hands the same instance back to every connection pinned to that
// node afterwards. Platform-specific pool construction lives in
// bufferpool_linux.go (and any future bufferpool_<os>.go).

package pool

import (
	"sync"

	"github.com/momentics/loopcore/api"
)

// BufferPoolManager segments buffer pools by NUMA node.
type BufferPoolManager struct {
	mu    sync.RWMutex
	pools map[int]api.BufferPool // key: NUMA node, -1 for no preference
}

// NewBufferPoolManager returns an empty manager; pools are created lazily
// by GetPool.
func NewBufferPoolManager() *BufferPoolManager {
	return &BufferPoolManager{
		pools: make(map[int]api.BufferPool),
	}
}

// GetPool returns the pool for numaNode, constructing it on first request.
func (m *BufferPoolManager) GetPool(numaNode int) api.BufferPool {
	m.mu.RLock()
	p, ok := m.pools[numaNode]
	m.mu.RUnlock()
	if ok {
		return p
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.pools[numaNode]; ok {
		return p
	}
	p = newBufferPool(numaNode)
	m.pools[numaNode] = p
	return p
}

// Dispose tears down every pool the manager has constructed so far. Meant
// to run from the loop's DisposeMemoryPool pre-stop hook, after
// CloseConnections has returned, so no connection can still be pulling
// buffers from a pool this call is emptying.
func (m *BufferPoolManager) Dispose() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	var firstErr error
	for node, p := range m.pools {
		if err := p.Dispose(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(m.pools, node)
	}
	return firstErr
}
