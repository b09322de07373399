// File: conn/manager.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Manager is a sharded, thread-safe connection registry, adapted from the
// teacher's session.SessionManager (internal/session/store.go): the same
// FNV-hashed shard-selection scheme, generalized from string session IDs to
// live *Connection values, plus a bounded WalkAndCloseAll the original
// session manager's plain Range never needed.

package conn

import (
	"context"
	"hash/fnv"
	"sync"
	"time"
)

// Manager tracks live connections across a power-of-two number of
// independently-locked shards to keep contention low under many concurrent
// connections.
type Manager struct {
	shards []*shard
	mask   uint32
}

type shard struct {
	mu    sync.RWMutex
	conns map[string]*Connection
}

// NewManager constructs a manager with shardCount shards, rounded up to the
// next power of two (16 when shardCount <= 0).
func NewManager(shardCount int) *Manager {
	if shardCount <= 0 {
		shardCount = 16
	}
	n := nextPowerOfTwo(uint32(shardCount))
	shards := make([]*shard, n)
	for i := range shards {
		shards[i] = &shard{conns: make(map[string]*Connection)}
	}
	return &Manager{shards: shards, mask: n - 1}
}

func (m *Manager) shardFor(id string) *shard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(id))
	return m.shards[h.Sum32()&m.mask]
}

// Add registers c under its ID.
func (m *Manager) Add(c *Connection) {
	sh := m.shardFor(c.ID)
	sh.mu.Lock()
	sh.conns[c.ID] = c
	sh.mu.Unlock()
}

// Get looks up a connection by ID.
func (m *Manager) Get(id string) (*Connection, bool) {
	sh := m.shardFor(id)
	sh.mu.RLock()
	defer sh.mu.RUnlock()
	c, ok := sh.conns[id]
	return c, ok
}

// Remove drops id from the registry without closing it.
func (m *Manager) Remove(id string) {
	sh := m.shardFor(id)
	sh.mu.Lock()
	delete(sh.conns, id)
	sh.mu.Unlock()
}

// Range applies fn to every tracked connection.
func (m *Manager) Range(fn func(*Connection)) {
	for _, sh := range m.shards {
		sh.mu.RLock()
		for _, c := range sh.conns {
			fn(c)
		}
		sh.mu.RUnlock()
	}
}

// Count returns the number of tracked connections.
func (m *Manager) Count() int {
	n := 0
	for _, sh := range m.shards {
		sh.mu.RLock()
		n += len(sh.conns)
		sh.mu.RUnlock()
	}
	return n
}

// WalkAndCloseAll aborts every tracked connection and waits up to timeout
// (or until ctx is done) for all of them to signal socket closure. Returns
// true iff every connection closed within the deadline.
func (m *Manager) WalkAndCloseAll(ctx context.Context, timeout time.Duration) (bool, error) {
	var targets []*Connection
	m.Range(func(c *Connection) {
		targets = append(targets, c)
		c.Abort()
	})
	if len(targets) == 0 {
		return true, nil
	}

	deadline, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	all := true
	for _, c := range targets {
		select {
		case <-c.Done():
			m.Remove(c.ID)
		case <-deadline.Done():
			if deadline.Err() == context.DeadlineExceeded {
				all = false
				continue
			}
			return false, deadline.Err()
		}
	}
	return all, nil
}

func nextPowerOfTwo(v uint32) uint32 {
	v--
	v |= v >> 1
	v |= v >> 2
	v |= v >> 4
	v |= v >> 8
	v |= v >> 16
	v++
	return v
}
