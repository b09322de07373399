// File: server/options.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package server

import (
	"github.com/momentics/loopcore/api"
	"github.com/momentics/loopcore/obslog"
)

// Option customizes Server construction.
type Option func(*Server)

// WithLogger overrides the discard logger.
func WithLogger(log obslog.Logger) Option {
	return func(s *Server) { s.log = log }
}

// WithLifetime overrides the no-op ApplicationLifetime, letting the
// embedding application learn about loop-thread fatal errors.
func WithLifetime(lifetime api.ApplicationLifetime) Option {
	return func(s *Server) { s.lifetime = lifetime }
}

// WithBufferPool overrides the default NUMA-aware buffer pool.
func WithBufferPool(p api.BufferPool) Option {
	return func(s *Server) { s.bufferPool = p }
}
