// File: server/server.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Package server is the facade orchestrating the loop core into a single
// embeddable type, mirroring the teacher's HioloadWS facade
// (server/hioload.go's New/Start/Stop/Shutdown shape) but wired to the
// loop thread controller (looprt), the connection manager (conn), the
// pools (pool), metrics, and structured logging instead of the teacher's
// transport/session/protocol stack.
package server

import (
	"context"
	"fmt"
	"sync"

	"github.com/momentics/loopcore/api"
	"github.com/momentics/loopcore/config"
	"github.com/momentics/loopcore/conn"
	"github.com/momentics/loopcore/internal/concurrency"
	"github.com/momentics/loopcore/looprt"
	"github.com/momentics/loopcore/metrics"
	"github.com/momentics/loopcore/obslog"
	"github.com/momentics/loopcore/pool"
)

// Server orchestrates the loop thread controller, connection manager, and
// pools behind a single Start/Shutdown lifecycle for an embedding
// HTTP/WebSocket server.
type Server struct {
	cfg *config.Config

	loop       *looprt.Loop
	conns      *conn.Manager
	bufferPool api.BufferPool
	writePool  *pool.WriteRequestPool
	metrics    *metrics.Registry
	log        obslog.Logger
	lifetime   api.ApplicationLifetime

	mu      sync.Mutex
	started bool
}

// New constructs a Server from cfg (DefaultConfig if nil), applying opts.
func New(cfg *config.Config, opts ...Option) (*Server, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("server: invalid config: %w", err)
	}

	s := &Server{
		cfg:       cfg,
		conns:     conn.NewManager(cfg.ConnShardCount),
		writePool: pool.NewWriteRequestPool(cfg.MaxPooledWriteReqs),
		log:       obslog.Discard{},
		lifetime:  api.NopLifetime{},
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.bufferPool == nil {
		mgr := pool.NewBufferPoolManager()
		s.bufferPool = mgr.GetPool(cfg.NUMANode)
	}
	if cfg.EnableMetrics && s.metrics == nil {
		s.metrics = metrics.NewRegistry(cfg.MetricsNamespace)
	}

	threadPool := concurrency.NewThreadPool(cfg.NumWorkers, cfg.NUMANode, cfg.ChannelSize)
	s.loop = looprt.New(looprt.Options{
		Log:                s.log,
		Metrics:            s.metrics,
		Lifetime:           s.lifetime,
		ThreadPool:         threadPool,
		QueueSize:          cfg.WorkQueueCapacity,
		CloseQueueCapacity: cfg.CloseQueueCapacity,
		MaxLoops:           cfg.MaxLoops,
	})
	s.loop.SetStopHooks(looprt.StopHooks{
		CloseConnections:  s.conns.WalkAndCloseAll,
		DisposeWritePool:  func() { s.writePool = pool.NewWriteRequestPool(cfg.MaxPooledWriteReqs) },
		DisposeMemoryPool: func() { _ = s.bufferPool.Dispose() },
	})

	return s, nil
}

// Start spawns the loop thread and blocks until it is ready or failed.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return nil
	}
	if err := s.loop.Start().Wait(); err != nil {
		return fmt.Errorf("server: loop start failed: %w", err)
	}
	s.started = true
	return nil
}

// Shutdown stops the loop within the configured shutdown timeout,
// returning any fatal error captured on the loop thread.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	started := s.started
	s.mu.Unlock()
	if !started {
		return nil
	}

	fut := s.loop.Stop(s.cfg.ShutdownTimeout)
	select {
	case <-fut.Done():
		err := fut.Wait()
		s.mu.Lock()
		s.started = false
		s.mu.Unlock()
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// NewConnection registers a live connection bound to this server's loop,
// buffer pool, and write-request pool, and tracks it in the connection
// manager.
func (s *Server) NewConnection(id string, fd uintptr) *conn.Connection {
	chain := pool.NewChain(s.bufferPool, s.cfg.BlockSize, s.cfg.NUMANode)
	c := conn.New(id, fd, s.loop, chain, s.writePool)
	s.conns.Add(c)
	return c
}

// Loop exposes the underlying loop thread controller.
func (s *Server) Loop() *looprt.Loop { return s.loop }

// Connections exposes the connection manager.
func (s *Server) Connections() *conn.Manager { return s.conns }

// Metrics exposes the Prometheus registry, or nil if metrics are disabled.
func (s *Server) Metrics() *metrics.Registry { return s.metrics }

// Config returns the configuration the server was constructed with.
func (s *Server) Config() *config.Config { return s.cfg }
