// File: server/server_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package server_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/momentics/loopcore/config"
	"github.com/momentics/loopcore/server"
)

func TestServerFullLifecycle(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.ShutdownTimeout = 2 * time.Second

	s, err := server.New(cfg)
	require.NoError(t, err)

	require.NoError(t, s.Start())

	var executed atomic.Bool
	require.NoError(t, s.Loop().Post(func() { executed.Store(true) }))

	require.Eventually(t, executed.Load, time.Second, time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	require.NoError(t, s.Shutdown(ctx))
}

func TestServerStartIdempotent(t *testing.T) {
	s, err := server.New(config.DefaultConfig())
	require.NoError(t, err)

	require.NoError(t, s.Start())
	require.NoError(t, s.Start())

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	require.NoError(t, s.Shutdown(ctx))
}

func TestServerShutdownWithoutStartIsNoop(t *testing.T) {
	s, err := server.New(config.DefaultConfig())
	require.NoError(t, err)

	require.NoError(t, s.Shutdown(context.Background()))
}
