// File: config/config.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Package config loads the loop core's tunables from TOML, mirroring the
// teacher's facade Config (server/hioload.go) but trimmed to what the loop
// core itself consumes — transport framing and listener options belong to
// the embedding application, not this core.
package config

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
)

// Config holds every loop-core tunable. Fields omitted from the file keep
// DefaultConfig's values when loaded via Load.
type Config struct {
	NumWorkers         int           `toml:"num_workers"`
	NUMANode           int           `toml:"numa_node"`
	MaxLoops           int           `toml:"max_loops"`
	WorkQueueCapacity  int           `toml:"work_queue_capacity"`
	CloseQueueCapacity int           `toml:"close_queue_capacity"`
	ChannelSize        int           `toml:"channel_size"`
	MaxPooledWriteReqs int           `toml:"max_pooled_write_reqs"`
	BlockSize          int           `toml:"block_size"`
	ConnShardCount     int           `toml:"conn_shard_count"`
	ShutdownTimeout    time.Duration `toml:"shutdown_timeout"`
	EnableMetrics      bool          `toml:"enable_metrics"`
	MetricsNamespace   string        `toml:"metrics_namespace"`
}

// DefaultConfig returns the loop core's baseline configuration.
func DefaultConfig() *Config {
	return &Config{
		NumWorkers:         4,
		NUMANode:           -1,
		MaxLoops:           8,
		WorkQueueCapacity:  1024,
		CloseQueueCapacity: 256,
		ChannelSize:        1024,
		MaxPooledWriteReqs: 1024,
		BlockSize:          64 * 1024,
		ConnShardCount:     16,
		ShutdownTimeout:    30 * time.Second,
		EnableMetrics:      true,
		MetricsNamespace:   "loopcore",
	}
}

// Validate checks the invariants the loop core's constructors assume hold,
// returning the first violation found.
func (c *Config) Validate() error {
	if c.MaxLoops <= 0 {
		return fmt.Errorf("config: MaxLoops must be > 0, got %d", c.MaxLoops)
	}
	if c.WorkQueueCapacity <= 0 {
		return fmt.Errorf("config: WorkQueueCapacity must be > 0, got %d", c.WorkQueueCapacity)
	}
	if c.CloseQueueCapacity <= 0 {
		return fmt.Errorf("config: CloseQueueCapacity must be > 0, got %d", c.CloseQueueCapacity)
	}
	if c.ChannelSize <= 0 {
		return fmt.Errorf("config: ChannelSize must be > 0, got %d", c.ChannelSize)
	}
	if c.MaxPooledWriteReqs <= 0 {
		return fmt.Errorf("config: MaxPooledWriteReqs must be > 0, got %d", c.MaxPooledWriteReqs)
	}
	if c.BlockSize <= 0 {
		return fmt.Errorf("config: BlockSize must be > 0, got %d", c.BlockSize)
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("config: ShutdownTimeout must be > 0, got %s", c.ShutdownTimeout)
	}
	return nil
}

// Load reads a TOML file at path over DefaultConfig, so an omitted field
// keeps its default rather than zeroing out, then validates the result.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
