// File: config/config_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.NumWorkers <= 0 {
		t.Fatal("DefaultConfig should set a positive NumWorkers")
	}
	if cfg.ShutdownTimeout != 30*time.Second {
		t.Fatalf("ShutdownTimeout = %v, want 30s", cfg.ShutdownTimeout)
	}
	if !cfg.EnableMetrics {
		t.Fatal("DefaultConfig should enable metrics by default")
	}
}

func TestLoadOverridesOnlySpecifiedFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := "num_workers = 8\nenable_metrics = false\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.NumWorkers != 8 {
		t.Fatalf("NumWorkers = %d, want 8", cfg.NumWorkers)
	}
	if cfg.EnableMetrics {
		t.Fatal("EnableMetrics should be overridden to false")
	}
	// Fields not present in the file keep DefaultConfig's values.
	if cfg.BlockSize != DefaultConfig().BlockSize {
		t.Fatalf("BlockSize = %d, want default %d", cfg.BlockSize, DefaultConfig().BlockSize)
	}
}

func TestLoadMissingFileReturnsError(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Fatal("Load() of a missing file should return an error")
	}
}
