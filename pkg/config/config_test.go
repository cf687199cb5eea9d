package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aptgraph/aptgraph/pkg/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Graph.MaxDepth != 5 {
		t.Errorf("MaxDepth = %d, want 5", cfg.Graph.MaxDepth)
	}
	if cfg.Cache.Backend != BackendFile {
		t.Errorf("Backend = %q, want %q", cfg.Cache.Backend, BackendFile)
	}
	if cfg.Cache.TTL.Duration != 6*time.Hour {
		t.Errorf("TTL = %v, want 6h", cfg.Cache.TTL.Duration)
	}
}

func TestLoadFull(t *testing.T) {
	path := writeConfig(t, `
[repo]
url = "http://deb.debian.org/debian/dists/stable/main/binary-amd64/Packages.gz"

[graph]
max_depth = 3
filter = "dbg"

[cache]
backend = "redis"
ttl = "90m"
redis_addr = "10.0.0.5:6379"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Repo.URL == "" {
		t.Error("Repo.URL not loaded")
	}
	if cfg.Graph.MaxDepth != 3 || cfg.Graph.Filter != "dbg" {
		t.Errorf("Graph = %+v", cfg.Graph)
	}
	if cfg.Cache.Backend != BackendRedis {
		t.Errorf("Backend = %q, want redis", cfg.Cache.Backend)
	}
	if cfg.Cache.TTL.Duration != 90*time.Minute {
		t.Errorf("TTL = %v, want 90m", cfg.Cache.TTL.Duration)
	}
	if cfg.Cache.RedisAddr != "10.0.0.5:6379" {
		t.Errorf("RedisAddr = %q", cfg.Cache.RedisAddr)
	}
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	path := writeConfig(t, `
[graph]
filter = "doc"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Graph.Filter != "doc" {
		t.Errorf("Filter = %q, want doc", cfg.Graph.Filter)
	}
	if cfg.Graph.MaxDepth != 5 {
		t.Errorf("MaxDepth = %d, want default 5", cfg.Graph.MaxDepth)
	}
}

func TestLoadInvalidBackend(t *testing.T) {
	path := writeConfig(t, `
[cache]
backend = "memcached"
`)
	_, err := Load(path)
	if errors.GetCode(err) != errors.ErrCodeInvalidInput {
		t.Errorf("Load() error = %v, want INVALID_INPUT", err)
	}
}

func TestLoadNegativeDepth(t *testing.T) {
	path := writeConfig(t, `
[graph]
max_depth = -1
`)
	_, err := Load(path)
	if errors.GetCode(err) != errors.ErrCodeInvalidDepth {
		t.Errorf("Load() error = %v, want INVALID_DEPTH", err)
	}
}

func TestLoadMalformedTOML(t *testing.T) {
	path := writeConfig(t, `[graph`)
	if _, err := Load(path); err == nil {
		t.Error("Load() expected error for malformed TOML")
	}
}
