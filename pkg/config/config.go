// Package config loads aptgraph settings from a TOML file.
//
// The file lives at ~/.config/aptgraph/config.toml by default and
// provides fallbacks for flags the user did not pass on the command
// line. A missing file is not an error; defaults apply.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/aptgraph/aptgraph/pkg/errors"
)

// Cache backends selectable via [cache] backend.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendNone  = "none"
)

// Config is the on-disk configuration shape.
type Config struct {
	Repo  RepoConfig  `toml:"repo"`
	Graph GraphConfig `toml:"graph"`
	Cache CacheConfig `toml:"cache"`
}

// RepoConfig selects the default Packages index location.
type RepoConfig struct {
	URL  string `toml:"url"`
	Path string `toml:"path"`
}

// GraphConfig holds traversal defaults.
type GraphConfig struct {
	MaxDepth int    `toml:"max_depth"`
	Filter   string `toml:"filter"`
}

// CacheConfig selects and tunes the index cache.
type CacheConfig struct {
	Backend   string   `toml:"backend"`
	Dir       string   `toml:"dir"`
	TTL       duration `toml:"ttl"`
	RedisAddr string   `toml:"redis_addr"`
}

// duration lets TTLs be written as "6h" or "90m" in the TOML file.
type duration struct {
	time.Duration
}

func (d *duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Graph: GraphConfig{MaxDepth: 5},
		Cache: CacheConfig{
			Backend:   BackendFile,
			TTL:       duration{6 * time.Hour},
			RedisAddr: "localhost:6379",
		},
	}
}

// DefaultPath returns ~/.config/aptgraph/config.toml, or "" if the
// home directory cannot be determined.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "aptgraph", "config.toml")
}

// Load reads the config file at path, layering it over Default().
// If path is empty, DefaultPath() is used. A missing file yields the
// defaults without error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = DefaultPath()
		if path == "" {
			return cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, errors.Wrap(errors.ErrCodeInternal, err, "failed to read config file %s", path)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidInput, err, "failed to parse config file %s", path)
	}
	if err := validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func validate(cfg Config) error {
	switch cfg.Cache.Backend {
	case BackendFile, BackendRedis, BackendNone:
	default:
		return errors.New(errors.ErrCodeInvalidInput,
			"cache backend must be one of: file, redis, none")
	}
	if cfg.Graph.MaxDepth < 0 {
		return errors.New(errors.ErrCodeInvalidDepth, "max_depth must be >= 0")
	}
	return nil
}
