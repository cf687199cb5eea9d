// Package cli implements the aptgraph command-line interface.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/aptgraph/aptgraph/pkg/buildinfo"
	"github.com/aptgraph/aptgraph/pkg/cache"
	"github.com/aptgraph/aptgraph/pkg/config"
)

// appName is the application name used for directories and display.
const appName = "aptgraph"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// configPath overrides the default config file location when set
	// via --config.
	configPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Aptgraph maps dependency graphs of Debian packages",
		Long:         `Aptgraph parses a Debian Packages index and walks the dependency relation of a chosen package to a bounded depth, producing trees, diagrams, and machine-readable graphs.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default ~/.config/aptgraph/config.toml)")

	// Commands pull the logger from their context.
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cmd.SetContext(withLogger(cmd.Context(), c.Logger))
		return nil
	}

	root.AddCommand(c.graphCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads the config file selected by --config (or the
// default path) and returns it alongside built-in defaults on absence.
func (c *CLI) loadConfig() (config.Config, error) {
	return config.Load(c.configPath)
}

// newCache builds the index cache selected by the configuration.
// noCache forces the null cache regardless of config.
func newCache(ctx context.Context, cfg config.Config, noCache bool) (cache.Cache, error) {
	if noCache || cfg.Cache.Backend == config.BackendNone {
		return cache.NewNullCache(), nil
	}
	switch cfg.Cache.Backend {
	case config.BackendRedis:
		return cache.NewRedisCache(ctx, cfg.Cache.RedisAddr)
	default:
		dir := cfg.Cache.Dir
		if dir == "" {
			var err error
			dir, err = cacheDir()
			if err != nil {
				return cache.NewNullCache(), nil
			}
		}
		return cache.NewFileCache(dir)
	}
}

// cacheTTL returns the configured index TTL, falling back to the
// source package default when unset.
func cacheTTL(cfg config.Config) time.Duration {
	return cfg.Cache.TTL.Duration
}

// cacheDir returns the cache directory using XDG standard (~/.cache/aptgraph/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
