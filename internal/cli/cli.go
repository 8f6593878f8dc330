// Package cli implements the sugarcheck command-line interface.
//
// # Commands
//
//   - analyze: classify the sugar rings of a coordinate file
//   - graph: render the bond graph of one residue (SVG, DOT, PNG)
//   - project: render a ring projected onto its mean plane (PNG)
//   - browse: interactive residue browser
//   - conformers: list the named ring conformations
//   - refdb: inspect the reference table
//   - serve: run the HTTP API
//   - cache: manage the analysis cache
//   - completion: shell completion scripts
//
// Settings not given as flags come from $XDG_CONFIG_HOME/sugarcheck/config.toml.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/sugarcheck/pkg/cache"
	"github.com/matzehuels/sugarcheck/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "sugarcheck"

	// redisPrefix namespaces every key sugarcheck writes to Redis.
	redisPrefix = appName + ":"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	config     *Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// Config returns the user configuration, reading it on first use.
func (c *CLI) Config() (*Config, error) {
	if c.config != nil {
		return c.config, nil
	}
	cfg, err := loadConfig(c.configPath)
	if err != nil {
		return nil, err
	}
	if cfg.Path() != "" {
		c.Logger.Debug("loaded config", "path", cfg.Path())
	}
	c.config = cfg
	return cfg, nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// cacheFlags are the cache overrides shared by the analysis commands.
type cacheFlags struct {
	noCache bool
	backend string
}

func (f *cacheFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable the analysis cache")
	cmd.Flags().StringVar(&f.backend, "cache", "", "cache backend: file, redis, none (default from config)")
}

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, flags cacheFlags) (*pipeline.Runner, error) {
	cfg, err := c.Config()
	if err != nil {
		return nil, err
	}
	backend := cfg.Cache.Backend
	if flags.backend != "" {
		backend = flags.backend
	}
	if flags.noCache {
		backend = cacheNone
	}
	ch, err := newCache(ctx, backend, cfg)
	if err != nil {
		return nil, err
	}
	var keyer cache.Keyer
	if cfg.Cache.Namespace != "" {
		keyer = cache.NewScopedKeyer(nil, cfg.Cache.Namespace+":")
	}
	c.Logger.Debug("analysis cache", "backend", backend)
	return pipeline.NewRunner(ch, keyer, c.Logger), nil
}

func newCache(ctx context.Context, backend string, cfg *Config) (cache.Cache, error) {
	switch backend {
	case cacheNone:
		return cache.NewNullCache(), nil
	case cacheRedis:
		if cfg.Cache.RedisURL == "" {
			return nil, fmt.Errorf("cache backend redis needs cache.redis_url in %s", configHint(cfg))
		}
		return cache.NewRedisCache(ctx, cfg.Cache.RedisURL, redisPrefix)
	case cacheFile, "":
		dir, err := cfg.cacheDir()
		if err != nil {
			return cache.NewNullCache(), nil
		}
		return cache.NewFileCache(dir)
	}
	return nil, fmt.Errorf("unknown cache backend %q: must be one of %v", backend, cacheBackends)
}

// pipelineOptions returns analysis options seeded from the config file.
func (c *CLI) pipelineOptions() (pipeline.Options, error) {
	cfg, err := c.Config()
	if err != nil {
		return pipeline.Options{}, err
	}
	return pipeline.Options{
		Workers:   cfg.Workers,
		RefDBPath: cfg.RefDB,
		Logger:    c.Logger,
	}, nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/sugarcheck/).
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

func (c *Config) cacheDir() (string, error) {
	if c.Cache.Dir != "" {
		return c.Cache.Dir, nil
	}
	return cacheDir()
}

func configHint(cfg *Config) string {
	if cfg.Path() != "" {
		return cfg.Path()
	}
	return "config.toml"
}
