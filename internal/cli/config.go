package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/BurntSushi/toml"
)

// Cache backends accepted by --cache and the config file.
const (
	cacheFile  = "file"
	cacheRedis = "redis"
	cacheNone  = "none"
)

var cacheBackends = []string{cacheFile, cacheRedis, cacheNone}

// Config is the user configuration read from config.toml. Every field is
// optional; flags override it.
//
//	workers = 8
//	refdb   = "~/sugars/extra.toml"
//
//	[cache]
//	backend   = "redis"
//	redis_url = "redis://localhost:6379/0"
//	namespace = "lab"
//
//	[mongo]
//	uri      = "mongodb://localhost:27017"
//	database = "sugarcheck"
//
//	[server]
//	addr = ":8080"
type Config struct {
	Workers int    `toml:"workers"`
	RefDB   string `toml:"refdb"`

	Cache  CacheConfig  `toml:"cache"`
	Mongo  MongoConfig  `toml:"mongo"`
	Server ServerConfig `toml:"server"`

	path string
}

// CacheConfig selects the analysis cache.
type CacheConfig struct {
	Backend   string `toml:"backend"`
	Dir       string `toml:"dir"`
	RedisURL  string `toml:"redis_url"`
	Namespace string `toml:"namespace"`
}

// MongoConfig points the server's report store at MongoDB.
type MongoConfig struct {
	URI      string `toml:"uri"`
	Database string `toml:"database"`
}

// ServerConfig holds defaults of the serve command.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// Path returns the file the config was read from, or "" when defaults are
// in use.
func (c *Config) Path() string { return c.path }

func (c *Config) setDefaults() {
	if c.Cache.Backend == "" {
		c.Cache.Backend = cacheFile
	}
}

func (c *Config) validate() error {
	if !slices.Contains(cacheBackends, c.Cache.Backend) {
		return fmt.Errorf("cache backend %q: must be one of %v", c.Cache.Backend, cacheBackends)
	}
	if c.Cache.Backend == cacheRedis && c.Cache.RedisURL == "" {
		return fmt.Errorf("cache backend redis needs cache.redis_url")
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must be positive, got %d", c.Workers)
	}
	return nil
}

// loadConfig reads the config at path. A missing file yields the defaults;
// an empty path means the default location.
func loadConfig(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		dir, err := configDir()
		if err != nil {
			cfg := &Config{}
			cfg.setDefaults()
			return cfg, nil
		}
		path = filepath.Join(dir, "config.toml")
	}

	cfg := &Config{}
	md, err := toml.DecodeFile(path, cfg)
	switch {
	case os.IsNotExist(err) && !explicit:
		cfg = &Config{}
	case err != nil:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	default:
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("config %s: unknown key %q", path, undecoded[0].String())
		}
		cfg.path = path
		cfg.RefDB = expandHome(cfg.RefDB)
		cfg.Cache.Dir = expandHome(cfg.Cache.Dir)
	}

	cfg.setDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// configDir returns the config directory using XDG standard (~/.config/sugarcheck/).
func configDir() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName), nil
}

func expandHome(p string) string {
	if len(p) < 2 || p[:2] != "~/" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, p[2:])
}
