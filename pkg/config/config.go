// Package config loads redwire's TOML configuration.
//
// A configuration file is optional. Lookup order:
//
//  1. the path given with --config
//  2. $XDG_CONFIG_HOME/redwire/config.toml
//  3. ~/.config/redwire/config.toml
//
// A missing file in the default locations yields [Default]. An explicit path
// that does not exist is an error. Environment variables override the file:
// REDWIRE_REDIS_URL, REDWIRE_MONGO_URI and REDWIRE_ADDR.
//
// Example:
//
//	[cache]
//	backend = "redis"
//	redis_url = "redis://localhost:6379/0"
//	ttl = "72h"
//
//	[server]
//	addr = ":8080"
//	max_lines = 256
//
//	[store]
//	mongo_uri = "mongodb://localhost:27017"
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/redwire/pkg/errors"
	"github.com/matzehuels/redwire/pkg/report"
)

// Cache backends.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendNone  = "none"
)

// Environment variables that override file settings.
const (
	EnvRedisURL = "REDWIRE_REDIS_URL"
	EnvMongoURI = "REDWIRE_MONGO_URI"
	EnvAddr     = "REDWIRE_ADDR"
)

// Default configuration values.
const (
	DefaultAddr       = ":8080"
	DefaultDatabase   = "redwire"
	DefaultCollection = "runs"
	DefaultTTL        = 30 * 24 * time.Hour
)

// Config holds all configuration for the CLI and the API server.
type Config struct {
	Cache  CacheConfig  `toml:"cache"`
	Server ServerConfig `toml:"server"`
	Store  StoreConfig  `toml:"store"`
	Output OutputConfig `toml:"output"`
}

// CacheConfig selects and configures the report cache.
type CacheConfig struct {
	Backend  string        `toml:"backend"`
	Dir      string        `toml:"dir"`
	RedisURL string        `toml:"redis_url"`
	TTL      time.Duration `toml:"ttl"`
}

// ServerConfig configures `redwire serve`. MaxLines and MaxLineLength bound
// API requests only; zero disables a bound.
type ServerConfig struct {
	Addr          string `toml:"addr"`
	MaxLines      int    `toml:"max_lines"`
	MaxLineLength int    `toml:"max_line_length"`
}

// StoreConfig configures the run history. An empty MongoURI selects the
// in-memory store.
type StoreConfig struct {
	MongoURI   string `toml:"mongo_uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

// OutputConfig holds defaults for `redwire calc`.
type OutputConfig struct {
	Format string `toml:"format"`
	Strict bool   `toml:"strict"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Cache: CacheConfig{
			Backend: BackendFile,
			Dir:     DefaultCacheDir(),
			TTL:     DefaultTTL,
		},
		Server: ServerConfig{
			Addr:          DefaultAddr,
			MaxLines:      errors.DefaultMaxLines,
			MaxLineLength: errors.DefaultMaxLineLength,
		},
		Store: StoreConfig{
			Database:   DefaultDatabase,
			Collection: DefaultCollection,
		},
		Output: OutputConfig{
			Format: report.FormatText,
		},
	}
}

// Load reads the configuration file at path, or from the default locations
// when path is empty, applies environment overrides and validates the
// result.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}

	if path != "" {
		_, err := toml.DecodeFile(path, cfg)
		if err != nil && (explicit || !os.IsNotExist(err)) {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config %s", path)
		}
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes configuration from TOML text on top of the defaults.
func Parse(data string) (*Config, error) {
	cfg := Default()
	if _, err := toml.Decode(data, cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvRedisURL); v != "" {
		c.Cache.RedisURL = v
		if c.Cache.Backend == BackendFile {
			c.Cache.Backend = BackendRedis
		}
	}
	if v := os.Getenv(EnvMongoURI); v != "" {
		c.Store.MongoURI = v
	}
	if v := os.Getenv(EnvAddr); v != "" {
		c.Server.Addr = v
	}
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	switch c.Cache.Backend {
	case BackendFile:
		if c.Cache.Dir == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "cache.dir is required for the file backend")
		}
	case BackendRedis:
		if c.Cache.RedisURL == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "cache.redis_url is required for the redis backend")
		}
	case BackendNone:
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "invalid cache.backend %q (must be one of: file, redis, none)", c.Cache.Backend)
	}
	if c.Cache.TTL < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "cache.ttl must not be negative")
	}

	if c.Server.Addr == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "server.addr is required")
	}
	if c.Server.MaxLines < 0 || c.Server.MaxLineLength < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "server limits must not be negative")
	}

	if c.Store.MongoURI != "" && (c.Store.Database == "" || c.Store.Collection == "") {
		return errors.New(errors.ErrCodeInvalidConfig, "store.database and store.collection are required with store.mongo_uri")
	}

	if err := errors.ValidateFormat(c.Output.Format, report.Formats); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "output.format")
	}
	return nil
}

// DefaultPath returns the default configuration file location, or "" when
// no home directory can be determined.
func DefaultPath() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "redwire", "config.toml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "redwire", "config.toml")
}

// DefaultCacheDir returns the cache directory using the XDG standard
// (~/.cache/redwire/).
func DefaultCacheDir() string {
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(dir, "redwire")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "redwire-cache")
	}
	return filepath.Join(home, ".cache", "redwire")
}
