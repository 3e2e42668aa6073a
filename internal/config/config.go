// Package config loads pipelinecheck settings from a TOML file.
//
// Every field has a default, so an empty or missing file is valid. Command
// line flags are applied on top of the loaded values by the CLI.
//
//	[server]
//	addr = ":8000"
//	allowed_origins = ["http://localhost", "http://localhost:3000"]
//	max_body_bytes = 10485760
//	request_timeout = "30s"
//	shutdown_timeout = "10s"
//
//	[limits]
//	max_nodes = 100000
//	max_edges = 500000
//
//	[cache]
//	backend = "redis"          # none, file or redis
//	redis_addr = "localhost:6379"
//	prefix = "pipelinecheck:"
//	ttl = "24h"
//
//	[audit]
//	log = true
//	mongo_uri = "mongodb://localhost:27017"
//	retention = "720h"
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	perrors "github.com/matzehuels/pipelinecheck/pkg/errors"
)

const appName = "pipelinecheck"

// Cache backends.
const (
	CacheNone  = "none"
	CacheFile  = "file"
	CacheRedis = "redis"
)

// Config is the full configuration.
type Config struct {
	Server ServerConfig `toml:"server"`
	Limits LimitsConfig `toml:"limits"`
	Cache  CacheConfig  `toml:"cache"`
	Audit  AuditConfig  `toml:"audit"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Addr            string   `toml:"addr"`
	AllowedOrigins  []string `toml:"allowed_origins"`
	MaxBodyBytes    int64    `toml:"max_body_bytes"`
	RequestTimeout  Duration `toml:"request_timeout"`
	ShutdownTimeout Duration `toml:"shutdown_timeout"`
}

// LimitsConfig bounds accepted graph sizes. Zero means unlimited.
type LimitsConfig struct {
	MaxNodes int `toml:"max_nodes"`
	MaxEdges int `toml:"max_edges"`
}

// CacheConfig selects and configures the verdict cache.
type CacheConfig struct {
	Backend       string   `toml:"backend"`
	Dir           string   `toml:"dir"`
	RedisAddr     string   `toml:"redis_addr"`
	RedisPassword string   `toml:"redis_password"`
	RedisDB       int      `toml:"redis_db"`
	Prefix        string   `toml:"prefix"`
	TTL           Duration `toml:"ttl"`
}

// AuditConfig configures the check audit log. Records go to MongoDB when
// MongoURI is set, otherwise to the debug log when Log is true.
type AuditConfig struct {
	Log        bool     `toml:"log"`
	MongoURI   string   `toml:"mongo_uri"`
	Database   string   `toml:"database"`
	Collection string   `toml:"collection"`
	Retention  Duration `toml:"retention"`
}

// Duration is a time.Duration written as a string such as "30s" in TOML.
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText formats the duration.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:            ":8000",
			AllowedOrigins:  []string{"http://localhost", "http://localhost:3000"},
			MaxBodyBytes:    10 << 20,
			RequestTimeout:  Duration{30 * time.Second},
			ShutdownTimeout: Duration{10 * time.Second},
		},
		Limits: LimitsConfig{
			MaxNodes: 100_000,
			MaxEdges: 500_000,
		},
		Cache: CacheConfig{
			Backend: CacheNone,
			Dir:     DefaultCacheDir(),
			Prefix:  "pipelinecheck:",
			TTL:     Duration{24 * time.Hour},
		},
		Audit: AuditConfig{
			Database:   "pipelinecheck",
			Collection: "checks",
		},
	}
}

// DefaultPath returns the default config file path using the XDG layout
// (~/.config/pipelinecheck/config.toml), or "" if the home directory is
// unknown.
func DefaultPath() string {
	dir, err := xdgDir("XDG_CONFIG_HOME", ".config")
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "config.toml")
}

// DefaultCacheDir returns the default file cache directory using the XDG
// layout (~/.cache/pipelinecheck).
func DefaultCacheDir() string {
	dir, err := xdgDir("XDG_CACHE_HOME", ".cache")
	if err != nil {
		return filepath.Join(os.TempDir(), appName)
	}
	return dir
}

func xdgDir(env, fallback string) (string, error) {
	if base := os.Getenv(env); base != "" {
		return filepath.Join(base, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, fallback, appName), nil
}

// Load reads path over the defaults. A missing file yields the defaults
// unless required is set. Unknown keys are rejected so typos surface early.
func Load(path string, required bool) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !required {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config %q: %w", path, err)
	}

	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return Config{}, perrors.Wrap(perrors.ErrCodeInvalidConfig, err, "parse config %q", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Config{}, perrors.New(perrors.ErrCodeInvalidConfig, "config %q: unknown key %q", path, undecoded[0].String())
	}
	return cfg, cfg.Validate()
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	if err := perrors.ValidateListenAddr(c.Server.Addr); err != nil {
		return err
	}
	for _, o := range c.Server.AllowedOrigins {
		if err := perrors.ValidateOrigin(o); err != nil {
			return err
		}
	}
	if c.Server.MaxBodyBytes <= 0 {
		return perrors.New(perrors.ErrCodeInvalidConfig, "server.max_body_bytes must be positive")
	}
	if c.Server.RequestTimeout.Duration < 0 || c.Server.ShutdownTimeout.Duration < 0 {
		return perrors.New(perrors.ErrCodeInvalidConfig, "server timeouts must not be negative")
	}
	if c.Limits.MaxNodes < 0 || c.Limits.MaxEdges < 0 {
		return perrors.New(perrors.ErrCodeInvalidConfig, "limits must not be negative")
	}

	switch c.Cache.Backend {
	case CacheNone:
	case CacheFile:
		if c.Cache.Dir == "" {
			return perrors.New(perrors.ErrCodeInvalidConfig, "cache.dir is required for the file backend")
		}
	case CacheRedis:
		if c.Cache.RedisAddr == "" {
			return perrors.New(perrors.ErrCodeInvalidConfig, "cache.redis_addr is required for the redis backend")
		}
	default:
		return perrors.New(perrors.ErrCodeInvalidConfig, "unknown cache backend %q (want none, file or redis)", c.Cache.Backend)
	}
	if c.Cache.TTL.Duration < 0 {
		return perrors.New(perrors.ErrCodeInvalidConfig, "cache.ttl must not be negative")
	}
	if c.Audit.Retention.Duration < 0 {
		return perrors.New(perrors.ErrCodeInvalidConfig, "audit.retention must not be negative")
	}
	return nil
}
