// Package config loads the HTTP service configuration.
//
// Values come from, in increasing priority: built-in defaults, a config
// file (YAML, TOML or JSON, picked by extension) and STORYLINE_* environment
// variables. Nested keys map to env vars with dots replaced by underscores,
// so cache.ttl is STORYLINE_CACHE_TTL.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"

	errs "github.com/matzehuels/storyline/pkg/errors"
)

// EnvPrefix is the prefix of environment overrides.
const EnvPrefix = "STORYLINE"

// Config is the HTTP service configuration.
type Config struct {
	// Listen is the address the service binds to.
	Listen string `mapstructure:"listen"`

	// Document is an optional timeline document preloaded into the session.
	Document string `mapstructure:"document"`

	Server ServerConfig `mapstructure:"server"`
	Cache  CacheConfig  `mapstructure:"cache"`
}

// ServerConfig holds HTTP server limits.
type ServerConfig struct {
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	MaxUploadBytes  int64         `mapstructure:"max_upload_bytes"`
}

// CacheConfig controls the in-memory render cache.
type CacheConfig struct {
	Enabled    bool          `mapstructure:"enabled"`
	TTL        time.Duration `mapstructure:"ttl"`
	MaxEntries int           `mapstructure:"max_entries"`
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("listen", "127.0.0.1:8080")
	v.SetDefault("document", "")

	// Server defaults
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 60*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.max_upload_bytes", 10<<20)

	// Cache defaults
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.ttl", 24*time.Hour)
	v.SetDefault("cache.max_entries", 256)
}

// Load reads the configuration. An empty path skips the config file and
// uses defaults and environment variables only.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	// Set up environment variable reading for overrides
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist) {
				return nil, errs.Wrap(errs.ErrCodeFileNotFound, err, "config file %s not found", path)
			}
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the built-in configuration.
func Default() *Config {
	cfg, _ := Load("")
	return cfg
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Listen) == "" {
		return errs.New(errs.ErrCodeInvalidInput, "listen address is required")
	}
	if c.Cache.TTL < 0 {
		return errs.New(errs.ErrCodeInvalidInput, "cache.ttl cannot be negative, got %s", c.Cache.TTL)
	}
	if c.Cache.MaxEntries < 0 {
		return errs.New(errs.ErrCodeInvalidInput, "cache.max_entries cannot be negative, got %d", c.Cache.MaxEntries)
	}
	if c.Server.MaxUploadBytes <= 0 {
		return errs.New(errs.ErrCodeInvalidInput, "server.max_upload_bytes must be positive, got %d", c.Server.MaxUploadBytes)
	}
	return nil
}
