// Package config loads the bridge server configuration from a TOML or YAML file.
package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Catalog backends.
const (
	BackendMemory   = "memory"
	BackendSQL      = "sql"
	BackendPostgres = "postgres"
)

// Config is the bridge server configuration.
type Config struct {
	Catalog CatalogConfig `toml:"catalog" yaml:"catalog"`
	Session SessionConfig `toml:"session" yaml:"session"`
	Debug   bool          `toml:"debug" yaml:"debug"`
}

// CatalogConfig selects where host enum types live.
type CatalogConfig struct {
	// Backend is memory, sql (sqlite, postgres or mysql via database/sql) or
	// postgres (live pg_type / pg_enum through pgx).
	Backend       string   `toml:"backend" yaml:"backend"`
	DSN           string   `toml:"dsn" yaml:"dsn"`
	LookupTimeout Duration `toml:"lookup_timeout" yaml:"lookup_timeout"`
}

// Duration is a time.Duration written as "5s" or "250ms" in config files.
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// SessionConfig tunes statement dispatch.
type SessionConfig struct {
	TypeCacheSize   int      `toml:"type_cache_size" yaml:"type_cache_size"`
	StandaloneKinds []string `toml:"standalone_kinds" yaml:"standalone_kinds"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	var cfg Config
	applyDefaults(&cfg)
	return cfg
}

// Load reads path, fills in defaults and validates the result. The format
// follows the file extension: .toml, or .yml / .yaml.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path) // nolint
	if err != nil {
		return Config{}, fmt.Errorf("config load failed (%s): %w", path, err)
	}

	var cfg Config
	switch {
	case strings.HasSuffix(path, ".toml"):
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config parse failed (%s): %w", path, err)
		}
	case strings.HasSuffix(path, ".yml") || strings.HasSuffix(path, ".yaml"):
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true) // strict mode, fail on unknown fields
		if err := dec.Decode(&cfg); err != nil {
			return Config{}, fmt.Errorf("config parse failed (%s): %w", path, err)
		}
	default:
		return Config{}, fmt.Errorf("unknown config format %s", path)
	}

	applyDefaults(&cfg)
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Catalog.Backend == "" {
		cfg.Catalog.Backend = BackendMemory
	}
	if cfg.Catalog.LookupTimeout.Duration == 0 {
		cfg.Catalog.LookupTimeout.Duration = 5 * time.Second
	}
	if cfg.Session.TypeCacheSize == 0 {
		cfg.Session.TypeCacheSize = 256
	}
	if cfg.Session.StandaloneKinds == nil {
		cfg.Session.StandaloneKinds = []string{"COPY", "VACUUM"}
	}
}

// Validate checks a configuration with defaults applied.
func Validate(cfg Config) error {
	switch cfg.Catalog.Backend {
	case BackendMemory:
	case BackendSQL, BackendPostgres:
		if strings.TrimSpace(cfg.Catalog.DSN) == "" {
			return fmt.Errorf("catalog backend %s requires a dsn", cfg.Catalog.Backend)
		}
	default:
		return fmt.Errorf("unknown catalog backend %q", cfg.Catalog.Backend)
	}
	if cfg.Catalog.LookupTimeout.Duration < 0 {
		return fmt.Errorf("catalog lookup_timeout must not be negative")
	}
	if cfg.Session.TypeCacheSize < 0 {
		return fmt.Errorf("session type_cache_size must not be negative")
	}
	for i, k := range cfg.Session.StandaloneKinds {
		if strings.TrimSpace(k) == "" {
			return fmt.Errorf("session standalone_kinds[%d] is empty", i)
		}
	}
	return nil
}
