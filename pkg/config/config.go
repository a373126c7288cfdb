// Package config loads tally settings from a TOML file, layering user
// values over built-in defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config holds all configurable settings. Zero values fall back to the
// defaults from [Default].
type Config struct {
	Generate GenerateConfig `toml:"generate"`
	Render   RenderConfig   `toml:"render"`
	Cache    CacheConfig    `toml:"cache"`
	Store    StoreConfig    `toml:"store"`
	Serve    ServeConfig    `toml:"serve"`
}

// GenerateConfig controls random composition generation.
type GenerateConfig struct {
	MinDepth  int     `toml:"min_depth"`
	MaxDepth  int     `toml:"max_depth"`
	MaxArity  int     `toml:"max_arity"`
	ProbEmpty float64 `toml:"prob_empty"`
}

// RenderConfig controls layout and artifact rendering.
type RenderConfig struct {
	Format   string  `toml:"format"`
	Scale    float64 `toml:"scale"`
	Detailed bool    `toml:"detailed"`
}

// CacheConfig selects and configures the cache backend.
type CacheConfig struct {
	Backend  string `toml:"backend"`
	Dir      string `toml:"dir"`
	TTLHours int    `toml:"ttl_hours"`

	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
}

// StoreConfig selects and configures the persistence backend.
type StoreConfig struct {
	Backend    string `toml:"backend"`
	MongoURI   string `toml:"mongo_uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

// ServeConfig controls the HTTP API server.
type ServeConfig struct {
	Addr string `toml:"addr"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Generate: GenerateConfig{
			MinDepth:  2,
			MaxDepth:  4,
			MaxArity:  4,
			ProbEmpty: 0.25,
		},
		Render: RenderConfig{
			Format: "svg",
			Scale:  5.0,
		},
		Cache: CacheConfig{
			Backend:  "file",
			TTLHours: 24 * 7,
		},
		Store: StoreConfig{
			Backend:    "memory",
			Database:   "tally",
			Collection: "compositions",
		},
		Serve: ServeConfig{
			Addr: ":8080",
		},
	}
}

// DefaultPath returns the standard config file location,
// ~/.config/tally/config.toml, honoring XDG_CONFIG_HOME.
func DefaultPath() string {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "tally", "config.toml")
}

// Load reads a config file and layers it over the defaults. A missing file
// is not an error; the defaults are returned unchanged.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing %s: %w", path, err)
	}
	return cfg, nil
}
