// Package config loads agent daemon configuration from YAML with environment
// variable expansion.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// EngineConfig selects and tunes the reasoning engine.
type EngineConfig struct {
	// Provider is one of "static", "openai", "anthropic".
	Provider     string  `yaml:"provider"`
	Model        string  `yaml:"model"`
	Instructions string  `yaml:"instructions"`
	Temperature  float64 `yaml:"temperature"`
}

// StoreConfig selects the session store backend.
type StoreConfig struct {
	// Driver is one of "memory", "sqlite".
	Driver string `yaml:"driver"`
	// Path is the sqlite database file. Ignored by the memory driver.
	Path string `yaml:"path"`
}

// LogConfig tunes structured logging output.
type LogConfig struct {
	// Level is one of "debug", "info", "warn", "error".
	Level string `yaml:"level"`
	// Format is "text" or "json".
	Format string `yaml:"format"`
}

// Config is the full agent daemon configuration.
type Config struct {
	// Name is the agent's name and default memory role.
	Name string `yaml:"name"`
	// Role overrides the memory namespace label. Defaults to Name.
	Role string `yaml:"role"`
	// Addr is the listen address, e.g. ":8090".
	Addr string `yaml:"addr"`

	Engine EngineConfig `yaml:"engine"`
	Store  StoreConfig  `yaml:"store"`
	Log    LogConfig    `yaml:"log"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Name: "agent",
		Addr: ":8090",
		Engine: EngineConfig{
			Provider:    "static",
			Temperature: 0.7,
		},
		Store: StoreConfig{
			Driver: "memory",
			Path:   "agent.db",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads a YAML file over the defaults. ${VAR} references in the file are
// expanded from the environment before parsing.
func Load(path string) (Config, error) {
	cfg := Default()

	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}

	expanded := os.ExpandEnv(string(raw))
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}

	if cfg.Role == "" {
		cfg.Role = cfg.Name
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate rejects configurations the daemon cannot start from.
func (c Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("config: name must not be empty")
	}
	if c.Addr == "" {
		return fmt.Errorf("config: addr must not be empty")
	}

	switch c.Engine.Provider {
	case "static", "openai", "anthropic":
	default:
		return fmt.Errorf("config: unknown engine provider %q", c.Engine.Provider)
	}

	switch c.Store.Driver {
	case "memory":
	case "sqlite":
		if c.Store.Path == "" {
			return fmt.Errorf("config: sqlite store requires a path")
		}
	default:
		return fmt.Errorf("config: unknown store driver %q", c.Store.Driver)
	}

	return nil
}
