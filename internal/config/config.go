// Package config loads qdirac settings from YAML with environment
// overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all qdirac configuration.
type Config struct {
	Engine  EngineConfig  `yaml:"engine"`
	Render  RenderConfig  `yaml:"render"`
	Logging LoggingConfig `yaml:"logging"`
	TUI     TUIConfig     `yaml:"tui"`
}

// EngineConfig configures the reduction engine.
type EngineConfig struct {
	MaxDepth int `yaml:"max_depth"`
}

// RenderConfig selects how step logs are printed.
type RenderConfig struct {
	Format string `yaml:"format"` // plain, latex, json
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Level       string   `yaml:"level"` // debug, info, warn, error
	Development bool     `yaml:"development"`
	Encoding    string   `yaml:"encoding"` // console, json
	OutputPaths []string `yaml:"output_paths"`
}

// TUIConfig configures the interactive step viewer.
type TUIConfig struct {
	Input   string `yaml:"input"`
	LogFile string `yaml:"log_file"`
}

// Formats accepted by RenderConfig.Format.
const (
	FormatPlain = "plain"
	FormatLaTeX = "latex"
	FormatJSON  = "json"
)

// DefaultConfig returns the built-in settings.
func DefaultConfig() *Config {
	return &Config{
		Engine: EngineConfig{MaxDepth: 512},
		Render: RenderConfig{Format: FormatPlain},
		Logging: LoggingConfig{
			Level:       "warn",
			Encoding:    "console",
			OutputPaths: []string{"stderr"},
		},
		TUI: TUIConfig{Input: "CX*(H@I)*|00>"},
	}
}

// Load reads configuration from a YAML file. A missing file yields the
// defaults. Environment overrides are applied in both cases, after any
// .env file in the working directory has been loaded.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, fmt.Errorf("failed to read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes configuration to a YAML file, creating its directory.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() error {
	if lvl := os.Getenv("QDIRAC_LOG_LEVEL"); lvl != "" {
		c.Logging.Level = lvl
	}
	if depth := os.Getenv("QDIRAC_MAX_DEPTH"); depth != "" {
		n, err := strconv.Atoi(depth)
		if err != nil {
			return fmt.Errorf("invalid QDIRAC_MAX_DEPTH %q: %w", depth, err)
		}
		c.Engine.MaxDepth = n
	}
	if format := os.Getenv("QDIRAC_FORMAT"); format != "" {
		c.Render.Format = format
	}
	return nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Engine.MaxDepth < 1 {
		return fmt.Errorf("engine.max_depth must be positive, got %d", c.Engine.MaxDepth)
	}
	switch c.Render.Format {
	case FormatPlain, FormatLaTeX, FormatJSON:
	default:
		return fmt.Errorf("render.format must be plain, latex or json, got %q", c.Render.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn or error, got %q", c.Logging.Level)
	}
	return nil
}
