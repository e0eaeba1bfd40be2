// Package config loads runtime settings from .liangfstar.yaml,
// LIANGFSTAR_* environment variables, and CLI flags through viper.
package config

import (
	"errors"
	"fmt"
	"slices"

	"github.com/spf13/viper"
)

// ErrInvalid is wrapped by every configuration validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Output formats accepted by the output key.
const (
	OutputTable = "table"
	OutputJSON  = "json"
	OutputYAML  = "yaml"
)

// MCPConfig holds settings for the serve command.
type MCPConfig struct {
	Transport string `mapstructure:"transport"`
	Addr      string `mapstructure:"addr"`
}

// Config holds all runtime configuration for a liangfstar session.
type Config struct {
	RulesFile     string    `mapstructure:"rules_file"`
	TextFile      string    `mapstructure:"text_file"`
	TextDB        string    `mapstructure:"text_db"`
	TelemetryPath string    `mapstructure:"telemetry_path"`
	LogLevel      string    `mapstructure:"log_level"`
	LogFormat     string    `mapstructure:"log_format"`
	Output        string    `mapstructure:"output"`
	BatchWorkers  int       `mapstructure:"batch_workers"`
	NoColor       bool      `mapstructure:"no_color"`
	MCP           MCPConfig `mapstructure:"mcp"`
}

// Load reads configuration from viper, applying built-in defaults for any
// values not set by config file, environment, or flags.
func Load() (Config, error) {
	viper.SetDefault("rules_file", "")
	viper.SetDefault("text_file", "")
	viper.SetDefault("text_db", "")
	viper.SetDefault("telemetry_path", "")
	viper.SetDefault("log_level", "info")
	viper.SetDefault("log_format", "text")
	viper.SetDefault("output", OutputTable)
	viper.SetDefault("batch_workers", 0)
	viper.SetDefault("no_color", false)
	viper.SetDefault("mcp.transport", "stdio")
	viper.SetDefault("mcp.addr", "127.0.0.1:8392")

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks enumerated settings.
func (c Config) Validate() error {
	if !slices.Contains([]string{OutputTable, OutputJSON, OutputYAML}, c.Output) {
		return fmt.Errorf("%w: output %q (want table, json, or yaml)", ErrInvalid, c.Output)
	}
	if !slices.Contains([]string{"text", "json"}, c.LogFormat) {
		return fmt.Errorf("%w: log_format %q (want text or json)", ErrInvalid, c.LogFormat)
	}
	if !slices.Contains([]string{"debug", "info", "warn", "error"}, c.LogLevel) {
		return fmt.Errorf("%w: log_level %q", ErrInvalid, c.LogLevel)
	}
	if c.BatchWorkers < 0 {
		return fmt.Errorf("%w: batch_workers must not be negative", ErrInvalid)
	}
	if !slices.Contains([]string{"stdio", "sse"}, c.MCP.Transport) {
		return fmt.Errorf("%w: mcp.transport %q (want stdio or sse)", ErrInvalid, c.MCP.Transport)
	}
	return nil
}
