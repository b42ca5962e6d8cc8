package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/iancoleman/strcase"
	"github.com/mcncl/jsoncompare/internal/errors"
	"gopkg.in/yaml.v3"
)

// Accepted enum values
const (
	FormatText = "text"
	FormatJSON = "json"

	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Config represents the complete configuration for jsoncompare
type Config struct {
	MaxDepth int          `yaml:"max_depth"`
	Output   OutputConfig `yaml:"output"`
	Exit     ExitConfig   `yaml:"exit"`
	Server   ServerConfig `yaml:"server"`
	Log      LogConfig    `yaml:"log"`
}

// OutputConfig controls how reports are rendered
type OutputConfig struct {
	Format    string `yaml:"format"`
	Color     string `yaml:"color"`
	ShowStats bool   `yaml:"show_stats"`
}

// ExitConfig controls the process exit status
type ExitConfig struct {
	FailOnDifference bool `yaml:"fail_on_difference"`
}

// ServerConfig controls the HTTP service
type ServerConfig struct {
	Addr         string        `yaml:"addr"`
	MaxBodyBytes int64         `yaml:"max_body_bytes"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// LogConfig controls structured logging
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	return &Config{
		MaxDepth: 512,
		Output: OutputConfig{
			Format:    FormatText,
			Color:     ColorAuto,
			ShowStats: false,
		},
		Exit: ExitConfig{
			FailOnDifference: false,
		},
		Server: ServerConfig{
			Addr:         ":8080",
			MaxBodyBytes: 10 << 20,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: FormatText,
		},
	}
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(path string) (*Config, error) {
	// Read file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewConfigError("failed to read config file", err)
	}

	// Start with defaults
	cfg := NewConfig()

	// Parse YAML
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.NewConfigError("failed to parse config file", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// FindConfigFile searches for a config file in current directory and parents
func FindConfigFile() string {
	configNames := []string{".jsoncompare.yml", ".jsoncompare.yaml", "jsoncompare.yml", "jsoncompare.yaml"}

	// Start from current directory
	currentDir, err := os.Getwd()
	if err != nil {
		return ""
	}

	// Search up the directory tree
	for {
		for _, name := range configNames {
			configPath := filepath.Join(currentDir, name)
			if _, err := os.Stat(configPath); err == nil {
				return configPath
			}
		}

		// Move up one directory
		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			// Reached root directory
			break
		}
		currentDir = parentDir
	}

	return ""
}

// normalize lowers an enum value to its canonical snake case spelling so
// "JSON", "Json" and "json" all read the same
func normalize(s string) string {
	return strcase.ToSnake(strings.TrimSpace(s))
}

func oneOf(field, value string, allowed ...string) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return errors.NewConfigError(
		fmt.Sprintf("%s must be one of %s, got %q", field, strings.Join(allowed, ", "), value),
		errors.ErrInvalidConfig,
	)
}

// Validate normalises enum fields in place and checks every value
func (c *Config) Validate() error {
	c.Output.Format = normalize(c.Output.Format)
	c.Output.Color = normalize(c.Output.Color)
	c.Log.Level = normalize(c.Log.Level)
	c.Log.Format = normalize(c.Log.Format)
	if c.Log.Level == "warning" {
		c.Log.Level = "warn"
	}

	if c.MaxDepth <= 0 {
		return errors.NewConfigError(fmt.Sprintf("max_depth must be positive, got %d", c.MaxDepth), errors.ErrInvalidConfig)
	}
	if err := oneOf("output.format", c.Output.Format, FormatText, FormatJSON); err != nil {
		return err
	}
	if err := oneOf("output.color", c.Output.Color, ColorAuto, ColorAlways, ColorNever); err != nil {
		return err
	}
	if err := oneOf("log.level", c.Log.Level, "debug", "info", "warn", "error"); err != nil {
		return err
	}
	if err := oneOf("log.format", c.Log.Format, FormatText, FormatJSON); err != nil {
		return err
	}
	if c.Server.MaxBodyBytes <= 0 {
		return errors.NewConfigError(fmt.Sprintf("server.max_body_bytes must be positive, got %d", c.Server.MaxBodyBytes), errors.ErrInvalidConfig)
	}
	if c.Server.ReadTimeout < 0 || c.Server.WriteTimeout < 0 {
		return errors.NewConfigError("server timeouts must not be negative", errors.ErrInvalidConfig)
	}
	return nil
}

// UseColor resolves the color setting; auto follows whether the output is a
// terminal
func (o OutputConfig) UseColor(isTerminal bool) bool {
	switch o.Color {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	default:
		return isTerminal
	}
}

// Overrides carries values given on the command line. A nil field was not
// set and leaves the file value alone.
type Overrides struct {
	MaxDepth         *int
	Format           *string
	Color            *string
	ShowStats        *bool
	FailOnDifference *bool
	Addr             *string
	LogLevel         *string
}

// Apply copies every set override into cfg
func (o Overrides) Apply(cfg *Config) {
	if o.MaxDepth != nil {
		cfg.MaxDepth = *o.MaxDepth
	}
	if o.Format != nil {
		cfg.Output.Format = *o.Format
	}
	if o.Color != nil {
		cfg.Output.Color = *o.Color
	}
	if o.ShowStats != nil {
		cfg.Output.ShowStats = *o.ShowStats
	}
	if o.FailOnDifference != nil {
		cfg.Exit.FailOnDifference = *o.FailOnDifference
	}
	if o.Addr != nil {
		cfg.Server.Addr = *o.Addr
	}
	if o.LogLevel != nil {
		cfg.Log.Level = *o.LogLevel
	}
}

// LoadConfigWithCLI loads config with CLI argument precedence:
// CLI > config file > defaults
func LoadConfigWithCLI(configPath string, overrides Overrides) (*Config, error) {
	// Start with defaults
	cfg := NewConfig()

	// Load config file if provided
	if configPath != "" {
		fileConfig, err := LoadConfig(configPath)
		if err != nil {
			return nil, err
		}
		cfg = fileConfig
	}

	overrides.Apply(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
