package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Emit values select which document the plan command prints.
const (
	EmitPlan     = "plan"
	EmitWorkflow = "workflow"
)

// Config represents cloneworks configuration options
type Config struct {
	// LogLevel sets the logging verbosity (trace, debug, info, warn, error)
	LogLevel string `yaml:"log_level"`

	// LogDir is the directory for run logs; empty disables file logging
	LogDir string `yaml:"log_dir"`

	// Emit selects the document the plan command outputs (plan or workflow)
	Emit string `yaml:"emit"`

	// Pretty forces indented JSON even when output is not a terminal
	Pretty bool `yaml:"pretty"`

	// OutputDir is prepended to relative --out paths
	OutputDir string `yaml:"output_dir"`

	// WatchDebounce is how long watch mode waits for writes to settle
	WatchDebounce time.Duration `yaml:"watch_debounce"`
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	return &Config{
		LogLevel:      "info",
		LogDir:        "",
		Emit:          EmitWorkflow,
		Pretty:        false,
		OutputDir:     "",
		WatchDebounce: 200 * time.Millisecond,
	}
}

// LoadConfig loads configuration from the specified file path
// If the file doesn't exist, returns default configuration without error
// If the file exists but is malformed, returns an error
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Durations are read as strings so "500ms" style values parse
	type yamlConfig struct {
		LogLevel      string `yaml:"log_level"`
		LogDir        string `yaml:"log_dir"`
		Emit          string `yaml:"emit"`
		Pretty        *bool  `yaml:"pretty"`
		OutputDir     string `yaml:"output_dir"`
		WatchDebounce string `yaml:"watch_debounce"`
	}

	var yamlCfg yamlConfig
	if err := yaml.Unmarshal(data, &yamlCfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Apply non-zero values from file (merging with defaults)
	if yamlCfg.LogLevel != "" {
		cfg.LogLevel = yamlCfg.LogLevel
	}
	if yamlCfg.LogDir != "" {
		cfg.LogDir = yamlCfg.LogDir
	}
	if yamlCfg.Emit != "" {
		cfg.Emit = yamlCfg.Emit
	}
	if yamlCfg.Pretty != nil {
		cfg.Pretty = *yamlCfg.Pretty
	}
	if yamlCfg.OutputDir != "" {
		cfg.OutputDir = yamlCfg.OutputDir
	}
	if yamlCfg.WatchDebounce != "" {
		debounce, err := time.ParseDuration(yamlCfg.WatchDebounce)
		if err != nil {
			return nil, fmt.Errorf("invalid watch_debounce format %q: %w", yamlCfg.WatchDebounce, err)
		}
		cfg.WatchDebounce = debounce
	}

	return cfg, nil
}

// MergeWithFlags merges CLI flags into the configuration
// Non-nil flag values override configuration values
func (c *Config) MergeWithFlags(logLevel *string, logDir *string, emit *string, pretty *bool, outputDir *string) {
	if logLevel != nil {
		c.LogLevel = *logLevel
	}
	if logDir != nil {
		c.LogDir = *logDir
	}
	if emit != nil {
		c.Emit = *emit
	}
	if pretty != nil {
		c.Pretty = *pretty
	}
	if outputDir != nil {
		c.OutputDir = *outputDir
	}
}

// ResolveOutput joins a relative output path onto OutputDir.
func (c *Config) ResolveOutput(path string) string {
	if path == "" || path == "-" || filepath.IsAbs(path) || c.OutputDir == "" {
		return path
	}
	return filepath.Join(c.OutputDir, path)
}

// Validate validates the configuration values
func (c *Config) Validate() error {
	validLevels := map[string]bool{
		"trace": true,
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[c.LogLevel] {
		return fmt.Errorf("invalid log_level %q, must be one of: trace, debug, info, warn, error", c.LogLevel)
	}

	if c.Emit != EmitPlan && c.Emit != EmitWorkflow {
		return fmt.Errorf("invalid emit %q, must be one of: %s, %s", c.Emit, EmitPlan, EmitWorkflow)
	}

	if c.WatchDebounce < 0 {
		return fmt.Errorf("watch_debounce must be >= 0, got %v", c.WatchDebounce)
	}

	return nil
}
