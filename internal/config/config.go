// Package config holds the application settings shared by the CLI, the batch
// runner and the MCP server: detector thresholds, worker count, output
// format and log level.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/sleepydogo/plate-cv/internal/imaging"
	"github.com/sleepydogo/plate-cv/internal/plate"
)

// Environment variables read by ApplyEnv.
const (
	EnvLogLevel = "PLATE_CV_LOG_LEVEL"
	EnvWorkers  = "PLATE_CV_WORKERS"
)

// Config holds the application configuration
type Config struct {
	// Preset names the detector preset the Detector section starts from.
	Preset   string       `json:"preset"`
	Detector plate.Config `json:"detector"`
	Batch    BatchConfig  `json:"batch"`
	Output   OutputConfig `json:"output"`

	// LogLevel is "info" or "debug".
	LogLevel string `json:"log_level"`
}

// BatchConfig holds configuration for directory runs
type BatchConfig struct {
	// Workers is the number of images processed at once.
	Workers int `json:"workers"`

	// ExtractDigits runs the digit segmenter on every detected plate.
	ExtractDigits bool `json:"extract_digits"`
}

// OutputConfig holds configuration for written images
type OutputConfig struct {
	Dir         string `json:"dir"`
	Format      string `json:"format"`
	Quality     int    `json:"quality"`
	Lossless    bool   `json:"lossless"`
	DigitPrefix string `json:"digit_prefix"`
}

// Default returns a configuration with default values
func Default() *Config {
	return &Config{
		Preset:   "default",
		Detector: plate.DefaultConfig(),
		Batch: BatchConfig{
			Workers: runtime.NumCPU(),
		},
		Output: OutputConfig{
			Dir:         "./output",
			Format:      "png",
			Quality:     90,
			DigitPrefix: "digit",
		},
		LogLevel: "info",
	}
}

// LoadFromFile loads configuration from a JSON file.
//
// Fields missing from the file keep their defaults. When the file names a
// preset, the detector section starts from that preset instead.
func LoadFromFile(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var probe struct {
		Preset string `json:"preset"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg := Default()
	if probe.Preset != "" {
		detector, err := plate.PresetConfig(probe.Preset)
		if err != nil {
			return nil, err
		}
		cfg.Detector = detector
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg, nil
}

// SaveToFile saves configuration to a JSON file
func (c *Config) SaveToFile(filename string) error {
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ApplyEnv overrides the log level and worker count from the environment.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.LogLevel = strings.ToLower(v)
	}
	if v := os.Getenv(EnvWorkers); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s must be an integer, got %q", EnvWorkers, v)
		}
		c.Batch.Workers = n
	}
	return nil
}

// Debug reports whether debug logging is enabled.
func (c *Config) Debug() bool {
	return c.LogLevel == "debug"
}

// SaveOptions converts the output section for imaging.Save.
func (c *Config) SaveOptions() (imaging.SaveOptions, error) {
	format, err := imaging.ParseFormat(c.Output.Format)
	if err != nil {
		return imaging.SaveOptions{}, err
	}
	return imaging.SaveOptions{
		Format:   format,
		Quality:  c.Output.Quality,
		Lossless: c.Output.Lossless,
	}, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if err := c.Detector.Validate(); err != nil {
		return fmt.Errorf("detector: %w", err)
	}

	if c.Batch.Workers < 1 {
		return fmt.Errorf("batch.workers must be positive")
	}

	if _, err := imaging.ParseFormat(c.Output.Format); err != nil {
		return fmt.Errorf("output.format: %w", err)
	}

	if c.Output.Quality < 1 || c.Output.Quality > 100 {
		return fmt.Errorf("output.quality must be between 1 and 100")
	}

	switch c.LogLevel {
	case "info", "debug":
	default:
		return fmt.Errorf("log_level must be info or debug, got %q", c.LogLevel)
	}

	return nil
}

// GetConfigPath returns the default configuration file path
func GetConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./config.json"
	}
	return filepath.Join(home, ".config", "plate-cv", "config.json")
}
