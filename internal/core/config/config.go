// Package config handles configuration loading and validation for keyscope.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the application configuration.
type Config struct {
	Store   StoreConfig  `yaml:"store"`
	Scan    ScanConfig   `yaml:"scan"`
	Export  ExportConfig `yaml:"export"`
	Import  ImportConfig `yaml:"import"`
	DataDir string       `yaml:"-"` // set by caller, not from config file
}

// StoreConfig holds settings for the embedded key database.
type StoreConfig struct {
	// Path overrides where the database directory lives.
	// Empty means <data_dir>/store.
	Path string `yaml:"path"`
	// SweepInterval is how often the background sweeper purges expired
	// keys, as a Go duration string. "0" disables the sweeper; expired
	// keys are then only removed when they are read.
	SweepInterval string `yaml:"sweep_interval"`
}

// ScanConfig controls key enumeration.
type ScanConfig struct {
	// PageSize is the number of keys fetched per scan round trip.
	PageSize int64 `yaml:"page_size"`
}

// ExportConfig controls where key documents are written.
type ExportConfig struct {
	Dir string `yaml:"dir"`
}

// ImportConfig controls document imports.
type ImportConfig struct {
	// Debounce is how long the import watcher waits after a file stops
	// changing before importing it, as a Go duration string.
	Debounce string `yaml:"debounce"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Store: StoreConfig{
			SweepInterval: "1m",
		},
		Scan: ScanConfig{
			PageSize: 500,
		},
		Export: ExportConfig{
			Dir: ".",
		},
		Import: ImportConfig{
			Debounce: "250ms",
		},
	}
}

// Load reads configuration from the given path and sets the data directory.
// If configPath is empty or doesn't exist, returns defaults with the provided dataDir.
func Load(configPath, dataDir string) (*Config, error) {
	cfg := DefaultConfig()
	cfg.DataDir = dataDir

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}

			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}

			// Re-set dataDir since Unmarshal may have cleared it
			cfg.DataDir = dataDir
		}
	}

	// Apply defaults for zero values
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.Store.SweepInterval == "" {
		c.Store.SweepInterval = defaults.Store.SweepInterval
	}
	if c.Scan.PageSize == 0 {
		c.Scan.PageSize = defaults.Scan.PageSize
	}
	if c.Export.Dir == "" {
		c.Export.Dir = defaults.Export.Dir
	}
	if c.Import.Debounce == "" {
		c.Import.Debounce = defaults.Import.Debounce
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data directory cannot be empty")
	}

	if c.Scan.PageSize < 1 {
		return fmt.Errorf("scan.page_size must be at least 1")
	}

	sweep, err := time.ParseDuration(c.Store.SweepInterval)
	if err != nil {
		return fmt.Errorf("store.sweep_interval: %w", err)
	}
	if sweep < 0 {
		return fmt.Errorf("store.sweep_interval cannot be negative")
	}

	debounce, err := time.ParseDuration(c.Import.Debounce)
	if err != nil {
		return fmt.Errorf("import.debounce: %w", err)
	}
	if debounce <= 0 {
		return fmt.Errorf("import.debounce must be positive")
	}

	return nil
}

// StoreDir returns the directory where the key database lives.
func (c *Config) StoreDir() string {
	if c.Store.Path != "" {
		return c.Store.Path
	}
	return filepath.Join(c.DataDir, "store")
}

// SweepInterval returns the parsed background sweep interval.
// Zero means the sweeper is disabled.
func (c *Config) SweepInterval() time.Duration {
	d, _ := time.ParseDuration(c.Store.SweepInterval)
	return d
}

// ImportDebounce returns the parsed import watcher debounce delay.
func (c *Config) ImportDebounce() time.Duration {
	d, _ := time.ParseDuration(c.Import.Debounce)
	return d
}
