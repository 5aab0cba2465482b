package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "defaults are valid",
			mutate: func(c *Config) {},
		},
		{
			name:    "missing data dir",
			mutate:  func(c *Config) { c.DataDir = "" },
			wantErr: "data directory cannot be empty",
		},
		{
			name:    "page size zero",
			mutate:  func(c *Config) { c.Scan.PageSize = 0 },
			wantErr: "scan.page_size must be at least 1",
		},
		{
			name:    "page size negative",
			mutate:  func(c *Config) { c.Scan.PageSize = -5 },
			wantErr: "scan.page_size",
		},
		{
			name:    "unparsable sweep interval",
			mutate:  func(c *Config) { c.Store.SweepInterval = "soon" },
			wantErr: "store.sweep_interval",
		},
		{
			name:    "negative sweep interval",
			mutate:  func(c *Config) { c.Store.SweepInterval = "-1m" },
			wantErr: "cannot be negative",
		},
		{
			name:   "zero sweep interval disables sweeping",
			mutate: func(c *Config) { c.Store.SweepInterval = "0s" },
		},
		{
			name:    "unparsable debounce",
			mutate:  func(c *Config) { c.Import.Debounce = "fast" },
			wantErr: "import.debounce",
		},
		{
			name:    "zero debounce",
			mutate:  func(c *Config) { c.Import.Debounce = "0s" },
			wantErr: "must be positive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.DataDir = t.TempDir()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Errorf("Validate() expected error containing %q, got nil", tt.wantErr)
				return
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %q, want error containing %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "keyscope.yml")

	content := `store:
  sweep_interval: 5m
scan:
  page_size: 50
export:
  dir: /tmp/keyscope-exports
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path, dir)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.DataDir != dir {
		t.Errorf("DataDir = %q, want %q", cfg.DataDir, dir)
	}
	if got := cfg.SweepInterval(); got != 5*time.Minute {
		t.Errorf("SweepInterval() = %v, want 5m", got)
	}
	if cfg.Scan.PageSize != 50 {
		t.Errorf("Scan.PageSize = %d, want 50", cfg.Scan.PageSize)
	}
	if cfg.Export.Dir != "/tmp/keyscope-exports" {
		t.Errorf("Export.Dir = %q, want /tmp/keyscope-exports", cfg.Export.Dir)
	}

	// Unset values fall back to defaults.
	if got := cfg.ImportDebounce(); got != 250*time.Millisecond {
		t.Errorf("ImportDebounce() = %v, want 250ms", got)
	}
}

func TestLoadMissingFile(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(filepath.Join(dir, "nope.yml"), dir)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Scan.PageSize != 500 {
		t.Errorf("Scan.PageSize = %d, want default 500", cfg.Scan.PageSize)
	}
	if cfg.Store.SweepInterval != "1m" {
		t.Errorf("Store.SweepInterval = %q, want default 1m", cfg.Store.SweepInterval)
	}
	if cfg.DataDir != dir {
		t.Errorf("DataDir = %q, want %q", cfg.DataDir, dir)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "keyscope.yml")
	if err := os.WriteFile(path, []byte("store: ["), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	_, err := Load(path, dir)
	if err == nil || !strings.Contains(err.Error(), "parse config file") {
		t.Errorf("Load() error = %v, want parse failure", err)
	}
}

func TestLoadInvalidValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "keyscope.yml")
	content := "store:\n  sweep_interval: whenever\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	_, err := Load(path, dir)
	if err == nil || !strings.Contains(err.Error(), "invalid config") {
		t.Errorf("Load() error = %v, want invalid config failure", err)
	}
}

func TestStoreDir(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DataDir = "/data/keyscope"

	if got, want := cfg.StoreDir(), filepath.Join("/data/keyscope", "store"); got != want {
		t.Errorf("StoreDir() = %q, want %q", got, want)
	}

	cfg.Store.Path = "/var/lib/keyscope"
	if got := cfg.StoreDir(); got != "/var/lib/keyscope" {
		t.Errorf("StoreDir() = %q, want override /var/lib/keyscope", got)
	}
}
