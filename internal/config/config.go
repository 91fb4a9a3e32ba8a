// Package config loads the optional YAML configuration file.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// SourceEBPF polls the kernel probe's counter map.
	SourceEBPF = "ebpf"
	// SourceProc polls /proc/net/dev instead; no privileges needed.
	SourceProc = "proc"

	DefaultTickIntervalMS    = 1000
	DefaultRefreshIntervalMS = 5000
	DefaultWindowSamples     = 60
	DefaultLogFile           = "ifplot.log"
	DefaultListWidthPct      = 20
	DefaultBytesRowPct       = 50
	DefaultHistWidthPct      = 25
)

// Config holds all tunables. Zero values mean "use the default".
type Config struct {
	TickIntervalMS    int    `yaml:"tick_interval_ms"`
	RefreshIntervalMS int    `yaml:"refresh_interval_ms"`
	WindowSamples     int    `yaml:"window_samples"`
	Source            string `yaml:"source"`
	LogFile           string `yaml:"log_file"`
	ListWidthPct      int    `yaml:"list_width_pct"`
	BytesRowPct       int    `yaml:"bytes_row_pct"`
	HistWidthPct      int    `yaml:"hist_width_pct"`
}

// Default returns a config with every field at its default.
func Default() Config {
	var cfg Config
	applyDefaults(&cfg)
	return cfg
}

// Load reads and parses a YAML config file and fills in defaults.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", path, err)
	}

	applyDefaults(&cfg)
	return cfg, nil
}

// Validate rejects values the rest of the program cannot work with.
func Validate(cfg Config) error {
	if cfg.TickIntervalMS <= 0 {
		return fmt.Errorf("tick_interval_ms must be positive, got %d", cfg.TickIntervalMS)
	}
	if cfg.RefreshIntervalMS <= 0 {
		return fmt.Errorf("refresh_interval_ms must be positive, got %d", cfg.RefreshIntervalMS)
	}
	if cfg.WindowSamples <= 0 {
		return fmt.Errorf("window_samples must be positive, got %d", cfg.WindowSamples)
	}
	if cfg.Source != SourceEBPF && cfg.Source != SourceProc {
		return fmt.Errorf("source must be %q or %q, got %q", SourceEBPF, SourceProc, cfg.Source)
	}
	if cfg.ListWidthPct < 0 || cfg.ListWidthPct > 100 {
		return fmt.Errorf("list_width_pct must be within 0..100, got %d", cfg.ListWidthPct)
	}
	if cfg.BytesRowPct < 0 || cfg.BytesRowPct > 100 {
		return fmt.Errorf("bytes_row_pct must be within 0..100, got %d", cfg.BytesRowPct)
	}
	if cfg.HistWidthPct < 0 || cfg.HistWidthPct > 100 {
		return fmt.Errorf("hist_width_pct must be within 0..100, got %d", cfg.HistWidthPct)
	}
	return nil
}

// TickInterval returns the collection cadence as a duration.
func (c Config) TickInterval() time.Duration {
	return time.Duration(c.TickIntervalMS) * time.Millisecond
}

// RefreshInterval returns the interface re-enumeration cadence.
func (c Config) RefreshInterval() time.Duration {
	return time.Duration(c.RefreshIntervalMS) * time.Millisecond
}

func applyDefaults(cfg *Config) {
	if cfg.TickIntervalMS == 0 {
		cfg.TickIntervalMS = DefaultTickIntervalMS
	}
	if cfg.RefreshIntervalMS == 0 {
		cfg.RefreshIntervalMS = DefaultRefreshIntervalMS
	}
	if cfg.WindowSamples == 0 {
		cfg.WindowSamples = DefaultWindowSamples
	}
	if cfg.Source == "" {
		cfg.Source = SourceEBPF
	}
	if cfg.LogFile == "" {
		cfg.LogFile = DefaultLogFile
	}
	if cfg.ListWidthPct == 0 {
		cfg.ListWidthPct = DefaultListWidthPct
	}
	if cfg.BytesRowPct == 0 {
		cfg.BytesRowPct = DefaultBytesRowPct
	}
	if cfg.HistWidthPct == 0 {
		cfg.HistWidthPct = DefaultHistWidthPct
	}
}
