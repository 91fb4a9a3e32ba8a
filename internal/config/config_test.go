package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	t.Parallel()

	cfg := Default()
	if err := Validate(cfg); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.TickInterval() != time.Second {
		t.Fatalf("tick=%v, want 1s", cfg.TickInterval())
	}
	if cfg.Source != SourceEBPF {
		t.Fatalf("source=%q, want %q", cfg.Source, SourceEBPF)
	}
}

func TestLoad_PartialFileGetsDefaults(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "ifplot.yaml")
	data := []byte("tick_interval_ms: 250\nsource: proc\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.TickIntervalMS != 250 {
		t.Fatalf("tick=%d, want 250", cfg.TickIntervalMS)
	}
	if cfg.Source != SourceProc {
		t.Fatalf("source=%q, want proc", cfg.Source)
	}
	if cfg.WindowSamples != DefaultWindowSamples {
		t.Fatalf("window=%d, want default %d", cfg.WindowSamples, DefaultWindowSamples)
	}
	if cfg.LogFile != DefaultLogFile {
		t.Fatalf("log_file=%q, want default", cfg.LogFile)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()

	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("want error for missing file")
	}
}

func TestLoad_BadYAML(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("tick_interval_ms: [nope"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("want parse error")
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative tick", func(c *Config) { c.TickIntervalMS = -1 }},
		{"negative refresh", func(c *Config) { c.RefreshIntervalMS = -1 }},
		{"negative window", func(c *Config) { c.WindowSamples = -5 }},
		{"unknown source", func(c *Config) { c.Source = "netlink" }},
		{"list width out of range", func(c *Config) { c.ListWidthPct = 120 }},
		{"bytes row out of range", func(c *Config) { c.BytesRowPct = -3 }},
		{"hist width out of range", func(c *Config) { c.HistWidthPct = 101 }},
	}
	for _, tc := range cases {
		cfg := Default()
		tc.mutate(&cfg)
		if err := Validate(cfg); err == nil {
			t.Fatalf("%s: want validation error", tc.name)
		}
	}
}
