package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/pflag"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name: "negative parallelism",
			mutate: func(cfg *Config) {
				cfg.Parallelism = -1
			},
			wantErr: "parallelism",
		},
		{
			name: "zero max width",
			mutate: func(cfg *Config) {
				cfg.MaxWidth = 0
			},
			wantErr: "max width",
		},
		{
			name: "negative max depth",
			mutate: func(cfg *Config) {
				cfg.MaxDepth = -1
			},
			wantErr: "max depth",
		},
		{
			name: "empty base url",
			mutate: func(cfg *Config) {
				cfg.BaseURL = ""
			},
			wantErr: "base URL",
		},
		{
			name: "invalid url format",
			mutate: func(cfg *Config) {
				cfg.BaseURL = "http://"
			},
			wantErr: "base URL",
		},
		{
			name: "crawl origin without host",
			mutate: func(cfg *Config) {
				cfg.CrawlOrigin = "/wiki"
			},
			wantErr: "crawl origin",
		},
		{
			name: "relative link prefix",
			mutate: func(cfg *Config) {
				cfg.LinkPrefix = "wiki/"
			},
			wantErr: "link prefix",
		},
		{
			name: "unknown engine",
			mutate: func(cfg *Config) {
				cfg.Engine = "selenium"
			},
			wantErr: "engine",
		},
		{
			name: "negative timeout",
			mutate: func(cfg *Config) {
				cfg.Timeout = -1 * time.Second
			},
			wantErr: "timeout",
		},
		{
			name: "backoff above max",
			mutate: func(cfg *Config) {
				cfg.RetryBackoff = 5 * time.Second
				cfg.RetryBackoffMax = time.Second
			},
			wantErr: "retry backoff",
		},
		{
			name: "bad output format",
			mutate: func(cfg *Config) {
				cfg.OutputFormat = "xml"
			},
			wantErr: "output format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestDefaultConfigValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate, got %v", err)
	}
}

func TestLoadPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scraper.yaml")
	content := "max_depth: 3\nmax_width: 7\nwait_time: 2s\noutput_format: JSON\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("SCRAPER_MAX_WIDTH", "4")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Int("max-depth", 9, "")
	flags.String("engine", "http", "")
	if err := flags.Parse([]string{"--engine=rod"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	cfg, err := Load(path, flags)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.MaxDepth != 3 {
		t.Fatalf("max depth = %d, want 3 from file (flag unchanged)", cfg.MaxDepth)
	}
	if cfg.MaxWidth != 4 {
		t.Fatalf("max width = %d, want 4 from env", cfg.MaxWidth)
	}
	if cfg.Engine != EngineRod {
		t.Fatalf("engine = %q, want rod from flag", cfg.Engine)
	}
	if cfg.WaitTime != 2*time.Second {
		t.Fatalf("wait time = %v, want 2s", cfg.WaitTime)
	}
	if cfg.OutputFormat != "json" {
		t.Fatalf("output format = %q, want lowercased json", cfg.OutputFormat)
	}
	if cfg.BaseURL != DefaultConfig().BaseURL {
		t.Fatalf("base url should fall back to default, got %q", cfg.BaseURL)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("loaded config should validate: %v", err)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), nil); err == nil {
		t.Fatalf("expected error for missing explicit config file")
	}
}

func TestLoadWithoutFileUsesDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := Load("", nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.MaxDepth != 5 || cfg.MaxWidth != 10 {
		t.Fatalf("unexpected defaults: depth=%d width=%d", cfg.MaxDepth, cfg.MaxWidth)
	}
}
