package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Supported values for Config.Engine.
const (
	EngineHTTP     = "http"
	EngineChromedp = "chromedp"
	EngineRod      = "rod"
)

// Config holds scraper and crawler configuration.
type Config struct {
	BaseURL      string `mapstructure:"base_url"`
	DefaultQuery string `mapstructure:"default_query"`

	CrawlOrigin  string `mapstructure:"crawl_origin"`
	LinkPrefix   string `mapstructure:"link_prefix"`
	MaxDepth     int    `mapstructure:"max_depth"`
	MaxWidth     int    `mapstructure:"max_width"`
	SkipExpanded bool   `mapstructure:"skip_expanded"`

	Engine      string        `mapstructure:"engine"` // http, chromedp, or rod
	Headless    bool          `mapstructure:"headless"`
	BrowserBin  string        `mapstructure:"browser_bin"`
	BrowserTabs int           `mapstructure:"browser_tabs"`
	WaitTime    time.Duration `mapstructure:"wait_time"`
	CacheSize   int           `mapstructure:"cache_size"`

	Timeout          time.Duration `mapstructure:"timeout"`
	MaxRetries       int           `mapstructure:"max_retries"`
	RetryBackoff     time.Duration `mapstructure:"retry_backoff"`
	RetryBackoffMax  time.Duration `mapstructure:"retry_backoff_max"`
	UserAgent        string        `mapstructure:"user_agent"`
	RespectRobotsTxt bool          `mapstructure:"respect_robots_txt"`

	OutputDir          string `mapstructure:"output_dir"`
	OutputFormat       string `mapstructure:"output_format"` // csv, json, or dual
	Parallelism        int    `mapstructure:"parallelism"`
	PipelineBufferSize int    `mapstructure:"pipeline_buffer_size"`
	BatchSize          int    `mapstructure:"batch_size"`
	DedupeMaxSize      int    `mapstructure:"dedupe_max_size"`

	ListenAddr  string `mapstructure:"listen_addr"`
	MetricsAddr string `mapstructure:"metrics_addr"`
	LogFile     string `mapstructure:"log_file"`
	Verbose     bool   `mapstructure:"verbose"`
}

// DefaultConfig returns conservative defaults for the demo targets.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:            "https://www.jumia.com.ng",
		DefaultQuery:       "laptop",
		CrawlOrigin:        "https://en.wikipedia.org",
		LinkPrefix:         "/wiki/",
		MaxDepth:           5,
		MaxWidth:           10,
		SkipExpanded:       false,
		Engine:             EngineHTTP,
		Headless:           true,
		BrowserTabs:        4,
		WaitTime:           0,
		CacheSize:          0,
		Timeout:            10 * time.Second,
		MaxRetries:         2,
		RetryBackoff:       200 * time.Millisecond,
		RetryBackoffMax:    2 * time.Second,
		UserAgent:          "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/117.0.0.0 Safari/537.36",
		RespectRobotsTxt:   false,
		OutputDir:          "data",
		OutputFormat:       "dual",
		Parallelism:        4,
		PipelineBufferSize: 512,
		BatchSize:          64,
		DedupeMaxSize:      100000,
		ListenAddr:         ":8080",
		MetricsAddr:        "",
		Verbose:            false,
	}
}

// Validate ensures all configuration values are coherent.
func (c *Config) Validate() error {
	if err := validateOrigin("base URL", c.BaseURL); err != nil {
		return err
	}
	if err := validateOrigin("crawl origin", c.CrawlOrigin); err != nil {
		return err
	}
	if strings.TrimSpace(c.DefaultQuery) == "" {
		return fmt.Errorf("default query cannot be empty")
	}
	if !strings.HasPrefix(c.LinkPrefix, "/") {
		return fmt.Errorf("link prefix must start with /")
	}
	if c.MaxDepth < 0 {
		return fmt.Errorf("max depth cannot be negative")
	}
	if c.MaxWidth <= 0 {
		return fmt.Errorf("max width must be positive")
	}
	switch c.Engine {
	case EngineHTTP, EngineChromedp, EngineRod:
	default:
		return fmt.Errorf("engine must be http, chromedp, or rod")
	}
	if c.BrowserTabs <= 0 {
		return fmt.Errorf("browser tabs must be positive")
	}
	if c.WaitTime < 0 {
		return fmt.Errorf("wait time cannot be negative")
	}
	if c.CacheSize < 0 {
		return fmt.Errorf("cache size cannot be negative")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("max retries cannot be negative")
	}
	if c.RetryBackoff < 0 {
		return fmt.Errorf("retry backoff cannot be negative")
	}
	if c.RetryBackoffMax < 0 {
		return fmt.Errorf("retry backoff max cannot be negative")
	}
	if c.RetryBackoffMax > 0 && c.RetryBackoff > c.RetryBackoffMax {
		return fmt.Errorf("retry backoff (%s) cannot exceed retry backoff max (%s)", c.RetryBackoff, c.RetryBackoffMax)
	}
	if c.UserAgent == "" {
		return fmt.Errorf("user agent cannot be empty")
	}
	if c.OutputDir == "" {
		return fmt.Errorf("output dir cannot be empty")
	}
	if c.OutputFormat != "csv" && c.OutputFormat != "json" && c.OutputFormat != "dual" {
		return fmt.Errorf("output format must be csv, json, or dual")
	}
	if c.Parallelism <= 0 {
		return fmt.Errorf("parallelism must be positive")
	}
	if c.PipelineBufferSize <= 0 {
		return fmt.Errorf("pipeline buffer size must be positive")
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("batch size must be positive")
	}
	if c.DedupeMaxSize <= 0 {
		return fmt.Errorf("dedupe max size must be positive")
	}
	return nil
}

func validateOrigin(label, raw string) error {
	if raw == "" {
		return fmt.Errorf("%s cannot be empty", label)
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", label, err)
	}
	if parsed.Host == "" {
		return fmt.Errorf("%s must include a host", label)
	}
	return nil
}
