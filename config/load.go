package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. SCRAPER_MAX_DEPTH.
const EnvPrefix = "SCRAPER"

// Load builds a Config from defaults, an optional YAML file, SCRAPER_*
// environment variables and any changed flags in flags, in increasing order of
// precedence. Flag names map onto keys by replacing "-" with "_".
//
// An empty path searches ./scraper.yaml and ./configs/scraper.yaml; a missing
// file is not an error unless path was given explicitly.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v, DefaultConfig())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if flags != nil {
		var bindErr error
		flags.VisitAll(func(f *pflag.Flag) {
			key := strings.ReplaceAll(f.Name, "-", "_")
			if !v.IsSet(key) || bindErr != nil {
				return
			}
			bindErr = v.BindPFlag(key, f)
		})
		if bindErr != nil {
			return nil, fmt.Errorf("bind flags: %w", bindErr)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("scraper")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.OutputFormat = strings.ToLower(cfg.OutputFormat)
	cfg.Engine = strings.ToLower(cfg.Engine)
	return cfg, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("base_url", d.BaseURL)
	v.SetDefault("default_query", d.DefaultQuery)
	v.SetDefault("crawl_origin", d.CrawlOrigin)
	v.SetDefault("link_prefix", d.LinkPrefix)
	v.SetDefault("max_depth", d.MaxDepth)
	v.SetDefault("max_width", d.MaxWidth)
	v.SetDefault("skip_expanded", d.SkipExpanded)
	v.SetDefault("engine", d.Engine)
	v.SetDefault("headless", d.Headless)
	v.SetDefault("browser_bin", d.BrowserBin)
	v.SetDefault("browser_tabs", d.BrowserTabs)
	v.SetDefault("wait_time", d.WaitTime)
	v.SetDefault("cache_size", d.CacheSize)
	v.SetDefault("timeout", d.Timeout)
	v.SetDefault("max_retries", d.MaxRetries)
	v.SetDefault("retry_backoff", d.RetryBackoff)
	v.SetDefault("retry_backoff_max", d.RetryBackoffMax)
	v.SetDefault("user_agent", d.UserAgent)
	v.SetDefault("respect_robots_txt", d.RespectRobotsTxt)
	v.SetDefault("output_dir", d.OutputDir)
	v.SetDefault("output_format", d.OutputFormat)
	v.SetDefault("parallelism", d.Parallelism)
	v.SetDefault("pipeline_buffer_size", d.PipelineBufferSize)
	v.SetDefault("batch_size", d.BatchSize)
	v.SetDefault("dedupe_max_size", d.DedupeMaxSize)
	v.SetDefault("listen_addr", d.ListenAddr)
	v.SetDefault("metrics_addr", d.MetricsAddr)
	v.SetDefault("log_file", d.LogFile)
	v.SetDefault("verbose", d.Verbose)
}
