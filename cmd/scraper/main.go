package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/aluiziolira/go-scrape-listings/config"
	"github.com/aluiziolira/go-scrape-listings/fetcher"
	"github.com/aluiziolira/go-scrape-listings/metrics"
)

// app is populated by the root command before any subcommand runs.
var app struct {
	cfg      *config.Config
	metrics  *metrics.Metrics
	closeLog func() error
}

var configFile string

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received, waiting for in-flight work to finish")
	}()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		slog.Error("command failed", slog.Any("error", err))
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	d := config.DefaultConfig()

	root := &cobra.Command{
		Use:           "scraper",
		Short:         "Scrape product listings and crawl linked pages",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configFile, cmd.Flags())
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			logger, closeLog, err := newLogger(cfg)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			slog.SetDefault(logger)

			app.cfg = cfg
			app.metrics = metrics.New()
			app.closeLog = closeLog
			return nil
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			if app.closeLog != nil {
				return app.closeLog()
			}
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&configFile, "config", "c", "", "Config file (default ./scraper.yaml or ./configs/scraper.yaml)")
	pf.BoolP("verbose", "v", d.Verbose, "Enable verbose logging")
	pf.String("log-file", d.LogFile, "Also write JSON logs to this rotating file")
	pf.String("base-url", d.BaseURL, "Catalog origin for search and scrape")
	pf.String("crawl-origin", d.CrawlOrigin, "Origin for crawl topics and relative links")
	pf.String("link-prefix", d.LinkPrefix, "Only follow hrefs with this prefix while crawling")
	pf.Int("max-depth", d.MaxDepth, "Depth at which crawled pages stop being expanded")
	pf.Int("max-width", d.MaxWidth, "Maximum links followed per crawled page")
	pf.Bool("skip-expanded", d.SkipExpanded, "Fetch each crawled URL at most once")
	pf.String("engine", d.Engine, "Fetch engine: http, chromedp, or rod")
	pf.Bool("headless", d.Headless, "Run browser engines headless")
	pf.String("browser-bin", d.BrowserBin, "Browser executable for chromedp and rod")
	pf.Int("browser-tabs", d.BrowserTabs, "Page pool size for the rod engine")
	pf.Duration("wait-time", d.WaitTime, "Extra settle time after the page body is ready")
	pf.Int("cache-size", d.CacheSize, "Cache this many fetched pages in memory (0 disables)")
	pf.Duration("timeout", d.Timeout, "Per-fetch timeout")
	pf.Int("max-retries", d.MaxRetries, "Maximum retry attempts per URL")
	pf.Duration("retry-backoff", d.RetryBackoff, "Initial retry backoff")
	pf.Duration("retry-backoff-max", d.RetryBackoffMax, "Maximum retry backoff")
	pf.String("user-agent", d.UserAgent, "User-Agent header sent with every fetch")
	pf.Bool("respect-robots-txt", d.RespectRobotsTxt, "Respect robots.txt directives")
	pf.String("output-dir", d.OutputDir, "Directory for output files")
	pf.String("output-format", d.OutputFormat, "Output format: csv, json, or dual")
	pf.Int("parallelism", d.Parallelism, "Number of concurrent requests in bulk scrapes")
	pf.String("metrics-addr", d.MetricsAddr, "Prometheus metrics listen address (e.g. :9090)")

	root.AddCommand(newSearchCmd(), newScrapeCmd(), newCrawlCmd(), newServeCmd())
	return root
}

func newFetcher() (fetcher.PageFetcher, func(), error) {
	f, err := fetcher.New(app.cfg, app.metrics)
	if err != nil {
		return nil, nil, fmt.Errorf("initialising fetcher: %w", err)
	}
	return f, func() {
		if err := fetcher.Close(f); err != nil {
			slog.Error("close fetcher", slog.Any("error", err))
		}
	}, nil
}

// startMetricsServer serves the registry on cfg.MetricsAddr when set. The
// returned func shuts it down.
func startMetricsServer(cfg *config.Config, m *metrics.Metrics) func() {
	if cfg.MetricsAddr == "" || m == nil {
		return func() {}
	}

	srv := &http.Server{
		Addr:              cfg.MetricsAddr,
		Handler:           promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{}),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("metrics server failed", slog.Any("error", err))
		}
	}()
	slog.Info("metrics server enabled", slog.String("addr", cfg.MetricsAddr))

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("metrics server shutdown failed", slog.Any("error", err))
		}
	}
}
