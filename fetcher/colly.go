package fetcher

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gocolly/colly/v2"

	"github.com/aluiziolira/go-scrape-listings/config"
	"github.com/aluiziolira/go-scrape-listings/metrics"
)

// CollyFetcher fetches static HTML over HTTP with retries. It is safe for
// concurrent use: every Fetch runs on a clone of the base collector, sharing
// its HTTP client.
type CollyFetcher struct {
	collector *colly.Collector
	cfg       *config.Config
	metrics   *metrics.Metrics

	retries atomic.Int64
}

// NewCollyFetcher builds a fetcher configured from cfg.
func NewCollyFetcher(cfg *config.Config, m *metrics.Metrics) (*CollyFetcher, error) {
	collector := colly.NewCollector(
		colly.UserAgent(cfg.UserAgent),
		colly.AllowURLRevisit(),
	)

	collector.SetRequestTimeout(cfg.Timeout)
	collector.IgnoreRobotsTxt = !cfg.RespectRobotsTxt
	collector.WithTransport(&http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   cfg.Timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	})

	return &CollyFetcher{
		collector: collector,
		cfg:       cfg,
		metrics:   m,
	}, nil
}

// Fetch retrieves url, retrying transient failures with capped exponential
// backoff. Forbidden and not-found responses are not retried.
func (f *CollyFetcher) Fetch(ctx context.Context, url string) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	for attempt := 0; ; attempt++ {
		body, err := f.fetchOnce(ctx, url)
		if err == nil {
			return body, nil
		}

		f.metrics.IncError(err.Kind)
		slog.Debug("fetch failed",
			slog.String("url", url),
			slog.String("category", err.Kind),
			slog.Int("attempt", attempt+1),
			slog.Any("error", err.Err),
		)

		if attempt >= f.cfg.MaxRetries || !err.Retryable() || ctx.Err() != nil {
			return "", err
		}

		f.retries.Add(1)
		f.metrics.IncRetries()
		timer := time.NewTimer(f.backoff(attempt + 1))
		select {
		case <-ctx.Done():
			timer.Stop()
			return "", newFetchError(url, ctx.Err(), 0)
		case <-timer.C:
		}
	}
}

// WithTransport replaces the HTTP transport shared by every fetch.
func (f *CollyFetcher) WithTransport(rt http.RoundTripper) {
	f.collector.WithTransport(rt)
}

// Retries reports the retry attempts scheduled since construction.
func (f *CollyFetcher) Retries() int64 {
	return f.retries.Load()
}

func (f *CollyFetcher) fetchOnce(ctx context.Context, url string) (string, *FetchError) {
	c := f.collector.Clone()
	c.Context = ctx

	var (
		body       string
		statusCode int
	)
	c.OnResponse(func(r *colly.Response) {
		statusCode = r.StatusCode
		body = string(r.Body)
	})
	c.OnError(func(r *colly.Response, _ error) {
		if r != nil {
			statusCode = r.StatusCode
		}
	})

	start := time.Now()
	f.metrics.IncRequest("started")
	err := c.Visit(url)
	f.metrics.ObserveDuration(time.Since(start))
	if err != nil {
		return "", newFetchError(url, err, statusCode)
	}
	f.metrics.IncRequest("completed")
	return body, nil
}

func (f *CollyFetcher) backoff(attempt int) time.Duration {
	if attempt <= 0 {
		attempt = 1
	}

	base := f.cfg.RetryBackoff
	if base <= 0 {
		base = 100 * time.Millisecond
	}

	delay := base * time.Duration(1<<(attempt-1))
	if max := f.cfg.RetryBackoffMax; max > 0 && delay > max {
		delay = max
	}
	return delay
}
