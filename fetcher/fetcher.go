// Package fetcher retrieves raw page HTML, either over plain HTTP or through a
// headless browser, and classifies failures.
package fetcher

import (
	"context"
	"fmt"
	"io"

	"github.com/aluiziolira/go-scrape-listings/config"
	"github.com/aluiziolira/go-scrape-listings/metrics"
)

// PageFetcher returns the HTML of the page at url. Failures are reported as
// *FetchError.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// RetryCounter is implemented by fetchers that retry internally.
type RetryCounter interface {
	Retries() int64
}

// Func adapts a plain function to PageFetcher.
type Func func(ctx context.Context, url string) (string, error)

// Fetch calls f(ctx, url).
func (f Func) Fetch(ctx context.Context, url string) (string, error) {
	return f(ctx, url)
}

// New builds the fetcher selected by cfg.Engine. When cfg.CacheSize is
// positive the fetcher is wrapped in a CachingFetcher. Release it with Close.
func New(cfg *config.Config, m *metrics.Metrics) (PageFetcher, error) {
	var (
		f   PageFetcher
		err error
	)
	switch cfg.Engine {
	case config.EngineHTTP, "":
		f, err = NewCollyFetcher(cfg, m)
	case config.EngineChromedp:
		f, err = NewChromedpFetcher(cfg, m)
	case config.EngineRod:
		f, err = NewRodFetcher(cfg, m)
	default:
		return nil, fmt.Errorf("unknown engine %q", cfg.Engine)
	}
	if err != nil {
		return nil, err
	}
	if cfg.CacheSize > 0 {
		return NewCachingFetcher(f, cfg.CacheSize)
	}
	return f, nil
}

// Close releases resources held by f, such as a browser process. It is a
// no-op for fetchers that hold none.
func Close(f PageFetcher) error {
	if c, ok := f.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
