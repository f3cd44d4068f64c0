package fetcher

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/aluiziolira/go-scrape-listings/config"
	"github.com/aluiziolira/go-scrape-listings/metrics"
)

// RodFetcher renders pages with go-rod, reusing tabs from a bounded pool.
type RodFetcher struct {
	browser   *rod.Browser
	pagePool  rod.Pool[rod.Page]
	userAgent string
	timeout   time.Duration
	wait      time.Duration
	metrics   *metrics.Metrics
}

// NewRodFetcher launches a browser configured from cfg with a pool of
// cfg.BrowserTabs pages.
func NewRodFetcher(cfg *config.Config, m *metrics.Metrics) (*RodFetcher, error) {
	l := launcher.New().
		Headless(cfg.Headless).
		NoSandbox(true)
	if cfg.BrowserBin != "" {
		l = l.Bin(cfg.BrowserBin)
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}
	slog.Debug("browser launched", slog.String("control_url", controlURL))

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("connect browser: %w", err)
	}

	return &RodFetcher{
		browser:   browser,
		pagePool:  rod.NewPagePool(cfg.BrowserTabs),
		userAgent: cfg.UserAgent,
		timeout:   cfg.Timeout,
		wait:      cfg.WaitTime,
		metrics:   m,
	}, nil
}

// Fetch navigates a pooled page to url and returns the rendered document once
// the DOM has settled.
func (f *RodFetcher) Fetch(ctx context.Context, url string) (string, error) {
	page, err := f.pagePool.Get(f.newPage)
	if err != nil {
		return "", &FetchError{URL: url, Kind: KindNavigation, Err: fmt.Errorf("acquire page: %w", err)}
	}
	defer func() {
		if navErr := page.Navigate("about:blank"); navErr != nil {
			slog.Debug("reset pooled page", slog.Any("error", navErr))
		}
		f.pagePool.Put(page)
	}()

	timeoutCtx, cancel := context.WithTimeout(ctx, f.timeout+f.wait)
	defer cancel()
	p := page.Context(timeoutCtx)

	start := time.Now()
	f.metrics.IncRequest("started")
	html, err := f.render(p, url)
	f.metrics.ObserveDuration(time.Since(start))
	if err != nil {
		fe := browserError(ctx, url, err)
		f.metrics.IncError(fe.Kind)
		return "", fe
	}
	f.metrics.IncRequest("completed")
	return html, nil
}

func (f *RodFetcher) render(p *rod.Page, url string) (string, error) {
	if err := p.Navigate(url); err != nil {
		return "", err
	}
	if err := p.WaitLoad(); err != nil {
		return "", err
	}
	if f.wait > 0 {
		if err := p.WaitDOMStable(f.wait, 0.1); err != nil {
			slog.Debug("DOM did not settle, using current document", slog.String("url", url), slog.Any("error", err))
		}
	}
	return p.HTML()
}

func (f *RodFetcher) newPage() (*rod.Page, error) {
	page, err := f.browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, err
	}
	if f.userAgent != "" {
		if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: f.userAgent}); err != nil {
			return nil, err
		}
	}
	return page, nil
}

// Close drains the page pool and kills the browser process.
func (f *RodFetcher) Close() error {
	f.pagePool.Cleanup(func(p *rod.Page) {
		_ = p.Close()
	})
	return f.browser.Close()
}
