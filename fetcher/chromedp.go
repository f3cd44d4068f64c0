package fetcher

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/aluiziolira/go-scrape-listings/config"
	"github.com/aluiziolira/go-scrape-listings/metrics"
)

// ChromedpFetcher renders pages in a shared headless Chrome, one tab per
// fetch.
type ChromedpFetcher struct {
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc

	timeout time.Duration
	wait    time.Duration
	metrics *metrics.Metrics
}

// NewChromedpFetcher starts a browser configured from cfg.
func NewChromedpFetcher(cfg *config.Config, m *metrics.Metrics) (*ChromedpFetcher, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.DisableGPU,
		chromedp.NoSandbox,
		chromedp.Flag("headless", cfg.Headless),
		chromedp.UserAgent(cfg.UserAgent),
	)
	if cfg.BrowserBin != "" {
		opts = append(opts, chromedp.ExecPath(cfg.BrowserBin))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	// Run with no actions launches the browser.
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("start chrome: %w", err)
	}

	return &ChromedpFetcher{
		allocCancel:   allocCancel,
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
		timeout:       cfg.Timeout,
		wait:          cfg.WaitTime,
		metrics:       m,
	}, nil
}

// Fetch navigates a fresh tab to url, waits for the body and the configured
// settle time, and returns the rendered document.
func (f *ChromedpFetcher) Fetch(ctx context.Context, url string) (string, error) {
	tabCtx, cancel := chromedp.NewContext(f.browserCtx)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	timeoutCtx, timeoutCancel := context.WithTimeout(tabCtx, f.timeout+f.wait)
	defer timeoutCancel()

	tasks := []chromedp.Action{
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
	}
	if f.wait > 0 {
		tasks = append(tasks, chromedp.Sleep(f.wait))
	}

	var pageHTML string
	tasks = append(tasks, chromedp.OuterHTML("html", &pageHTML))

	start := time.Now()
	f.metrics.IncRequest("started")
	err := chromedp.Run(timeoutCtx, tasks...)
	f.metrics.ObserveDuration(time.Since(start))
	if err != nil {
		fe := browserError(ctx, url, err)
		f.metrics.IncError(fe.Kind)
		return "", fe
	}
	f.metrics.IncRequest("completed")
	return pageHTML, nil
}

// Close shuts the browser down.
func (f *ChromedpFetcher) Close() error {
	f.browserCancel()
	f.allocCancel()
	return nil
}

// browserError maps a browser automation failure onto a FetchError. Anything
// that is not a timeout or caller cancellation counts as a navigation error.
func browserError(ctx context.Context, url string, err error) *FetchError {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return newFetchError(url, ctxErr, 0)
	}
	if fe := newFetchError(url, err, 0); fe.Kind != KindOther {
		return fe
	}
	return &FetchError{URL: url, Kind: KindNavigation, Err: err}
}
