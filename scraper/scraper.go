// Package scraper ties fetching, extraction and scoring together for catalog
// listing pages.
package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aluiziolira/go-scrape-listings/config"
	"github.com/aluiziolira/go-scrape-listings/extractor"
	"github.com/aluiziolira/go-scrape-listings/fetcher"
	"github.com/aluiziolira/go-scrape-listings/metrics"
	"github.com/aluiziolira/go-scrape-listings/models"
	"github.com/aluiziolira/go-scrape-listings/pipeline"
	"github.com/aluiziolira/go-scrape-listings/scorer"
	"github.com/aluiziolira/go-scrape-listings/search"
)

// ListingScraper fetches catalog pages and turns them into records. It is
// safe for concurrent use when its fetcher is.
type ListingScraper struct {
	cfg       *config.Config
	fetcher   fetcher.PageFetcher
	extractor *extractor.RecordExtractor
	Metrics   *metrics.Metrics
}

// NewListingScraper builds a scraper that fetches with f and extracts with
// extractor.DefaultSelectors.
func NewListingScraper(cfg *config.Config, f fetcher.PageFetcher, m *metrics.Metrics) *ListingScraper {
	return &ListingScraper{
		cfg:       cfg,
		fetcher:   f,
		extractor: extractor.MustNewRecordExtractor(extractor.DefaultSelectors),
		Metrics:   m,
	}
}

// WithExtractor replaces the selector set used for extraction.
func (s *ListingScraper) WithExtractor(re *extractor.RecordExtractor) *ListingScraper {
	s.extractor = re
	return s
}

// Search fetches the catalog listing for query sorted by sort and returns the
// scored records, best first. An empty query falls back to the configured
// default.
func (s *ListingScraper) Search(ctx context.Context, query string, sort search.SortKey) ([]models.Record, error) {
	if strings.TrimSpace(query) == "" {
		query = s.cfg.DefaultQuery
	}
	target := search.BuildURL(s.cfg.BaseURL, query, sort)

	slog.Info("searching catalog",
		slog.String("query", query),
		slog.String("sort", string(sort)),
		slog.String("url", target),
	)

	records, err := s.extract(ctx, target)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}
	return scorer.Score(records), nil
}

// Scrape fetches every listing URL with cfg.Parallelism workers and streams
// the extracted records into p. A URL that cannot be fetched is recorded in
// the result and does not stop the others. Scrape does not close p.
func (s *ListingScraper) Scrape(ctx context.Context, urls []string, p *pipeline.Pipeline) (*models.ScrapeResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	var (
		requestCount int64
		pageCount    int64
		errorCount   int64
		skipped      int64

		mu           sync.Mutex
		failedURLs   []string
		errorsByType = make(map[string]int)

		procErr  error
		procOnce sync.Once
	)

	retriesBefore := s.retries()
	start := time.Now()

	workers := s.cfg.Parallelism
	if workers <= 0 {
		workers = 1
	}
	jobs := make(chan string)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for target := range jobs {
				atomic.AddInt64(&requestCount, 1)
				html, err := s.fetcher.Fetch(ctx, target)
				if err != nil {
					atomic.AddInt64(&errorCount, 1)
					category := fetcher.Classify(err)
					mu.Lock()
					errorsByType[category]++
					failedURLs = append(failedURLs, target)
					mu.Unlock()
					slog.Error("request error",
						slog.String("url", target),
						slog.String("category", category),
						slog.Any("error", err),
					)
					continue
				}
				atomic.AddInt64(&pageCount, 1)

				records, errs := s.extractor.Extract(html, s.cfg.BaseURL)
				atomic.AddInt64(&skipped, int64(len(errs)))
				s.Metrics.AddExtracted(len(records))
				s.Metrics.AddSkipped(len(errs))

				batch := make([]*models.Record, len(records))
				for i := range records {
					batch[i] = &records[i]
				}
				if err := p.Process(batch...); err != nil && !errors.Is(err, pipeline.ErrPipelineClosed) {
					procOnce.Do(func() { procErr = err })
					slog.Error("pipeline process error", slog.Any("error", err))
				}
			}
		}()
	}

feed:
	for _, target := range urls {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- target:
		}
	}
	close(jobs)
	wg.Wait()

	result := &models.ScrapeResult{
		StartTime:    start,
		EndTime:      time.Now(),
		SkippedItems: int(skipped),
		ErrorCount:   int(errorCount),
		FailedURLs:   failedURLs,
		ErrorsByType: errorsByType,
		RetryCount:   int(s.retries() - retriesBefore),
		RequestCount: int(requestCount),
		PageCount:    int(pageCount),
	}
	if metrics := p.GetMetrics(); metrics != nil {
		if processed, ok := metrics["processed_records"].(int64); ok {
			result.TotalCount = int(processed)
		}
	}

	if err := ctx.Err(); err != nil {
		return result, err
	}
	if procErr != nil && !errors.Is(procErr, context.Canceled) {
		return result, fmt.Errorf("process records: %w", procErr)
	}
	return result, nil
}

func (s *ListingScraper) extract(ctx context.Context, target string) ([]models.Record, error) {
	html, err := s.fetcher.Fetch(ctx, target)
	if err != nil {
		return nil, err
	}

	records, errs := s.extractor.Extract(html, s.cfg.BaseURL)
	for _, err := range errs {
		slog.Debug("listing skipped", slog.String("url", target), slog.Any("error", err))
	}
	s.Metrics.AddExtracted(len(records))
	s.Metrics.AddSkipped(len(errs))

	slog.Info("listing page extracted",
		slog.String("url", target),
		slog.Int("records", len(records)),
		slog.Int("skipped", len(errs)),
	)
	return records, nil
}

func (s *ListingScraper) retries() int64 {
	if rc, ok := s.fetcher.(fetcher.RetryCounter); ok {
		return rc.Retries()
	}
	return 0
}
