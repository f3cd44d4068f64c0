package main

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/aluiziolira/go-scrape-listings/models"
	"github.com/aluiziolira/go-scrape-listings/pipeline"
	"github.com/aluiziolira/go-scrape-listings/scraper"
	"github.com/aluiziolira/go-scrape-listings/search"
)

func newScrapeCmd() *cobra.Command {
	var (
		queries  []string
		sortFlag string
		output   string
	)

	cmd := &cobra.Command{
		Use:   "scrape [listing-url...]",
		Short: "Scrape many listing pages into deduplicated CSV/JSON output",
		Example: `  scraper scrape --query laptop --query phone
  scraper scrape https://www.jumia.com.ng/catalog/?q=tv`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := app.cfg
			sort, err := search.ParseSortKey(sortFlag)
			if err != nil {
				return err
			}
			urls := append([]string{}, args...)
			for _, q := range queries {
				urls = append(urls, search.BuildURL(cfg.BaseURL, q, sort))
			}
			if len(urls) == 0 {
				urls = append(urls, search.BuildURL(cfg.BaseURL, cfg.DefaultQuery, sort))
			}

			slog.Info("starting scrape",
				slog.String("base_url", cfg.BaseURL),
				slog.Int("urls", len(urls)),
				slog.Int("workers", cfg.Parallelism),
				slog.String("engine", cfg.Engine),
			)

			f, closeFetcher, err := newFetcher()
			if err != nil {
				return err
			}
			defer closeFetcher()
			defer startMetricsServer(cfg, app.metrics)()

			writer, files, err := createWriter(cfg, output)
			if err != nil {
				return fmt.Errorf("creating writer: %w", err)
			}
			defer func() {
				if err := writer.Close(); err != nil {
					slog.Error("close writer", slog.Any("error", err))
				}
			}()

			ctx := cmd.Context()
			p := pipeline.NewPipeline(ctx, writer, cfg)
			p.Start(cfg.Parallelism)
			if cfg.Verbose {
				p.StartMetricsReporting(10 * time.Second)
			}

			startTime := time.Now()
			s := scraper.NewListingScraper(cfg, f, app.metrics)
			result, err := s.Scrape(ctx, urls, p)
			if err != nil {
				_ = p.Close()
				return fmt.Errorf("scraping failed: %w", err)
			}
			if err := p.Close(); err != nil {
				return fmt.Errorf("pipeline shutdown failed: %w", err)
			}

			if err := writer.Validate(); err != nil {
				if !errors.Is(err, pipeline.ErrNoRecords) {
					return fmt.Errorf("output validation failed: %w", err)
				}
				slog.Warn("no records written", slog.Any("files", files))
			}

			metrics := p.GetMetrics()
			duration := time.Since(startTime)
			if processed, ok := metrics["processed_records"].(int64); ok {
				result.TotalCount = int(processed)
			}
			itemsPerSec := 0.0
			if duration.Seconds() > 0 {
				itemsPerSec = float64(result.TotalCount) / duration.Seconds()
			}

			printSummary(result, duration, itemsPerSec, files, metrics)
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&queries, "query", "q", nil, "Search query to scrape (repeatable)")
	cmd.Flags().StringVar(&sortFlag, "sort", string(search.SortRelevance), "Sort order applied to --query URLs")
	cmd.Flags().StringVarP(&output, "output", "o", "listings", "Output file name without extension, inside output-dir")
	return cmd
}

func printSummary(result *models.ScrapeResult, duration time.Duration, itemsPerSec float64, files []string, metrics map[string]interface{}) {
	separator := "--------------------------------------------------"
	fmt.Println("\n" + separator)
	fmt.Println("Scrape complete")

	fmt.Printf("  Total items:   %d\n", result.TotalCount)
	successRate := 0.0
	if result.RequestCount > 0 {
		successRate = float64(result.RequestCount-result.ErrorCount) / float64(result.RequestCount) * 100
	}
	fmt.Printf("  Pages:         %d/%d\n", result.PageCount, result.RequestCount)
	fmt.Printf("  Success rate:  %.2f%%\n", successRate)
	fmt.Printf("  Skipped items: %d\n", result.SkippedItems)
	fmt.Printf("  Errors:        %d\n", result.ErrorCount)
	fmt.Printf("  Retries:       %d\n", result.RetryCount)
	fmt.Printf("  Failed URLs:   %d\n", len(result.FailedURLs))
	if len(result.ErrorsByType) > 0 {
		fmt.Printf("  Error types:   %v\n", result.ErrorsByType)
	}
	if valErrors, ok := metrics["validation_errors"].(map[string]int); ok && len(valErrors) > 0 {
		fmt.Printf("  Validation:    %v\n", valErrors)
	}
	fmt.Printf("  Duration:      %v\n", duration)
	fmt.Printf("  Items/sec:     %.2f\n", itemsPerSec)
	for _, f := range files {
		fmt.Printf("  Output file:   %s\n", f)
	}
	fmt.Println(separator)
}
