package main

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/aluiziolira/go-scrape-listings/crawler"
	"github.com/aluiziolira/go-scrape-listings/pipeline"
)

func newCrawlCmd() *cobra.Command {
	var startURL string

	cmd := &cobra.Command{
		Use:   "crawl [topic...]",
		Short: "Crawl linked pages from a topic or URL and save their text",
		Example: `  scraper crawl Food --max-depth 2 --max-width 5
  scraper crawl --url https://en.wikipedia.org/wiki/Go_(programming_language)`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := app.cfg
			start := startURL
			if start == "" {
				topic := strings.Join(args, " ")
				if strings.TrimSpace(topic) == "" {
					return errors.New("a topic or --url is required")
				}
				start = crawler.TopicURL(cfg.CrawlOrigin, cfg.LinkPrefix, topic)
			}

			f, closeFetcher, err := newFetcher()
			if err != nil {
				return err
			}
			defer closeFetcher()
			defer startMetricsServer(cfg, app.metrics)()

			slog.Info("starting crawl",
				slog.String("url", start),
				slog.Int("max_depth", cfg.MaxDepth),
				slog.Int("max_width", cfg.MaxWidth),
				slog.String("engine", cfg.Engine),
			)

			cr := crawler.New(f, crawler.Options{
				MaxDepth:     cfg.MaxDepth,
				MaxWidth:     cfg.MaxWidth,
				LinkPrefix:   cfg.LinkPrefix,
				SkipExpanded: cfg.SkipExpanded,
				Metrics:      app.metrics,
			})
			result, err := cr.Crawl(cmd.Context(), start)
			if result == nil {
				return err
			}
			if err != nil && len(result.Pages) == 0 {
				return err
			}
			if err != nil {
				slog.Warn("crawl interrupted, saving partial result", slog.Any("error", err))
			}

			out := crawlOutputPath(cfg, start)
			if err := pipeline.SavePages(result.Pages, out); err != nil {
				return fmt.Errorf("save pages: %w", err)
			}

			separator := "--------------------------------------------------"
			fmt.Println("\n" + separator)
			fmt.Println("Crawl complete")
			fmt.Printf("  Pages:         %d\n", len(result.Pages))
			fmt.Printf("  Fetches:       %d\n", result.Fetches)
			fmt.Printf("  Fetch errors:  %d\n", result.FetchErrors)
			fmt.Printf("  Duration:      %v\n", result.EndTime.Sub(result.StartTime).Round(time.Millisecond))
			fmt.Printf("  Output file:   %s\n", out)
			fmt.Println(separator)
			return nil
		},
	}

	cmd.Flags().StringVar(&startURL, "url", "", "Start URL (overrides the topic)")
	return cmd
}
