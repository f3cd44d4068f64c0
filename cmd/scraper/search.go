package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aluiziolira/go-scrape-listings/models"
	"github.com/aluiziolira/go-scrape-listings/pipeline"
	"github.com/aluiziolira/go-scrape-listings/scraper"
	"github.com/aluiziolira/go-scrape-listings/search"
)

func newSearchCmd() *cobra.Command {
	var sortFlag string
	var top int

	cmd := &cobra.Command{
		Use:   "search [query...]",
		Short: "Search the catalog and save the scored results",
		Example: `  scraper search gaming laptop
  scraper search --sort lowest-price --output-format json phone`,
		RunE: func(cmd *cobra.Command, args []string) error {
			sort, err := search.ParseSortKey(sortFlag)
			if err != nil {
				return err
			}
			query := strings.Join(args, " ")
			if strings.TrimSpace(query) == "" {
				query = app.cfg.DefaultQuery
			}

			f, closeFetcher, err := newFetcher()
			if err != nil {
				return err
			}
			defer closeFetcher()
			defer startMetricsServer(app.cfg, app.metrics)()

			s := scraper.NewListingScraper(app.cfg, f, app.metrics)
			records, err := s.Search(cmd.Context(), query, sort)
			if err != nil {
				return err
			}

			jsonPath, csvPath := searchOutputPaths(app.cfg, query)
			if err := pipeline.SaveRecords(records, jsonPath, csvPath); err != nil {
				return fmt.Errorf("save results: %w", err)
			}

			printRecords(records, top)
			for _, p := range []string{jsonPath, csvPath} {
				if p != "" {
					fmt.Printf("  Output file:   %s\n", p)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&sortFlag, "sort", string(search.SortRelevance),
		"Sort order: relevance, popularity, newest, lowest-price, highest-price, rating")
	cmd.Flags().IntVar(&top, "top", 10, "Number of results to print")
	return cmd
}

func printRecords(records []models.Record, top int) {
	separator := "--------------------------------------------------"
	fmt.Println("\n" + separator)
	fmt.Printf("Search complete: %d results\n", len(records))
	for i, r := range records {
		if i >= top {
			break
		}
		fmt.Printf("  %2d. %-40.40s %6.2f  %s\n", i+1, r.Name, r.Score, r.PriceText)
	}
	fmt.Println(separator)
}
