package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/aluiziolira/go-scrape-listings/api"
	"github.com/aluiziolira/go-scrape-listings/config"
	"github.com/aluiziolira/go-scrape-listings/scraper"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve searches and crawls over HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := app.cfg
			f, closeFetcher, err := newFetcher()
			if err != nil {
				return err
			}
			defer closeFetcher()

			s := scraper.NewListingScraper(cfg, f, app.metrics)
			srv := &http.Server{
				Addr:              cfg.ListenAddr,
				Handler:           api.NewRouter(s, f, cfg, app.metrics, time.Now()),
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				slog.Info("http server listening", slog.String("addr", cfg.ListenAddr), slog.String("engine", cfg.Engine))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				if err != nil {
					return fmt.Errorf("http server: %w", err)
				}
				return nil
			case <-cmd.Context().Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("http server shutdown: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().String("listen-addr", config.DefaultConfig().ListenAddr, "HTTP listen address")
	return cmd
}
