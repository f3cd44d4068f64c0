// Package api exposes searches and crawls over HTTP.
package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aluiziolira/go-scrape-listings/api/handler"
	"github.com/aluiziolira/go-scrape-listings/config"
	"github.com/aluiziolira/go-scrape-listings/fetcher"
	"github.com/aluiziolira/go-scrape-listings/metrics"
)

// NewRouter creates a configured Gin engine with all routes and middleware.
//
// Routes:
//
//	GET /api/v1/health
//	GET /api/v1/products?query=&sort=
//	GET /api/v1/crawl?url=|topic=&depth=&width=
//	GET /metrics (when m is non-nil)
func NewRouter(s handler.Searcher, f fetcher.PageFetcher, cfg *config.Config, m *metrics.Metrics, startTime time.Time) *gin.Engine {
	if cfg.Verbose {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())

	v1 := r.Group("/api/v1")
	v1.GET("/health", handler.Health(cfg.Engine, startTime))
	v1.GET("/products", handler.Products(s))
	v1.GET("/crawl", handler.Crawl(f, cfg, m))

	if m != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})))
	}

	return r
}
