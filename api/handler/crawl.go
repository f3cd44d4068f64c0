package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/aluiziolira/go-scrape-listings/config"
	"github.com/aluiziolira/go-scrape-listings/crawler"
	"github.com/aluiziolira/go-scrape-listings/fetcher"
	"github.com/aluiziolira/go-scrape-listings/metrics"
)

// Crawl returns a handler for GET /api/v1/crawl.
//
// The start page is given either as url or as topic, which resolves to
// crawl_origin + link_prefix + topic. depth and width default to the
// configured bounds and are clamped to them. Each request runs its own
// traversal.
func Crawl(f fetcher.PageFetcher, cfg *config.Config, m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := c.Query("url")
		if start == "" {
			topic := c.Query("topic")
			if topic == "" {
				c.JSON(http.StatusBadRequest, ErrorResponse{Error: "url or topic is required"})
				return
			}
			start = crawler.TopicURL(cfg.CrawlOrigin, cfg.LinkPrefix, topic)
		}

		depth, err := boundedInt(c.Query("depth"), cfg.MaxDepth, 0)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "depth: " + err.Error()})
			return
		}
		width, err := boundedInt(c.Query("width"), cfg.MaxWidth, 1)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "width: " + err.Error()})
			return
		}

		cr := crawler.New(f, crawler.Options{
			MaxDepth:     depth,
			MaxWidth:     width,
			LinkPrefix:   cfg.LinkPrefix,
			SkipExpanded: cfg.SkipExpanded,
			Metrics:      m,
		})
		result, err := cr.Crawl(c.Request.Context(), start)
		if err != nil {
			var fe *fetcher.FetchError
			if result == nil && !errors.As(err, &fe) {
				c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
				return
			}
			respondFetchError(c, err)
			return
		}
		c.JSON(http.StatusOK, result.Pages)
	}
}

// boundedInt parses raw, defaulting to max when empty and clamping to
// [min, max].
func boundedInt(raw string, max, min int) (int, error) {
	if raw == "" {
		return max, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("must be an integer")
	}
	if v < min {
		return 0, fmt.Errorf("must be at least %d", min)
	}
	if v > max {
		v = max
	}
	return v, nil
}
