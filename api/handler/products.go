// Package handler implements the gin handlers behind the HTTP surface.
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aluiziolira/go-scrape-listings/fetcher"
	"github.com/aluiziolira/go-scrape-listings/models"
	"github.com/aluiziolira/go-scrape-listings/search"
)

// Searcher runs a single catalog search.
type Searcher interface {
	Search(ctx context.Context, query string, sort search.SortKey) ([]models.Record, error)
}

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

// Products returns a handler for GET /api/v1/products.
//
// Query parameters: query (default "laptop") and sort (default relevance).
// The body is the scored record array, best first.
func Products(s Searcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		query := c.DefaultQuery("query", search.DefaultQuery)
		sort, err := search.ParseSortKey(c.Query("sort"))
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
			return
		}

		records, err := s.Search(c.Request.Context(), query, sort)
		if err != nil {
			respondFetchError(c, err)
			return
		}
		if records == nil {
			records = []models.Record{}
		}
		c.JSON(http.StatusOK, records)
	}
}

func respondFetchError(c *gin.Context, err error) {
	var fe *fetcher.FetchError
	if errors.As(err, &fe) {
		slog.Warn("upstream fetch failed",
			slog.String("url", fe.URL),
			slog.String("category", fe.Kind),
			slog.Any("error", err),
		)
		c.JSON(http.StatusBadGateway, ErrorResponse{Error: err.Error(), Kind: fe.Kind})
		return
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		c.JSON(http.StatusGatewayTimeout, ErrorResponse{Error: err.Error(), Kind: fetcher.KindTimeout})
		return
	}
	slog.Error("request failed", slog.Any("error", err))
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
}
