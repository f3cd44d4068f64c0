package fetcher

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// CachingFetcher memoizes successful fetches in a bounded LRU keyed by URL.
// Failures are never cached.
type CachingFetcher struct {
	next  PageFetcher
	cache *lru.Cache[string, string]
}

// NewCachingFetcher wraps next with an LRU of size entries.
func NewCachingFetcher(next PageFetcher, size int) (*CachingFetcher, error) {
	cache, err := lru.New[string, string](size)
	if err != nil {
		return nil, fmt.Errorf("create page cache: %w", err)
	}
	return &CachingFetcher{next: next, cache: cache}, nil
}

// Fetch returns the cached body for url or delegates to the wrapped fetcher.
func (c *CachingFetcher) Fetch(ctx context.Context, url string) (string, error) {
	if body, ok := c.cache.Get(url); ok {
		return body, nil
	}
	body, err := c.next.Fetch(ctx, url)
	if err != nil {
		return "", err
	}
	c.cache.Add(url, body)
	return body, nil
}

// Len reports the number of cached pages.
func (c *CachingFetcher) Len() int {
	return c.cache.Len()
}

// Retries forwards the wrapped fetcher's retry count, if it keeps one.
func (c *CachingFetcher) Retries() int64 {
	if rc, ok := c.next.(RetryCounter); ok {
		return rc.Retries()
	}
	return 0
}

// Close closes the wrapped fetcher.
func (c *CachingFetcher) Close() error {
	return Close(c.next)
}
