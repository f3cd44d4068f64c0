// Package crawler walks a hyperlinked site depth-first, bounded in depth and
// width, and collects the title and paragraphs of every page it visits.
package crawler

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/aluiziolira/go-scrape-listings/extractor"
	"github.com/aluiziolira/go-scrape-listings/fetcher"
	"github.com/aluiziolira/go-scrape-listings/metrics"
	"github.com/aluiziolira/go-scrape-listings/models"
)

// Options bound a traversal.
type Options struct {
	// MaxDepth is the depth at which pages are fetched but not expanded. The
	// start page has depth 0.
	MaxDepth int
	// MaxWidth caps the links followed from a single page.
	MaxWidth int
	// Origin resolves relative links. Empty means the start URL's scheme and
	// host.
	Origin string
	// LinkPrefix selects which hrefs are followed, e.g. "/wiki/".
	LinkPrefix string
	// SkipExpanded stops a URL from being fetched again once it has been
	// expanded or recorded. By default a URL reached on several paths is
	// fetched and expanded on each of them and recorded only once.
	SkipExpanded bool

	Metrics *metrics.Metrics
	Logger  *slog.Logger
}

// Crawler performs bounded traversals. A Crawler holds no per-traversal state
// and may run several Crawl calls concurrently.
type Crawler struct {
	fetcher fetcher.PageFetcher
	opts    Options
}

// New returns a crawler that fetches pages with f.
func New(f fetcher.PageFetcher, opts Options) *Crawler {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Crawler{fetcher: f, opts: opts}
}

type frame struct {
	node     models.CrawlNode
	html     string
	children []string
	next     int
	started  bool
}

// Crawl traverses from startURL. Pages are recorded after all of their
// children, so a child always precedes its parent in the result.
//
// A failed fetch below the start page is logged and treated as a page without
// links. Failure to fetch the start page is returned as an error along with
// the empty result. When ctx is cancelled the partial result is returned with
// ctx.Err().
func (c *Crawler) Crawl(ctx context.Context, startURL string) (*models.CrawlResult, error) {
	origin := c.opts.Origin
	if origin == "" {
		parsed, err := url.Parse(startURL)
		if err != nil || parsed.Host == "" {
			return nil, fmt.Errorf("crawl start url %q must be absolute", startURL)
		}
		origin = parsed.Scheme + "://" + parsed.Host
	}

	result := &models.CrawlResult{
		StartURL:  startURL,
		Pages:     []models.PageContent{},
		StartTime: time.Now(),
	}
	defer func() { result.EndTime = time.Now() }()

	expanded := make(map[string]bool)
	recorded := make(map[string]bool)
	log := c.opts.Logger

	stack := []*frame{{node: models.CrawlNode{URL: startURL, Depth: 0}}}
	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			log.Info("crawl cancelled",
				slog.String("start_url", startURL),
				slog.Int("pages", len(result.Pages)),
			)
			return result, err
		}

		top := stack[len(stack)-1]
		current := top.node

		if !top.started {
			top.started = true

			if c.opts.SkipExpanded && (expanded[current.URL] || recorded[current.URL]) {
				stack = stack[:len(stack)-1]
				continue
			}

			html, err := c.fetcher.Fetch(ctx, current.URL)
			result.Fetches++
			if err != nil {
				result.FetchErrors++
				if current.Depth == 0 {
					return result, fmt.Errorf("crawl %s: %w", current.URL, err)
				}
				log.Warn("crawl fetch failed",
					slog.String("url", current.URL),
					slog.Int("depth", current.Depth),
					slog.String("category", fetcher.Classify(err)),
					slog.Any("error", err),
				)
				stack = stack[:len(stack)-1]
				continue
			}
			top.html = html

			if current.Depth < c.opts.MaxDepth {
				top.children = extractor.DiscoverLinks(html, origin, c.opts.LinkPrefix, c.opts.MaxWidth)
				if !expanded[current.URL] {
					expanded[current.URL] = true
					result.Expanded = append(result.Expanded, current.URL)
				}
			}
			log.Debug("crawl page fetched",
				slog.String("url", current.URL),
				slog.Int("depth", current.Depth),
				slog.Int("links", len(top.children)),
			)
		}

		if top.next < len(top.children) {
			child := top.children[top.next]
			top.next++
			stack = append(stack, &frame{node: models.CrawlNode{URL: child, Depth: current.Depth + 1}})
			continue
		}

		stack = stack[:len(stack)-1]
		if recorded[current.URL] {
			continue
		}
		recorded[current.URL] = true
		result.Recorded = append(result.Recorded, current.URL)

		content, err := extractor.ExtractPage(top.html)
		if err != nil {
			log.Debug("crawl page not recorded",
				slog.String("url", current.URL),
				slog.Any("error", err),
			)
			continue
		}
		result.Pages = append(result.Pages, content)
		c.opts.Metrics.IncPages()
	}

	log.Info("crawl completed",
		slog.String("start_url", startURL),
		slog.Int("pages", len(result.Pages)),
		slog.Int("fetches", result.Fetches),
		slog.Int("fetch_errors", result.FetchErrors),
	)
	return result, nil
}

// TopicURL returns the page for a free-text topic, e.g. "ice cream" on
// https://en.wikipedia.org with prefix /wiki/ becomes
// https://en.wikipedia.org/wiki/ice_cream.
func TopicURL(origin, prefix, topic string) string {
	name := strings.Join(strings.Fields(topic), "_")
	return strings.TrimSuffix(origin, "/") + prefix + url.PathEscape(name)
}
