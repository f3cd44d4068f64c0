package models

import (
	"encoding/json"
	"time"
)

// CrawlNode is one unit of crawl work, keyed by URL.
type CrawlNode struct {
	URL   string
	Depth int
}

// PageContent is the free-text snapshot captured for a crawled page.
type PageContent struct {
	Title      string   `json:"title"`
	Paragraphs []string `json:"paragraphs"`
}

// MarshalJSON encodes a nil paragraph list as an empty array.
func (p PageContent) MarshalJSON() ([]byte, error) {
	type alias PageContent
	out := alias(p)
	if out.Paragraphs == nil {
		out.Paragraphs = []string{}
	}
	return json.Marshal(out)
}

// CrawlResult is the outcome of one bounded traversal.
type CrawlResult struct {
	StartURL    string
	Pages       []PageContent
	Fetches     int
	FetchErrors int
	Expanded    []string
	Recorded    []string
	StartTime   time.Time
	EndTime     time.Time
}
