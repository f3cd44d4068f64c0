// Package models defines data structures for the scraper and crawler.
package models

import "time"

// RatingScale is the fixed denominator of every listing rating.
const RatingScale = 5

// PriceRange is a possibly open numeric interval parsed from pricing text.
// A nil bound means the value could not be parsed, which is distinct from zero.
type PriceRange struct {
	Min *int `json:"min"`
	Max *int `json:"max"`
}

// HasMin reports whether the lower bound was parsed.
func (p PriceRange) HasMin() bool {
	return p.Min != nil
}

// Valid reports whether the range satisfies its invariant: a present max
// requires a present min no greater than it.
func (p PriceRange) Valid() bool {
	if p.Max == nil {
		return true
	}
	return p.Min != nil && *p.Min <= *p.Max
}

// Rating is a numeric rating out of Scale.
type Rating struct {
	Count *int `json:"count"`
	Scale int  `json:"scale"`
}

// Record represents a single listing entry from a search page.
type Record struct {
	Name              string     `json:"name"`
	Price             PriceRange `json:"price"`
	PriceText         string     `json:"priceText"`
	PreviousPrice     PriceRange `json:"previousPrice"`
	PreviousPriceText string     `json:"previousPriceText"`
	DiscountPercent   int        `json:"discountPercent"`
	ShippingLabel     string     `json:"shippingLabel"`
	Rating            Rating     `json:"rating"`
	RatingText        string     `json:"ratingText"`
	Score             float64    `json:"score"`
	ImageURL          string     `json:"imageUrl"`
	PageURL           string     `json:"pageUrl"`
}

// ScrapeResult holds the overall result of a bulk scraping operation.
type ScrapeResult struct {
	StartTime    time.Time
	EndTime      time.Time
	TotalCount   int
	SkippedItems int
	ErrorCount   int
	FailedURLs   []string
	ErrorsByType map[string]int
	RetryCount   int
	RequestCount int
	PageCount    int
}

// IntPtr returns a pointer to v.
func IntPtr(v int) *int {
	return &v
}
