// Package parser normalizes raw listing text into typed values.
//
// Every function here is total: arbitrary input, including malformed or
// overflowing numbers, resolves to an absent value or zero instead of an error.
package parser

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/aluiziolira/go-scrape-listings/models"
)

// ErrExtractionFieldMissing marks a listing that lacks a required field.
var ErrExtractionFieldMissing = errors.New("required field missing")

// ValidateRecord ensures the extractor captured the required fields.
func ValidateRecord(r *models.Record) error {
	if r == nil {
		return fmt.Errorf("record is nil: %w", ErrExtractionFieldMissing)
	}
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("record missing name: %w", ErrExtractionFieldMissing)
	}
	if strings.TrimSpace(r.PriceText) == "" {
		return fmt.Errorf("record missing price for %s: %w", r.Name, ErrExtractionFieldMissing)
	}
	if strings.TrimSpace(r.PageURL) == "" {
		return fmt.Errorf("record missing url for %s: %w", r.Name, ErrExtractionFieldMissing)
	}
	return nil
}

// ParsePriceRange turns text such as "₦120,000 - ₦150,000" into a range.
// Commas are thousands separators and hyphens split the bounds.
func ParsePriceRange(text string) models.PriceRange {
	cleaned := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '-' {
			return r
		}
		return -1
	}, text)

	var tokens []string
	for _, part := range strings.Split(cleaned, "-") {
		if part != "" {
			tokens = append(tokens, part)
		}
	}

	var out models.PriceRange
	if len(tokens) == 0 {
		return out
	}
	out.Min = atoi(tokens[0])
	if out.Min == nil || len(tokens) < 2 {
		return out
	}
	if max := atoi(tokens[1]); max != nil && *max >= *out.Min {
		out.Max = max
	}
	return out
}

// ParseRating reads the first run of digits as the rating count.
func ParseRating(text string) models.Rating {
	rating := models.Rating{Scale: models.RatingScale}
	if run := firstDigitRun(text); run != "" {
		rating.Count = atoi(run)
	}
	return rating
}

// ParseDiscount strips everything but digits from a badge like "-15%".
func ParseDiscount(text string) int {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, text)
	if v := atoi(digits); v != nil {
		return *v
	}
	return 0
}

// NormalizeText trims and collapses internal whitespace.
func NormalizeText(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

func firstDigitRun(text string) string {
	start := -1
	for i := 0; i < len(text); i++ {
		isDigit := text[i] >= '0' && text[i] <= '9'
		switch {
		case isDigit && start < 0:
			start = i
		case !isDigit && start >= 0:
			return text[start:i]
		}
	}
	if start >= 0 {
		return text[start:]
	}
	return ""
}

func atoi(s string) *int {
	if s == "" {
		return nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &v
}
