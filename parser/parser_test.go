package parser

import (
	"errors"
	"strconv"
	"testing"

	"github.com/aluiziolira/go-scrape-listings/models"
)

func TestValidateRecord(t *testing.T) {
	tests := []struct {
		name    string
		record  *models.Record
		wantErr bool
	}{
		{
			name: "valid record",
			record: &models.Record{
				Name:      "HP Laptop",
				PriceText: "₦250,000",
				PageURL:   "https://www.jumia.com.ng/hp-laptop.html",
			},
			wantErr: false,
		},
		{
			name:    "nil record",
			record:  nil,
			wantErr: true,
		},
		{
			name: "missing name",
			record: &models.Record{
				Name:      "  ",
				PriceText: "₦250,000",
				PageURL:   "https://www.jumia.com.ng/hp-laptop.html",
			},
			wantErr: true,
		},
		{
			name: "missing price",
			record: &models.Record{
				Name:    "HP Laptop",
				PageURL: "https://www.jumia.com.ng/hp-laptop.html",
			},
			wantErr: true,
		},
		{
			name: "missing url",
			record: &models.Record{
				Name:      "HP Laptop",
				PriceText: "₦250,000",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRecord(tt.record)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateRecord() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrExtractionFieldMissing) {
				t.Fatalf("error %v should wrap ErrExtractionFieldMissing", err)
			}
		})
	}
}

func TestParsePriceRange(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantMin *int
		wantMax *int
	}{
		{name: "range", input: "₦120,000 - ₦150,000", wantMin: models.IntPtr(120000), wantMax: models.IntPtr(150000)},
		{name: "single", input: "₦1,500", wantMin: models.IntPtr(1500)},
		{name: "empty", input: ""},
		{name: "not a number", input: "N/A"},
		{name: "only separators", input: " - , - "},
		{name: "surplus tokens", input: "1-2-3", wantMin: models.IntPtr(1), wantMax: models.IntPtr(2)},
		{name: "leading hyphen", input: "-15", wantMin: models.IntPtr(15)},
		{name: "inverted drops max", input: "500 - 100", wantMin: models.IntPtr(500)},
		{name: "overflow is absent", input: "99999999999999999999999"},
		{name: "overflow max is absent", input: "10 - 99999999999999999999999", wantMin: models.IntPtr(10)},
		{name: "decimal point removed", input: "£51.77", wantMin: models.IntPtr(5177)},
		{name: "zero", input: "₦0", wantMin: models.IntPtr(0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParsePriceRange(tt.input)
			if !intPtrEqual(got.Min, tt.wantMin) || !intPtrEqual(got.Max, tt.wantMax) {
				t.Fatalf("ParsePriceRange(%q) = {%s %s}, want {%s %s}",
					tt.input, fmtPtr(got.Min), fmtPtr(got.Max), fmtPtr(tt.wantMin), fmtPtr(tt.wantMax))
			}
			if !got.Valid() {
				t.Fatalf("ParsePriceRange(%q) produced an invalid range", tt.input)
			}
		})
	}
}

func TestParseRating(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantCount *int
	}{
		{name: "out of five", input: "4.0 out of 5 | 12 ratings", wantCount: models.IntPtr(4)},
		{name: "empty", input: ""},
		{name: "no digits", input: "no ratings yet"},
		{name: "trailing run", input: "rated 3", wantCount: models.IntPtr(3)},
		{name: "overflow", input: "99999999999999999999999 stars"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseRating(tt.input)
			if got.Scale != models.RatingScale {
				t.Fatalf("scale = %d, want %d", got.Scale, models.RatingScale)
			}
			if !intPtrEqual(got.Count, tt.wantCount) {
				t.Fatalf("ParseRating(%q) count = %s, want %s", tt.input, fmtPtr(got.Count), fmtPtr(tt.wantCount))
			}
		})
	}
}

func TestParseDiscount(t *testing.T) {
	tests := []struct {
		input    string
		expected int
	}{
		{input: "15%", expected: 15},
		{input: "-40%", expected: 40},
		{input: "", expected: 0},
		{input: "sale", expected: 0},
		{input: "99999999999999999999999%", expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseDiscount(tt.input); got != tt.expected {
				t.Errorf("ParseDiscount(%q) = %d, want %d", tt.input, got, tt.expected)
			}
		})
	}
}

func TestNormalizeText(t *testing.T) {
	if got := NormalizeText("  Free \n  shipping  "); got != "Free shipping" {
		t.Fatalf("NormalizeText() = %q", got)
	}
}

func intPtrEqual(a, b *int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func fmtPtr(v *int) string {
	if v == nil {
		return "absent"
	}
	return strconv.Itoa(*v)
}
