package models

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"
)

func TestRecordJSONRoundTripKeepsAbsentFields(t *testing.T) {
	records := []Record{
		{
			Name:              "Laptop",
			Price:             PriceRange{Min: IntPtr(120000), Max: IntPtr(150000)},
			PriceText:         "₦120,000 - ₦150,000",
			PreviousPrice:     PriceRange{},
			PreviousPriceText: "",
			DiscountPercent:   15,
			Rating:            Rating{Count: IntPtr(4), Scale: RatingScale},
			RatingText:        "4.0 out of 5",
			Score:             2.5,
			ImageURL:          "https://example.test/a.jpg",
			PageURL:           "https://example.test/laptop.html",
		},
		{
			Name:      "Mouse",
			Price:     PriceRange{Min: IntPtr(0)},
			PriceText: "₦0",
			Rating:    Rating{Scale: RatingScale},
			PageURL:   "https://example.test/mouse.html",
		},
	}

	data, err := json.Marshal(records)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(data), `"previousPrice":{"min":null,"max":null}`) {
		t.Fatalf("absent range should encode as nulls, got %s", data)
	}

	var decoded []Record
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !reflect.DeepEqual(records, decoded) {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", decoded, records)
	}
	if decoded[1].Price.Min == nil || *decoded[1].Price.Min != 0 {
		t.Fatalf("zero min must stay present, got %v", decoded[1].Price.Min)
	}
	if decoded[1].Price.Max != nil {
		t.Fatalf("absent max must stay absent")
	}
}

func TestPriceRangeValid(t *testing.T) {
	tests := []struct {
		name  string
		r     PriceRange
		valid bool
	}{
		{name: "empty", r: PriceRange{}, valid: true},
		{name: "min only", r: PriceRange{Min: IntPtr(3)}, valid: true},
		{name: "ordered", r: PriceRange{Min: IntPtr(3), Max: IntPtr(5)}, valid: true},
		{name: "max without min", r: PriceRange{Max: IntPtr(5)}, valid: false},
		{name: "inverted", r: PriceRange{Min: IntPtr(9), Max: IntPtr(5)}, valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.r.Valid(); got != tt.valid {
				t.Fatalf("Valid() = %v, want %v", got, tt.valid)
			}
		})
	}
}

func TestPageContentNilParagraphsEncodeAsArray(t *testing.T) {
	data, err := json.Marshal(PageContent{Title: "Food"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `{"title":"Food","paragraphs":[]}` {
		t.Fatalf("unexpected json %s", data)
	}
}
