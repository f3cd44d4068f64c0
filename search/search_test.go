package search

import "testing"

func TestBuildURL(t *testing.T) {
	const origin = "https://www.jumia.com.ng"
	tests := []struct {
		name  string
		query string
		sort  SortKey
		want  string
	}{
		{
			name:  "relevance omits sort",
			query: "  gaming laptop ",
			sort:  SortRelevance,
			want:  "https://www.jumia.com.ng/catalog/?q=gaming+laptop",
		},
		{
			name:  "empty sort is relevance",
			query: "phone",
			want:  "https://www.jumia.com.ng/catalog/?q=phone",
		},
		{
			name:  "price ascending",
			query: "hp  laptop",
			sort:  SortPriceAsc,
			want:  "https://www.jumia.com.ng/catalog/?q=hp+laptop&sort=lowest-price#catalog-listing",
		},
		{
			name:  "escapes words",
			query: "a&b",
			sort:  SortRelevance,
			want:  "https://www.jumia.com.ng/catalog/?q=a%26b",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BuildURL(origin+"/", tt.query, tt.sort); got != tt.want {
				t.Fatalf("BuildURL() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseSortKey(t *testing.T) {
	tests := []struct {
		input   string
		want    SortKey
		wantErr bool
	}{
		{input: "", want: SortRelevance},
		{input: "relevance", want: SortRelevance},
		{input: " Lowest-Price ", want: SortPriceAsc},
		{input: "highest-price", want: SortPriceDesc},
		{input: "cheapest", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseSortKey(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseSortKey(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Fatalf("ParseSortKey(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSlug(t *testing.T) {
	if got := Slug("  Gaming Laptop 16GB "); got != "gaming-laptop-16gb" {
		t.Fatalf("Slug() = %q", got)
	}
	if got := Slug("../etc/passwd"); got != "etcpasswd" {
		t.Fatalf("Slug() should strip path characters, got %q", got)
	}
}
