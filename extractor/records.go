// Package extractor turns rendered HTML into listing records, outbound links
// and page text snapshots.
package extractor

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"

	"github.com/aluiziolira/go-scrape-listings/models"
	"github.com/aluiziolira/go-scrape-listings/parser"
)

// ExtractionFieldMissing reports a listing container that lacks a required
// field. The container is skipped; its siblings are still extracted.
type ExtractionFieldMissing struct {
	Index int
	Field string
}

func (e *ExtractionFieldMissing) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("extract: %s: %v", e.Field, parser.ErrExtractionFieldMissing)
	}
	return fmt.Sprintf("extract item %d: %s: %v", e.Index, e.Field, parser.ErrExtractionFieldMissing)
}

func (e *ExtractionFieldMissing) Unwrap() error {
	return parser.ErrExtractionFieldMissing
}

// Selectors describes where each field lives inside a listing page.
type Selectors struct {
	Container     string
	Name          string
	Price         string
	PreviousPrice string
	Discount      string
	Shipping      string
	Rating        string
	Image         string
	Link          string
}

// DefaultSelectors match the Jumia catalog markup.
var DefaultSelectors = Selectors{
	Container:     "div.-paxs.row._no-g._4cl-3cm-shs article",
	Name:          "h3.name",
	Price:         "div.prc",
	PreviousPrice: "div.old",
	Discount:      "div.bdg._dsct._sm",
	Shipping:      "div.bdg._glb._xs",
	Rating:        "div.stars._s",
	Image:         "img",
	Link:          "a.core",
}

// RecordExtractor holds a compiled selector set.
type RecordExtractor struct {
	container     cascadia.Selector
	name          cascadia.Selector
	price         cascadia.Selector
	previousPrice cascadia.Selector
	discount      cascadia.Selector
	shipping      cascadia.Selector
	rating        cascadia.Selector
	image         cascadia.Selector
	link          cascadia.Selector
}

var defaultExtractor = MustNewRecordExtractor(DefaultSelectors)

// NewRecordExtractor compiles sel.
func NewRecordExtractor(sel Selectors) (*RecordExtractor, error) {
	var (
		re  RecordExtractor
		err error
	)
	compile := func(field, css string, dst *cascadia.Selector) {
		if err != nil {
			return
		}
		var compiled cascadia.Selector
		if compiled, err = cascadia.Compile(css); err != nil {
			err = fmt.Errorf("compile %s selector %q: %w", field, css, err)
			return
		}
		*dst = compiled
	}

	compile("container", sel.Container, &re.container)
	compile("name", sel.Name, &re.name)
	compile("price", sel.Price, &re.price)
	compile("previous price", sel.PreviousPrice, &re.previousPrice)
	compile("discount", sel.Discount, &re.discount)
	compile("shipping", sel.Shipping, &re.shipping)
	compile("rating", sel.Rating, &re.rating)
	compile("image", sel.Image, &re.image)
	compile("link", sel.Link, &re.link)
	if err != nil {
		return nil, err
	}
	return &re, nil
}

// MustNewRecordExtractor is NewRecordExtractor that panics on a bad selector.
func MustNewRecordExtractor(sel Selectors) *RecordExtractor {
	re, err := NewRecordExtractor(sel)
	if err != nil {
		panic(err)
	}
	return re
}

// ExtractRecords extracts listings with DefaultSelectors.
func ExtractRecords(html, origin string) ([]models.Record, []error) {
	return defaultExtractor.Extract(html, origin)
}

// Extract returns one record per listing container found in html and one
// error per container that had to be skipped. Relative links are resolved
// against origin.
func (re *RecordExtractor) Extract(html, origin string) ([]models.Record, []error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, []error{fmt.Errorf("parse listing html: %w", err)}
	}

	var (
		records []models.Record
		errs    []error
	)
	doc.FindMatcher(re.container).Each(func(i int, s *goquery.Selection) {
		record, err := re.extractRecord(i, s, origin)
		if err != nil {
			errs = append(errs, err)
			return
		}
		records = append(records, record)
	})
	return records, errs
}

func (re *RecordExtractor) extractRecord(index int, s *goquery.Selection, origin string) (models.Record, error) {
	name := childText(s, re.name)
	if name == "" {
		return models.Record{}, &ExtractionFieldMissing{Index: index, Field: "name"}
	}
	priceText := childText(s, re.price)
	if priceText == "" {
		return models.Record{}, &ExtractionFieldMissing{Index: index, Field: "price"}
	}
	href := childAttr(s, re.link, "href")
	if href == "" {
		return models.Record{}, &ExtractionFieldMissing{Index: index, Field: "link"}
	}

	previousText := childText(s, re.previousPrice)
	ratingText := childText(s, re.rating)
	image := childAttr(s, re.image, "data-src")
	if image == "" {
		image = childAttr(s, re.image, "src")
	}

	return models.Record{
		Name:              name,
		Price:             parser.ParsePriceRange(priceText),
		PriceText:         priceText,
		PreviousPrice:     parser.ParsePriceRange(previousText),
		PreviousPriceText: previousText,
		DiscountPercent:   parser.ParseDiscount(childText(s, re.discount)),
		ShippingLabel:     childText(s, re.shipping),
		Rating:            parser.ParseRating(ratingText),
		RatingText:        ratingText,
		ImageURL:          AbsoluteURL(origin, image),
		PageURL:           AbsoluteURL(origin, href),
	}, nil
}

func childText(s *goquery.Selection, m cascadia.Selector) string {
	return strings.TrimSpace(s.FindMatcher(m).First().Text())
}

func childAttr(s *goquery.Selection, m cascadia.Selector, attr string) string {
	value, _ := s.FindMatcher(m).First().Attr(attr)
	return strings.TrimSpace(value)
}

// AbsoluteURL resolves href against origin. Empty or unparseable hrefs
// resolve to "".
func AbsoluteURL(origin, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	base, err := url.Parse(origin)
	if err != nil {
		return ref.String()
	}
	return base.ResolveReference(ref).String()
}
