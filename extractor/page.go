package extractor

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/aluiziolira/go-scrape-listings/models"
)

// ExtractPage captures the document title and the text of every paragraph.
// Paragraph text is kept as rendered, without trimming. A document with no
// <title> element yields an *ExtractionFieldMissing error.
func ExtractPage(rawHTML string) (models.PageContent, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return models.PageContent{}, fmt.Errorf("parse page html: %w", err)
	}

	title := doc.Find("title").First()
	if title.Length() == 0 {
		return models.PageContent{}, &ExtractionFieldMissing{Index: -1, Field: "title"}
	}

	content := models.PageContent{
		Title:      strings.TrimSpace(title.Text()),
		Paragraphs: []string{},
	}
	doc.Find("p").Each(func(_ int, s *goquery.Selection) {
		content.Paragraphs = append(content.Paragraphs, s.Text())
	})
	return content, nil
}
