package extractor

import (
	"strings"

	"golang.org/x/net/html"
)

// DiscoverLinks returns every anchor href in document order that starts with
// prefix, resolved against origin. Duplicates are kept.
//
// When more than maxWidth links are found, only the slice starting at the
// middle of the list is returned (see MiddleSlice), so a crawl does not keep
// following the navigation links at the top of every page.
func DiscoverLinks(rawHTML, origin, prefix string, maxWidth int) []string {
	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return nil
	}

	var links []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			for _, a := range n.Attr {
				if !strings.EqualFold(a.Key, "href") {
					continue
				}
				href := strings.TrimSpace(a.Val)
				if !strings.HasPrefix(href, prefix) {
					break
				}
				if abs := AbsoluteURL(origin, href); abs != "" {
					links = append(links, abs)
				}
				break
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return MiddleSlice(links, maxWidth)
}

// MiddleSlice bounds links to width entries. Lists longer than width yield
// links[len/2 : len/2+width], clamped to the end of the list; for 21 links
// and width 10 that is links[10:20]. A non-positive width yields nothing.
func MiddleSlice(links []string, width int) []string {
	if width <= 0 {
		return nil
	}
	if len(links) <= width {
		return links
	}
	start := len(links) / 2
	end := start + width
	if end > len(links) {
		end = len(links)
	}
	return links[start:end]
}
