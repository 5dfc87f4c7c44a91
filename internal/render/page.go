package render

import (
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Page is the outcome of one render.
type Page struct {
	URL     string
	HTML    string
	Title   string
	Bytes   int
	Elapsed time.Duration
}

func newPage(target, html string, elapsed time.Duration) *Page {
	return &Page{
		URL:     target,
		HTML:    html,
		Title:   parseTitle(html),
		Bytes:   len(html),
		Elapsed: elapsed,
	}
}

// parseTitle returns the document title, or "" if the markup has none.
func parseTitle(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(doc.Find("head > title").First().Text())
}
