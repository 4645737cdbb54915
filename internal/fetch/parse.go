package fetch

import (
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// pageSummary is what the executor extracts from a successful response body.
type pageSummary struct {
	title     string
	linkCount int
}

// parsePage extracts the document title and counts outbound links. A body
// that cannot be parsed as HTML is reported via error; callers downgrade that
// to a success with empty fields rather than a failure.
func parsePage(body io.Reader) (pageSummary, error) {
	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return pageSummary{}, err
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())

	linkCount := 0
	doc.Find("a[href]").Each(func(i int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if strings.TrimSpace(href) != "" {
			linkCount++
		}
	})

	return pageSummary{title: title, linkCount: linkCount}, nil
}
