package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// SearchHit is one organic result block from a search results page.
type SearchHit struct {
	Title   string
	Link    string
	Snippet string
}

// SearchHits reads ".g" result blocks, skipping entries without a title or an absolute
// link and links back to google.com. At most limit hits are returned; limit <= 0 means no cap.
func SearchHits(doc *Document, limit int) []SearchHit {
	hits := []SearchHit{}
	doc.Find(".g").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if limit > 0 && len(hits) >= limit {
			return false
		}
		title := strings.TrimSpace(s.Find("h3").Text())
		link := attr(s.Find(`a[href^="http"]`).First(), "href")
		if title == "" || link == "" || strings.Contains(link, "google.com") {
			return true
		}
		hits = append(hits, SearchHit{
			Title:   title,
			Link:    link,
			Snippet: strings.TrimSpace(s.Find(".VwiC3b").Text()),
		})
		return true
	})
	return hits
}
