package scraper

import (
	"context"
	"errors"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/octobees/leads-scraper/internal/scraper/extract"
	"github.com/octobees/leads-scraper/internal/scraper/fetch"
)

const (
	// DefaultSearchLimit caps results when the caller does not.
	DefaultSearchLimit = 10
	searchEndpoint     = "https://www.google.com/search"
)

// ErrQueryRequired is returned when neither a query nor a prompt is given.
var ErrQueryRequired = errors.New("search query is required")

// SearchQuery describes a company search.
type SearchQuery struct {
	Query    string
	Location string
	Industry string
	Limit    int
}

// SearchResult lists matched companies. Fallback is true when the results come
// from the sample catalogue because the results page could not be fetched.
type SearchResult struct {
	Companies []CompanyRecord `json:"companies"`
	Query     string          `json:"searchQuery"`
	Fallback  bool            `json:"fallback"`
}

// Searcher finds companies through a search engine results page.
type Searcher struct {
	fetcher  fetch.Fetcher
	fallback []CompanyRecord
	logger   *zap.Logger
}

// NewSearcher wires a Searcher. fallback is served when fetching results fails.
func NewSearcher(fetcher fetch.Fetcher, fallback []CompanyRecord, logger *zap.Logger) *Searcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Searcher{fetcher: fetcher, fallback: fallback, logger: logger}
}

// SearchText joins the query with the optional location and "<industry> company".
func SearchText(q SearchQuery) string {
	text := strings.TrimSpace(q.Query)
	if loc := strings.TrimSpace(q.Location); loc != "" {
		text += " " + loc
	}
	if ind := strings.TrimSpace(q.Industry); ind != "" {
		text += " " + ind + " company"
	}
	return text
}

// SearchURL returns the results page address for q.
func SearchURL(q SearchQuery) string {
	return searchEndpoint + "?" + url.Values{"q": {SearchText(q)}}.Encode()
}

// Search fetches the results page and turns each organic hit into a CompanyRecord.
func (s *Searcher) Search(ctx context.Context, q SearchQuery) (SearchResult, error) {
	if strings.TrimSpace(q.Query) == "" {
		return SearchResult{}, ErrQueryRequired
	}
	if q.Limit <= 0 {
		q.Limit = DefaultSearchLimit
	}
	text := SearchText(q)

	html, err := s.fetcher.Fetch(ctx, SearchURL(q))
	if err != nil {
		s.logger.Warn("search page fetch failed, serving sample companies", zap.String("query", text), zap.Error(err))
		return SearchResult{Companies: s.samples(q.Limit), Query: text, Fallback: true}, nil
	}

	hits := extract.SearchHits(extract.Parse(html), q.Limit)
	companies := make([]CompanyRecord, 0, len(hits))
	for _, hit := range hits {
		companies = append(companies, recordFromHit(hit, q))
	}
	return SearchResult{Companies: companies, Query: text}, nil
}

// Samples returns the fallback catalogue.
func (s *Searcher) Samples() []CompanyRecord {
	return s.samples(0)
}

func (s *Searcher) samples(limit int) []CompanyRecord {
	n := len(s.fallback)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]CompanyRecord, n)
	copy(out, s.fallback[:n])
	return out
}

func recordFromHit(hit extract.SearchHit, q SearchQuery) CompanyRecord {
	industry := strings.TrimSpace(q.Industry)
	if industry == "" {
		industry = "Technology"
	}
	city := strings.TrimSpace(q.Location)
	if city == "" {
		city = extract.Unknown
	}
	return CompanyRecord{
		Company:          extract.TitleSegment(hit.Title),
		Website:          hit.Link,
		Description:      hit.Snippet,
		Industry:         industry,
		BusinessType:     "B2B",
		EmployeeCount:    extract.Unknown,
		Revenue:          extract.Unknown,
		YearFounded:      extract.Unknown,
		BBBRating:        "N/A",
		Street:           extract.Unknown,
		City:             city,
		State:            extract.Unknown,
		ZipCode:          extract.Unknown,
		Country:          "USA",
		ProductsServices: []string{},
		ContactInfo:      extract.ContactInfo{Emails: []string{}, Phones: []string{}},
		SocialLinks:      map[string]string{},
	}
}

var (
	promptStopwords = regexp.MustCompile(`(?i)\b(please|find|search|look|for|me|show|list|get|i|we|need|want|some|any|the|all)\b`)
	promptLocation  = regexp.MustCompile(`(?i)\b(?:in|near|around)\s+([a-zA-Z\s]+)$`)
	promptCount     = regexp.MustCompile(`\b(\d{1,3})\b`)
)

// ParseSearchPrompt splits a free-form prompt such as "find 5 dentists in Austin"
// into a query ("dentists"), a location ("Austin") and a limit (5).
func ParseSearchPrompt(prompt string) SearchQuery {
	prompt = strings.TrimSpace(prompt)
	var q SearchQuery

	if m := promptLocation.FindStringSubmatchIndex(prompt); m != nil {
		q.Location = titleCase(prompt[m[2]:m[3]])
		prompt = strings.TrimSpace(prompt[:m[0]])
	}
	if m := promptCount.FindStringSubmatch(prompt); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
			q.Limit = n
		}
		prompt = strings.Replace(prompt, m[0], "", 1)
	}

	q.Query = strings.Join(strings.Fields(promptStopwords.ReplaceAllString(prompt, "")), " ")
	if q.Query == "" && q.Location != "" {
		q.Query = "companies"
	}
	return q
}

func titleCase(value string) string {
	parts := strings.Fields(value)
	for i, p := range parts {
		lower := strings.ToLower(p)
		parts[i] = strings.ToUpper(lower[:1]) + lower[1:]
	}
	return strings.Join(parts, " ")
}
