package scraper

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/octobees/leads-scraper/internal/scraper/extract"
	"github.com/octobees/leads-scraper/internal/scraper/fetch"
)

var (
	// ErrProfileURLRequired is returned for a blank profile URL.
	ErrProfileURLRequired = errors.New("LinkedIn URL is required")
	// ErrNotLinkedInURL is returned when the URL is not on linkedin.com.
	ErrNotLinkedInURL = errors.New("not a LinkedIn URL")
)

// LinkedInProfile is a scraped profile together with its source URL.
type LinkedInProfile struct {
	LinkedIn string `json:"linkedin"`
	extract.Profile
}

// ProfileScraper reads public LinkedIn profile pages.
type ProfileScraper struct {
	fetcher fetch.Fetcher
	timeout time.Duration
}

// NewProfileScraper returns a ProfileScraper; timeout is the configured fetch timeout
// reported in navigation timeout errors and defaults to fetch.DefaultTimeout.
func NewProfileScraper(fetcher fetch.Fetcher, timeout time.Duration) *ProfileScraper {
	if timeout <= 0 {
		timeout = fetch.DefaultTimeout
	}
	return &ProfileScraper{fetcher: fetcher, timeout: timeout}
}

// Scrape fetches profileURL and extracts the header fields.
func (p *ProfileScraper) Scrape(ctx context.Context, profileURL string) (LinkedInProfile, error) {
	url := fetch.NormalizeURL(profileURL)
	if url == "" {
		return LinkedInProfile{}, ErrProfileURLRequired
	}
	if !strings.Contains(strings.ToLower(url), "linkedin.com") {
		return LinkedInProfile{}, ErrNotLinkedInURL
	}

	html, err := p.fetcher.Fetch(ctx, url)
	if err != nil {
		return LinkedInProfile{}, fetch.Wrap(url, p.timeout, err)
	}
	return LinkedInProfile{LinkedIn: url, Profile: extract.LinkedInProfile(extract.Parse(html))}, nil
}
