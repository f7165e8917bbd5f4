package scraper

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/octobees/leads-scraper/internal/scraper/extract"
	"github.com/octobees/leads-scraper/internal/scraper/fetch"
)

// ErrWebsiteRequired is returned when the website is blank.
var ErrWebsiteRequired = errors.New("website URL is required")

// Scraper drives fetch, parse and extraction for a single company.
type Scraper struct {
	fetcher fetch.Fetcher
	timeout time.Duration
	logger  *zap.Logger
}

// NewScraper wires a Scraper. timeout is only used to describe deadline failures
// returned by fetchers that do not already report a *fetch.FetchError.
func NewScraper(fetcher fetch.Fetcher, timeout time.Duration, logger *zap.Logger) *Scraper {
	if timeout <= 0 {
		timeout = fetch.DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scraper{fetcher: fetcher, timeout: timeout, logger: logger}
}

// Scrape fetches website and assembles its record. Any fetch failure is returned as a
// *fetch.FetchError and no partial record is produced.
func (s *Scraper) Scrape(ctx context.Context, website, companyName string) (CompanyRecord, error) {
	url := fetch.NormalizeURL(website)
	if url == "" {
		return CompanyRecord{}, &fetch.FetchError{URL: website, Err: ErrWebsiteRequired}
	}

	start := time.Now()
	html, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		return CompanyRecord{}, fetch.Wrap(url, s.timeout, err)
	}

	record := Assemble(extract.Parse(html), url, companyName)
	s.logger.Debug("company scraped",
		zap.String("url", url),
		zap.String("company", record.Company),
		zap.Duration("elapsed", time.Since(start)),
	)
	return record, nil
}

// Assemble runs every field extractor over doc. A non-blank companyName overrides
// the extracted name; website is stored as given.
func Assemble(doc *extract.Document, website, companyName string) CompanyRecord {
	company := strings.TrimSpace(companyName)
	if company == "" {
		company = extract.CompanyName(doc)
	}
	street := extract.Street(doc)

	return CompanyRecord{
		Company:          company,
		Website:          website,
		Description:      extract.Description(doc),
		Industry:         extract.Industry(doc),
		BusinessType:     extract.BusinessType(doc),
		EmployeeCount:    extract.EmployeeCount(doc),
		Revenue:          extract.Revenue(doc),
		YearFounded:      extract.YearFounded(doc),
		Address:          street,
		Street:           street,
		City:             extract.City(doc),
		State:            extract.State(doc),
		ZipCode:          extract.ZipCode(doc),
		ProductsServices: extract.ProductsServices(doc),
		ContactInfo:      extract.Contacts(doc),
		SocialLinks:      extract.SocialLinks(doc),
	}
}

var _ CompanyScraper = (*Scraper)(nil)
