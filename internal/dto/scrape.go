package dto

import "github.com/octobees/leads-scraper/internal/scraper"

// ScrapeCompanyRequest is the payload of the single-company scrape endpoint.
type ScrapeCompanyRequest struct {
	Website     string `json:"website"`
	CompanyName string `json:"companyName,omitempty"`
}

// BulkScrapeRequest lists the websites to scrape in one batch.
type BulkScrapeRequest struct {
	Websites []scraper.Target `json:"websites"`
}

// LinkedInRequest carries a public profile URL.
type LinkedInRequest struct {
	LinkedInURL string `json:"linkedinUrl"`
}

// GoogleSearchRequest accepts either an explicit query or a free-form prompt.
type GoogleSearchRequest struct {
	Query    string `json:"query,omitempty"`
	Prompt   string `json:"prompt,omitempty"`
	Location string `json:"location,omitempty"`
	Industry string `json:"industry,omitempty"`
	Limit    int    `json:"limit,omitempty"`
}

// ScrapeCompanyResponse is the flat scraped record plus the caller's remaining balance.
type ScrapeCompanyResponse struct {
	scraper.CompanyRecord
	CreditsUsed      int `json:"creditsUsed"`
	RemainingCredits int `json:"remainingCredits"`
}

// BulkScrapeResponse extends the batch outcome with credit accounting.
type BulkScrapeResponse struct {
	scraper.BulkResult
	CreditsUsed      int `json:"creditsUsed"`
	RemainingCredits int `json:"remainingCredits"`
}

// LinkedInResponse is a scraped profile plus credit accounting.
type LinkedInResponse struct {
	scraper.LinkedInProfile
	CreditsUsed      int `json:"creditsUsed"`
	RemainingCredits int `json:"remainingCredits"`
}

// GoogleSearchResponse is a search result plus credit accounting.
type GoogleSearchResponse struct {
	scraper.SearchResult
	CreditsUsed      int `json:"creditsUsed"`
	RemainingCredits int `json:"remainingCredits"`
}
