// Package scraper assembles company records from rendered pages and runs batches of scrapes.
package scraper

import (
	"context"

	"github.com/octobees/leads-scraper/internal/scraper/extract"
)

// CompanyRecord is the structured profile scraped for one company website.
// Every field is best effort and no cross-field validation is performed.
type CompanyRecord struct {
	Company          string              `json:"company"`
	Website          string              `json:"website"`
	Description      string              `json:"description"`
	Industry         string              `json:"industry"`
	BusinessType     string              `json:"businessType"`
	EmployeeCount    string              `json:"employeeCount"`
	Revenue          string              `json:"revenue"`
	YearFounded      string              `json:"yearFounded"`
	Address          string              `json:"address"`
	Street           string              `json:"street"`
	City             string              `json:"city"`
	State            string              `json:"state"`
	ZipCode          string              `json:"zipCode"`
	Country          string              `json:"country,omitempty"`
	BBBRating        string              `json:"bbbRating,omitempty"`
	ProductsServices []string            `json:"productsServices"`
	ContactInfo      extract.ContactInfo `json:"contactInfo"`
	SocialLinks      map[string]string   `json:"socialLinks"`
}

// PrimaryEmail returns the first scraped email, if any.
func (r CompanyRecord) PrimaryEmail() string {
	if len(r.ContactInfo.Emails) == 0 {
		return ""
	}
	return r.ContactInfo.Emails[0]
}

// PrimaryPhone returns the first scraped phone number, if any.
func (r CompanyRecord) PrimaryPhone() string {
	if len(r.ContactInfo.Phones) == 0 {
		return ""
	}
	return r.ContactInfo.Phones[0]
}

// CompanyScraper produces a CompanyRecord for a website and an optional name override.
type CompanyScraper interface {
	Scrape(ctx context.Context, website, companyName string) (CompanyRecord, error)
}
