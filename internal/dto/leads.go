package dto

import (
	"github.com/octobees/leads-scraper/internal/entity"
	"github.com/octobees/leads-scraper/internal/scraper/extract"
)

// LeadFilter contains query parameters for lead listing.
type LeadFilter struct {
	Status   string
	Industry string
	Search   string
	Page     int
	Limit    int
}

// LeadInput is the writable part of a lead. Nil fields are left untouched on update.
type LeadInput struct {
	Company          *string   `json:"company,omitempty"`
	Website          *string   `json:"website,omitempty"`
	LinkedIn         *string   `json:"linkedin,omitempty"`
	Email            *string   `json:"email,omitempty"`
	Phone            *string   `json:"phone,omitempty"`
	Industry         *string   `json:"industry,omitempty"`
	BusinessType     *string   `json:"businessType,omitempty"`
	EmployeeCount    *string   `json:"employeeCount,omitempty"`
	Revenue          *string   `json:"revenue,omitempty"`
	YearFounded      *string   `json:"yearFounded,omitempty"`
	BBBRating        *string   `json:"bbbRating,omitempty"`
	Street           *string   `json:"street,omitempty"`
	City             *string   `json:"city,omitempty"`
	State            *string   `json:"state,omitempty"`
	ZipCode          *string   `json:"zipCode,omitempty"`
	Country          *string   `json:"country,omitempty"`
	ProductsServices *[]string `json:"productsServices,omitempty"`
	Description      *string   `json:"description,omitempty"`
	Status           *string   `json:"status,omitempty"`
	Notes            *string   `json:"notes,omitempty"`

	// Scraped records carry contacts and socials instead of flat fields.
	// They fill email, phone and linkedin when those are absent.
	ContactInfo *extract.ContactInfo `json:"contactInfo,omitempty"`
	SocialLinks map[string]string    `json:"socialLinks,omitempty"`
}

// BulkLeadsRequest creates several leads in one call.
type BulkLeadsRequest struct {
	Leads []LeadInput `json:"leads"`
}

// LeadListResponse is one page of leads.
type LeadListResponse struct {
	Leads       []entity.Lead `json:"leads"`
	TotalPages  int           `json:"totalPages"`
	CurrentPage int           `json:"currentPage"`
	Total       int           `json:"total"`
}

// BulkLeadsResponse reports created leads and the credits spent on them.
type BulkLeadsResponse struct {
	Leads            []entity.Lead `json:"leads"`
	CreditsUsed      int           `json:"creditsUsed"`
	RemainingCredits int           `json:"remainingCredits"`
}

// ImportLeadsResponse summarises a CSV import.
type ImportLeadsResponse struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors,omitempty"`
}

// StatusBreakdown counts leads per pipeline status.
type StatusBreakdown struct {
	Total     int `json:"total"`
	New       int `json:"new"`
	Contacted int `json:"contacted"`
	Qualified int `json:"qualified"`
	Converted int `json:"converted"`
	Closed    int `json:"closed"`
}

// IndustryCount is one row of the top industries list.
type IndustryCount struct {
	Industry string `json:"_id"`
	Count    int    `json:"count"`
}

// LeadStats is the dashboard overview.
type LeadStats struct {
	StatusBreakdown StatusBreakdown `json:"statusBreakdown"`
	TopIndustries   []IndustryCount `json:"topIndustries"`
	AverageScore    float64         `json:"averageScore"`
}
