// Package scoring rates how complete and reachable a lead is on a 0-100 scale.
// The score is a pure function of the stored fields.
package scoring

import (
	"net/url"
	"strings"
	"unicode"

	"github.com/octobees/leads-scraper/internal/entity"
)

const (
	categoryContact  = "contact_completeness"
	categoryWebsite  = "website_quality"
	categoryLocation = "location"
	categoryProfile  = "company_profile"
)

var freeHostingDomains = []string{
	"wordpress.com",
	"blogspot.com",
	"wixsite.com",
	"weebly.com",
	"squarespace.com",
	"medium.com",
	"substack.com",
	"godaddysites.com",
	"notion.site",
	"googlepages.com",
}

// LeadFeatures captures the lead fields used for scoring.
type LeadFeatures struct {
	Email            string
	Phone            string
	LinkedIn         string
	Website          string
	Street           string
	City             string
	State            string
	ZipCode          string
	Industry         string
	EmployeeCount    string
	Revenue          string
	YearFounded      string
	Description      string
	ProductsServices []string
}

// ScoreResult reports the aggregate score and the per-category breakdown.
type ScoreResult struct {
	Total     int            `json:"total"`
	Breakdown map[string]int `json:"breakdown"`
}

// FeaturesFromLead projects a stored lead onto its scoring features.
func FeaturesFromLead(lead entity.Lead) LeadFeatures {
	return LeadFeatures{
		Email:            lead.Email,
		Phone:            lead.Phone,
		LinkedIn:         lead.LinkedIn,
		Website:          lead.Website,
		Street:           lead.Street,
		City:             lead.City,
		State:            lead.State,
		ZipCode:          lead.ZipCode,
		Industry:         lead.Industry,
		EmployeeCount:    lead.EmployeeCount,
		Revenue:          lead.Revenue,
		YearFounded:      lead.YearFounded,
		Description:      lead.Description,
		ProductsServices: lead.ProductsServices,
	}
}

// ScoreLead is ComputeScore(FeaturesFromLead(lead)).Total.
func ScoreLead(lead entity.Lead) int {
	return ComputeScore(FeaturesFromLead(lead)).Total
}

// ComputeScore evaluates the provided features and returns the score breakdown.
func ComputeScore(input LeadFeatures) ScoreResult {
	breakdown := map[string]int{
		categoryContact:  scoreContactCompleteness(input),
		categoryWebsite:  scoreWebsiteQuality(input),
		categoryLocation: scoreLocation(input),
		categoryProfile:  scoreCompanyProfile(input),
	}

	total := 0
	for _, value := range breakdown {
		total += value
	}

	return ScoreResult{
		Total:     total,
		Breakdown: breakdown,
	}
}

func scoreContactCompleteness(input LeadFeatures) int {
	score := 0
	if known(input.Email) {
		score += 15
	}
	if known(input.Phone) {
		score += 10
	}
	if known(input.LinkedIn) {
		score += 5
	}
	return score
}

func scoreWebsiteQuality(input LeadFeatures) int {
	score := 0
	if strings.HasPrefix(strings.ToLower(strings.TrimSpace(input.Website)), "https://") {
		score += 10
	}
	if highQualityDomain(input.Website) {
		score += 10
	}
	return score
}

func scoreLocation(input LeadFeatures) int {
	score := 0
	if hasCompleteAddress(fullAddress(input)) {
		score += 10
	}
	if known(input.City) {
		score += 5
	}
	if known(input.State) && known(input.ZipCode) {
		score += 5
	}
	return score
}

func scoreCompanyProfile(input LeadFeatures) int {
	score := 0
	if known(input.Industry) {
		score += 5
	}
	if known(input.EmployeeCount) {
		score += 10
	}
	if known(input.Revenue) {
		score += 5
	}
	if known(input.YearFounded) {
		score += 5
	}
	if known(input.Description) || hasValue(input.ProductsServices) {
		score += 5
	}
	return score
}

// known treats blanks and the scraper's placeholders as missing.
func known(value string) bool {
	switch strings.TrimSpace(value) {
	case "", "Unknown", "N/A":
		return false
	}
	return true
}

func hasValue(values []string) bool {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return true
		}
	}
	return false
}

func fullAddress(input LeadFeatures) string {
	var parts, region []string
	for _, part := range []string{input.Street, input.City} {
		if known(part) {
			parts = append(parts, strings.TrimSpace(part))
		}
	}
	for _, part := range []string{input.State, input.ZipCode} {
		if known(part) {
			region = append(region, strings.TrimSpace(part))
		}
	}
	if len(region) > 0 {
		parts = append(parts, strings.Join(region, " "))
	}
	return strings.Join(parts, ", ")
}

func hasCompleteAddress(raw string) bool {
	addr := strings.TrimSpace(raw)
	if len(addr) < 10 {
		return false
	}
	var hasLetter, hasDigit bool
	separatorCount := 0
	for _, r := range addr {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		case r == ',':
			separatorCount++
		}
	}
	return hasLetter && hasDigit && separatorCount >= 1
}

func highQualityDomain(raw string) bool {
	domain := extractDomain(raw)
	if domain == "" {
		return false
	}
	for _, bad := range freeHostingDomains {
		if domain == bad || strings.HasSuffix(domain, "."+bad) {
			return false
		}
	}
	return strings.Count(domain, ".") >= 1
}

func extractDomain(raw string) string {
	raw = strings.TrimSpace(raw)
	if !known(raw) {
		return ""
	}
	lowered := strings.ToLower(raw)
	if !strings.Contains(lowered, "://") {
		lowered = "https://" + lowered
	}
	parsed, err := url.Parse(lowered)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(parsed.Hostname(), "www.")
}
