package entity

import (
	"time"

	"github.com/google/uuid"
)

// Lead statuses, in pipeline order.
const (
	LeadStatusNew       = "new"
	LeadStatusContacted = "contacted"
	LeadStatusQualified = "qualified"
	LeadStatusConverted = "converted"
	LeadStatusClosed    = "closed"
)

// LeadStatuses lists every valid status.
var LeadStatuses = []string{LeadStatusNew, LeadStatusContacted, LeadStatusQualified, LeadStatusConverted, LeadStatusClosed}

// DefaultCountry is stored when a lead has no country.
const DefaultCountry = "USA"

// Lead is a prospect company owned by one user.
type Lead struct {
	ID               uuid.UUID  `json:"id"`
	UserID           uuid.UUID  `json:"userId"`
	Company          string     `json:"company"`
	Website          string     `json:"website"`
	LinkedIn         string     `json:"linkedin"`
	Email            string     `json:"email"`
	Phone            string     `json:"phone"`
	Industry         string     `json:"industry"`
	BusinessType     string     `json:"businessType"`
	EmployeeCount    string     `json:"employeeCount"`
	Revenue          string     `json:"revenue"`
	YearFounded      string     `json:"yearFounded"`
	BBBRating        string     `json:"bbbRating"`
	Street           string     `json:"street"`
	City             string     `json:"city"`
	State            string     `json:"state"`
	ZipCode          string     `json:"zipCode"`
	Country          string     `json:"country"`
	ProductsServices []string   `json:"productsServices"`
	Description      string     `json:"description"`
	Status           string     `json:"status"`
	Notes            string     `json:"notes"`
	LastContacted    *time.Time `json:"lastContacted,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

// ValidLeadStatus reports whether status is a known pipeline status.
func ValidLeadStatus(status string) bool {
	for _, s := range LeadStatuses {
		if s == status {
			return true
		}
	}
	return false
}
