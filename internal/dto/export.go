package dto

import "time"

// ExportFilters narrows an export when no explicit ids are given.
type ExportFilters struct {
	Status   string `json:"status,omitempty"`
	Industry string `json:"industry,omitempty"`
	City     string `json:"city,omitempty"`
	State    string `json:"state,omitempty"`
}

// ExportRequest selects leads by id or by filters.
type ExportRequest struct {
	LeadIDs []string      `json:"leadIds,omitempty"`
	Filters ExportFilters `json:"filters"`
}

// AnalyticsRequest bounds the analytics export by creation date.
type AnalyticsRequest struct {
	StartDate *time.Time `json:"startDate,omitempty"`
	EndDate   *time.Time `json:"endDate,omitempty"`
	Format    string     `json:"format,omitempty"`
}
