package model

import (
	"time"
)

// DashboardResponse aggregates collection totals for the admin dashboard
type DashboardResponse struct {
	TotalDonations      float64          `json:"total_donations"`
	TotalTaxCollected   float64          `json:"total_tax_collected"`
	TotalHallRevenue    float64          `json:"total_hall_revenue"`
	ActiveMembers       int64            `json:"active_members"`
	TopDonationPurposes []PurposeTotal   `json:"top_donation_purposes"`
	TaxCollectionByYear []YearCollection `json:"tax_collection_by_year"`
	TimeRangeStartDate  time.Time        `json:"time_range_start_date"`
	TimeRangeEndDate    time.Time        `json:"time_range_end_date"`
}

// PurposeTotal represents donation totals grouped by purpose
type PurposeTotal struct {
	Purpose    string  `json:"purpose"`
	TotalValue float64 `json:"total_value"`
	Count      int     `json:"count"`
}

// YearCollection represents member-tax collection totals for one year
type YearCollection struct {
	Year          int     `json:"year"`
	TotalAssessed float64 `json:"total_assessed"`
	TotalPaid     float64 `json:"total_paid"`
}
