package entities

import "time"

type PropertyResponse struct {
	ID          string  `json:"id"`
	HostID      string  `json:"host_id"`
	Title       string  `json:"title"`
	Location    string  `json:"location"`
	NightlyRate int64   `json:"nightly_rate"`
	CleaningFee int64   `json:"cleaning_fee"`
	MaxGuests   int     `json:"max_guests"`
	MinNights   int     `json:"min_nights"`
	Bedrooms    int     `json:"bedrooms"`
	Rating      float64 `json:"rating,omitempty"`
}

// PropertySearchPage is one page of search results.
type PropertySearchPage struct {
	Properties []PropertyResponse `json:"properties"`
	Page       int                `json:"page"`
	PerPage    int                `json:"per_page"`
	Total      int                `json:"total"`
}

// PropertyStats is the per-property aggregate shown on host dashboards.
type PropertyStats struct {
	PropertyID    string    `json:"property_id"`
	UpcomingStays int       `json:"upcoming_stays"`
	NightsBooked  int       `json:"nights_booked"`
	GrossRevenue  int64     `json:"gross_revenue"`
	ComputedAt    time.Time `json:"computed_at"`
}
