package entities

import (
	"time"

	"staybook/internal/availability"
)

type AvailabilityRequest struct {
	PropertyID string    `json:"property_id"`
	CheckIn    time.Time `json:"check_in"`
	CheckOut   time.Time `json:"check_out"`
	ExcludeID  string    `json:"exclude_id,omitempty"`
}

// BlockedDatesResponse is a property's occupied spans, replaced wholesale on
// every fetch.
type BlockedDatesResponse struct {
	PropertyID string                         `json:"property_id"`
	Blocked    []availability.BlockedInterval `json:"blocked"`
}
