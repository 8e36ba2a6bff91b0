package entities

import "time"

// SearchQuery is the closed set of supported search filters. Unknown filter
// keys do not exist by construction; adding a filter means adding a field.
type SearchQuery struct {
	Location string     `json:"location,omitempty"`
	CheckIn  *time.Time `json:"check_in,omitempty"`
	CheckOut *time.Time `json:"check_out,omitempty"`
	Guests   int        `json:"guests,omitempty"`
	MinPrice int64      `json:"min_price,omitempty"`
	MaxPrice int64      `json:"max_price,omitempty"`
	Bedrooms int        `json:"bedrooms,omitempty"`
	Page     int        `json:"page,omitempty"`
	PerPage  int        `json:"per_page,omitempty"`
}
