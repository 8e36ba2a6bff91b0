package entities

import "time"

type CreateReservationRequest struct {
	PropertyID string    `json:"property_id"`
	CheckIn    time.Time `json:"check_in"`
	CheckOut   time.Time `json:"check_out"`
	Guests     int       `json:"guests"`
	GuestName  string    `json:"guest_name"`
	GuestEmail string    `json:"guest_email"`
	GuestPhone string    `json:"guest_phone"`
}

type CancelReservationRequest struct {
	Reason string `json:"reason,omitempty"`
}

type QuoteRequest struct {
	PropertyID string    `json:"property_id"`
	CheckIn    time.Time `json:"check_in"`
	CheckOut   time.Time `json:"check_out"`
	Guests     int       `json:"guests"`
}

type ReservationEmailData struct {
	GuestName         string
	ReservationID     string
	PropertyTitle     string
	CheckInFormatted  string
	CheckOutFormatted string
	Nights            int
	TotalFormatted    string
	CurrentYear       int
	Status            string
}
