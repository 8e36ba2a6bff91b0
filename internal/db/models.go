package db

import "time"

type Property struct {
	ID          string
	HostID      string
	Title       string
	Location    string
	NightlyRate int64
	CleaningFee int64
	MaxGuests   int
	MinNights   int
	Bedrooms    int
	CreatedAt   time.Time
}

type Reservation struct {
	ID                    string
	PropertyID            string
	GuestName             string
	GuestEmail            string
	GuestPhone            string
	Status                string
	CheckIn               time.Time
	CheckOut              time.Time
	Guests                int
	TotalAmount           int64
	PaymentStatus         string
	StripeSessionID       string
	StripePaymentIntentID string
	Version               int64
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

type Host struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
}
