package booking

import (
	"time"

	apperrors "staybook/internal/errors"
)

// Status is a reservation's lifecycle state. Completed and Cancelled are
// terminal; nothing transitions out of them.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

// PaymentStatus is surfaced on the reservation but never drives lifecycle
// transitions; the payment collaborator is an independent side channel.
type PaymentStatus string

const (
	PaymentUnpaid   PaymentStatus = "unpaid"
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
	PaymentFailed   PaymentStatus = "failed"
)

var transitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCompleted, StatusCancelled},
}

// CanTransition reports whether from -> to is a legal lifecycle step.
func CanTransition(from, to Status) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// checkTransition returns the StateError for an illegal step, nil otherwise.
func checkTransition(from, to Status) error {
	if !CanTransition(from, to) {
		return &apperrors.StateError{From: string(from), To: string(to)}
	}
	return nil
}

// Reservation is the cached booking entity. Version is a monotonic counter
// bumped by the server on every committed mutation; the cache layer uses its
// own entry versions, this one arbitrates with the backend.
type Reservation struct {
	ID              string        `json:"id"`
	PropertyID      string        `json:"property_id"`
	Status          Status        `json:"status"`
	CheckIn         time.Time     `json:"check_in"`
	CheckOut        time.Time     `json:"check_out"`
	Guests          int           `json:"guests"`
	TotalAmount     int64         `json:"total_amount"`
	PaymentStatus   PaymentStatus `json:"payment_status"`
	PaymentIntentID string        `json:"payment_intent_id,omitempty"`
	CheckoutURL     string        `json:"checkout_url,omitempty"`
	Version         int64         `json:"version"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// CreateOrderRequest is the payload for a new reservation.
type CreateOrderRequest struct {
	PropertyID string    `json:"property_id"`
	CheckIn    time.Time `json:"check_in"`
	CheckOut   time.Time `json:"check_out"`
	Guests     int       `json:"guests"`
	GuestName  string    `json:"guest_name"`
	GuestEmail string    `json:"guest_email"`
	GuestPhone string    `json:"guest_phone"`
}

// Session identifies the acting user. It is threaded explicitly through
// every coordinator call; the engine keeps no ambient user state.
type Session struct {
	UserID string
	Role   string
}
