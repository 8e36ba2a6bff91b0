package booking

import (
	"context"
	"time"

	"staybook/internal/availability"
)

// BookingAPI is the backend the coordinator mutates reservations through.
// Every call is a suspension point; the coordinator keeps serving optimistic
// state while one is in flight.
type BookingAPI interface {
	CreateOrder(ctx context.Context, req CreateOrderRequest) (*Reservation, error)
	ConfirmOrder(ctx context.Context, id string) (*Reservation, error)
	CancelOrder(ctx context.Context, id, reason string) (*Reservation, error)
	CompleteOrder(ctx context.Context, id string) (*Reservation, error)
	CheckConflicts(ctx context.Context, propertyID string, checkIn, checkOut time.Time, excludeID string) (*availability.ConflictResult, error)
	CalculateTotal(ctx context.Context, propertyID string, checkIn, checkOut time.Time, guests int) (*availability.Quote, error)
}

// PaymentProvider is the opaque payment collaborator. It is invoked only
// after a reservation reaches pending; its outcome lands in PaymentStatus
// and never feeds back into the lifecycle machine.
type PaymentProvider interface {
	CreateCheckoutSession(ctx context.Context, reservationID string, amount int64, currency, email string) (url, sessionID string, err error)
	ConfirmPaymentIntent(ctx context.Context, paymentIntentID string) error
	Refund(ctx context.Context, paymentIntentID string) error
}
