// Package booking orchestrates reservation lifecycle mutations: optimistic
// cache writes, the backend call, then commit or version-guarded rollback,
// plus invalidation of the aggregate views derived from reservations.
package booking

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"staybook/internal/availability"
	"staybook/internal/cache"
	apperrors "staybook/internal/errors"
)

const (
	entityReservation   = "reservation"
	entityReservations  = "reservations"
	entityPropertyStats = "property-stats"
	entityUpcoming      = "upcoming"
	entityHostDashboard = "host-dashboard"
)

// Coordinator funnels every reservation mutation through the cache's
// optimistic protocol. Direct cache writes for reservations are disallowed
// outside of it.
type Coordinator struct {
	cache    *cache.Store
	api      BookingAPI
	payments PaymentProvider
}

func NewCoordinator(store *cache.Store, api BookingAPI, payments PaymentProvider) *Coordinator {
	return &Coordinator{cache: store, api: api, payments: payments}
}

// Cache exposes the underlying store for read paths and view observation.
func (c *Coordinator) Cache() *cache.Store {
	return c.cache
}

func ReservationKey(id string) cache.Key {
	return cache.Key{EntityType: entityReservation, ID: id}
}

// Create inserts a synthetic pending reservation under a temporary id, calls
// the backend, and on success commits the server entity under its real id.
// On failure the synthetic entry is rolled away and the error propagates.
func (c *Coordinator) Create(ctx context.Context, sess Session, req CreateOrderRequest) (*Reservation, error) {
	if sess.UserID == "" {
		return nil, apperrors.NewValidationError("session", "missing user")
	}
	if req.PropertyID == "" {
		return nil, apperrors.NewValidationError("property_id", "required")
	}
	nights, err := availability.Nights(req.CheckIn, req.CheckOut)
	if err != nil {
		return nil, err
	}

	tempID := "tmp-" + uuid.NewString()
	tempKey := ReservationKey(tempID)
	now := time.Now().UTC()
	synthetic := &Reservation{
		ID:            tempID,
		PropertyID:    req.PropertyID,
		Status:        StatusPending,
		CheckIn:       req.CheckIn,
		CheckOut:      req.CheckOut,
		Guests:        req.Guests,
		PaymentStatus: PaymentUnpaid,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	m := c.cache.ApplyOptimistic(tempKey, func(any) any { return synthetic })

	resv, err := c.api.CreateOrder(ctx, req)
	if err != nil {
		m.Rollback()
		return nil, err
	}

	// Re-key the temporary id to the server-assigned one.
	m.Commit(resv)
	c.cache.Write(ReservationKey(resv.ID), resv)
	c.cache.Drop(tempKey)

	c.collectPayment(ctx, resv, req.GuestEmail)
	c.invalidateAggregates(sess, resv.PropertyID)

	log.Printf("booking: user %s created reservation %s (%d nights)", sess.UserID, resv.ID, nights)
	return resv, nil
}

// Confirm moves a pending reservation to confirmed.
func (c *Coordinator) Confirm(ctx context.Context, sess Session, id string) (*Reservation, error) {
	return c.transition(ctx, sess, id, StatusConfirmed, func(ctx context.Context) (*Reservation, error) {
		return c.api.ConfirmOrder(ctx, id)
	})
}

// Cancel moves a pending or confirmed reservation to cancelled and, when the
// stay was already paid, asks the payment collaborator for a refund. A refund
// failure is logged and reflected in PaymentStatus only; the cancellation
// itself stands.
func (c *Coordinator) Cancel(ctx context.Context, sess Session, id, reason string) (*Reservation, error) {
	resv, err := c.transition(ctx, sess, id, StatusCancelled, func(ctx context.Context) (*Reservation, error) {
		return c.api.CancelOrder(ctx, id, reason)
	})
	if err != nil {
		return nil, err
	}
	if c.payments != nil && resv.PaymentStatus == PaymentPaid && resv.PaymentIntentID != "" {
		if rerr := c.payments.Refund(ctx, resv.PaymentIntentID); rerr != nil {
			log.Printf("booking: refund for reservation %s failed: %v", resv.ID, rerr)
		}
	}
	return resv, nil
}

// Complete moves a confirmed reservation to completed.
func (c *Coordinator) Complete(ctx context.Context, sess Session, id string) (*Reservation, error) {
	return c.transition(ctx, sess, id, StatusCompleted, func(ctx context.Context) (*Reservation, error) {
		return c.api.CompleteOrder(ctx, id)
	})
}

// transition runs one lifecycle step: legality check against the cached
// status (no network on an illegal step), optimistic status write, backend
// call, then commit or rollback. The rollback is version-guarded, so a slow
// failure never erases a newer committed state.
func (c *Coordinator) transition(ctx context.Context, sess Session, id string, target Status, call func(context.Context) (*Reservation, error)) (*Reservation, error) {
	if sess.UserID == "" {
		return nil, apperrors.NewValidationError("session", "missing user")
	}
	key := ReservationKey(id)
	entry, ok := c.cache.Read(key)
	if !ok {
		return nil, &apperrors.StateError{From: "unknown", To: string(target)}
	}
	cur, ok := entry.Data.(*Reservation)
	if !ok {
		return nil, &apperrors.StateError{From: "unknown", To: string(target)}
	}
	if err := checkTransition(cur.Status, target); err != nil {
		return nil, err
	}

	m := c.cache.ApplyOptimistic(key, func(current any) any {
		prev, _ := current.(*Reservation)
		if prev == nil {
			prev = cur
		}
		next := *prev
		next.Status = target
		next.UpdatedAt = time.Now().UTC()
		return &next
	})

	resv, err := call(ctx)
	if err != nil {
		m.Rollback()
		return nil, err
	}

	m.Commit(resv)
	c.invalidateAggregates(sess, resv.PropertyID)
	return resv, nil
}

// collectPayment opens a checkout session for a freshly created reservation.
// Failures surface only through PaymentStatus.
func (c *Coordinator) collectPayment(ctx context.Context, resv *Reservation, email string) {
	if c.payments == nil {
		return
	}
	url, sessionID, err := c.payments.CreateCheckoutSession(ctx, resv.ID, resv.TotalAmount, "usd", email)
	if err != nil {
		log.Printf("booking: checkout session for reservation %s failed: %v", resv.ID, err)
		resv.PaymentStatus = PaymentFailed
	} else {
		resv.CheckoutURL = url
		resv.PaymentStatus = PaymentPending
		log.Printf("booking: checkout session %s opened for reservation %s", sessionID, resv.ID)
	}
	c.cache.Write(ReservationKey(resv.ID), resv)
}

// invalidateAggregates marks every view derived from reservation state stale:
// lists, per-property stats, upcoming queries and host dashboards. It runs
// only after a successful commit, never after a rollback.
func (c *Coordinator) invalidateAggregates(sess Session, propertyID string) {
	c.cache.Invalidate(cache.Key{EntityType: entityReservations})
	c.cache.Invalidate(cache.Key{EntityType: entityPropertyStats, ID: propertyID})
	c.cache.Invalidate(cache.Key{EntityType: entityUpcoming})
	if sess.Role == "host" {
		c.cache.Invalidate(cache.Key{EntityType: entityHostDashboard, ID: sess.UserID})
	} else {
		c.cache.Invalidate(cache.Key{EntityType: entityHostDashboard})
	}
}
