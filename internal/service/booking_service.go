package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"staybook/internal/availability"
	"staybook/internal/booking"
	"staybook/internal/db"
	"staybook/internal/entities"
	apperrors "staybook/internal/errors"
	"staybook/internal/repository"
)

// Marketplace-wide pricing knobs. Per-property overrides live on the
// property row (cleaning fee).
const (
	serviceFeeRate = 0.12
	taxRate        = 0.08
)

// BookingService is the server side of the booking API: it owns conflict
// checking, pricing and the reservation lifecycle against Postgres.
type BookingService struct {
	Reservations *repository.ReservationRepository
	Properties   *repository.PropertyRepository
	stripe       *StripeService
	notifier     *NotifyService
}

func NewBookingService(reservations *repository.ReservationRepository, properties *repository.PropertyRepository, stripe *StripeService, notifier *NotifyService) *BookingService {
	return &BookingService{
		Reservations: reservations,
		Properties:   properties,
		stripe:       stripe,
		notifier:     notifier,
	}
}

// CheckConflicts reports which existing stays overlap the candidate range.
func (s *BookingService) CheckConflicts(req entities.AvailabilityRequest) (*availability.ConflictResult, error) {
	candidate := availability.DateRange{Start: req.CheckIn, End: req.CheckOut}
	blocked, err := s.Reservations.FindConflicting(req.PropertyID, req.CheckIn, req.CheckOut, req.ExcludeID)
	if err != nil {
		log.Printf("Error from FindConflicting: %v", err)
		return nil, fmt.Errorf("internal error checking availability: %w", err)
	}
	// FindConflicting already applied the overlap predicate in SQL; run the
	// candidate through the checker anyway so date validation stays in one
	// place and the boundary rule cannot drift between layers.
	result, err := availability.CheckConflict(candidate, blocked)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// CalculateTotal prices a stay for a property.
func (s *BookingService) CalculateTotal(req entities.QuoteRequest) (*availability.Quote, error) {
	property, err := s.Properties.GetPropertyByID(req.PropertyID)
	if err != nil {
		return nil, err
	}
	if req.Guests > property.MaxGuests {
		return nil, apperrors.NewValidationError("guests", fmt.Sprintf("property sleeps at most %d guests", property.MaxGuests))
	}
	fees := availability.FeeSchedule{
		CleaningFee:    property.CleaningFee,
		ServiceFeeRate: serviceFeeRate,
		TaxRate:        taxRate,
	}
	quote, err := availability.CalculateTotal(property.NightlyRate, req.CheckIn, req.CheckOut, fees)
	if err != nil {
		return nil, err
	}
	return &quote, nil
}

// CreateOrder validates the stay, prices it, persists a pending reservation
// and opens a checkout session for it.
func (s *BookingService) CreateOrder(req entities.CreateReservationRequest) (*booking.Reservation, error) {
	property, err := s.Properties.GetPropertyByID(req.PropertyID)
	if err != nil {
		return nil, err
	}

	bounds := availability.Bounds{MinNights: property.MinNights}
	if err := bounds.ValidateRange(availability.DateRange{Start: req.CheckIn, End: req.CheckOut}); err != nil {
		return nil, err
	}

	conflicts, err := s.CheckConflicts(entities.AvailabilityRequest{
		PropertyID: req.PropertyID,
		CheckIn:    req.CheckIn,
		CheckOut:   req.CheckOut,
	})
	if err != nil {
		return nil, err
	}
	if conflicts.HasConflict {
		return nil, &apperrors.ConflictError{Message: "requested dates overlap an existing reservation"}
	}

	quote, err := s.CalculateTotal(entities.QuoteRequest{
		PropertyID: req.PropertyID,
		CheckIn:    req.CheckIn,
		CheckOut:   req.CheckOut,
		Guests:     req.Guests,
	})
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	res := &db.Reservation{
		ID:            uuid.NewString(),
		PropertyID:    req.PropertyID,
		GuestName:     req.GuestName,
		GuestEmail:    req.GuestEmail,
		GuestPhone:    req.GuestPhone,
		Status:        string(booking.StatusPending),
		CheckIn:       req.CheckIn,
		CheckOut:      req.CheckOut,
		Guests:        req.Guests,
		TotalAmount:   quote.Total,
		PaymentStatus: string(booking.PaymentUnpaid),
		Version:       1,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if s.stripe != nil {
		_, sessionID, err := s.stripe.CreateCheckoutSession(context.Background(), res.ID, quote.Total, "usd", req.GuestEmail)
		if err != nil {
			return nil, err
		}
		res.StripeSessionID = sessionID
		res.PaymentStatus = string(booking.PaymentPending)
	}

	if err := s.Reservations.CreateReservation(res); err != nil {
		log.Printf("Error creating reservation in repository: %v", err)
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.SendReservationEmail(res, property.Title)
		s.notifier.SendReservationSMS(res)
	}

	return toBookingReservation(res), nil
}

// ConfirmOrder moves a pending reservation to confirmed.
func (s *BookingService) ConfirmOrder(id string) (*booking.Reservation, error) {
	return s.applyTransition(id, booking.StatusConfirmed)
}

// CancelOrder moves a pending or confirmed reservation to cancelled and
// refunds a paid stay.
func (s *BookingService) CancelOrder(id, reason string) (*booking.Reservation, error) {
	res, err := s.applyTransition(id, booking.StatusCancelled)
	if err != nil {
		return nil, err
	}
	if reason != "" {
		log.Printf("Reservation %s cancelled: %s", id, reason)
	}
	if s.stripe != nil && res.PaymentStatus == booking.PaymentPaid && res.PaymentIntentID != "" {
		if err := s.stripe.Refund(context.Background(), res.PaymentIntentID); err != nil {
			log.Printf("Refund for reservation %s failed: %v", id, err)
		} else {
			res.PaymentStatus = booking.PaymentRefunded
			if err := s.Reservations.UpdatePayment(id, string(booking.PaymentRefunded), "", res.PaymentIntentID); err != nil {
				log.Printf("Error recording refund for reservation %s: %v", id, err)
			}
		}
	}
	return res, nil
}

// CompleteOrder moves a confirmed reservation to completed.
func (s *BookingService) CompleteOrder(id string) (*booking.Reservation, error) {
	return s.applyTransition(id, booking.StatusCompleted)
}

func (s *BookingService) GetReservation(id string) (*booking.Reservation, error) {
	res, err := s.Reservations.GetReservationByID(id)
	if err != nil {
		return nil, err
	}
	return toBookingReservation(res), nil
}

// MarkPaidBySessionID records a completed checkout reported by the payment
// processor's webhook. Payment state never drives lifecycle transitions.
func (s *BookingService) MarkPaidBySessionID(sessionID, paymentIntentID string) error {
	res, err := s.Reservations.GetReservationByStripeSessionID(sessionID)
	if err != nil {
		return err
	}
	return s.Reservations.UpdatePayment(res.ID, string(booking.PaymentPaid), sessionID, paymentIntentID)
}

// SearchProperties returns one page of properties matching the query.
func (s *BookingService) SearchProperties(q entities.SearchQuery) (*entities.PropertySearchPage, error) {
	return s.Properties.SearchProperties(q)
}

func (s *BookingService) GetProperty(id string) (*entities.PropertyResponse, error) {
	p, err := s.Properties.GetPropertyByID(id)
	if err != nil {
		return nil, err
	}
	return &entities.PropertyResponse{
		ID:          p.ID,
		HostID:      p.HostID,
		Title:       p.Title,
		Location:    p.Location,
		NightlyRate: p.NightlyRate,
		CleaningFee: p.CleaningFee,
		MaxGuests:   p.MaxGuests,
		MinNights:   p.MinNights,
		Bedrooms:    p.Bedrooms,
	}, nil
}

func (s *BookingService) GetPropertyStats(propertyID string) (*entities.PropertyStats, error) {
	stats, err := s.Properties.GetPropertyStats(propertyID)
	if err != nil {
		return nil, err
	}
	stats.ComputedAt = time.Now().UTC()
	return stats, nil
}

// GetBlockedDates returns the occupied spans consumed by calendar clients.
func (s *BookingService) GetBlockedDates(propertyID string) (*entities.BlockedDatesResponse, error) {
	blocked, err := s.Reservations.GetBlockedIntervals(propertyID, "")
	if err != nil {
		return nil, err
	}
	return &entities.BlockedDatesResponse{PropertyID: propertyID, Blocked: blocked}, nil
}

// ListReservations returns a property's reservations for host dashboards,
// optionally filtered by status.
func (s *BookingService) ListReservations(propertyID, status string) ([]booking.Reservation, error) {
	rows, err := s.Reservations.ListByProperty(propertyID, status)
	if err != nil {
		return nil, err
	}
	out := make([]booking.Reservation, 0, len(rows))
	for i := range rows {
		out = append(out, *toBookingReservation(&rows[i]))
	}
	return out, nil
}

// applyTransition enforces the lifecycle table, then updates the row with a
// version guard so two racing transitions cannot both win.
func (s *BookingService) applyTransition(id string, target booking.Status) (*booking.Reservation, error) {
	res, err := s.Reservations.GetReservationByID(id)
	if err != nil {
		return nil, err
	}
	if !booking.CanTransition(booking.Status(res.Status), target) {
		return nil, &apperrors.StateError{From: res.Status, To: string(target)}
	}
	updated, err := s.Reservations.UpdateStatus(id, string(target), res.Version)
	if err != nil {
		return nil, err
	}
	if s.notifier != nil {
		s.notifier.SendStatusSMS(updated)
	}
	return toBookingReservation(updated), nil
}

func toBookingReservation(res *db.Reservation) *booking.Reservation {
	return &booking.Reservation{
		ID:              res.ID,
		PropertyID:      res.PropertyID,
		Status:          booking.Status(res.Status),
		CheckIn:         res.CheckIn,
		CheckOut:        res.CheckOut,
		Guests:          res.Guests,
		TotalAmount:     res.TotalAmount,
		PaymentStatus:   booking.PaymentStatus(res.PaymentStatus),
		PaymentIntentID: res.StripePaymentIntentID,
		Version:         res.Version,
		CreatedAt:       res.CreatedAt,
		UpdatedAt:       res.UpdatedAt,
	}
}
