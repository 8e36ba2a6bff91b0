package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"staybook/internal/availability"
	"staybook/internal/db"
)

var ErrVersionConflict = errors.New("reservation was modified concurrently")

type ReservationRepository struct {
	DB *sql.DB
}

func NewReservationRepository(sqlDB *sql.DB) *ReservationRepository {
	return &ReservationRepository{DB: sqlDB}
}

const reservationColumns = `id, property_id, guest_name, guest_email, guest_phone, status,
	check_in, check_out, guests, total_amount, payment_status,
	stripe_session_id, stripe_payment_intent_id, version, created_at, updated_at`

func scanReservation(row *sql.Row) (*db.Reservation, error) {
	var res db.Reservation
	err := row.Scan(
		&res.ID, &res.PropertyID, &res.GuestName, &res.GuestEmail, &res.GuestPhone, &res.Status,
		&res.CheckIn, &res.CheckOut, &res.Guests, &res.TotalAmount, &res.PaymentStatus,
		&res.StripeSessionID, &res.StripePaymentIntentID, &res.Version, &res.CreatedAt, &res.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (r *ReservationRepository) CreateReservation(res *db.Reservation) error {
	query := `
		INSERT INTO reservations
		(id, property_id, guest_name, guest_email, guest_phone, status, check_in, check_out,
		 guests, total_amount, payment_status, stripe_session_id, stripe_payment_intent_id,
		 version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING created_at, updated_at`
	return r.DB.QueryRow(query,
		res.ID,
		res.PropertyID,
		res.GuestName,
		res.GuestEmail,
		res.GuestPhone,
		res.Status,
		res.CheckIn,
		res.CheckOut,
		res.Guests,
		res.TotalAmount,
		res.PaymentStatus,
		res.StripeSessionID,
		res.StripePaymentIntentID,
		res.Version,
		res.CreatedAt,
		res.UpdatedAt,
	).Scan(&res.CreatedAt, &res.UpdatedAt)
}

func (r *ReservationRepository) GetReservationByID(id string) (*db.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = $1`
	res, err := scanReservation(r.DB.QueryRow(query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("reservation '%s' not found: %w", id, err)
		}
		return nil, fmt.Errorf("error querying reservation: %w", err)
	}
	return res, nil
}

func (r *ReservationRepository) GetReservationByStripeSessionID(sessionID string) (*db.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE stripe_session_id = $1`
	res, err := scanReservation(r.DB.QueryRow(query, sessionID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("reservation for session '%s' not found: %w", sessionID, err)
		}
		return nil, fmt.Errorf("error querying reservation: %w", err)
	}
	return res, nil
}

// GetBlockedIntervals returns the occupied spans for a property: the
// check-in/check-out pairs of every reservation that still holds nights.
// excludeID drops one reservation from the set, for re-booking flows.
func (r *ReservationRepository) GetBlockedIntervals(propertyID, excludeID string) ([]availability.BlockedInterval, error) {
	query := `
		SELECT check_in, check_out
		FROM reservations
		WHERE property_id = $1
		  AND status IN ('pending', 'confirmed')
		  AND id != $2
		ORDER BY check_in`

	rows, err := r.DB.Query(query, propertyID, excludeID)
	if err != nil {
		return nil, fmt.Errorf("error querying blocked intervals: %w", err)
	}
	defer rows.Close()

	var blocked []availability.BlockedInterval
	for rows.Next() {
		var iv availability.BlockedInterval
		if err := rows.Scan(&iv.Start, &iv.End); err != nil {
			return nil, fmt.Errorf("error scanning blocked interval: %w", err)
		}
		blocked = append(blocked, iv)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error after iterating blocked intervals: %w", err)
	}
	return blocked, nil
}

// FindConflicting returns the reservations whose occupied nights overlap the
// candidate stay. A reservation's checkout day does not count as occupied, so
// back-to-back turnover on the same day is not a conflict.
func (r *ReservationRepository) FindConflicting(propertyID string, checkIn, checkOut time.Time, excludeID string) ([]availability.BlockedInterval, error) {
	query := `
		SELECT check_in, check_out
		FROM reservations
		WHERE property_id = $1
		  AND status IN ('pending', 'confirmed')
		  AND id != $4
		  AND check_in < $3
		  AND check_out > $2
		ORDER BY check_in`

	rows, err := r.DB.Query(query, propertyID, checkIn, checkOut, excludeID)
	if err != nil {
		return nil, fmt.Errorf("error querying conflicting reservations: %w", err)
	}
	defer rows.Close()

	var conflicting []availability.BlockedInterval
	for rows.Next() {
		var iv availability.BlockedInterval
		if err := rows.Scan(&iv.Start, &iv.End); err != nil {
			return nil, fmt.Errorf("error scanning conflicting reservation: %w", err)
		}
		conflicting = append(conflicting, iv)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error after iterating conflicting reservations: %w", err)
	}
	return conflicting, nil
}

// UpdateStatus moves a reservation to newStatus, bumping its version. The
// expectedVersion guard rejects a transition raced by a concurrent commit.
func (r *ReservationRepository) UpdateStatus(id, newStatus string, expectedVersion int64) (*db.Reservation, error) {
	query := `
		UPDATE reservations
		SET status = $2, version = version + 1, updated_at = NOW()
		WHERE id = $1 AND version = $3
		RETURNING ` + reservationColumns
	res, err := scanReservation(r.DB.QueryRow(query, id, newStatus, expectedVersion))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrVersionConflict
		}
		return nil, fmt.Errorf("error updating reservation status: %w", err)
	}
	return res, nil
}

// UpdatePayment records the payment outcome reported by the processor. Empty
// identifiers keep whatever is already stored.
func (r *ReservationRepository) UpdatePayment(id, paymentStatus, sessionID, paymentIntentID string) error {
	query := `
		UPDATE reservations
		SET payment_status = $2,
		    stripe_session_id = COALESCE(NULLIF($3, ''), stripe_session_id),
		    stripe_payment_intent_id = COALESCE(NULLIF($4, ''), stripe_payment_intent_id),
		    version = version + 1, updated_at = NOW()
		WHERE id = $1`
	_, err := r.DB.Exec(query, id, paymentStatus, sessionID, paymentIntentID)
	if err != nil {
		return fmt.Errorf("error updating payment info for reservation %s: %w", id, err)
	}
	return nil
}

// ListByProperty returns a property's reservations, newest stay first.
func (r *ReservationRepository) ListByProperty(propertyID, status string) ([]db.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE property_id = $1`
	args := []interface{}{propertyID}
	if status != "" {
		query += ` AND status = $2`
		args = append(args, status)
	}
	query += ` ORDER BY check_in DESC`

	rows, err := r.DB.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reservations []db.Reservation
	for rows.Next() {
		var res db.Reservation
		err := rows.Scan(
			&res.ID, &res.PropertyID, &res.GuestName, &res.GuestEmail, &res.GuestPhone, &res.Status,
			&res.CheckIn, &res.CheckOut, &res.Guests, &res.TotalAmount, &res.PaymentStatus,
			&res.StripeSessionID, &res.StripePaymentIntentID, &res.Version, &res.CreatedAt, &res.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		reservations = append(reservations, res)
	}
	return reservations, rows.Err()
}
