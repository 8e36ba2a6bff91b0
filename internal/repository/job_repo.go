package repository

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/lib/pq"
)

type JobRepository struct {
	DB *sql.DB
}

func NewJobRepository(sqlDB *sql.DB) *JobRepository {
	return &JobRepository{DB: sqlDB}
}

// GetConfirmedIDsPastCheckout returns confirmed reservations whose checkout
// day has passed; the cron job moves them to completed.
func (r *JobRepository) GetConfirmedIDsPastCheckout() ([]string, error) {
	query := `SELECT id FROM reservations WHERE status = 'confirmed' AND check_out < NOW()`
	rows, err := r.DB.Query(query)
	if err != nil {
		return nil, fmt.Errorf("error querying confirmed reservations past checkout: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("error scanning reservation ID: %w", err)
		}
		ids = append(ids, id)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error after iterating rows: %w", err)
	}
	return ids, nil
}

// UpdateReservationStatuses moves a batch of reservations to newStatus,
// bumping each version.
func (r *JobRepository) UpdateReservationStatuses(ids []string, newStatus string) error {
	if len(ids) == 0 {
		return nil
	}
	query := `UPDATE reservations SET status = $1, version = version + 1, updated_at = NOW() WHERE id = ANY($2)`
	result, err := r.DB.Exec(query, newStatus, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("error updating reservation statuses: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Printf("Could not get rows affected: %v", err)
	} else {
		log.Printf("Updated status for %d reservations to '%s'", rowsAffected, newStatus)
	}
	return nil
}

// CancelUnpaidPendingOlderThan cancels pending reservations that never
// completed payment, freeing their nights for other guests.
func (r *JobRepository) CancelUnpaidPendingOlderThan(before time.Time) (int64, error) {
	query := `
		UPDATE reservations
		SET status = 'cancelled', version = version + 1, updated_at = NOW()
		WHERE status = 'pending' AND payment_status != 'paid' AND created_at < $1`
	result, err := r.DB.Exec(query, before)
	if err != nil {
		return 0, fmt.Errorf("error cancelling stale pending reservations: %w", err)
	}
	return result.RowsAffected()
}
