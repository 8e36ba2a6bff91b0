package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"staybook/internal/db"
	"staybook/internal/entities"
)

type PropertyRepository struct {
	DB *sql.DB
}

func NewPropertyRepository(sqlDB *sql.DB) *PropertyRepository {
	return &PropertyRepository{DB: sqlDB}
}

func (r *PropertyRepository) GetPropertyByID(id string) (*db.Property, error) {
	var p db.Property
	query := `
		SELECT id, host_id, title, location, nightly_rate, cleaning_fee,
		       max_guests, min_nights, bedrooms, created_at
		FROM properties WHERE id = $1`
	err := r.DB.QueryRow(query, id).Scan(
		&p.ID, &p.HostID, &p.Title, &p.Location, &p.NightlyRate, &p.CleaningFee,
		&p.MaxGuests, &p.MinNights, &p.Bedrooms, &p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("property '%s' not found: %w", id, err)
		}
		return nil, fmt.Errorf("error querying property: %w", err)
	}
	return &p, nil
}

// SearchProperties filters by the closed query struct and paginates. A date
// range in the query drops properties with overlapping occupied nights.
func (r *PropertyRepository) SearchProperties(q entities.SearchQuery) (*entities.PropertySearchPage, error) {
	where := ` WHERE 1=1`
	args := []interface{}{}
	idx := 1

	if q.Location != "" {
		where += ` AND p.location ILIKE $` + strconv.Itoa(idx)
		args = append(args, "%"+q.Location+"%")
		idx++
	}
	if q.Guests > 0 {
		where += ` AND p.max_guests >= $` + strconv.Itoa(idx)
		args = append(args, q.Guests)
		idx++
	}
	if q.MinPrice > 0 {
		where += ` AND p.nightly_rate >= $` + strconv.Itoa(idx)
		args = append(args, q.MinPrice)
		idx++
	}
	if q.MaxPrice > 0 {
		where += ` AND p.nightly_rate <= $` + strconv.Itoa(idx)
		args = append(args, q.MaxPrice)
		idx++
	}
	if q.Bedrooms > 0 {
		where += ` AND p.bedrooms >= $` + strconv.Itoa(idx)
		args = append(args, q.Bedrooms)
		idx++
	}
	if q.CheckIn != nil && q.CheckOut != nil {
		where += ` AND NOT EXISTS (
			SELECT 1 FROM reservations res
			WHERE res.property_id = p.id
			  AND res.status IN ('pending', 'confirmed')
			  AND res.check_in < $` + strconv.Itoa(idx+1) + `
			  AND res.check_out > $` + strconv.Itoa(idx) + `
		)`
		args = append(args, *q.CheckIn, *q.CheckOut)
		idx += 2
	}

	var total int
	if err := r.DB.QueryRow(`SELECT COUNT(*) FROM properties p`+where, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("error counting properties: %w", err)
	}

	page := q.Page
	if page < 1 {
		page = 1
	}
	perPage := q.PerPage
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	query := `
		SELECT p.id, p.host_id, p.title, p.location, p.nightly_rate, p.cleaning_fee,
		       p.max_guests, p.min_nights, p.bedrooms
		FROM properties p` + where + `
		ORDER BY p.created_at DESC
		LIMIT $` + strconv.Itoa(idx) + ` OFFSET $` + strconv.Itoa(idx+1)
	args = append(args, perPage, (page-1)*perPage)

	rows, err := r.DB.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("error searching properties: %w", err)
	}
	defer rows.Close()

	result := &entities.PropertySearchPage{Page: page, PerPage: perPage, Total: total}
	for rows.Next() {
		var p entities.PropertyResponse
		err := rows.Scan(
			&p.ID, &p.HostID, &p.Title, &p.Location, &p.NightlyRate, &p.CleaningFee,
			&p.MaxGuests, &p.MinNights, &p.Bedrooms,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning property: %w", err)
		}
		result.Properties = append(result.Properties, p)
	}
	return result, rows.Err()
}

// GetPropertyStats aggregates the dashboard numbers for one property.
func (r *PropertyRepository) GetPropertyStats(propertyID string) (*entities.PropertyStats, error) {
	query := `
		SELECT
			COUNT(*) FILTER (WHERE check_in > NOW()) AS upcoming,
			COALESCE(SUM(check_out::date - check_in::date), 0) AS nights,
			COALESCE(SUM(total_amount), 0) AS revenue
		FROM reservations
		WHERE property_id = $1 AND status IN ('pending', 'confirmed', 'completed')`

	stats := &entities.PropertyStats{PropertyID: propertyID}
	err := r.DB.QueryRow(query, propertyID).Scan(&stats.UpcomingStays, &stats.NightsBooked, &stats.GrossRevenue)
	if err != nil {
		return nil, fmt.Errorf("error querying property stats: %w", err)
	}
	return stats, nil
}
