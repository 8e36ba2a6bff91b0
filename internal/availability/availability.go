// Package availability decides whether a candidate stay collides with
// existing reservations and prices valid stays. A reservation occupies the
// nights [check-in, check-out), so a checkout day is vacated and re-bookable
// as another guest's check-in the same day.
package availability

import (
	"fmt"
	"time"

	"staybook/internal/calendar"
	apperrors "staybook/internal/errors"
)

// DateRange is a candidate stay. Start and End are check-in and check-out
// days; time-of-day is ignored.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// BlockedInterval is an existing reservation's occupied span for a property.
// The set for a property is replaced wholesale on every fetch.
type BlockedInterval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// ConflictResult lists every blocked interval the candidate overlaps.
type ConflictResult struct {
	HasConflict bool              `json:"has_conflict"`
	Conflicting []BlockedInterval `json:"conflicting,omitempty"`
}

// CheckConflict reports which blocked intervals the candidate range overlaps.
// Overlap means sharing at least one occupied night, so a candidate that
// starts on an interval's checkout day, or ends on its check-in day, does not
// conflict. Missing or inverted dates are a ValidationError, never a conflict.
func CheckConflict(candidate DateRange, blocked []BlockedInterval) (ConflictResult, error) {
	if candidate.Start.IsZero() || candidate.End.IsZero() {
		return ConflictResult{}, apperrors.NewValidationError("dates", "check-in and check-out are required")
	}
	start := calendar.DayOf(candidate.Start)
	end := calendar.DayOf(candidate.End)
	if end.Before(start) {
		return ConflictResult{}, apperrors.NewValidationError("dates", "check-out must not precede check-in")
	}

	var result ConflictResult
	for _, b := range blocked {
		if start.Before(calendar.DayOf(b.End)) && end.After(calendar.DayOf(b.Start)) {
			result.HasConflict = true
			result.Conflicting = append(result.Conflicting, b)
		}
	}
	return result, nil
}

// Bounds restricts which stays a property accepts. Zero fields are unbounded.
type Bounds struct {
	MinDate   *time.Time
	MaxDate   *time.Time
	MinNights int
	MaxNights int
}

// ValidateRange checks a candidate stay against the property's bounds.
func (b Bounds) ValidateRange(candidate DateRange) error {
	n, err := Nights(candidate.Start, candidate.End)
	if err != nil {
		return err
	}
	if b.MinNights > 0 && n < b.MinNights {
		return apperrors.NewValidationError("dates", fmt.Sprintf("stay must be at least %d nights", b.MinNights))
	}
	if b.MaxNights > 0 && n > b.MaxNights {
		return apperrors.NewValidationError("dates", fmt.Sprintf("stay must be at most %d nights", b.MaxNights))
	}
	if b.MinDate != nil && calendar.DayOf(candidate.Start).Before(calendar.DayOf(*b.MinDate)) {
		return apperrors.NewValidationError("check_in", "before the earliest bookable date")
	}
	if b.MaxDate != nil && calendar.DayOf(candidate.End).After(calendar.DayOf(*b.MaxDate)) {
		return apperrors.NewValidationError("check_out", "after the latest bookable date")
	}
	return nil
}

// Nights returns the night count of a stay. Zero and negative counts are
// rejected with a ValidationError.
func Nights(checkIn, checkOut time.Time) (int, error) {
	if checkIn.IsZero() || checkOut.IsZero() {
		return 0, apperrors.NewValidationError("dates", "check-in and check-out are required")
	}
	n := int(calendar.DayOf(checkOut).Sub(calendar.DayOf(checkIn)).Hours() / 24)
	if n <= 0 {
		return 0, apperrors.NewValidationError("dates", "stay must be at least one night")
	}
	return n, nil
}
