// Package calendar implements the date-range selection engine used by the
// booking flow: month grid generation, disabled-date policy and the two-phase
// range selection state machine. Everything here works on UTC day granularity
// and never touches the network.
package calendar

import (
	"iter"
	"time"
)

// YearMonth identifies a single calendar month.
type YearMonth struct {
	Year  int
	Month time.Month
}

func YearMonthOf(t time.Time) YearMonth {
	return YearMonth{Year: t.Year(), Month: t.Month()}
}

// First returns midnight UTC of the first day of the month.
func (ym YearMonth) First() time.Time {
	return time.Date(ym.Year, ym.Month, 1, 0, 0, 0, 0, time.UTC)
}

func (ym YearMonth) Next() YearMonth {
	return YearMonthOf(ym.First().AddDate(0, 1, 0))
}

func (ym YearMonth) Prev() YearMonth {
	return YearMonthOf(ym.First().AddDate(0, -1, 0))
}

// NumDays returns the number of days in the month.
func (ym YearMonth) NumDays() int {
	return ym.First().AddDate(0, 1, -1).Day()
}

// DayOf truncates t to calendar-day granularity: midnight UTC of the same
// year/month/day. All comparisons in this package go through it, so the
// time-of-day and zone of caller-supplied values never matter.
func DayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// SameDay reports whether a and b fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	return DayOf(a).Equal(DayOf(b))
}

// Days yields the cells of a 7-column month grid: first the leading padding
// cells aligning day 1 to its weekday (Sunday = column 0), then every day of
// the month in order. Padding cells are the zero time.Time; check IsZero.
// The sequence is finite and can be ranged over any number of times.
func Days(ym YearMonth) iter.Seq[time.Time] {
	return func(yield func(time.Time) bool) {
		first := ym.First()
		for i := 0; i < int(first.Weekday()); i++ {
			if !yield(time.Time{}) {
				return
			}
		}
		for d := 0; d < ym.NumDays(); d++ {
			if !yield(first.AddDate(0, 0, d)) {
				return
			}
		}
	}
}

// Interval is an inclusive span of calendar days.
type Interval struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether d falls inside the interval, bounds included.
func (iv Interval) Contains(d time.Time) bool {
	day := DayOf(d)
	return !day.Before(DayOf(iv.Start)) && !day.After(DayOf(iv.End))
}

// IsDisabled reports whether date may not be selected: before minDate, after
// maxDate, or inside any blocked interval. Nil bounds are unbounded.
func IsDisabled(date time.Time, minDate, maxDate *time.Time, blocked []Interval) bool {
	day := DayOf(date)
	if minDate != nil && day.Before(DayOf(*minDate)) {
		return true
	}
	if maxDate != nil && day.After(DayOf(*maxDate)) {
		return true
	}
	for _, iv := range blocked {
		if iv.Contains(day) {
			return true
		}
	}
	return false
}
