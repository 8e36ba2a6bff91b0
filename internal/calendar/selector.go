package calendar

import "time"

// Mode controls whether the selector finalizes on the first click or collects
// a check-in/check-out pair.
type Mode int

const (
	ModeSingle Mode = iota
	ModeRange
)

// Range is a finalized selection. Start == End is a valid single-day pick;
// callers wanting a minimum span enforce it themselves.
type Range struct {
	Start time.Time
	End   time.Time
}

// Selector is the calendar widget's state machine. In range mode it moves
// Empty -> start selected -> complete; completing a range emits it and the
// next click begins a fresh selection. Clicking a disabled day never changes
// state, and month navigation only moves VisibleMonth.
type Selector struct {
	Mode         Mode
	VisibleMonth YearMonth

	MinDate *time.Time
	MaxDate *time.Time
	Blocked []Interval

	RangeStart *time.Time
	RangeEnd   *time.Time
	HoverDate  *time.Time

	// awaitingEnd is true between the first and second click of a range.
	awaitingEnd bool
}

func NewSelector(mode Mode, visible YearMonth) *Selector {
	return &Selector{Mode: mode, VisibleMonth: visible}
}

func (s *Selector) NextMonth() {
	s.VisibleMonth = s.VisibleMonth.Next()
}

func (s *Selector) PrevMonth() {
	s.VisibleMonth = s.VisibleMonth.Prev()
}

// Reset clears all selection and hover state. The widget calls it on close.
func (s *Selector) Reset() {
	s.RangeStart = nil
	s.RangeEnd = nil
	s.HoverDate = nil
	s.awaitingEnd = false
}

// SetHover records the hovered day while a range start is pending. It is
// purely presentational; nothing is committed until the second click.
func (s *Selector) SetHover(date time.Time) {
	if !s.awaitingEnd {
		return
	}
	d := DayOf(date)
	s.HoverDate = &d
}

func (s *Selector) ClearHover() {
	s.HoverDate = nil
}

// Preview returns the range that would result from clicking the hovered day:
// [min(start, hover), max(start, hover)]. ok is false when no preview applies.
func (s *Selector) Preview() (Range, bool) {
	if !s.awaitingEnd || s.RangeStart == nil || s.HoverDate == nil {
		return Range{}, false
	}
	start, end := *s.RangeStart, *s.HoverDate
	if end.Before(start) {
		start, end = end, start
	}
	return Range{Start: start, End: end}, true
}

// SelectDate handles a click on date. The returned Range is meaningful only
// when done is true: in single mode every valid click finalizes, in range mode
// the second valid click does. Disabled days are a no-op in every state.
func (s *Selector) SelectDate(date time.Time) (Range, bool) {
	if IsDisabled(date, s.MinDate, s.MaxDate, s.Blocked) {
		return Range{}, false
	}
	day := DayOf(date)

	if s.Mode == ModeSingle {
		s.RangeStart = &day
		s.RangeEnd = &day
		return Range{Start: day, End: day}, true
	}

	if !s.awaitingEnd {
		s.RangeStart = &day
		s.RangeEnd = nil
		s.HoverDate = nil
		s.awaitingEnd = true
		return Range{}, false
	}

	start := *s.RangeStart
	end := day
	if end.Before(start) {
		start, end = end, start
	}
	s.RangeStart = &start
	s.RangeEnd = &end
	s.HoverDate = nil
	s.awaitingEnd = false
	return Range{Start: start, End: end}, true
}
