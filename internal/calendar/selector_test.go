package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSingleModeFinalizesImmediately(t *testing.T) {
	s := NewSelector(ModeSingle, YearMonth{2024, time.March})
	r, done := s.SelectDate(date(2024, time.March, 12))
	require.True(t, done)
	assert.Equal(t, date(2024, time.March, 12), r.Start)
	assert.Equal(t, date(2024, time.March, 12), r.End)
}

func TestRangeModeTwoPhase(t *testing.T) {
	s := NewSelector(ModeRange, YearMonth{2024, time.March})

	_, done := s.SelectDate(date(2024, time.March, 10))
	require.False(t, done)
	require.NotNil(t, s.RangeStart)
	assert.Equal(t, date(2024, time.March, 10), *s.RangeStart)
	assert.Nil(t, s.RangeEnd)

	r, done := s.SelectDate(date(2024, time.March, 14))
	require.True(t, done)
	assert.Equal(t, date(2024, time.March, 10), r.Start)
	assert.Equal(t, date(2024, time.March, 14), r.End)
}

func TestRangeModeSwapsWhenSecondClickEarlier(t *testing.T) {
	s := NewSelector(ModeRange, YearMonth{2024, time.March})
	s.SelectDate(date(2024, time.March, 20))
	r, done := s.SelectDate(date(2024, time.March, 12))
	require.True(t, done)
	assert.Equal(t, date(2024, time.March, 12), r.Start)
	assert.Equal(t, date(2024, time.March, 20), r.End)
}

func TestRangeModeSameDayIsValid(t *testing.T) {
	s := NewSelector(ModeRange, YearMonth{2024, time.March})
	s.SelectDate(date(2024, time.March, 10))
	r, done := s.SelectDate(date(2024, time.March, 10))
	require.True(t, done)
	assert.Equal(t, r.Start, r.End)
}

func TestRangeModeNextCycleStartsFresh(t *testing.T) {
	s := NewSelector(ModeRange, YearMonth{2024, time.March})
	s.SelectDate(date(2024, time.March, 10))
	s.SelectDate(date(2024, time.March, 14))

	// The completed range is done; the next click begins a new selection.
	_, done := s.SelectDate(date(2024, time.March, 20))
	require.False(t, done)
	assert.Equal(t, date(2024, time.March, 20), *s.RangeStart)
	assert.Nil(t, s.RangeEnd)
}

func TestDisabledClickIsNoOpInEveryState(t *testing.T) {
	min := date(2024, time.March, 5)
	s := NewSelector(ModeRange, YearMonth{2024, time.March})
	s.MinDate = &min
	s.Blocked = []Interval{{Start: date(2024, time.March, 15), End: date(2024, time.March, 18)}}

	// Empty state: disabled click changes nothing.
	_, done := s.SelectDate(date(2024, time.March, 2))
	assert.False(t, done)
	assert.Nil(t, s.RangeStart)

	// Clicking the same disabled date twice never changes state.
	before := *s
	s.SelectDate(date(2024, time.March, 16))
	s.SelectDate(date(2024, time.March, 16))
	assert.Equal(t, before, *s)

	// Start-selected state: disabled click keeps the pending start.
	s.SelectDate(date(2024, time.March, 10))
	_, done = s.SelectDate(date(2024, time.March, 16))
	assert.False(t, done)
	assert.Equal(t, date(2024, time.March, 10), *s.RangeStart)
	assert.Nil(t, s.RangeEnd)
}

func TestHoverPreview(t *testing.T) {
	s := NewSelector(ModeRange, YearMonth{2024, time.March})

	// No preview before a start is picked.
	s.SetHover(date(2024, time.March, 8))
	_, ok := s.Preview()
	assert.False(t, ok)

	s.SelectDate(date(2024, time.March, 10))
	s.SetHover(date(2024, time.March, 14))
	r, ok := s.Preview()
	require.True(t, ok)
	assert.Equal(t, date(2024, time.March, 10), r.Start)
	assert.Equal(t, date(2024, time.March, 14), r.End)

	// Hovering before the start previews the swapped order.
	s.SetHover(date(2024, time.March, 6))
	r, ok = s.Preview()
	require.True(t, ok)
	assert.Equal(t, date(2024, time.March, 6), r.Start)
	assert.Equal(t, date(2024, time.March, 10), r.End)

	// Completing the range clears the hover.
	s.SelectDate(date(2024, time.March, 14))
	assert.Nil(t, s.HoverDate)
}

func TestMonthNavigationDoesNotTouchSelection(t *testing.T) {
	s := NewSelector(ModeRange, YearMonth{2024, time.March})
	s.SelectDate(date(2024, time.March, 10))

	s.NextMonth()
	s.NextMonth()
	s.PrevMonth()
	assert.Equal(t, YearMonth{2024, time.April}, s.VisibleMonth)
	assert.Equal(t, date(2024, time.March, 10), *s.RangeStart)
	assert.Nil(t, s.RangeEnd)
}

func TestReset(t *testing.T) {
	s := NewSelector(ModeRange, YearMonth{2024, time.March})
	s.SelectDate(date(2024, time.March, 10))
	s.SetHover(date(2024, time.March, 12))
	s.Reset()
	assert.Nil(t, s.RangeStart)
	assert.Nil(t, s.RangeEnd)
	assert.Nil(t, s.HoverDate)

	// After reset the next click starts a new range.
	_, done := s.SelectDate(date(2024, time.March, 20))
	assert.False(t, done)
}
