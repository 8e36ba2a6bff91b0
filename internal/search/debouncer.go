// Package search couples free-text/location input with delayed, deduplicated
// availability queries. Each input field has its own quiescence window, and
// responses are keyed by request generation so a superseded query's late
// result is dropped instead of overwriting a newer one.
package search

import (
	"context"
	"sync"
	"time"

	"staybook/internal/entities"
)

// DefaultDelay is the quiescence window applied when none is configured.
const DefaultDelay = 400 * time.Millisecond

// Filters is the closed set of structured search filters. It stays free of
// slices and maps so two filter states compare with ==.
type Filters struct {
	CheckIn  time.Time
	CheckOut time.Time
	Guests   int
	MinPrice int64
	MaxPrice int64
	Bedrooms int
}

// SearchFunc issues the actual backend query once a debounce window closes.
type SearchFunc func(ctx context.Context, query string, filters Filters) (*entities.PropertySearchPage, error)

// ResultFunc receives each non-stale response in generation order.
type ResultFunc func(page *entities.PropertySearchPage, err error)

// Debouncer holds the live input values and the last values actually sent.
// SetQuery and SetFilters restart only their own field's timer; when either
// window closes, one request is issued for the combined current state.
type Debouncer struct {
	mu sync.Mutex

	delay   time.Duration
	search  SearchFunc
	deliver ResultFunc

	liveQuery string
	sentQuery string

	liveFilters Filters
	sentFilters Filters

	queryTimer  *time.Timer
	filterTimer *time.Timer

	generation uint64
	delivered  uint64

	closed bool
}

func NewDebouncer(delay time.Duration, search SearchFunc, deliver ResultFunc) *Debouncer {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Debouncer{delay: delay, search: search, deliver: deliver}
}

// SetQuery records a keystroke in the free-text field and restarts its
// debounce window. Edits to the structured filters are unaffected.
func (d *Debouncer) SetQuery(q string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	d.liveQuery = q
	if d.queryTimer != nil {
		d.queryTimer.Stop()
	}
	d.queryTimer = time.AfterFunc(d.delay, d.flushQuery)
}

// SetFilters records a structured-filter edit and restarts the filter
// window only.
func (d *Debouncer) SetFilters(f Filters) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	d.liveFilters = f
	if d.filterTimer != nil {
		d.filterTimer.Stop()
	}
	d.filterTimer = time.AfterFunc(d.delay, d.flushFilters)
}

// IsSearching reports whether a debounce window is open: the live input
// differs from what was last sent.
func (d *Debouncer) IsSearching() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.liveQuery != d.sentQuery || d.liveFilters != d.sentFilters
}

// Close stops both timers; no further requests are issued. In-flight
// responses are still dropped by the generation check.
func (d *Debouncer) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	if d.queryTimer != nil {
		d.queryTimer.Stop()
	}
	if d.filterTimer != nil {
		d.filterTimer.Stop()
	}
}

func (d *Debouncer) flushQuery() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.sentQuery = d.liveQuery
	d.fireLocked()
	d.mu.Unlock()
}

func (d *Debouncer) flushFilters() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.sentFilters = d.liveFilters
	d.fireLocked()
	d.mu.Unlock()
}

// fireLocked issues one request for the current debounced state. Callers
// hold d.mu. The response is delivered only if no newer request has been
// issued or delivered by the time it arrives.
func (d *Debouncer) fireLocked() {
	d.generation++
	gen := d.generation
	query := d.sentQuery
	filters := d.sentFilters

	go func() {
		page, err := d.search(context.Background(), query, filters)

		d.mu.Lock()
		stale := gen < d.generation || gen <= d.delivered || d.closed
		if !stale {
			d.delivered = gen
		}
		d.mu.Unlock()

		if stale {
			return
		}
		if d.deliver != nil {
			d.deliver(page, err)
		}
	}()
}
