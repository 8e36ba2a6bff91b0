// Package cache is the client-side store for reservation and property state.
// Entries carry a staleness window after which they must be revalidated and a
// GC window after which unobserved entries are evicted. All mutation flows go
// through ApplyOptimistic/Commit/Rollback; plain Write is for fetch results.
package cache

import (
	"strings"
	"sync"
	"time"
)

// Clock abstracts time so staleness and GC are testable.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Key addresses one cached value: an entity type, an optional entity id and
// optional query parameters (for parameterized list views).
type Key struct {
	EntityType string
	ID         string
	Params     string
}

func (k Key) String() string {
	s := k.EntityType
	if k.ID != "" {
		s += "/" + k.ID
	}
	if k.Params != "" {
		s += "?" + k.Params
	}
	return s
}

// Matches reports whether k falls under prefix: same entity type, and each
// non-empty prefix component equal. An all-empty prefix matches nothing.
func (k Key) Matches(prefix Key) bool {
	if prefix.EntityType == "" || prefix.EntityType != k.EntityType {
		return false
	}
	if prefix.ID != "" && prefix.ID != k.ID {
		return false
	}
	if prefix.Params != "" && !strings.HasPrefix(k.Params, prefix.Params) {
		return false
	}
	return true
}

// Entry is one cached value with its freshness metadata.
type Entry struct {
	Data       any
	FetchedAt  time.Time
	StaleAfter time.Duration
	GCAfter    time.Duration

	// Version counts committed mutations. Rollbacks compare it against
	// their snapshot to detect that a newer commit already landed.
	Version uint64

	observers  int
	lastAccess time.Time
}

// Stale reports whether the entry must be revalidated before being treated
// as authoritative. Invalidated entries are always stale.
func (e *Entry) Stale(now time.Time) bool {
	if e.FetchedAt.IsZero() {
		return true
	}
	return now.Sub(e.FetchedAt) > e.StaleAfter
}

// Store is a keyed cache of entities and derived views.
type Store struct {
	mu      sync.RWMutex
	entries map[Key]*Entry

	clock      Clock
	staleAfter time.Duration
	gcAfter    time.Duration
}

func NewStore(staleAfter, gcAfter time.Duration) *Store {
	return NewStoreWithClock(staleAfter, gcAfter, systemClock{})
}

func NewStoreWithClock(staleAfter, gcAfter time.Duration, clock Clock) *Store {
	return &Store{
		entries:    make(map[Key]*Entry),
		clock:      clock,
		staleAfter: staleAfter,
		gcAfter:    gcAfter,
	}
}

// Read returns a snapshot of the entry under key. It never blocks on the
// network; callers seeing Stale() schedule a refetch and keep rendering.
func (s *Store) Read(key Key) (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok {
		return Entry{}, false
	}
	e.lastAccess = s.clock.Now()
	return *e, true
}

// Write stores fetched data under key, refreshing FetchedAt. Concurrent
// writes to one key are last-write-wins in call order; there is no merging.
func (s *Store) Write(key Key, data any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.clock.Now()
	e := s.ensure(key, now)
	e.Data = data
	e.FetchedAt = now
	e.Version++
}

// Observe marks key as having an active observer, pinning it against GC.
func (s *Store) Observe(key Key) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.ensure(key, s.clock.Now())
	e.observers++
}

// Release undoes one Observe.
func (s *Store) Release(key Key) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entries[key]; ok && e.observers > 0 {
		e.observers--
		e.lastAccess = s.clock.Now()
	}
}

// Invalidate marks every entry under prefix stale, forcing a refetch before
// the data is treated as authoritative again. The data itself stays readable.
func (s *Store) Invalidate(prefix Key) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for k, e := range s.entries {
		if k.Matches(prefix) {
			e.FetchedAt = time.Time{}
			n++
		}
	}
	return n
}

// GC evicts entries that have gone unobserved for their GC window and
// returns how many were dropped.
func (s *Store) GC() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.clock.Now()
	n := 0
	for k, e := range s.entries {
		if e.observers == 0 && now.Sub(e.lastAccess) > e.GCAfter {
			delete(s.entries, k)
			n++
		}
	}
	return n
}

// StartGC sweeps the store every interval until the returned stop function
// is called.
func (s *Store) StartGC(interval time.Duration) (stop func()) {
	ticker := time.NewTicker(interval)
	done := make(chan struct{})
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.GC()
			case <-done:
				return
			}
		}
	}()
	return func() { close(done) }
}

// Drop removes key outright, regardless of observers. The coordinator uses
// it to retire a temporary id once the server-assigned one is committed.
func (s *Store) Drop(key Key) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
}

// Len reports the number of live entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// ensure returns the entry under key, creating a placeholder if absent.
// Callers hold s.mu.
func (s *Store) ensure(key Key, now time.Time) *Entry {
	e, ok := s.entries[key]
	if !ok {
		e = &Entry{StaleAfter: s.staleAfter, GCAfter: s.gcAfter, lastAccess: now}
		s.entries[key] = e
	}
	return e
}
