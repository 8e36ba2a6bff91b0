package cache

import (
	"errors"
	"time"
)

// ErrSettled is returned when a mutation's Commit or Rollback runs twice.
// Exactly one of the two must execute per mutation attempt.
var ErrSettled = errors.New("cache: mutation already settled")

// Mutation is the handle returned by ApplyOptimistic. It captures the
// pre-patch entry so Rollback can restore it verbatim, and its snapshot
// version so a rollback never clobbers a newer committed state.
type Mutation struct {
	store *Store
	key   Key

	prevData    any
	prevFetched time.Time
	prevVersion uint64
	existed     bool

	settled bool
}

// ApplyOptimistic applies patch to the value under key before the backing
// network call resolves, and returns the handle used to settle the attempt.
// patch receives the current data (nil when the key is absent) and must
// return a new value rather than mutating in place; Rollback restores the
// captured value by reference.
func (s *Store) ApplyOptimistic(key Key, patch func(current any) any) *Mutation {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	e, existed := s.entries[key]
	m := &Mutation{store: s, key: key, existed: existed}
	if existed {
		m.prevData = e.Data
		m.prevFetched = e.FetchedAt
		m.prevVersion = e.Version
	} else {
		e = s.ensure(key, now)
	}
	e.Data = patch(m.prevData)
	e.lastAccess = now
	return m
}

// Previous returns the pre-patch value, nil if the key was absent.
func (m *Mutation) Previous() any {
	return m.prevData
}

// Commit replaces the optimistic value with the authoritative one returned
// by the server, stamps FetchedAt and bumps the entry version.
func (m *Mutation) Commit(final any) error {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	if m.settled {
		return ErrSettled
	}
	m.settled = true

	now := m.store.clock.Now()
	e := m.store.ensure(m.key, now)
	e.Data = final
	e.FetchedAt = now
	e.Version++
	return nil
}

// Rollback restores the entry captured by ApplyOptimistic. If a newer commit
// has landed on the key since the snapshot was taken, the restore is skipped:
// the newer state wins, and a slow failing mutation cannot erase it. A key
// that was created by this mutation is removed again.
func (m *Mutation) Rollback() error {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	if m.settled {
		return ErrSettled
	}
	m.settled = true

	e, ok := m.store.entries[m.key]
	if !ok {
		return nil
	}
	if e.Version != m.prevVersion {
		// A concurrent mutation committed after our snapshot.
		return nil
	}
	if !m.existed {
		delete(m.store.entries, m.key)
		return nil
	}
	e.Data = m.prevData
	e.FetchedAt = m.prevFetched
	return nil
}
