package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestStore() (*Store, *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)}
	return NewStoreWithClock(5*time.Minute, time.Hour, clock), clock
}

func TestKeyString(t *testing.T) {
	assert.Equal(t, "reservation/r1", Key{EntityType: "reservation", ID: "r1"}.String())
	assert.Equal(t, "reservations?status=pending", Key{EntityType: "reservations", Params: "status=pending"}.String())
	assert.Equal(t, "upcoming", Key{EntityType: "upcoming"}.String())
}

func TestKeyMatches(t *testing.T) {
	k := Key{EntityType: "reservations", ID: "p1", Params: "status=pending"}
	assert.True(t, k.Matches(Key{EntityType: "reservations"}))
	assert.True(t, k.Matches(Key{EntityType: "reservations", ID: "p1"}))
	assert.True(t, k.Matches(Key{EntityType: "reservations", ID: "p1", Params: "status="}))
	assert.False(t, k.Matches(Key{EntityType: "reservations", ID: "p2"}))
	assert.False(t, k.Matches(Key{EntityType: "properties"}))
	assert.False(t, k.Matches(Key{}))
}

func TestWriteThenRead(t *testing.T) {
	s, clock := newTestStore()
	key := Key{EntityType: "reservation", ID: "r1"}

	s.Write(key, "v1")
	entry, ok := s.Read(key)
	require.True(t, ok)
	assert.Equal(t, "v1", entry.Data)
	assert.Equal(t, clock.Now(), entry.FetchedAt)
	assert.False(t, entry.Stale(clock.Now()))

	_, ok = s.Read(Key{EntityType: "reservation", ID: "missing"})
	assert.False(t, ok)
}

func TestWriteIsLastWriteWins(t *testing.T) {
	s, _ := newTestStore()
	key := Key{EntityType: "reservation", ID: "r1"}
	s.Write(key, "v1")
	s.Write(key, "v2")
	entry, _ := s.Read(key)
	assert.Equal(t, "v2", entry.Data)
}

func TestStalenessWindow(t *testing.T) {
	s, clock := newTestStore()
	key := Key{EntityType: "reservation", ID: "r1"}
	s.Write(key, "v1")

	clock.Advance(5 * time.Minute)
	entry, _ := s.Read(key)
	assert.False(t, entry.Stale(clock.Now()))

	clock.Advance(time.Second)
	entry, _ = s.Read(key)
	assert.True(t, entry.Stale(clock.Now()))
}

func TestInvalidateMarksPrefixStale(t *testing.T) {
	s, clock := newTestStore()
	listKey := Key{EntityType: "reservations", Params: "status=pending"}
	otherKey := Key{EntityType: "upcoming"}
	s.Write(listKey, "list")
	s.Write(otherKey, "upcoming")

	n := s.Invalidate(Key{EntityType: "reservations"})
	assert.Equal(t, 1, n)

	entry, ok := s.Read(listKey)
	require.True(t, ok)
	assert.True(t, entry.Stale(clock.Now()))
	assert.Equal(t, "list", entry.Data, "stale data stays readable")

	entry, _ = s.Read(otherKey)
	assert.False(t, entry.Stale(clock.Now()))
}

func TestGCEvictsUnobservedEntries(t *testing.T) {
	s, clock := newTestStore()
	pinned := Key{EntityType: "reservation", ID: "pinned"}
	loose := Key{EntityType: "reservation", ID: "loose"}
	s.Write(pinned, "a")
	s.Write(loose, "b")
	s.Observe(pinned)

	clock.Advance(time.Hour + time.Second)
	n := s.GC()
	assert.Equal(t, 1, n)

	_, ok := s.Read(loose)
	assert.False(t, ok)
	_, ok = s.Read(pinned)
	assert.True(t, ok)

	// Released and past its window on the next sweep.
	s.Release(pinned)
	clock.Advance(time.Hour + time.Second)
	assert.Equal(t, 1, s.GC())
	assert.Equal(t, 0, s.Len())
}

func TestGCSkipsRecentlyAccessed(t *testing.T) {
	s, clock := newTestStore()
	key := Key{EntityType: "reservation", ID: "r1"}
	s.Write(key, "a")

	clock.Advance(50 * time.Minute)
	s.Read(key) // refreshes last access
	clock.Advance(50 * time.Minute)
	assert.Equal(t, 0, s.GC())
}

func TestStartGCSweepsPeriodically(t *testing.T) {
	s, clock := newTestStore()
	s.Write(Key{EntityType: "reservation", ID: "r1"}, "a")
	clock.Advance(time.Hour + time.Second)

	stop := s.StartGC(5 * time.Millisecond)
	defer stop()
	require.Eventually(t, func() bool { return s.Len() == 0 }, 2*time.Second, time.Millisecond)
}

func TestOptimisticRollbackRestoresVerbatim(t *testing.T) {
	s, _ := newTestStore()
	key := Key{EntityType: "reservation", ID: "r1"}
	original := &struct{ Status string }{Status: "pending"}
	s.Write(key, original)
	before, _ := s.Read(key)

	m := s.ApplyOptimistic(key, func(current any) any {
		return &struct{ Status string }{Status: "confirmed"}
	})

	entry, _ := s.Read(key)
	assert.Equal(t, "confirmed", entry.Data.(*struct{ Status string }).Status)

	require.NoError(t, m.Rollback())
	after, _ := s.Read(key)
	assert.Same(t, original, after.Data, "rollback restores the captured value by reference")
	assert.Equal(t, before.FetchedAt, after.FetchedAt)
	assert.Equal(t, before.Version, after.Version)
}

func TestOptimisticCommitBumpsVersion(t *testing.T) {
	s, clock := newTestStore()
	key := Key{EntityType: "reservation", ID: "r1"}
	s.Write(key, "v1")
	before, _ := s.Read(key)

	m := s.ApplyOptimistic(key, func(any) any { return "optimistic" })
	clock.Advance(time.Minute)
	require.NoError(t, m.Commit("final"))

	after, _ := s.Read(key)
	assert.Equal(t, "final", after.Data)
	assert.Equal(t, before.Version+1, after.Version)
	assert.Equal(t, clock.Now(), after.FetchedAt)
}

func TestOptimisticCreateRollbackRemovesEntry(t *testing.T) {
	s, _ := newTestStore()
	key := Key{EntityType: "reservation", ID: "tmp-1"}

	m := s.ApplyOptimistic(key, func(current any) any {
		assert.Nil(t, current)
		return "synthetic"
	})
	_, ok := s.Read(key)
	require.True(t, ok)

	require.NoError(t, m.Rollback())
	_, ok = s.Read(key)
	assert.False(t, ok)
}

func TestOptimisticExactlyOneSettlement(t *testing.T) {
	s, _ := newTestStore()
	key := Key{EntityType: "reservation", ID: "r1"}
	s.Write(key, "v1")

	m := s.ApplyOptimistic(key, func(any) any { return "x" })
	require.NoError(t, m.Commit("final"))
	assert.ErrorIs(t, m.Rollback(), ErrSettled)
	assert.ErrorIs(t, m.Commit("again"), ErrSettled)
}

func TestVersionRaceNewerCommitWins(t *testing.T) {
	s, _ := newTestStore()
	key := Key{EntityType: "reservation", ID: "r1"}
	s.Write(key, "original")

	// A is slow and will eventually fail; B lands while A is in flight.
	a := s.ApplyOptimistic(key, func(any) any { return "a-optimistic" })
	b := s.ApplyOptimistic(key, func(any) any { return "b-optimistic" })
	require.NoError(t, b.Commit("b-final"))

	// A's failure arrives after B committed: the rollback is skipped.
	require.NoError(t, a.Rollback())
	entry, _ := s.Read(key)
	assert.Equal(t, "b-final", entry.Data)
}

func TestRollbackAppliesWhenNoNewerCommit(t *testing.T) {
	s, _ := newTestStore()
	key := Key{EntityType: "reservation", ID: "r1"}
	s.Write(key, "original")

	m := s.ApplyOptimistic(key, func(any) any { return "optimistic" })
	require.NoError(t, m.Rollback())
	entry, _ := s.Read(key)
	assert.Equal(t, "original", entry.Data)
}

func TestDrop(t *testing.T) {
	s, _ := newTestStore()
	key := Key{EntityType: "reservation", ID: "tmp-1"}
	s.Write(key, "v")
	s.Observe(key)
	s.Drop(key)
	_, ok := s.Read(key)
	assert.False(t, ok)
}
