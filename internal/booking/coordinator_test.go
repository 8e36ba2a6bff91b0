package booking

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staybook/internal/availability"
	"staybook/internal/cache"
	apperrors "staybook/internal/errors"
)

type fakeAPI struct {
	mu    sync.Mutex
	calls int

	createFn   func(req CreateOrderRequest) (*Reservation, error)
	confirmFn  func(id string) (*Reservation, error)
	cancelFn   func(id, reason string) (*Reservation, error)
	completeFn func(id string) (*Reservation, error)
}

func (f *fakeAPI) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeAPI) record() {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
}

func (f *fakeAPI) CreateOrder(_ context.Context, req CreateOrderRequest) (*Reservation, error) {
	f.record()
	return f.createFn(req)
}

func (f *fakeAPI) ConfirmOrder(_ context.Context, id string) (*Reservation, error) {
	f.record()
	return f.confirmFn(id)
}

func (f *fakeAPI) CancelOrder(_ context.Context, id, reason string) (*Reservation, error) {
	f.record()
	return f.cancelFn(id, reason)
}

func (f *fakeAPI) CompleteOrder(_ context.Context, id string) (*Reservation, error) {
	f.record()
	return f.completeFn(id)
}

func (f *fakeAPI) CheckConflicts(context.Context, string, time.Time, time.Time, string) (*availability.ConflictResult, error) {
	f.record()
	return &availability.ConflictResult{}, nil
}

func (f *fakeAPI) CalculateTotal(context.Context, string, time.Time, time.Time, int) (*availability.Quote, error) {
	f.record()
	return &availability.Quote{}, nil
}

type fakePayments struct {
	sessions int
	refunds  []string
	fail     bool
}

func (p *fakePayments) CreateCheckoutSession(_ context.Context, reservationID string, amount int64, currency, email string) (string, string, error) {
	p.sessions++
	if p.fail {
		return "", "", errors.New("stripe unavailable")
	}
	return "https://pay.example/" + reservationID, "cs_" + reservationID, nil
}

func (p *fakePayments) ConfirmPaymentIntent(context.Context, string) error { return nil }

func (p *fakePayments) Refund(_ context.Context, paymentIntentID string) error {
	p.refunds = append(p.refunds, paymentIntentID)
	return nil
}

var sess = Session{UserID: "u1", Role: "guest"}

func newTestCoordinator(api BookingAPI, payments PaymentProvider) *Coordinator {
	store := cache.NewStore(5*time.Minute, time.Hour)
	return NewCoordinator(store, api, payments)
}

func seed(c *Coordinator, resv *Reservation) {
	c.Cache().Write(ReservationKey(resv.ID), resv)
}

func pendingReservation(id string) *Reservation {
	return &Reservation{
		ID:         id,
		PropertyID: "p1",
		Status:     StatusPending,
		CheckIn:    time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC),
		CheckOut:   time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC),
		Guests:     2,
		Version:    1,
	}
}

func TestCanTransition(t *testing.T) {
	assert.True(t, CanTransition(StatusPending, StatusConfirmed))
	assert.True(t, CanTransition(StatusPending, StatusCancelled))
	assert.True(t, CanTransition(StatusConfirmed, StatusCompleted))
	assert.True(t, CanTransition(StatusConfirmed, StatusCancelled))

	assert.False(t, CanTransition(StatusPending, StatusCompleted))
	assert.False(t, CanTransition(StatusCompleted, StatusCancelled))
	assert.False(t, CanTransition(StatusCancelled, StatusConfirmed))
	assert.False(t, CanTransition(StatusCompleted, StatusConfirmed))
}

func TestCancelCompletedFailsFastWithoutNetwork(t *testing.T) {
	api := &fakeAPI{}
	c := newTestCoordinator(api, nil)
	resv := pendingReservation("r1")
	resv.Status = StatusCompleted
	seed(c, resv)

	_, err := c.Cancel(context.Background(), sess, "r1", "changed plans")

	var stateErr *apperrors.StateError
	require.ErrorAs(t, err, &stateErr)
	assert.Equal(t, 0, api.count(), "illegal transition must not touch the network")

	entry, _ := c.Cache().Read(ReservationKey("r1"))
	assert.Same(t, resv, entry.Data, "cache unchanged")
}

func TestTransitionOnUnknownReservation(t *testing.T) {
	api := &fakeAPI{}
	c := newTestCoordinator(api, nil)

	_, err := c.Confirm(context.Background(), sess, "nope")
	var stateErr *apperrors.StateError
	require.ErrorAs(t, err, &stateErr)
	assert.Equal(t, 0, api.count())
}

func TestConfirmCommitsServerEntity(t *testing.T) {
	server := pendingReservation("r1")
	server.Status = StatusConfirmed
	server.Version = 2
	api := &fakeAPI{confirmFn: func(id string) (*Reservation, error) { return server, nil }}
	c := newTestCoordinator(api, nil)
	seed(c, pendingReservation("r1"))
	c.Cache().Write(cache.Key{EntityType: "upcoming"}, "aggregate")

	got, err := c.Confirm(context.Background(), sess, "r1")
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, got.Status)

	entry, _ := c.Cache().Read(ReservationKey("r1"))
	assert.Same(t, server, entry.Data)

	agg, _ := c.Cache().Read(cache.Key{EntityType: "upcoming"})
	assert.True(t, agg.Stale(time.Now()), "aggregate views invalidated after commit")
}

func TestConfirmFailureRollsBack(t *testing.T) {
	api := &fakeAPI{confirmFn: func(id string) (*Reservation, error) {
		return nil, &apperrors.NetworkError{Op: "confirm", Err: errors.New("boom")}
	}}
	c := newTestCoordinator(api, nil)
	original := pendingReservation("r1")
	seed(c, original)
	c.Cache().Write(cache.Key{EntityType: "upcoming"}, "aggregate")

	_, err := c.Confirm(context.Background(), sess, "r1")
	var netErr *apperrors.NetworkError
	require.ErrorAs(t, err, &netErr)

	entry, _ := c.Cache().Read(ReservationKey("r1"))
	assert.Same(t, original, entry.Data, "rollback restores the snapshot")

	agg, _ := c.Cache().Read(cache.Key{EntityType: "upcoming"})
	assert.False(t, agg.Stale(time.Now()), "no invalidation on failure")
}

func TestCreateReKeysTemporaryID(t *testing.T) {
	server := pendingReservation("srv-1")
	api := &fakeAPI{createFn: func(req CreateOrderRequest) (*Reservation, error) {
		assert.Equal(t, "p1", req.PropertyID)
		return server, nil
	}}
	payments := &fakePayments{}
	c := newTestCoordinator(api, payments)

	got, err := c.Create(context.Background(), sess, CreateOrderRequest{
		PropertyID: "p1",
		CheckIn:    time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC),
		CheckOut:   time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC),
		Guests:     2,
		GuestEmail: "guest@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "srv-1", got.ID)
	assert.False(t, strings.HasPrefix(got.ID, "tmp-"))

	entry, ok := c.Cache().Read(ReservationKey("srv-1"))
	require.True(t, ok)
	assert.Same(t, server, entry.Data)

	assert.Equal(t, 1, payments.sessions)
	assert.Equal(t, PaymentPending, got.PaymentStatus)
	assert.NotEmpty(t, got.CheckoutURL)
}

func TestCreateFailureRemovesSyntheticEntry(t *testing.T) {
	api := &fakeAPI{createFn: func(req CreateOrderRequest) (*Reservation, error) {
		return nil, &apperrors.NetworkError{Op: "create", Err: errors.New("down")}
	}}
	c := newTestCoordinator(api, nil)

	_, err := c.Create(context.Background(), sess, CreateOrderRequest{
		PropertyID: "p1",
		CheckIn:    time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC),
		CheckOut:   time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC),
	})
	var netErr *apperrors.NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.Equal(t, 0, c.Cache().Len(), "synthetic entry rolled away")
}

func TestCreateValidatesBeforeNetwork(t *testing.T) {
	api := &fakeAPI{}
	c := newTestCoordinator(api, nil)

	_, err := c.Create(context.Background(), sess, CreateOrderRequest{
		PropertyID: "p1",
		CheckIn:    time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC),
		CheckOut:   time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC),
	})
	var validationErr *apperrors.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, 0, api.count())

	_, err = c.Create(context.Background(), Session{}, CreateOrderRequest{PropertyID: "p1"})
	require.ErrorAs(t, err, &validationErr)
}

func TestCancelRefundsPaidStay(t *testing.T) {
	server := pendingReservation("r1")
	server.Status = StatusCancelled
	server.PaymentStatus = PaymentPaid
	server.PaymentIntentID = "pi_123"
	api := &fakeAPI{cancelFn: func(id, reason string) (*Reservation, error) {
		assert.Equal(t, "host asked", reason)
		return server, nil
	}}
	payments := &fakePayments{}
	c := newTestCoordinator(api, payments)
	seeded := pendingReservation("r1")
	seeded.Status = StatusConfirmed
	seed(c, seeded)

	got, err := c.Cancel(context.Background(), sess, "r1", "host asked")
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, got.Status)
	assert.Equal(t, []string{"pi_123"}, payments.refunds)
}

// A slow failing confirm must not clobber a fast complete that committed
// while the confirm was in flight.
func TestSlowFailureDoesNotEraseNewerCommit(t *testing.T) {
	release := make(chan struct{})
	confirmed := pendingReservation("r1")
	confirmed.Status = StatusConfirmed
	confirmed.Version = 2
	completed := pendingReservation("r1")
	completed.Status = StatusCompleted
	completed.Version = 3

	api := &fakeAPI{
		confirmFn: func(id string) (*Reservation, error) {
			<-release
			return nil, &apperrors.NetworkError{Op: "confirm", Err: errors.New("timeout")}
		},
		completeFn: func(id string) (*Reservation, error) { return completed, nil },
	}
	c := newTestCoordinator(api, nil)
	seed(c, pendingReservation("r1"))

	done := make(chan error, 1)
	go func() {
		_, err := c.Confirm(context.Background(), sess, "r1")
		done <- err
	}()

	// Wait for the slow confirm's optimistic write to land.
	require.Eventually(t, func() bool {
		entry, ok := c.Cache().Read(ReservationKey("r1"))
		if !ok {
			return false
		}
		r, ok := entry.Data.(*Reservation)
		return ok && r.Status == StatusConfirmed
	}, time.Second, time.Millisecond)

	_, err := c.Complete(context.Background(), sess, "r1")
	require.NoError(t, err)

	close(release)
	var netErr *apperrors.NetworkError
	require.ErrorAs(t, <-done, &netErr)

	entry, _ := c.Cache().Read(ReservationKey("r1"))
	assert.Same(t, completed, entry.Data, "the newer commit wins over the stale rollback")
}
