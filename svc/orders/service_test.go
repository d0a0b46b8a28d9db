package orders_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/storefront/pkg/validator"
	"github.com/dmitrymomot/storefront/svc/notify"
	"github.com/dmitrymomot/storefront/svc/orders"
)

type recordingNotifier struct {
	mu       sync.Mutex
	payloads []notify.Payload
}

func (r *recordingNotifier) DispatchAsync(_ context.Context, p notify.Payload) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.payloads = append(r.payloads, p)
}

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newService(t *testing.T) (orders.Service, *recordingNotifier, *clock) {
	t.Helper()
	n := &recordingNotifier{}
	c := &clock{t: now}
	svc := orders.NewService(orders.NewMemoryStore(),
		orders.WithNotifier(n),
		orders.WithClock(c.Now),
		orders.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	return svc, n, c
}

func validPlace() orders.PlaceRequest {
	return orders.PlaceRequest{
		UserID:   "user-1",
		Customer: orders.Customer{Name: "Carol", Email: "Carol@Example.com"},
		Items: []orders.Item{
			{ProductID: "p1", Name: "Mug", Quantity: 2, Price: 500},
			{ProductID: "p2", Name: "Tee", Quantity: 1, Price: 1500},
		},
		Currency: "usd",
	}
}

func TestService_PlaceDispatchesNewOrder(t *testing.T) {
	t.Parallel()

	svc, n, _ := newService(t)
	o, err := svc.Place(context.Background(), validPlace())
	require.NoError(t, err)

	assert.Equal(t, orders.StatusPending, o.Status)
	assert.Equal(t, "ORD-000001", o.Number)
	assert.Equal(t, int64(2500), o.Total)
	assert.Equal(t, "USD", o.Currency)
	assert.Equal(t, "carol@example.com", o.Customer.Email)

	require.Len(t, n.payloads, 1)
	p, ok := n.payloads[0].(notify.NewOrderPayload)
	require.True(t, ok)
	assert.Equal(t, o.ID, p.OrderID)
	assert.Len(t, p.Items, 2)

	o2, err := svc.Place(context.Background(), validPlace())
	require.NoError(t, err)
	assert.Equal(t, "ORD-000002", o2.Number)
}

func TestService_PlaceValidation(t *testing.T) {
	t.Parallel()

	svc, n, _ := newService(t)
	req := validPlace()
	req.Customer.Email = "nope"
	req.Items = nil
	req.Currency = "dollars"

	_, err := svc.Place(context.Background(), req)
	require.Error(t, err)
	assert.ErrorIs(t, err, validator.ErrValidationFailed)

	verrs := validator.ExtractValidationErrors(err)
	assert.True(t, verrs.Has("customer.email"))
	assert.True(t, verrs.Has("items"))
	assert.True(t, verrs.Has("currency"))
	assert.Empty(t, n.payloads)
}

func TestService_Cancel(t *testing.T) {
	t.Parallel()

	svc, _, c := newService(t)
	ctx := context.Background()
	o, err := svc.Place(ctx, validPlace())
	require.NoError(t, err)

	_, err = svc.Cancel(ctx, o.ID, "someone-else")
	assert.ErrorIs(t, err, orders.ErrOrderNotFound)

	c.Advance(time.Hour)
	cancelled, err := svc.Cancel(ctx, o.ID, "user-1")
	require.NoError(t, err)
	assert.Equal(t, orders.StatusCancelled, cancelled.Status)
	assert.Equal(t, now.Add(time.Hour), cancelled.UpdatedAt)

	_, err = svc.Cancel(ctx, o.ID, "user-1")
	assert.ErrorIs(t, err, orders.ErrNotEligible)
}

func TestService_UpdateStatusAndEligibility(t *testing.T) {
	t.Parallel()

	svc, _, c := newService(t)
	ctx := context.Background()
	o, err := svc.Place(ctx, validPlace())
	require.NoError(t, err)

	_, err = svc.UpdateStatus(ctx, o.ID, orders.StatusShipped)
	assert.ErrorIs(t, err, orders.ErrInvalidStatus)

	for _, s := range []orders.Status{orders.StatusConfirmed, orders.StatusPacked, orders.StatusShipped} {
		_, err = svc.UpdateStatus(ctx, o.ID, s)
		require.NoError(t, err)
	}

	c.Advance(36 * time.Hour)
	_, e, err := svc.Eligibility(ctx, o.ID)
	require.NoError(t, err)
	assert.True(t, e.CanReturn)

	c.Advance(24 * time.Hour)
	_, e, err = svc.Eligibility(ctx, o.ID)
	require.NoError(t, err)
	assert.False(t, e.CanReturn)
	assert.True(t, e.ContactSupport)

	_, err = svc.Cancel(ctx, o.ID, "")
	assert.ErrorIs(t, err, orders.ErrNotEligible)
}

func TestService_UpdateStatusRejectsInvalidTargets(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		path []orders.Status
		to   orders.Status
		want error
	}{
		{"unknown status", nil, orders.Status("lost"), validator.ErrValidationFailed},
		{"skips fulfilment steps", nil, orders.StatusShipped, orders.ErrInvalidStatus},
		{"reopens cancelled", []orders.Status{orders.StatusCancelled}, orders.StatusPending, orders.ErrInvalidStatus},
		{"returns before shipping", []orders.Status{orders.StatusConfirmed}, orders.StatusReturned, orders.ErrInvalidStatus},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			svc, _, _ := newService(t)
			ctx := context.Background()
			o, err := svc.Place(ctx, validPlace())
			require.NoError(t, err)
			for _, s := range tt.path {
				_, err = svc.UpdateStatus(ctx, o.ID, s)
				require.NoError(t, err)
			}

			_, err = svc.UpdateStatus(ctx, o.ID, tt.to)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	svc, _, _ := newService(t)
	ctx := context.Background()
	o, err := svc.Place(ctx, validPlace())
	require.NoError(t, err)
	for _, s := range []orders.Status{orders.StatusConfirmed, orders.StatusPacked, orders.StatusShipped, orders.StatusDelivered, orders.StatusReturned} {
		_, err = svc.UpdateStatus(ctx, o.ID, s)
		require.NoError(t, err, "to %s", s)
	}
}

func TestService_GetUnknown(t *testing.T) {
	t.Parallel()

	svc, _, _ := newService(t)
	_, err := svc.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, orders.ErrOrderNotFound)
}

func TestMemoryStore_SetStatusCompareAndSet(t *testing.T) {
	t.Parallel()

	store := orders.NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.Create(ctx, orders.Order{ID: "o1", Status: orders.StatusPending}))

	_, err := store.SetStatus(ctx, "o1", orders.StatusPending, orders.StatusConfirmed, now)
	require.NoError(t, err)

	_, err = store.SetStatus(ctx, "o1", orders.StatusPending, orders.StatusCancelled, now)
	assert.ErrorIs(t, err, orders.ErrStatusConflict)

	_, err = store.SetStatus(ctx, "nope", orders.StatusPending, orders.StatusCancelled, now)
	assert.ErrorIs(t, err, orders.ErrOrderNotFound)
}
