package notify_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/storefront/pkg/email"
	"github.com/dmitrymomot/storefront/pkg/notifications"
	"github.com/dmitrymomot/storefront/svc/notify"
	"github.com/dmitrymomot/storefront/svc/settings"
)

type mockSender struct {
	mock.Mock
}

func (m *mockSender) SendEmail(ctx context.Context, params email.SendEmailParams) error {
	args := m.Called(ctx, params)
	return args.Error(0)
}

type stubProvider struct {
	snapshot settings.NotificationSettings
	err      error
	calls    int
	mu       sync.Mutex
}

func (p *stubProvider) Snapshot(context.Context) (settings.NotificationSettings, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	return p.snapshot, p.err
}

// countingChannel records calls and fails for selected emails.
type countingChannel struct {
	name   notify.ChannelName
	mu     sync.Mutex
	calls  []notify.Recipient
	failOn map[string]error
	panics bool
}

func (c *countingChannel) Name() notify.ChannelName { return c.name }

func (c *countingChannel) Applies(r notify.Recipient) bool {
	if c.name == notify.ChannelWall {
		return r.UserID != ""
	}
	return r.Email != ""
}

func (c *countingChannel) Deliver(_ context.Context, _ notify.Event, r notify.Recipient, _ notify.Payload) error {
	c.mu.Lock()
	c.calls = append(c.calls, r)
	c.mu.Unlock()
	if c.panics {
		panic("boom")
	}
	return c.failOn[r.Email]
}

func (c *countingChannel) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.calls)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func twoAdmins() settings.NotificationSettings {
	s := settings.Defaults()
	s.AdminRecipients = []settings.AdminRecipient{
		{ID: "r1", UserID: "u1", Name: "Alice", Email: "alice@example.com"},
		{ID: "r2", UserID: "u2", Name: "Bob", Email: "bob@example.com"},
	}
	return s
}

func orderPayload() notify.NewOrderPayload {
	return notify.NewOrderPayload{
		OrderID:      "o1",
		OrderNumber:  "ORD-1",
		CustomerName: "Carol",
		Total:        1999,
		Currency:     "USD",
		PlacedAt:     time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestDispatch_DisabledEventMakesNoCalls(t *testing.T) {
	t.Parallel()

	snap := twoAdmins()
	snap.Preferences = map[string]bool{string(notify.EventReturnRequest): false}
	provider := &stubProvider{snapshot: snap}
	emailCh := &countingChannel{name: notify.ChannelEmail}
	wallCh := &countingChannel{name: notify.ChannelWall}

	d := notify.NewDispatcher(provider, notify.NewResolver("fallback@example.com"),
		[]notify.Channel{emailCh, wallCh}, notify.WithLogger(quietLogger()))

	res := d.Dispatch(context.Background(), notify.ReturnRequestPayload{RequestID: "rr1"})

	assert.Equal(t, notify.EventReturnRequest, res.Event)
	assert.Equal(t, 0, res.Sent)
	assert.Empty(t, res.Recipients)
	assert.Zero(t, emailCh.Calls())
	assert.Zero(t, wallCh.Calls())
}

func TestDispatch_OneFailureDoesNotSuppressOthers(t *testing.T) {
	t.Parallel()

	provider := &stubProvider{snapshot: twoAdmins()}
	emailCh := &countingChannel{
		name:   notify.ChannelEmail,
		failOn: map[string]error{"alice@example.com": errors.New("smtp down")},
	}
	wallCh := &countingChannel{name: notify.ChannelWall}

	d := notify.NewDispatcher(provider, notify.NewResolver(""),
		[]notify.Channel{emailCh, wallCh}, notify.WithLogger(quietLogger()))

	res := d.Dispatch(context.Background(), orderPayload())

	require.Len(t, res.Recipients, 4)
	assert.Equal(t, 3, res.Sent)
	assert.Equal(t, 1, res.Failed())
	assert.Equal(t, 1, provider.calls)

	for _, r := range res.Recipients {
		if r.Channel == notify.ChannelEmail && r.Recipient.Email == "alice@example.com" {
			assert.False(t, r.Success)
			assert.Contains(t, r.Error, "smtp down")
			continue
		}
		assert.True(t, r.Success, "%s via %s", r.Recipient.Email, r.Channel)
	}
}

func TestDispatch_FallbackIsEmailOnly(t *testing.T) {
	t.Parallel()

	provider := &stubProvider{snapshot: settings.Defaults()}
	emailCh := &countingChannel{name: notify.ChannelEmail}
	wallCh := &countingChannel{name: notify.ChannelWall}

	d := notify.NewDispatcher(provider, notify.NewResolver("ops@example.com"),
		[]notify.Channel{emailCh, wallCh}, notify.WithLogger(quietLogger()))

	res := d.Dispatch(context.Background(), orderPayload())

	assert.Equal(t, 1, res.Sent)
	require.Len(t, res.Recipients, 1)
	assert.Equal(t, notify.ChannelEmail, res.Recipients[0].Channel)
	assert.Equal(t, "ops@example.com", res.Recipients[0].Recipient.Email)
	assert.Equal(t, 1, emailCh.Calls())
	assert.Zero(t, wallCh.Calls())
}

func TestDispatch_NoRecipientsNoFallback(t *testing.T) {
	t.Parallel()

	emailCh := &countingChannel{name: notify.ChannelEmail}
	d := notify.NewDispatcher(&stubProvider{snapshot: settings.Defaults()}, notify.NewResolver(""),
		[]notify.Channel{emailCh}, notify.WithLogger(quietLogger()))

	res := d.Dispatch(context.Background(), orderPayload())

	assert.Equal(t, 0, res.Sent)
	assert.Empty(t, res.Recipients)
	assert.Zero(t, emailCh.Calls())
}

func TestDispatch_SettingsErrorUsesDefaults(t *testing.T) {
	t.Parallel()

	provider := &stubProvider{err: settings.ErrSettingsUnavailable}
	emailCh := &countingChannel{name: notify.ChannelEmail}

	d := notify.NewDispatcher(provider, notify.NewResolver("ops@example.com"),
		[]notify.Channel{emailCh}, notify.WithLogger(quietLogger()))

	res := d.Dispatch(context.Background(), orderPayload())

	assert.Equal(t, 1, res.Sent)
	assert.Equal(t, 1, emailCh.Calls())
}

func TestDispatch_PanicIsIsolated(t *testing.T) {
	t.Parallel()

	provider := &stubProvider{snapshot: twoAdmins()}
	emailCh := &countingChannel{name: notify.ChannelEmail, panics: true}
	wallCh := &countingChannel{name: notify.ChannelWall}

	d := notify.NewDispatcher(provider, notify.NewResolver(""),
		[]notify.Channel{emailCh, wallCh}, notify.WithLogger(quietLogger()))

	var res notify.DispatchResult
	require.NotPanics(t, func() {
		res = d.Dispatch(context.Background(), orderPayload())
	})

	assert.Equal(t, 2, res.Sent)
	assert.Equal(t, 2, res.Failed())
	for _, r := range res.Recipients {
		assert.Equal(t, r.Channel == notify.ChannelWall, r.Success)
	}
}

func TestDispatch_CapsRecipients(t *testing.T) {
	t.Parallel()

	snap := twoAdmins()
	snap.AdminRecipients = append(snap.AdminRecipients,
		settings.AdminRecipient{ID: "r3", Name: "Eve", Email: "eve@example.com"})
	emailCh := &countingChannel{name: notify.ChannelEmail}

	d := notify.NewDispatcher(&stubProvider{snapshot: snap}, notify.NewResolver(""),
		[]notify.Channel{emailCh}, notify.WithLogger(quietLogger()))

	res := d.Dispatch(context.Background(), orderPayload())

	assert.Equal(t, 2, res.Sent)
	assert.Equal(t, 2, emailCh.Calls())
}

func TestDispatch_EndToEndChannels(t *testing.T) {
	t.Parallel()

	sender := &mockSender{}
	sender.On("SendEmail", mock.Anything, mock.MatchedBy(func(p email.SendEmailParams) bool {
		return p.SendTo == "alice@example.com"
	})).Return(errors.New("rejected")).Once()
	sender.On("SendEmail", mock.Anything, mock.MatchedBy(func(p email.SendEmailParams) bool {
		return p.SendTo == "bob@example.com"
	})).Return(nil).Once()

	storage := notifications.NewMemoryStorage()
	manager := notifications.NewManager(storage, nil)

	d := notify.NewDispatcher(
		&stubProvider{snapshot: twoAdmins()},
		notify.NewResolver(""),
		[]notify.Channel{
			notify.NewEmailChannel(sender, "https://shop.example.com", time.Second),
			notify.NewWallChannel(manager, "https://shop.example.com", time.Second),
		},
		notify.WithLogger(quietLogger()),
	)

	res := d.Dispatch(context.Background(), orderPayload())

	assert.Equal(t, 3, res.Sent)
	sender.AssertExpectations(t)

	wall, err := storage.List(context.Background(), "u2", notifications.ListOptions{})
	require.NoError(t, err)
	require.Len(t, wall, 1)
	assert.Equal(t, notifications.TypeOrder, wall[0].Type)
	assert.Equal(t, "New order ORD-1", wall[0].Title)
	require.Len(t, wall[0].Actions, 1)
	assert.Equal(t, "https://shop.example.com/admin/orders/o1", wall[0].Actions[0].URL)
	assert.Equal(t, "newOrder", wall[0].Data["event"])
}

type brokenPush struct{}

func (brokenPush) Deliver(context.Context, notifications.Notification) error {
	return errors.New("push broken")
}

func TestDispatch_WallPushFailureIsReported(t *testing.T) {
	t.Parallel()

	snap := settings.Defaults()
	snap.AdminRecipients = []settings.AdminRecipient{
		{ID: "r1", UserID: "u1", Name: "Alice", Email: "alice@example.com"},
	}
	storage := notifications.NewMemoryStorage()
	manager := notifications.NewManager(storage, brokenPush{}, notifications.WithManagerLogger(quietLogger()))
	emailCh := &countingChannel{name: notify.ChannelEmail}

	d := notify.NewDispatcher(
		&stubProvider{snapshot: snap},
		notify.NewResolver(""),
		[]notify.Channel{emailCh, notify.NewWallChannel(manager, "https://shop.example.com", time.Second)},
		notify.WithLogger(quietLogger()),
	)

	res := d.Dispatch(context.Background(), orderPayload())

	assert.Equal(t, 1, res.Sent, "only the email counts as sent")
	require.Len(t, res.Recipients, 2)
	for _, r := range res.Recipients {
		switch r.Channel {
		case notify.ChannelWall:
			assert.False(t, r.Success)
			assert.Contains(t, r.Error, "push broken")
		case notify.ChannelEmail:
			assert.True(t, r.Success)
		}
	}
	assert.Equal(t, 1, res.Failed())

	stored, err := storage.List(context.Background(), "u1", notifications.ListOptions{})
	require.NoError(t, err)
	assert.Len(t, stored, 1, "the notification stays stored for the next page load")
}

func TestDispatchAsync_SurvivesCallerCancellation(t *testing.T) {
	t.Parallel()

	delivered := make(chan struct{}, 1)
	sender := &mockSender{}
	sender.On("SendEmail", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { delivered <- struct{}{} }).
		Return(nil).Once()

	d := notify.NewDispatcher(
		&stubProvider{snapshot: settings.Defaults()},
		notify.NewResolver("ops@example.com"),
		[]notify.Channel{notify.NewEmailChannel(sender, "", time.Second)},
		notify.WithLogger(quietLogger()),
	)

	ctx, cancel := context.WithCancel(context.Background())
	d.DispatchAsync(ctx, orderPayload())
	cancel()

	select {
	case <-delivered:
	case <-time.After(2 * time.Second):
		t.Fatal("async dispatch did not deliver")
	}
}
