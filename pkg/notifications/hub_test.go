package notifications_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/storefront/pkg/notifications"
)

func TestHub_DeliversToUserSubscribers(t *testing.T) {
	t.Parallel()
	hub := notifications.NewHub()
	t.Cleanup(func() { _ = hub.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mine := hub.Subscribe(ctx, "u1")
	other := hub.Subscribe(ctx, "u2")

	require.NoError(t, hub.Deliver(ctx, notifications.Notification{ID: "n1", UserID: "u1"}))

	select {
	case n := <-mine:
		assert.Equal(t, "n1", n.ID)
	case <-time.After(time.Second):
		t.Fatal("notification not delivered")
	}

	select {
	case n := <-other:
		t.Fatalf("unexpected delivery to other user: %s", n.ID)
	default:
	}
}

func TestHub_DropsWhenBufferFull(t *testing.T) {
	t.Parallel()
	hub := notifications.NewHub(notifications.WithHubBuffer(1))
	t.Cleanup(func() { _ = hub.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch := hub.Subscribe(ctx, "u1")

	require.NoError(t, hub.Deliver(ctx, notifications.Notification{ID: "n1", UserID: "u1"}))
	require.NoError(t, hub.Deliver(ctx, notifications.Notification{ID: "n2", UserID: "u1"}))

	n := <-ch
	assert.Equal(t, "n1", n.ID)
	select {
	case extra := <-ch:
		t.Fatalf("expected drop, got %s", extra.ID)
	default:
	}
}

func TestHub_UnsubscribeOnCancel(t *testing.T) {
	t.Parallel()
	hub := notifications.NewHub()
	t.Cleanup(func() { _ = hub.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	ch := hub.Subscribe(ctx, "u1")
	assert.Equal(t, 1, hub.Subscribers("u1"))

	cancel()
	select {
	case _, ok := <-ch:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("channel not closed after cancel")
	}
	assert.Eventually(t, func() bool { return hub.Subscribers("u1") == 0 }, time.Second, 10*time.Millisecond)
}

func TestHub_Close(t *testing.T) {
	t.Parallel()
	hub := notifications.NewHub()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch := hub.Subscribe(ctx, "u1")

	require.NoError(t, hub.Close())
	require.NoError(t, hub.Close())

	_, ok := <-ch
	assert.False(t, ok)

	late := hub.Subscribe(ctx, "u1")
	_, ok = <-late
	assert.False(t, ok)
}
