package notifications

import (
	"context"
	"log/slog"
	"sync"

	"github.com/dmitrymomot/storefront/pkg/logger"
)

const defaultHubBuffer = 16

// Hub delivers notifications to live subscribers of this process.
// Slow subscribers lose messages instead of blocking delivery.
type Hub struct {
	subs       map[string]map[*subscription]struct{} // userID -> subscriptions
	bufferSize int
	closed     bool
	logger     *slog.Logger
	mu         sync.RWMutex
}

type subscription struct {
	ch chan Notification
}

// HubOption configures a Hub.
type HubOption func(*Hub)

// WithHubBuffer sets the per-subscriber channel buffer. Minimum is 1.
func WithHubBuffer(size int) HubOption {
	return func(h *Hub) {
		h.bufferSize = max(size, 1)
	}
}

// WithHubLogger sets the logger for dropped deliveries.
func WithHubLogger(log *slog.Logger) HubOption {
	return func(h *Hub) {
		if log != nil {
			h.logger = log
		}
	}
}

// NewHub creates a hub with no subscribers.
func NewHub(opts ...HubOption) *Hub {
	h := &Hub{
		subs:       make(map[string]map[*subscription]struct{}),
		bufferSize: defaultHubBuffer,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Subscribe returns a channel that receives the user's new notifications until
// ctx is cancelled or the hub is closed. The channel is closed afterwards.
func (h *Hub) Subscribe(ctx context.Context, userID string) <-chan Notification {
	sub := &subscription{ch: make(chan Notification, h.bufferSize)}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		close(sub.ch)
		return sub.ch
	}
	if h.subs[userID] == nil {
		h.subs[userID] = make(map[*subscription]struct{})
	}
	h.subs[userID][sub] = struct{}{}
	h.mu.Unlock()

	if ctx.Done() != nil {
		go func() {
			<-ctx.Done()
			h.unsubscribe(userID, sub)
		}()
	}

	return sub.ch
}

// Deliver sends the notification to every live subscriber of its user.
func (h *Hub) Deliver(ctx context.Context, notif Notification) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for sub := range h.subs[notif.UserID] {
		select {
		case sub.ch <- notif:
		default:
			h.logger.LogAttrs(ctx, slog.LevelWarn, "subscriber buffer full, notification dropped",
				slog.String("notification_id", notif.ID),
				logger.UserID(notif.UserID),
			)
		}
	}
	return nil
}

// Subscribers returns the number of live subscriptions for a user.
func (h *Hub) Subscribers(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[userID])
}

// Close closes every subscription. Later subscriptions are closed immediately.
func (h *Hub) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil
	}
	h.closed = true
	for userID, set := range h.subs {
		for sub := range set {
			close(sub.ch)
		}
		delete(h.subs, userID)
	}
	return nil
}

func (h *Hub) unsubscribe(userID string, sub *subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.subs[userID]
	if !ok {
		return
	}
	if _, ok := set[sub]; !ok {
		return // already closed by Close
	}
	delete(set, sub)
	close(sub.ch)
	if len(set) == 0 {
		delete(h.subs, userID)
	}
}
