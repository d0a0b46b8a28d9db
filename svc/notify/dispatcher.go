package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dmitrymomot/storefront/pkg/async"
	"github.com/dmitrymomot/storefront/pkg/logger"
	"github.com/dmitrymomot/storefront/svc/settings"
)

// DeliveryResult is the outcome of one (recipient, channel) pair.
type DeliveryResult struct {
	Recipient Recipient   `json:"recipient"`
	Channel   ChannelName `json:"channel"`
	Success   bool        `json:"success"`
	Error     string      `json:"error,omitempty"`
}

// DispatchResult aggregates one dispatch. It is never persisted.
type DispatchResult struct {
	Event      Event            `json:"event"`
	Sent       int              `json:"sent"`
	Recipients []DeliveryResult `json:"recipients"`
}

// Failed returns the number of unsuccessful deliveries.
func (r DispatchResult) Failed() int {
	return len(r.Recipients) - r.Sent
}

// Notifier is the dependency business services take to emit events.
type Notifier interface {
	Dispatch(ctx context.Context, p Payload) DispatchResult
	DispatchAsync(ctx context.Context, p Payload)
}

// Dispatcher fans a payload out to every resolved recipient on every
// applicable channel.
type Dispatcher struct {
	provider settings.Provider
	resolver *Resolver
	channels []Channel
	logger   *slog.Logger
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithLogger sets the dispatcher logger.
func WithLogger(l *slog.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		if l != nil {
			d.logger = l
		}
	}
}

// NewDispatcher creates a dispatcher. Nil channels are ignored.
func NewDispatcher(provider settings.Provider, resolver *Resolver, channels []Channel, opts ...DispatcherOption) *Dispatcher {
	if provider == nil {
		panic("notify: settings provider is required")
	}
	if resolver == nil {
		panic("notify: resolver is required")
	}

	d := &Dispatcher{
		provider: provider,
		resolver: resolver,
		logger:   slog.Default(),
	}
	for _, ch := range channels {
		if ch != nil {
			d.channels = append(d.channels, ch)
		}
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

type delivery struct {
	recipient Recipient
	channel   Channel
}

// Dispatch delivers p and reports per-pair outcomes. It never fails: an
// unreadable settings document falls back to defaults and every delivery is
// isolated from the others.
func (d *Dispatcher) Dispatch(ctx context.Context, p Payload) DispatchResult {
	if p == nil {
		return DispatchResult{Recipients: []DeliveryResult{}}
	}
	event := p.Event()
	result := DispatchResult{Event: event, Recipients: []DeliveryResult{}}

	recipients := d.recipients(ctx, event)
	if len(recipients) == 0 {
		d.logger.LogAttrs(ctx, slog.LevelDebug, "no recipients for event",
			logger.EventType(string(event)))
		return result
	}

	var pairs []delivery
	for _, r := range recipients {
		for _, ch := range d.channels {
			if ch.Applies(r) {
				pairs = append(pairs, delivery{recipient: r, channel: ch})
			}
		}
	}

	futures := make([]*async.Future[struct{}], len(pairs))
	for i, pair := range pairs {
		futures[i] = async.Async(ctx, pair, func(ctx context.Context, pair delivery) (struct{}, error) {
			return struct{}{}, pair.channel.Deliver(ctx, event, pair.recipient, p)
		})
	}

	for i, res := range async.Settle(futures...) {
		pair := pairs[i]
		entry := DeliveryResult{
			Recipient: pair.recipient,
			Channel:   pair.channel.Name(),
			Success:   res.Err == nil,
		}
		if res.Err != nil {
			entry.Error = res.Err.Error()
			d.logger.LogAttrs(ctx, slog.LevelWarn, "notification delivery failed",
				logger.EventType(string(event)),
				logger.Channel(string(entry.Channel)),
				logger.Recipient(pair.recipient.Email),
				logger.Error(res.Err),
			)
		} else {
			result.Sent++
		}
		result.Recipients = append(result.Recipients, entry)
	}

	return result
}

// recipients reads the snapshot once and resolves the event. A settings
// failure, or a fault while resolving, degrades to defaults.
func (d *Dispatcher) recipients(ctx context.Context, event Event) (out []Recipient) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.LogAttrs(ctx, slog.LevelError, "recipient resolution panicked",
				logger.EventType(string(event)),
				logger.Error(fmt.Errorf("%w: %v", async.ErrPanic, r)),
			)
			out = d.resolver.Resolve(event, settings.Defaults())
		}
	}()

	snapshot, err := d.provider.Snapshot(ctx)
	if err != nil {
		d.logger.LogAttrs(ctx, slog.LevelWarn, "settings unavailable, using defaults",
			logger.EventType(string(event)),
			logger.Error(err),
		)
		snapshot = settings.Defaults()
	}
	return d.resolver.Resolve(event, snapshot)
}

// DispatchAsync runs Dispatch on a goroutine detached from ctx cancellation
// and logs the outcome.
func (d *Dispatcher) DispatchAsync(ctx context.Context, p Payload) {
	ctx = context.WithoutCancel(ctx)
	go func() {
		start := time.Now()
		res := d.Dispatch(ctx, p)
		level := slog.LevelInfo
		if res.Failed() > 0 {
			level = slog.LevelWarn
		}
		d.logger.LogAttrs(ctx, level, "notification dispatched",
			logger.EventType(string(res.Event)),
			slog.Int("sent", res.Sent),
			slog.Int("failed", res.Failed()),
			logger.Duration(time.Since(start)),
		)
	}()
}
