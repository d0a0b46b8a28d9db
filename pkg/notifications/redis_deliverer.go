package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/storefront/pkg/logger"
)

// DefaultRedisChannel is the pub/sub channel wall notifications travel on.
const DefaultRedisChannel = "storefront:wall"

// RedisPublisher is the subset of the redis client used for publishing.
type RedisPublisher interface {
	Publish(ctx context.Context, channel string, message any) *redis.IntCmd
}

// RedisDeliverer publishes notifications so every instance's Hub can push them.
type RedisDeliverer struct {
	client  RedisPublisher
	channel string
}

// NewRedisDeliverer publishes notifications on channel, DefaultRedisChannel when empty.
func NewRedisDeliverer(client RedisPublisher, channel string) *RedisDeliverer {
	if channel == "" {
		channel = DefaultRedisChannel
	}
	return &RedisDeliverer{client: client, channel: channel}
}

func (d *RedisDeliverer) Deliver(ctx context.Context, notif Notification) error {
	payload, err := json.Marshal(notif)
	if err != nil {
		return errors.Join(ErrPublishFailed, err)
	}
	if err := d.client.Publish(ctx, d.channel, payload).Err(); err != nil {
		return errors.Join(ErrPublishFailed, err)
	}
	return nil
}

// RedisRelay forwards notifications published on the channel to a local deliverer.
type RedisRelay struct {
	client  *redis.Client
	channel string
	local   Deliverer
	logger  *slog.Logger
}

// NewRedisRelay forwards notifications published on channel to local.
func NewRedisRelay(client *redis.Client, channel string, local Deliverer, log *slog.Logger) *RedisRelay {
	if channel == "" {
		channel = DefaultRedisChannel
	}
	if log == nil {
		log = slog.Default()
	}
	return &RedisRelay{client: client, channel: channel, local: local, logger: log}
}

// Run blocks until ctx is cancelled or the subscription is closed.
func (r *RedisRelay) Run(ctx context.Context) error {
	ps := r.client.Subscribe(ctx, r.channel)
	defer func() { _ = ps.Close() }()

	// wait for the subscription confirmation so early failures surface here
	if _, err := ps.Receive(ctx); err != nil {
		return err
	}

	ch := ps.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			r.forward(ctx, msg.Payload)
		}
	}
}

func (r *RedisRelay) forward(ctx context.Context, payload string) {
	notif, err := decodeNotification(payload)
	if err != nil {
		r.logger.LogAttrs(ctx, slog.LevelWarn, "skipping malformed wall notification",
			logger.Component("redis_relay"),
			logger.Error(err),
		)
		return
	}
	if err := r.local.Deliver(ctx, notif); err != nil {
		r.logger.LogAttrs(ctx, slog.LevelError, "failed to deliver relayed notification",
			slog.String("notification_id", notif.ID),
			logger.UserID(notif.UserID),
			logger.Error(err),
		)
	}
}

func decodeNotification(payload string) (Notification, error) {
	var notif Notification
	if err := json.Unmarshal([]byte(payload), &notif); err != nil {
		return Notification{}, err
	}
	if err := validateForCreate(notif); err != nil {
		return Notification{}, err
	}
	return notif, nil
}
