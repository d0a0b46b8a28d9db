package notify

import (
	"context"
	"time"

	"github.com/dmitrymomot/storefront/pkg/notifications"
)

// WallSender persists and pushes a wall notification.
type WallSender interface {
	Send(ctx context.Context, notif notifications.Notification) (notifications.Notification, error)
}

// WallChannel posts in-app notifications for recipients with an internal identity.
type WallChannel struct {
	sender   WallSender
	storeURL string
	timeout  time.Duration
}

// NewWallChannel creates the in-app channel. It panics when sender is nil.
func NewWallChannel(sender WallSender, storeURL string, timeout time.Duration) *WallChannel {
	if sender == nil {
		panic("notify: WallSender is required")
	}
	return &WallChannel{sender: sender, storeURL: storeURL, timeout: timeout}
}

func (c *WallChannel) Name() ChannelName { return ChannelWall }

func (c *WallChannel) Applies(r Recipient) bool { return r.UserID != "" }

func (c *WallChannel) Deliver(ctx context.Context, event Event, r Recipient, p Payload) error {
	if r.UserID == "" {
		return ErrNoInternalIdentity
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	msg := p.wall(c.storeURL)
	metadata := make(map[string]any, len(msg.Metadata)+1)
	for k, v := range msg.Metadata {
		metadata[k] = v
	}
	metadata["event"] = string(event)

	_, err := c.sender.Send(ctx, notifications.Notification{
		UserID:   r.UserID,
		Type:     wallType(event),
		Priority: notifications.PriorityNormal,
		Title:    msg.Title,
		Message:  msg.Body,
		Data:     metadata,
		Actions:  []notifications.Action{{Label: "Open", URL: msg.Link}},
	})
	return err
}

func wallType(event Event) notifications.Type {
	switch event {
	case EventNewOrder:
		return notifications.TypeOrder
	case EventReturnRequest, EventReturnHandover:
		return notifications.TypeReturn
	case EventProjectRequest:
		return notifications.TypeProject
	default:
		return notifications.TypeInfo
	}
}
