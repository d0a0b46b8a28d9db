package notify

import "context"

// ChannelName identifies a delivery channel.
type ChannelName string

const (
	ChannelEmail ChannelName = "email"
	ChannelWall  ChannelName = "wall"
)

// Channel delivers one notification to one recipient. Implementations must be
// safe for concurrent use and keep no per-delivery state.
type Channel interface {
	Name() ChannelName
	// Applies reports whether the channel can reach the recipient at all.
	Applies(r Recipient) bool
	Deliver(ctx context.Context, event Event, r Recipient, p Payload) error
}
