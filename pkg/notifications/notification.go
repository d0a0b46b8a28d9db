// Package notifications stores in-app wall notifications per user and pushes
// new ones to live subscribers.
//
// Manager persists first and then delivers best-effort: a failed live push
// never loses the notification, it stays readable through List.
package notifications

import (
	"time"
)

// Type groups wall notifications by the business event that produced them.
type Type string

const (
	TypeOrder   Type = "order"
	TypeReturn  Type = "return"
	TypeProject Type = "project"
	TypeInfo    Type = "info"
)

// Priority represents the notification priority level.
type Priority int

const (
	PriorityLow Priority = iota
	PriorityNormal
	PriorityHigh
)

// Action is a link rendered next to the notification.
type Action struct {
	Label string `json:"label" bson:"label"`
	URL   string `json:"url" bson:"url"`
}

// Notification is a single entry on a user's wall.
type Notification struct {
	ID        string         `json:"id" bson:"_id"`
	UserID    string         `json:"user_id" bson:"user_id"`
	Type      Type           `json:"type" bson:"type"`
	Priority  Priority       `json:"priority" bson:"priority"`
	Title     string         `json:"title" bson:"title"`
	Message   string         `json:"message" bson:"message"`
	Data      map[string]any `json:"data,omitempty" bson:"data,omitempty"`
	Actions   []Action       `json:"actions,omitempty" bson:"actions,omitempty"`
	Read      bool           `json:"read" bson:"read"`
	ReadAt    *time.Time     `json:"read_at,omitempty" bson:"read_at,omitempty"`
	CreatedAt time.Time      `json:"created_at" bson:"created_at"`
	ExpiresAt *time.Time     `json:"expires_at,omitempty" bson:"expires_at,omitempty"`
}

// IsExpired reports whether the notification expired before now.
func (n *Notification) IsExpired(now time.Time) bool {
	return n.ExpiresAt != nil && now.After(*n.ExpiresAt)
}

// MarkAsRead flags the notification as read at the given time.
func (n *Notification) MarkAsRead(at time.Time) {
	n.Read = true
	n.ReadAt = &at
}
