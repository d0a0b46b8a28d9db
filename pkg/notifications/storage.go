package notifications

import (
	"context"
	"time"
)

// Storage handles notification persistence and retrieval.
type Storage interface {
	Create(ctx context.Context, notif Notification) error
	List(ctx context.Context, userID string, opts ListOptions) ([]Notification, error)
	// MarkRead marks the given notifications as read; with no ids it marks all of them.
	MarkRead(ctx context.Context, userID string, notifIDs ...string) error
	CountUnread(ctx context.Context, userID string) (int, error)
}

// ListOptions provides filtering and pagination options for listing notifications.
type ListOptions struct {
	Limit      int  // 0 = no limit
	Offset     int
	OnlyUnread bool
	Types      []Type
	Since      *time.Time
}

func validateForCreate(notif Notification) error {
	if notif.ID == "" {
		return ErrMissingID
	}
	if notif.UserID == "" {
		return ErrMissingUserID
	}
	return nil
}
