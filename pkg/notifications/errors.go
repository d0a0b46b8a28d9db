package notifications

import "errors"

var (
	ErrNotificationNotFound = errors.New("notification not found")
	ErrMissingID            = errors.New("notification ID is required")
	ErrMissingUserID        = errors.New("notification user ID is required")
	ErrStorageFailed        = errors.New("notification storage failed")
	ErrPublishFailed        = errors.New("failed to publish notification")
	ErrDeliveryFailed       = errors.New("notification stored but not delivered")
)
