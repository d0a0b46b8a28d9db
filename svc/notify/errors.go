package notify

import "errors"

var (
	ErrUnknownEvent       = errors.New("unknown notification event")
	ErrNoEmailAddress     = errors.New("recipient has no email address")
	ErrNoInternalIdentity = errors.New("recipient has no internal identity")
	ErrRenderFailed       = errors.New("failed to render notification")
	ErrDeliveryFailed     = errors.New("notification delivery failed")
)
