package settings

import "errors"

var (
	ErrSettingsNotFound    = errors.New("notification settings not found")
	ErrSettingsUnavailable = errors.New("notification settings unavailable")
	ErrFailedToSave        = errors.New("failed to save notification settings")
	ErrTooManyRecipients   = errors.New("too many admin recipients")
	ErrDuplicateRecipient  = errors.New("duplicate admin recipient")
	ErrUnknownEvent        = errors.New("unknown notification event")
)
