package returns

import (
	"errors"
	"fmt"
)

var (
	ErrRequestNotFound   = errors.New("return request not found")
	ErrInvalidTransition = errors.New("invalid return request transition")
	ErrStageConflict     = errors.New("return request changed concurrently")
	ErrImageUpload       = errors.New("failed to store return image")
	ErrTooManyImages     = errors.New("too many return images")
	ErrFailedToCreate    = errors.New("failed to create return request")
	ErrFailedToUpdate    = errors.New("failed to update return request")
	ErrStoreFailure      = errors.New("return request store failure")
)

// InvalidTransitionError names the current stage and the rejected action.
type InvalidTransitionError struct {
	RequestID string
	From      Stage
	Requested string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("return request %s: cannot %s from stage %q", e.RequestID, e.Requested, e.From)
}

func (e *InvalidTransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}

