package projects

import "errors"

var (
	ErrFailedToSubmit = errors.New("failed to submit project request")
	ErrStoreFailure   = errors.New("project request store failure")
)
