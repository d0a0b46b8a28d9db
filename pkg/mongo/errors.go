package mongo

import "errors"

var (
	// ErrFailedToConnectToMongo is returned once every connection attempt has failed.
	ErrFailedToConnectToMongo = errors.New("failed to connect to mongo")
	// ErrHealthcheckFailed wraps ping failures reported by Healthcheck.
	ErrHealthcheckFailed = errors.New("mongo healthcheck failed")
	// ErrSequenceFailed wraps counter increment failures.
	ErrSequenceFailed = errors.New("failed to increment sequence")
)
