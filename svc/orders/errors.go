package orders

import "errors"

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrNotEligible       = errors.New("order is not eligible for this action")
	ErrStatusConflict    = errors.New("order status changed concurrently")
	ErrInvalidStatus     = errors.New("invalid order status change")
	ErrFailedToPlace     = errors.New("failed to place order")
	ErrFailedToUpdate    = errors.New("failed to update order")
	ErrOrderStoreFailure = errors.New("order store failure")
)
