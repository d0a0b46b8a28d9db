package orders

import (
	"context"
	"time"
)

// Store persists orders.
type Store interface {
	Create(ctx context.Context, o Order) error
	// Get returns ErrOrderNotFound for unknown ids.
	Get(ctx context.Context, id string) (Order, error)
	// SetStatus moves the order to next only while it is still in expect,
	// stamping UpdatedAt. A changed status yields ErrStatusConflict.
	SetStatus(ctx context.Context, id string, expect, next Status, at time.Time) (Order, error)
	// NextNumber returns the next order sequence value.
	NextNumber(ctx context.Context) (int64, error)
}
