package orders

import (
	"context"
	"fmt"

	"github.com/dmitrymomot/storefront/pkg/statemachine"
)

// Name implements statemachine.State.
func (s Status) Name() string { return string(s) }

// statusGraph holds the admin-driven fulfilment flow. The event that moves an
// order into a status is named after that status.
var statusGraph = statemachine.MustNew(
	edge(StatusPending, StatusConfirmed),
	edge(StatusConfirmed, StatusPacked),
	edge(StatusPacked, StatusShipped),
	edge(StatusShipped, StatusDelivered),
	edge(StatusPending, StatusCancelled),
	edge(StatusConfirmed, StatusCancelled),
	edge(StatusPacked, StatusCancelled),
	edge(StatusShipped, StatusReturned),
	edge(StatusDelivered, StatusReturned),
)

func edge(from, to Status) statemachine.Option {
	return statemachine.WithTransition(from, to, statemachine.StringEvent(to))
}

func checkTransition(ctx context.Context, from, to Status) error {
	if _, err := statusGraph.Next(ctx, from, statemachine.StringEvent(to), nil); err != nil {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidStatus, from, to)
	}
	return nil
}
