package returns

import (
	"context"

	"github.com/dmitrymomot/storefront/pkg/statemachine"
)

// Stage is a position in the return request lifecycle.
type Stage string

const (
	StagePending         Stage = "pending"
	StageApproved        Stage = "approved"
	StageRejected        Stage = "rejected"
	StagePickupScheduled Stage = "pickup_scheduled"
	StageHandedOver      Stage = "handed_over"
)

// Name implements statemachine.State.
func (s Stage) Name() string { return string(s) }

// Lifecycle events.
const (
	EventApprove         = statemachine.StringEvent("approve")
	EventReject          = statemachine.StringEvent("reject")
	EventSchedulePickup  = statemachine.StringEvent("schedule_pickup")
	EventConfirmHandover = statemachine.StringEvent("confirm_handover")
)

var lifecycle = statemachine.MustNew(
	statemachine.WithTransition(StagePending, StageApproved, EventApprove),
	statemachine.WithTransition(StagePending, StageRejected, EventReject),
	statemachine.WithTransition(StageApproved, StagePickupScheduled, EventSchedulePickup),
	statemachine.WithTransition(StagePickupScheduled, StageHandedOver, EventConfirmHandover,
		statemachine.WithGuard(pickupDateKnown)),
)

// pickupDateKnown holds when the request carries the scheduled pickup date.
func pickupDateKnown(_ context.Context, _ statemachine.State, _ statemachine.Event, data any) bool {
	r, ok := data.(Request)
	return ok && r.PickupDate != nil
}

// next returns the target stage or an *InvalidTransitionError.
func next(ctx context.Context, r Request, event statemachine.StringEvent) (Stage, error) {
	to, err := lifecycle.Next(ctx, r.Stage(), event, r)
	if err != nil {
		return "", &InvalidTransitionError{RequestID: r.ID, From: r.Stage(), Requested: string(event)}
	}
	return to.(Stage), nil
}

// Allowed lists the events that can currently be fired for r.
func Allowed(r Request) []string {
	var out []string
	for _, e := range []statemachine.StringEvent{EventApprove, EventReject, EventSchedulePickup, EventConfirmHandover} {
		if lifecycle.CanFire(context.Background(), r.Stage(), e, r) {
			out = append(out, string(e))
		}
	}
	return out
}
