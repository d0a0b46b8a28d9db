package orders

import (
	"fmt"
	"time"
)

const (
	// ReturnWindow is how long after shipping/delivery a return can be requested.
	ReturnWindow = 48 * time.Hour
	// ContactWindow is how long after shipping/delivery support contact is offered.
	ContactWindow = 7 * 24 * time.Hour
)

// Action is a customer self-service action.
type Action string

const (
	ActionCancel Action = "cancel"
	ActionReturn Action = "return"
)

// User-facing eligibility messages.
const (
	MessageCancellable   = "This order can still be cancelled."
	MessageReturnable    = "You can request a return for this order."
	MessageContactWindow = "The return window has closed. Please contact support."
	MessageNotCancelable = "This order can no longer be cancelled."
	MessageNoActions     = "No further actions are available for this order."
)

// CanCancel reports whether the order has not been handed to fulfilment yet.
func CanCancel(o Order) bool {
	return o.Status == StatusPending || o.Status == StatusConfirmed
}

// CanReturn reports whether a shipped or delivered order is within ReturnWindow
// of its last status change. The bound is inclusive.
func CanReturn(o Order, now time.Time) bool {
	if !inTransitOrDelivered(o.Status) {
		return false
	}
	return now.Sub(o.statusChangedAt()) <= ReturnWindow
}

// IsInContactWindow reports whether the return window lapsed but support
// contact is still offered: ReturnWindow < elapsed <= ContactWindow.
func IsInContactWindow(o Order, now time.Time) bool {
	if !inTransitOrDelivered(o.Status) {
		return false
	}
	elapsed := now.Sub(o.statusChangedAt())
	return elapsed > ReturnWindow && elapsed <= ContactWindow
}

func inTransitOrDelivered(s Status) bool {
	return s == StatusShipped || s == StatusDelivered
}

// Eligibility is the evaluated set of actions for an order at an instant.
type Eligibility struct {
	CanCancel      bool   `json:"can_cancel"`
	CanReturn      bool   `json:"can_return"`
	ContactSupport bool   `json:"contact_support"`
	Message        string `json:"message"`
}

// EligibilityAt evaluates all predicates together.
func EligibilityAt(o Order, now time.Time) Eligibility {
	e := Eligibility{
		CanCancel:      CanCancel(o),
		CanReturn:      CanReturn(o, now),
		ContactSupport: IsInContactWindow(o, now),
	}
	switch {
	case e.CanCancel:
		e.Message = MessageCancellable
	case e.CanReturn:
		e.Message = MessageReturnable
	case e.ContactSupport:
		e.Message = MessageContactWindow
	default:
		e.Message = MessageNoActions
	}
	return e
}

// EligibilityError explains why an action is not allowed.
type EligibilityError struct {
	Action Action
	Status Status
	Reason string
}

func (e *EligibilityError) Error() string {
	return fmt.Sprintf("cannot %s order in status %q: %s", e.Action, e.Status, e.Reason)
}

func (e *EligibilityError) Is(target error) bool {
	return target == ErrNotEligible
}

// CheckCancel returns an *EligibilityError when the order cannot be cancelled.
func CheckCancel(o Order) error {
	if CanCancel(o) {
		return nil
	}
	return &EligibilityError{Action: ActionCancel, Status: o.Status, Reason: MessageNotCancelable}
}

// CheckReturn returns an *EligibilityError when a return cannot be requested now.
func CheckReturn(o Order, now time.Time) error {
	if CanReturn(o, now) {
		return nil
	}
	reason := MessageNoActions
	if IsInContactWindow(o, now) {
		reason = MessageContactWindow
	}
	return &EligibilityError{Action: ActionReturn, Status: o.Status, Reason: reason}
}
