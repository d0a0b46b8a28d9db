// Package returns handles customer return requests from submission through
// admin decision, pickup scheduling and hand-over.
package returns

import "time"

// Reason is why the customer returns the items.
type Reason string

const (
	ReasonDamaged        Reason = "damaged"
	ReasonDefective      Reason = "defective"
	ReasonWrongItem      Reason = "wrong_item"
	ReasonNotAsDescribed Reason = "not_as_described"
	ReasonSizeIssue      Reason = "size_issue"
	ReasonChangedMind    Reason = "changed_mind"
	ReasonOther          Reason = "other"
)

// Reasons lists the accepted return reasons.
func Reasons() []Reason {
	return []Reason{
		ReasonDamaged, ReasonDefective, ReasonWrongItem, ReasonNotAsDescribed,
		ReasonSizeIssue, ReasonChangedMind, ReasonOther,
	}
}

// Condition is the customer-reported state of the items.
type Condition string

const (
	ConditionGood Condition = "good"
	ConditionFair Condition = "fair"
	ConditionPoor Condition = "poor"
)

// Conditions lists the accepted item conditions.
func Conditions() []Condition {
	return []Condition{ConditionGood, ConditionFair, ConditionPoor}
}

// Status is the admin decision on a request.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// MaxImages is the number of evidence images a request may carry.
const MaxImages = 5

// Image is a stored evidence image.
type Image struct {
	ID  string `json:"id" bson:"id"`
	URL string `json:"url" bson:"url"`
	Key string `json:"-" bson:"key"`
}

// Request is a return request for one order. Requests are never deleted.
type Request struct {
	ID              string     `json:"id" bson:"_id"`
	Number          string     `json:"number" bson:"number"`
	OrderID         string     `json:"order_id" bson:"order_id"`
	UserID          string     `json:"user_id" bson:"user_id"`
	Reason          Reason     `json:"reason" bson:"reason"`
	Description     string     `json:"description" bson:"description"`
	Condition       Condition  `json:"condition" bson:"condition"`
	Images          []Image    `json:"images" bson:"images"`
	Status          Status     `json:"status" bson:"status"`
	AdminNotes      string     `json:"admin_notes,omitempty" bson:"admin_notes,omitempty"`
	RequestedAt     time.Time  `json:"requested_at" bson:"requested_at"`
	DecidedAt       *time.Time `json:"decided_at,omitempty" bson:"decided_at,omitempty"`
	PickupScheduled bool       `json:"pickup_scheduled" bson:"pickup_scheduled"`
	PickupDate      *time.Time `json:"pickup_date,omitempty" bson:"pickup_date,omitempty"`
	UserHandedOver  bool       `json:"user_handed_over" bson:"user_handed_over"`
	HandedOverAt    *time.Time `json:"handed_over_at,omitempty" bson:"handed_over_at,omitempty"`
	UpdatedAt       time.Time  `json:"updated_at" bson:"updated_at"`
}

// Stage derives the lifecycle position from the persisted fields.
func (r Request) Stage() Stage {
	switch {
	case r.Status == StatusRejected:
		return StageRejected
	case r.Status == StatusApproved && r.UserHandedOver:
		return StageHandedOver
	case r.Status == StatusApproved && r.PickupScheduled:
		return StagePickupScheduled
	case r.Status == StatusApproved:
		return StageApproved
	default:
		return StagePending
	}
}
