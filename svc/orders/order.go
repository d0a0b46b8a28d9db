// Package orders manages storefront orders and decides which self-service
// actions (cancel, return, contact support) an order currently allows.
package orders

import "time"

// Status is the fulfilment status of an order.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusPacked    Status = "packed"
	StatusShipped   Status = "shipped"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
	StatusReturned  Status = "returned"
)

// Statuses lists every order status.
func Statuses() []Status {
	return []Status{
		StatusPending, StatusConfirmed, StatusPacked, StatusShipped,
		StatusDelivered, StatusCancelled, StatusReturned,
	}
}

// IsTerminal reports whether no further customer action applies.
func (s Status) IsTerminal() bool {
	return s == StatusCancelled || s == StatusReturned
}

// Item is one order line.
type Item struct {
	ProductID string `json:"product_id" bson:"product_id"`
	Name      string `json:"name" bson:"name"`
	Quantity  int    `json:"quantity" bson:"quantity"`
	Price     int64  `json:"price" bson:"price"` // minor units per unit
}

// Subtotal is Price times Quantity.
func (i Item) Subtotal() int64 {
	return i.Price * int64(i.Quantity)
}

// Customer holds the contact details captured at checkout.
type Customer struct {
	Name  string `json:"name" bson:"name"`
	Email string `json:"email" bson:"email"`
	Phone string `json:"phone,omitempty" bson:"phone,omitempty"`
}

// Order is a placed order.
type Order struct {
	ID        string    `json:"id" bson:"_id"`
	Number    string    `json:"number" bson:"number"`
	UserID    string    `json:"user_id" bson:"user_id"`
	Status    Status    `json:"status" bson:"status"`
	Items     []Item    `json:"items" bson:"items"`
	Total     int64     `json:"total" bson:"total"`
	Currency  string    `json:"currency" bson:"currency"`
	Customer  Customer  `json:"customer" bson:"customer"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"` // last status change
}

// statusChangedAt is the reference instant for the return and contact windows.
func (o Order) statusChangedAt() time.Time {
	if o.UpdatedAt.IsZero() {
		return o.CreatedAt
	}
	return o.UpdatedAt
}
