// Package notify fans business events out to admin recipients over email and
// the in-app wall. Dispatch is gated by per-event preferences, delivers every
// (recipient, channel) pair concurrently and never fails the caller.
package notify

import (
	"fmt"
	"time"
)

// Event names a business event that produces admin notifications.
type Event string

const (
	EventNewOrder       Event = "newOrder"
	EventReturnRequest  Event = "returnRequest"
	EventProjectRequest Event = "projectRequest"
	EventReturnHandover Event = "returnHandover"
)

// Events lists every event type, in a stable order.
func Events() []Event {
	return []Event{EventNewOrder, EventReturnRequest, EventProjectRequest, EventReturnHandover}
}

// EventNames returns Events as strings, for preference key validation.
func EventNames() []string {
	events := Events()
	out := make([]string, len(events))
	for i, e := range events {
		out[i] = string(e)
	}
	return out
}

// Payload is one of NewOrderPayload, ReturnRequestPayload,
// ProjectRequestPayload or ReturnHandoverPayload.
type Payload interface {
	Event() Event
	wall(baseURL string) wallMessage
	subject() string
}

type wallMessage struct {
	Title    string
	Body     string
	Link     string
	Metadata map[string]any
}

// LineItem is an order line as shown in notifications.
type LineItem struct {
	Name     string
	Quantity int
	Price    int64 // minor units
}

// NewOrderPayload describes a freshly placed order.
type NewOrderPayload struct {
	OrderID       string
	OrderNumber   string
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	Total         int64 // minor units
	Currency      string
	Items         []LineItem
	PlacedAt      time.Time
}

func (NewOrderPayload) Event() Event { return EventNewOrder }

func (p NewOrderPayload) subject() string {
	return fmt.Sprintf("New order %s", p.OrderNumber)
}

func (p NewOrderPayload) wall(baseURL string) wallMessage {
	return wallMessage{
		Title: "New order " + p.OrderNumber,
		Body:  fmt.Sprintf("%s placed an order for %s (%d items).", p.CustomerName, FormatMoney(p.Total, p.Currency), len(p.Items)),
		Link:  baseURL + "/admin/orders/" + p.OrderID,
		Metadata: map[string]any{
			"order_id":     p.OrderID,
			"order_number": p.OrderNumber,
			"total":        p.Total,
			"currency":     p.Currency,
		},
	}
}

// ReturnRequestPayload describes a submitted return request.
type ReturnRequestPayload struct {
	RequestID     string
	RequestNumber string
	OrderID       string
	OrderNumber   string
	CustomerName  string
	Reason        string
	Condition     string
	Description   string
	ImageCount    int
	RequestedAt   time.Time
}

func (ReturnRequestPayload) Event() Event { return EventReturnRequest }

func (p ReturnRequestPayload) subject() string {
	return fmt.Sprintf("Return request %s for order %s", p.RequestNumber, p.OrderNumber)
}

func (p ReturnRequestPayload) wall(baseURL string) wallMessage {
	return wallMessage{
		Title: "Return request " + p.RequestNumber,
		Body:  fmt.Sprintf("%s requested a return for order %s: %s.", p.CustomerName, p.OrderNumber, p.Reason),
		Link:  baseURL + "/admin/returns/" + p.RequestID,
		Metadata: map[string]any{
			"return_request_id": p.RequestID,
			"order_id":          p.OrderID,
			"reason":            p.Reason,
			"condition":         p.Condition,
		},
	}
}

// ProjectRequestPayload describes a service/project enquiry.
type ProjectRequestPayload struct {
	RequestID   string
	Name        string
	Email       string
	Phone       string
	Service     string
	Budget      string
	Message     string
	SubmittedAt time.Time
}

func (ProjectRequestPayload) Event() Event { return EventProjectRequest }

func (p ProjectRequestPayload) subject() string {
	return fmt.Sprintf("New project request from %s", p.Name)
}

func (p ProjectRequestPayload) wall(baseURL string) wallMessage {
	return wallMessage{
		Title: "Project request: " + p.Service,
		Body:  fmt.Sprintf("%s (%s) submitted a project request.", p.Name, p.Email),
		Link:  baseURL + "/admin/projects/" + p.RequestID,
		Metadata: map[string]any{
			"project_request_id": p.RequestID,
			"service":            p.Service,
			"budget":             p.Budget,
		},
	}
}

// ReturnHandoverPayload describes a customer confirming pickup hand-over.
type ReturnHandoverPayload struct {
	RequestID     string
	RequestNumber string
	OrderID       string
	OrderNumber   string
	CustomerName  string
	PickupDate    time.Time
	HandedOverAt  time.Time
}

func (ReturnHandoverPayload) Event() Event { return EventReturnHandover }

func (p ReturnHandoverPayload) subject() string {
	return fmt.Sprintf("Return %s handed over", p.RequestNumber)
}

func (p ReturnHandoverPayload) wall(baseURL string) wallMessage {
	return wallMessage{
		Title: "Return " + p.RequestNumber + " handed over",
		Body:  fmt.Sprintf("%s handed over the items for order %s.", p.CustomerName, p.OrderNumber),
		Link:  baseURL + "/admin/returns/" + p.RequestID,
		Metadata: map[string]any{
			"return_request_id": p.RequestID,
			"order_id":          p.OrderID,
			"handed_over_at":    p.HandedOverAt,
		},
	}
}

// FormatMoney renders minor units as "12.34 USD".
func FormatMoney(minor int64, currency string) string {
	sign := ""
	if minor < 0 {
		sign = "-"
		minor = -minor
	}
	return fmt.Sprintf("%s%d.%02d %s", sign, minor/100, minor%100, currency)
}
