// Package projects takes service/project enquiries from the storefront and
// forwards them to the shop admins.
package projects

import "time"

// Request is a submitted project enquiry.
type Request struct {
	ID        string    `json:"id" bson:"_id"`
	Name      string    `json:"name" bson:"name"`
	Email     string    `json:"email" bson:"email"`
	Phone     string    `json:"phone,omitempty" bson:"phone,omitempty"`
	Service   string    `json:"service" bson:"service"`
	Budget    string    `json:"budget,omitempty" bson:"budget,omitempty"`
	Message   string    `json:"message" bson:"message"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// SubmitRequest is the public form payload.
type SubmitRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Service string `json:"service"`
	Budget  string `json:"budget"`
	Message string `json:"message"`
}
