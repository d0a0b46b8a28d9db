package notify

import (
	"strings"

	"github.com/dmitrymomot/storefront/svc/settings"
)

// Recipient is one resolved notification target. An empty UserID means the
// recipient can only be reached by email.
type Recipient struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	UserID string `json:"user_id,omitempty"`
}

// Resolver turns a settings snapshot into the recipients of an event.
type Resolver struct {
	fallbackEmail string
}

// NewResolver creates a resolver; fallbackEmail may be empty.
func NewResolver(fallbackEmail string) *Resolver {
	return &Resolver{fallbackEmail: strings.TrimSpace(fallbackEmail)}
}

// Resolve returns nothing when the event is disabled, the configured admins
// (first settings.MaxAdminRecipients only) when present, otherwise the
// email-only fallback recipient if one is configured.
func (r *Resolver) Resolve(event Event, snapshot settings.NotificationSettings) []Recipient {
	if !snapshot.Enabled(string(event)) {
		return nil
	}

	admins := snapshot.AdminRecipients
	if len(admins) > settings.MaxAdminRecipients {
		admins = admins[:settings.MaxAdminRecipients]
	}

	if len(admins) > 0 {
		out := make([]Recipient, 0, len(admins))
		for _, a := range admins {
			out = append(out, Recipient{Name: a.Name, Email: a.Email, UserID: a.UserID})
		}
		return out
	}

	if r.fallbackEmail == "" {
		return nil
	}
	return []Recipient{{Name: "Admin", Email: r.fallbackEmail}}
}
