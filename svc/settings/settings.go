// Package settings owns the admin notification configuration: who receives
// operational notifications (at most MaxAdminRecipients) and which event
// types are enabled.
package settings

import (
	"maps"
	"slices"
	"time"
)

// MaxAdminRecipients is the hard cap on configured admin recipients.
const MaxAdminRecipients = 2

// AdminRecipient is a staff identity that receives notifications.
// ID is stable across updates; UserID is the internal identity used for the wall.
type AdminRecipient struct {
	ID     string `json:"id" bson:"id"`
	UserID string `json:"user_id" bson:"user_id"`
	Name   string `json:"name" bson:"name"`
	Email  string `json:"email" bson:"email"`
}

// NotificationSettings is the singleton notification configuration.
type NotificationSettings struct {
	AdminRecipients []AdminRecipient `json:"admin_recipients" bson:"admin_recipients"`
	Preferences     map[string]bool  `json:"preferences" bson:"preferences"` // missing key means enabled
	UpdatedAt       time.Time        `json:"updated_at,omitzero" bson:"updated_at"`
	UpdatedBy       string           `json:"updated_by,omitempty" bson:"updated_by,omitempty"`
}

// Defaults returns the configuration used when nothing is stored or the
// store is unreachable: no recipients, every event enabled.
func Defaults() NotificationSettings {
	return NotificationSettings{
		AdminRecipients: []AdminRecipient{},
		Preferences:     map[string]bool{},
	}
}

// Enabled reports whether notifications for the event are on.
func (s NotificationSettings) Enabled(event string) bool {
	enabled, ok := s.Preferences[event]
	return !ok || enabled
}

// Recipient looks up a recipient by its stable ID.
func (s NotificationSettings) Recipient(id string) (AdminRecipient, bool) {
	i := slices.IndexFunc(s.AdminRecipients, func(r AdminRecipient) bool { return r.ID == id })
	if i < 0 {
		return AdminRecipient{}, false
	}
	return s.AdminRecipients[i], true
}

// Clone returns a deep copy so snapshots never share mutable state.
func (s NotificationSettings) Clone() NotificationSettings {
	out := s
	out.AdminRecipients = slices.Clone(s.AdminRecipients)
	if out.AdminRecipients == nil {
		out.AdminRecipients = []AdminRecipient{}
	}
	out.Preferences = maps.Clone(s.Preferences)
	if out.Preferences == nil {
		out.Preferences = map[string]bool{}
	}
	return out
}
