package notify_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/storefront/svc/notify"
	"github.com/dmitrymomot/storefront/svc/settings"
)

func TestResolver_Resolve(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		fallback string
		snapshot func() settings.NotificationSettings
		event    notify.Event
		want     []notify.Recipient
	}{
		{
			name:     "explicit false disables",
			fallback: "ops@example.com",
			snapshot: func() settings.NotificationSettings {
				s := twoAdmins()
				s.Preferences = map[string]bool{"newOrder": false}
				return s
			},
			event: notify.EventNewOrder,
			want:  nil,
		},
		{
			name:     "missing preference means enabled",
			snapshot: twoAdmins,
			event:    notify.EventProjectRequest,
			want: []notify.Recipient{
				{Name: "Alice", Email: "alice@example.com", UserID: "u1"},
				{Name: "Bob", Email: "bob@example.com", UserID: "u2"},
			},
		},
		{
			name:     "fallback when no admins",
			fallback: "  ops@example.com ",
			snapshot: settings.Defaults,
			event:    notify.EventReturnHandover,
			want:     []notify.Recipient{{Name: "Admin", Email: "ops@example.com"}},
		},
		{
			name:     "nothing when no admins and no fallback",
			snapshot: settings.Defaults,
			event:    notify.EventNewOrder,
			want:     nil,
		},
		{
			name:     "admins win over fallback",
			fallback: "ops@example.com",
			snapshot: twoAdmins,
			event:    notify.EventReturnRequest,
			want: []notify.Recipient{
				{Name: "Alice", Email: "alice@example.com", UserID: "u1"},
				{Name: "Bob", Email: "bob@example.com", UserID: "u2"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := notify.NewResolver(tt.fallback).Resolve(tt.event, tt.snapshot())
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolver_CapsAtTwo(t *testing.T) {
	t.Parallel()

	s := twoAdmins()
	s.AdminRecipients = append(s.AdminRecipients, settings.AdminRecipient{Name: "Eve", Email: "eve@example.com"})

	got := notify.NewResolver("").Resolve(notify.EventNewOrder, s)
	require.Len(t, got, settings.MaxAdminRecipients)
	assert.Equal(t, "alice@example.com", got[0].Email)
	assert.Equal(t, "bob@example.com", got[1].Email)
}

func TestConfig_FallbackAddress(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "admin@example.com", notify.Config{AdminEmail: "admin@example.com", EmailUser: "user@example.com"}.FallbackAddress())
	assert.Equal(t, "user@example.com", notify.Config{EmailUser: "user@example.com"}.FallbackAddress())
	assert.Empty(t, notify.Config{}.FallbackAddress())
}
