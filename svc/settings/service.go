package settings

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/storefront/pkg/validator"
)

// Provider supplies the current settings snapshot for a dispatch.
type Provider interface {
	Snapshot(ctx context.Context) (NotificationSettings, error)
}

// Service reads and updates the notification settings.
type Service interface {
	Provider
	Update(ctx context.Context, req UpdateRequest) (NotificationSettings, error)
}

// RecipientInput is one recipient in an update. An empty ID creates a new entry.
type RecipientInput struct {
	ID     string `json:"id,omitempty"`
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
}

// UpdateRequest replaces the whole configuration.
type UpdateRequest struct {
	AdminRecipients []RecipientInput `json:"admin_recipients"`
	Preferences     map[string]bool  `json:"preferences"`
	UpdatedBy       string           `json:"-"`
}

type service struct {
	store       Store
	knownEvents []string
	now         func() time.Time
}

// ServiceOption configures the service.
type ServiceOption func(*service)

// WithKnownEvents restricts preference keys to the given event names.
func WithKnownEvents(events ...string) ServiceOption {
	return func(s *service) { s.knownEvents = events }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService creates the settings service. It panics when store is nil.
func NewService(store Store, opts ...ServiceOption) Service {
	if store == nil {
		panic("settings: Store is required")
	}
	s := &service{store: store, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Snapshot returns a private copy of the stored settings, Defaults when none
// were saved, and ErrSettingsUnavailable when the store fails.
func (s *service) Snapshot(ctx context.Context) (NotificationSettings, error) {
	current, err := s.store.Load(ctx)
	switch {
	case errors.Is(err, ErrSettingsNotFound):
		return Defaults(), nil
	case err != nil:
		return NotificationSettings{}, errors.Join(ErrSettingsUnavailable, err)
	}
	return current.Clone(), nil
}

// Update validates the whole request before writing anything.
func (s *service) Update(ctx context.Context, req UpdateRequest) (NotificationSettings, error) {
	if err := s.validate(req); err != nil {
		return NotificationSettings{}, err
	}

	current, err := s.Snapshot(ctx)
	if err != nil {
		return NotificationSettings{}, err
	}

	next := NotificationSettings{
		AdminRecipients: make([]AdminRecipient, 0, len(req.AdminRecipients)),
		Preferences:     make(map[string]bool, len(req.Preferences)),
		UpdatedAt:       s.now(),
		UpdatedBy:       req.UpdatedBy,
	}
	for _, in := range req.AdminRecipients {
		id := in.ID
		if _, ok := current.Recipient(id); !ok || id == "" {
			id = uuid.NewString()
		}
		next.AdminRecipients = append(next.AdminRecipients, AdminRecipient{
			ID:     id,
			UserID: strings.TrimSpace(in.UserID),
			Name:   strings.TrimSpace(in.Name),
			Email:  strings.ToLower(strings.TrimSpace(in.Email)),
		})
	}
	for k, v := range req.Preferences {
		next.Preferences[k] = v
	}

	if err := s.store.Save(ctx, next); err != nil {
		return NotificationSettings{}, errors.Join(ErrFailedToSave, err)
	}
	return next.Clone(), nil
}

func (s *service) validate(req UpdateRequest) error {
	rules := []validator.Rule{
		validator.MaxItems("admin_recipients", req.AdminRecipients, MaxAdminRecipients).WithCause(ErrTooManyRecipients),
	}

	seen := make(map[string]bool, len(req.AdminRecipients))
	for i, r := range req.AdminRecipients {
		field := fmt.Sprintf("admin_recipients[%d]", i)
		email := strings.ToLower(strings.TrimSpace(r.Email))
		duplicate := seen[email]
		seen[email] = true

		rules = append(rules,
			validator.Required(field+".name", r.Name),
			validator.MaxLen(field+".name", r.Name, 100),
			validator.ValidEmail(field+".email", strings.TrimSpace(r.Email)),
			validator.Custom(field+".email", "validation.duplicate", "recipient is listed twice",
				func() bool { return !duplicate }).WithCause(ErrDuplicateRecipient),
		)
	}

	if len(s.knownEvents) > 0 {
		keys := make([]string, 0, len(req.Preferences))
		for k := range req.Preferences {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		for _, k := range keys {
			rules = append(rules, validator.OneOf("preferences."+k, k, s.knownEvents).WithCause(ErrUnknownEvent))
		}
	}

	return validator.Apply(rules...)
}
