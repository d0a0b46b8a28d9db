package projects

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/storefront/pkg/logger"
	"github.com/dmitrymomot/storefront/pkg/validator"
	"github.com/dmitrymomot/storefront/svc/notify"
)

// Notifier emits admin notifications without blocking the caller.
type Notifier interface {
	DispatchAsync(ctx context.Context, p notify.Payload)
}

// Service accepts project enquiries.
type Service struct {
	store    Store
	notifier Notifier
	logger   *slog.Logger
	now      func() time.Time
}

type Option func(*Service)

// WithNotifier sets the notifier for projectRequest events.
func WithNotifier(n Notifier) Option {
	return func(s *Service) {
		if n != nil {
			s.notifier = n
		}
	}
}

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides the clock used to stamp submissions.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService creates the project intake service. It panics when store is nil.
func NewService(store Store, opts ...Option) *Service {
	if store == nil {
		panic("projects: Store is required")
	}
	s := &Service{store: store, notifier: noopNotifier{}, logger: slog.Default(), now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit validates and stores the enquiry, then notifies admins.
func (s *Service) Submit(ctx context.Context, in SubmitRequest) (Request, error) {
	if err := validator.Apply(
		validator.Required("name", in.Name),
		validator.MaxLen("name", in.Name, 200),
		validator.ValidEmail("email", strings.TrimSpace(in.Email)),
		validator.MaxLen("phone", in.Phone, 32),
		validator.Required("service", in.Service),
		validator.MaxLen("service", in.Service, 200),
		validator.MaxLen("budget", in.Budget, 100),
		validator.Required("message", in.Message),
		validator.MaxLen("message", in.Message, 5000),
	); err != nil {
		return Request{}, err
	}

	r := Request{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(in.Name),
		Email:     strings.ToLower(strings.TrimSpace(in.Email)),
		Phone:     strings.TrimSpace(in.Phone),
		Service:   strings.TrimSpace(in.Service),
		Budget:    strings.TrimSpace(in.Budget),
		Message:   strings.TrimSpace(in.Message),
		CreatedAt: s.now(),
	}
	if err := s.store.Create(ctx, r); err != nil {
		return Request{}, errors.Join(ErrFailedToSubmit, err)
	}

	s.logger.LogAttrs(ctx, slog.LevelInfo, "project request submitted",
		logger.RequestID(r.ID),
		slog.String("service", r.Service),
	)
	s.notifier.DispatchAsync(ctx, notify.ProjectRequestPayload{
		RequestID:   r.ID,
		Name:        r.Name,
		Email:       r.Email,
		Phone:       r.Phone,
		Service:     r.Service,
		Budget:      r.Budget,
		Message:     r.Message,
		SubmittedAt: r.CreatedAt,
	})
	return r, nil
}

// List returns the newest enquiries first.
func (s *Service) List(ctx context.Context, limit, offset int) ([]Request, error) {
	return s.store.List(ctx, limit, offset)
}

type noopNotifier struct{}

func (noopNotifier) DispatchAsync(context.Context, notify.Payload) {}
