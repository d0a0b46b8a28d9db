package orders

import (
	"context"
	"errors"
	"fmt"
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

// PlaceRequest is a checkout submission.
type PlaceRequest struct {
	UserID   string   `json:"-"`
	Customer Customer `json:"customer"`
	Items    []Item   `json:"items"`
	Currency string   `json:"currency"`
}

// Service manages the order lifecycle.
type Service interface {
	Place(ctx context.Context, req PlaceRequest) (Order, error)
	Get(ctx context.Context, id string) (Order, error)
	// Eligibility loads the order and evaluates its self-service actions now.
	Eligibility(ctx context.Context, id string) (Order, Eligibility, error)
	// Cancel cancels an order owned by userID. An empty userID skips the owner check.
	Cancel(ctx context.Context, id, userID string) (Order, error)
	// UpdateStatus is the admin fulfilment update.
	UpdateStatus(ctx context.Context, id string, to Status) (Order, error)
}

type service struct {
	store    Store
	notifier Notifier
	logger   *slog.Logger
	now      func() time.Time
}

// ServiceOption configures the order service.
type ServiceOption func(*service)

// WithNotifier sets the notifier that receives newOrder events.
func WithNotifier(n Notifier) ServiceOption {
	return func(s *service) {
		if n != nil {
			s.notifier = n
		}
	}
}

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) ServiceOption {
	return func(s *service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides the clock used for timestamps and eligibility.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService creates the order service. It panics when store is nil.
func NewService(store Store, opts ...ServiceOption) Service {
	if store == nil {
		panic("orders: Store is required")
	}
	s := &service{
		store:    store,
		notifier: noopNotifier{},
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) Place(ctx context.Context, req PlaceRequest) (Order, error) {
	if err := validatePlace(req); err != nil {
		return Order{}, err
	}

	seq, err := s.store.NextNumber(ctx)
	if err != nil {
		return Order{}, errors.Join(ErrFailedToPlace, err)
	}

	now := s.now()
	o := Order{
		ID:     uuid.NewString(),
		Number: fmt.Sprintf("ORD-%06d", seq),
		UserID: req.UserID,
		Status: StatusPending,
		Items:  req.Items,
		Customer: Customer{
			Name:  strings.TrimSpace(req.Customer.Name),
			Email: strings.ToLower(strings.TrimSpace(req.Customer.Email)),
			Phone: strings.TrimSpace(req.Customer.Phone),
		},
		Currency:  strings.ToUpper(req.Currency),
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, it := range o.Items {
		o.Total += it.Subtotal()
	}

	if err := s.store.Create(ctx, o); err != nil {
		return Order{}, errors.Join(ErrFailedToPlace, err)
	}

	s.logger.LogAttrs(ctx, slog.LevelInfo, "order placed",
		logger.OrderID(o.ID),
		logger.UserID(o.UserID),
	)
	s.notifier.DispatchAsync(ctx, newOrderPayload(o))

	return o, nil
}

func (s *service) Get(ctx context.Context, id string) (Order, error) {
	return s.store.Get(ctx, id)
}

func (s *service) Eligibility(ctx context.Context, id string) (Order, Eligibility, error) {
	o, err := s.store.Get(ctx, id)
	if err != nil {
		return Order{}, Eligibility{}, err
	}
	return o, EligibilityAt(o, s.now()), nil
}

func (s *service) Cancel(ctx context.Context, id, userID string) (Order, error) {
	o, err := s.store.Get(ctx, id)
	if err != nil {
		return Order{}, err
	}
	if userID != "" && o.UserID != userID {
		return Order{}, ErrOrderNotFound
	}
	if err := CheckCancel(o); err != nil {
		return Order{}, err
	}

	updated, err := s.store.SetStatus(ctx, id, o.Status, StatusCancelled, s.now())
	if err != nil {
		return Order{}, s.wrapUpdate(err)
	}

	s.logger.LogAttrs(ctx, slog.LevelInfo, "order cancelled",
		logger.OrderID(id),
		logger.UserID(userID),
	)
	return updated, nil
}

func (s *service) UpdateStatus(ctx context.Context, id string, to Status) (Order, error) {
	if err := validator.Apply(validator.OneOf("status", to, Statuses())); err != nil {
		return Order{}, err
	}
	o, err := s.store.Get(ctx, id)
	if err != nil {
		return Order{}, err
	}
	if err := checkTransition(ctx, o.Status, to); err != nil {
		return Order{}, err
	}

	updated, err := s.store.SetStatus(ctx, id, o.Status, to, s.now())
	if err != nil {
		return Order{}, s.wrapUpdate(err)
	}

	s.logger.LogAttrs(ctx, slog.LevelInfo, "order status updated",
		logger.OrderID(id),
		slog.String("from", string(o.Status)),
		slog.String("to", string(to)),
	)
	return updated, nil
}

func (s *service) wrapUpdate(err error) error {
	if errors.Is(err, ErrOrderNotFound) || errors.Is(err, ErrStatusConflict) {
		return err
	}
	return errors.Join(ErrFailedToUpdate, err)
}

func validatePlace(req PlaceRequest) error {
	rules := []validator.Rule{
		validator.Required("customer.name", req.Customer.Name),
		validator.MaxLen("customer.name", req.Customer.Name, 200),
		validator.ValidEmail("customer.email", strings.TrimSpace(req.Customer.Email)),
		validator.MaxLen("customer.phone", req.Customer.Phone, 32),
		validator.Custom("currency", "validation.currency", "must be a 3-letter currency code",
			func() bool { return len(req.Currency) == 3 }),
		validator.MinItems("items", req.Items, 1),
	}
	for i, it := range req.Items {
		field := fmt.Sprintf("items[%d]", i)
		rules = append(rules,
			validator.Required(field+".name", it.Name),
			validator.Positive(field+".quantity", it.Quantity),
			validator.Positive(field+".price", it.Price),
		)
	}
	return validator.Apply(rules...)
}

func newOrderPayload(o Order) notify.NewOrderPayload {
	items := make([]notify.LineItem, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, notify.LineItem{Name: it.Name, Quantity: it.Quantity, Price: it.Price})
	}
	return notify.NewOrderPayload{
		OrderID:       o.ID,
		OrderNumber:   o.Number,
		CustomerName:  o.Customer.Name,
		CustomerEmail: o.Customer.Email,
		CustomerPhone: o.Customer.Phone,
		Total:         o.Total,
		Currency:      o.Currency,
		Items:         items,
		PlacedAt:      o.CreatedAt,
	}
}

type noopNotifier struct{}

func (noopNotifier) DispatchAsync(context.Context, notify.Payload) {}
