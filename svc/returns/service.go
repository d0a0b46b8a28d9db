package returns

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/storefront/pkg/file"
	"github.com/dmitrymomot/storefront/pkg/logger"
	"github.com/dmitrymomot/storefront/pkg/statemachine"
	"github.com/dmitrymomot/storefront/pkg/validator"
	"github.com/dmitrymomot/storefront/svc/notify"
	"github.com/dmitrymomot/storefront/svc/orders"
)

// DefaultMaxImageSize bounds a single evidence image.
const DefaultMaxImageSize int64 = 5 << 20

// OrderReader loads the parent order of a request.
type OrderReader interface {
	Get(ctx context.Context, id string) (orders.Order, error)
}

// Notifier emits admin notifications without blocking the caller.
type Notifier interface {
	DispatchAsync(ctx context.Context, p notify.Payload)
}

// Details is the customer submission.
type Details struct {
	Reason      Reason        `json:"reason" form:"reason"`
	Condition   Condition     `json:"condition" form:"condition"`
	Description string        `json:"description" form:"description"`
	Images      []file.Upload `json:"-" file:"images"`
}

// Decision is the admin verdict on a pending request.
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

// Service runs the return request lifecycle.
type Service interface {
	// Create re-checks the order's return eligibility before storing anything.
	Create(ctx context.Context, orderID, userID string, d Details) (Request, error)
	Decide(ctx context.Context, id string, decision Decision, notes string) (Request, error)
	SchedulePickup(ctx context.Context, id string, date time.Time) (Request, error)
	ConfirmHandover(ctx context.Context, id string) (Request, error)
	Get(ctx context.Context, id string) (Request, error)
	ListByOrder(ctx context.Context, orderID string) ([]Request, error)
	List(ctx context.Context, f Filter) ([]Request, error)
}

type service struct {
	store        Store
	orders       OrderReader
	images       file.Storage
	notifier     Notifier
	logger       *slog.Logger
	now          func() time.Time
	maxImageSize int64
}

// ServiceOption configures the return service.
type ServiceOption func(*service)

// WithImageStorage enables evidence image uploads.
func WithImageStorage(s file.Storage) ServiceOption {
	return func(svc *service) { svc.images = s }
}

// WithMaxImageSize caps the size of a single evidence image.
func WithMaxImageSize(n int64) ServiceOption {
	return func(svc *service) {
		if n > 0 {
			svc.maxImageSize = n
		}
	}
}

// WithNotifier sets the notifier for returnRequest and returnHandover events.
func WithNotifier(n Notifier) ServiceOption {
	return func(svc *service) {
		if n != nil {
			svc.notifier = n
		}
	}
}

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) ServiceOption {
	return func(svc *service) {
		if l != nil {
			svc.logger = l
		}
	}
}

// WithClock overrides the clock used for timestamps and the return window.
func WithClock(now func() time.Time) ServiceOption {
	return func(svc *service) {
		if now != nil {
			svc.now = now
		}
	}
}

// NewService creates the return request service. It panics when store or orderReader is nil.
func NewService(store Store, orderReader OrderReader, opts ...ServiceOption) Service {
	if store == nil {
		panic("returns: Store is required")
	}
	if orderReader == nil {
		panic("returns: OrderReader is required")
	}
	s := &service{
		store:        store,
		orders:       orderReader,
		notifier:     noopNotifier{},
		logger:       slog.Default(),
		now:          time.Now,
		maxImageSize: DefaultMaxImageSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) Create(ctx context.Context, orderID, userID string, d Details) (Request, error) {
	defer closeUploads(d.Images)

	if err := validateDetails(d); err != nil {
		return Request{}, err
	}

	order, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return Request{}, err
	}
	if userID != "" && order.UserID != userID {
		return Request{}, orders.ErrOrderNotFound
	}
	now := s.now()
	if err := orders.CheckReturn(order, now); err != nil {
		return Request{}, err
	}

	r := Request{
		ID:          uuid.NewString(),
		OrderID:     order.ID,
		UserID:      order.UserID,
		Reason:      d.Reason,
		Condition:   d.Condition,
		Description: strings.TrimSpace(d.Description),
		Images:      []Image{},
		Status:      StatusPending,
		RequestedAt: now,
		UpdatedAt:   now,
	}

	images, err := s.storeImages(ctx, r.ID, d.Images)
	if err != nil {
		return Request{}, err
	}
	r.Images = images

	seq, err := s.store.NextNumber(ctx)
	if err != nil {
		s.discardImages(ctx, images)
		return Request{}, errors.Join(ErrFailedToCreate, err)
	}
	r.Number = fmt.Sprintf("RR-%06d", seq)

	if err := s.store.Create(ctx, r); err != nil {
		s.discardImages(ctx, images)
		return Request{}, errors.Join(ErrFailedToCreate, err)
	}

	s.logger.LogAttrs(ctx, slog.LevelInfo, "return request created",
		logger.ReturnRequestID(r.ID),
		logger.OrderID(r.OrderID),
		logger.UserID(r.UserID),
	)
	s.notifier.DispatchAsync(ctx, notify.ReturnRequestPayload{
		RequestID:     r.ID,
		RequestNumber: r.Number,
		OrderID:       order.ID,
		OrderNumber:   order.Number,
		CustomerName:  order.Customer.Name,
		Reason:        string(r.Reason),
		Condition:     string(r.Condition),
		Description:   r.Description,
		ImageCount:    len(r.Images),
		RequestedAt:   r.RequestedAt,
	})

	return r, nil
}

func (s *service) Decide(ctx context.Context, id string, decision Decision, notes string) (Request, error) {
	if err := validator.Apply(
		validator.OneOf("decision", decision, []Decision{DecisionApprove, DecisionReject}),
		validator.MaxLen("admin_notes", notes, 2000),
	); err != nil {
		return Request{}, err
	}

	event, status := EventApprove, StatusApproved
	if decision == DecisionReject {
		event, status = EventReject, StatusRejected
	}

	return s.transition(ctx, id, event, func(r *Request, now time.Time) {
		r.Status = status
		r.AdminNotes = strings.TrimSpace(notes)
		r.DecidedAt = &now
	})
}

func (s *service) SchedulePickup(ctx context.Context, id string, date time.Time) (Request, error) {
	if err := validator.Apply(validator.RequiredTime("pickup_date", date)); err != nil {
		return Request{}, err
	}
	return s.transition(ctx, id, EventSchedulePickup, func(r *Request, _ time.Time) {
		r.PickupScheduled = true
		r.PickupDate = &date
	})
}

func (s *service) ConfirmHandover(ctx context.Context, id string) (Request, error) {
	r, err := s.transition(ctx, id, EventConfirmHandover, func(r *Request, now time.Time) {
		r.UserHandedOver = true
		r.HandedOverAt = &now
	})
	if err != nil {
		return Request{}, err
	}

	payload := notify.ReturnHandoverPayload{
		RequestID:     r.ID,
		RequestNumber: r.Number,
		OrderID:       r.OrderID,
		HandedOverAt:  *r.HandedOverAt,
	}
	if r.PickupDate != nil {
		payload.PickupDate = *r.PickupDate
	}
	if order, err := s.orders.Get(ctx, r.OrderID); err == nil {
		payload.OrderNumber = order.Number
		payload.CustomerName = order.Customer.Name
	} else {
		s.logger.LogAttrs(ctx, slog.LevelWarn, "order lookup failed for hand-over notification",
			logger.ReturnRequestID(r.ID),
			logger.OrderID(r.OrderID),
			logger.Error(err),
		)
	}
	s.notifier.DispatchAsync(ctx, payload)

	return r, nil
}

func (s *service) Get(ctx context.Context, id string) (Request, error) {
	return s.store.Get(ctx, id)
}

func (s *service) ListByOrder(ctx context.Context, orderID string) ([]Request, error) {
	return s.store.ListByOrder(ctx, orderID)
}

func (s *service) List(ctx context.Context, f Filter) ([]Request, error) {
	return s.store.List(ctx, f)
}

// transition checks the lifecycle graph and commits through the store's
// compare-and-set. A lost race is reported against the stage that won.
func (s *service) transition(ctx context.Context, id string, event statemachine.StringEvent, apply func(*Request, time.Time)) (Request, error) {
	current, err := s.store.Get(ctx, id)
	if err != nil {
		return Request{}, err
	}
	if _, err := next(ctx, current, event); err != nil {
		return Request{}, err
	}

	now := s.now()
	updated, err := s.store.Transition(ctx, id, current.Stage(), func(r *Request) {
		apply(r, now)
		r.UpdatedAt = now
	})
	if errors.Is(err, ErrStageConflict) {
		latest, getErr := s.store.Get(ctx, id)
		if getErr != nil {
			return Request{}, getErr
		}
		return Request{}, &InvalidTransitionError{RequestID: id, From: latest.Stage(), Requested: string(event)}
	}
	if err != nil {
		if errors.Is(err, ErrRequestNotFound) {
			return Request{}, err
		}
		return Request{}, errors.Join(ErrFailedToUpdate, err)
	}

	s.logger.LogAttrs(ctx, slog.LevelInfo, "return request transitioned",
		logger.ReturnRequestID(id),
		slog.String("event", string(event)),
		slog.String("from", string(current.Stage())),
		slog.String("to", string(updated.Stage())),
	)
	return updated, nil
}

func (s *service) storeImages(ctx context.Context, requestID string, uploads []file.Upload) ([]Image, error) {
	images := []Image{}
	if len(uploads) == 0 {
		return images, nil
	}
	if s.images == nil {
		return nil, fmt.Errorf("%w: image storage is not configured", ErrImageUpload)
	}

	for _, up := range uploads {
		prepared, err := file.PrepareImage(up, s.maxImageSize)
		if err != nil {
			s.discardImages(ctx, images)
			return nil, errors.Join(ErrImageUpload, err)
		}

		imageID := uuid.NewString()
		key := fmt.Sprintf("returns/%s/%s%s", requestID, imageID, file.ExtensionFor(prepared.ContentType))
		obj, err := s.images.Put(ctx, key, prepared)
		if err != nil {
			s.discardImages(ctx, images)
			return nil, errors.Join(ErrImageUpload, err)
		}
		images = append(images, Image{ID: imageID, URL: obj.URL, Key: obj.Key})
	}
	return images, nil
}

func (s *service) discardImages(ctx context.Context, images []Image) {
	for _, img := range images {
		if err := s.images.Delete(ctx, img.Key); err != nil {
			s.logger.LogAttrs(ctx, slog.LevelWarn, "failed to remove orphaned return image",
				slog.String("key", img.Key),
				logger.Error(err),
			)
		}
	}
}

func closeUploads(uploads []file.Upload) {
	for _, up := range uploads {
		if c, ok := up.Body.(io.Closer); ok {
			_ = c.Close()
		}
	}
}

func validateDetails(d Details) error {
	return validator.Apply(
		validator.OneOf("reason", d.Reason, Reasons()),
		validator.OneOf("condition", d.Condition, Conditions()),
		validator.Required("description", d.Description),
		validator.MaxLen("description", d.Description, 2000),
		validator.MaxItems("images", d.Images, MaxImages).WithCause(ErrTooManyImages),
	)
}

type noopNotifier struct{}

func (noopNotifier) DispatchAsync(context.Context, notify.Payload) {}
