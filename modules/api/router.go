// Package api mounts the storefront HTTP API: customer order and return
// flows, project enquiries, the admin back office and the admin wall.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrymomot/storefront/binder"
	"github.com/dmitrymomot/storefront/handler"
	"github.com/dmitrymomot/storefront/pkg/httpserver"
	"github.com/dmitrymomot/storefront/pkg/notifications"
	"github.com/dmitrymomot/storefront/svc/orders"
	"github.com/dmitrymomot/storefront/svc/projects"
	"github.com/dmitrymomot/storefront/svc/returns"
	"github.com/dmitrymomot/storefront/svc/settings"
)

const (
	defaultUploadMemory = 8 << 20
	defaultHeartbeat    = 25 * time.Second
	defaultProbeTimeout = 3 * time.Second
)

// Deps are the services behind the routes. Wall and Hub may be nil, which
// disables the wall endpoints.
type Deps struct {
	Orders   orders.Service
	Returns  returns.Service
	Projects *projects.Service
	Settings settings.Service
	Wall     *notifications.Manager
	Hub      *notifications.Hub
	Checks   []httpserver.Check
}

// Option configures the router.
type Option func(*api)

// WithLogger sets the router logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *api) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithUploadMemory sets how much of a multipart body is kept in memory.
func WithUploadMemory(n int64) Option {
	return func(a *api) {
		if n > 0 {
			a.uploadMemory = n
		}
	}
}

// WithStreamHeartbeat sets the SSE keep-alive interval.
func WithStreamHeartbeat(d time.Duration) Option {
	return func(a *api) {
		if d > 0 {
			a.heartbeat = d
		}
	}
}

type api struct {
	Deps
	logger       *slog.Logger
	uploadMemory int64
	heartbeat    time.Duration
	errorHandler handler.ErrorHandler
}

// NewRouter builds the HTTP router.
func NewRouter(deps Deps, opts ...Option) chi.Router {
	a := &api{
		Deps:         deps,
		logger:       slog.Default(),
		uploadMemory: defaultUploadMemory,
		heartbeat:    defaultHeartbeat,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.errorHandler = handler.NewErrorHandler(a.logger, Classifiers()...)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health/live", httpserver.LivenessHandler())
	r.Get("/health/ready", httpserver.ReadinessHandler(a.logger, defaultProbeTimeout, a.Checks...))

	pathJSON := []handler.Bind{binder.Path(chi.URLParam), binder.JSON()}

	r.Route("/orders", func(r chi.Router) {
		r.Post("/", wrap(a, a.placeOrder, binder.JSON()))
		r.Route("/{orderID}", func(r chi.Router) {
			r.Get("/", wrap(a, a.getOrder, binder.Path(chi.URLParam)))
			r.Post("/cancel", wrap(a, a.cancelOrder, binder.Path(chi.URLParam)))
			r.Post("/returns", wrap(a, a.createReturn,
				binder.Path(chi.URLParam), binder.Multipart(a.uploadMemory), binder.JSON()))
			r.Get("/returns", wrap(a, a.listOrderReturns, binder.Path(chi.URLParam)))
		})
	})

	r.Route("/returns/{requestID}", func(r chi.Router) {
		r.Post("/pickup", wrap(a, a.schedulePickup, pathJSON...))
		r.Post("/handover", wrap(a, a.confirmHandover, binder.Path(chi.URLParam)))
	})

	r.Post("/projects", wrap(a, a.submitProject, binder.JSON()))

	r.Route("/admin", func(r chi.Router) {
		r.Use(a.requireUser)

		r.Get("/returns", wrap(a, a.adminListReturns, binder.Query()))
		r.Post("/returns/{requestID}/decision", wrap(a, a.adminDecide, pathJSON...))
		r.Put("/orders/{orderID}/status", wrap(a, a.adminUpdateOrderStatus, pathJSON...))
		r.Get("/projects", wrap(a, a.adminListProjects, binder.Query()))

		r.Get("/settings/notifications", wrap(a, a.getSettings))
		r.Put("/settings/notifications", wrap(a, a.updateSettings, binder.JSON()))

		if a.Wall != nil {
			r.Get("/wall", wrap(a, a.listWall, binder.Query()))
			r.Post("/wall/read", wrap(a, a.markWallRead, binder.JSON()))
		}
		if a.Hub != nil {
			r.Get("/wall/stream", wrap(a, a.streamWall))
		}
	})

	return r
}

func wrap[R any](a *api, h handler.HandlerFunc[R], binders ...handler.Bind) http.HandlerFunc {
	return handler.Wrap(h, handler.WithBinders(binders...), handler.WithErrorHandler(a.errorHandler))
}

// requireUser rejects requests without a caller identity.
func (a *api) requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := handler.NewContext(w, r)
		if ctx.UserID() == "" {
			a.errorHandler(ctx, handler.ErrUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
