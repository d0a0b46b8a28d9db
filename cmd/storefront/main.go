// Command storefront runs the storefront API.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/go-chi/chi/v5/middleware"
	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/storefront/modules/api"
	"github.com/dmitrymomot/storefront/pkg/config"
	"github.com/dmitrymomot/storefront/pkg/email"
	"github.com/dmitrymomot/storefront/pkg/file"
	"github.com/dmitrymomot/storefront/pkg/httpserver"
	"github.com/dmitrymomot/storefront/pkg/logger"
	"github.com/dmitrymomot/storefront/pkg/mongo"
	"github.com/dmitrymomot/storefront/pkg/notifications"
	"github.com/dmitrymomot/storefront/pkg/redis"
	"github.com/dmitrymomot/storefront/svc/notify"
	"github.com/dmitrymomot/storefront/svc/orders"
	"github.com/dmitrymomot/storefront/svc/projects"
	"github.com/dmitrymomot/storefront/svc/returns"
	"github.com/dmitrymomot/storefront/svc/settings"
)

func main() {
	var cfg Config
	config.MustLoad(&cfg)

	log := logger.New(
		logger.WithEnvironment(cfg.AppEnv, cfg.AppName),
		logger.WithRequestID(middleware.GetReqID),
	)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.LogAttrs(ctx, slog.LevelError, "storefront stopped with error", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg Config, log *slog.Logger) error {
	client, err := mongo.New(ctx, cfg.Mongo)
	if err != nil {
		return err
	}
	defer func() { _ = client.Disconnect(context.Background()) }()
	db := client.Database(cfg.Mongo.Database)

	checks := []httpserver.Check{{Name: "mongo", Fn: mongo.Healthcheck(client)}}

	var redisClient *goredis.Client
	if cfg.Redis.Enabled {
		redisClient, err = redis.Connect(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		defer func() { _ = redisClient.Close() }()
		checks = append(checks, httpserver.Check{Name: "redis", Fn: redis.Healthcheck(redisClient)})
	}

	images, uploadsDir, err := imageStorage(ctx, cfg)
	if err != nil {
		return err
	}

	sender, err := email.NewSender(cfg.Email)
	if err != nil {
		return err
	}

	// Wall: persist in Mongo, push live through the hub, relayed over Redis
	// when several instances share the load.
	wallStore := notifications.NewMongoStorage(db)
	hub := notifications.NewHub(notifications.WithHubLogger(log))
	defer func() { _ = hub.Close() }()

	var wallDeliverer notifications.Deliverer = hub
	if redisClient != nil {
		wallDeliverer = notifications.NewRedisDeliverer(redisClient, notifications.DefaultRedisChannel)
	}
	wall := notifications.NewManager(wallStore, wallDeliverer, notifications.WithManagerLogger(log))

	settingsSvc := settings.NewService(settings.NewMongoStore(db),
		settings.WithKnownEvents(notify.EventNames()...))

	dispatcher := notify.NewDispatcher(
		settingsSvc,
		notify.NewResolver(cfg.Notify.FallbackAddress()),
		[]notify.Channel{
			notify.NewEmailChannel(sender, cfg.Notify.StoreURL, cfg.Notify.DeliveryTimeout),
			notify.NewWallChannel(wall, cfg.Notify.StoreURL, cfg.Notify.DeliveryTimeout),
		},
		notify.WithLogger(log.With(logger.Component("notify"))),
	)

	orderStore := orders.NewMongoStore(db)
	returnStore := returns.NewMongoStore(db)
	if err := errors.Join(
		wallStore.EnsureIndexes(ctx),
		orderStore.EnsureIndexes(ctx),
		returnStore.EnsureIndexes(ctx),
	); err != nil {
		return err
	}

	orderSvc := orders.NewService(orderStore,
		orders.WithNotifier(dispatcher),
		orders.WithLogger(log),
	)
	returnSvc := returns.NewService(returnStore, orderSvc,
		returns.WithImageStorage(images),
		returns.WithNotifier(dispatcher),
		returns.WithLogger(log),
	)
	projectSvc := projects.NewService(projects.NewMongoStore(db),
		projects.WithNotifier(dispatcher),
		projects.WithLogger(log),
	)

	router := api.NewRouter(api.Deps{
		Orders:   orderSvc,
		Returns:  returnSvc,
		Projects: projectSvc,
		Settings: settingsSvc,
		Wall:     wall,
		Hub:      hub,
		Checks:   checks,
	}, api.WithLogger(log))
	if uploadsDir != "" {
		router.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(uploadsDir))))
	}

	g, ctx := errgroup.WithContext(ctx)
	if redisClient != nil {
		relay := notifications.NewRedisRelay(redisClient, notifications.DefaultRedisChannel, hub, log)
		g.Go(func() error { return relay.Run(ctx) })
	}
	g.Go(func() error {
		return httpserver.New(cfg.HTTP, httpserver.WithLogger(log)).Run(ctx, router)
	})
	return g.Wait()
}

// imageStorage returns S3 when configured, otherwise a local directory served
// under /uploads.
func imageStorage(ctx context.Context, cfg Config) (file.Storage, string, error) {
	if cfg.S3.Enabled() {
		s, err := file.NewS3Storage(ctx, cfg.S3)
		return s, "", err
	}
	baseURL := strings.TrimSuffix(cfg.Notify.StoreURL, "/") + "/uploads"
	s, err := file.NewLocalStorage(cfg.UploadsDir, baseURL)
	return s, cfg.UploadsDir, err
}
