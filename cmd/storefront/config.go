package main

import (
	"github.com/dmitrymomot/storefront/pkg/email"
	"github.com/dmitrymomot/storefront/pkg/file"
	"github.com/dmitrymomot/storefront/pkg/httpserver"
	"github.com/dmitrymomot/storefront/pkg/mongo"
	"github.com/dmitrymomot/storefront/pkg/redis"
	"github.com/dmitrymomot/storefront/svc/notify"
)

// Config is the process configuration, read from the environment and .env.
type Config struct {
	AppEnv  string `env:"APP_ENV" envDefault:"development"`
	AppName string `env:"APP_NAME" envDefault:"storefront"`

	// UploadsDir stores return images locally when S3 is not configured.
	UploadsDir string `env:"UPLOADS_DIR" envDefault:"./tmp/uploads"`

	Mongo  mongo.Config
	Redis  redis.Config
	Email  email.Config
	HTTP   httpserver.Config
	S3     file.S3Config
	Notify notify.Config
}
