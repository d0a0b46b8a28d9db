package redis

import "time"

// Config describes the optional Redis connection used to relay live events
// between application instances. Leave Enabled false for single-instance deployments.
type Config struct {
	Enabled        bool          `env:"REDIS_ENABLED" envDefault:"false"`
	ConnectionURL  string        `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"` // redis://:password@host:6379/0
	RetryAttempts  int           `env:"REDIS_RETRY_ATTEMPTS" envDefault:"3"`
	RetryInterval  time.Duration `env:"REDIS_RETRY_INTERVAL" envDefault:"5s"`
	ConnectTimeout time.Duration `env:"REDIS_CONNECT_TIMEOUT" envDefault:"30s"`
}
