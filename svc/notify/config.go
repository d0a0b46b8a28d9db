package notify

import (
	"strings"
	"time"
)

// Config holds dispatcher settings loaded from the environment.
type Config struct {
	AdminEmail      string        `env:"ADMIN_EMAIL"`
	EmailUser       string        `env:"EMAIL_USER"`
	DeliveryTimeout time.Duration `env:"NOTIFY_DELIVERY_TIMEOUT" envDefault:"15s"`
	StoreURL        string        `env:"STORE_URL" envDefault:"http://localhost:8080"`
}

// FallbackAddress is ADMIN_EMAIL, or EMAIL_USER when that is unset.
func (c Config) FallbackAddress() string {
	if addr := strings.TrimSpace(c.AdminEmail); addr != "" {
		return addr
	}
	return strings.TrimSpace(c.EmailUser)
}
