package redisstream

import (
	"time"

	"github.com/dmitrymomot/eventbus/core/config"
)

// Config holds sink settings.
type Config struct {
	Stream  string        `env:"EVENTBUS_DEADLETTER_STREAM" envDefault:"eventbus:failures"`
	MaxLen  int64         `env:"EVENTBUS_DEADLETTER_MAXLEN" envDefault:"10000"`
	Timeout time.Duration `env:"EVENTBUS_DEADLETTER_TIMEOUT" envDefault:"2s"`
}

// LoadConfig reads Config from the environment (and .env on first use).
func LoadConfig() (Config, error) {
	var cfg Config
	if err := config.Load(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
