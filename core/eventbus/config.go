package eventbus

import (
	"github.com/dmitrymomot/eventbus/core/config"
)

// Config holds bus settings loaded from environment variables.
type Config struct {
	HandlerPrefix string     `env:"EVENTBUS_HANDLER_PREFIX" envDefault:"On"`
	FailurePrefix string     `env:"EVENTBUS_FAILURE_PREFIX" envDefault:"Recover"`
	CancelMode    CancelMode `env:"EVENTBUS_CANCEL_MODE" envDefault:"respect"`
}

// LoadConfig reads Config from the environment (and .env on first use).
func LoadConfig() (Config, error) {
	var cfg Config
	if err := config.Load(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// NewFromConfig creates a bus from cfg. Options are applied after the config,
// so they take precedence.
//
// Example:
//
//	cfg, err := eventbus.LoadConfig()
//	if err != nil {
//	    return err
//	}
//	bus := eventbus.NewFromConfig(cfg, eventbus.WithLogger(log))
func NewFromConfig(cfg Config, opts ...Option) *Bus {
	base := []Option{
		WithHandlerPrefix(cfg.HandlerPrefix),
		WithFailurePrefix(cfg.FailurePrefix),
		WithDefaultCancelMode(cfg.CancelMode),
	}
	return New(append(base, opts...)...)
}
