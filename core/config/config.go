package config

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// ErrParsingConfig is returned when environment variables cannot be parsed into the target struct.
var ErrParsingConfig = errors.New("failed to parse config from environment")

var (
	dotenvOnce sync.Once

	mu    sync.Mutex
	cache = make(map[reflect.Type]any)
)

// Load populates cfg from environment variables, loading .env on first use.
// The first successful load of a type is cached; later calls copy the cached value into cfg.
func Load[T any](cfg *T) error {
	mu.Lock()
	defer mu.Unlock()

	key := reflect.TypeFor[T]()
	if cached, ok := cache[key]; ok {
		*cfg = cached.(T)
		return nil
	}

	if err := Parse(cfg); err != nil {
		return err
	}

	cache[key] = *cfg
	return nil
}

// MustLoad is like Load but panics on failure. Useful during startup.
func MustLoad[T any](cfg *T) {
	if err := Load(cfg); err != nil {
		panic(err)
	}
}

// Parse populates cfg from environment variables without touching the cache.
func Parse[T any](cfg *T) error {
	dotenvOnce.Do(func() {
		// A missing .env file is not an error; the environment may be set directly.
		_ = godotenv.Load()
	})

	if err := env.Parse(cfg); err != nil {
		return errors.Join(ErrParsingConfig, fmt.Errorf("%T: %w", *cfg, err))
	}
	return nil
}
