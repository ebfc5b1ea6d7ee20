package config

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// ErrParsingConfig wraps every failure to populate a configuration struct.
var ErrParsingConfig = errors.New("failed to parse configuration")

var (
	dotenvOnce sync.Once
	cache      sync.Map // reflect.Type -> loaded value
)

// Load populates cfg from the environment. The first call for a given type parses
// the environment; later calls for the same type copy the cached value.
// A .env file in the working directory is loaded once, before the first parse;
// a missing file is not an error.
func Load[T any](cfg *T) error {
	dotenvOnce.Do(func() {
		_ = godotenv.Load()
	})

	key := reflect.TypeFor[T]()
	if v, ok := cache.Load(key); ok {
		*cfg = v.(T)
		return nil
	}

	var loaded T
	if err := env.Parse(&loaded); err != nil {
		return fmt.Errorf("%w: %w", ErrParsingConfig, err)
	}

	actual, _ := cache.LoadOrStore(key, loaded)
	*cfg = actual.(T)
	return nil
}

// MustLoad is Load that panics on failure. Meant for program startup.
func MustLoad[T any](cfg *T) {
	if err := Load(cfg); err != nil {
		panic(err)
	}
}
