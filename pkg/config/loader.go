package config

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// registry keeps one parsed copy per configuration type.
type registry struct {
	mu     sync.Mutex
	values map[reflect.Type]any
}

var (
	loaded = &registry{values: make(map[reflect.Type]any)}

	defaultEnvLoaded sync.Once
)

// LoadEnv reads .env files into the process environment. Variables that are
// already set win over file values. Without arguments the ".env" file in the
// working directory is read if it exists.
func LoadEnv(paths ...string) error {
	if len(paths) == 0 {
		defaultEnvLoaded.Do(func() {
			// the default file is optional
			_ = godotenv.Load()
		})
		return nil
	}
	if err := godotenv.Load(paths...); err != nil {
		return errors.Join(ErrLoadingEnvFile, err)
	}
	return nil
}

// MustLoadEnv is LoadEnv that panics on failure.
func MustLoadEnv(paths ...string) {
	if err := LoadEnv(paths...); err != nil {
		panic(fmt.Sprintf("failed to load env files: %v", err))
	}
}

// Load parses the environment into v. Each configuration type is parsed once
// per process and later calls receive the cached copy:
//
//	var cfg tenancy.Config
//	if err := config.Load(&cfg); err != nil {
//		return err
//	}
func Load[T any](v *T) error {
	if v == nil {
		return ErrNilPointer
	}
	_ = LoadEnv()

	key := typeOf[T]()

	loaded.mu.Lock()
	defer loaded.mu.Unlock()

	if cached, ok := loaded.values[key]; ok {
		*v = cached.(T)
		return nil
	}

	parsed, err := env.ParseAs[T]()
	if err != nil {
		return errors.Join(ErrParsingConfig, err)
	}
	loaded.values[key] = parsed
	*v = parsed
	return nil
}

// MustLoad works like Load but panics if the configuration cannot be parsed.
func MustLoad[T any](v *T) {
	if err := Load(v); err != nil {
		panic(fmt.Sprintf("failed to load required configuration: %v", err))
	}
}

// ForceReload drops the cached copy of T and parses the environment again.
func ForceReload[T any](v *T) error {
	if v == nil {
		return ErrNilPointer
	}
	loaded.mu.Lock()
	delete(loaded.values, typeOf[T]())
	loaded.mu.Unlock()
	return Load(v)
}

// ResetCache forgets every loaded configuration. Intended for tests.
func ResetCache() {
	loaded.mu.Lock()
	defer loaded.mu.Unlock()
	loaded.values = make(map[reflect.Type]any)
}

// Parse fills a configuration from an explicit variable set, bypassing the
// process environment and the cache.
func Parse[T any](environ map[string]string) (T, error) {
	v, err := env.ParseAsWithOptions[T](env.Options{Environment: environ})
	if err != nil {
		return v, errors.Join(ErrParsingConfig, err)
	}
	return v, nil
}

func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}
