package tenancy

import (
	"context"
	"fmt"
	"sync"
)

// Lifetime controls how often a Slot runs its factory.
type Lifetime int

const (
	// Singleton builds the value once and hands out the same instance.
	Singleton Lifetime = iota
	// Transient builds a fresh value on every Get.
	Transient
)

func (l Lifetime) String() string {
	switch l {
	case Singleton:
		return "singleton"
	case Transient:
		return "transient"
	default:
		return fmt.Sprintf("lifetime(%d)", int(l))
	}
}

// Factory constructs the value held by a Slot.
type Factory[T any] func(ctx context.Context) (T, error)

// Slot is a single registration: a factory plus the lifetime of what it builds.
// Slots are safe for concurrent use.
type Slot[T any] struct {
	mu       sync.Mutex
	factory  Factory[T]
	lifetime Lifetime

	built    bool
	instance T
}

// Provide replaces the registration.
func (s *Slot[T]) Provide(factory Factory[T], lifetime Lifetime) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.factory = factory
	s.lifetime = lifetime
	s.reset()
}

// ProvideInstance registers an already constructed singleton.
func (s *Slot[T]) ProvideInstance(v T) {
	s.Provide(func(context.Context) (T, error) { return v, nil }, Singleton)
}

func (s *Slot[T]) Registered() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.factory != nil
}

func (s *Slot[T]) Lifetime() Lifetime {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lifetime
}

// Get returns the registered value. A failed singleton build is not cached,
// the next Get runs the factory again.
func (s *Slot[T]) Get(ctx context.Context) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var zero T
	if s.factory == nil {
		return zero, ErrNotRegistered
	}
	if s.lifetime == Singleton && s.built {
		return s.instance, nil
	}

	v, err := s.factory(ctx)
	if err != nil {
		return zero, err
	}
	if s.lifetime == Singleton {
		s.instance = v
		s.built = true
	}
	return v, nil
}

func (s *Slot[T]) reset() {
	var zero T
	s.instance = zero
	s.built = false
}

// Decorate replaces the registration in slot with one that builds wrap around
// the original value, keeping the original lifetime. It reports false and
// changes nothing when the slot is empty.
func Decorate[T any](slot *Slot[T], wrap func(T) (T, error)) bool {
	if slot == nil || wrap == nil {
		return false
	}

	slot.mu.Lock()
	defer slot.mu.Unlock()

	inner := slot.factory
	if inner == nil {
		return false
	}

	slot.factory = func(ctx context.Context) (T, error) {
		v, err := inner(ctx)
		if err != nil {
			var zero T
			return zero, err
		}
		return wrap(v)
	}
	slot.reset()
	return true
}
