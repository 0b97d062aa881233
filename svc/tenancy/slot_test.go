package tenancy_test

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/multitenant/svc/tenancy"
)

func counter(calls *atomic.Int32) tenancy.Factory[string] {
	return func(context.Context) (string, error) {
		n := calls.Add(1)
		return fmt.Sprintf("v%d", n), nil
	}
}

func TestSlot(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("empty slot", func(t *testing.T) {
		t.Parallel()

		var s tenancy.Slot[string]
		assert.False(t, s.Registered())
		_, err := s.Get(ctx)
		assert.ErrorIs(t, err, tenancy.ErrNotRegistered)
	})

	t.Run("singleton builds once", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32
		var s tenancy.Slot[string]
		s.Provide(counter(&calls), tenancy.Singleton)

		for range 3 {
			v, err := s.Get(ctx)
			require.NoError(t, err)
			assert.Equal(t, "v1", v)
		}
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("transient builds every time", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32
		var s tenancy.Slot[string]
		s.Provide(counter(&calls), tenancy.Transient)

		first, err := s.Get(ctx)
		require.NoError(t, err)
		second, err := s.Get(ctx)
		require.NoError(t, err)
		assert.NotEqual(t, first, second)
		assert.Equal(t, tenancy.Transient, s.Lifetime())
	})

	t.Run("failed singleton is retried", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32
		var s tenancy.Slot[string]
		s.Provide(func(context.Context) (string, error) {
			if calls.Add(1) == 1 {
				return "", errors.New("not yet")
			}
			return "ok", nil
		}, tenancy.Singleton)

		_, err := s.Get(ctx)
		require.Error(t, err)
		v, err := s.Get(ctx)
		require.NoError(t, err)
		assert.Equal(t, "ok", v)
	})

	t.Run("provide instance", func(t *testing.T) {
		t.Parallel()

		var s tenancy.Slot[string]
		s.ProvideInstance("fixed")
		assert.True(t, s.Registered())
		assert.Equal(t, tenancy.Singleton, s.Lifetime())

		v, err := s.Get(ctx)
		require.NoError(t, err)
		assert.Equal(t, "fixed", v)
	})
}

func TestDecorate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	wrap := func(v string) (string, error) { return "cached(" + v + ")", nil }

	t.Run("empty slot is left alone", func(t *testing.T) {
		t.Parallel()

		var s tenancy.Slot[string]
		assert.False(t, tenancy.Decorate(&s, wrap))
		assert.False(t, s.Registered())
		assert.False(t, tenancy.Decorate[string](nil, wrap))
	})

	t.Run("wraps instance", func(t *testing.T) {
		t.Parallel()

		var s tenancy.Slot[string]
		s.ProvideInstance("store")
		require.True(t, tenancy.Decorate(&s, wrap))

		v, err := s.Get(ctx)
		require.NoError(t, err)
		assert.Equal(t, "cached(store)", v)
	})

	t.Run("keeps lifetime", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32
		var s tenancy.Slot[string]
		s.Provide(counter(&calls), tenancy.Transient)
		require.True(t, tenancy.Decorate(&s, wrap))
		assert.Equal(t, tenancy.Transient, s.Lifetime())

		first, err := s.Get(ctx)
		require.NoError(t, err)
		second, err := s.Get(ctx)
		require.NoError(t, err)
		assert.Equal(t, "cached(v1)", first)
		assert.Equal(t, "cached(v2)", second)
	})

	t.Run("decorations stack", func(t *testing.T) {
		t.Parallel()

		var s tenancy.Slot[string]
		s.ProvideInstance("store")
		require.True(t, tenancy.Decorate(&s, wrap))
		require.True(t, tenancy.Decorate(&s, func(v string) (string, error) { return "logged(" + v + ")", nil }))

		v, err := s.Get(ctx)
		require.NoError(t, err)
		assert.Equal(t, "logged(cached(store))", v)
	})

	t.Run("errors propagate", func(t *testing.T) {
		t.Parallel()

		boom := errors.New("boom")
		var s tenancy.Slot[string]
		s.Provide(func(context.Context) (string, error) { return "", boom }, tenancy.Singleton)

		called := false
		require.True(t, tenancy.Decorate(&s, func(v string) (string, error) {
			called = true
			return v, nil
		}))

		_, err := s.Get(ctx)
		assert.ErrorIs(t, err, boom)
		assert.False(t, called)
	})
}
