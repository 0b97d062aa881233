package tenant

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"time"

	"github.com/dmitrymomot/multitenant/pkg/logger"
)

// Resolver runs strategies in priority order and loads the tenant from a store.
// It is safe for concurrent use once constructed.
type Resolver struct {
	store         Store
	strategies    []registeredStrategy
	logger        *slog.Logger
	onResolved    func(ctx context.Context, tc *Context)
	onNotResolved func(ctx context.Context, identifier string)
}

type registeredStrategy struct {
	strategy Strategy
	priority int
	name     string
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithStrategy registers a strategy. Its priority comes from Prioritized, or 0.
func WithStrategy(s Strategy) ResolverOption {
	return func(r *Resolver) {
		if s == nil {
			return
		}
		p := 0
		if ps, ok := s.(Prioritized); ok {
			p = ps.Priority()
		}
		r.strategies = append(r.strategies, registeredStrategy{strategy: s, priority: p, name: nameOf(s)})
	}
}

// WithStrategyPriority registers a strategy with an explicit priority.
func WithStrategyPriority(s Strategy, priority int) ResolverOption {
	return func(r *Resolver) {
		if s == nil {
			return
		}
		r.strategies = append(r.strategies, registeredStrategy{strategy: s, priority: priority, name: nameOf(s)})
	}
}

// WithResolverLogger sets the logger used for resolution diagnostics.
func WithResolverLogger(l *slog.Logger) ResolverOption {
	return func(r *Resolver) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithOnResolved registers a callback invoked after a tenant is resolved.
func WithOnResolved(fn func(ctx context.Context, tc *Context)) ResolverOption {
	return func(r *Resolver) {
		r.onResolved = fn
	}
}

// WithOnNotResolved registers a callback invoked when resolution yields no tenant.
// identifier is empty when no strategy produced one.
func WithOnNotResolved(fn func(ctx context.Context, identifier string)) ResolverOption {
	return func(r *Resolver) {
		r.onNotResolved = fn
	}
}

// NewResolver returns ErrValidation when store is nil.
func NewResolver(store Store, opts ...ResolverOption) (*Resolver, error) {
	if store == nil {
		return nil, fmt.Errorf("%w: resolver store cannot be nil", ErrValidation)
	}

	r := &Resolver{
		store:  store,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}

	slices.SortStableFunc(r.strategies, func(a, b registeredStrategy) int {
		return cmp.Compare(b.priority, a.priority)
	})

	return r, nil
}

// Strategies returns the strategy names in execution order.
func (r *Resolver) Strategies() []string {
	names := make([]string, len(r.strategies))
	for i, s := range r.strategies {
		names[i] = s.name
	}
	return names
}

// Resolve returns the tenant for req, or nil with a nil error when no
// strategy produced an identifier or the store does not know it.
func (r *Resolver) Resolve(ctx context.Context, req any) (*Context, error) {
	var (
		identifier string
		strategy   string
		started    = time.Now()
	)

	for _, s := range r.strategies {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		id, err := s.strategy.Identifier(ctx, req)
		if err != nil {
			return nil, wrapResolution(err, "strategy %s", s.name)
		}
		if id != "" {
			identifier, strategy = id, s.name
			break
		}
	}

	if identifier == "" {
		r.logger.DebugContext(ctx, "no tenant identifier found", slog.Int("strategies", len(r.strategies)))
		r.notResolved(ctx, "")
		return nil, nil
	}

	info, err := r.store.GetByIdentifier(ctx, identifier)
	if err != nil && !errors.Is(err, ErrTenantNotFound) {
		return nil, wrapResolution(err, "store lookup %q", identifier)
	}
	if info == nil {
		r.logger.DebugContext(ctx, "tenant not found",
			logger.TenantIdentifier(identifier),
			logger.Strategy(strategy),
			logger.Store(nameOf(r.store)),
		)
		r.notResolved(ctx, identifier)
		return nil, nil
	}

	tc := &Context{
		Identifier: identifier,
		Info:       info,
		Strategy:   strategy,
		Store:      nameOf(r.store),
	}

	r.logger.DebugContext(ctx, "tenant resolved",
		logger.Group("tenant", logger.TenantIdentifier(identifier), logger.TenantID(info.ID)),
		logger.Strategy(strategy),
		logger.Store(tc.Store),
		logger.Duration(time.Since(started)),
	)

	if r.onResolved != nil {
		r.onResolved(ctx, tc)
	}
	return tc, nil
}

func (r *Resolver) notResolved(ctx context.Context, identifier string) {
	if r.onNotResolved != nil {
		r.onNotResolved(ctx, identifier)
	}
}

// wrapResolution keeps context errors, ErrInvalidContextType and
// already wrapped errors intact.
func wrapResolution(err error, format string, args ...any) error {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	case errors.Is(err, ErrInvalidContextType), errors.Is(err, ErrResolution):
		return err
	}
	return fmt.Errorf("%w: %s: %w", ErrResolution, fmt.Sprintf(format, args...), err)
}

func nameOf(v any) string {
	if n, ok := v.(Named); ok {
		return n.Name()
	}
	return fmt.Sprintf("%T", v)
}
