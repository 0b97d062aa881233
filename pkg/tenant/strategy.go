package tenant

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"reflect"
	"strings"
)

// StaticPriority places the static strategy after every other built-in strategy.
const StaticPriority = -1000

// StaticStrategy always yields the same identifier.
// It is typically registered as the last-resort fallback.
type StaticStrategy struct {
	identifier string
}

// NewStaticStrategy returns ErrValidation for an empty identifier.
func NewStaticStrategy(identifier string) (*StaticStrategy, error) {
	if strings.TrimSpace(identifier) == "" {
		return nil, fmt.Errorf("%w: static strategy identifier cannot be empty", ErrValidation)
	}
	return &StaticStrategy{identifier: identifier}, nil
}

func (s *StaticStrategy) Identifier(context.Context, any) (string, error) {
	return s.identifier, nil
}

func (s *StaticStrategy) Priority() int { return StaticPriority }

func (s *StaticStrategy) Name() string { return "static" }

// DelegateFunc computes an identifier from the request value.
type DelegateFunc func(ctx context.Context, req any) (string, error)

// DelegateStrategy hands identification to a caller supplied function.
type DelegateStrategy struct {
	fn DelegateFunc
}

// NewDelegateStrategy returns ErrValidation when fn is nil.
func NewDelegateStrategy(fn DelegateFunc) (*DelegateStrategy, error) {
	if fn == nil {
		return nil, fmt.Errorf("%w: delegate strategy function cannot be nil", ErrValidation)
	}
	return &DelegateStrategy{fn: fn}, nil
}

// Identifier calls the delegate unless ctx is already done.
func (s *DelegateStrategy) Identifier(ctx context.Context, req any) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return s.fn(ctx, req)
}

func (s *DelegateStrategy) Name() string { return "delegate" }

// requestHost extracts the host without port from the supported request types.
func requestHost(req any) (string, error) {
	switch r := req.(type) {
	case *http.Request:
		if r == nil {
			return "", fmt.Errorf("%w: nil *http.Request", ErrInvalidContextType)
		}
		return stripPort(r.Host), nil
	case HostProvider:
		if isNilPointer(r) {
			return "", fmt.Errorf("%w: nil %T", ErrInvalidContextType, req)
		}
		return stripPort(r.Host()), nil
	default:
		return "", fmt.Errorf("%w: %T must be *http.Request or tenant.HostProvider", ErrInvalidContextType, req)
	}
}

// isNilPointer reports a typed nil pointer hidden in a non-nil interface.
func isNilPointer(v any) bool {
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}

func httpRequest(req any) (*http.Request, error) {
	r, ok := req.(*http.Request)
	if !ok || r == nil {
		return nil, fmt.Errorf("%w: %T must be *http.Request", ErrInvalidContextType, req)
	}
	return r, nil
}

func stripPort(host string) string {
	if h, _, err := net.SplitHostPort(host); err == nil {
		return h
	}
	return strings.TrimSuffix(strings.TrimPrefix(host, "["), "]")
}
