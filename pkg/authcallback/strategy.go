package authcallback

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"github.com/dmitrymomot/multitenant/pkg/logger"
	"github.com/dmitrymomot/multitenant/pkg/tenant"
)

const (
	// Priority runs the strategy after host and request based strategies
	// but before the static fallback.
	Priority = -900

	// DefaultMaxFormSize bounds the POST body read while looking for state.
	DefaultMaxFormSize int64 = 1 << 20

	stateKey = "state"
)

// Strategy recognises the redirect back from a remote authentication
// provider and reads the tenant identifier from the protected state.
type Strategy struct {
	provider    SchemeProvider
	logger      *slog.Logger
	maxFormSize int64
}

// Option configures a Strategy.
type Option func(*Strategy)

func WithLogger(l *slog.Logger) Option {
	return func(s *Strategy) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMaxFormSize overrides DefaultMaxFormSize. Non-positive values are ignored.
func WithMaxFormSize(n int64) Option {
	return func(s *Strategy) {
		if n > 0 {
			s.maxFormSize = n
		}
	}
}

// New returns tenant.ErrValidation when provider is nil.
func New(provider SchemeProvider, opts ...Option) (*Strategy, error) {
	if provider == nil {
		return nil, fmt.Errorf("%w: scheme provider cannot be nil", tenant.ErrValidation)
	}

	s := &Strategy{
		provider:    provider,
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		maxFormSize: DefaultMaxFormSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Strategy) Priority() int { return Priority }

func (s *Strategy) Name() string { return "remote-auth-callback" }

// Identifier returns "" for requests that are not a callback of any
// registered CallbackScheme.
func (s *Strategy) Identifier(ctx context.Context, req any) (string, error) {
	r, ok := req.(*http.Request)
	if !ok || r == nil {
		return "", fmt.Errorf("%w: %T must be *http.Request", tenant.ErrInvalidContextType, req)
	}

	schemes, err := s.provider.Schemes(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: list authentication schemes: %w", tenant.ErrResolution, err)
	}

	for _, scheme := range schemes {
		cs, ok := scheme.(CallbackScheme)
		if !ok || !isCallbackPath(r.URL.Path, cs) {
			continue
		}

		state, err := s.readState(r)
		if err != nil {
			return "", fmt.Errorf("%w: scheme %s: %w", tenant.ErrResolution, cs.Name(), err)
		}
		if state == "" {
			s.logger.WarnContext(ctx, "authentication callback without state",
				logger.Strategy(s.Name()),
				logger.Group("callback",
					slog.String("scheme", cs.Name()),
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
				),
			)
			return "", nil
		}

		props, err := cs.UnprotectState(state)
		if err != nil {
			return "", fmt.Errorf("%w: scheme %s: unprotect state: %w", tenant.ErrResolution, cs.Name(), err)
		}
		if props == nil {
			s.logger.WarnContext(ctx, "authentication state could not be read",
				logger.Strategy(s.Name()),
				slog.String("scheme", cs.Name()),
			)
			return "", nil
		}

		id, _ := props.Get(tenant.TenantToken)
		return id, nil
	}

	return "", nil
}

func isCallbackPath(path string, cs CallbackScheme) bool {
	if p := cs.CallbackPath(); p != "" && strings.EqualFold(path, p) {
		return true
	}
	if p := cs.SignedOutCallbackPath(); p != "" && strings.EqualFold(path, p) {
		return true
	}
	return false
}

func (s *Strategy) readState(r *http.Request) (string, error) {
	switch r.Method {
	case http.MethodGet:
		return lookupFold(r.URL.Query(), stateKey), nil
	case http.MethodPost:
		mediaType, params, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
		if err != nil {
			return "", nil
		}
		switch mediaType {
		case "application/x-www-form-urlencoded", "multipart/form-data":
		default:
			return "", nil
		}

		body, err := s.bufferBody(r)
		if err != nil {
			return "", err
		}

		if mediaType == "multipart/form-data" {
			form, err := multipart.NewReader(bytes.NewReader(body), params["boundary"]).ReadForm(s.maxFormSize)
			if err != nil {
				return "", fmt.Errorf("parse multipart form: %w", err)
			}
			defer form.RemoveAll()
			return lookupFold(form.Value, stateKey), nil
		}

		values, err := url.ParseQuery(string(body))
		if err != nil {
			return "", fmt.Errorf("parse form: %w", err)
		}
		return lookupFold(values, stateKey), nil
	default:
		return "", nil
	}
}

// bufferBody reads at most maxFormSize bytes and restores r.Body so
// downstream handlers can read the form again.
func (s *Strategy) bufferBody(r *http.Request) ([]byte, error) {
	if r.Body == nil || r.Body == http.NoBody {
		return nil, nil
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, s.maxFormSize+1))
	if err != nil {
		return nil, fmt.Errorf("read form: %w", err)
	}

	orig := r.Body
	r.Body = readCloser{Reader: io.MultiReader(bytes.NewReader(body), orig), Closer: orig}

	if int64(len(body)) > s.maxFormSize {
		return nil, fmt.Errorf("%w: limit %d bytes", ErrFormTooLarge, s.maxFormSize)
	}
	return body, nil
}

type readCloser struct {
	io.Reader
	io.Closer
}

// lookupFold returns the first value whose key equals key ignoring case.
func lookupFold(values map[string][]string, key string) string {
	if v := values[key]; len(v) > 0 {
		return v[0]
	}
	for k, v := range values {
		if strings.EqualFold(k, key) && len(v) > 0 {
			return v[0]
		}
	}
	return ""
}
