package authcallback

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"golang.org/x/oauth2"

	"github.com/dmitrymomot/multitenant/pkg/tenant"
)

// DefaultStateTTL bounds how long a user may take at the remote provider.
const DefaultStateTTL = 15 * time.Minute

// OAuth2Scheme is an OAuth2 authorization-code scheme that round-trips the
// tenant identifier through the protected state parameter. The callback
// path is taken from the config's RedirectURL.
type OAuth2Scheme struct {
	*RemoteScheme
	config   *oauth2.Config
	stateTTL time.Duration
}

// OAuth2Option configures an OAuth2Scheme.
type OAuth2Option func(*oauth2Options)

type oauth2Options struct {
	signedOutPath string
	stateTTL      time.Duration
}

// WithSignedOutCallbackPath sets the path the provider redirects to after sign-out.
func WithSignedOutCallbackPath(path string) OAuth2Option {
	return func(o *oauth2Options) {
		o.signedOutPath = path
	}
}

// WithStateTTL overrides DefaultStateTTL.
func WithStateTTL(ttl time.Duration) OAuth2Option {
	return func(o *oauth2Options) {
		if ttl > 0 {
			o.stateTTL = ttl
		}
	}
}

// NewOAuth2Scheme returns ErrInvalidScheme when cfg has no usable RedirectURL.
func NewOAuth2Scheme(name string, cfg *oauth2.Config, protector Protector, opts ...OAuth2Option) (*OAuth2Scheme, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: %s: oauth2 config is nil", ErrInvalidScheme, name)
	}

	o := oauth2Options{stateTTL: DefaultStateTTL}
	for _, opt := range opts {
		opt(&o)
	}

	u, err := url.Parse(cfg.RedirectURL)
	if err != nil || u.Path == "" {
		return nil, fmt.Errorf("%w: %s: redirect url %q has no path", ErrInvalidScheme, name, cfg.RedirectURL)
	}

	rs, err := NewRemoteScheme(name, u.Path, o.signedOutPath, protector)
	if err != nil {
		return nil, err
	}

	return &OAuth2Scheme{RemoteScheme: rs, config: cfg, stateTTL: o.stateTTL}, nil
}

// AuthCodeURL returns the provider's consent URL with the identifier embedded in the state.
func (s *OAuth2Scheme) AuthCodeURL(identifier string, opts ...oauth2.AuthCodeOption) (string, error) {
	props := NewProperties(s.stateTTL)
	props.Set(tenant.TenantToken, identifier)

	state, err := s.ProtectState(props)
	if err != nil {
		return "", fmt.Errorf("protect oauth2 state: %w", err)
	}
	return s.config.AuthCodeURL(state, opts...), nil
}

// ChallengeURL is AuthCodeURL for the tenant already resolved in ctx.
func (s *OAuth2Scheme) ChallengeURL(ctx context.Context, opts ...oauth2.AuthCodeOption) (string, error) {
	tc, ok := tenant.FromContext(ctx)
	if !ok || tc.Identifier == "" {
		return "", tenant.ErrNoTenantInContext
	}
	return s.AuthCodeURL(tc.Identifier, opts...)
}

// Exchange converts an authorization code into a token.
func (s *OAuth2Scheme) Exchange(ctx context.Context, code string, opts ...oauth2.AuthCodeOption) (*oauth2.Token, error) {
	return s.config.Exchange(ctx, code, opts...)
}
