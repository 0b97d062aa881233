package main

import (
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/dmitrymomot/multitenant/pkg/authcallback"
)

// authConfig describes the optional OAuth2 provider whose callbacks carry the
// tenant identifier in the state parameter.
type authConfig struct {
	SchemeName   string        `env:"AUTH_SCHEME" envDefault:"oidc"`
	ClientID     string        `env:"AUTH_CLIENT_ID"`
	ClientSecret string        `env:"AUTH_CLIENT_SECRET"`
	AuthURL      string        `env:"AUTH_AUTH_URL"`
	TokenURL     string        `env:"AUTH_TOKEN_URL"`
	RedirectURL  string        `env:"AUTH_REDIRECT_URL" envDefault:"http://localhost:8080/signin-oidc"`
	Scopes       []string      `env:"AUTH_SCOPES" envSeparator:"," envDefault:"openid,profile"`
	StateSecret  string        `env:"AUTH_STATE_SECRET"`
	StateTTL     time.Duration `env:"AUTH_STATE_TTL" envDefault:"15m"`
	SignedOutURL string        `env:"AUTH_SIGNED_OUT_PATH" envDefault:"/signout-callback-oidc"`
}

func (c authConfig) enabled() bool { return c.ClientID != "" }

// scheme builds the OAuth2 scheme, nil when auth is not configured.
func (c authConfig) scheme() (*authcallback.OAuth2Scheme, error) {
	if !c.enabled() {
		return nil, nil
	}
	protector, err := authcallback.NewSignedProtector(c.StateSecret)
	if err != nil {
		return nil, err
	}

	scopes := make([]string, 0, len(c.Scopes))
	for _, s := range c.Scopes {
		if s = strings.TrimSpace(s); s != "" {
			scopes = append(scopes, s)
		}
	}

	return authcallback.NewOAuth2Scheme(c.SchemeName, &oauth2.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		Endpoint:     oauth2.Endpoint{AuthURL: c.AuthURL, TokenURL: c.TokenURL},
		RedirectURL:  c.RedirectURL,
		Scopes:       scopes,
	}, protector,
		authcallback.WithStateTTL(c.StateTTL),
		authcallback.WithSignedOutCallbackPath(c.SignedOutURL),
	)
}
