package authcallback_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/dmitrymomot/multitenant/pkg/authcallback"
	"github.com/dmitrymomot/multitenant/pkg/tenant"
)

func newOAuth2Config(redirect string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     "client",
		ClientSecret: "secret",
		RedirectURL:  redirect,
		Scopes:       []string{"openid"},
		Endpoint: oauth2.Endpoint{
			AuthURL:  "https://idp.example.com/authorize",
			TokenURL: "https://idp.example.com/token",
		},
	}
}

func TestOAuth2Scheme(t *testing.T) {
	t.Parallel()

	key, err := authcallback.GenerateKey()
	require.NoError(t, err)
	protector, err := authcallback.NewEncryptedProtector(key)
	require.NoError(t, err)

	t.Run("callback path from redirect url", func(t *testing.T) {
		t.Parallel()

		s, err := authcallback.NewOAuth2Scheme("google", newOAuth2Config("https://app.example.com/auth/callback"), protector,
			authcallback.WithSignedOutCallbackPath("/auth/signed-out"))
		require.NoError(t, err)
		assert.Equal(t, "google", s.Name())
		assert.Equal(t, "/auth/callback", s.CallbackPath())
		assert.Equal(t, "/auth/signed-out", s.SignedOutCallbackPath())
	})

	t.Run("invalid config", func(t *testing.T) {
		t.Parallel()

		_, err := authcallback.NewOAuth2Scheme("google", nil, protector)
		assert.ErrorIs(t, err, authcallback.ErrInvalidScheme)

		_, err = authcallback.NewOAuth2Scheme("google", newOAuth2Config("https://app.example.com"), protector)
		assert.ErrorIs(t, err, authcallback.ErrInvalidScheme)

		_, err = authcallback.NewOAuth2Scheme("google", newOAuth2Config("https://app.example.com/cb"), nil)
		assert.ErrorIs(t, err, authcallback.ErrInvalidScheme)
	})

	t.Run("challenge round trips the tenant", func(t *testing.T) {
		t.Parallel()

		s, err := authcallback.NewOAuth2Scheme("google", newOAuth2Config("https://app.example.com/auth/callback"), protector)
		require.NoError(t, err)

		ctx := tenant.WithContext(context.Background(), &tenant.Context{Identifier: "initech"})
		authURL, err := s.ChallengeURL(ctx, oauth2.AccessTypeOffline)
		require.NoError(t, err)

		u, err := url.Parse(authURL)
		require.NoError(t, err)
		assert.Equal(t, "idp.example.com", u.Host)
		assert.Equal(t, "offline", u.Query().Get("access_type"))
		state := u.Query().Get("state")
		require.NotEmpty(t, state)

		strategy, err := authcallback.New(authcallback.Schemes{s})
		require.NoError(t, err)

		callback := httptest.NewRequest(http.MethodGet, "/auth/callback?code=xyz&state="+url.QueryEscape(state), nil)
		id, err := strategy.Identifier(context.Background(), callback)
		require.NoError(t, err)
		assert.Equal(t, "initech", id)
	})

	t.Run("challenge without tenant", func(t *testing.T) {
		t.Parallel()

		s, err := authcallback.NewOAuth2Scheme("google", newOAuth2Config("https://app.example.com/auth/callback"), protector)
		require.NoError(t, err)

		_, err = s.ChallengeURL(context.Background())
		assert.ErrorIs(t, err, tenant.ErrNoTenantInContext)
	})

	t.Run("exchange", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.NoError(t, r.ParseForm())
			assert.Equal(t, "xyz", r.PostForm.Get("code"))
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"access_token":"token-1","token_type":"Bearer","expires_in":3600}`))
		}))
		defer srv.Close()

		cfg := newOAuth2Config("https://app.example.com/auth/callback")
		cfg.Endpoint.TokenURL = srv.URL
		s, err := authcallback.NewOAuth2Scheme("google", cfg, protector)
		require.NoError(t, err)

		tok, err := s.Exchange(context.Background(), "xyz")
		require.NoError(t, err)
		assert.Equal(t, "token-1", tok.AccessToken)
	})
}
