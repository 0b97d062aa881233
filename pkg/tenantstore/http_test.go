package tenantstore_test

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/multitenant/pkg/tenant"
	"github.com/dmitrymomot/multitenant/pkg/tenantstore"
)

func newTenantServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/tenants/{id}", func(w http.ResponseWriter, r *http.Request) {
		switch r.PathValue("id") {
		case "initech":
			assert.Equal(t, "application/json", r.Header.Get("Accept"))
			assert.Equal(t, "secret", r.Header.Get("X-Api-Key"))
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"id":"initech-id","identifier":"initech","name":"Initech","items":{"plan":"pro"}}`)
		case "broken":
			fmt.Fprint(w, `{"id":`)
		case "empty":
			w.WriteHeader(http.StatusNoContent)
		case "a b":
			fmt.Fprint(w, `{"id":"ab","identifier":"a b"}`)
		default:
			http.NotFound(w, r)
		}
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestHTTPRemoteStore(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("fetches tenant", func(t *testing.T) {
		t.Parallel()
		srv := newTenantServer(t)

		s, err := tenantstore.NewHTTPRemoteStore(srv.URL+"/api/tenants/{__tenant__}",
			tenantstore.WithHTTPClient(srv.Client()),
			tenantstore.WithRequestHeader("X-Api-Key", "secret"),
		)
		require.NoError(t, err)

		info, err := s.GetByIdentifier(ctx, "initech")
		require.NoError(t, err)
		assert.Equal(t, "initech-id", info.ID)
		assert.Equal(t, "Initech", info.Name)
		assert.Equal(t, map[string]string{"plan": "pro"}, info.Items)
	})

	t.Run("placeholder is appended", func(t *testing.T) {
		t.Parallel()
		srv := newTenantServer(t)

		s, err := tenantstore.NewHTTPRemoteStore(srv.URL + "/api/tenants")
		require.NoError(t, err)
		assert.Equal(t, srv.URL+"/api/tenants/{__tenant__}", s.Endpoint())

		info, err := s.GetByIdentifier(ctx, "a b")
		require.NoError(t, err)
		assert.Equal(t, "ab", info.ID)
	})

	t.Run("non-success statuses mean not found", func(t *testing.T) {
		t.Parallel()
		srv := newTenantServer(t)

		s, err := tenantstore.NewHTTPRemoteStore(srv.URL + "/api/tenants/")
		require.NoError(t, err)

		for _, id := range []string{"unknown", "empty", ""} {
			_, err := s.GetByIdentifier(ctx, id)
			assert.ErrorIs(t, err, tenant.ErrTenantNotFound, id)
		}
	})

	t.Run("malformed body", func(t *testing.T) {
		t.Parallel()
		srv := newTenantServer(t)

		s, err := tenantstore.NewHTTPRemoteStore(srv.URL + "/api/tenants/{__tenant__}")
		require.NoError(t, err)

		_, err = s.GetByIdentifier(ctx, "broken")
		assert.ErrorIs(t, err, tenantstore.ErrRemoteStore)
	})

	t.Run("transport errors are not masked", func(t *testing.T) {
		t.Parallel()

		l, err := net.Listen("tcp", "127.0.0.1:0")
		require.NoError(t, err)
		addr := l.Addr().String()
		require.NoError(t, l.Close())

		s, err := tenantstore.NewHTTPRemoteStore("http://" + addr + "/{__tenant__}")
		require.NoError(t, err)

		_, err = s.GetByIdentifier(ctx, "initech")
		require.Error(t, err)
		assert.False(t, errors.Is(err, tenant.ErrTenantNotFound))
	})

	t.Run("endpoint validation", func(t *testing.T) {
		t.Parallel()

		for _, endpoint := range []string{"", "   ", "example.com/{__tenant__}", "ftp://example.com/{__tenant__}", "http:///{__tenant__}"} {
			_, err := tenantstore.NewHTTPRemoteStore(endpoint)
			assert.ErrorIs(t, err, tenant.ErrValidation, endpoint)
		}

		s, err := tenantstore.NewHTTPRemoteStore("http://example.com")
		require.NoError(t, err)
		assert.Equal(t, "http://example.com/{__tenant__}", s.Endpoint())
		assert.Equal(t, "http-remote", s.Name())
	})
}
