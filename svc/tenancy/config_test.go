package tenancy_test

import (
	"context"
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/caarlos0/env/v11"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/multitenant/pkg/tenant"
	"github.com/dmitrymomot/multitenant/pkg/tenantstore"
	"github.com/dmitrymomot/multitenant/svc/tenancy"
)

type staticS3 string

func (s staticS3) GetObject(context.Context, *s3.GetObjectInput, ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(string(s)))}, nil
}

func parseConfig(t *testing.T, vars map[string]string) tenancy.Config {
	t.Helper()
	cfg, err := env.ParseAsWithOptions[tenancy.Config](env.Options{Environment: vars})
	require.NoError(t, err)
	return cfg
}

func TestConfig(t *testing.T) {
	t.Parallel()

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()

		cfg := parseConfig(t, map[string]string{})
		assert.Equal(t, tenancy.StoreConfiguration, cfg.Store)
		assert.Equal(t, "tenants.yaml", cfg.ConfigurationFile)
		assert.Equal(t, []string{"host"}, cfg.Strategies)
		assert.Equal(t, "__tenant__.*", cfg.HostTemplate)
		assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
		assert.Equal(t, "tenants.yaml", cfg.S3.Key)
	})

	t.Run("list parsing", func(t *testing.T) {
		t.Parallel()

		cfg := parseConfig(t, map[string]string{
			"TENANT_STRATEGIES": "header,static",
			"TENANT_CACHE":      "redis",
			"TENANTS_S3_BUCKET": "config",
		})
		assert.Equal(t, []string{"header", "static"}, cfg.Strategies)
		assert.Equal(t, tenancy.CacheRedis, cfg.Cache)
		assert.Equal(t, "config", cfg.S3.Bucket)
	})
}

func TestNewFromConfig(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("file configuration store with host strategy", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "tenants.yaml")
		require.NoError(t, os.WriteFile(path, []byte(tenantsYAML), 0o600))

		cfg := parseConfig(t, map[string]string{
			"TENANT_CONFIG_FILE":   path,
			"TENANT_HOST_TEMPLATE": "__tenant__.example.com",
		})
		r, err := tenancy.NewFromConfig(ctx, cfg, tenancy.Deps{})
		require.NoError(t, err)

		tc, err := r.Resolve(ctx, httptest.NewRequest("GET", "http://LOL.example.com/", nil))
		require.NoError(t, err)
		require.NotNil(t, tc)
		assert.Equal(t, "lol-id", tc.Info.ID)
		assert.Equal(t, "configuration", tc.Store)
	})

	t.Run("s3 configuration with in-process cache", func(t *testing.T) {
		t.Parallel()

		cfg := parseConfig(t, map[string]string{
			"TENANT_CONFIG_SOURCE":     "s3",
			"TENANTS_S3_BUCKET":        "config",
			"TENANT_CACHE":             "memory",
			"TENANT_STRATEGIES":        "header, static",
			"TENANT_STATIC_IDENTIFIER": "initech",
		})

		b := tenancy.NewBuilderFromConfig(cfg, tenancy.Deps{S3: staticS3(tenantsYAML)})
		defer b.Close()

		r, err := b.Build(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"header", "static"}, r.Strategies())

		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("X-Tenant-ID", "lol")
		tc, err := r.Resolve(ctx, req)
		require.NoError(t, err)
		require.NotNil(t, tc)
		assert.Equal(t, "lol-id", tc.Info.ID)
		assert.Equal(t, "cached-configuration", tc.Store)

		tc, err = r.Resolve(ctx, httptest.NewRequest("GET", "/", nil))
		require.NoError(t, err)
		require.NotNil(t, tc)
		assert.Equal(t, "initech-id", tc.Info.ID)
	})

	t.Run("memory store is case sensitive on request", func(t *testing.T) {
		t.Parallel()

		cfg := parseConfig(t, map[string]string{
			"TENANT_STORE":          "memory",
			"TENANT_CASE_SENSITIVE": "true",
			"TENANT_STRATEGIES":     "header",
		})
		b := tenancy.NewBuilderFromConfig(cfg, tenancy.Deps{})

		store, err := b.Store(ctx)
		require.NoError(t, err)
		w, ok := store.(tenant.Writer)
		require.True(t, ok)
		require.NoError(t, w.Add(ctx, &tenant.Info{Identifier: "acme"}))

		r, err := b.Build(ctx)
		require.NoError(t, err)

		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("X-Tenant-ID", "ACME")
		tc, err := r.Resolve(ctx, req)
		require.NoError(t, err)
		assert.Nil(t, tc)
	})

	t.Run("case sensitive store keeps cache entries apart", func(t *testing.T) {
		t.Parallel()

		cfg := parseConfig(t, map[string]string{
			"TENANT_STORE":          "memory",
			"TENANT_CASE_SENSITIVE": "true",
			"TENANT_CACHE":          "memory",
			"TENANT_STRATEGIES":     "header",
		})
		b := tenancy.NewBuilderFromConfig(cfg, tenancy.Deps{})
		defer b.Close()

		store, err := b.Store(ctx)
		require.NoError(t, err)
		w, ok := store.(tenant.Writer)
		require.True(t, ok)
		require.NoError(t, w.Add(ctx, &tenant.Info{ID: "upper", Identifier: "Acme"}))
		require.NoError(t, w.Add(ctx, &tenant.Info{ID: "lower", Identifier: "acme"}))

		r, err := b.Build(ctx)
		require.NoError(t, err)

		for identifier, id := range map[string]string{"Acme": "upper", "acme": "lower"} {
			req := httptest.NewRequest("GET", "/", nil)
			req.Header.Set("X-Tenant-ID", identifier)
			tc, err := r.Resolve(ctx, req)
			require.NoError(t, err)
			require.NotNil(t, tc)
			assert.Equal(t, id, tc.Info.ID)
		}
	})

	t.Run("missing dependencies and unknown names", func(t *testing.T) {
		t.Parallel()

		for _, tt := range []struct {
			vars map[string]string
			err  error
		}{
			{map[string]string{"TENANT_STORE": "postgres"}, tenancy.ErrMissingDependency},
			{map[string]string{"TENANT_STORE": "mongo"}, tenancy.ErrMissingDependency},
			{map[string]string{"TENANT_STORE": "memory", "TENANT_CACHE": "redis"}, tenancy.ErrMissingDependency},
			{map[string]string{"TENANT_STORE": "memory", "TENANT_STRATEGIES": "remote-auth-callback"}, tenancy.ErrMissingDependency},
			{map[string]string{"TENANT_STORE": "sqlite"}, tenancy.ErrUnknownStoreKind},
			{map[string]string{"TENANT_STORE": "memory", "TENANT_STRATEGIES": "cookie"}, tenancy.ErrUnknownStrategy},
			{map[string]string{"TENANT_STORE": "memory", "TENANT_CACHE": "memcached"}, tenant.ErrValidation},
			{map[string]string{"TENANT_CONFIG_SOURCE": "ftp"}, tenantstore.ErrInvalidConfiguration},
			{map[string]string{"TENANT_STORE": "http"}, tenant.ErrValidation},
		} {
			_, err := tenancy.NewFromConfig(ctx, parseConfig(t, tt.vars), tenancy.Deps{})
			assert.ErrorIs(t, err, tt.err, tt.vars)
		}
	})

	t.Run("missing configuration file", func(t *testing.T) {
		t.Parallel()

		cfg := parseConfig(t, map[string]string{
			"TENANT_CONFIG_FILE": filepath.Join(t.TempDir(), "none.yaml"),
		})
		_, err := tenancy.NewFromConfig(ctx, cfg, tenancy.Deps{})
		assert.ErrorIs(t, err, tenantstore.ErrSourceNotFound)
	})
}
