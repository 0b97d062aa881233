package tenantstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrymomot/multitenant/pkg/tenant"
)

const (
	// EndpointPlaceholder marks where the identifier goes in the endpoint template.
	EndpointPlaceholder = "{" + tenant.TenantToken + "}"

	maxRemoteBody = 1 << 20
)

// HTTPRemoteStore looks tenants up through a JSON HTTP endpoint, e.g.
// "https://tenants.example.com/api/{__tenant__}". A 2xx response carries the
// tenant as JSON, any other status means the tenant does not exist.
type HTTPRemoteStore struct {
	endpoint string
	client   *http.Client
	header   http.Header
}

// HTTPOption configures an HTTPRemoteStore.
type HTTPOption func(*HTTPRemoteStore)

func WithHTTPClient(client *http.Client) HTTPOption {
	return func(s *HTTPRemoteStore) {
		if client != nil {
			s.client = client
		}
	}
}

// WithRequestHeader adds a header to every lookup, e.g. an API key.
func WithRequestHeader(key, value string) HTTPOption {
	return func(s *HTTPRemoteStore) {
		s.header.Add(key, value)
	}
}

// NewHTTPRemoteStore validates the endpoint template. Without a placeholder
// the identifier is appended as the last path segment.
func NewHTTPRemoteStore(endpoint string, opts ...HTTPOption) (*HTTPRemoteStore, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("%w: remote store endpoint cannot be empty", tenant.ErrValidation)
	}
	if !strings.Contains(endpoint, EndpointPlaceholder) {
		if !strings.HasSuffix(endpoint, "/") {
			endpoint += "/"
		}
		endpoint += EndpointPlaceholder
	}

	u, err := url.Parse(strings.ReplaceAll(endpoint, EndpointPlaceholder, "x"))
	if err != nil {
		return nil, errors.Join(tenant.ErrValidation, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: remote store endpoint %q must be an absolute http(s) url", tenant.ErrValidation, endpoint)
	}

	s := &HTTPRemoteStore{
		endpoint: endpoint,
		client:   &http.Client{Timeout: 10 * time.Second},
		header:   make(http.Header),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *HTTPRemoteStore) Name() string { return "http-remote" }

// Endpoint returns the normalised endpoint template.
func (s *HTTPRemoteStore) Endpoint() string { return s.endpoint }

// GetByIdentifier returns transport errors as is, so callers can tell an
// unreachable endpoint from an unknown tenant.
func (s *HTTPRemoteStore) GetByIdentifier(ctx context.Context, identifier string) (*tenant.Info, error) {
	if identifier == "" {
		return nil, tenant.ErrTenantNotFound
	}

	target := strings.ReplaceAll(s.endpoint, EndpointPlaceholder, url.PathEscape(identifier))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, errors.Join(ErrRemoteStore, err)
	}
	req.Header = s.header.Clone()
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxRemoteBody))
		return nil, tenant.ErrTenantNotFound
	}

	var info tenant.Info
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxRemoteBody)).Decode(&info); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %w", ErrRemoteStore, target, err)
	}
	return &info, nil
}
