package tenant

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"
)

const (
	// MaxIdentifierLength keeps identifiers DNS compatible.
	MaxIdentifierLength = 63

	// DefaultHeaderName is used by NewHeaderStrategy when no name is given.
	DefaultHeaderName = "X-Tenant-ID"
)

// identifierPattern: alphanumeric start, then letters, digits and hyphens.
var identifierPattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9-]*$`)

func isValidIdentifier(id string) bool {
	return id != "" && len(id) <= MaxIdentifierLength && identifierPattern.MatchString(id)
}

// HeaderStrategy reads the identifier from an HTTP header.
type HeaderStrategy struct {
	header string
}

// NewHeaderStrategy defaults to DefaultHeaderName when headerName is empty.
func NewHeaderStrategy(headerName string) *HeaderStrategy {
	if headerName == "" {
		headerName = DefaultHeaderName
	}
	return &HeaderStrategy{header: headerName}
}

func (s *HeaderStrategy) Identifier(_ context.Context, req any) (string, error) {
	r, err := httpRequest(req)
	if err != nil {
		return "", err
	}

	value := strings.TrimSpace(r.Header.Get(s.header))
	if value == "" {
		return "", nil
	}
	if !isValidIdentifier(value) {
		return "", fmt.Errorf("%w: header %s value %q", ErrInvalidIdentifier, s.header, value)
	}
	return value, nil
}

func (s *HeaderStrategy) Name() string { return "header" }

// PathStrategy reads the identifier from a 1-based URL path segment,
// e.g. position 1 reads "acme" from "/acme/dashboard".
type PathStrategy struct {
	position int
}

// NewPathStrategy returns ErrValidation for positions below 1.
func NewPathStrategy(position int) (*PathStrategy, error) {
	if position < 1 {
		return nil, fmt.Errorf("%w: path position must be >= 1, got %d", ErrValidation, position)
	}
	return &PathStrategy{position: position}, nil
}

// NewBasePathStrategy reads the first path segment.
func NewBasePathStrategy() *PathStrategy {
	return &PathStrategy{position: 1}
}

func (s *PathStrategy) Identifier(_ context.Context, req any) (string, error) {
	r, err := httpRequest(req)
	if err != nil {
		return "", err
	}

	path := strings.Trim(r.URL.Path, "/")
	if path == "" {
		return "", nil
	}

	parts := strings.Split(path, "/")
	if s.position > len(parts) {
		return "", nil
	}

	value := strings.TrimSpace(parts[s.position-1])
	if value == "" {
		return "", nil
	}
	if !isValidIdentifier(value) {
		return "", fmt.Errorf("%w: path segment %q", ErrInvalidIdentifier, value)
	}
	return value, nil
}

func (s *PathStrategy) Name() string { return "path" }

// RouteStrategy reads a chi URL parameter. It only sees a value when the
// tenant middleware runs inside the matched route (e.g. via chi's With or Group).
type RouteStrategy struct {
	param string
}

// NewRouteStrategy defaults to the TenantToken parameter, i.e. "/{__tenant__}/...".
func NewRouteStrategy(param string) *RouteStrategy {
	if param == "" {
		param = TenantToken
	}
	return &RouteStrategy{param: param}
}

func (s *RouteStrategy) Identifier(_ context.Context, req any) (string, error) {
	r, err := httpRequest(req)
	if err != nil {
		return "", err
	}
	return chi.URLParam(r, s.param), nil
}

func (s *RouteStrategy) Name() string { return "route" }
