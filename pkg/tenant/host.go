package tenant

import (
	"context"
	"errors"

	"github.com/dmitrymomot/multitenant/pkg/hostpattern"
)

// HostStrategy extracts the identifier from the request host using a template
// such as "__tenant__.example.com". See package hostpattern for the syntax.
type HostStrategy struct {
	matcher *hostpattern.Matcher
}

// NewHostStrategy compiles the template. Invalid templates return an error
// that matches both ErrValidation and hostpattern.ErrInvalidTemplate.
func NewHostStrategy(template string, opts ...hostpattern.Option) (*HostStrategy, error) {
	m, err := hostpattern.Compile(template, opts...)
	if err != nil {
		return nil, errors.Join(ErrValidation, err)
	}
	return &HostStrategy{matcher: m}, nil
}

// Identifier accepts *http.Request or HostProvider. An empty or
// non-matching host yields "".
func (s *HostStrategy) Identifier(_ context.Context, req any) (string, error) {
	host, err := requestHost(req)
	if err != nil {
		return "", err
	}
	if host == "" {
		return "", nil
	}

	id, _ := s.matcher.Match(host)
	return id, nil
}

func (s *HostStrategy) Name() string { return "host" }

// Template returns the source template.
func (s *HostStrategy) Template() string { return s.matcher.Template() }
