package authcallback

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Properties is the payload carried through the remote provider in the
// state parameter.
type Properties struct {
	Items     map[string]string `json:"items,omitempty"`
	IssuedAt  time.Time         `json:"iat"`
	ExpiresAt time.Time         `json:"exp"`
}

// NewProperties returns properties issued now that expire after ttl.
// A non-positive ttl means the properties never expire.
func NewProperties(ttl time.Duration) *Properties {
	now := time.Now().UTC()
	p := &Properties{Items: make(map[string]string), IssuedAt: now}
	if ttl > 0 {
		p.ExpiresAt = now.Add(ttl)
	}
	return p
}

func (p *Properties) Set(key, value string) {
	if p.Items == nil {
		p.Items = make(map[string]string)
	}
	p.Items[key] = value
}

func (p *Properties) Get(key string) (string, bool) {
	if p == nil || p.Items == nil {
		return "", false
	}
	v, ok := p.Items[key]
	return v, ok
}

// Expired reports whether the properties carry an expiry that is not after now.
func (p *Properties) Expired(now time.Time) bool {
	return !p.ExpiresAt.IsZero() && !now.Before(p.ExpiresAt)
}

// Scheme is a registered authentication scheme.
type Scheme interface {
	Name() string
}

// CallbackScheme is a remote-authentication scheme that receives the
// provider's response on fixed callback paths and can decode its state.
type CallbackScheme interface {
	Scheme
	CallbackPath() string
	SignedOutCallbackPath() string
	UnprotectState(state string) (*Properties, error)
}

// SchemeProvider lists the authentication schemes that can handle a request.
type SchemeProvider interface {
	Schemes(ctx context.Context) ([]Scheme, error)
}

// Schemes is a static SchemeProvider.
type Schemes []Scheme

func (s Schemes) Schemes(context.Context) ([]Scheme, error) {
	return s, nil
}

// RemoteScheme is a CallbackScheme backed by a Protector.
type RemoteScheme struct {
	name          string
	callbackPath  string
	signedOutPath string
	protector     Protector
}

// NewRemoteScheme requires a name, at least one callback path and a protector.
func NewRemoteScheme(name, callbackPath, signedOutCallbackPath string, protector Protector) (*RemoteScheme, error) {
	switch {
	case strings.TrimSpace(name) == "":
		return nil, fmt.Errorf("%w: name cannot be empty", ErrInvalidScheme)
	case callbackPath == "" && signedOutCallbackPath == "":
		return nil, fmt.Errorf("%w: %s has no callback paths", ErrInvalidScheme, name)
	case protector == nil:
		return nil, fmt.Errorf("%w: %s has no state protector", ErrInvalidScheme, name)
	}
	return &RemoteScheme{
		name:          name,
		callbackPath:  callbackPath,
		signedOutPath: signedOutCallbackPath,
		protector:     protector,
	}, nil
}

func (s *RemoteScheme) Name() string { return s.name }

func (s *RemoteScheme) CallbackPath() string { return s.callbackPath }

func (s *RemoteScheme) SignedOutCallbackPath() string { return s.signedOutPath }

// ProtectState encodes properties for use as the state parameter.
func (s *RemoteScheme) ProtectState(p *Properties) (string, error) {
	return s.protector.Protect(p)
}

func (s *RemoteScheme) UnprotectState(state string) (*Properties, error) {
	return s.protector.Unprotect(state)
}
