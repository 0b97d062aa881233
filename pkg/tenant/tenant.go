package tenant

import (
	"context"
	"maps"

	"github.com/dmitrymomot/multitenant/pkg/hostpattern"
)

// TenantToken is the well-known key that carries a tenant identifier inside
// templates, route parameters and remote authentication state.
const TenantToken = hostpattern.TenantToken

// Info is the tenant record loaded by a Store.
// Values handed out by stores are never mutated by the resolution pipeline.
type Info struct {
	ID               string            `json:"id" yaml:"id" bson:"_id"`
	Identifier       string            `json:"identifier" yaml:"identifier" bson:"identifier"`
	Name             string            `json:"name,omitempty" yaml:"name,omitempty" bson:"name,omitempty"`
	ConnectionString string            `json:"connection_string,omitempty" yaml:"connection_string,omitempty" bson:"connection_string,omitempty"`
	Items            map[string]string `json:"items,omitempty" yaml:"items,omitempty" bson:"items,omitempty"`
}

// Clone returns a deep copy of the record.
func (i *Info) Clone() *Info {
	if i == nil {
		return nil
	}
	c := *i
	if i.Items != nil {
		c.Items = maps.Clone(i.Items)
	}
	return &c
}

// Item returns an extension property.
func (i *Info) Item(key string) (string, bool) {
	if i == nil || i.Items == nil {
		return "", false
	}
	v, ok := i.Items[key]
	return v, ok
}

// Context is the resolved tenant for a single request or operation.
type Context struct {
	Identifier string
	Info       *Info

	// Strategy and Store name the components that produced the result.
	Strategy string
	Store    string
}

// Store maps an identifier to a tenant record.
type Store interface {
	// GetByIdentifier returns ErrTenantNotFound when no tenant matches.
	GetByIdentifier(ctx context.Context, identifier string) (*Info, error)
}

// Finder looks tenants up by their stable ID.
type Finder interface {
	GetByID(ctx context.Context, id string) (*Info, error)
}

// Writer is implemented by mutable stores.
type Writer interface {
	Add(ctx context.Context, info *Info) error
	Update(ctx context.Context, info *Info) error
	Remove(ctx context.Context, identifier string) error
}

// Lister enumerates all tenants of a store.
type Lister interface {
	List(ctx context.Context) ([]*Info, error)
}

// Strategy extracts a tenant identifier from a request-like value.
// An empty identifier with a nil error means the strategy found nothing.
type Strategy interface {
	Identifier(ctx context.Context, req any) (string, error)
}

// Prioritized strategies declare their default position in the chain.
// Higher priorities run first.
type Prioritized interface {
	Priority() int
}

// Named components report a human readable name for logs and diagnostics.
type Named interface {
	Name() string
}

// HostProvider lets non-HTTP callers supply a host to host-based strategies.
type HostProvider interface {
	Host() string
}
