package tenantstore

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/text/cases"

	"github.com/dmitrymomot/multitenant/pkg/tenant"
)

// MemoryStore keeps tenants in process memory.
// Identifier lookups ignore case unless WithCaseSensitive(true) is set.
type MemoryStore struct {
	mu            sync.RWMutex
	caseSensitive bool
	byKey         map[string]*tenant.Info
	keyByID       map[string]string
	seed          []*tenant.Info
}

// MemoryOption configures a MemoryStore.
type MemoryOption func(*MemoryStore)

// WithCaseSensitive makes identifier lookups case sensitive.
func WithCaseSensitive(enabled bool) MemoryOption {
	return func(s *MemoryStore) {
		s.caseSensitive = enabled
	}
}

// WithTenants preloads the store.
func WithTenants(infos ...*tenant.Info) MemoryOption {
	return func(s *MemoryStore) {
		s.seed = append(s.seed, infos...)
	}
}

// NewMemoryStore fails when a preloaded tenant is invalid or duplicated.
func NewMemoryStore(opts ...MemoryOption) (*MemoryStore, error) {
	s := &MemoryStore{
		byKey:   make(map[string]*tenant.Info),
		keyByID: make(map[string]string),
	}
	for _, opt := range opts {
		opt(s)
	}

	seed := s.seed
	s.seed = nil
	for _, info := range seed {
		if err := s.Add(context.Background(), info); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *MemoryStore) Name() string { return "memory" }

func (s *MemoryStore) key(identifier string) string {
	if s.caseSensitive {
		return identifier
	}
	// Caser values are stateful, so one per call.
	return cases.Fold().String(identifier)
}

func (s *MemoryStore) GetByIdentifier(_ context.Context, identifier string) (*tenant.Info, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	info, ok := s.byKey[s.key(identifier)]
	if !ok {
		return nil, tenant.ErrTenantNotFound
	}
	return info.Clone(), nil
}

func (s *MemoryStore) GetByID(_ context.Context, id string) (*tenant.Info, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	key, ok := s.keyByID[id]
	if !ok {
		return nil, tenant.ErrTenantNotFound
	}
	return s.byKey[key].Clone(), nil
}

// List returns all tenants ordered by identifier.
func (s *MemoryStore) List(context.Context) ([]*tenant.Info, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*tenant.Info, 0, len(s.byKey))
	for _, info := range s.byKey {
		out = append(out, info.Clone())
	}
	slices.SortFunc(out, func(a, b *tenant.Info) int {
		return cmp.Compare(a.Identifier, b.Identifier)
	})
	return out, nil
}

// Add stores a copy of info. An empty ID is replaced with a generated UUID.
func (s *MemoryStore) Add(_ context.Context, info *tenant.Info) error {
	if err := validateInfo(info); err != nil {
		return err
	}

	c := info.Clone()
	if c.ID == "" {
		c.ID = uuid.NewString()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := s.key(c.Identifier)
	if _, ok := s.byKey[key]; ok {
		return fmt.Errorf("%w: identifier %q", ErrDuplicateTenant, c.Identifier)
	}
	if _, ok := s.keyByID[c.ID]; ok {
		return fmt.Errorf("%w: id %q", ErrDuplicateTenant, c.ID)
	}

	s.byKey[key] = c
	s.keyByID[c.ID] = key
	return nil
}

// Update replaces the tenant with the same ID. The identifier may change.
func (s *MemoryStore) Update(_ context.Context, info *tenant.Info) error {
	if err := validateInfo(info); err != nil {
		return err
	}
	if info.ID == "" {
		return fmt.Errorf("%w: tenant id is required for update", tenant.ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	oldKey, ok := s.keyByID[info.ID]
	if !ok {
		return tenant.ErrTenantNotFound
	}

	newKey := s.key(info.Identifier)
	if newKey != oldKey {
		if _, taken := s.byKey[newKey]; taken {
			return fmt.Errorf("%w: identifier %q", ErrDuplicateTenant, info.Identifier)
		}
		delete(s.byKey, oldKey)
	}

	s.byKey[newKey] = info.Clone()
	s.keyByID[info.ID] = newKey
	return nil
}

func (s *MemoryStore) Remove(_ context.Context, identifier string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := s.key(identifier)
	info, ok := s.byKey[key]
	if !ok {
		return tenant.ErrTenantNotFound
	}
	delete(s.byKey, key)
	delete(s.keyByID, info.ID)
	return nil
}

func validateInfo(info *tenant.Info) error {
	if info == nil {
		return fmt.Errorf("%w: tenant info is nil", tenant.ErrValidation)
	}
	if strings.TrimSpace(info.Identifier) == "" {
		return fmt.Errorf("%w: tenant identifier is required", tenant.ErrValidation)
	}
	return nil
}
