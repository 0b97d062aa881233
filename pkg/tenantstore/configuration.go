package tenantstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"gopkg.in/yaml.v3"

	"github.com/dmitrymomot/multitenant/pkg/tenant"
)

// DefaultConfigurationSection is the YAML path of the tenants section.
const DefaultConfigurationSection = "multitenant:stores:configuration"

// ConfigurationStore serves a read-only snapshot of tenants described in a
// YAML document:
//
//	multitenant:
//	  stores:
//	    configuration:
//	      defaults:
//	        connection_string: "Datasource=sample.db"
//	      tenants:
//	        - id: initech-id
//	          identifier: initech
//	          name: Initech
//
// Every tenant entry is decoded on top of the defaults. Lookups ignore case.
type ConfigurationStore struct {
	source   Source
	section  []string
	snapshot atomic.Pointer[MemoryStore]
}

// ConfigurationOption configures a ConfigurationStore.
type ConfigurationOption func(*ConfigurationStore)

// WithSection sets the section path, separated by ":" or ".".
func WithSection(path string) ConfigurationOption {
	return func(s *ConfigurationStore) {
		s.section = splitSection(path)
	}
}

// NewConfigurationStore loads the initial snapshot from source.
func NewConfigurationStore(ctx context.Context, source Source, opts ...ConfigurationOption) (*ConfigurationStore, error) {
	if source == nil {
		return nil, fmt.Errorf("%w: configuration source cannot be nil", tenant.ErrValidation)
	}

	s := &ConfigurationStore{
		source:  source,
		section: splitSection(DefaultConfigurationSection),
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.Reload(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *ConfigurationStore) Name() string { return "configuration" }

// Reload re-reads the source and swaps the snapshot. On error the previous
// snapshot stays in place.
func (s *ConfigurationStore) Reload(ctx context.Context) error {
	data, err := s.source.Load(ctx)
	if err != nil {
		return err
	}

	infos, err := parseConfiguration(data, s.section)
	if err != nil {
		return err
	}

	snap, err := NewMemoryStore(WithTenants(infos...))
	if err != nil {
		return errors.Join(ErrInvalidConfiguration, err)
	}
	s.snapshot.Store(snap)
	return nil
}

func (s *ConfigurationStore) GetByIdentifier(ctx context.Context, identifier string) (*tenant.Info, error) {
	return s.snapshot.Load().GetByIdentifier(ctx, identifier)
}

func (s *ConfigurationStore) GetByID(ctx context.Context, id string) (*tenant.Info, error) {
	return s.snapshot.Load().GetByID(ctx, id)
}

func (s *ConfigurationStore) List(ctx context.Context) ([]*tenant.Info, error) {
	return s.snapshot.Load().List(ctx)
}

type configurationSection struct {
	Defaults yaml.Node   `yaml:"defaults"`
	Tenants  []yaml.Node `yaml:"tenants"`
}

func parseConfiguration(data []byte, section []string) ([]*tenant.Info, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Join(ErrInvalidConfiguration, err)
	}

	node := &doc
	if doc.Kind == yaml.DocumentNode && len(doc.Content) > 0 {
		node = doc.Content[0]
	}
	for _, name := range section {
		node = mappingValue(node, name)
		if node == nil {
			return nil, fmt.Errorf("%w: %s", ErrSectionNotFound, strings.Join(section, ":"))
		}
	}

	var sec configurationSection
	if err := node.Decode(&sec); err != nil {
		return nil, errors.Join(ErrInvalidConfiguration, err)
	}

	var defaults tenant.Info
	if sec.Defaults.Kind != 0 {
		if err := sec.Defaults.Decode(&defaults); err != nil {
			return nil, fmt.Errorf("%w: defaults: %w", ErrInvalidConfiguration, err)
		}
	}

	infos := make([]*tenant.Info, 0, len(sec.Tenants))
	for i := range sec.Tenants {
		info := defaults.Clone()
		if err := sec.Tenants[i].Decode(info); err != nil {
			return nil, fmt.Errorf("%w: tenant #%d: %w", ErrInvalidConfiguration, i, err)
		}
		if info.ID == "" {
			info.ID = info.Identifier
		}
		infos = append(infos, info)
	}
	return infos, nil
}

// mappingValue finds a key in a mapping node ignoring case.
func mappingValue(node *yaml.Node, key string) *yaml.Node {
	if node == nil || node.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if strings.EqualFold(node.Content[i].Value, key) {
			return node.Content[i+1]
		}
	}
	return nil
}

func splitSection(path string) []string {
	return strings.FieldsFunc(path, func(r rune) bool { return r == ':' || r == '.' })
}
