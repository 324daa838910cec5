package meta

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"entity-schema/descriptor"
)

// File is the YAML metadata file read by ConfigProvider.
//
//	version: "1"
//	entities: [shop.Order]
//	embeddables: [shop.Address]
//	fields:
//	  shop.Order.Price: {name: price, nullable: false, precision: 10, scale: 2}
//	  shop.Order.Cache: {transient: true}
//	  shop.Order.Home: {embedded: true}
//
// Type references accept the forms of descriptor.TypeID.Matches. Field keys
// are a type reference followed by the Go field name; promoted fields are
// keyed by the type that declares them.
type File struct {
	Version     string                 `yaml:"version"`
	Entities    []string               `yaml:"entities,omitempty"`
	Embeddables []string               `yaml:"embeddables,omitempty"`
	Fields      map[string]FieldConfig `yaml:"fields,omitempty"`
}

// FieldConfig holds the settings of one field.
type FieldConfig struct {
	Name      string `yaml:"name,omitempty"`
	Nullable  *bool  `yaml:"nullable,omitempty"`
	Type      string `yaml:"type,omitempty"`
	Precision uint   `yaml:"precision,omitempty"`
	Scale     uint   `yaml:"scale,omitempty"`
	Embedded  bool   `yaml:"embedded,omitempty"`
	Transient bool   `yaml:"transient,omitempty"`
}

// hasColumnSettings reports whether the entry configures the column itself.
func (c FieldConfig) hasColumnSettings() bool {
	return c.Name != "" || c.Nullable != nil || c.Type != "" || c.Precision != 0 || c.Scale != 0
}

func (c FieldConfig) override() *ColumnOverride {
	o := DefaultOverride()
	o.Name = c.Name
	o.RawType = c.Type
	o.Precision = c.Precision
	o.Scale = c.Scale

	if c.Nullable != nil {
		o.Nullable = *c.Nullable
		o.nullableSet = true
	}

	return o
}

type fieldEntry struct {
	typeRef string
	field   string
	config  FieldConfig
}

// ConfigProvider answers metadata questions from a File.
type ConfigProvider struct {
	entities    []string
	embeddables []string
	fields      []fieldEntry
}

var _ FieldMetadataProvider = (*ConfigProvider)(nil)

// LoadFile loads a metadata file from path.
func LoadFile(path string) (*ConfigProvider, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata file %s: %w", path, err)
	}

	return Parse(data)
}

// Parse parses YAML metadata.
func Parse(data []byte) (*ConfigProvider, error) {
	var f File

	err := yaml.Unmarshal(data, &f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse metadata YAML: %w", err)
	}

	return NewConfigProvider(&f)
}

// NewConfigProvider validates f and builds a provider from it.
func NewConfigProvider(f *File) (*ConfigProvider, error) {
	p := &ConfigProvider{
		entities:    f.Entities,
		embeddables: f.Embeddables,
	}

	for key, cfg := range f.Fields {
		lastDot := strings.LastIndex(key, ".")
		if lastDot <= 0 || lastDot == len(key)-1 {
			return nil, fmt.Errorf("invalid field key %q: expected Type.Field", key)
		}

		if err := cfg.validate(); err != nil {
			return nil, fmt.Errorf("field %s: %w", key, err)
		}

		p.fields = append(p.fields, fieldEntry{
			typeRef: key[:lastDot],
			field:   key[lastDot+1:],
			config:  cfg,
		})
	}

	return p, nil
}

// validate rejects contradictory settings.
func (c FieldConfig) validate() error {
	if c.Precision != 0 && c.Scale > c.Precision {
		return fmt.Errorf("scale %d exceeds precision %d", c.Scale, c.Precision)
	}

	if c.Embedded && c.Transient {
		return errors.New("field cannot be both embedded and transient")
	}

	return nil
}

func (p *ConfigProvider) IsEntityRoot(t *descriptor.TypeDescriptor) bool {
	return t != nil && matchesAny(t.ID, p.entities)
}

func (p *ConfigProvider) IsEmbeddable(t *descriptor.TypeDescriptor) bool {
	return t != nil && matchesAny(t.ID, p.embeddables)
}

func (p *ConfigProvider) IsEmbedded(f *descriptor.FieldDescriptor) bool {
	cfg, ok := p.field(f)
	return ok && cfg.Embedded
}

func (p *ConfigProvider) IsTransient(f *descriptor.FieldDescriptor) bool {
	cfg, ok := p.field(f)
	return ok && cfg.Transient
}

func (p *ConfigProvider) ColumnOverride(f *descriptor.FieldDescriptor) (*ColumnOverride, error) {
	cfg, ok := p.field(f)
	if !ok || !cfg.hasColumnSettings() {
		return nil, nil
	}

	return cfg.override(), nil
}

// field returns the most specific entry for f: a longer type reference wins.
func (p *ConfigProvider) field(f *descriptor.FieldDescriptor) (FieldConfig, bool) {
	var (
		best  FieldConfig
		found bool
		score = -1
	)

	for _, e := range p.fields {
		if e.field != f.Name || !f.Owner.Matches(e.typeRef) {
			continue
		}

		if len(e.typeRef) > score {
			best, found, score = e.config, true, len(e.typeRef)
		}
	}

	return best, found
}

func matchesAny(id descriptor.TypeID, refs []string) bool {
	for _, ref := range refs {
		if id.Matches(ref) {
			return true
		}
	}

	return false
}
