// Package meta answers the annotation questions schema inference asks about
// types and fields: entity roots, embeddables, embedded and transient fields,
// and per-column overrides.
//
// FieldMetadataProvider is the capability interface. Implementations back it
// with a concrete convention:
//
//   - TagProvider: struct tags and embedded marker types (entity.Entity)
//   - ConfigProvider: a YAML metadata file keyed by type and field
//   - Chain: several providers consulted in order
package meta

import (
	"entity-schema/descriptor"
)

// ColumnOverride carries per-field settings that take precedence over
// type-driven inference.
type ColumnOverride struct {
	// Name replaces the inferred column name when non-empty.
	Name string
	// Nullable is true unless the field is declared not-null. A non-nullable
	// column is never wrapped in optional.
	Nullable bool
	// RawType is a raw type definition that bypasses inference entirely.
	RawType string
	// Precision and Scale apply to decimal columns; zero means unset.
	Precision uint
	Scale     uint

	// nullableSet records an explicit nullable setting, so that a declared
	// nullable column can override another provider's not-null.
	nullableSet bool
}

// DefaultOverride returns an override with no settings besides the default
// nullability.
func DefaultOverride() *ColumnOverride {
	return &ColumnOverride{Nullable: true}
}

// HasDecimal reports whether precision or scale is set.
func (o *ColumnOverride) HasDecimal() bool {
	return o != nil && (o.Precision != 0 || o.Scale != 0)
}

// declaresNullable reports whether o decides nullability rather than
// carrying the default.
func (o *ColumnOverride) declaresNullable() bool {
	return o.nullableSet || !o.Nullable
}

// merge fills the settings o leaves unset from next. Precision and scale are
// taken as a pair.
func (o *ColumnOverride) merge(next *ColumnOverride) {
	if o.Name == "" {
		o.Name = next.Name
	}

	if o.RawType == "" {
		o.RawType = next.RawType
	}

	if !o.HasDecimal() {
		o.Precision, o.Scale = next.Precision, next.Scale
	}

	if !o.declaresNullable() && next.declaresNullable() {
		o.Nullable = next.Nullable
		o.nullableSet = true
	}
}

// FieldMetadataProvider classifies types and fields. Implementations must be
// safe for concurrent use.
type FieldMetadataProvider interface {
	IsEntityRoot(t *descriptor.TypeDescriptor) bool
	IsEmbeddable(t *descriptor.TypeDescriptor) bool
	IsEmbedded(f *descriptor.FieldDescriptor) bool
	IsTransient(f *descriptor.FieldDescriptor) bool
	// ColumnOverride returns nil when the field carries no column settings.
	ColumnOverride(f *descriptor.FieldDescriptor) (*ColumnOverride, error)
}

// Chain consults providers in order. Classification questions are answered
// true when any provider says so. Column overrides are merged setting by
// setting, an earlier provider winning where both set the same one.
type Chain []FieldMetadataProvider

var _ FieldMetadataProvider = Chain(nil)

func (c Chain) IsEntityRoot(t *descriptor.TypeDescriptor) bool {
	for _, p := range c {
		if p.IsEntityRoot(t) {
			return true
		}
	}

	return false
}

func (c Chain) IsEmbeddable(t *descriptor.TypeDescriptor) bool {
	for _, p := range c {
		if p.IsEmbeddable(t) {
			return true
		}
	}

	return false
}

func (c Chain) IsEmbedded(f *descriptor.FieldDescriptor) bool {
	for _, p := range c {
		if p.IsEmbedded(f) {
			return true
		}
	}

	return false
}

func (c Chain) IsTransient(f *descriptor.FieldDescriptor) bool {
	for _, p := range c {
		if p.IsTransient(f) {
			return true
		}
	}

	return false
}

func (c Chain) ColumnOverride(f *descriptor.FieldDescriptor) (*ColumnOverride, error) {
	var merged *ColumnOverride

	for _, p := range c {
		o, err := p.ColumnOverride(f)
		if err != nil {
			return nil, err
		}

		if o == nil {
			continue
		}

		if merged == nil {
			merged = DefaultOverride()
		}

		merged.merge(o)
	}

	return merged, nil
}
