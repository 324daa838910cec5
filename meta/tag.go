package meta

import (
	"fmt"
	"strconv"
	"strings"

	"entity-schema/descriptor"
)

// DefaultTagKey is the struct tag key read by TagProvider.
const DefaultTagKey = "table"

// Marker types embedded into user structs.
var (
	EntityMarker     = descriptor.TypeID{PkgPath: "entity-schema/entity", Name: "Entity"}
	EmbeddableMarker = descriptor.TypeID{PkgPath: "entity-schema/entity", Name: "Embeddable"}
)

// TagProvider reads struct tags and marker embeds.
//
// Tag syntax:
//
//	Name    string          `table:"name"`
//	Price   decimal.Decimal `table:"price,notnull,precision=10,scale=2"`
//	Labels  map[string]int  `table:",type=dict<string,int64>"`
//	Home    Address         `table:",embedded"`
//	Cache   []byte          `table:"-"`
//
// The first element is the column name and may be empty. Commas nested inside
// <> or () belong to the raw type definition.
type TagProvider struct {
	key         string
	entities    []descriptor.TypeID
	embeddables []descriptor.TypeID
}

var _ FieldMetadataProvider = (*TagProvider)(nil)

// TagOption configures a TagProvider.
type TagOption func(*TagProvider)

// WithTagKey sets the struct tag key.
func WithTagKey(key string) TagOption {
	return func(p *TagProvider) {
		p.key = key
	}
}

// WithEntityMarkers adds marker types identifying entity roots.
func WithEntityMarkers(ids ...descriptor.TypeID) TagOption {
	return func(p *TagProvider) {
		p.entities = append(p.entities, ids...)
	}
}

// WithEmbeddableMarkers adds marker types identifying embeddables.
func WithEmbeddableMarkers(ids ...descriptor.TypeID) TagOption {
	return func(p *TagProvider) {
		p.embeddables = append(p.embeddables, ids...)
	}
}

// NewTagProvider creates a TagProvider reading DefaultTagKey and the markers
// of package entity.
func NewTagProvider(opts ...TagOption) *TagProvider {
	p := &TagProvider{
		key:         DefaultTagKey,
		entities:    []descriptor.TypeID{EntityMarker},
		embeddables: []descriptor.TypeID{EmbeddableMarker},
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Key returns the struct tag key.
func (p *TagProvider) Key() string {
	return p.key
}

func (p *TagProvider) IsEntityRoot(t *descriptor.TypeDescriptor) bool {
	return hasAnyMarker(t, p.entities)
}

func (p *TagProvider) IsEmbeddable(t *descriptor.TypeDescriptor) bool {
	return hasAnyMarker(t, p.embeddables)
}

// IsEmbedded reports the embedded option. A malformed tag reads as false;
// ColumnOverride reports the error.
func (p *TagProvider) IsEmbedded(f *descriptor.FieldDescriptor) bool {
	spec, _ := p.lookup(f)
	return spec.embedded
}

func (p *TagProvider) IsTransient(f *descriptor.FieldDescriptor) bool {
	spec, _ := p.lookup(f)
	return spec.transient
}

func (p *TagProvider) ColumnOverride(f *descriptor.FieldDescriptor) (*ColumnOverride, error) {
	spec, err := p.lookup(f)
	if err != nil {
		return nil, fmt.Errorf("field %s: %w", f.Path(), err)
	}

	return spec.override, nil
}

func (p *TagProvider) lookup(f *descriptor.FieldDescriptor) (tagSpec, error) {
	value, ok := f.Tag.Lookup(p.key)
	if !ok {
		return tagSpec{}, nil
	}

	return parseTag(value)
}

func hasAnyMarker(t *descriptor.TypeDescriptor, ids []descriptor.TypeID) bool {
	if t == nil {
		return false
	}

	for _, id := range ids {
		if t.HasMarker(id) {
			return true
		}
	}

	return false
}

// tagSpec is the parsed form of a struct tag value.
type tagSpec struct {
	embedded  bool
	transient bool
	override  *ColumnOverride // nil when no column setting is present
}

// parseTag parses a tag value. Options parsed before an error are kept in the
// returned spec.
func parseTag(value string) (tagSpec, error) {
	var spec tagSpec

	if value == "-" {
		spec.transient = true
		return spec, nil
	}

	parts := splitTag(value)
	o := DefaultOverride()
	set := false

	if name := strings.TrimSpace(parts[0]); name != "" {
		o.Name = name
		set = true
	}

	for _, part := range parts[1:] {
		part = strings.TrimSpace(part)

		key, val, hasVal := strings.Cut(part, "=")
		switch {
		case part == "":
			continue
		case key == "embedded" && !hasVal:
			spec.embedded = true
		case key == "transient" && !hasVal:
			spec.transient = true
		case key == "notnull" && !hasVal:
			o.Nullable = false
			o.nullableSet = true
			set = true
		case key == "type" && hasVal:
			o.RawType = val
			set = true
		case key == "precision" && hasVal, key == "scale" && hasVal:
			n, err := strconv.ParseUint(val, 10, 32)
			if err != nil {
				return spec, fmt.Errorf("invalid %s %q: %w", key, val, err)
			}

			if key == "precision" {
				o.Precision = uint(n)
			} else {
				o.Scale = uint(n)
			}

			set = true
		default:
			return spec, fmt.Errorf("unknown tag option %q", part)
		}
	}

	if set {
		spec.override = o
	}

	return spec, nil
}

// splitTag splits on commas outside <> and () pairs.
func splitTag(value string) []string {
	var (
		parts []string
		depth int
		start int
	)

	for i, r := range value {
		switch r {
		case '<', '(':
			depth++
		case '>', ')':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				parts = append(parts, value[start:i])
				start = i + 1
			}
		}
	}

	return append(parts, value[start:])
}
