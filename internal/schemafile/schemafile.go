package schemafile

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-openapi/inflect"
	"gopkg.in/yaml.v3"

	"entity-schema/descriptor"
	"entity-schema/internal/common"
	"entity-schema/typeinfo"
)

// CurrentVersion is written into new files.
const CurrentVersion = "1"

// File is the root of a schema file.
type File struct {
	Version string  `yaml:"version"`
	Tables  []Table `yaml:"tables"`
}

// Table is the pinned schema of one entity.
type Table struct {
	Entity  string   `yaml:"entity"`
	Path    string   `yaml:"path,omitempty"`
	Columns []Column `yaml:"columns"`
}

// Column is one named, typed column.
type Column struct {
	Name string   `yaml:"name"`
	Type TypeText `yaml:"type"`
}

// TypeText is a storage type written in its text form.
type TypeText struct {
	typeinfo.Type
}

// UnmarshalYAML parses the text form of a storage type.
func (t *TypeText) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: expected type string, got %v", node.Line, node.Kind)
	}

	parsed, err := typeinfo.Parse(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}

	t.Type = parsed

	return nil
}

// MarshalYAML writes the text form of the storage type.
func (t TypeText) MarshalYAML() (any, error) {
	if t.Type == nil {
		return nil, errors.New("column without type")
	}

	return t.Type.String(), nil
}

// LoadFile loads and parses a schema file from the given path.
func LoadFile(filename string) (*File, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file %s: %w", filename, err)
	}

	return Parse(data)
}

// Parse parses YAML data into a File.
func Parse(data []byte) (*File, error) {
	var f File

	err := yaml.Unmarshal(data, &f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse schema YAML: %w", err)
	}

	if err := validate(&f); err != nil {
		return nil, err
	}

	applyDefaults(&f)

	return &f, nil
}

func validate(f *File) error {
	var errs []error

	seen := make(map[string]bool, len(f.Tables))
	for i, t := range f.Tables {
		if t.Entity == "" {
			errs = append(errs, fmt.Errorf("table %d: missing entity", i))
			continue
		}

		if seen[t.Entity] {
			errs = append(errs, fmt.Errorf("table %d: duplicate entity %q", i, t.Entity))
		}

		seen[t.Entity] = true

		if _, err := t.Schema(); err != nil {
			errs = append(errs, fmt.Errorf("table %s: %w", t.Entity, err))
		}
	}

	return errors.Join(errs...)
}

// applyDefaults fills in default values for optional fields.
func applyDefaults(f *File) {
	if f.Version == "" {
		f.Version = CurrentVersion
	}

	for i := range f.Tables {
		t := &f.Tables[i]
		if t.Path == "" {
			t.Path = DefaultPath(descriptor.ParseTypeID(t.Entity))
		}
	}
}

// DefaultPath returns "//home/<package>/<snake_plural>" for an entity, e.g.
// "//home/shop/order_items" for shop.OrderItem.
func DefaultPath(id descriptor.TypeID) string {
	table := inflect.Underscore(inflect.Pluralize(id.Name))

	pkg := common.PackageName(id.PkgPath)
	if pkg == "" {
		return "//home/" + table
	}

	return "//home/" + pkg + "/" + table
}

// Marshal serializes a File to YAML.
func Marshal(f *File) ([]byte, error) {
	return yaml.Marshal(f)
}

// WriteFile writes a File to the given path.
func WriteFile(f *File, filename string) error {
	data, err := Marshal(f)
	if err != nil {
		return fmt.Errorf("failed to marshal schema file: %w", err)
	}

	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return fmt.Errorf("failed to write schema file %s: %w", filename, err)
	}

	return nil
}

// Schema builds the table schema of t.
func (t *Table) Schema() (*typeinfo.TableSchema, error) {
	b := typeinfo.NewBuilder()
	for _, c := range t.Columns {
		if c.Type.Type == nil {
			return nil, fmt.Errorf("column %q: missing type", c.Name)
		}

		b.Add(c.Name, c.Type.Type)
	}

	return b.Build()
}

// Table returns the table pinned for id.
func (f *File) Table(id descriptor.TypeID) (*Table, bool) {
	for i := range f.Tables {
		if id.Matches(f.Tables[i].Entity) {
			return &f.Tables[i], true
		}
	}

	return nil, false
}

// Existing returns the pinned schema of id, or nil when none is pinned.
func (f *File) Existing(id descriptor.TypeID) (*typeinfo.TableSchema, error) {
	if f == nil {
		return nil, nil
	}

	t, ok := f.Table(id)
	if !ok {
		return nil, nil
	}

	return t.Schema()
}

// EntityRef returns the short reference written for id, e.g. "shop.Order".
func EntityRef(id descriptor.TypeID) string {
	if pkg := common.PackageName(id.PkgPath); pkg != "" {
		return pkg + "." + id.Name
	}

	return id.Name
}

// FromSchema builds a table entry for an inferred schema.
func FromSchema(id descriptor.TypeID, schema *typeinfo.TableSchema) Table {
	t := Table{
		Entity:  EntityRef(id),
		Path:    DefaultPath(id),
		Columns: make([]Column, 0, len(schema.Columns)),
	}

	for _, c := range schema.Columns {
		t.Columns = append(t.Columns, Column{Name: c.Name, Type: TypeText{c.Type}})
	}

	return t
}

// Upsert replaces the table pinned for id or appends t. The existing entity
// reference and path are kept.
func (f *File) Upsert(id descriptor.TypeID, t Table) {
	if existing, ok := f.Table(id); ok {
		t.Entity = existing.Entity
		if existing.Path != "" {
			t.Path = existing.Path
		}

		*existing = t

		return
	}

	f.Tables = append(f.Tables, t)
}
