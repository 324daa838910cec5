package typeinfo

import (
	"errors"
	"fmt"
	"strings"
)

// ErrDuplicateColumn is returned by Builder.Build when two columns share a name.
var ErrDuplicateColumn = errors.New("duplicate column name")

// Column is a named, typed column of a table schema.
type Column struct {
	Name string
	Type Type
}

func (c Column) String() string {
	return c.Name + ":" + typeString(c.Type)
}

// TableSchema is an ordered sequence of uniquely named columns.
type TableSchema struct {
	Columns []Column
}

// Column returns the column called name.
func (s *TableSchema) Column(name string) (Column, bool) {
	if s == nil {
		return Column{}, false
	}

	for _, c := range s.Columns {
		if c.Name == name {
			return c, true
		}
	}

	return Column{}, false
}

// ColumnNames returns column names in order.
func (s *TableSchema) ColumnNames() []string {
	if s == nil {
		return nil
	}

	names := make([]string, 0, len(s.Columns))
	for _, c := range s.Columns {
		names = append(names, c.Name)
	}

	return names
}

// AsStruct views the schema as a struct type whose members are the columns.
func (s *TableSchema) AsStruct() Struct {
	if s == nil {
		return Struct{}
	}

	members := make([]Member, 0, len(s.Columns))
	for _, c := range s.Columns {
		members = append(members, Member(c))
	}

	return Struct{Members: members}
}

func (s *TableSchema) String() string {
	if s == nil {
		return "<nil>"
	}

	parts := make([]string, 0, len(s.Columns))
	for _, c := range s.Columns {
		parts = append(parts, c.String())
	}

	return "[" + strings.Join(parts, ", ") + "]"
}

// Equal reports whether both schemas have the same columns in the same order.
func (s *TableSchema) Equal(other *TableSchema) bool {
	if s == nil || other == nil {
		return s == other
	}

	return Equal(s.AsStruct(), other.AsStruct())
}

// Builder assembles a TableSchema, enforcing column name uniqueness.
type Builder struct {
	columns []Column
	seen    map[string]int
	errs    []error
}

// NewBuilder creates an empty Builder.
func NewBuilder() *Builder {
	return &Builder{seen: make(map[string]int)}
}

// Add appends a column. Name clashes are reported by Build.
func (b *Builder) Add(name string, t Type) *Builder {
	if pos, ok := b.seen[name]; ok {
		b.errs = append(b.errs, fmt.Errorf("%w: %q at positions %d and %d", ErrDuplicateColumn, name, pos, len(b.columns)))
	} else {
		b.seen[name] = len(b.columns)
	}

	b.columns = append(b.columns, Column{Name: name, Type: t})

	return b
}

// AddColumns appends every column in order.
func (b *Builder) AddColumns(columns ...Column) *Builder {
	for _, c := range columns {
		b.Add(c.Name, c.Type)
	}

	return b
}

// Build returns the schema or every uniqueness violation joined together.
func (b *Builder) Build() (*TableSchema, error) {
	if len(b.errs) > 0 {
		return nil, errors.Join(b.errs...)
	}

	columns := make([]Column, len(b.columns))
	copy(columns, b.columns)

	return &TableSchema{Columns: columns}, nil
}

// FromStruct converts a struct type into a table schema, one column per member.
func FromStruct(s Struct) (*TableSchema, error) {
	b := NewBuilder()
	for _, m := range s.Members {
		b.Add(m.Name, m.Type)
	}

	return b.Build()
}
