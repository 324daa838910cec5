// Package descriptor provides the explicit type descriptor table consumed by
// schema inference.
//
// A TypeDescriptor lists the fields of one struct in declaration order, each
// with a TypeRef classifying its declared type. Descriptors are produced
// either at registration time from live Go values (Registry.Register) or
// statically from source analysis, and are read concurrently afterwards.
//
// Key types:
//   - TypeID: package import path + type name
//   - TypeRef: declared type classified as scalar/collection/map/array/decimal/struct
//   - FieldDescriptor: field name, declared type, raw struct tag, declaring type
package descriptor

import (
	"reflect"
	"strconv"
	"strings"

	"entity-schema/primitive"
)

// TypeID uniquely identifies a type by its package path and name.
type TypeID struct {
	PkgPath string // e.g., "entity-schema/examples/shop"
	Name    string // e.g., "Order"
}

// String returns a human-readable representation of the TypeID.
func (t TypeID) String() string {
	if t.PkgPath == "" {
		return t.Name
	}

	return t.PkgPath + "." + t.Name
}

// IsZero reports whether the id is unset.
func (t TypeID) IsZero() bool {
	return t.PkgPath == "" && t.Name == ""
}

// Matches reports whether ref names this type. Accepted forms:
//   - "Order" (name only)
//   - "shop.Order" (short package suffix)
//   - "entity-schema/examples/shop.Order" (full import path)
func (t TypeID) Matches(ref string) bool {
	lastDot := strings.LastIndex(ref, ".")
	if lastDot < 0 {
		return ref != "" && ref == t.Name
	}

	pkgStr, name := ref[:lastDot], ref[lastDot+1:]
	if pkgStr == "" || name != t.Name {
		return false
	}

	return t.PkgPath == pkgStr || strings.HasSuffix(t.PkgPath, "/"+pkgStr)
}

// ParseTypeID splits "import/path.Name" into a TypeID.
func ParseTypeID(s string) TypeID {
	lastDot := strings.LastIndex(s, ".")
	if lastDot < 0 {
		return TypeID{Name: s}
	}

	return TypeID{PkgPath: s[:lastDot], Name: s[lastDot+1:]}
}

// Kind classifies a declared type for the type resolver.
type Kind int

const (
	KindUnsupported Kind = iota // interfaces, channels, funcs, complex numbers
	KindScalar                  // maps to a storage primitive
	KindCollection              // slice, element type in Args[0]
	KindMap                     // map, key and value types in Args[0], Args[1]
	KindArray                   // fixed-size array, component type in Elem
	KindDecimal                 // registered decimal number type
	KindStruct                  // nested struct, fields in the registry under ID
)

// String returns a human-readable representation of the Kind.
func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindCollection:
		return "collection"
	case KindMap:
		return "map"
	case KindArray:
		return "array"
	case KindDecimal:
		return "decimal"
	case KindStruct:
		return "struct"
	default:
		return "unsupported"
	}
}

// TypeRef describes the declared type of a field or of a collection element.
type TypeRef struct {
	ID     TypeID             // set for named types and for every struct
	Kind   Kind               // classification
	Scalar primitive.KindEnum // KindScalar only
	Boxed  bool               // reached through a pointer or a pointer embed
	Args   []*TypeRef         // generic type arguments of collections and maps
	Elem   *TypeRef           // KindArray component type
	Len    int                // KindArray length
	GoType string             // declared type as written, e.g. "map[string]*int64"
}

// IsPrimitive reports whether the declared type always holds a value and is
// therefore stored as a required column.
func (r *TypeRef) IsPrimitive() bool {
	return r.Kind == KindScalar && !r.Boxed && r.Scalar.IsUnboxable()
}

func (r *TypeRef) String() string {
	if r == nil {
		return "<nil>"
	}

	if r.GoType != "" {
		return r.GoType
	}

	var b strings.Builder
	if r.Boxed {
		b.WriteByte('*')
	}

	switch r.Kind {
	case KindScalar:
		b.WriteString(r.Scalar.String())
	case KindCollection:
		b.WriteString("[]")
		writeArgs(&b, r.Args)
	case KindMap:
		b.WriteString("map")
		writeArgs(&b, r.Args)
	case KindArray:
		b.WriteString("[" + strconv.Itoa(r.Len) + "]" + r.Elem.String())
	default:
		b.WriteString(r.ID.String())
	}

	return b.String()
}

func writeArgs(b *strings.Builder, args []*TypeRef) {
	b.WriteByte('[')
	for i, a := range args {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(a.String())
	}
	b.WriteByte(']')
}

// FieldDescriptor describes one declared field of a struct.
type FieldDescriptor struct {
	Name  string            // Go field name
	Owner TypeID            // declaring struct; differs from the described type for promoted fields
	Type  *TypeRef          // declared type
	Tag   reflect.StructTag // raw struct tag
}

// Path returns "Owner.Field", the form used in diagnostics and config keys.
func (f *FieldDescriptor) Path() string {
	return f.Owner.Name + "." + f.Name
}

// TypeDescriptor lists the fields of a struct in declaration order.
// Fields of anonymously embedded structs are promoted in place; zero-size
// anonymous structs are recorded as markers instead.
type TypeDescriptor struct {
	ID      TypeID
	Fields  []FieldDescriptor
	Markers []TypeID
}

// HasMarker reports whether the struct embeds the marker type.
func (d *TypeDescriptor) HasMarker(id TypeID) bool {
	for _, m := range d.Markers {
		if m == id {
			return true
		}
	}

	return false
}

// Field returns the field called name.
func (d *TypeDescriptor) Field(name string) (*FieldDescriptor, bool) {
	for i := range d.Fields {
		if d.Fields[i].Name == name {
			return &d.Fields[i], true
		}
	}

	return nil, false
}

// TypeSource resolves struct descriptors by id.
type TypeSource interface {
	Lookup(id TypeID) (*TypeDescriptor, bool)
}
