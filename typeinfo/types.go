// Package typeinfo describes the storage types of a column-oriented table:
// primitives, optionals, lists, dicts, structs and decimals, plus the
// ordered table schema built from named columns.
//
// Every Type renders to a compact text form that Parse reads back:
//
//	int64
//	optional<string>
//	list<optional<string>>
//	dict<string,int64>
//	decimal(10,2)
//	struct<id:int64,name:optional<string>>
package typeinfo

import (
	"errors"
	"strconv"
	"strings"

	"entity-schema/primitive"
)

// ErrNestedOptional is returned when an optional would wrap another optional.
var ErrNestedOptional = errors.New("optional type cannot wrap another optional")

// Type is a storage type. The set of implementations is closed.
type Type interface {
	String() string
	isType()
}

type Primitive struct {
	Kind primitive.KindEnum
}

type Optional struct {
	Item Type
}

type List struct {
	Item Type
}

type Dict struct {
	Key   Type
	Value Type
}

// Member is a named, ordered element of a Struct.
type Member struct {
	Name string
	Type Type
}

type Struct struct {
	Members []Member
}

type Decimal struct {
	Precision uint
	Scale     uint
}

func (Primitive) isType() {}
func (Optional) isType()  {}
func (List) isType()      {}
func (Dict) isType()      {}
func (Struct) isType()    {}
func (Decimal) isType()   {}

// NewOptional wraps item in an Optional, refusing to nest optionals.
func NewOptional(item Type) (Optional, error) {
	if _, ok := item.(Optional); ok {
		return Optional{}, ErrNestedOptional
	}

	return Optional{Item: item}, nil
}

// Member returns the type of the member called name.
func (s Struct) Member(name string) (Type, bool) {
	for _, m := range s.Members {
		if m.Name == name {
			return m.Type, true
		}
	}

	return nil, false
}

// MemberNames returns member names in declaration order.
func (s Struct) MemberNames() []string {
	names := make([]string, 0, len(s.Members))
	for _, m := range s.Members {
		names = append(names, m.Name)
	}

	return names
}

func (p Primitive) String() string {
	return p.Kind.String()
}

func (o Optional) String() string {
	return "optional<" + typeString(o.Item) + ">"
}

func (l List) String() string {
	return "list<" + typeString(l.Item) + ">"
}

func (d Dict) String() string {
	return "dict<" + typeString(d.Key) + "," + typeString(d.Value) + ">"
}

func (d Decimal) String() string {
	return "decimal(" + strconv.FormatUint(uint64(d.Precision), 10) + "," +
		strconv.FormatUint(uint64(d.Scale), 10) + ")"
}

func (s Struct) String() string {
	var b strings.Builder

	b.WriteString("struct<")
	for i, m := range s.Members {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(m.Name)
		b.WriteByte(':')
		b.WriteString(typeString(m.Type))
	}
	b.WriteByte('>')

	return b.String()
}

func typeString(t Type) string {
	if t == nil {
		return "<nil>"
	}

	return t.String()
}

// Equal reports whether a and b describe the same storage type.
func Equal(a, b Type) bool {
	switch at := a.(type) {
	case nil:
		return b == nil
	case Primitive:
		bt, ok := b.(Primitive)
		return ok && at.Kind == bt.Kind
	case Optional:
		bt, ok := b.(Optional)
		return ok && Equal(at.Item, bt.Item)
	case List:
		bt, ok := b.(List)
		return ok && Equal(at.Item, bt.Item)
	case Dict:
		bt, ok := b.(Dict)
		return ok && Equal(at.Key, bt.Key) && Equal(at.Value, bt.Value)
	case Decimal:
		bt, ok := b.(Decimal)
		return ok && at == bt
	case Struct:
		bt, ok := b.(Struct)
		if !ok || len(at.Members) != len(bt.Members) {
			return false
		}
		for i := range at.Members {
			if at.Members[i].Name != bt.Members[i].Name || !Equal(at.Members[i].Type, bt.Members[i].Type) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// IsOptional reports whether t is an Optional.
func IsOptional(t Type) bool {
	_, ok := t.(Optional)
	return ok
}
