package infer

import (
	"errors"
	"strconv"
	"strings"

	"entity-schema/descriptor"
)

// ErrorKind classifies inference failures.
type ErrorKind int

const (
	KindStructuralCycle ErrorKind = iota + 1
	KindInvalidEmbedding
	KindDoubleOptional
	KindUnsupportedType
	KindMalformedGenericType
	KindDecimalMismatch
	KindDecimalUnspecified
	KindNotAnEntity
)

// Sentinel errors matched by *Error through errors.Is.
var (
	ErrStructuralCycle      = errors.New("structural cycle")
	ErrInvalidEmbedding     = errors.New("embedded field type is not embeddable")
	ErrDoubleOptional       = errors.New("existing type is optional of optional")
	ErrUnsupportedType      = errors.New("unsupported type")
	ErrMalformedGenericType = errors.New("malformed generic type")
	ErrDecimalMismatch      = errors.New("decimal precision/scale mismatch")
	ErrDecimalUnspecified   = errors.New("decimal precision/scale unspecified")
	ErrNotAnEntity          = errors.New("not an entity")
)

var kindInfo = [...]struct {
	name     string
	sentinel error
}{
	KindStructuralCycle:      {"StructuralCycle", ErrStructuralCycle},
	KindInvalidEmbedding:     {"InvalidEmbedding", ErrInvalidEmbedding},
	KindDoubleOptional:       {"DoubleOptional", ErrDoubleOptional},
	KindUnsupportedType:      {"UnsupportedType", ErrUnsupportedType},
	KindMalformedGenericType: {"MalformedGenericType", ErrMalformedGenericType},
	KindDecimalMismatch:      {"DecimalMismatch", ErrDecimalMismatch},
	KindDecimalUnspecified:   {"DecimalUnspecified", ErrDecimalUnspecified},
	KindNotAnEntity:          {"NotAnEntity", ErrNotAnEntity},
}

func (k ErrorKind) valid() bool {
	return k > 0 && int(k) < len(kindInfo)
}

func (k ErrorKind) String() string {
	if !k.valid() {
		return "ErrorKind(" + strconv.Itoa(int(k)) + ")"
	}

	return kindInfo[k].name
}

// Sentinel returns the sentinel error for the kind, or nil.
func (k ErrorKind) Sentinel() error {
	if !k.valid() {
		return nil
	}

	return kindInfo[k].sentinel
}

// Link is one step of a visitation chain: the type being walked and the
// field through which the walk descended.
type Link struct {
	Type  descriptor.TypeID
	Field string
}

func (l Link) String() string {
	return l.Type.Name + "." + l.Field
}

// Chain is the ordered path of links from the root to the current type.
type Chain []Link

// String renders the chain as "A.b -> B.a".
func (c Chain) String() string {
	parts := make([]string, len(c))
	for i, l := range c {
		parts[i] = l.String()
	}

	return strings.Join(parts, " -> ")
}

// Contains reports whether id has already been descended from.
func (c Chain) Contains(id descriptor.TypeID) bool {
	for _, l := range c {
		if l.Type == id {
			return true
		}
	}

	return false
}

// push returns a new chain; c is never modified.
func (c Chain) push(id descriptor.TypeID, field string) Chain {
	next := make(Chain, len(c), len(c)+1)
	copy(next, c)

	return append(next, Link{Type: id, Field: field})
}

// Error is an inference failure. It matches the sentinel of its Kind.
type Error struct {
	Kind   ErrorKind
	Type   descriptor.TypeID // type declaring the field, or the offending type
	Field  string            // Go field name, when the failure is field-scoped
	Chain  Chain             // visitation chain, for cycles
	Detail string
}

func (e *Error) Error() string {
	var b strings.Builder

	if s := e.Kind.Sentinel(); s != nil {
		b.WriteString(s.Error())
	} else {
		b.WriteString(e.Kind.String())
	}

	switch {
	case len(e.Chain) > 0:
		b.WriteString(": " + e.Chain.String())
	case e.Field != "":
		b.WriteString(": field " + e.Type.Name + "." + e.Field)
	case !e.Type.IsZero():
		b.WriteString(": type " + e.Type.String())
	}

	if e.Detail != "" {
		b.WriteString(": " + e.Detail)
	}

	return b.String()
}

// Is reports whether target is the sentinel of e's kind.
func (e *Error) Is(target error) bool {
	return target != nil && target == e.Kind.Sentinel()
}

// KindOf returns the kind of the first *Error in err's tree, or zero.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}

	return 0
}

// atField fills in the field position of e if not already set.
func atField(err error, f *descriptor.FieldDescriptor) error {
	var e *Error
	if errors.As(err, &e) && e.Field == "" && len(e.Chain) == 0 {
		e.Type = f.Owner
		e.Field = f.Name
	}

	return err
}
