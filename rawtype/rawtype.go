// Package rawtype parses raw column type definitions, the escape hatch that
// replaces type-driven inference for a single field.
package rawtype

import (
	"errors"
	"fmt"

	"entity-schema/descriptor"
	"entity-schema/primitive"
	"entity-schema/typeinfo"
)

// ErrIncompatible is returned when a definition cannot hold values of the
// field's declared scalar type.
var ErrIncompatible = errors.New("incompatible raw type")

// Parser turns a raw definition into a storage type. declared is the field's
// declared type and may be used to validate the definition.
type Parser interface {
	Parse(definition string, declared *descriptor.TypeRef) (typeinfo.Type, error)
}

// ParserFunc adapts a function to Parser.
type ParserFunc func(definition string, declared *descriptor.TypeRef) (typeinfo.Type, error)

func (f ParserFunc) Parse(definition string, declared *descriptor.TypeRef) (typeinfo.Type, error) {
	return f(definition, declared)
}

// TextParser reads the typeinfo text format. For scalar fields the primitive
// kind of the definition (optional or not) must be reachable from the
// declared kind through the allowed conversion categories.
type TextParser struct {
	Categories primitive.CategoryEnum
}

var _ Parser = (*TextParser)(nil)

// NewTextParser creates a TextParser accepting primitive.CategoryDefault
// conversions.
func NewTextParser() *TextParser {
	return &TextParser{Categories: primitive.CategoryDefault}
}

func (p *TextParser) Parse(definition string, declared *descriptor.TypeRef) (typeinfo.Type, error) {
	t, err := typeinfo.Parse(definition)
	if err != nil {
		return nil, err
	}

	if declared == nil || declared.Kind != descriptor.KindScalar {
		return t, nil
	}

	inner := t
	if o, ok := t.(typeinfo.Optional); ok {
		inner = o.Item
	}

	prim, ok := inner.(typeinfo.Primitive)
	if !ok {
		return nil, fmt.Errorf("%w: %s cannot hold scalar %s", ErrIncompatible, t, declared.Scalar)
	}

	if !primitive.Compatible(declared.Scalar, prim.Kind, p.Categories) {
		return nil, fmt.Errorf("%w: %s cannot be stored as %s", ErrIncompatible, declared.Scalar, prim.Kind)
	}

	return t, nil
}
