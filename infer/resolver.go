package infer

import (
	"fmt"

	"entity-schema/descriptor"
	"entity-schema/meta"
	"entity-schema/typeinfo"
)

// site locates the field being resolved.
type site struct {
	owner descriptor.TypeID // type being walked
	field *descriptor.FieldDescriptor
	chain Chain
}

func (s site) fail(kind ErrorKind, format string, args ...any) error {
	return &Error{
		Kind:   kind,
		Type:   s.field.Owner,
		Field:  s.field.Name,
		Detail: fmt.Sprintf(format, args...),
	}
}

// resolve maps a declared type to a storage type. override is nil for
// collection elements, map keys and values, and array components.
func (in *Inferrer) resolve(s site, ref *descriptor.TypeRef, override *meta.ColumnOverride, hint typeinfo.Type) (typeinfo.Type, error) {
	if override != nil && override.RawType != "" {
		t, err := in.raw.Parse(override.RawType, ref)
		if err != nil {
			return nil, fmt.Errorf("field %s: raw type %q: %w", s.field.Path(), override.RawType, err)
		}

		in.checkHint(s, hint, t)

		if (ref != nil && ref.IsPrimitive()) || !override.Nullable {
			return t, nil
		}

		wrapped, err := typeinfo.NewOptional(t)
		if err != nil {
			return nil, s.fail(KindDoubleOptional, "raw type %s of a nullable field is already optional", t)
		}

		return wrapped, nil
	}

	if ref == nil {
		return nil, s.fail(KindUnsupportedType, "no declared type")
	}

	if ref.IsPrimitive() {
		t := typeinfo.Primitive{Kind: ref.Scalar}
		in.checkHint(s, hint, t)

		return t, nil
	}

	inner, err := in.resolveKind(s, ref, override, hint)
	if err != nil {
		return nil, err
	}

	in.checkHint(s, hint, inner)

	if override != nil && !override.Nullable {
		return inner, nil
	}

	return typeinfo.Optional{Item: inner}, nil
}

func (in *Inferrer) resolveKind(s site, ref *descriptor.TypeRef, override *meta.ColumnOverride, hint typeinfo.Type) (typeinfo.Type, error) {
	switch ref.Kind {
	case descriptor.KindScalar:
		if !ref.Scalar.IsValid() {
			return nil, s.fail(KindUnsupportedType, "declared %s", ref)
		}

		return typeinfo.Primitive{Kind: ref.Scalar}, nil

	case descriptor.KindCollection:
		if len(ref.Args) != 1 {
			return nil, s.fail(KindMalformedGenericType, "declared %s: expected 1 type argument, got %d", ref, len(ref.Args))
		}

		var itemHint typeinfo.Type
		if l, ok := hint.(typeinfo.List); ok {
			itemHint = l.Item
		}

		item, err := in.element(s, ref.Args[0], itemHint)
		if err != nil {
			return nil, err
		}

		return typeinfo.List{Item: item}, nil

	case descriptor.KindMap:
		if len(ref.Args) != 2 {
			return nil, s.fail(KindMalformedGenericType, "declared %s: expected 2 type arguments, got %d", ref, len(ref.Args))
		}

		var keyHint, valueHint typeinfo.Type
		if d, ok := hint.(typeinfo.Dict); ok {
			keyHint, valueHint = d.Key, d.Value
		}

		key, err := in.element(s, ref.Args[0], keyHint)
		if err != nil {
			return nil, err
		}

		value, err := in.element(s, ref.Args[1], valueHint)
		if err != nil {
			return nil, err
		}

		return typeinfo.Dict{Key: key, Value: value}, nil

	case descriptor.KindArray:
		if ref.Elem == nil {
			return nil, s.fail(KindUnsupportedType, "declared %s: missing component type", ref)
		}

		var itemHint typeinfo.Type
		if l, ok := hint.(typeinfo.List); ok {
			itemHint = l.Item
		}

		item, err := in.element(s, ref.Elem, itemHint)
		if err != nil {
			return nil, err
		}

		return typeinfo.List{Item: item}, nil

	case descriptor.KindDecimal:
		var existing *typeinfo.Decimal
		if d, ok := hint.(typeinfo.Decimal); ok {
			existing = &d
		}

		d, err := ReconcileDecimal(override, existing)
		if err != nil {
			return nil, atField(err, s.field)
		}

		return d, nil

	case descriptor.KindStruct:
		target := in.structOf(ref)
		if target == nil {
			return nil, s.fail(KindUnsupportedType, "declared %s: no descriptor for %s", ref, ref.ID)
		}

		var nested *typeinfo.Struct
		if st, ok := hint.(typeinfo.Struct); ok {
			nested = &st
		}

		columns, err := in.walk(target, s.chain.push(s.owner, s.field.Name), nested)
		if err != nil {
			return nil, err
		}

		schema, err := typeinfo.NewBuilder().AddColumns(columns...).Build()
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", s.field.Path(), err)
		}

		return schema.AsStruct(), nil

	case descriptor.KindUnsupported:
		return nil, s.fail(KindUnsupportedType, "declared %s", ref)

	default:
		return nil, s.fail(KindUnsupportedType, "declared %s: unknown kind %s", ref, ref.Kind)
	}
}

// element resolves a collection element, map key or value, or array component.
func (in *Inferrer) element(s site, ref *descriptor.TypeRef, hint typeinfo.Type) (typeinfo.Type, error) {
	inner, err := UnwrapExisting(hint)
	if err != nil {
		return nil, atField(err, s.field)
	}

	return in.resolve(s, ref, nil, inner)
}

// checkHint logs when the existing type has a different shape. The inferred
// type wins.
func (in *Inferrer) checkHint(s site, hint, inferred typeinfo.Type) {
	if hint == nil || typeinfo.Equal(hint, inferred) {
		return
	}

	in.logger.Debug().
		Str("field", s.field.Path()).
		Stringer("existing", hint).
		Stringer("inferred", inferred).
		Msg("existing type differs")
}
