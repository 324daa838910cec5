package infer

import (
	"entity-schema/descriptor"
	"entity-schema/meta"
	"entity-schema/typeinfo"
)

// walk returns the columns of desc in declaration order with embeddables
// spliced in place. existing holds the hints for this nesting level.
func (in *Inferrer) walk(desc *descriptor.TypeDescriptor, chain Chain, existing *typeinfo.Struct) ([]typeinfo.Column, error) {
	if chain.Contains(desc.ID) {
		return nil, &Error{Kind: KindStructuralCycle, Type: desc.ID, Chain: chain}
	}

	in.logger.Debug().
		Stringer("type", desc.ID).
		Int("depth", len(chain)).
		Msg("entering type")

	columns := make([]typeinfo.Column, 0, len(desc.Fields))

	for i := range desc.Fields {
		f := &desc.Fields[i]

		// Tags of embedded and transient fields are validated too.
		override, err := in.provider.ColumnOverride(f)
		if err != nil {
			return nil, err
		}

		if in.provider.IsTransient(f) {
			continue
		}

		if target := in.structOf(f.Type); target != nil && in.provider.IsEmbeddable(target) {
			spliced, err := in.walk(target, chain.push(desc.ID, f.Name), existing)
			if err != nil {
				return nil, err
			}

			columns = append(columns, spliced...)

			continue
		}

		if in.provider.IsEmbedded(f) {
			return nil, &Error{
				Kind:   KindInvalidEmbedding,
				Type:   f.Owner,
				Field:  f.Name,
				Detail: f.Type.String(),
			}
		}

		col, err := in.column(desc, f, override, chain, existing)
		if err != nil {
			return nil, err
		}

		columns = append(columns, col)
	}

	return columns, nil
}

// column resolves one non-embedded field.
func (in *Inferrer) column(
	desc *descriptor.TypeDescriptor,
	f *descriptor.FieldDescriptor,
	override *meta.ColumnOverride,
	chain Chain,
	existing *typeinfo.Struct,
) (typeinfo.Column, error) {
	name := in.naming(f.Name)
	if override != nil && override.Name != "" {
		name = override.Name
	}

	var hint typeinfo.Type
	if existing != nil {
		if member, ok := existing.Member(name); ok {
			h, err := UnwrapExisting(member)
			if err != nil {
				return typeinfo.Column{}, atField(err, f)
			}

			hint = h
		}
	}

	site := site{owner: desc.ID, field: f, chain: chain}

	t, err := in.resolve(site, f.Type, override, hint)
	if err != nil {
		return typeinfo.Column{}, err
	}

	return typeinfo.Column{Name: name, Type: t}, nil
}

// structOf returns the descriptor of a struct-kinded reference.
func (in *Inferrer) structOf(ref *descriptor.TypeRef) *descriptor.TypeDescriptor {
	if ref == nil || ref.Kind != descriptor.KindStruct {
		return nil
	}

	desc, ok := in.types.Lookup(ref.ID)
	if !ok {
		return nil
	}

	return desc
}
