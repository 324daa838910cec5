package gen

import (
	"fmt"

	"github.com/dave/jennifer/jen"

	"entity-schema/primitive"
	"entity-schema/typeinfo"
)

const (
	typeinfoPkg  = "entity-schema/typeinfo"
	primitivePkg = "entity-schema/primitive"
)

var kindIdents = [...]string{
	primitive.KindInt8:      "KindInt8",
	primitive.KindInt16:     "KindInt16",
	primitive.KindInt32:     "KindInt32",
	primitive.KindInt64:     "KindInt64",
	primitive.KindUint8:     "KindUint8",
	primitive.KindUint16:    "KindUint16",
	primitive.KindUint32:    "KindUint32",
	primitive.KindUint64:    "KindUint64",
	primitive.KindFloat:     "KindFloat",
	primitive.KindDouble:    "KindDouble",
	primitive.KindBool:      "KindBool",
	primitive.KindString:    "KindString",
	primitive.KindBytes:     "KindBytes",
	primitive.KindTimestamp: "KindTimestamp",
	primitive.KindInterval:  "KindInterval",
}

// typeExpr returns a composite literal constructing t.
func typeExpr(t typeinfo.Type) (jen.Code, error) {
	switch tt := t.(type) {
	case typeinfo.Primitive:
		if !tt.Kind.IsValid() {
			return nil, fmt.Errorf("invalid primitive kind %d", int(tt.Kind))
		}

		return jen.Qual(typeinfoPkg, "Primitive").Values(jen.Dict{
			jen.Id("Kind"): jen.Qual(primitivePkg, kindIdents[tt.Kind]),
		}), nil

	case typeinfo.Optional:
		item, err := typeExpr(tt.Item)
		if err != nil {
			return nil, err
		}

		return jen.Qual(typeinfoPkg, "Optional").Values(jen.Dict{jen.Id("Item"): item}), nil

	case typeinfo.List:
		item, err := typeExpr(tt.Item)
		if err != nil {
			return nil, err
		}

		return jen.Qual(typeinfoPkg, "List").Values(jen.Dict{jen.Id("Item"): item}), nil

	case typeinfo.Dict:
		key, err := typeExpr(tt.Key)
		if err != nil {
			return nil, err
		}

		value, err := typeExpr(tt.Value)
		if err != nil {
			return nil, err
		}

		return jen.Qual(typeinfoPkg, "Dict").Values(jen.Dict{
			jen.Id("Key"):   key,
			jen.Id("Value"): value,
		}), nil

	case typeinfo.Decimal:
		return jen.Qual(typeinfoPkg, "Decimal").Values(jen.Dict{
			jen.Id("Precision"): jen.Lit(int(tt.Precision)),
			jen.Id("Scale"):     jen.Lit(int(tt.Scale)),
		}), nil

	case typeinfo.Struct:
		members := make([]jen.Code, 0, len(tt.Members))
		for _, m := range tt.Members {
			mt, err := typeExpr(m.Type)
			if err != nil {
				return nil, fmt.Errorf("member %s: %w", m.Name, err)
			}

			members = append(members, jen.Values(jen.Dict{
				jen.Id("Name"): jen.Lit(m.Name),
				jen.Id("Type"): mt,
			}))
		}

		return jen.Qual(typeinfoPkg, "Struct").Values(jen.Dict{
			jen.Id("Members"): jen.Index().Qual(typeinfoPkg, "Member").ValuesFunc(func(g *jen.Group) {
				for _, m := range members {
					g.Line().Add(m)
				}

				if len(members) > 0 {
					g.Line()
				}
			}),
		}), nil

	default:
		return nil, fmt.Errorf("unsupported storage type %T", t)
	}
}
