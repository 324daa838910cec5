package infer

import (
	"fmt"

	"entity-schema/meta"
	"entity-schema/typeinfo"
)

// ReconcileDecimal settles the precision and scale of a decimal column.
// Values from override are the candidate; an existing decimal fills an unset
// candidate and must equal a set one. There is no default.
func ReconcileDecimal(override *meta.ColumnOverride, existing *typeinfo.Decimal) (typeinfo.Decimal, error) {
	var candidate typeinfo.Decimal
	if override.HasDecimal() {
		candidate = typeinfo.Decimal{Precision: override.Precision, Scale: override.Scale}
	}

	if existing != nil {
		switch {
		case candidate == (typeinfo.Decimal{}):
			candidate = *existing
		case candidate != *existing:
			return typeinfo.Decimal{}, &Error{
				Kind:   KindDecimalMismatch,
				Detail: fmt.Sprintf("declared %s, existing %s", candidate, existing),
			}
		}
	}

	if candidate == (typeinfo.Decimal{}) {
		return typeinfo.Decimal{}, &Error{
			Kind:   KindDecimalUnspecified,
			Detail: "set precision and scale on the field or supply an existing schema",
		}
	}

	return candidate, nil
}

// UnwrapExisting strips one optional level from an existing type so it can be
// compared with a freshly inferred inner type. Optional of optional is always
// rejected.
func UnwrapExisting(existing typeinfo.Type) (typeinfo.Type, error) {
	o, ok := existing.(typeinfo.Optional)
	if !ok {
		return existing, nil
	}

	if typeinfo.IsOptional(o.Item) {
		return nil, &Error{Kind: KindDoubleOptional, Detail: existing.String()}
	}

	return o.Item, nil
}
