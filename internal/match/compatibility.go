package match

import (
	"entity-schema/primitive"
	"entity-schema/typeinfo"
)

// TypeCompatibility represents how a pinned column type relates to the
// inferred type of the same column.
type TypeCompatibility int

const (
	// TypeIncompatible means stored values cannot be read as the new type.
	TypeIncompatible TypeCompatibility = iota
	// TypeTightened means the new type rejects some stored values, e.g. a
	// column lost its optional wrapper or a number narrowed.
	TypeTightened
	// TypeRelaxed means every stored value is valid for the new type, e.g. a
	// column became optional or a number widened.
	TypeRelaxed
	// TypeIdentical means the types are exactly the same.
	TypeIdentical
)

const (
	VerdictIdentical    = "identical"
	VerdictRelaxed      = "relaxed"
	VerdictTightened    = "tightened"
	VerdictIncompatible = "incompatible"
)

// String returns a human-readable name for the compatibility level.
func (c TypeCompatibility) String() string {
	switch c {
	case TypeIdentical:
		return VerdictIdentical
	case TypeRelaxed:
		return VerdictRelaxed
	case TypeTightened:
		return VerdictTightened
	case TypeIncompatible:
		return VerdictIncompatible
	default:
		return "unknown"
	}
}

// Score returns a numeric score for sorting (higher is better).
func (c TypeCompatibility) Score() int {
	return int(c)
}

// TypeCompatibilityResult contains detailed information about type compatibility.
type TypeCompatibilityResult struct {
	Compatibility TypeCompatibility
	Reason        string // Human-readable explanation
	PinnedType    string // Text form of the pinned type
	InferredType  string // Text form of the inferred type
}

// ScoreTypeCompatibility determines whether data stored under the pinned type
// stays valid under the inferred type.
func ScoreTypeCompatibility(pinned, inferred typeinfo.Type) TypeCompatibilityResult {
	result := TypeCompatibilityResult{
		Compatibility: TypeIncompatible,
		Reason:        "types are not compatible",
	}

	if pinned == nil || inferred == nil {
		result.Reason = "type information unavailable"
		return result
	}

	result.PinnedType = pinned.String()
	result.InferredType = inferred.String()

	switch {
	case typeinfo.Equal(pinned, inferred):
		result.Compatibility = TypeIdentical
		result.Reason = "types are identical"
	case relaxes(pinned, inferred):
		result.Compatibility = TypeRelaxed
		result.Reason = "stored values remain valid"
	case relaxes(inferred, pinned):
		result.Compatibility = TypeTightened
		result.Reason = "some stored values become invalid"
	}

	return result
}

// relaxes reports whether every value of type from is a value of type to.
func relaxes(from, to typeinfo.Type) bool {
	if typeinfo.Equal(from, to) {
		return true
	}

	if opt, ok := to.(typeinfo.Optional); ok {
		if inner, ok := from.(typeinfo.Optional); ok {
			return relaxes(inner.Item, opt.Item)
		}

		return relaxes(from, opt.Item)
	}

	switch f := from.(type) {
	case typeinfo.Primitive:
		t, ok := to.(typeinfo.Primitive)
		return ok && primitive.Compatible(f.Kind, t.Kind, primitive.CategorySafeNumber)

	case typeinfo.List:
		t, ok := to.(typeinfo.List)
		return ok && relaxes(f.Item, t.Item)

	case typeinfo.Dict:
		t, ok := to.(typeinfo.Dict)
		return ok && typeinfo.Equal(f.Key, t.Key) && relaxes(f.Value, t.Value)

	case typeinfo.Decimal:
		t, ok := to.(typeinfo.Decimal)
		return ok && t.Scale >= f.Scale && int(t.Precision)-int(t.Scale) >= int(f.Precision)-int(f.Scale)

	case typeinfo.Struct:
		t, ok := to.(typeinfo.Struct)
		if !ok || len(f.Members) != len(t.Members) {
			return false
		}

		for i := range f.Members {
			if f.Members[i].Name != t.Members[i].Name || !relaxes(f.Members[i].Type, t.Members[i].Type) {
				return false
			}
		}

		return true

	default:
		return false
	}
}
