package primitive

import (
	"go/types"
)

// FromGoType is FromReflectType for statically analyzed types.
func FromGoType(t types.Type) KindEnum {
	if t == nil {
		return 0
	}

	if named, ok := t.(*types.Named); ok {
		obj := named.Obj()
		if obj.Pkg() != nil && obj.Pkg().Path() == "time" {
			switch obj.Name() {
			case "Time":
				return KindTimestamp
			case "Duration":
				return KindInterval
			}
		}
	}

	switch ut := t.Underlying().(type) {
	case *types.Basic:
		return fromBasic(ut.Kind())
	case *types.Slice:
		return bytesOf(ut.Elem())
	case *types.Array:
		return bytesOf(ut.Elem())
	default:
		return 0
	}
}

func bytesOf(elem types.Type) KindEnum {
	if b, ok := elem.Underlying().(*types.Basic); ok && b.Kind() == types.Uint8 {
		return KindBytes
	}

	return 0
}

func fromBasic(kind types.BasicKind) KindEnum {
	switch kind {
	case types.Int8:
		return KindInt8
	case types.Int16:
		return KindInt16
	case types.Int32:
		return KindInt32
	case types.Int, types.Int64:
		return KindInt64
	case types.Uint8:
		return KindUint8
	case types.Uint16:
		return KindUint16
	case types.Uint32:
		return KindUint32
	case types.Uint, types.Uint64, types.Uintptr:
		return KindUint64
	case types.Float32:
		return KindFloat
	case types.Float64:
		return KindDouble
	case types.Bool:
		return KindBool
	case types.String:
		return KindString
	default:
		return 0
	}
}
