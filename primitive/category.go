package primitive

type CategoryEnum int

// ConversionPair describes storing a Go value of kind From in a column of kind To.
type ConversionPair struct {
	From, To KindEnum
}

const (
	CategorySafeNumber   CategoryEnum = 1 << iota // int, uint, float stored without precision loss
	CategoryUnsafeNumber                          // int, uint, float stored with possible precision loss
	CategoryTextBytes                             // string <-> bytes: text stored as raw bytes and back
	CategoryTimestamp                             // int64(Unix micros) <-> timestamp
	CategoryInterval                              // int64(micros) <-> interval

	CategoryAll  = (1 << iota) - 1 //all categories combined
	CategoryNone = 0               // no categories selected

	// CategoryDefault is what raw type definitions accept unless configured otherwise.
	CategoryDefault = CategorySafeNumber | CategoryTextBytes | CategoryTimestamp | CategoryInterval
)

var categoryNames = map[string]CategoryEnum{
	"safe_number":   CategorySafeNumber,
	"unsafe_number": CategoryUnsafeNumber,
	"text_bytes":    CategoryTextBytes,
	"timestamp":     CategoryTimestamp,
	"interval":      CategoryInterval,
	"all":           CategoryAll,
	"none":          CategoryNone,
	"default":       CategoryDefault,
}

// ParseCategory returns the category called name, e.g. "safe_number".
func ParseCategory(name string) (CategoryEnum, bool) {
	c, ok := categoryNames[name]
	return c, ok
}

var conversionPairs map[CategoryEnum]map[ConversionPair]struct{}

func init() {
	conversionPairs = make(map[CategoryEnum]map[ConversionPair]struct{})

	conversionPairs[CategorySafeNumber] = safeNumberConversionPairs()

	conversionPairs[CategoryUnsafeNumber] = map[ConversionPair]struct{}{}
	for fromKind := KindEnum(0); int(fromKind) < KindTotal; fromKind++ {
		if !fromKind.IsNumber() {
			continue
		}

		for toKind := KindEnum(0); int(toKind) < KindTotal; toKind++ {
			if !toKind.IsNumber() {
				continue
			}

			pair := ConversionPair{fromKind, toKind}
			if _, ok := conversionPairs[CategorySafeNumber][pair]; ok {
				continue
			}

			conversionPairs[CategoryUnsafeNumber][pair] = struct{}{}
		}
	}

	conversionPairs[CategoryTextBytes] = map[ConversionPair]struct{}{
		{KindString, KindBytes}: {},
		{KindBytes, KindString}: {},
	}

	conversionPairs[CategoryTimestamp] = map[ConversionPair]struct{}{
		{KindInt64, KindTimestamp}:  {},
		{KindUint64, KindTimestamp}: {},
		{KindTimestamp, KindInt64}:  {},
	}

	conversionPairs[CategoryInterval] = map[ConversionPair]struct{}{
		{KindInt64, KindInterval}: {},
		{KindInterval, KindInt64}: {},
	}
}

// Compatible reports whether a Go value of kind from may be stored in a column
// of kind to. Identical kinds are always compatible.
func Compatible(from, to KindEnum, allowed CategoryEnum) bool {
	if from == to && from.IsValid() {
		return true
	}

	pair := ConversionPair{from, to}
	for category, pairs := range conversionPairs {
		if allowed&category == 0 {
			continue
		}

		if _, ok := pairs[pair]; ok {
			return true
		}
	}

	return false
}

func safeNumberConversionPairs() map[ConversionPair]struct{} {
	return map[ConversionPair]struct{}{
		{KindInt8, KindInt16}:  {}, // int8 widens to any signed int
		{KindInt8, KindInt32}:  {},
		{KindInt8, KindInt64}:  {},
		{KindInt8, KindFloat}:  {},
		{KindInt8, KindDouble}: {},

		{KindInt16, KindInt32}:  {},
		{KindInt16, KindInt64}:  {},
		{KindInt16, KindFloat}:  {},
		{KindInt16, KindDouble}: {},

		{KindInt32, KindInt64}:  {},
		{KindInt32, KindDouble}: {}, // int32 is wider than float mantissa

		{KindUint8, KindUint16}: {}, // uint8 widens to any unsigned int
		{KindUint8, KindUint32}: {},
		{KindUint8, KindUint64}: {},
		{KindUint8, KindInt16}:  {}, // and to any wider signed int
		{KindUint8, KindInt32}:  {},
		{KindUint8, KindInt64}:  {},
		{KindUint8, KindFloat}:  {},
		{KindUint8, KindDouble}: {},

		{KindUint16, KindUint32}: {},
		{KindUint16, KindUint64}: {},
		{KindUint16, KindInt32}:  {},
		{KindUint16, KindInt64}:  {},
		{KindUint16, KindFloat}:  {},
		{KindUint16, KindDouble}: {},

		{KindUint32, KindUint64}: {},
		{KindUint32, KindInt64}:  {}, // only int64 is wide enough to hold uint32
		{KindUint32, KindDouble}: {},

		{KindFloat, KindDouble}: {},
	}
}
