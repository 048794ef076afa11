package types

// Kind identifies one of the seven data types a tag may declare. A tag's
// kind is fixed at creation; every value written through the tag must
// satisfy it.
type Kind string

const (
	KindString   Kind = "string"
	KindBoolean  Kind = "boolean"
	KindInteger  Kind = "integer"
	KindFloat    Kind = "float"
	KindDatetime Kind = "datetime"
	KindDuration Kind = "duration"
	KindPointer  Kind = "pointer"
	KindBinary   Kind = "binary"
)

// Kinds lists every valid kind, in declaration order.
var Kinds = []Kind{
	KindString, KindBoolean, KindInteger, KindFloat,
	KindDatetime, KindDuration, KindPointer, KindBinary,
}

// Valid reports whether k names a known kind.
func (k Kind) Valid() bool {
	switch k {
	case KindString, KindBoolean, KindInteger, KindFloat,
		KindDatetime, KindDuration, KindPointer, KindBinary:
		return true
	}
	return false
}

func (k Kind) String() string {
	return string(k)
}

// Numeric reports whether values of this kind order like numbers.
// Integer and float are mutually comparable: the integer side is promoted
// to float for the comparison.
func (k Kind) Numeric() bool {
	return k == KindInteger || k == KindFloat
}
