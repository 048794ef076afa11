package types

import (
	"strings"

	"github.com/openbfd/bfd/errors"
)

// Comparator is a BFQL comparison operator.
type Comparator string

const (
	OpEq       Comparator = "="
	OpNeq      Comparator = "!="
	OpLt       Comparator = "<"
	OpLte      Comparator = "<="
	OpGt       Comparator = ">"
	OpGte      Comparator = ">="
	OpIs       Comparator = "is"       // exact match; sole operator for boolean and binary
	OpIis      Comparator = "iis"      // case-insensitive exact match
	OpMatches  Comparator = "matches"  // substring containment, case-sensitive
	OpIMatches Comparator = "imatches" // substring containment, case-insensitive
)

// Comparators lists every operator the grammar accepts.
var Comparators = []Comparator{
	OpEq, OpNeq, OpLt, OpLte, OpGt, OpGte, OpIs, OpIis, OpMatches, OpIMatches,
}

// LookupComparator resolves an operator token, reporting whether it exists.
func LookupComparator(tok string) (Comparator, bool) {
	for _, op := range Comparators {
		if string(op) == tok {
			return op, true
		}
	}
	return "", false
}

// allowedOps is the comparator table: which operators each declared kind
// accepts. Anything not listed is a type mismatch, checked against the
// declared kind regardless of whether a value is present.
var allowedOps = map[Kind]map[Comparator]bool{
	KindString: {
		OpEq: true, OpNeq: true, OpIs: true, OpIis: true,
		OpMatches: true, OpIMatches: true,
	},
	KindPointer: {
		OpEq: true, OpNeq: true, OpIs: true, OpIis: true,
		OpMatches: true, OpIMatches: true,
	},
	KindBoolean: {OpIs: true},
	KindInteger: {
		OpEq: true, OpNeq: true, OpLt: true, OpLte: true, OpGt: true, OpGte: true,
	},
	KindFloat: {
		OpEq: true, OpNeq: true, OpLt: true, OpLte: true, OpGt: true, OpGte: true,
	},
	KindDatetime: {
		OpEq: true, OpNeq: true, OpLt: true, OpLte: true, OpGt: true, OpGte: true,
	},
	KindDuration: {
		OpEq: true, OpNeq: true, OpLt: true, OpLte: true, OpGt: true, OpGte: true,
	},
	KindBinary: {OpIs: true},
}

// CheckComparator validates an (operator, literal) pair against a tag's
// declared kind. This runs before any value is loaded, so an ill-typed
// predicate fails even when no object carries the tag.
func CheckComparator(declared Kind, op Comparator, literal Value) error {
	if !allowedOps[declared][op] {
		return errors.NewTypeMismatch(
			"operator %q is not valid for a tag of type %s", op, declared)
	}
	if !literalCompatible(declared, literal) {
		return errors.NewTypeMismatch(
			"a %s literal cannot be compared against a tag of type %s",
			literal.Kind, declared)
	}
	// Boolean tags take `is true` / `is false`; binary tags take `is mime:...`.
	if declared == KindBoolean && literal.Kind != KindBoolean {
		return errors.NewTypeMismatch(
			"boolean tags support only `is true` and `is false`")
	}
	if declared == KindBinary && (literal.Kind != KindBinary || literal.Mime == "") {
		return errors.NewTypeMismatch(
			"binary tags support only `is mime:<type>/<subtype>`")
	}
	return nil
}

// literalCompatible reports whether a literal of the given kind can be
// compared against a tag of the declared kind at all.
func literalCompatible(declared Kind, literal Value) bool {
	if declared == literal.Kind {
		return true
	}
	// Integer and float are mutually comparable.
	if declared.Numeric() && literal.Kind.Numeric() {
		return true
	}
	// The grammar has no pointer literal form; pointer tags compare against
	// string literals.
	return declared == KindPointer && literal.Kind == KindString
}

// Matches applies a comparator to a stored value and a literal, after
// validating the pairing against the declared kind. The stored value's kind
// is trusted to satisfy the declaration (the store enforces it on write).
func Matches(declared Kind, op Comparator, stored, literal Value) (bool, error) {
	if err := CheckComparator(declared, op, literal); err != nil {
		return false, err
	}
	return apply(op, stored, literal), nil
}

func apply(op Comparator, stored, literal Value) bool {
	switch op {
	case OpEq:
		return stored.Equal(literal)
	case OpNeq:
		return !stored.Equal(literal)
	case OpLt, OpLte, OpGt, OpGte:
		return applyOrdering(op, stored, literal)
	case OpIs:
		return applyIs(stored, literal)
	case OpIis:
		return strings.EqualFold(stored.Str, literal.Str)
	case OpMatches:
		return strings.Contains(stored.Str, literal.Str)
	case OpIMatches:
		return strings.Contains(strings.ToLower(stored.Str), strings.ToLower(literal.Str))
	}
	return false
}

func applyOrdering(op Comparator, stored, literal Value) bool {
	var cmp int
	switch {
	case stored.Kind.Numeric():
		// Promote integer to float; ordering is then IEEE double ordering.
		a, b := stored.AsFloat(), literal.AsFloat()
		switch {
		case a < b:
			cmp = -1
		case a > b:
			cmp = 1
		}
	case stored.Kind == KindDatetime:
		// Both sides are UTC instants by construction.
		switch {
		case stored.Time.Before(literal.Time):
			cmp = -1
		case stored.Time.After(literal.Time):
			cmp = 1
		}
	case stored.Kind == KindDuration:
		switch {
		case stored.Seconds < literal.Seconds:
			cmp = -1
		case stored.Seconds > literal.Seconds:
			cmp = 1
		}
	}

	switch op {
	case OpLt:
		return cmp < 0
	case OpLte:
		return cmp <= 0
	case OpGt:
		return cmp > 0
	case OpGte:
		return cmp >= 0
	}
	return false
}

func applyIs(stored, literal Value) bool {
	switch stored.Kind {
	case KindBoolean:
		return stored.Bool == literal.Bool
	case KindBinary:
		return strings.EqualFold(stored.Mime, literal.Mime)
	default:
		// string / pointer: exact match
		return stored.Str == literal.Str
	}
}
