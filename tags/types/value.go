package types

import (
	"encoding/base64"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/openbfd/bfd/errors"
)

// Value is the closed tagged variant holding one strongly-typed tag value.
// Exactly the fields relevant to Kind are meaningful; the zero Value is
// invalid. There is deliberately no null variant: absence of a value is
// absence of the record, never a Value.
type Value struct {
	Kind Kind `json:"kind"`

	Str     string    `json:"str,omitempty"`     // string, pointer
	Bool    bool      `json:"bool,omitempty"`    // boolean
	Int     int64     `json:"int,omitempty"`     // integer
	Float   float64   `json:"float,omitempty"`   // float
	Time    time.Time `json:"time,omitempty"`    // datetime, normalized to UTC
	Seconds int64     `json:"seconds,omitempty"` // duration, normalized to whole seconds
	Bytes   []byte    `json:"bytes,omitempty"`   // binary payload
	Mime    string    `json:"mime,omitempty"`    // binary MIME type, lowercased
}

// SecondsPerDay converts day-unit duration literals to the common
// integer-seconds basis used for ordering.
const SecondsPerDay = 24 * 60 * 60

func stringish(k Kind) bool {
	return k == KindString || k == KindPointer
}

// Constructors. These are the only way values should be built; each
// normalizes its input so two equal values are structurally equal.

func String(s string) Value { return Value{Kind: KindString, Str: s} }

func Boolean(b bool) Value { return Value{Kind: KindBoolean, Bool: b} }

func Integer(i int64) Value { return Value{Kind: KindInteger, Int: i} }

func Float(f float64) Value { return Value{Kind: KindFloat, Float: f} }

// Datetime normalizes to UTC so ordering compares instants.
func Datetime(t time.Time) Value { return Value{Kind: KindDatetime, Time: t.UTC()} }

// Duration holds a span as whole seconds.
func Duration(seconds int64) Value { return Value{Kind: KindDuration, Seconds: seconds} }

// DurationDays holds a day-unit span, normalized to seconds.
func DurationDays(days int64) Value {
	return Value{Kind: KindDuration, Seconds: days * SecondsPerDay}
}

// Pointer holds a URL referring to a resource elsewhere.
func Pointer(url string) Value { return Value{Kind: KindPointer, Str: url} }

// Binary holds an opaque payload plus its MIME type. The MIME type is
// lowercased on construction; MIME comparison is case-insensitive.
func Binary(payload []byte, mime string) Value {
	return Value{Kind: KindBinary, Bytes: payload, Mime: strings.ToLower(mime)}
}

// MimeLiteral is a binary-kind value carrying only a MIME type, as produced
// by a `mime:type/subtype` query literal. It matches stored binary values
// by MIME type alone.
func MimeLiteral(mime string) Value {
	return Value{Kind: KindBinary, Mime: strings.ToLower(mime)}
}

// Equal reports structural equality between two values of the same kind.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		// integer/float cross-kind equality promotes to float
		if v.Kind.Numeric() && o.Kind.Numeric() {
			return v.AsFloat() == o.AsFloat()
		}
		// pointer values compare against string literals byte-for-byte
		if stringish(v.Kind) && stringish(o.Kind) {
			return v.Str == o.Str
		}
		return false
	}
	switch v.Kind {
	case KindString, KindPointer:
		return v.Str == o.Str
	case KindBoolean:
		return v.Bool == o.Bool
	case KindInteger:
		return v.Int == o.Int
	case KindFloat:
		return v.Float == o.Float
	case KindDatetime:
		return v.Time.Equal(o.Time)
	case KindDuration:
		return v.Seconds == o.Seconds
	case KindBinary:
		if !strings.EqualFold(v.Mime, o.Mime) || len(v.Bytes) != len(o.Bytes) {
			return false
		}
		for i := range v.Bytes {
			if v.Bytes[i] != o.Bytes[i] {
				return false
			}
		}
		return true
	}
	return false
}

// AsFloat returns the numeric value promoted to float64. Only meaningful
// for numeric kinds.
func (v Value) AsFloat() float64 {
	if v.Kind == KindInteger {
		return float64(v.Int)
	}
	return v.Float
}

// Render produces the BFQL literal form of the value. The output re-parses
// to an equal value, which is what keeps query round-trips stable.
// quoteString wraps s in double quotes, escaping only backslash and the
// quote itself. The string grammar defines exactly these two escapes, so
// renders must never emit sequences like \n that a re-parse would read as
// a literal backslash.
func quoteString(s string) string {
	var sb strings.Builder
	sb.Grow(len(s) + 2)
	sb.WriteByte('"')
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if ch == '"' || ch == '\\' {
			sb.WriteByte('\\')
		}
		sb.WriteByte(ch)
	}
	sb.WriteByte('"')
	return sb.String()
}

func (v Value) Render() string {
	switch v.Kind {
	case KindString, KindPointer:
		return quoteString(v.Str)
	case KindBoolean:
		if v.Bool {
			return "true"
		}
		return "false"
	case KindInteger:
		return strconv.FormatInt(v.Int, 10)
	case KindFloat:
		s := strconv.FormatFloat(v.Float, 'f', -1, 64)
		// An integral float still needs to read as a float literal.
		if !strings.Contains(s, ".") {
			s += ".0"
		}
		return s
	case KindDatetime:
		return v.Time.UTC().Format("2006-01-02T15:04:05+00:00")
	case KindDuration:
		if v.Seconds != 0 && v.Seconds%SecondsPerDay == 0 {
			return strconv.FormatInt(v.Seconds/SecondsPerDay, 10) + "d"
		}
		return strconv.FormatInt(v.Seconds, 10) + "s"
	case KindBinary:
		return "mime:" + v.Mime
	}
	return ""
}

// wireValue is the JSON shape persisted in the events and tag_values
// tables. This is a stable storage format: field names must not change.
type wireValue struct {
	Kind    Kind   `json:"kind"`
	Str     string `json:"str,omitempty"`
	Bool    bool   `json:"bool,omitempty"`
	Int     int64  `json:"int,omitempty"`
	Float   string `json:"float,omitempty"` // decimal string, exact round-trip
	Time    string `json:"time,omitempty"`  // RFC 3339 UTC
	Seconds int64  `json:"seconds,omitempty"`
	Bytes   string `json:"bytes,omitempty"` // base64
	Mime    string `json:"mime,omitempty"`
}

// Encode serializes the value for storage.
func (v Value) Encode() (string, error) {
	w := wireValue{Kind: v.Kind}
	switch v.Kind {
	case KindString, KindPointer:
		w.Str = v.Str
	case KindBoolean:
		w.Bool = v.Bool
	case KindInteger:
		w.Int = v.Int
	case KindFloat:
		w.Float = strconv.FormatFloat(v.Float, 'g', -1, 64)
	case KindDatetime:
		w.Time = v.Time.UTC().Format(time.RFC3339Nano)
	case KindDuration:
		w.Seconds = v.Seconds
	case KindBinary:
		w.Bytes = base64.StdEncoding.EncodeToString(v.Bytes)
		w.Mime = v.Mime
	default:
		return "", errors.Newf("cannot encode value of kind %q", v.Kind)
	}
	out, err := json.Marshal(w)
	if err != nil {
		return "", errors.Wrap(err, "marshal value")
	}
	return string(out), nil
}

// Decode deserializes a stored value. A malformed payload is an integrity
// failure: the stored form is only ever produced by Encode.
func Decode(raw string) (Value, error) {
	var w wireValue
	if err := json.Unmarshal([]byte(raw), &w); err != nil {
		return Value{}, errors.Wrap(errors.ErrIntegrity, err.Error())
	}
	switch w.Kind {
	case KindString:
		return String(w.Str), nil
	case KindPointer:
		return Pointer(w.Str), nil
	case KindBoolean:
		return Boolean(w.Bool), nil
	case KindInteger:
		return Integer(w.Int), nil
	case KindFloat:
		f, err := strconv.ParseFloat(w.Float, 64)
		if err != nil {
			return Value{}, errors.Wrapf(errors.ErrIntegrity, "bad float %q", w.Float)
		}
		return Float(f), nil
	case KindDatetime:
		t, err := time.Parse(time.RFC3339Nano, w.Time)
		if err != nil {
			return Value{}, errors.Wrapf(errors.ErrIntegrity, "bad datetime %q", w.Time)
		}
		return Datetime(t), nil
	case KindDuration:
		return Duration(w.Seconds), nil
	case KindBinary:
		payload, err := base64.StdEncoding.DecodeString(w.Bytes)
		if err != nil {
			return Value{}, errors.Wrap(errors.ErrIntegrity, "bad binary payload")
		}
		return Binary(payload, w.Mime), nil
	}
	return Value{}, errors.Wrapf(errors.ErrIntegrity, "unknown value kind %q", w.Kind)
}
