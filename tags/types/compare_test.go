package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openbfd/bfd/errors"
)

func TestNumericCrossKindEquality(t *testing.T) {
	// 1000 = 1000 and 1000.0 = 1000 both hold
	ok, err := Matches(KindInteger, OpEq, Integer(1000), Integer(1000))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = Matches(KindInteger, OpEq, Integer(1000), Float(1000.0))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = Matches(KindFloat, OpEq, Float(1000.0), Integer(1000))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestNumericCrossKindOrdering(t *testing.T) {
	// 999 < 1000.5 holds
	ok, err := Matches(KindInteger, OpLt, Integer(999), Float(1000.5))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = Matches(KindFloat, OpGte, Float(1000.5), Integer(999))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = Matches(KindInteger, OpGt, Integer(999), Float(1000.5))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStringComparators(t *testing.T) {
	stored := String("a tale of whales")

	ok, err := Matches(KindString, OpMatches, stored, String("whales"))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = Matches(KindString, OpMatches, stored, String("Whales"))
	require.NoError(t, err)
	assert.False(t, ok, "matches is case-sensitive")

	ok, err = Matches(KindString, OpIMatches, stored, String("WHALES"))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = Matches(KindString, OpEq, stored, String("a tale of whales"))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = Matches(KindString, OpIis, String("Moby Dick"), String("moby dick"))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestOrderingOnStringRejected(t *testing.T) {
	_, err := Matches(KindString, OpLt, String("a"), String("b"))
	require.Error(t, err)
	assert.True(t, errors.IsTypeMismatch(err))
	assert.Contains(t, err.Error(), "string")
}

func TestMatchesOnIntegerRejected(t *testing.T) {
	_, err := Matches(KindInteger, OpMatches, Integer(5), String("5"))
	require.Error(t, err)
	assert.True(t, errors.IsTypeMismatch(err))
}

func TestCheckComparatorUsesDeclaredKindWithoutValue(t *testing.T) {
	// The check must fail on a declared-kind basis alone.
	err := CheckComparator(KindBoolean, OpEq, Boolean(true))
	assert.True(t, errors.IsTypeMismatch(err))

	err = CheckComparator(KindBoolean, OpIs, Boolean(true))
	assert.NoError(t, err)

	err = CheckComparator(KindBinary, OpIs, MimeLiteral("image/png"))
	assert.NoError(t, err)

	err = CheckComparator(KindBinary, OpIs, String("image/png"))
	assert.True(t, errors.IsTypeMismatch(err))
}

func TestDatetimeOrdering(t *testing.T) {
	earlier := Datetime(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC))
	literal, err := ParseDatetime("2020-06-01")
	require.NoError(t, err)

	ok, err := Matches(KindDatetime, OpLt, earlier, literal)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestDatetimeZoneNormalization(t *testing.T) {
	// 10:00+02:00 and 08:00 UTC are the same instant
	a, err := ParseDatetime("2021-03-04T10:00:00+02:00")
	require.NoError(t, err)
	b, err := ParseDatetime("2021-03-04T08:00:00")
	require.NoError(t, err)

	ok, err := Matches(KindDatetime, OpEq, a, b)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestDurationDayAndSecondUnits(t *testing.T) {
	oneDay, err := ParseDuration("1d")
	require.NoError(t, err)
	inSeconds, err := ParseDuration("86400s")
	require.NoError(t, err)

	ok, err := Matches(KindDuration, OpEq, oneDay, inSeconds)
	require.NoError(t, err)
	assert.True(t, ok)

	shorter, err := ParseDuration("3600s")
	require.NoError(t, err)
	ok, err = Matches(KindDuration, OpLt, shorter, oneDay)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestBooleanIs(t *testing.T) {
	ok, err := Matches(KindBoolean, OpIs, Boolean(true), Boolean(true))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = Matches(KindBoolean, OpIs, Boolean(true), Boolean(false))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBinaryMimeIs(t *testing.T) {
	stored := Binary([]byte{0x89, 0x50}, "Image/PNG")

	lit, err := ParseMime("mime:IMAGE/png")
	require.NoError(t, err)

	ok, err := Matches(KindBinary, OpIs, stored, lit)
	require.NoError(t, err)
	assert.True(t, ok, "MIME comparison is case-insensitive")

	other, err := ParseMime("mime:image/jpeg")
	require.NoError(t, err)
	ok, err = Matches(KindBinary, OpIs, stored, other)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPointerComparison(t *testing.T) {
	stored := Pointer("https://example.com/a")

	// The grammar has no pointer literal; string literals compare against
	// pointer tags byte-for-byte.
	ok, err := Matches(KindPointer, OpEq, stored, String("https://example.com/a"))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = Matches(KindPointer, OpMatches, stored, String("example.com"))
	require.NoError(t, err)
	assert.True(t, ok)
}
