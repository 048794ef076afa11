package types

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/openbfd/bfd/errors"
)

// Literal parsing for the BFQL data formats. These forms are a stable
// external contract: persisted queries reference them, so parsing must stay
// byte-compatible across releases.

var (
	datetimeDateOnly = "2006-01-02"
	datetimeNoZone   = "2006-01-02T15:04:05"
	datetimeWithZone = "2006-01-02T15:04:05-07:00"

	durationRe = regexp.MustCompile(`^(-?\d+)([ds])$`)
	mimeRe     = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9!#$&^_.+-]*/[a-zA-Z0-9][a-zA-Z0-9!#$&^_.+-]*$`)
)

// ParseDatetime parses a datetime literal: YYYY-MM-DD[THH:MM:SS[±HH:MM]].
// A date-only literal is midnight UTC of that date; a zoneless timestamp is
// taken as UTC. The result is always normalized to UTC.
func ParseDatetime(lit string) (Value, error) {
	if t, err := time.Parse(datetimeWithZone, lit); err == nil {
		return Datetime(t), nil
	}
	if t, err := time.ParseInLocation(datetimeNoZone, lit, time.UTC); err == nil {
		return Datetime(t), nil
	}
	if t, err := time.ParseInLocation(datetimeDateOnly, lit, time.UTC); err == nil {
		return Datetime(t), nil
	}
	return Value{}, errors.Newf("invalid datetime literal %q (want YYYY-MM-DD[THH:MM:SS[±HH:MM]])", lit)
}

// ParseDuration parses a duration literal: <int>d (days) or <int>s
// (seconds), normalized to whole seconds.
func ParseDuration(lit string) (Value, error) {
	m := durationRe.FindStringSubmatch(lit)
	if m == nil {
		return Value{}, errors.Newf("invalid duration literal %q (want <int>d or <int>s)", lit)
	}
	n, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return Value{}, errors.Newf("duration literal %q out of range", lit)
	}
	if m[2] == "d" {
		return DurationDays(n), nil
	}
	return Duration(n), nil
}

// ParseMime parses a mime literal: mime:<type>/<subtype>, case-insensitive.
func ParseMime(lit string) (Value, error) {
	rest, ok := strings.CutPrefix(strings.ToLower(lit), "mime:")
	if !ok {
		return Value{}, errors.Newf("invalid mime literal %q (want mime:<type>/<subtype>)", lit)
	}
	if !mimeRe.MatchString(rest) {
		return Value{}, errors.Newf("invalid MIME type %q", rest)
	}
	return MimeLiteral(rest), nil
}
