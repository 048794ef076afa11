package bfql

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openbfd/bfd/errors"
	"github.com/openbfd/bfd/tags"
	"github.com/openbfd/bfd/tags/types"
)

func mustParse(t *testing.T, src string) Node {
	t.Helper()
	n, err := Parse(src)
	require.NoError(t, err, "query %q", src)
	return n
}

func TestParseComparison(t *testing.T) {
	n := mustParse(t, `library/title matches "whale"`)
	cmp, ok := n.(*Compare)
	require.True(t, ok)
	assert.Equal(t, tags.Path{Namespace: "library", Tag: "title"}, cmp.Path)
	assert.Equal(t, types.OpMatches, cmp.Op)
	assert.Equal(t, types.String("whale"), cmp.Literal)
}

func TestParseLiteralKinds(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want types.Value
	}{
		{name: "string", src: `a/b = "hello"`, want: types.String("hello")},
		{name: "escaped quote", src: `a/b = "say \"hi\""`, want: types.String(`say "hi"`)},
		{name: "escaped backslash", src: `a/b = "c:\\tmp"`, want: types.String(`c:\tmp`)},
		{name: "raw newline", src: "a/b = \"line1\nline2\"", want: types.String("line1\nline2")},
		{name: "integer", src: `a/b = 42`, want: types.Integer(42)},
		{name: "negative integer", src: `a/b = -7`, want: types.Integer(-7)},
		{name: "float", src: `a/b = 3.25`, want: types.Float(3.25)},
		{name: "boolean true", src: `a/b is true`, want: types.Boolean(true)},
		{name: "boolean false", src: `a/b is false`, want: types.Boolean(false)},
		{name: "date only", src: `a/b < 2024-06-01`,
			want: types.Datetime(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))},
		{name: "datetime with time", src: `a/b < 2024-06-01T10:30:00`,
			want: types.Datetime(time.Date(2024, 6, 1, 10, 30, 0, 0, time.UTC))},
		{name: "datetime with zone", src: `a/b < 2024-06-01T10:30:00+02:00`,
			want: types.Datetime(time.Date(2024, 6, 1, 8, 30, 0, 0, time.UTC))},
		{name: "duration days", src: `a/b > 3d`, want: types.DurationDays(3)},
		{name: "duration seconds", src: `a/b > 3600s`, want: types.Duration(3600)},
		{name: "mime", src: `a/b is mime:Image/PNG`, want: types.MimeLiteral("image/png")},
		{name: "mime uppercase prefix", src: `a/b is MIME:image/png`, want: types.MimeLiteral("image/png")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmp, ok := mustParse(t, tt.src).(*Compare)
			require.True(t, ok)
			assert.Equal(t, tt.want, cmp.Literal)
		})
	}
}

func TestParsePrecedence(t *testing.T) {
	// and binds tighter than or
	n := mustParse(t, `has a/b and a/c = 1 or has a/d`)
	or, ok := n.(*Or)
	require.True(t, ok)
	require.Len(t, or.Terms, 2)
	and, ok := or.Terms[0].(*And)
	require.True(t, ok)
	assert.Len(t, and.Terms, 2)
	assert.IsType(t, &Has{}, or.Terms[1])
}

func TestParseGrouping(t *testing.T) {
	n := mustParse(t, `has a/b and (a/c = 1 or has a/d)`)
	and, ok := n.(*And)
	require.True(t, ok)
	require.Len(t, and.Terms, 2)
	assert.IsType(t, &Or{}, and.Terms[1])
}

func TestParseFlattensSameOperator(t *testing.T) {
	n := mustParse(t, `(has a/b and has a/c) and has a/d`)
	and, ok := n.(*And)
	require.True(t, ok)
	assert.Len(t, and.Terms, 3)

	n = mustParse(t, `has a/b or (has a/c or has a/d)`)
	or, ok := n.(*Or)
	require.True(t, ok)
	assert.Len(t, or.Terms, 3)
}

func TestParseSyntaxErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{name: "empty", src: ""},
		{name: "unterminated string", src: `a/b = "oops`},
		{name: "unbalanced open", src: `(has a/b`},
		{name: "unbalanced close", src: `has a/b)`},
		{name: "bare tagpath", src: `library/title`},
		{name: "missing literal", src: `a/b =`},
		{name: "double comparator", src: `a/b = = 1`},
		{name: "unknown token", src: `a/b = @@@`},
		{name: "bare word", src: `whales`},
		{name: "lone bang", src: `a/b ! 1`},
		{name: "trailing garbage", src: `has a/b has a/c`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.src)
			require.Error(t, err)
			assert.True(t, IsSyntaxError(err), "want syntax error, got %v", err)
		})
	}
}

func TestParseErrorPosition(t *testing.T) {
	_, err := Parse(`has a/b and @@@`)
	require.Error(t, err)
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	require.NotNil(t, pe.Position)
	assert.Equal(t, 12, pe.Position.Offset)
	assert.Equal(t, "@@@", pe.Token)
}

func TestMissingMustBeConjoined(t *testing.T) {
	_, err := Parse(`missing library/title`)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrQueryConstraint))
	assert.True(t, IsConstraintError(err))

	// missing in a disjunction has no domain either
	_, err = Parse(`missing a/b or has a/c`)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrQueryConstraint))

	// two missings cannot anchor each other
	_, err = Parse(`missing a/b and missing a/c`)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrQueryConstraint))

	// a disjunction with an unbounded branch is no anchor either
	_, err = Parse(`missing a/b and (missing a/c or has a/d)`)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrQueryConstraint))
}

func TestMissingConjoinedIsAccepted(t *testing.T) {
	mustParse(t, `has library/title and missing library/subtitle`)
	mustParse(t, `a/b = 1 and missing a/c`)
	// anchored by the enclosing conjunction
	mustParse(t, `has a/b and (missing a/c or has a/d)`)
	mustParse(t, `has a/b and missing a/c and missing a/d`)
}

func TestRenderRoundTrip(t *testing.T) {
	queries := []string{
		`has library/title`,
		`has a/b and missing a/c`,
		`library/title matches "whale"`,
		`library/summary imatches "Dolphins" or library/summary matches "sharks"`,
		`book/pages > 100 and book/pages <= 500`,
		`a/b = "say \"hi\""`,
		"a/b = \"line1\nline2\"",
		`a/b = "back\\slash"`,
		`a/rating != 3.5`,
		`a/flag is true`,
		`a/when >= 2024-06-01T10:30:00+02:00`,
		`a/ttl < 2d`,
		`a/blob is mime:image/png`,
		`has a/b and (a/c = 1 or has a/d)`,
	}
	for _, q := range queries {
		t.Run(q, func(t *testing.T) {
			first := mustParse(t, q)
			rendered := Render(first)
			second := mustParse(t, rendered)
			assert.Equal(t, first, second, "rendered form %q", rendered)
			// rendering is a fixpoint
			assert.Equal(t, rendered, Render(second))
		})
	}
}

func TestPaths(t *testing.T) {
	n := mustParse(t, `has a/b and (a/c = 1 or has a/b)`)
	got := Paths(n)
	assert.Equal(t, []tags.Path{
		{Namespace: "a", Tag: "b"},
		{Namespace: "a", Tag: "c"},
	}, got)
}
