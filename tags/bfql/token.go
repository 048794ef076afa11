package bfql

// tokenKind discriminates lexed BFQL tokens
type tokenKind string

const (
	tokenLParen     tokenKind = "lparen"
	tokenRParen     tokenKind = "rparen"
	tokenAnd        tokenKind = "and"
	tokenOr         tokenKind = "or"
	tokenHas        tokenKind = "has"
	tokenMissing    tokenKind = "missing"
	tokenComparator tokenKind = "comparator"
	tokenTagPath    tokenKind = "tagpath"
	tokenString     tokenKind = "string"
	tokenInteger    tokenKind = "integer"
	tokenFloat      tokenKind = "float"
	tokenBoolean    tokenKind = "boolean"
	tokenDatetime   tokenKind = "datetime"
	tokenDuration   tokenKind = "duration"
	tokenMime       tokenKind = "mime"
	tokenEOF        tokenKind = "eof"
)

// token is one lexed unit of BFQL source. value holds the decoded text:
// for strings the unescaped content, for everything else the raw word.
type token struct {
	kind  tokenKind
	value string
	pos   Position
}

func (t token) String() string {
	if t.kind == tokenEOF {
		return "end of query"
	}
	return t.value
}
