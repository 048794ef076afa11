package bfql

import (
	"regexp"
	"strings"
)

// keyword tokens that are not tagpaths or literals
var keywords = map[string]tokenKind{
	"and":     tokenAnd,
	"or":      tokenOr,
	"has":     tokenHas,
	"missing": tokenMissing,
}

// word-form comparators; symbolic ones are lexed as punctuation
var comparatorWords = map[string]bool{
	"is":       true,
	"iis":      true,
	"matches":  true,
	"imatches": true,
}

var (
	datetimeRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}(T\d{2}:\d{2}:\d{2}([+-]\d{2}:\d{2})?)?$`)
	durationRe = regexp.MustCompile(`^-?\d+[ds]$`)
	integerRe  = regexp.MustCompile(`^-?\d+$`)
	floatRe    = regexp.MustCompile(`^-?\d+\.\d+$`)
	tagPathRe  = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.-]*/[A-Za-z_][A-Za-z0-9_.-]*$`)
)

// characters that end a bareword
const wordTerminators = " \t\n\r()\"=!<>"

type lexer struct {
	src string
	pos int
	pt  *positionTracker
}

func newLexer(src string) *lexer {
	return &lexer{src: src, pt: newPositionTracker()}
}

// tokenize lexes the whole source up front. BFQL queries are short enough
// that streaming buys nothing.
func tokenize(src string) ([]token, error) {
	lx := newLexer(src)
	var toks []token
	for {
		tok, err := lx.next()
		if err != nil {
			return nil, err
		}
		toks = append(toks, tok)
		if tok.kind == tokenEOF {
			return toks, nil
		}
	}
}

func (lx *lexer) next() (token, error) {
	lx.skipWhitespace()
	start := lx.pt.current()
	if lx.pos >= len(lx.src) {
		return token{kind: tokenEOF, pos: start}, nil
	}

	switch ch := lx.src[lx.pos]; ch {
	case '(':
		lx.consume(1)
		return token{kind: tokenLParen, value: "(", pos: start}, nil
	case ')':
		lx.consume(1)
		return token{kind: tokenRParen, value: ")", pos: start}, nil
	case '"':
		return lx.scanString(start)
	case '=':
		lx.consume(1)
		return token{kind: tokenComparator, value: "=", pos: start}, nil
	case '!':
		if lx.pos+1 >= len(lx.src) || lx.src[lx.pos+1] != '=' {
			return token{}, NewParseError(ErrorKindSyntax, "unexpected character '!'").
				WithPosition(start).
				WithSuggestion("did you mean '!='?")
		}
		lx.consume(2)
		return token{kind: tokenComparator, value: "!=", pos: start}, nil
	case '<', '>':
		op := string(ch)
		n := 1
		if lx.pos+1 < len(lx.src) && lx.src[lx.pos+1] == '=' {
			op += "="
			n = 2
		}
		lx.consume(n)
		return token{kind: tokenComparator, value: op, pos: start}, nil
	}

	word := lx.scanWord()
	return lx.classifyWord(word, start)
}

func (lx *lexer) skipWhitespace() {
	for lx.pos < len(lx.src) {
		ch := lx.src[lx.pos]
		if ch != ' ' && ch != '\t' && ch != '\n' && ch != '\r' {
			return
		}
		lx.consume(1)
	}
}

func (lx *lexer) consume(n int) {
	lx.pt.advance(lx.src[lx.pos : lx.pos+n])
	lx.pos += n
}

// scanString consumes a double-quoted string literal with backslash
// escaping of quotes and backslashes.
func (lx *lexer) scanString(start Position) (token, error) {
	lx.consume(1) // opening quote
	var sb strings.Builder
	for lx.pos < len(lx.src) {
		ch := lx.src[lx.pos]
		switch ch {
		case '"':
			lx.consume(1)
			return token{kind: tokenString, value: sb.String(), pos: start}, nil
		case '\\':
			if lx.pos+1 < len(lx.src) {
				next := lx.src[lx.pos+1]
				if next == '"' || next == '\\' {
					sb.WriteByte(next)
					lx.consume(2)
					continue
				}
			}
			sb.WriteByte(ch)
			lx.consume(1)
		default:
			sb.WriteByte(ch)
			lx.consume(1)
		}
	}
	return token{}, NewParseError(ErrorKindSyntax, "unterminated string literal").
		WithPosition(start).
		WithSuggestion("close the string with '\"'")
}

func (lx *lexer) scanWord() string {
	begin := lx.pos
	for lx.pos < len(lx.src) && !strings.ContainsRune(wordTerminators, rune(lx.src[lx.pos])) {
		lx.consume(1)
	}
	return lx.src[begin:lx.pos]
}

func (lx *lexer) classifyWord(word string, start Position) (token, error) {
	if kind, ok := keywords[word]; ok {
		return token{kind: kind, value: word, pos: start}, nil
	}
	if comparatorWords[word] {
		return token{kind: tokenComparator, value: word, pos: start}, nil
	}
	switch word {
	case "true", "false":
		return token{kind: tokenBoolean, value: word, pos: start}, nil
	}
	switch {
	case len(word) >= 5 && strings.EqualFold(word[:5], "mime:"):
		return token{kind: tokenMime, value: word, pos: start}, nil
	case datetimeRe.MatchString(word):
		return token{kind: tokenDatetime, value: word, pos: start}, nil
	case durationRe.MatchString(word):
		return token{kind: tokenDuration, value: word, pos: start}, nil
	case integerRe.MatchString(word):
		return token{kind: tokenInteger, value: word, pos: start}, nil
	case floatRe.MatchString(word):
		return token{kind: tokenFloat, value: word, pos: start}, nil
	case tagPathRe.MatchString(word):
		return token{kind: tokenTagPath, value: word, pos: start}, nil
	}
	return token{}, NewParseError(ErrorKindSyntax, "unrecognized token").
		WithPosition(start).
		WithToken(word).
		WithSuggestion("expected a tagpath like namespace/tag, a keyword, or a literal")
}
