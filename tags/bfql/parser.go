package bfql

import (
	"strconv"

	"github.com/openbfd/bfd/tags"
	"github.com/openbfd/bfd/tags/types"
)

// Parse consumes BFQL source text and produces an AST, or fails with a
// *ParseError carrying the offending token and position. A structurally
// valid query with an unbound missing predicate fails with a constraint
// error matching errors.ErrQueryConstraint.
func Parse(src string) (Node, error) {
	toks, err := tokenize(src)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	root, err := p.parseDisjunction()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.kind != tokenEOF {
		if tok.kind == tokenRParen {
			return nil, NewParseError(ErrorKindSyntax, "unbalanced parentheses").
				WithPosition(tok.pos).
				WithToken(tok.value).
				WithSuggestion("remove the extra ')' or add a matching '('")
		}
		return nil, NewParseError(ErrorKindSyntax, "unexpected input after query").
			WithPosition(tok.pos).
			WithToken(tok.String()).
			WithSuggestion("join predicates with 'and' or 'or'")
	}
	if err := validateBound(root); err != nil {
		return nil, err
	}
	return root, nil
}

type parser struct {
	toks []token
	pos  int
}

func (p *parser) peek() token {
	return p.toks[p.pos]
}

func (p *parser) advance() token {
	tok := p.toks[p.pos]
	if tok.kind != tokenEOF {
		p.pos++
	}
	return tok
}

func (p *parser) parseDisjunction() (Node, error) {
	left, err := p.parseConjunction()
	if err != nil {
		return nil, err
	}
	if p.peek().kind != tokenOr {
		return left, nil
	}
	terms := spliceOr(nil, left)
	for p.peek().kind == tokenOr {
		p.advance()
		right, err := p.parseConjunction()
		if err != nil {
			return nil, err
		}
		terms = spliceOr(terms, right)
	}
	return &Or{Terms: terms}, nil
}

func (p *parser) parseConjunction() (Node, error) {
	left, err := p.parsePredicate()
	if err != nil {
		return nil, err
	}
	if p.peek().kind != tokenAnd {
		return left, nil
	}
	terms := spliceAnd(nil, left)
	for p.peek().kind == tokenAnd {
		p.advance()
		right, err := p.parsePredicate()
		if err != nil {
			return nil, err
		}
		terms = spliceAnd(terms, right)
	}
	return &And{Terms: terms}, nil
}

func (p *parser) parsePredicate() (Node, error) {
	tok := p.advance()
	switch tok.kind {
	case tokenLParen:
		inner, err := p.parseDisjunction()
		if err != nil {
			return nil, err
		}
		closing := p.advance()
		if closing.kind != tokenRParen {
			return nil, NewParseError(ErrorKindSyntax, "unbalanced parentheses").
				WithPosition(tok.pos).
				WithSuggestion("add a matching ')'")
		}
		return inner, nil
	case tokenHas:
		path, err := p.parseTagPath()
		if err != nil {
			return nil, err
		}
		return &Has{Path: path}, nil
	case tokenMissing:
		path, err := p.parseTagPath()
		if err != nil {
			return nil, err
		}
		return &Missing{Path: path}, nil
	case tokenTagPath:
		return p.parseComparison(tok)
	case tokenEOF:
		return nil, NewParseError(ErrorKindSyntax, "unexpected end of query").
			WithPosition(tok.pos).
			WithSuggestion("a predicate is required here")
	default:
		return nil, NewParseError(ErrorKindSyntax, "expected a predicate").
			WithPosition(tok.pos).
			WithToken(tok.String()).
			WithSuggestion("predicates are 'has ns/tag', 'missing ns/tag', 'ns/tag <comparator> <literal>' or a parenthesized group")
	}
}

func (p *parser) parseTagPath() (tags.Path, error) {
	tok := p.advance()
	if tok.kind != tokenTagPath {
		return tags.Path{}, NewParseError(ErrorKindSyntax, "expected a tagpath").
			WithPosition(tok.pos).
			WithToken(tok.String()).
			WithSuggestion("tagpaths have the form namespace/tag")
	}
	path, err := tags.ParsePath(tok.value)
	if err != nil {
		return tags.Path{}, NewParseError(ErrorKindSyntax, "invalid tagpath").
			WithPosition(tok.pos).
			WithToken(tok.value).
			WithUnderlying(err)
	}
	return path, nil
}

func (p *parser) parseComparison(pathTok token) (Node, error) {
	path, err := tags.ParsePath(pathTok.value)
	if err != nil {
		return nil, NewParseError(ErrorKindSyntax, "invalid tagpath").
			WithPosition(pathTok.pos).
			WithToken(pathTok.value).
			WithUnderlying(err)
	}
	opTok := p.advance()
	if opTok.kind != tokenComparator {
		return nil, NewParseError(ErrorKindSyntax, "expected a comparator after tagpath").
			WithPosition(opTok.pos).
			WithToken(opTok.String()).
			WithSuggestion("comparators are =, !=, <, <=, >, >=, is, iis, matches, imatches")
	}
	op, ok := types.LookupComparator(opTok.value)
	if !ok {
		return nil, NewParseError(ErrorKindSyntax, "unknown comparator").
			WithPosition(opTok.pos).
			WithToken(opTok.value)
	}
	lit, err := p.parseLiteral()
	if err != nil {
		return nil, err
	}
	return &Compare{Path: path, Op: op, Literal: lit}, nil
}

func (p *parser) parseLiteral() (types.Value, error) {
	tok := p.advance()
	switch tok.kind {
	case tokenString:
		return types.String(tok.value), nil
	case tokenInteger:
		n, err := strconv.ParseInt(tok.value, 10, 64)
		if err != nil {
			return types.Value{}, NewParseError(ErrorKindLiteral, "integer literal out of range").
				WithPosition(tok.pos).
				WithToken(tok.value).
				WithUnderlying(err)
		}
		return types.Integer(n), nil
	case tokenFloat:
		f, err := strconv.ParseFloat(tok.value, 64)
		if err != nil {
			return types.Value{}, NewParseError(ErrorKindLiteral, "invalid float literal").
				WithPosition(tok.pos).
				WithToken(tok.value).
				WithUnderlying(err)
		}
		return types.Float(f), nil
	case tokenBoolean:
		return types.Boolean(tok.value == "true"), nil
	case tokenDatetime:
		v, err := types.ParseDatetime(tok.value)
		if err != nil {
			return types.Value{}, NewParseError(ErrorKindLiteral, "invalid datetime literal").
				WithPosition(tok.pos).
				WithToken(tok.value).
				WithUnderlying(err).
				WithSuggestion("datetimes follow YYYY-MM-DD[THH:MM:SS[+HH:MM]]")
		}
		return v, nil
	case tokenDuration:
		v, err := types.ParseDuration(tok.value)
		if err != nil {
			return types.Value{}, NewParseError(ErrorKindLiteral, "invalid duration literal").
				WithPosition(tok.pos).
				WithToken(tok.value).
				WithUnderlying(err)
		}
		return v, nil
	case tokenMime:
		v, err := types.ParseMime(tok.value)
		if err != nil {
			return types.Value{}, NewParseError(ErrorKindLiteral, "invalid mime literal").
				WithPosition(tok.pos).
				WithToken(tok.value).
				WithUnderlying(err).
				WithSuggestion("mime literals look like mime:image/png")
		}
		return v, nil
	default:
		return types.Value{}, NewParseError(ErrorKindSyntax, "expected a literal").
			WithPosition(tok.pos).
			WithToken(tok.String()).
			WithSuggestion("literals are strings, numbers, booleans, datetimes, durations or mime:type/subtype")
	}
}

// spliceOr appends a term, flattening a nested disjunction. Parenthesized
// groups of the same operator are associative so flattening preserves
// meaning and keeps the AST canonical.
func spliceOr(terms []Node, n Node) []Node {
	if or, ok := n.(*Or); ok {
		return append(terms, or.Terms...)
	}
	return append(terms, n)
}

func spliceAnd(terms []Node, n Node) []Node {
	if and, ok := n.(*And); ok {
		return append(terms, and.Terms...)
	}
	return append(terms, n)
}
