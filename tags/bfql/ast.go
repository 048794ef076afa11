package bfql

import (
	"strings"

	"github.com/openbfd/bfd/tags"
	"github.com/openbfd/bfd/tags/types"
)

// Node is one node of a parsed BFQL query.
type Node interface {
	render(sb *strings.Builder)
	node()
}

// Or is a disjunction of two or more terms. Nested disjunctions are
// flattened during parsing, so terms never contain another Or directly.
type Or struct {
	Terms []Node
}

// And is a conjunction of two or more terms. Nested conjunctions are
// flattened during parsing.
type And struct {
	Terms []Node
}

// Has matches objects holding a live value for the tagpath.
type Has struct {
	Path tags.Path
}

// Missing matches objects without a live value for the tagpath, scoped to
// the domain established by its co-conjoined predicates.
type Missing struct {
	Path tags.Path
}

// Compare filters objects by applying a comparator between the current
// value at Path and a literal.
type Compare struct {
	Path    tags.Path
	Op      types.Comparator
	Literal types.Value
}

func (*Or) node()      {}
func (*And) node()     {}
func (*Has) node()     {}
func (*Missing) node() {}
func (*Compare) node() {}

// Render returns the canonical BFQL text for a query. Re-parsing the
// rendered form yields an equal AST, making render/parse a fixpoint.
func Render(n Node) string {
	var sb strings.Builder
	n.render(&sb)
	return sb.String()
}

func (n *Or) render(sb *strings.Builder) {
	for i, term := range n.Terms {
		if i > 0 {
			sb.WriteString(" or ")
		}
		term.render(sb)
	}
}

func (n *And) render(sb *strings.Builder) {
	for i, term := range n.Terms {
		if i > 0 {
			sb.WriteString(" and ")
		}
		// or binds looser than and, so a disjunction term needs scoping
		if _, isOr := term.(*Or); isOr {
			sb.WriteString("(")
			term.render(sb)
			sb.WriteString(")")
		} else {
			term.render(sb)
		}
	}
}

func (n *Has) render(sb *strings.Builder) {
	sb.WriteString("has ")
	sb.WriteString(n.Path.String())
}

func (n *Missing) render(sb *strings.Builder) {
	sb.WriteString("missing ")
	sb.WriteString(n.Path.String())
}

func (n *Compare) render(sb *strings.Builder) {
	sb.WriteString(n.Path.String())
	sb.WriteString(" ")
	sb.WriteString(string(n.Op))
	sb.WriteString(" ")
	sb.WriteString(n.Literal.Render())
}

// Paths returns every tagpath referenced by the query, deduplicated in
// first-appearance order.
func Paths(n Node) []tags.Path {
	seen := make(map[tags.Path]bool)
	var out []tags.Path
	var walk func(Node)
	walk = func(n Node) {
		switch t := n.(type) {
		case *Or:
			for _, term := range t.Terms {
				walk(term)
			}
		case *And:
			for _, term := range t.Terms {
				walk(term)
			}
		case *Has:
			if !seen[t.Path] {
				seen[t.Path] = true
				out = append(out, t.Path)
			}
		case *Missing:
			if !seen[t.Path] {
				seen[t.Path] = true
				out = append(out, t.Path)
			}
		case *Compare:
			if !seen[t.Path] {
				seen[t.Path] = true
				out = append(out, t.Path)
			}
		}
	}
	walk(n)
	return out
}

// Bounded reports whether a subtree produces a finite result set on its
// own, without a domain supplied by a conjoined sibling. Has and
// comparisons are bounded; missing is the unbounded complement; a
// conjunction is bounded by any one bounded term, a disjunction only
// when every branch is.
func Bounded(n Node) bool {
	switch t := n.(type) {
	case *Missing:
		return false
	case *And:
		for _, term := range t.Terms {
			if Bounded(term) {
				return true
			}
		}
		return false
	case *Or:
		for _, term := range t.Terms {
			if !Bounded(term) {
				return false
			}
		}
		return true
	default:
		return true
	}
}

// validateBound rejects queries where a missing predicate has no
// conjoined bounded predicate to establish its domain. Without one the
// result set is the unbounded complement of the tagpath.
func validateBound(root Node) error {
	return checkBound(root, false)
}

func checkBound(n Node, bound bool) error {
	switch t := n.(type) {
	case *Missing:
		if !bound {
			return NewParseError(ErrorKindConstraint,
				"missing "+t.Path.String()+" must be conjoined with at least one other predicate").
				WithSuggestion("combine it with 'and', e.g. has " + t.Path.Namespace + "/othertag and missing " + t.Path.String())
		}
		return nil
	case *And:
		anchored := bound
		if !anchored {
			for _, term := range t.Terms {
				if Bounded(term) {
					anchored = true
					break
				}
			}
		}
		for _, term := range t.Terms {
			if err := checkBound(term, anchored); err != nil {
				return err
			}
		}
		return nil
	case *Or:
		for _, term := range t.Terms {
			if err := checkBound(term, bound); err != nil {
				return err
			}
		}
		return nil
	default:
		return nil
	}
}
