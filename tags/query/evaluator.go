package query

import (
	"context"

	"github.com/openbfd/bfd/errors"
	"github.com/openbfd/bfd/tags"
	"github.com/openbfd/bfd/tags/bfql"
	"github.com/openbfd/bfd/tags/perm"
	"github.com/openbfd/bfd/tags/types"
)

// objectSet is a set of object ids.
type objectSet map[string]bool

// evaluator resolves one query bottom-up into object-id sets. Tag
// definitions and visibility are cached per evaluation so each tagpath
// costs one registry lookup regardless of how often it appears.
type evaluator struct {
	ctx    context.Context
	engine *Engine
	actor  tags.Actor
	known  map[tags.Path]*tags.Tag // nil entry: unreadable or undeclared
}

func newEvaluator(ctx context.Context, engine *Engine, actor tags.Actor) *evaluator {
	return &evaluator{
		ctx:    ctx,
		engine: engine,
		actor:  actor,
		known:  make(map[tags.Path]*tags.Tag),
	}
}

// visible returns the tag definition at path, or nil when the actor may
// not read it or it does not exist. The two cases are deliberately
// indistinguishable: reporting "declared but denied" differently from
// "undeclared" would leak tag existence.
func (ev *evaluator) visible(p tags.Path) (*tags.Tag, error) {
	if tag, ok := ev.known[p]; ok {
		return tag, nil
	}
	tag, allowed, err := ev.engine.resolver.Check(ev.ctx, ev.actor, p, perm.Read)
	if err != nil {
		if errors.IsNotFound(err) {
			ev.known[p] = nil
			return nil, nil
		}
		return nil, err
	}
	if !allowed {
		tag = nil
	}
	ev.known[p] = tag
	return tag, nil
}

func (ev *evaluator) readable(p tags.Path) bool {
	tag, err := ev.visible(p)
	return err == nil && tag != nil
}

// eval computes the objects matching a node. domain is the set
// established by co-conjoined predicates, nil meaning unbounded; only
// missing predicates require it, which the parser's constraint check
// guarantees.
func (ev *evaluator) eval(node bfql.Node, domain objectSet) (objectSet, error) {
	if err := ev.ctx.Err(); err != nil {
		return nil, err
	}
	switch n := node.(type) {
	case *bfql.Has:
		return ev.evalHas(n.Path, domain)
	case *bfql.Missing:
		return ev.evalMissing(n.Path, domain)
	case *bfql.Compare:
		return ev.evalCompare(n, domain)
	case *bfql.And:
		return ev.evalAnd(n, domain)
	case *bfql.Or:
		return ev.evalOr(n, domain)
	}
	return nil, errors.AssertionFailedf("unhandled query node %T", node)
}

func (ev *evaluator) evalHas(p tags.Path, domain objectSet) (objectSet, error) {
	tag, err := ev.visible(p)
	if err != nil {
		return nil, err
	}
	if tag == nil {
		return objectSet{}, nil
	}
	ids, err := ev.engine.store.ObjectsWith(ev.ctx, p)
	if err != nil {
		return nil, err
	}
	out := make(objectSet, len(ids))
	for _, id := range ids {
		if domain == nil || domain[id] {
			out[id] = true
		}
	}
	return out, nil
}

// evalMissing subtracts the objects holding the tag from the domain. An
// invisible tag is missing from every object in the domain.
func (ev *evaluator) evalMissing(p tags.Path, domain objectSet) (objectSet, error) {
	if domain == nil {
		return nil, errors.Wrapf(errors.ErrQueryConstraint, "missing %s has no bounding domain", p)
	}
	tag, err := ev.visible(p)
	if err != nil {
		return nil, err
	}
	out := make(objectSet, len(domain))
	for id := range domain {
		out[id] = true
	}
	if tag == nil {
		return out, nil
	}
	ids, err := ev.engine.store.ObjectsWith(ev.ctx, p)
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		delete(out, id)
	}
	return out, nil
}

func (ev *evaluator) evalCompare(n *bfql.Compare, domain objectSet) (objectSet, error) {
	tag, err := ev.visible(n.Path)
	if err != nil {
		return nil, err
	}
	if tag == nil {
		return objectSet{}, nil
	}
	// Checked against the declared type before any value is loaded, so an
	// incompatible comparator fails even over an empty candidate set.
	if err := types.CheckComparator(tag.Type, n.Op, n.Literal); err != nil {
		return nil, err
	}

	ids, err := ev.engine.store.ObjectsWith(ev.ctx, n.Path)
	if err != nil {
		return nil, err
	}
	out := make(objectSet)
	for _, id := range ids {
		if err := ev.ctx.Err(); err != nil {
			return nil, err
		}
		if domain != nil && !domain[id] {
			continue
		}
		tv, err := ev.engine.store.CurrentValue(ev.ctx, id, n.Path)
		if err != nil {
			if errors.Is(err, errors.ErrValueAbsent) {
				continue
			}
			return nil, err
		}
		ok, err := types.Matches(tag.Type, n.Op, tv.Value, n.Literal)
		if err != nil {
			return nil, err
		}
		if ok {
			out[id] = true
		}
	}
	return out, nil
}

// evalAnd intersects its terms, narrowing the domain as it goes.
// Bounded terms run first so unbounded ones always receive an
// established domain; the parser's constraint check guarantees at least
// one bounded anchor exists when the outer domain is nil.
func (ev *evaluator) evalAnd(n *bfql.And, domain objectSet) (objectSet, error) {
	ordered := make([]bfql.Node, 0, len(n.Terms))
	var unbounded []bfql.Node
	for _, term := range n.Terms {
		if bfql.Bounded(term) {
			ordered = append(ordered, term)
		} else {
			unbounded = append(unbounded, term)
		}
	}
	ordered = append(ordered, unbounded...)

	cur := domain
	for _, term := range ordered {
		next, err := ev.eval(term, cur)
		if err != nil {
			return nil, err
		}
		cur = next
	}
	return cur, nil
}

func (ev *evaluator) evalOr(n *bfql.Or, domain objectSet) (objectSet, error) {
	out := make(objectSet)
	for _, term := range n.Terms {
		part, err := ev.eval(term, domain)
		if err != nil {
			return nil, err
		}
		for id := range part {
			out[id] = true
		}
	}
	return out, nil
}
