// Package query evaluates parsed BFQL against the tag store with
// per-tag permission enforcement. It composes the parser, the permission
// resolver, the registry and the versioned store into the engine surface
// consumed by transports.
package query

import (
	"context"
	"sort"
	"time"

	"github.com/openbfd/bfd/errors"
	"github.com/openbfd/bfd/logger"
	"github.com/openbfd/bfd/tags"
	"github.com/openbfd/bfd/tags/bfql"
	"github.com/openbfd/bfd/tags/perm"
	"github.com/openbfd/bfd/tags/types"
)

// ValueStore is the store surface the engine evaluates against. The
// unchecked reads exist for predicate evaluation; the engine applies its
// own tag-level visibility filtering before using them.
type ValueStore interface {
	tags.TagStore
	ListTags(ctx context.Context, actor tags.Actor, objectID, pattern string) ([]tags.Path, error)
	ObjectsWith(ctx context.Context, tagPath tags.Path) ([]string, error)
	CurrentValue(ctx context.Context, objectID string, tagPath tags.Path) (*tags.TagValue, error)
}

// Engine runs select/update/delete operations over the store.
type Engine struct {
	store    ValueStore
	registry tags.Registry
	resolver *perm.Resolver
}

// NewEngine creates an engine over the given store and registry.
func NewEngine(store ValueStore, registry tags.Registry) *Engine {
	return &Engine{
		store:    store,
		registry: registry,
		resolver: perm.NewResolver(registry),
	}
}

// Parse compiles BFQL source into an AST.
func (e *Engine) Parse(src string) (bfql.Node, error) {
	return bfql.Parse(src)
}

// Result is one select match: the object and the current values of the
// query's readable tagpaths on it.
type Result struct {
	ObjectID string                 `json:"object_id"`
	Values   map[string]types.Value `json:"values"`
}

// Select evaluates the query for the actor and returns a lazy iterator
// over matches. Tags the actor cannot read are evaluated as if they do
// not exist: their predicates match nothing and their values never
// appear in results. That keeps a private tag indistinguishable from an
// undeclared one.
func (e *Engine) Select(ctx context.Context, node bfql.Node, actor tags.Actor) (*ResultIterator, error) {
	start := time.Now()
	ev := newEvaluator(ctx, e, actor)
	matched, err := ev.eval(node, nil)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(matched))
	for id := range matched {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var readable []tags.Path
	for _, p := range bfql.Paths(node) {
		if ev.readable(p) {
			readable = append(readable, p)
		}
	}

	logger.QueryDebugw("select evaluated",
		logger.FieldActor, actor.ID,
		logger.FieldQuery, bfql.Render(node),
		logger.FieldMatched, len(ids),
		logger.FieldDurationMS, time.Since(start).Milliseconds(),
	)
	return &ResultIterator{ctx: ctx, engine: e, ids: ids, paths: readable}, nil
}

// ResultIterator walks select matches lazily, loading each object's tag
// values on demand.
type ResultIterator struct {
	ctx    context.Context
	engine *Engine
	ids    []string
	paths  []tags.Path
	pos    int
	cur    *Result
	err    error
}

// Next advances to the next match. It returns false when exhausted, on
// error, or when the context is cancelled.
func (it *ResultIterator) Next() bool {
	if it.err != nil || it.pos >= len(it.ids) {
		return false
	}
	if err := it.ctx.Err(); err != nil {
		it.err = err
		return false
	}
	id := it.ids[it.pos]
	it.pos++

	values := make(map[string]types.Value, len(it.paths))
	for _, p := range it.paths {
		tv, err := it.engine.store.CurrentValue(it.ctx, id, p)
		if err != nil {
			if errors.Is(err, errors.ErrValueAbsent) {
				continue
			}
			it.err = err
			return false
		}
		values[p.String()] = tv.Value
	}
	it.cur = &Result{ObjectID: id, Values: values}
	return true
}

// Result returns the match at the current position.
func (it *ResultIterator) Result() *Result { return it.cur }

// Err returns the first error encountered while iterating.
func (it *ResultIterator) Err() error { return it.err }

// Update sets the given tagpath assignments on every object matched by
// the query. Write permission is checked up front for every assigned tag
// and any denial fails the whole batch before a single mutation runs.
// Per-object failures after that point are reported in the outcomes, not
// fatal to the rest of the batch.
func (e *Engine) Update(ctx context.Context, node bfql.Node, actor tags.Actor, assignments map[string]types.Value) ([]tags.Outcome, error) {
	paths := make([]tags.Path, 0, len(assignments))
	values := make(map[tags.Path]types.Value, len(assignments))
	for raw, v := range assignments {
		p, err := tags.ParsePath(raw)
		if err != nil {
			return nil, err
		}
		paths = append(paths, p)
		values[p] = v
	}
	sort.Slice(paths, func(i, j int) bool { return paths[i].String() < paths[j].String() })

	if err := e.checkWritable(ctx, actor, paths); err != nil {
		return nil, err
	}

	return e.mutateMatched(ctx, node, actor, "update", func(objectID string) error {
		for _, p := range paths {
			if _, err := e.store.Set(ctx, actor, objectID, p, values[p]); err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete removes the given tagpaths from every object matched by the
// query, with the same all-or-nothing permission pre-check as Update.
func (e *Engine) Delete(ctx context.Context, node bfql.Node, actor tags.Actor, tagPaths []string) ([]tags.Outcome, error) {
	paths := make([]tags.Path, 0, len(tagPaths))
	for _, raw := range tagPaths {
		p, err := tags.ParsePath(raw)
		if err != nil {
			return nil, err
		}
		paths = append(paths, p)
	}
	sort.Slice(paths, func(i, j int) bool { return paths[i].String() < paths[j].String() })

	if err := e.checkWritable(ctx, actor, paths); err != nil {
		return nil, err
	}

	return e.mutateMatched(ctx, node, actor, "delete", func(objectID string) error {
		for _, p := range paths {
			if _, err := e.store.Delete(ctx, actor, objectID, p); err != nil {
				return err
			}
		}
		return nil
	})
}

// checkWritable verifies write capability on every path, failing on the
// first denial or unresolved tagpath.
func (e *Engine) checkWritable(ctx context.Context, actor tags.Actor, paths []tags.Path) error {
	for _, p := range paths {
		_, allowed, err := e.resolver.Check(ctx, actor, p, perm.Write)
		if err != nil {
			return err
		}
		if !allowed {
			return errors.NewPermissionDenied("actor %s may not write %s", actor.ID, p)
		}
	}
	return nil
}

func (e *Engine) mutateMatched(ctx context.Context, node bfql.Node, actor tags.Actor, op string, mutate func(objectID string) error) ([]tags.Outcome, error) {
	ev := newEvaluator(ctx, e, actor)
	matched, err := ev.eval(node, nil)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(matched))
	for id := range matched {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	outcomes := make([]tags.Outcome, 0, len(ids))
	failed := 0
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return outcomes, err
		}
		out := tags.Outcome{ObjectID: id, Err: mutate(id)}
		if out.Failed() {
			failed++
		}
		outcomes = append(outcomes, out)
	}

	logger.QueryInfow("batch mutation applied",
		logger.FieldActor, actor.ID,
		logger.FieldOperation, op,
		logger.FieldQuery, bfql.Render(node),
		logger.FieldMatched, len(ids),
		logger.FieldFailed, failed,
	)
	return outcomes, nil
}

// ListTags lists the readable tagpaths on an object, optionally filtered
// by a glob pattern.
func (e *Engine) ListTags(ctx context.Context, actor tags.Actor, objectID, pattern string) ([]tags.Path, error) {
	return e.store.ListTags(ctx, actor, objectID, pattern)
}

// Get returns the current value at (objectID, path).
func (e *Engine) Get(ctx context.Context, actor tags.Actor, objectID string, path tags.Path) (*tags.TagValue, error) {
	return e.store.Get(ctx, actor, objectID, path)
}

// Set writes a value at (objectID, path).
func (e *Engine) Set(ctx context.Context, actor tags.Actor, objectID string, path tags.Path, value types.Value) (*tags.Event, error) {
	return e.store.Set(ctx, actor, objectID, path, value)
}

// Remove deletes the value at (objectID, path).
func (e *Engine) Remove(ctx context.Context, actor tags.Actor, objectID string, path tags.Path) (*tags.Event, error) {
	return e.store.Delete(ctx, actor, objectID, path)
}

// History streams the event sequence for (objectID, path).
func (e *Engine) History(ctx context.Context, actor tags.Actor, objectID string, path tags.Path) (*tags.EventIterator, error) {
	return e.store.History(ctx, actor, objectID, path)
}
