package query

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openbfd/bfd/am"
	"github.com/openbfd/bfd/errors"
	bfdtesting "github.com/openbfd/bfd/internal/testing"
	"github.com/openbfd/bfd/tags"
	"github.com/openbfd/bfd/tags/storage"
	"github.com/openbfd/bfd/tags/types"
)

var (
	root  = tags.Actor{ID: "root", SystemAdmin: true}
	mary  = tags.Actor{ID: "mary"}
	alice = tags.Actor{ID: "alice"}
)

// newTestEngine builds an engine over an in-memory store with a library
// namespace administered by mary.
func newTestEngine(t *testing.T) (*Engine, *storage.Store, *storage.RegistryStore) {
	t.Helper()
	ctx := context.Background()
	database := bfdtesting.CreateTestDB(t)
	reg := storage.NewRegistryStore(database)

	_, err := reg.CreateNamespace(ctx, root, "library", "", []string{"mary"})
	require.NoError(t, err)
	declare := func(name string, kind types.Kind, private bool) {
		_, err := reg.CreateTag(ctx, mary, tags.Path{Namespace: "library", Tag: name}, "", kind, private)
		require.NoError(t, err)
	}
	declare("title", types.KindString, false)
	declare("summary", types.KindString, false)
	declare("pages", types.KindInteger, false)
	declare("rating", types.KindFloat, false)
	declare("notes", types.KindString, true)

	store := storage.NewStore(database, reg, am.StoreConfig{})
	return NewEngine(store, reg), store, reg
}

func pathOf(name string) tags.Path {
	return tags.Path{Namespace: "library", Tag: name}
}

func set(t *testing.T, store *storage.Store, actor tags.Actor, objectID, tag string, v types.Value) {
	t.Helper()
	_, err := store.Set(context.Background(), actor, objectID, pathOf(tag), v)
	require.NoError(t, err)
}

func selectIDs(t *testing.T, engine *Engine, actor tags.Actor, src string) []string {
	t.Helper()
	ctx := context.Background()
	node, err := engine.Parse(src)
	require.NoError(t, err)
	it, err := engine.Select(ctx, node, actor)
	require.NoError(t, err)
	var ids []string
	for it.Next() {
		ids = append(ids, it.Result().ObjectID)
	}
	require.NoError(t, it.Err())
	return ids
}

func TestSelectSubstringMatch(t *testing.T) {
	engine, store, _ := newTestEngine(t)
	set(t, store, alice, "o1", "summary", types.String("a tale of whales"))
	set(t, store, alice, "o2", "summary", types.String("a tale of sharks"))

	ids := selectIDs(t, engine, alice,
		`library/summary matches "whales" or library/summary matches "dolphins"`)
	assert.Equal(t, []string{"o1"}, ids)
}

func TestSelectResultValues(t *testing.T) {
	engine, store, _ := newTestEngine(t)
	set(t, store, alice, "o1", "title", types.String("Moby Dick"))
	set(t, store, alice, "o1", "pages", types.Integer(600))

	node, err := engine.Parse(`has library/title and has library/pages`)
	require.NoError(t, err)
	it, err := engine.Select(context.Background(), node, alice)
	require.NoError(t, err)
	require.True(t, it.Next())
	res := it.Result()
	assert.Equal(t, "o1", res.ObjectID)
	assert.Equal(t, types.String("Moby Dick"), res.Values["library/title"])
	assert.Equal(t, types.Integer(600), res.Values["library/pages"])
	assert.False(t, it.Next())
	require.NoError(t, it.Err())
}

func TestSelectNumericCrossKind(t *testing.T) {
	engine, store, _ := newTestEngine(t)
	set(t, store, alice, "o1", "pages", types.Integer(999))
	set(t, store, alice, "o2", "pages", types.Integer(1000))
	set(t, store, alice, "o1", "rating", types.Float(1000.0))

	assert.Equal(t, []string{"o2"}, selectIDs(t, engine, alice, `library/pages = 1000`))
	assert.Equal(t, []string{"o2"}, selectIDs(t, engine, alice, `library/pages = 1000.0`))
	assert.Equal(t, []string{"o1"}, selectIDs(t, engine, alice, `library/pages < 1000.5`))
	assert.Equal(t, []string{"o1"}, selectIDs(t, engine, alice, `library/rating = 1000`))
}

func TestSelectMissingSubtractsFromDomain(t *testing.T) {
	engine, store, _ := newTestEngine(t)
	set(t, store, alice, "o1", "title", types.String("Moby Dick"))
	set(t, store, alice, "o1", "summary", types.String("whales"))
	set(t, store, alice, "o2", "title", types.String("Dolphins"))

	ids := selectIDs(t, engine, alice, `has library/title and missing library/summary`)
	assert.Equal(t, []string{"o2"}, ids)

	// order of conjuncts does not matter
	ids = selectIDs(t, engine, alice, `missing library/summary and has library/title`)
	assert.Equal(t, []string{"o2"}, ids)
}

func TestSelectPrivateTagFiltersSilently(t *testing.T) {
	engine, store, _ := newTestEngine(t)
	set(t, store, alice, "o1", "title", types.String("Moby Dick"))
	set(t, store, mary, "o1", "notes", types.String("contraband"))

	// the predicate on the private tag matches nothing for alice
	ids := selectIDs(t, engine, alice, `library/notes matches "contraband"`)
	assert.Empty(t, ids)

	// and its value never appears in her results
	node, err := engine.Parse(`has library/title and has library/notes`)
	require.NoError(t, err)
	it, err := engine.Select(context.Background(), node, alice)
	require.NoError(t, err)
	assert.False(t, it.Next())
	require.NoError(t, it.Err())

	// mary sees it
	ids = selectIDs(t, engine, mary, `library/notes matches "contraband"`)
	assert.Equal(t, []string{"o1"}, ids)
}

func TestSelectInvisibleTagActsUndeclared(t *testing.T) {
	engine, store, _ := newTestEngine(t)
	set(t, store, alice, "o1", "title", types.String("Moby Dick"))
	set(t, store, mary, "o1", "notes", types.String("x"))

	// an unreadable tag and an undeclared one are indistinguishable:
	// both evaluate as empty, and both are "missing" on every object
	ids := selectIDs(t, engine, alice, `has library/title and missing library/notes`)
	assert.Equal(t, []string{"o1"}, ids)
	ids = selectIDs(t, engine, alice, `has library/title and missing library/undeclared`)
	assert.Equal(t, []string{"o1"}, ids)
	assert.Empty(t, selectIDs(t, engine, alice, `has library/undeclared`))
}

func TestSelectTypeMismatchSurfaces(t *testing.T) {
	engine, store, _ := newTestEngine(t)
	set(t, store, alice, "o1", "title", types.String("Moby Dick"))

	node, err := engine.Parse(`library/title < "a"`)
	require.NoError(t, err)
	_, err = engine.Select(context.Background(), node, alice)
	require.Error(t, err)
	assert.True(t, errors.IsTypeMismatch(err))

	// checked against the declared type even with no values present
	node, err = engine.Parse(`library/pages matches "x"`)
	require.NoError(t, err)
	_, err = engine.Select(context.Background(), node, alice)
	require.Error(t, err)
	assert.True(t, errors.IsTypeMismatch(err))
}

func TestSelectCancellation(t *testing.T) {
	engine, store, _ := newTestEngine(t)
	set(t, store, alice, "o1", "title", types.String("a"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	node, err := engine.Parse(`has library/title`)
	require.NoError(t, err)
	_, err = engine.Select(ctx, node, alice)
	require.ErrorIs(t, err, context.Canceled)
}

func TestUpdateMatched(t *testing.T) {
	engine, store, _ := newTestEngine(t)
	ctx := context.Background()
	set(t, store, alice, "o1", "summary", types.String("whales"))
	set(t, store, alice, "o2", "summary", types.String("sharks"))

	node, err := engine.Parse(`library/summary matches "whales"`)
	require.NoError(t, err)
	outcomes, err := engine.Update(ctx, node, alice, map[string]types.Value{
		"library/title": types.String("Moby Dick"),
	})
	require.NoError(t, err)
	require.Len(t, outcomes, 1)
	assert.Equal(t, "o1", outcomes[0].ObjectID)
	assert.False(t, outcomes[0].Failed())

	tv, err := store.Get(ctx, alice, "o1", pathOf("title"))
	require.NoError(t, err)
	assert.Equal(t, types.String("Moby Dick"), tv.Value)
	_, err = store.Get(ctx, alice, "o2", pathOf("title"))
	assert.True(t, errors.Is(err, errors.ErrValueAbsent))
}

func TestUpdateDeniedTagFailsWholeBatch(t *testing.T) {
	engine, store, _ := newTestEngine(t)
	ctx := context.Background()
	set(t, store, alice, "o1", "summary", types.String("whales"))

	node, err := engine.Parse(`has library/summary`)
	require.NoError(t, err)
	_, err = engine.Update(ctx, node, alice, map[string]types.Value{
		"library/title": types.String("ok"),
		"library/notes": types.String("denied"),
	})
	require.Error(t, err)
	assert.True(t, errors.IsPermissionDenied(err))

	// nothing was written
	_, err = store.Get(ctx, alice, "o1", pathOf("title"))
	assert.True(t, errors.Is(err, errors.ErrValueAbsent))
}

func TestUpdateTypeMismatchReportedPerObject(t *testing.T) {
	engine, store, _ := newTestEngine(t)
	ctx := context.Background()
	set(t, store, alice, "o1", "summary", types.String("whales"))
	set(t, store, alice, "o2", "summary", types.String("whales too"))

	node, err := engine.Parse(`library/summary matches "whales"`)
	require.NoError(t, err)
	outcomes, err := engine.Update(ctx, node, alice, map[string]types.Value{
		"library/pages": types.String("not a number"),
	})
	require.NoError(t, err)
	require.Len(t, outcomes, 2)
	for _, out := range outcomes {
		assert.True(t, out.Failed())
		assert.True(t, errors.IsTypeMismatch(out.Err))
	}
}

func TestDeleteMatched(t *testing.T) {
	engine, store, _ := newTestEngine(t)
	ctx := context.Background()
	set(t, store, alice, "o1", "summary", types.String("whales"))
	set(t, store, alice, "o1", "title", types.String("Moby Dick"))
	set(t, store, alice, "o2", "summary", types.String("sharks"))
	set(t, store, alice, "o2", "title", types.String("Jaws"))

	node, err := engine.Parse(`library/summary matches "whales"`)
	require.NoError(t, err)
	outcomes, err := engine.Delete(ctx, node, alice, []string{"library/title"})
	require.NoError(t, err)
	require.Len(t, outcomes, 1)
	assert.False(t, outcomes[0].Failed())

	_, err = store.Get(ctx, alice, "o1", pathOf("title"))
	assert.True(t, errors.Is(err, errors.ErrValueAbsent))
	tv, err := store.Get(ctx, alice, "o2", pathOf("title"))
	require.NoError(t, err)
	assert.Equal(t, types.String("Jaws"), tv.Value)
}

func TestDeleteDeniedTagFailsWholeBatch(t *testing.T) {
	engine, store, _ := newTestEngine(t)
	set(t, store, alice, "o1", "summary", types.String("whales"))

	node, err := engine.Parse(`has library/summary`)
	require.NoError(t, err)
	_, err = engine.Delete(context.Background(), node, alice, []string{"library/notes"})
	require.Error(t, err)
	assert.True(t, errors.IsPermissionDenied(err))
}

func TestUpdateUnknownTagIsNotFound(t *testing.T) {
	engine, store, _ := newTestEngine(t)
	set(t, store, alice, "o1", "summary", types.String("whales"))

	node, err := engine.Parse(`has library/summary`)
	require.NoError(t, err)
	_, err = engine.Update(context.Background(), node, alice, map[string]types.Value{
		"library/undeclared": types.String("x"),
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrUnknownTag))
}

func TestEngineDirectSurface(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	ctx := context.Background()

	_, err := engine.Set(ctx, alice, "o1", pathOf("title"), types.String("Moby Dick"))
	require.NoError(t, err)

	tv, err := engine.Get(ctx, alice, "o1", pathOf("title"))
	require.NoError(t, err)
	assert.Equal(t, types.String("Moby Dick"), tv.Value)

	paths, err := engine.ListTags(ctx, alice, "o1", "")
	require.NoError(t, err)
	assert.Equal(t, []tags.Path{pathOf("title")}, paths)

	_, err = engine.Remove(ctx, alice, "o1", pathOf("title"))
	require.NoError(t, err)

	it, err := engine.History(ctx, alice, "o1", pathOf("title"))
	require.NoError(t, err)
	defer it.Close()
	count := 0
	for it.Next() {
		count++
	}
	require.NoError(t, it.Err())
	assert.Equal(t, 2, count)
}
