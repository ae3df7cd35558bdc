package overloads

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/cxxcorpus/internal/corpus"
	"github.com/dshills/cxxcorpus/pkg/metadata"
)

func addFunction(t *testing.T, c *corpus.Corpus, ns metadata.SymbolID, usr, name string) {
	t.Helper()
	f := metadata.Fact{
		ID:         metadata.NewSymbolID(usr),
		Kind:       metadata.KindFunction,
		Name:       name,
		Parent:     ns,
		ParentKind: metadata.KindNamespace,
	}
	require.NoError(t, c.MergeFact(&f))
}

func TestNamespace_BuildsAndCaches(t *testing.T) {
	c := corpus.New()
	addFunction(t, c, metadata.GlobalNamespaceID, "c:@F@foo#", "foo")
	addFunction(t, c, metadata.GlobalNamespaceID, "c:@F@Foo#I#", "Foo")
	addFunction(t, c, metadata.GlobalNamespaceID, "c:@F@bar#", "bar")

	x, err := New(c, 8)
	require.NoError(t, err)

	ov, err := x.Global()
	require.NoError(t, err)
	require.Len(t, ov.List, 2)
	assert.Equal(t, "bar", ov.List[0].Name)
	assert.Equal(t, "foo", ov.List[1].Name)
	assert.Len(t, ov.List[1].Functions, 2)

	again, err := x.Global()
	require.NoError(t, err)
	assert.Same(t, ov, again)
	assert.Equal(t, 1, x.Cached())
}

func TestNamespace_RebuildsAfterMerge(t *testing.T) {
	c := corpus.New()
	addFunction(t, c, metadata.GlobalNamespaceID, "c:@F@a#", "a")
	x, err := New(c, 8)
	require.NoError(t, err)

	first, err := x.Global()
	require.NoError(t, err)
	assert.Equal(t, 1, first.Len())

	addFunction(t, c, metadata.GlobalNamespaceID, "c:@F@b#", "b")

	second, err := x.Global()
	require.NoError(t, err)
	assert.Equal(t, 2, second.Len())
	assert.Equal(t, 1, first.Len(), "earlier views are not modified")
}

func TestNamespace_NotFound(t *testing.T) {
	x, err := New(corpus.New(), 0)
	require.NoError(t, err)

	_, err = x.Namespace(metadata.NewSymbolID("c:@N@missing"))
	assert.ErrorIs(t, err, metadata.ErrNotFound)
}

func TestNamespace_UnresolvedFunction(t *testing.T) {
	c := corpus.New()
	ns := metadata.NewNamespaceInfo(metadata.NewSymbolID("c:@N@n"), "n")
	_, _ = ns.Children.Add(metadata.ChildRef{Kind: metadata.KindFunction, ID: metadata.NewSymbolID("c:@N@n@F@ghost#"), Name: "ghost"})
	_, err := c.Merge(ns)
	require.NoError(t, err)

	x, err := New(c, 8)
	require.NoError(t, err)

	ov, err := x.Namespace(ns.ID)
	assert.ErrorIs(t, err, metadata.ErrNotFound)
	assert.Nil(t, ov)
	assert.Equal(t, 0, x.Cached())
}

func TestAll(t *testing.T) {
	c := corpus.New()
	nsID := metadata.NewSymbolID("c:@N@util")
	nsFact := metadata.Fact{ID: nsID, Kind: metadata.KindNamespace, Name: "util", Parent: metadata.GlobalNamespaceID, ParentKind: metadata.KindNamespace}
	require.NoError(t, c.MergeFact(&nsFact))
	addFunction(t, c, nsID, "c:@N@util@F@trim#", "trim")

	x, err := New(c, 8)
	require.NoError(t, err)

	all, err := x.All()
	require.NoError(t, err)
	assert.Len(t, all, 2)

	x.Purge()
	assert.Equal(t, 0, x.Cached())
}

func TestNamespace_Concurrent(t *testing.T) {
	c := corpus.New()
	for _, name := range []string{"a", "b", "c", "d"} {
		addFunction(t, c, metadata.GlobalNamespaceID, "c:@F@"+name+"#", name)
	}
	x, err := New(c, 8)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ov, err := x.Global()
			assert.NoError(t, err)
			assert.Equal(t, 4, ov.Len())
		}()
	}
	wg.Wait()
}

func TestFlightKey(t *testing.T) {
	id := metadata.NewSymbolID("c:@N@util")
	assert.Equal(t, flightKey(id, 3), flightKey(id, 3))
	assert.NotEqual(t, flightKey(id, 3), flightKey(id, 4))
	assert.NotEqual(t, flightKey(id, 3), flightKey(metadata.GlobalNamespaceID, 3))
}

func TestNamespace_IdleMergeKeepsView(t *testing.T) {
	c := corpus.New()
	addFunction(t, c, metadata.GlobalNamespaceID, "c:@F@a#", "a")
	x, err := New(c, 8)
	require.NoError(t, err)

	first, err := x.Global()
	require.NoError(t, err)

	// Observing the same declaration again changes nothing
	addFunction(t, c, metadata.GlobalNamespaceID, "c:@F@a#", "a")

	second, err := x.Global()
	require.NoError(t, err)
	assert.Same(t, first, second)
}
