package hierarchy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/cxxcorpus/internal/corpus"
	"github.com/dshills/cxxcorpus/pkg/metadata"
)

func id(name string) metadata.SymbolID { return metadata.NewSymbolID("c:@S@" + name) }

// record adds a class deriving from bases; a base written "?name" is unresolved
func record(t *testing.T, c *corpus.Corpus, name string, bases ...string) {
	t.Helper()
	r := metadata.NewRecordInfo(id(name), name)
	r.TagType = metadata.TagClass
	for _, b := range bases {
		if b[0] == '?' {
			r.Bases = append(r.Bases, metadata.NewBaseInfo(metadata.ZeroID, b[1:]))
			continue
		}
		base := metadata.NewBaseInfo(id(b), b)
		base.IsVirtual = true
		r.Bases = append(r.Bases, base)
	}
	_, err := c.Merge(r)
	require.NoError(t, err)
}

func names(records []*metadata.RecordInfo) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Name
	}
	return out
}

// Diamond: Stream <- Input, Output <- IOStream; plus an external base.
func diamond(t *testing.T) *corpus.Corpus {
	c := corpus.New()
	record(t, c, "Stream")
	record(t, c, "Output", "Stream")
	record(t, c, "Input", "Stream")
	record(t, c, "IOStream", "Input", "Output", "?std::ios_base")
	record(t, c, "file", "IOStream")
	record(t, c, "Unrelated")
	return c
}

func TestBuild(t *testing.T) {
	h, err := Build(diamond(t))
	require.NoError(t, err)
	assert.Equal(t, 6, h.Len())
}

func TestBases_DeclarationOrder(t *testing.T) {
	h, err := Build(diamond(t))
	require.NoError(t, err)

	bases, err := h.Bases(id("IOStream"))
	require.NoError(t, err)
	require.Len(t, bases, 3)
	assert.Equal(t, "Input", bases[0].Name)
	assert.Equal(t, "Output", bases[1].Name)
	assert.True(t, bases[2].ID.IsZero())
	assert.Equal(t, "std::ios_base", bases[2].Name)
}

func TestDerived_SortedByName(t *testing.T) {
	h, err := Build(diamond(t))
	require.NoError(t, err)

	derived, err := h.Derived(id("Stream"))
	require.NoError(t, err)
	assert.Equal(t, []string{"Input", "Output"}, names(derived))

	leaf, err := h.Derived(id("file"))
	require.NoError(t, err)
	assert.Empty(t, leaf)
}

func TestAncestors_BreadthFirstDeduplicated(t *testing.T) {
	h, err := Build(diamond(t))
	require.NoError(t, err)

	ancestors, err := h.Ancestors(id("file"))
	require.NoError(t, err)
	assert.Equal(t, []string{"IOStream", "Input", "Output", "Stream"}, names(ancestors))
}

func TestDescendants(t *testing.T) {
	h, err := Build(diamond(t))
	require.NoError(t, err)

	desc, err := h.Descendants(id("Stream"))
	require.NoError(t, err)
	assert.Equal(t, []string{"Input", "Output", "IOStream", "file"}, names(desc))
}

func TestTopologicalOrder(t *testing.T) {
	h, err := Build(diamond(t))
	require.NoError(t, err)

	order, err := h.TopologicalOrder()
	require.NoError(t, err)
	require.Len(t, order, 6)

	pos := make(map[string]int)
	for i, r := range order {
		pos[r.Name] = i
	}
	assert.Less(t, pos["Stream"], pos["Input"])
	assert.Less(t, pos["Stream"], pos["Output"])
	assert.Less(t, pos["Input"], pos["IOStream"])
	assert.Less(t, pos["Output"], pos["IOStream"])
	assert.Less(t, pos["IOStream"], pos["file"])
}

func TestBuild_RejectsCycle(t *testing.T) {
	c := corpus.New()
	record(t, c, "A", "B")
	record(t, c, "B", "A")

	_, err := Build(c)
	assert.ErrorIs(t, err, ErrCycle)
}

func TestBuild_RejectsSelfBase(t *testing.T) {
	c := corpus.New()
	record(t, c, "A", "A")

	_, err := Build(c)
	assert.ErrorIs(t, err, ErrCycle)
}

func TestNotFound(t *testing.T) {
	c := diamond(t)
	fn := metadata.NewFunctionInfo(metadata.NewSymbolID("c:@F@f#"), "f")
	_, err := c.Merge(fn)
	require.NoError(t, err)

	h, err := Build(c)
	require.NoError(t, err)

	for _, missing := range []metadata.SymbolID{id("Nope"), fn.ID} {
		_, err = h.Bases(missing)
		assert.ErrorIs(t, err, metadata.ErrNotFound)
		_, err = h.Derived(missing)
		assert.ErrorIs(t, err, metadata.ErrNotFound)
		_, err = h.Ancestors(missing)
		assert.ErrorIs(t, err, metadata.ErrNotFound)
	}
}

func TestGeneration(t *testing.T) {
	c := diamond(t)
	h, err := Build(c)
	require.NoError(t, err)
	assert.Equal(t, c.Generation(), h.Generation())
}
