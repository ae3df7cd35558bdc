package metadata

import (
	"fmt"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mapLookup is a Lookup over a fixed set of entities.
type mapLookup map[SymbolID]Entity

func (m mapLookup) Find(id SymbolID, kind InfoKind) (Entity, error) {
	e, ok := m[id]
	if !ok || e.TypeID() != kind {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return e, nil
}

func (m mapLookup) add(e Entity) {
	m[e.Base().ID] = e
}

func newFn(usr, name string) *FunctionInfo {
	return NewFunctionInfo(NewSymbolID(usr), name)
}

func nsWith(fns ...*FunctionInfo) *NamespaceInfo {
	ns := NewNamespaceInfo(NewSymbolID("c:@N@ns"), "ns")
	for _, fn := range fns {
		_, _ = ns.Children.Add(ChildRef{Kind: KindFunction, ID: fn.ID, Name: fn.Name})
	}
	return ns
}

func groupNames(no *NamespaceOverloads) []string {
	var out []string
	for _, o := range no.List {
		out = append(out, o.Name)
	}
	return out
}

func TestNewNamespaceOverloads_Empty(t *testing.T) {
	no := NewNamespaceOverloads(nsWith(), nil)
	assert.Empty(t, no.Data)
	assert.Empty(t, no.List)
	assert.Equal(t, 0, no.Len())
}

func TestNewNamespaceOverloads_Single(t *testing.T) {
	f := newFn("c:@F@f", "f")
	ns := nsWith(f)

	no := NewNamespaceOverloads(ns, []*FunctionInfo{f})

	require.Len(t, no.List, 1)
	assert.Equal(t, "f", no.List[0].Name)
	assert.Same(t, ns, no.List[0].Parent)
	assert.Equal(t, []*FunctionInfo{f}, no.List[0].Functions)
}

func TestNewNamespaceOverloads_CaseInsensitiveGrouping(t *testing.T) {
	foo := newFn("c:@F@foo", "foo")
	Foo := newFn("c:@F@Foo", "Foo")
	bar := newFn("c:@F@bar", "bar")

	no := NewNamespaceOverloads(nsWith(foo, Foo, bar), []*FunctionInfo{foo, Foo, bar})

	assert.Equal(t, []string{"bar", "foo"}, groupNames(no))
	assert.Equal(t, []*FunctionInfo{bar}, no.List[0].Functions)
	assert.Equal(t, []*FunctionInfo{foo, Foo}, no.List[1].Functions)
}

func TestNewNamespaceOverloads_LabelIsFirstSortedName(t *testing.T) {
	upper := newFn("c:@F@Foo", "Foo")
	lower := newFn("c:@F@foo", "foo")

	no := NewNamespaceOverloads(nsWith(upper, lower), []*FunctionInfo{upper, lower})

	require.Len(t, no.List, 1)
	assert.Equal(t, "foo", no.List[0].Name)
}

func TestNewNamespaceOverloads_StableWithinName(t *testing.T) {
	f1 := newFn("c:@F@f#I#", "f")
	f2 := newFn("c:@F@f#d#", "f")

	no := NewNamespaceOverloads(nsWith(f2, f1), []*FunctionInfo{f2, f1})

	require.Len(t, no.List, 1)
	assert.Equal(t, []*FunctionInfo{f2, f1}, no.List[0].Functions)
}

func TestNewNamespaceOverloads_AllSameName(t *testing.T) {
	var fns []*FunctionInfo
	for i := range 5 {
		fns = append(fns, newFn(fmt.Sprintf("c:@F@g#%d", i), "g"))
	}

	no := NewNamespaceOverloads(nsWith(fns...), fns)

	require.Len(t, no.List, 1)
	assert.Equal(t, fns, no.List[0].Functions)
}

// Groups must partition the sorted data: contiguous, in order, and covering
// every function exactly once.
func TestNewNamespaceOverloads_GroupsPartitionData(t *testing.T) {
	names := []string{"z", "a", "B", "b", "operator<", "operator+", "A", "m", "b"}
	var fns []*FunctionInfo
	for i, n := range names {
		fns = append(fns, newFn(fmt.Sprintf("c:@F@%s#%d", n, i), n))
	}

	no := NewNamespaceOverloads(nsWith(fns...), fns)

	assert.Len(t, no.Data, len(fns))
	total := 0
	for i, group := range no.List {
		require.NotEmpty(t, group.Functions)
		assert.Same(t, no.Data[total], group.Functions[0])
		for _, fn := range group.Functions {
			assert.True(t, EqualFoldASCII(group.Name, fn.Name))
		}
		if i > 0 {
			assert.Negative(t, CompareSymbolNames(no.List[i-1].Name, group.Name))
			assert.False(t, EqualFoldASCII(no.List[i-1].Name, group.Name))
		}
		total += len(group.Functions)
	}
	assert.Equal(t, len(fns), total)
	assert.Equal(t, []string{"a", "b", "m", "operator+", "operator<", "z"}, groupNames(no))
}

// permute calls visit with every ordering of fns.
func permute(fns []*FunctionInfo, visit func([]*FunctionInfo)) {
	var rec func(k int)
	rec = func(k int) {
		if k == len(fns) {
			visit(slices.Clone(fns))
			return
		}
		for i := k; i < len(fns); i++ {
			fns[k], fns[i] = fns[i], fns[k]
			rec(k + 1)
			fns[k], fns[i] = fns[i], fns[k]
		}
	}
	rec(0)
}

func TestNewNamespaceOverloads_IndependentOfInputOrder(t *testing.T) {
	fooInt := newFn("c:@F@foo#I#", "foo")
	fooDouble := newFn("c:@F@foo#d#", "foo")
	fns := []*FunctionInfo{
		fooInt,
		newFn("c:@F@Foo#", "Foo"),
		newFn("c:@F@FOO#", "FOO"),
		newFn("c:@F@bar#", "bar"),
		newFn("c:@F@operator<#", "operator<"),
		fooDouble,
	}
	ns := nsWith(fns...)

	type group struct {
		Label string
		Names []string
		IDs   []SymbolID
	}
	summarize := func(no *NamespaceOverloads) []group {
		var out []group
		for _, o := range no.List {
			g := group{Label: o.Name}
			for _, fn := range o.Functions {
				g.Names = append(g.Names, fn.Name)
				g.IDs = append(g.IDs, fn.ID)
			}
			slices.SortFunc(g.IDs, SymbolID.Compare)
			out = append(out, g)
		}
		return out
	}

	want := summarize(NewNamespaceOverloads(ns, fns))
	require.Len(t, want, 3)
	assert.Equal(t, "bar", want[0].Label)
	assert.Equal(t, "foo", want[1].Label)
	assert.Equal(t, []string{"foo", "foo", "Foo", "FOO"}, want[1].Names)
	assert.Equal(t, "operator<", want[2].Label)

	runs := 0
	permute(fns, func(in []*FunctionInfo) {
		runs++
		no := NewNamespaceOverloads(ns, in)
		require.Equal(t, want, summarize(no), "input order %v", fnNames(in))

		// Equal names keep their input order
		var foos []*FunctionInfo
		for _, fn := range in {
			if fn == fooInt || fn == fooDouble {
				foos = append(foos, fn)
			}
		}
		assert.Equal(t, foos, no.List[1].Functions[:2])
	})
	assert.Equal(t, 720, runs)
}

func fnNames(fns []*FunctionInfo) []string {
	out := make([]string, len(fns))
	for i, fn := range fns {
		out[i] = fn.Name
	}
	return out
}

func TestNewNamespaceOverloads_DoesNotReorderInput(t *testing.T) {
	b := newFn("c:@F@b", "b")
	a := newFn("c:@F@a", "a")
	in := []*FunctionInfo{b, a}

	NewNamespaceOverloads(nsWith(b, a), in)

	assert.Equal(t, []*FunctionInfo{b, a}, in)
}

func TestNewNamespaceOverloads_GroupsCannotGrowIntoNeighbours(t *testing.T) {
	a := newFn("c:@F@a", "a")
	b := newFn("c:@F@b", "b")
	no := NewNamespaceOverloads(nsWith(a, b), []*FunctionInfo{a, b})

	first := no.List[0].Functions
	_ = append(first, newFn("c:@F@x", "x"))

	assert.Same(t, b, no.Data[1])
}

func TestMakeNamespaceOverloads(t *testing.T) {
	l := mapLookup{}
	foo := newFn("c:@F@foo", "foo")
	bar := newFn("c:@F@bar", "bar")
	l.add(foo)
	l.add(bar)
	ns := nsWith(foo, bar)

	no, err := MakeNamespaceOverloads(ns, l)

	require.NoError(t, err)
	assert.Equal(t, []string{"bar", "foo"}, groupNames(no))
}

func TestMakeNamespaceOverloads_FailsOnMissingFunction(t *testing.T) {
	l := mapLookup{}
	foo := newFn("c:@F@foo", "foo")
	missing := newFn("c:@F@gone", "gone")
	l.add(foo)

	no, err := MakeNamespaceOverloads(nsWith(foo, missing), l)

	assert.ErrorIs(t, err, ErrNotFound)
	assert.Nil(t, no)
}

func TestMakeNamespaceOverloads_FailsOnWrongKind(t *testing.T) {
	l := mapLookup{}
	id := NewSymbolID("c:@S@notfn")
	l.add(NewRecordInfo(id, "notfn"))
	ns := NewNamespaceInfo(NewSymbolID("c:@N@ns"), "ns")
	_, _ = ns.Children.Add(ChildRef{Kind: KindFunction, ID: id, Name: "notfn"})

	_, err := MakeNamespaceOverloads(ns, l)

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNamespaceOverloads_Find(t *testing.T) {
	fns := []*FunctionInfo{newFn("c:@F@a", "a"), newFn("c:@F@Run", "Run"), newFn("c:@F@run", "run"), newFn("c:@F@z", "z")}
	no := NewNamespaceOverloads(nsWith(fns...), fns)

	set, ok := no.Find("RUN")
	require.True(t, ok)
	assert.Equal(t, "run", set.Name)
	assert.Len(t, set.Functions, 2)

	_, ok = no.Find("missing")
	assert.False(t, ok)
}

func TestGet(t *testing.T) {
	l := mapLookup{}
	rec := NewRecordInfo(NewSymbolID("c:@S@R"), "R")
	l.add(rec)

	got, err := Get[*RecordInfo](l, rec.ID)
	require.NoError(t, err)
	assert.Same(t, rec, got)

	_, err = Get[*FunctionInfo](l, rec.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
