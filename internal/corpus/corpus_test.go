package corpus

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/cxxcorpus/pkg/metadata"
)

func TestNew_HasGlobalNamespace(t *testing.T) {
	c := New()

	assert.Equal(t, 1, c.Len())
	g := c.Global()
	assert.Equal(t, metadata.GlobalNamespaceID, g.ID)
	assert.True(t, g.Children.Empty())

	ns, err := metadata.Get[*metadata.NamespaceInfo](c, metadata.GlobalNamespaceID)
	require.NoError(t, err)
	assert.Same(t, g, ns)
}

func TestMerge_InsertAndFind(t *testing.T) {
	c := New()
	rec := metadata.NewRecordInfo(metadata.NewSymbolID("c:@S@R"), "R")

	stored, err := c.Merge(rec)
	require.NoError(t, err)
	assert.NotSame(t, rec, stored, "the caller's entity is not retained")
	assert.Equal(t, 2, c.Len())

	got, err := metadata.Get[*metadata.RecordInfo](c, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "R", got.Name)

	_, err = metadata.Get[*metadata.FunctionInfo](c, rec.ID)
	assert.ErrorIs(t, err, metadata.ErrNotFound)

	_, err = c.Find(metadata.NewSymbolID("c:@S@missing"), metadata.KindRecord)
	assert.ErrorIs(t, err, metadata.ErrNotFound)
}

func TestMerge_RejectsZeroID(t *testing.T) {
	c := New()
	_, err := c.Merge(metadata.NewRecordInfo(metadata.ZeroID, "R"))
	assert.ErrorIs(t, err, metadata.ErrZeroID)
	assert.Equal(t, 1, c.Len())
}

func TestMerge_RejectsMalformedFlags(t *testing.T) {
	c := New()
	v := metadata.NewVarInfo(metadata.NewSymbolID("c:@v"), "v")
	v.Specs.SetRaw(7)

	_, err := c.Merge(v)
	assert.ErrorIs(t, err, metadata.ErrMalformedFlags)
}

func TestMerge_KindMismatch(t *testing.T) {
	c := New()
	id := metadata.NewSymbolID("c:@S@X")
	_, err := c.Merge(metadata.NewRecordInfo(id, "X"))
	require.NoError(t, err)

	_, err = c.Merge(metadata.NewFunctionInfo(id, "X"))
	assert.ErrorIs(t, err, metadata.ErrKindMismatch)

	got, err := metadata.Get[*metadata.RecordInfo](c, id)
	require.NoError(t, err)
	assert.Equal(t, "X", got.Name)
}

func TestMerge_FillsDefaultsOnly(t *testing.T) {
	c := New()
	id := metadata.NewSymbolID("c:@S@Widget")

	decl := metadata.NewRecordInfo(id, "Widget")
	decl.Loc = []metadata.Location{{File: "fwd.h", Line: 1}}
	_, err := c.Merge(decl)
	require.NoError(t, err)

	def := metadata.NewRecordInfo(id, "Widget")
	def.TagType = metadata.TagClass
	def.DocComment = "A widget."
	def.DefLoc = &metadata.Location{File: "widget.h", Line: 10}
	def.Specs.SetIsFinal(true)
	def.Bases = []metadata.BaseInfo{metadata.NewBaseInfo(metadata.NewSymbolID("c:@S@Base"), "Base")}
	_, err = c.Merge(def)
	require.NoError(t, err)

	later := metadata.NewRecordInfo(id, "Widget")
	later.DocComment = "Another comment."
	later.DefLoc = &metadata.Location{File: "other.h", Line: 2}
	later.Bases = []metadata.BaseInfo{metadata.NewBaseInfo(metadata.ZeroID, "Other")}
	later.Loc = []metadata.Location{{File: "fwd.h", Line: 1}}
	_, err = c.Merge(later)
	require.NoError(t, err)

	got, err := metadata.Get[*metadata.RecordInfo](c, id)
	require.NoError(t, err)
	assert.Equal(t, metadata.TagClass, got.TagType)
	assert.Equal(t, "A widget.", got.DocComment)
	assert.Equal(t, "widget.h", got.DefLoc.File)
	assert.True(t, got.Specs.IsFinal())
	require.Len(t, got.Bases, 1)
	assert.Equal(t, "Base", got.Bases[0].Name)
	assert.Equal(t, []metadata.Location{{File: "fwd.h", Line: 1}}, got.Loc)
}

func TestMerge_UnionsMembersInFirstObservedOrder(t *testing.T) {
	c := New()
	id := metadata.NewSymbolID("c:@S@R")
	ref := func(name string) metadata.ChildRef {
		return metadata.ChildRef{Kind: metadata.KindFunction, ID: metadata.NewSymbolID("c:@S@R@F@" + name), Name: name}
	}

	a := metadata.NewRecordInfo(id, "R")
	_, _ = a.Members.Add(ref("b"))
	_, _ = a.Members.Add(ref("a"))
	b := metadata.NewRecordInfo(id, "R")
	_, _ = b.Members.Add(ref("a"))
	_, _ = b.Members.Add(ref("c"))

	_, err := c.Merge(a)
	require.NoError(t, err)
	_, err = c.Merge(b)
	require.NoError(t, err)

	got, err := metadata.Get[*metadata.RecordInfo](c, id)
	require.NoError(t, err)
	assert.Equal(t, []metadata.MemberRef{ref("b").Ref(), ref("a").Ref(), ref("c").Ref()}, got.Members.Functions)
}

func TestMerge_FunctionFlagsAndParams(t *testing.T) {
	c := New()
	id := metadata.NewSymbolID("c:@F@f#I#")

	decl := metadata.NewFunctionInfo(id, "f")
	decl.Params = []metadata.Param{{Type: metadata.TypeInfo{Name: "int"}}}
	decl.Specs.SetIsNoexcept(true)
	_, err := c.Merge(decl)
	require.NoError(t, err)

	def := metadata.NewFunctionInfo(id, "f")
	def.Params = []metadata.Param{{Type: metadata.TypeInfo{Name: "int"}, Name: "n"}}
	def.Specs.SetStorageClass(metadata.StorageStatic)
	_, err = c.Merge(def)
	require.NoError(t, err)

	got, err := metadata.Get[*metadata.FunctionInfo](c, id)
	require.NoError(t, err)
	assert.True(t, got.Specs.IsNoexcept())
	assert.Equal(t, metadata.StorageStatic, got.Specs.StorageClass())
	assert.Equal(t, "n", got.Params[0].Name)
}

func TestMerge_SnapshotsAreImmutable(t *testing.T) {
	c := New()
	id := metadata.NewSymbolID("c:@N@ns")

	first, err := c.Merge(metadata.NewNamespaceInfo(id, "ns"))
	require.NoError(t, err)

	more := metadata.NewNamespaceInfo(id, "ns")
	_, _ = more.Children.Add(metadata.ChildRef{Kind: metadata.KindFunction, ID: metadata.NewSymbolID("c:@N@ns@F@f#"), Name: "f"})
	second, err := c.Merge(more)
	require.NoError(t, err)

	assert.True(t, first.(*metadata.NamespaceInfo).Children.Empty())
	assert.Len(t, second.(*metadata.NamespaceInfo).Children.Functions, 1)
}

func TestGeneration_Monotonic(t *testing.T) {
	c := New()
	g0 := c.Generation()

	_, err := c.Merge(metadata.NewVarInfo(metadata.NewSymbolID("c:@x"), "x"))
	require.NoError(t, err)
	g1 := c.Generation()
	assert.Greater(t, g1, g0)

	_, err = c.Merge(metadata.NewFunctionInfo(metadata.NewSymbolID("c:@x"), "x"))
	require.Error(t, err)
	assert.Equal(t, g1, c.Generation(), "failed merges leave the generation alone")

	_, err = c.Merge(metadata.NewVarInfo(metadata.NewSymbolID("c:@x"), "x"))
	require.NoError(t, err)
	assert.Equal(t, g1, c.Generation(), "merges that add nothing leave the generation alone")

	_, err = c.Merge(metadata.NewVarInfo(metadata.NewSymbolID("c:@y"), "y"))
	require.NoError(t, err)
	assert.Greater(t, c.Generation(), g1)
}

// outOfLine is a definition of ns::f(int) read without the declaration of ns,
// so its primary reading puts it in a record named ns.
func outOfLine() metadata.Fact {
	nsID := metadata.NewSymbolID("c:@N@ns")
	recID := metadata.NewSymbolID("c:@S@ns")
	return metadata.Fact{
		ID:           metadata.NewSymbolID("c:@S@ns@F@f#int"),
		Kind:         metadata.KindFunction,
		Name:         "f",
		Parent:       recID,
		ParentKind:   metadata.KindRecord,
		ParentName:   "ns",
		Namespace:    []metadata.SymbolID{recID, metadata.GlobalNamespaceID},
		IsMethod:     true,
		IsDefinition: true,
		Location:     &metadata.Location{File: "a.cpp", Line: 1},
		Alt: &metadata.FactScope{
			ID:         metadata.NewSymbolID("c:@N@ns@F@f#int"),
			Parent:     nsID,
			ParentKind: metadata.KindNamespace,
			ParentName: "ns",
			Namespace:  []metadata.SymbolID{nsID, metadata.GlobalNamespaceID},
		},
	}
}

func TestSettle(t *testing.T) {
	nsID := metadata.NewSymbolID("c:@N@ns")
	recID := metadata.NewSymbolID("c:@S@ns")

	t.Run("namespace declared", func(t *testing.T) {
		c := New()
		_, err := c.Merge(metadata.NewNamespaceInfo(nsID, "ns"))
		require.NoError(t, err)
		f := outOfLine()
		c.Settle(&f)
		assert.Nil(t, f.Alt)
		assert.Equal(t, metadata.NewSymbolID("c:@N@ns@F@f#int"), f.ID)
		assert.Equal(t, nsID, f.Parent)
		assert.False(t, f.IsMethod)
	})

	t.Run("record declared", func(t *testing.T) {
		c := New()
		_, err := c.Merge(metadata.NewNamespaceInfo(nsID, "ns"))
		require.NoError(t, err)
		_, err = c.Merge(metadata.NewRecordInfo(recID, "ns"))
		require.NoError(t, err)
		f := outOfLine()
		c.Settle(&f)
		assert.Nil(t, f.Alt)
		assert.Equal(t, recID, f.Parent)
		assert.True(t, f.IsMethod)
	})

	t.Run("nothing declared", func(t *testing.T) {
		c := New()
		f := outOfLine()
		require.NoError(t, c.MergeFact(&f))
		rec, err := metadata.Get[*metadata.RecordInfo](c, recID)
		require.NoError(t, err)
		assert.Equal(t, "ns", rec.Name, "placeholder parents carry the scope name")
	})
}

func TestBatch_HoldsAmbiguousFactsUntilFlush(t *testing.T) {
	nsID := metadata.NewSymbolID("c:@N@ns")
	c := New()
	b := c.NewBatch()

	def := outOfLine()
	held, err := b.Merge(&def)
	require.NoError(t, err)
	assert.True(t, held)

	decl := metadata.Fact{
		ID:         metadata.NewSymbolID("c:@N@ns@F@f#int"),
		Kind:       metadata.KindFunction,
		Name:       "f",
		Parent:     nsID,
		ParentKind: metadata.KindNamespace,
		ParentName: "ns",
		Namespace:  []metadata.SymbolID{nsID, metadata.GlobalNamespaceID},
		Location:   &metadata.Location{File: "a.h", Line: 1},
	}
	ns := metadata.Fact{ID: nsID, Kind: metadata.KindNamespace, Name: "ns", Parent: metadata.GlobalNamespaceID, ParentKind: metadata.KindNamespace}
	for _, f := range []*metadata.Fact{&ns, &decl} {
		held, err := b.Merge(f)
		require.NoError(t, err)
		assert.False(t, held)
	}

	merged, errs := b.Flush()
	assert.Empty(t, errs)
	assert.Equal(t, 1, merged)

	fn, err := metadata.Get[*metadata.FunctionInfo](c, decl.ID)
	require.NoError(t, err)
	require.NotNil(t, fn.DefLoc)
	assert.Equal(t, "a.cpp", fn.DefLoc.File)
	assert.False(t, fn.IsMethod)

	_, ok := c.Lookup(metadata.NewSymbolID("c:@S@ns"))
	assert.False(t, ok)
	assert.Empty(t, c.All(metadata.KindRecord))

	merged, errs = b.Flush()
	assert.Zero(t, merged)
	assert.Empty(t, errs)
}

func TestMergeFact_BuildsMembership(t *testing.T) {
	c := New()
	nsID := metadata.NewSymbolID("c:@N@geo")
	facts := []metadata.Fact{
		{ID: nsID, Kind: metadata.KindNamespace, Name: "geo", Parent: metadata.GlobalNamespaceID, ParentKind: metadata.KindNamespace},
		{ID: metadata.NewSymbolID("c:@N@geo@F@area#"), Kind: metadata.KindFunction, Name: "area", Parent: nsID, ParentKind: metadata.KindNamespace},
		{ID: metadata.NewSymbolID("c:@N@geo@F@Area#d#"), Kind: metadata.KindFunction, Name: "Area", Parent: nsID, ParentKind: metadata.KindNamespace},
	}
	for i := range facts {
		require.NoError(t, c.MergeFact(&facts[i]))
	}

	assert.Len(t, c.Global().Children.Namespaces, 1)
	ns, err := metadata.Get[*metadata.NamespaceInfo](c, nsID)
	require.NoError(t, err)
	assert.Equal(t, "geo", ns.Name)
	assert.Len(t, ns.Children.Functions, 2)

	ov, err := metadata.MakeNamespaceOverloads(ns, c)
	require.NoError(t, err)
	require.Len(t, ov.List, 1)
	assert.Equal(t, "area", ov.List[0].Name)
}

func TestMergeFact_ChildBeforeParent(t *testing.T) {
	c := New()
	recID := metadata.NewSymbolID("c:@S@R")
	field := metadata.Fact{ID: metadata.NewSymbolID("c:@S@R@FI@x"), Kind: metadata.KindField, Name: "x", Parent: recID, ParentKind: metadata.KindRecord}
	rec := metadata.Fact{ID: recID, Kind: metadata.KindRecord, Name: "R", TagType: metadata.TagClass}

	require.NoError(t, c.MergeFact(&field))
	require.NoError(t, c.MergeFact(&rec))

	got, err := metadata.Get[*metadata.RecordInfo](c, recID)
	require.NoError(t, err)
	assert.Equal(t, "R", got.Name)
	assert.Equal(t, metadata.TagClass, got.TagType)
	assert.Len(t, got.Members.Fields, 1)
}

func TestIDsAndAll_Sorted(t *testing.T) {
	c := New()
	for i := range 20 {
		_, err := c.Merge(metadata.NewVarInfo(metadata.NewSymbolID(fmt.Sprintf("c:@v%d", i)), fmt.Sprintf("v%d", i)))
		require.NoError(t, err)
	}

	ids := c.IDs()
	assert.Len(t, ids, 21)
	for i := 1; i < len(ids); i++ {
		assert.Negative(t, ids[i-1].Compare(ids[i]))
	}

	vars := AllOf[*metadata.VarInfo](c)
	assert.Len(t, vars, 20)
	assert.Len(t, c.All(metadata.KindNamespace), 1)
	assert.Len(t, c.All(metadata.KindDefault), 21)
	assert.Len(t, c.FindByName("v3", metadata.KindVariable), 1)
}

func TestQualifiedName(t *testing.T) {
	c := New()
	outer := metadata.NewSymbolID("c:@N@a")
	inner := metadata.NewSymbolID("c:@N@a@N@b")
	_, _ = c.Merge(metadata.NewNamespaceInfo(outer, "a"))
	_, _ = c.Merge(metadata.NewNamespaceInfo(inner, "b"))

	fn := metadata.NewFunctionInfo(metadata.NewSymbolID("c:@N@a@N@b@F@f#"), "f")
	fn.Namespace = []metadata.SymbolID{inner, outer, metadata.GlobalNamespaceID}

	assert.Equal(t, "a::b::f", c.QualifiedName(fn))
}

// Concurrent observations of one identity must not lose members.
func TestMerge_ConcurrentSameIdentity(t *testing.T) {
	c := New()
	id := metadata.NewSymbolID("c:@N@shared")

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ns := metadata.NewNamespaceInfo(id, "shared")
			_, _ = ns.Children.Add(metadata.ChildRef{
				Kind: metadata.KindFunction,
				ID:   metadata.NewSymbolID(fmt.Sprintf("c:@N@shared@F@f%d#", i)),
				Name: fmt.Sprintf("f%d", i),
			})
			_, err := c.Merge(ns)
			assert.NoError(t, err)
			_, _ = c.Find(id, metadata.KindNamespace)
		}(i)
	}
	wg.Wait()

	ns, err := metadata.Get[*metadata.NamespaceInfo](c, id)
	require.NoError(t, err)
	assert.Len(t, ns.Children.Functions, 50)
}

func TestFindQualified(t *testing.T) {
	c := New()
	a := metadata.NewSymbolID("c:@N@a")
	b := metadata.NewSymbolID("c:@N@b")
	_, _ = c.Merge(metadata.NewNamespaceInfo(a, "a"))
	_, _ = c.Merge(metadata.NewNamespaceInfo(b, "b"))

	fa := metadata.NewFunctionInfo(metadata.NewSymbolID("c:@N@a@F@f#"), "f")
	fa.Namespace = []metadata.SymbolID{a, metadata.GlobalNamespaceID}
	fb := metadata.NewFunctionInfo(metadata.NewSymbolID("c:@N@b@F@f#"), "f")
	fb.Namespace = []metadata.SymbolID{b, metadata.GlobalNamespaceID}
	_, _ = c.Merge(fa)
	_, _ = c.Merge(fb)

	assert.Len(t, c.FindQualified("f", metadata.KindFunction), 2)
	assert.Len(t, c.FindQualified("f", metadata.KindRecord), 0)

	got := c.FindQualified("::b::f", metadata.KindDefault)
	require.Len(t, got, 1)
	assert.Equal(t, fb.ID, got[0].Base().ID)
	assert.Empty(t, c.FindQualified("c::f", metadata.KindDefault))
}
