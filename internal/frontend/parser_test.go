package frontend

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/cxxcorpus/internal/corpus"
	"github.com/dshills/cxxcorpus/pkg/metadata"
)

func parse(t *testing.T, path, src string) *metadata.ParseResult {
	t.Helper()
	p := New()
	defer p.Close()
	result, err := p.ParseSource(context.Background(), path, []byte(src))
	require.NoError(t, err)
	return result
}

func factsNamed(result *metadata.ParseResult, kind metadata.InfoKind, name string) []metadata.Fact {
	var out []metadata.Fact
	for _, f := range result.Facts {
		if f.Kind == kind && f.Name == name {
			out = append(out, f)
		}
	}
	return out
}

func oneFact(t *testing.T, result *metadata.ParseResult, kind metadata.InfoKind, name string) metadata.Fact {
	t.Helper()
	facts := factsNamed(result, kind, name)
	require.Len(t, facts, 1, "%s %s", kind, name)
	return facts[0]
}

const shapes = `namespace geo {

/// A shape.
class Shape {
public:
    virtual ~Shape();
    virtual double area() const = 0;
};

class Circle final : public Shape {
public:
    double area() const override;
private:
    double radius;
};

double scale(double x, int factor);
double scale(double x);

} // namespace geo
`

func TestParseSource_ClassesAndMethods(t *testing.T) {
	result := parse(t, "shapes.h", shapes)
	assert.Empty(t, result.Errors)

	geo := oneFact(t, result, metadata.KindNamespace, "geo")
	assert.Equal(t, metadata.NewSymbolID("c:@N@geo"), geo.ID)
	assert.Equal(t, metadata.GlobalNamespaceID, geo.Parent)

	shape := oneFact(t, result, metadata.KindRecord, "Shape")
	assert.Equal(t, "A shape.", shape.Doc)
	assert.Equal(t, metadata.TagClass, shape.TagType)
	assert.Equal(t, geo.ID, shape.Parent)
	assert.Equal(t, []metadata.SymbolID{geo.ID, metadata.GlobalNamespaceID}, shape.Namespace)

	circle := oneFact(t, result, metadata.KindRecord, "Circle")
	assert.Equal(t, metadata.NewSymbolID("c:@N@geo@S@Circle"), circle.ID)
	assert.True(t, circle.IsDefinition)
	var specs metadata.RecordFlags
	specs.SetRaw(circle.Specs)
	assert.True(t, specs.IsFinal())
	require.Len(t, circle.Bases, 1)
	assert.Equal(t, "Shape", circle.Bases[0].Name)
	assert.Equal(t, shape.ID, circle.Bases[0].ID)
	assert.Equal(t, metadata.AccessPublic, circle.Bases[0].Access)
	assert.False(t, circle.Bases[0].IsVirtual)

	radius := oneFact(t, result, metadata.KindField, "radius")
	assert.Equal(t, metadata.AccessPrivate, radius.Access)
	assert.Equal(t, circle.ID, radius.Parent)
	assert.Equal(t, "double", radius.Type.Name)
}

func TestParseSource_MethodSpecifiers(t *testing.T) {
	result := parse(t, "shapes.h", shapes)

	areas := factsNamed(result, metadata.KindFunction, "area")
	require.Len(t, areas, 2)
	shapeArea, circleArea := areas[0], areas[1]

	var fs metadata.FunctionFlags
	fs.SetRaw(shapeArea.Specs)
	assert.True(t, fs.IsVirtual())
	assert.True(t, fs.IsPure())
	assert.True(t, fs.IsConst())
	assert.True(t, shapeArea.IsMethod)
	assert.Equal(t, metadata.AccessPublic, shapeArea.Access)

	fs.SetRaw(circleArea.Specs)
	assert.True(t, fs.IsOverride())
	assert.True(t, fs.IsConst())
	assert.False(t, fs.IsVirtual())
	assert.Equal(t, metadata.NewSymbolID("c:@N@geo@S@Circle@F@area##c"), circleArea.ID)
	assert.Equal(t, "double", circleArea.Type.Name)

	dtor := oneFact(t, result, metadata.KindFunction, "~Shape")
	assert.True(t, dtor.IsMethod)
}

func TestParseSource_OverloadsHaveDistinctIdentities(t *testing.T) {
	result := parse(t, "shapes.h", shapes)

	scales := factsNamed(result, metadata.KindFunction, "scale")
	require.Len(t, scales, 2)
	assert.Equal(t, metadata.NewSymbolID("c:@N@geo@F@scale#double,int"), scales[0].ID)
	assert.Equal(t, metadata.NewSymbolID("c:@N@geo@F@scale#double"), scales[1].ID)
	assert.False(t, scales[0].IsMethod)
	assert.Equal(t, metadata.AccessNone, scales[0].Access)
	require.Len(t, scales[0].Params, 2)
	assert.Equal(t, "factor", scales[0].Params[1].Name)
	assert.Equal(t, "int", scales[0].Params[1].Type.Name)
}

func TestParseSource_SameDeclarationInTwoFiles(t *testing.T) {
	header := parse(t, "util.h", "namespace util {\nint parse(const char* s, int base = 10);\n}\n")
	source := parse(t, "util.cpp", "namespace util {\nint parse(const char *text, int base) { return 0; }\n}\n")

	decl := oneFact(t, header, metadata.KindFunction, "parse")
	def := oneFact(t, source, metadata.KindFunction, "parse")
	assert.Equal(t, decl.ID, def.ID)
	assert.False(t, decl.IsDefinition)
	assert.True(t, def.IsDefinition)
	assert.Equal(t, "10", decl.Params[1].Default)

	c := corpus.New()
	for _, r := range []*metadata.ParseResult{header, source} {
		for i := range r.Facts {
			require.NoError(t, c.MergeFact(&r.Facts[i]))
		}
	}
	fn, err := metadata.Get[*metadata.FunctionInfo](c, decl.ID)
	require.NoError(t, err)
	require.NotNil(t, fn.DefLoc)
	assert.Equal(t, "util.cpp", fn.DefLoc.File)
	assert.Equal(t, []metadata.Location{{File: "util.h", Line: 2}}, fn.Loc)
	assert.Equal(t, "s", fn.Params[0].Name)
}

func TestParseSource_QualifiedDefinitionInOtherFile(t *testing.T) {
	header := parse(t, "a.h", "namespace ns { void f(int); }\n")
	source := parse(t, "a.cpp", "void ns::f(int) {}\n")

	decl := oneFact(t, header, metadata.KindFunction, "f")
	def := oneFact(t, source, metadata.KindFunction, "f")
	assert.Nil(t, decl.Alt)
	require.NotNil(t, def.Alt)
	assert.Equal(t, "ns", def.ParentName)
	assert.Equal(t, decl.ID, def.Alt.ID)
	assert.Equal(t, decl.Parent, def.Alt.Parent)

	// Either file order settles on the namespace function
	for _, order := range [][]*metadata.ParseResult{{header, source}, {source, header}} {
		c := corpus.New()
		b := c.NewBatch()
		for _, r := range order {
			for i := range r.Facts {
				_, err := b.Merge(&r.Facts[i])
				require.NoError(t, err)
			}
		}
		_, errs := b.Flush()
		require.Empty(t, errs)

		fns := c.FindByName("f", metadata.KindFunction)
		require.Len(t, fns, 1)
		fn := fns[0].(*metadata.FunctionInfo)
		assert.Equal(t, decl.ID, fn.ID)
		assert.False(t, fn.IsMethod)
		require.NotNil(t, fn.DefLoc)
		assert.Equal(t, "a.cpp", fn.DefLoc.File)
		assert.Equal(t, "ns::f", c.QualifiedName(fn))
		assert.Empty(t, c.All(metadata.KindRecord))
	}
}

func TestParseSource_QualifiedMethodInOtherFile(t *testing.T) {
	header := parse(t, "shape.h", "namespace geo { struct Circle { double area() const; }; }\n")
	source := parse(t, "shape.cpp", "double geo::Circle::area() const { return 0; }\n")

	c := corpus.New()
	b := c.NewBatch()
	for _, r := range []*metadata.ParseResult{source, header} {
		for i := range r.Facts {
			_, err := b.Merge(&r.Facts[i])
			require.NoError(t, err)
		}
	}
	_, errs := b.Flush()
	require.Empty(t, errs)

	areas := c.FindByName("area", metadata.KindFunction)
	require.Len(t, areas, 1)
	assert.True(t, areas[0].(*metadata.FunctionInfo).IsMethod)
	assert.Equal(t, "geo::Circle::area", c.QualifiedName(areas[0]))
	records := c.All(metadata.KindRecord)
	require.Len(t, records, 1)
	assert.Equal(t, "Circle", records[0].Base().Name)
}

func TestParseSource_OutOfLineDefinition(t *testing.T) {
	src := `namespace geo {
class Circle {
public:
    double area() const;
};
}

double geo::Circle::area() const { return 0; }
`
	result := parse(t, "circle.cpp", src)

	areas := factsNamed(result, metadata.KindFunction, "area")
	require.Len(t, areas, 2)
	assert.Equal(t, areas[0].ID, areas[1].ID)
	assert.False(t, areas[0].IsDefinition)
	assert.True(t, areas[1].IsDefinition)
	assert.Equal(t, metadata.NewSymbolID("c:@N@geo@S@Circle"), areas[1].Parent)
	assert.True(t, areas[1].IsMethod)
}

func TestParseSource_EnumsAliasesAndVariables(t *testing.T) {
	src := `enum class Color : unsigned char { Red, Green = 2 };
typedef struct { int x; } Point;
using Index = unsigned long;
static int counter = 0;
extern int shared;
`
	result := parse(t, "misc.h", src)
	assert.Empty(t, result.Errors)

	color := oneFact(t, result, metadata.KindEnum, "Color")
	assert.True(t, color.Scoped)
	require.NotNil(t, color.Type)
	assert.Equal(t, "unsigned char", color.Type.Name)
	assert.Equal(t, []metadata.EnumValueInfo{{Name: "Red"}, {Name: "Green", Value: "2"}}, color.Enumerators)

	point := oneFact(t, result, metadata.KindRecord, "Point")
	assert.True(t, point.IsTypeDef)
	x := oneFact(t, result, metadata.KindField, "x")
	assert.Equal(t, point.ID, x.Parent)

	index := oneFact(t, result, metadata.KindTypedef, "Index")
	assert.True(t, index.IsUsing)
	assert.Equal(t, "unsigned long", index.Type.Name)

	var vf metadata.VarFlags
	counter := oneFact(t, result, metadata.KindVariable, "counter")
	vf.SetRaw(counter.Specs)
	assert.Equal(t, metadata.StorageStatic, vf.StorageClass())
	assert.True(t, counter.IsDefinition)

	shared := oneFact(t, result, metadata.KindVariable, "shared")
	vf.SetRaw(shared.Specs)
	assert.Equal(t, metadata.StorageExtern, vf.StorageClass())
	assert.False(t, shared.IsDefinition)
}

func TestParseSource_Templates(t *testing.T) {
	src := `template <typename T, int N = 4>
struct Array { T data[N]; };

template <>
struct Array<bool, 1> {};
`
	result := parse(t, "array.h", src)

	arrays := factsNamed(result, metadata.KindRecord, "Array")
	require.Len(t, arrays, 2)
	primary, spec := arrays[0], arrays[1]

	require.NotNil(t, primary.Template)
	require.Len(t, primary.Template.Params, 2)
	assert.Equal(t, "T", primary.Template.Params[0].Name)
	assert.Equal(t, metadata.TParamType, primary.Template.Params[0].Kind)
	assert.Equal(t, "N", primary.Template.Params[1].Name)
	assert.Equal(t, metadata.TParamNonType, primary.Template.Params[1].Kind)
	assert.Equal(t, "4", primary.Template.Params[1].Default)
	assert.Equal(t, metadata.SpecializationPrimary, primary.Template.SpecializationKind())

	require.NotNil(t, spec.Template)
	assert.Equal(t, []metadata.TArg{{Value: "bool"}, {Value: "1"}}, spec.Template.Args)
	require.NotNil(t, spec.Template.Primary)
	assert.Equal(t, primary.ID, *spec.Template.Primary)
	assert.NotEqual(t, primary.ID, spec.ID)
	assert.Equal(t, metadata.SpecializationExplicit, spec.Template.SpecializationKind())
}

func TestParseSource_Friends(t *testing.T) {
	src := `class Box {
    friend void swap(Box& a, Box& b);
};
`
	result := parse(t, "box.h", src)

	box := oneFact(t, result, metadata.KindRecord, "Box")
	assert.Equal(t, []metadata.SymbolID{metadata.NewSymbolID("c:@F@swap#Box&,Box&")}, box.Friends)
	assert.Empty(t, factsNamed(result, metadata.KindFunction, "swap"))
}

func TestParseSource_Empty(t *testing.T) {
	result := parse(t, "empty.h", "")
	assert.Empty(t, result.Facts)
	assert.Empty(t, result.Errors)
}

func TestParseSource_SyntaxError(t *testing.T) {
	result := parse(t, "bad.h", "int good();\nvoid bad( {\n")
	require.NotEmpty(t, result.Errors)
	assert.Equal(t, "bad.h", result.Errors[0].File)
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lib.hpp")
	require.NoError(t, os.WriteFile(path, []byte("namespace lib { void run(); }\n"), 0644))

	p := New()
	defer p.Close()
	result, err := p.ParseFile(context.Background(), path)
	require.NoError(t, err)

	run := oneFact(t, result, metadata.KindFunction, "run")
	assert.Equal(t, path, run.Location.File)
	assert.Equal(t, 1, run.Location.Line)

	_, err = p.ParseFile(context.Background(), filepath.Join(dir, "missing.h"))
	assert.Error(t, err)
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "const std::string&", normalize("const std::string &"))
	assert.Equal(t, "unsigned long", normalize("unsigned   long"))
	assert.Equal(t, "std::map<int,std::vector<char>>", normalize("std::map< int, std::vector<char> >"))
	assert.Equal(t, "operator==", normalize("operator =="))
	assert.Equal(t, "operator bool", normalize("operator bool"))
}

func TestCleanComment(t *testing.T) {
	assert.Equal(t, "Doc line.", cleanComment("/// Doc line."))
	assert.Equal(t, "Doc line.", cleanComment("//! Doc line."))
	assert.Equal(t, "First\nSecond", cleanComment("/**\n * First\n * Second\n */"))
}
