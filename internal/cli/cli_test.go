package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/cxxcorpus/pkg/metadata"
)

const mathHeader = `namespace math {

/// Clamp v into [lo, hi].
int clamp(int v, int lo, int hi);
double clamp(double v, double lo, double hi);
int Clamp(int v);
int abs(int v);

class Vec {
public:
    double length() const;
};

} // namespace math

void init();
`

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func indexedTree(t *testing.T) (root, db string) {
	t.Helper()
	root = t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "math.h"), []byte(mathHeader), 0o644))
	db = filepath.Join(t.TempDir(), "corpus.db")

	out, err := run(t, "index", "--quiet", "--db", db, root)
	require.NoError(t, err)
	require.Contains(t, out, "Indexing complete")
	return root, db
}

func TestIndex_UpToDate(t *testing.T) {
	root, db := indexedTree(t)

	out, err := run(t, "index", "--quiet", "--db", db, root)
	require.NoError(t, err)
	assert.Contains(t, out, "Up to date")

	out, err = run(t, "index", "--quiet", "--force", "--db", db, root)
	require.NoError(t, err)
	assert.Contains(t, out, "Indexing complete")
}

func TestIndex_RequiresDir(t *testing.T) {
	_, err := run(t, "index")
	assert.Error(t, err)
}

func TestOverloads(t *testing.T) {
	root, db := indexedTree(t)

	out, err := run(t, "overloads", "--db", db, root, "math")
	require.NoError(t, err)
	assert.Contains(t, out, "namespace math: 4 functions in 2 overload sets")
	assert.Contains(t, out, "\nabs\n")
	assert.Contains(t, out, "\nclamp\n")
	assert.Less(t, bytes.Index([]byte(out), []byte("\nabs\n")), bytes.Index([]byte(out), []byte("\nclamp\n")))
	assert.Contains(t, out, "int Clamp(int v)")
}

func TestOverloads_Global(t *testing.T) {
	root, db := indexedTree(t)

	out, err := run(t, "overloads", "--db", db, root)
	require.NoError(t, err)
	assert.Contains(t, out, "namespace ::: 1 functions in 1 overload sets")
	assert.Contains(t, out, "void init()")
}

func TestOverloads_UnknownNamespace(t *testing.T) {
	root, db := indexedTree(t)

	_, err := run(t, "overloads", "--db", db, root, "physics")
	assert.ErrorIs(t, err, metadata.ErrNotFound)
}

func TestQueries_NotIndexed(t *testing.T) {
	root := t.TempDir()
	db := filepath.Join(t.TempDir(), "corpus.db")

	_, err := run(t, "overloads", "--db", db, root)
	assert.ErrorIs(t, err, errNotIndexed)

	_, err = run(t, "symbol", "--db", db, root, "Vec")
	assert.ErrorIs(t, err, errNotIndexed)
}

func TestSymbol(t *testing.T) {
	root, db := indexedTree(t)

	out, err := run(t, "symbol", "--db", db, root, "math::Vec")
	require.NoError(t, err)

	var got []map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "math::Vec", got[0]["qualified_name"])
	entity := got[0]["entity"].(map[string]interface{})
	assert.Equal(t, "record", entity["kind"])
	assert.Equal(t, metadata.NewSymbolID("c:@N@math@S@Vec").String(), entity["id"])
}

func TestSymbol_ByIDAndKind(t *testing.T) {
	root, db := indexedTree(t)
	id := metadata.NewSymbolID("c:@N@math@S@Vec").String()

	out, err := run(t, "symbol", "--db", db, root, id)
	require.NoError(t, err)
	assert.Contains(t, out, `"qualified_name": "math::Vec"`)

	_, err = run(t, "symbol", "--db", db, "--kind", "function", root, id)
	assert.ErrorIs(t, err, metadata.ErrNotFound)

	out, err = run(t, "symbol", "--db", db, "--kind", "function", root, "clamp")
	require.NoError(t, err)
	var got []map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Len(t, got, 2)
	assert.Contains(t, got[0]["signature"], "clamp(")

	_, err = run(t, "symbol", "--db", db, "--kind", "method", root, "clamp")
	assert.Error(t, err)
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "cxxcorpus dev")
	assert.Contains(t, out, "SQLite driver:")
}
