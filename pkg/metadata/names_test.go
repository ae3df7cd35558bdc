package metadata

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompareSymbolNames(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"bar", "foo", -1},
		{"foo", "bar", 1},
		{"foo", "foo", 0},
		{"foo", "Foo", -1},
		{"Foo", "foo", 1},
		{"Foo", "FOO", -1},
		{"fOo", "Foo", -1},
		{"foo", "foobar", -1},
		{"Foo", "foobar", -1},
		{"Bar", "foo", -1},
		{"", "a", -1},
		{"", "", 0},
		{"operator+", "operator<", -1},
		{"operator bool", "operator+", -1},
		{"a_b", "aB", -1},
	}

	for _, tt := range tests {
		t.Run(tt.a+"_vs_"+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.want, CompareSymbolNames(tt.a, tt.b))
		})
	}
}

func TestCompareSymbolNames_Antisymmetric(t *testing.T) {
	names := []string{"", "a", "A", "ab", "aB", "Ab", "AB", "b", "B", "_", "operator==", "operator bool", "\xc3\xa9"}
	for _, a := range names {
		for _, b := range names {
			assert.Equal(t, CompareSymbolNames(a, b), -CompareSymbolNames(b, a), "%q %q", a, b)
			if CompareSymbolNames(a, b) == 0 {
				assert.Equal(t, a, b)
			}
		}
	}
}

func TestCompareSymbolNames_EqualFoldNamesAreAdjacent(t *testing.T) {
	names := []string{"b", "Alpha", "beta", "ALPHA", "B", "alpha", "Beta", "c"}
	slices.SortFunc(names, CompareSymbolNames)

	assert.Equal(t, []string{"alpha", "Alpha", "ALPHA", "b", "B", "beta", "Beta", "c"}, names)
}

func TestEqualFoldASCII(t *testing.T) {
	assert.True(t, EqualFoldASCII("foo", "FOO"))
	assert.True(t, EqualFoldASCII("", ""))
	assert.True(t, EqualFoldASCII("operator<", "OPERATOR<"))
	assert.False(t, EqualFoldASCII("foo", "fooo"))
	assert.False(t, EqualFoldASCII("a_", "a-"))
	// only ASCII letters fold
	assert.False(t, EqualFoldASCII("\xc3\xa9", "\xc3\x89"))
}
