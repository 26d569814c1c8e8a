package symgen

import (
	"path/filepath"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grafana/symgen/pkg/iter"
)

func TestSubregionPath(t *testing.T) {
	for _, tc := range []struct {
		parent, name, expected string
	}{
		{"dir/parent.yml", "x.yml", "dir/parent/x.yml"},
		{"parent.yml", "nested/x.yml", "parent/nested/x.yml"},
		{"dir/noext", "x.yml", "dir/noext/x.yml"},
	} {
		t.Run(tc.parent+"+"+tc.name, func(t *testing.T) {
			assert.Equal(t, filepath.FromSlash(tc.expected), SubregionPath(filepath.FromSlash(tc.parent), tc.name))
		})
	}
}

// tree returns a table shaped like
//
//	root.yml
//	├── a.yml
//	│   └── c.yml
//	├── unloaded.yml
//	└── b.yml
func tree() *SymGen {
	c := table("c", &Block{})
	a := table("a", &Block{Subregions: []*Subregion{{Name: "c.yml", Contents: c}}})
	b := table("b", &Block{})
	return table(
		"first", &Block{Subregions: []*Subregion{{Name: "a.yml", Contents: a}, {Name: "unloaded.yml"}}},
		"second", &Block{Subregions: []*Subregion{{Name: "b.yml", Contents: b}}},
	)
}

func paths(t *testing.T, it iter.Iterator[Cursor]) []string {
	t.Helper()
	cursors, err := iter.Slice(it)
	require.NoError(t, err)
	return lo.Map(cursors, func(c Cursor, _ int) string {
		return filepath.ToSlash(c.Path)
	})
}

func TestBreadthFirst(t *testing.T) {
	assert.Equal(t, []string{
		"root.yml",
		"root/a.yml",
		"root/b.yml",
		"root/a/c.yml",
	}, paths(t, BreadthFirst("root.yml", tree())))
}

func TestDepthFirst(t *testing.T) {
	assert.Equal(t, []string{
		"root.yml",
		"root/a.yml",
		"root/a/c.yml",
		"root/b.yml",
	}, paths(t, DepthFirst("root.yml", tree())))
}

func TestCursorFields(t *testing.T) {
	root := tree()
	it := DepthFirst("root.yml", root)
	cursors, err := iter.Slice(it)
	require.NoError(t, err)
	require.Len(t, cursors, 4)

	assert.Same(t, root, cursors[0].Table)
	assert.Equal(t, 0, cursors[0].Depth)
	assert.Equal(t, "", cursors[0].Block)

	assert.Equal(t, 1, cursors[1].Depth)
	assert.Equal(t, "first", cursors[1].Block)
	assert.Equal(t, 2, cursors[2].Depth)
	assert.Equal(t, "a", cursors[2].Block)
	assert.Equal(t, "second", cursors[3].Block)

	// exhausted iterators stay exhausted
	assert.False(t, it.Next())
	assert.Equal(t, Cursor{}, it.At())
}
