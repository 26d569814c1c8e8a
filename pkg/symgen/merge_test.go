package symgen

import (
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTable() *SymGen {
	return table(
		"main", &Block{
			Versions:    NewVersions("v1", "v2"),
			Address:     byVersion(At("v1", Uint(0x2000000)), At("v2", Uint(0x2000100))),
			Length:      length(0x100000),
			Description: "main block",
			Subregions: []*Subregion{
				{Name: "sub1.yml", Contents: table("sub1", &Block{
					Address:   length(0x2080000),
					Length:    length(0x1000),
					Functions: SymbolList{fn("sub_fn", 0x2080010)},
				})},
				{Name: "unloaded.yml"},
			},
			Functions: SymbolList{
				{
					Name:        "fn1",
					Aliases:     []string{"fn1_alias"},
					Address:     byVersion(At("v1", Single(0x2001000)), At("v2", Multiple(0x2001100, 0x2001200))),
					Length:      length(0x10),
					Description: "first function",
				},
				fn("fn2", 0x2002000),
			},
			Data: SymbolList{
				{Name: "data1", Address: addr(0x2003000), Length: byVersion(At("v1", Uint(4)))},
			},
		},
		"other", &Block{
			Address: length(0x3000000),
			Length:  length(0x1000),
			Data:    SymbolList{fn("other_data", 0x3000010)},
		},
	)
}

func TestMergeWithCloneIsNoop(t *testing.T) {
	x := testTable()
	before := x.Clone()
	require.NoError(t, x.Merge(nil, x.Clone()))
	requireSameTable(t, before, x)

	// merging twice stays stable, and rank initialization is idempotent
	require.NoError(t, x.Merge(nil, before))
	x.Init()
	requireSameTable(t, before, x)
}

func TestMergeDoesNotModifyOther(t *testing.T) {
	x := testTable()
	other := table("main", &Block{
		Versions:  NewVersions("v3"),
		Address:   byVersion(At("v3", Uint(0x2000200))),
		Length:    length(0x100000),
		Functions: SymbolList{{Name: "fn2", Address: byVersion(At("v3", Single(0x2002200)))}},
	})
	snapshot := other.Clone()
	require.NoError(t, x.Merge(nil, other))
	requireSameTable(t, snapshot, other)

	main, _ := x.Block("main")
	assert.Equal(t, []string{"v1", "v2", "v3"}, VersionNames(main.Versions))
	assert.Equal(t, "{v1: 0x2000000, v2: 0x2000100, v3: 0x2000200}", main.Address.String())
	// the common length is expanded over the declared versions first, so it
	// is never silently applied to v3
	assert.Equal(t, "{v1: 0x100000, v2: 0x100000, v3: 0x100000}", main.Length.String())

	// a version map with a single entry is as general as a common value,
	// so the address sets are merged
	i, ok := main.Functions.Find("fn2")
	require.True(t, ok)
	assert.Equal(t, "[0x2002000, 0x2002200]", main.Functions[i].Address.String())
}

func TestMergeOverlappingSymbol(t *testing.T) {
	x := table("main", &Block{
		Versions: NewVersions("v1"),
		Address:  length(0x2000000),
		Length:   length(0x100000),
		Functions: SymbolList{
			fn("fn1", 0x2001000),
			{Name: "fn2", Address: addr(0x2002000), Length: length(0x1000)},
		},
	})
	other := table("main", &Block{
		Versions:  NewVersions("v1"),
		Address:   length(0x2000000),
		Length:    length(0x100000),
		Functions: SymbolList{{Name: "fn1", Address: byVersion(At("v1", Single(0x2002000)))}},
	})
	require.NoError(t, x.Merge(nil, other))

	main, _ := x.Block("main")
	require.Len(t, main.Functions, 2)
	fn1 := main.Functions[0]
	assert.Equal(t, "fn1", fn1.Name)
	addrs, ok := fn1.Address.Get("v1")
	require.True(t, ok)
	assert.Equal(t, []uint64{0x2001000, 0x2002000}, addrs.Sorted().Addresses())
}

func TestMergeSubregionUnion(t *testing.T) {
	sub2 := func(nested ...string) *Subregion {
		b := &Block{Address: length(0x100), Length: length(0x100)}
		for _, name := range nested {
			b.Subregions = append(b.Subregions, &Subregion{Name: name, Contents: New()})
		}
		return &Subregion{Name: "sub2.yml", Contents: table("sub2", b)}
	}
	x := table("main", &Block{
		Address:    length(0),
		Length:     length(0x1000),
		Subregions: []*Subregion{{Name: "sub1.yml"}, sub2("sub3.yml", "sub4.yml")},
	})
	other := table("main", &Block{
		Address:    length(0),
		Length:     length(0x1000),
		Subregions: []*Subregion{sub2("sub3.yml")},
	})
	require.NoError(t, x.Merge(nil, other))

	main, _ := x.Block("main")
	s, ok := main.Subregion("sub2.yml")
	require.True(t, ok)
	b, ok := s.Contents.Block("sub2")
	require.True(t, ok)
	var names []string
	for _, sub := range b.Subregions {
		names = append(names, sub.Name)
	}
	assert.ElementsMatch(t, []string{"sub3.yml", "sub4.yml"}, names)

	// the other way around
	y := other.Clone()
	require.NoError(t, y.Merge(nil, x))
	main, _ = y.Block("main")
	s, _ = main.Subregion("sub2.yml")
	b, _ = s.Contents.Block("sub2")
	require.Len(t, b.Subregions, 2)
	assert.Equal(t, "sub4.yml", b.Subregions[1].Name)
	assert.Len(t, main.Subregions, 2)
}

func TestMergeUnloadedSubregionAdoptsContents(t *testing.T) {
	unloaded := &Subregion{Name: "a.yml"}
	loaded := &Subregion{Name: "a.yml", Contents: table("a", &Block{Address: length(1)})}
	require.NoError(t, unloaded.Merge(nil, loaded))
	require.NotNil(t, unloaded.Contents)
	assert.NotSame(t, loaded.Contents, unloaded.Contents)
	assert.Equal(t, []string{"a"}, unloaded.Contents.BlockNames())

	err := unloaded.Merge(nil, &Subregion{Name: "b.yml"})
	require.Error(t, err)
	assert.True(t, IsMergeConflict(err))
}

func TestMergeConflictPath(t *testing.T) {
	x := testTable()
	other := table("main", &Block{
		Versions:  NewVersions("v1", "v2"),
		Address:   byVersion(At("v1", Uint(0x2000000)), At("v2", Uint(0x2000100))),
		Length:    length(0x100000),
		Functions: SymbolList{{Name: "fn1_alias", Address: addr(0x2001000), Length: length(0x20)}},
	})
	err := x.Merge(nil, other)
	require.Error(t, err)

	var conflict *MergeConflict
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, "conflicting values 0x10 and 0x20", conflict.Msg)
	assert.Equal(t,
		`block "main": functions: symbol "fn1": length: merge conflict: conflicting values 0x10 and 0x20`,
		err.Error())
}

func TestMergeNewBlock(t *testing.T) {
	x := testTable()
	added := &Block{Address: length(0x4000000), Length: length(0x10)}
	require.NoError(t, x.Merge(nil, table("new", added)))
	assert.Equal(t, []string{"main", "other", "new"}, x.BlockNames())
	b, _ := x.Block("new")
	assert.NotSame(t, added, b)
}

func TestSymbolMerge(t *testing.T) {
	s := Symbol{Name: "a", Aliases: []string{"b"}, Address: addr(1)}
	err := s.Merge(nil, &Symbol{Name: "c", Address: addr(1)})
	require.Error(t, err)
	assert.True(t, IsMergeConflict(err))

	require.NoError(t, s.Merge(nil, &Symbol{
		Name:        "b",
		Aliases:     []string{"d", "a", "e"},
		Address:     addr(1),
		Length:      length(4),
		Description: "desc",
	}))
	assert.Equal(t, []string{"b", "d", "e"}, s.Aliases)
	assert.Equal(t, "desc", s.Description)
	assert.Equal(t, length(4), s.Length)
}

func TestSymbolMergeDescriptionConflict(t *testing.T) {
	long := strings.Repeat("é", 150)
	s := Symbol{Name: "a", Address: addr(1), Description: long}
	err := s.Merge(nil, &Symbol{Name: "a", Address: addr(1), Description: "other"})
	require.Error(t, err)
	assert.True(t, IsMergeConflict(err))
	assert.Contains(t, err.Error(), strings.Repeat("é", 97)+"...")
	assert.NotContains(t, err.Error(), strings.Repeat("é", 98))

	require.NoError(t, s.Merge(nil, &Symbol{Name: "a", Address: addr(1)}))
	assert.Equal(t, long, s.Description)
}

func TestSymbolListMerge(t *testing.T) {
	list := SymbolList{
		{Name: "a", Aliases: []string{"shared"}, Address: addr(1)},
		{Name: "shared", Address: addr(2)},
	}
	require.NoError(t, list.Merge(nil, SymbolList{
		{Name: "shared", Address: addr(2)},
		{Name: "new", Address: addr(3)},
		{Name: "new_alias", Aliases: []string{"new"}, Address: addr(3)},
	}, nil))

	require.Len(t, list, 3)
	assert.Equal(t, Single(2), list[1].Address.(Common[Linkable]).Value, "primary names win over aliases")
	assert.Equal(t, "new", list[2].Name)
	assert.Equal(t, []string{"new_alias"}, list[2].Aliases)
}

func TestSymbolListMergeExpandsMatchedSymbols(t *testing.T) {
	list := SymbolList{{Name: "a", Address: byVersion(At("v1", Single(1)))}}
	require.NoError(t, list.Merge(nil, SymbolList{
		{Name: "a", Address: addr(1)},
		{Name: "b", Address: addr(2)},
	}, NewVersions("v1")))
	assert.Equal(t, "{v1: 0x1}", list[0].Address.String())
	assert.Equal(t, addr(2), list[1].Address, "new symbols are appended as they are")
}

func TestBlockMergeDescription(t *testing.T) {
	b := &Block{Address: length(0), Description: "a"}
	err := b.Merge(nil, &Block{Address: length(0), Description: "b"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "description: merge conflict")

	b.Description = ""
	require.NoError(t, b.Merge(nil, &Block{Address: length(0), Description: "b"}))
	assert.Equal(t, "b", b.Description)
}

func TestBlockMergeRealizesAgainstOwnVersions(t *testing.T) {
	b := &Block{
		Versions:  NewVersions("v1", "v2"),
		Address:   length(0x1000),
		Length:    length(0x100),
		Functions: SymbolList{fn("f", 0x1010)},
	}
	require.NoError(t, b.Merge(nil, &Block{
		Address: length(0x1000),
		Functions: SymbolList{
			{Name: "f", Address: addr(0x1010), Length: length(0x10)},
			fn("g", 0x1020),
		},
	}))

	assert.Equal(t, []string{"v1", "v2"}, VersionNames(b.Versions))
	require.Len(t, b.Functions, 2)
	assert.Equal(t, "0x1010", b.Functions[0].Address.String())
	assert.Equal(t, "{v1: 0x10, v2: 0x10}", b.Functions[0].Length.String())
	assert.Equal(t, addr(0x1020), b.Functions[1].Address)

	err := b.Merge(nil, &Block{Functions: SymbolList{{Name: "f", Length: length(0x20)}}})
	require.Error(t, err)
	assert.True(t, IsMergeConflict(err))
}

func TestBlockMergeKeepsCommonValues(t *testing.T) {
	b := &Block{Versions: NewVersions("v1", "v2"), Address: length(0x1000), Length: length(0x100)}
	require.NoError(t, b.Merge(nil, &Block{Address: length(0x1000), Length: length(0x100)}))
	assert.Equal(t, length(0x1000), b.Address)
	assert.Equal(t, length(0x100), b.Length)

	require.NoError(t, b.Merge(nil, &Block{Versions: NewVersions("v1"), Address: length(0x1000)}))
	assert.Equal(t, length(0x1000), b.Address)

	require.NoError(t, b.Merge(nil, &Block{Versions: NewVersions("v3"), Address: length(0x1000)}))
	assert.Equal(t, "{v1: 0x1000, v2: 0x1000, v3: 0x1000}", b.Address.String())
	assert.Equal(t, "{v1: 0x100, v2: 0x100}", b.Length.String())
}
