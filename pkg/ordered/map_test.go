package ordered

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIDCompare(t *testing.T) {
	a, b := NewID("b"), NewID("a")
	assert.Equal(t, 1, a.Compare(b), "unranked identifiers compare by name")

	ranks := Ranks([]string{"b", "a"})
	a.Init(ranks)
	b.Init(ranks)
	assert.Equal(t, -1, a.Compare(b))
	assert.True(t, a.Equal(NewID("b")), "equality ignores rank")

	unranked := NewID("0")
	assert.True(t, a.Less(unranked))
	assert.True(t, b.Less(unranked))

	r, ok := b.Rank()
	require.True(t, ok)
	assert.Equal(t, 1, r)
	_, ok = unranked.Rank()
	assert.False(t, ok)
}

func TestRanksFirstOccurrenceWins(t *testing.T) {
	ranks := Ranks([]string{"v2", "v1", "v2", "v3"})
	assert.Equal(t, RankTable{"v2": 0, "v1": 1, "v3": 2}, ranks)
}

func TestMapSetKeepsPosition(t *testing.T) {
	var m Map[int]
	m.Set(NewID("x"), 1)
	m.Set(NewID("y"), 2)
	m.Set(NewID("x"), 3)

	require.Equal(t, 2, m.Len())
	assert.Equal(t, []int{3, 2}, m.Values())
	v, ok := m.Get("y")
	require.True(t, ok)
	assert.Equal(t, 2, v)
	_, ok = m.Get("z")
	assert.False(t, ok)
}

func TestMapInitRanks(t *testing.T) {
	var m Map[string]
	for _, name := range []string{"c", "z", "a", "b"} {
		m.Set(NewID(name), name)
	}
	ranks := Ranks([]string{"b", "c", "a"})
	m.InitRanks(ranks)
	assert.Equal(t, []string{"b", "c", "a", "z"}, m.Values())

	// idempotent
	m.InitRanks(ranks)
	assert.Equal(t, []string{"b", "c", "a", "z"}, m.Values())
	v, ok := m.Get("z")
	require.True(t, ok)
	assert.Equal(t, "z", v)
}

func TestMapDeleteAndClone(t *testing.T) {
	var m Map[[]int]
	m.Set(NewID("a"), []int{1})
	m.Set(NewID("b"), []int{2})
	m.Set(NewID("c"), []int{3})

	c := m.Clone(func(v []int) []int { return append([]int(nil), v...) })
	require.True(t, m.Delete("b"))
	assert.False(t, m.Delete("b"))
	assert.Equal(t, [][]int{{1}, {3}}, m.Values())
	v, ok := m.Get("c")
	require.True(t, ok)
	assert.Equal(t, []int{3}, v)

	v, _ = c.Get("a")
	v[0] = 42
	orig, _ := m.Get("a")
	assert.Equal(t, []int{1}, orig)
	assert.Equal(t, 3, c.Len())
}

func TestMapAll(t *testing.T) {
	var m Map[int]
	m.Set(NewID("a"), 1)
	m.Set(NewID("b"), 2)
	var names []string
	for k, v := range m.All() {
		names = append(names, k.Name)
		if v == 1 {
			continue
		}
		break
	}
	assert.Equal(t, []string{"a", "b"}, names)
}

func TestMapAppendAfterSort(t *testing.T) {
	var m Map[int]
	assert.Equal(t, 0, m.Len())
	assert.Empty(t, m.Keys())
	assert.False(t, m.Delete("a"))

	for i, name := range []string{"c", "a", "b"} {
		m.Set(NewID(name), i)
	}
	m.Sort()
	m.Set(NewID("0"), 3)
	require.True(t, m.Delete("a"))
	m.Set(NewID("a"), 4)

	assert.Equal(t, []int{2, 0, 3, 4}, m.Values())
	assert.Equal(t, Entry[int]{Key: NewID("b"), Value: 2}, m.At(0))
	assert.Equal(t, "a", m.At(3).Key.Name)
	assert.Panics(t, func() { m.At(4) })
	assert.Len(t, m.Entries(), 4)
}
