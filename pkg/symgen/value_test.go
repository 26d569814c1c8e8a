package symgen

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUintMerge(t *testing.T) {
	v, err := Uint(0x10).Merge(0x10)
	require.NoError(t, err)
	assert.Equal(t, Uint(0x10), v)

	_, err = Uint(0x10).Merge(0x20)
	require.Error(t, err)
	assert.True(t, IsMergeConflict(err))
	assert.EqualError(t, err, "merge conflict: conflicting values 0x10 and 0x20")
}

func TestLinkableMerge(t *testing.T) {
	merged, err := Multiple(1, 2, 3).Merge(Multiple(3, 5, 4))
	require.NoError(t, err)
	assert.True(t, merged.IsMultiple())
	assert.Equal(t, []uint64{1, 2, 3, 4, 5}, merged.Sorted().Addresses())

	// commutative as a set
	other, err := Multiple(3, 5, 4).Merge(Multiple(1, 2, 3))
	require.NoError(t, err)
	assert.Equal(t, merged.Sorted(), other.Sorted())

	// idempotent
	again, err := merged.Merge(merged)
	require.NoError(t, err)
	assert.True(t, merged.Equal(again))
}

func TestLinkablePromotion(t *testing.T) {
	same, err := Single(1).Merge(Single(1))
	require.NoError(t, err)
	assert.False(t, same.IsMultiple())
	assert.Equal(t, Single(1), same)

	promoted, err := Single(1).Merge(Single(2))
	require.NoError(t, err)
	assert.True(t, promoted.IsMultiple())
	assert.Equal(t, []uint64{1, 2}, promoted.Addresses())
}

func TestLinkableImmutable(t *testing.T) {
	a := Multiple(1, 2)
	_, err := a.Merge(Single(3))
	require.NoError(t, err)
	assert.Equal(t, []uint64{1, 2}, a.Addresses())

	addrs := a.Addresses()
	addrs[0] = 42
	assert.True(t, a.Contains(1))
}

func TestLinkableCompare(t *testing.T) {
	values := []Linkable{Multiple(5, 2), Single(3), Single(1), Multiple(2, 9)}
	slices.SortFunc(values, Linkable.Compare)
	assert.Equal(t, []Linkable{Single(1), Multiple(5, 2), Multiple(2, 9), Single(3)}, values)
	assert.Equal(t, "[0x5, 0x2]", Multiple(5, 2).String())
	assert.Equal(t, "0x3", Single(3).String())
}

func TestParseSymbolType(t *testing.T) {
	for input, expected := range map[string]SymbolType{"function": Function, "f": Function, "data": Data, "d": Data} {
		typ, err := ParseSymbolType(input)
		require.NoError(t, err, input)
		assert.Equal(t, expected, typ, input)
	}
	_, err := ParseSymbolType("label")
	assert.EqualError(t, err, `unknown symbol type "label"`)
}
