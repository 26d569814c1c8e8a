package symgen

import (
	"reflect"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/grafana/symgen/pkg/ordered"
)

func entries[V any](m ordered.Map[V]) []ordered.Entry[V] {
	return m.Entries()
}

// tableOptions compares tables by content, ordered maps by their entries.
var tableOptions = cmp.Options{
	cmp.Exporter(func(reflect.Type) bool { return true }),
	cmp.Transformer("blocks", entries[*Block]),
	cmp.Transformer("uints", entries[Uint]),
	cmp.Transformer("linkables", entries[Linkable]),
}

func requireSameTable(t *testing.T, expected, actual *SymGen) {
	t.Helper()
	require.Empty(t, cmp.Diff(expected, actual, tableOptions))
}

func common[T Value[T]](v T) MaybeVersionDep[T] {
	return NewCommon(v)
}

func byVersion[T Value[T]](entries ...VersionEntry[T]) MaybeVersionDep[T] {
	return VersionMapOf(entries...)
}

func addr(a uint64) MaybeVersionDep[Linkable] {
	return common(Single(a))
}

func length(l uint64) MaybeVersionDep[Uint] {
	return common(Uint(l))
}

func fn(name string, a uint64) Symbol {
	return Symbol{Name: name, Address: addr(a)}
}

func table(blocks ...any) *SymGen {
	s := New()
	for i := 0; i < len(blocks); i += 2 {
		s.Insert(blocks[i].(string), blocks[i+1].(*Block))
	}
	s.Init()
	return s
}
