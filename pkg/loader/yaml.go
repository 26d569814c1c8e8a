package loader

import (
	"io"
	goiter "iter"

	"github.com/grafana/symgen/pkg/iter"
	"github.com/grafana/symgen/pkg/symfile"
	"github.com/grafana/symgen/pkg/symgen"
)

// YAML reads the symbols of a symbol table file. Every symbol keeps the
// block it is declared in; subregions are not followed. The defaults of
// params don't apply, since the file spells everything out.
func YAML(r io.Reader, _ LoadParams) iter.Iterator[symgen.AddSymbol] {
	table, err := symfile.Decode(r)
	if err != nil {
		return iter.NewErrIterator[symgen.AddSymbol](err)
	}
	return iter.FromSeq(symbolsOf(table))
}

func symbolsOf(table *symgen.SymGen) goiter.Seq[symgen.AddSymbol] {
	return func(yield func(symgen.AddSymbol) bool) {
		for name, b := range table.Blocks() {
			for _, t := range []symgen.SymbolType{symgen.Function, symgen.Data} {
				for _, s := range *b.Symbols(t) {
					if !yield(symgen.AddSymbol{Symbol: s, Type: t, BlockName: name}) {
						return
					}
				}
			}
		}
	}
}
