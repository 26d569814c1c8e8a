package symgen

import (
	"path"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"

	"github.com/grafana/symgen/pkg/iter"
)

// AddSymbol is a new symbol to be folded into a table, as produced by a
// loader.
type AddSymbol struct {
	Symbol Symbol
	Type   SymbolType
	// BlockName is the block the symbol belongs to. When empty, the block
	// is inferred from the address of the symbol.
	BlockName string
}

// indexKey identifies a symbol list by its owning block. Blocks are not
// moved or replaced while symbols are assigned.
type indexKey struct {
	block *Block
	typ   SymbolType
}

// assignment holds the state of one MergeSymbols call. Every index key
// refers to exactly one symbol list for the whole call.
type assignment struct {
	logger  log.Logger
	indexes map[indexKey]*nameIndex
}

// target is a block a symbol was resolved to.
type target struct {
	// subregion is the slash-separated chain of subregion names leading to
	// the table holding the block, empty for the root table.
	subregion string
	name      string
	block     *Block
}

func (t target) String() string {
	if t.subregion == "" {
		return t.name
	}
	return t.subregion + ":" + t.name
}

// MergeSymbols folds new symbols into the table. Each symbol goes to its
// named block, or to the block containing its address when it has none,
// preferring the innermost loaded subregion containing it. Symbols sharing a
// name with an existing symbol of the block are merged into it, the others
// are appended.
//
// Symbols no block contains are returned. A missing named block or an
// ambiguous inference aborts the merge, leaving the table partially merged.
func (s *SymGen) MergeSymbols(logger log.Logger, symbols iter.Iterator[AddSymbol]) ([]AddSymbol, error) {
	a := &assignment{
		logger:  loggerOrNop(logger),
		indexes: make(map[indexKey]*nameIndex),
	}
	var unmerged []AddSymbol
	for symbols.Next() {
		add := symbols.At()
		ok, err := a.assign(s, &add)
		if err != nil {
			_ = symbols.Close()
			s.Init()
			return unmerged, err
		}
		if !ok {
			level.Debug(a.logger).Log("msg", "no block contains symbol", "symbol", add.Symbol.Name)
			unmerged = append(unmerged, add)
		}
	}
	s.Init()
	if err := symbols.Err(); err != nil {
		_ = symbols.Close()
		return unmerged, err
	}
	return unmerged, symbols.Close()
}

func (a *assignment) assign(table *SymGen, add *AddSymbol) (bool, error) {
	var (
		t   *target
		err error
	)
	if add.BlockName != "" {
		b, ok := table.Block(add.BlockName)
		if !ok {
			return false, &MissingBlockError{Name: add.BlockName}
		}
		t, err = a.inferSubregions(b, "", &add.Symbol)
		if err != nil {
			return false, err
		}
		if t == nil {
			t = &target{name: add.BlockName, block: b}
		}
	} else {
		t, err = a.infer(table, "", &add.Symbol)
		if err != nil {
			return false, err
		}
		if t == nil {
			return false, nil
		}
	}
	if err = a.insert(t, add); err != nil {
		return false, errors.Wrapf(err, "block %q", t.String())
	}
	return true, nil
}

// infer finds the block of the table containing the symbol, descending
// into loaded subregions. It returns nil when no block contains it.
func (a *assignment) infer(table *SymGen, subregion string, sym *Symbol) (*target, error) {
	var matches []*target
	if sym.Address == nil {
		return nil, nil
	}
	for name, b := range table.Blocks() {
		extent := b.Extent()
		if extent == nil || SymbolInBounds(extent, sym, b.Versions) != nil {
			continue
		}
		inner, err := a.inferSubregions(b, subregion, sym)
		if err != nil {
			return nil, err
		}
		if inner != nil {
			matches = append(matches, inner)
			continue
		}
		matches = append(matches, &target{subregion: subregion, name: name, block: b})
	}
	return single(sym, matches)
}

// inferSubregions looks for the symbol in the loaded subregions of the
// block.
func (a *assignment) inferSubregions(b *Block, subregion string, sym *Symbol) (*target, error) {
	var matches []*target
	for _, sub := range b.Subregions {
		if sub.Contents == nil {
			continue
		}
		t, err := a.infer(sub.Contents, path.Join(subregion, sub.Name), sym)
		if err != nil {
			return nil, err
		}
		if t != nil {
			matches = append(matches, t)
		}
	}
	return single(sym, matches)
}

func single(sym *Symbol, matches []*target) (*target, error) {
	switch len(matches) {
	case 0:
		return nil, nil
	case 1:
		return matches[0], nil
	}
	err := &BlockInferenceError{Symbol: sym.Name}
	for _, m := range matches {
		err.Matches = append(err.Matches, m.String())
	}
	return nil, err
}

func (a *assignment) insert(t *target, add *AddSymbol) error {
	list := t.block.Symbols(add.Type)
	key := indexKey{block: t.block, typ: add.Type}
	index, ok := a.indexes[key]
	if !ok {
		index = newNameIndex(*list)
		a.indexes[key] = index
	}
	if err := list.mergeSymbol(a.logger, index, &add.Symbol, t.block.Versions); err != nil {
		return errors.Wrap(err, add.Type.String())
	}
	return nil
}
