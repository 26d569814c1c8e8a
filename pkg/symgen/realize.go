package symgen

import (
	"iter"
	"slices"
)

// RealizedSymbol is a symbol resolved for one version and one address.
type RealizedSymbol struct {
	Name        string
	Aliases     []string
	Address     uint64
	Length      uint64
	HasLength   bool
	Description string
}

// RealizedEntry is a realized symbol together with its location in the
// tree.
type RealizedEntry struct {
	// Block is the name of the owning block. Symbols of subregions are
	// reported with the block name inside the subregion file.
	Block  string
	Type   SymbolType
	Symbol RealizedSymbol
}

// Realize resolves the symbol for the named version, one record per
// address. It returns nothing when the symbol has no address for the
// version.
func (s *Symbol) Realize(version string) []RealizedSymbol {
	if s.Address == nil {
		return nil
	}
	addrs, ok := s.Address.Get(version)
	if !ok {
		return nil
	}
	var (
		length    Uint
		hasLength bool
	)
	if s.Length != nil {
		length, hasLength = s.Length.Get(version)
	}
	realized := make([]RealizedSymbol, 0, addrs.Len())
	for _, a := range addrs.addrs {
		realized = append(realized, RealizedSymbol{
			Name:        s.Name,
			Aliases:     slices.Clone(s.Aliases),
			Address:     a,
			Length:      uint64(length),
			HasLength:   hasLength,
			Description: s.Description,
		})
	}
	return realized
}

// Realize iterates over the symbols of the list realized for the version.
func (l SymbolList) Realize(version string) iter.Seq[RealizedSymbol] {
	return func(yield func(RealizedSymbol) bool) {
		for i := range l {
			for _, r := range l[i].Realize(version) {
				if !yield(r) {
					return
				}
			}
		}
	}
}

// HasVersion reports whether the block exists in the named version. Blocks
// without a version list exist in every version.
func (b *Block) HasVersion(version string) bool {
	return b.Versions == nil || containsVersion(b.Versions, version)
}

// Realize iterates over the functions then the data of the block, realized
// for the version. Nothing is produced when the block doesn't exist in the
// version.
func (b *Block) Realize(name, version string) iter.Seq[RealizedEntry] {
	return func(yield func(RealizedEntry) bool) {
		if !b.HasVersion(version) {
			return
		}
		for _, t := range []SymbolType{Function, Data} {
			for r := range b.Symbols(t).Realize(version) {
				if !yield(RealizedEntry{Block: name, Type: t, Symbol: r}) {
					return
				}
			}
		}
	}
}

// Realize iterates over every symbol of the table realized for the
// version. The symbols of loaded subregions follow the symbols of the block
// declaring them.
func (s *SymGen) Realize(version string) iter.Seq[RealizedEntry] {
	return func(yield func(RealizedEntry) bool) {
		s.realize(version, yield)
	}
}

func (s *SymGen) realize(version string, yield func(RealizedEntry) bool) bool {
	for name, b := range s.Blocks() {
		for e := range b.Realize(name, version) {
			if !yield(e) {
				return false
			}
		}
		if !b.HasVersion(version) {
			continue
		}
		for _, sub := range b.Subregions {
			if sub.Contents == nil {
				continue
			}
			if !sub.Contents.realize(version, yield) {
				return false
			}
		}
	}
	return true
}
