package symgen

import (
	"fmt"
	"iter"
	"slices"

	"github.com/pkg/errors"

	"github.com/grafana/symgen/pkg/ordered"
)

// SymbolType tells functions and data apart.
type SymbolType int

const (
	Function SymbolType = iota
	Data
)

func (t SymbolType) String() string {
	switch t {
	case Function:
		return "function"
	case Data:
		return "data"
	default:
		return fmt.Sprintf("SymbolType(%d)", int(t))
	}
}

// ParseSymbolType parses "function" or "data" (and their short forms).
func ParseSymbolType(s string) (SymbolType, error) {
	switch s {
	case "function", "functions", "func", "f":
		return Function, nil
	case "data", "d":
		return Data, nil
	}
	return Function, errors.Errorf("unknown symbol type %q", s)
}

// Symbol is a named function or data item.
type Symbol struct {
	Name    string
	Aliases []string
	Address MaybeVersionDep[Linkable]
	// Length is nil when unknown.
	Length      MaybeVersionDep[Uint]
	Description string
}

// Names iterates over the primary name followed by the aliases.
func (s *Symbol) Names() iter.Seq[string] {
	return func(yield func(string) bool) {
		if !yield(s.Name) {
			return
		}
		for _, a := range s.Aliases {
			if !yield(a) {
				return
			}
		}
	}
}

func (s *Symbol) HasName(name string) bool {
	return s.Name == name || slices.Contains(s.Aliases, name)
}

func (s *Symbol) Clone() Symbol {
	c := Symbol{
		Name:        s.Name,
		Aliases:     slices.Clone(s.Aliases),
		Description: s.Description,
	}
	if s.Address != nil {
		c.Address = s.Address.Clone()
	}
	if s.Length != nil {
		c.Length = s.Length.Clone()
	}
	return c
}

func (s *Symbol) initRanks(ranks ordered.RankTable) {
	initMaybe(s.Address, ranks)
	initMaybe(s.Length, ranks)
}

// versions returns every version key used by the symbol.
func (s *Symbol) versions() []Version {
	var versions []Version
	if s.Address != nil {
		versions = appendVersions(versions, s.Address.Versions())
	}
	if s.Length != nil {
		versions = appendVersions(versions, s.Length.Versions())
	}
	return versions
}

func initMaybe[T Value[T]](m MaybeVersionDep[T], ranks ordered.RankTable) {
	if vm, ok := m.(*VersionMap[T]); ok {
		vm.initRanks(ranks)
	}
}

// SymbolList is an ordered list of symbols whose names don't overlap.
type SymbolList []Symbol

func (l SymbolList) Clone() SymbolList {
	if l == nil {
		return nil
	}
	c := make(SymbolList, len(l))
	for i := range l {
		c[i] = l[i].Clone()
	}
	return c
}

// Find returns the index of the symbol carrying the name, as primary name
// or alias.
func (l SymbolList) Find(name string) (int, bool) {
	for i := range l {
		if l[i].HasName(name) {
			return i, true
		}
	}
	return -1, false
}

// Sort orders the symbols by address, keeping the relative order of
// symbols with equal addresses.
func (l SymbolList) Sort() {
	slices.SortStableFunc(l, func(a, b Symbol) int {
		if a.Address == nil || b.Address == nil {
			switch {
			case a.Address != nil:
				return -1
			case b.Address != nil:
				return 1
			}
			return 0
		}
		return CompareMaybe(a.Address, b.Address)
	})
}

// Subregion references a nested symbol table stored in its own file. Name
// is the file name relative to the subregion directory of the parent file.
// Contents is nil when the file has not been loaded.
type Subregion struct {
	Name     string
	Contents *SymGen
}

func (s *Subregion) Clone() *Subregion {
	c := &Subregion{Name: s.Name}
	if s.Contents != nil {
		c.Contents = s.Contents.Clone()
	}
	return c
}

// Block is a named contiguous region of memory.
type Block struct {
	// Versions is nil when the block does not declare its versions.
	Versions    []Version
	Address     MaybeVersionDep[Uint]
	Length      MaybeVersionDep[Uint]
	Description string
	Subregions  []*Subregion
	Functions   SymbolList
	Data        SymbolList
}

// Symbols returns the list holding symbols of the given type.
func (b *Block) Symbols(t SymbolType) *SymbolList {
	if t == Data {
		return &b.Data
	}
	return &b.Functions
}

func (b *Block) Subregion(name string) (*Subregion, bool) {
	for _, s := range b.Subregions {
		if s.Name == name {
			return s, true
		}
	}
	return nil, false
}

func (b *Block) Clone() *Block {
	c := &Block{
		Versions:    slices.Clone(b.Versions),
		Description: b.Description,
		Functions:   b.Functions.Clone(),
		Data:        b.Data.Clone(),
	}
	if b.Address != nil {
		c.Address = b.Address.Clone()
	}
	if b.Length != nil {
		c.Length = b.Length.Clone()
	}
	if b.Subregions != nil {
		c.Subregions = make([]*Subregion, len(b.Subregions))
		for i, s := range b.Subregions {
			c.Subregions[i] = s.Clone()
		}
	}
	return c
}

// Sort orders the functions and data of the block by address.
func (b *Block) Sort() {
	b.Functions.Sort()
	b.Data.Sort()
}

func (b *Block) init() {
	ranks := ordered.RanksOf(b.Versions)
	for i := range b.Versions {
		b.Versions[i].Init(ranks)
	}
	initMaybe(b.Address, ranks)
	initMaybe(b.Length, ranks)
	for _, list := range []SymbolList{b.Functions, b.Data} {
		for i := range list {
			list[i].initRanks(ranks)
		}
	}
	for _, s := range b.Subregions {
		if s.Contents != nil {
			s.Contents.Init()
		}
	}
}

// UsedVersions returns every version key appearing in the block's address,
// length and symbols, in order of first appearance.
func (b *Block) UsedVersions() []Version {
	var versions []Version
	if b.Address != nil {
		versions = appendVersions(versions, b.Address.Versions())
	}
	if b.Length != nil {
		versions = appendVersions(versions, b.Length.Versions())
	}
	for _, list := range []SymbolList{b.Functions, b.Data} {
		for i := range list {
			versions = appendVersions(versions, list[i].versions())
		}
	}
	return versions
}

// SymGen is a symbol table: blocks in declaration order, unique by name.
type SymGen struct {
	blocks ordered.Map[*Block]
}

func New() *SymGen {
	return &SymGen{}
}

func (s *SymGen) Len() int {
	return s.blocks.Len()
}

func (s *SymGen) Block(name string) (*Block, bool) {
	return s.blocks.Get(name)
}

// Insert adds a block, replacing any block with the same name in place.
func (s *SymGen) Insert(name string, b *Block) {
	s.blocks.Set(ordered.NewID(name), b)
}

// Blocks iterates over the blocks in order.
func (s *SymGen) Blocks() iter.Seq2[string, *Block] {
	return func(yield func(string, *Block) bool) {
		for k, b := range s.blocks.All() {
			if !yield(k.Name, b) {
				return
			}
		}
	}
}

func (s *SymGen) BlockNames() []string {
	keys := s.blocks.Keys()
	names := make([]string, len(keys))
	for i, k := range keys {
		names[i] = k.Name
	}
	return names
}

func (s *SymGen) Clone() *SymGen {
	return &SymGen{blocks: *s.blocks.Clone((*Block).Clone)}
}

// Init assigns ranks to every ordered identifier in the tree and sorts the
// ordered containers accordingly: blocks keep their current order and
// version maps follow the version list of their block. Loaded subregions
// are initialized recursively. Init must run after the tree is built and
// after every merge.
func (s *SymGen) Init() {
	s.blocks.InitRanks(ordered.RanksOf(s.blocks.Keys()))
	for _, b := range s.blocks.All() {
		b.init()
	}
}

// Sort orders the symbols of every block, including loaded subregions, by
// address.
func (s *SymGen) Sort() {
	for _, b := range s.blocks.All() {
		b.Sort()
		for _, sub := range b.Subregions {
			if sub.Contents != nil {
				sub.Contents.Sort()
			}
		}
	}
}
