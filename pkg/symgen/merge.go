package symgen

import (
	"github.com/dolthub/swiss"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"
)

func loggerOrNop(logger log.Logger) log.Logger {
	if logger == nil {
		return log.NewNopLogger()
	}
	return logger
}

// Merge folds other into the map. Values of versions already present are
// merged recursively; new versions are appended. Entries are never dropped.
func (vm *VersionMap[T]) Merge(other *VersionMap[T]) error {
	for _, e := range other.Entries() {
		existing, ok := vm.m.Key(e.Version.Name)
		if !ok {
			vm.Set(e.Version, e.Value)
			continue
		}
		cur, _ := vm.Get(e.Version.Name)
		merged, err := cur.Merge(e.Value)
		if err != nil {
			return errors.Wrapf(err, "version %q", e.Version.Name)
		}
		vm.Set(existing, merged)
	}
	return nil
}

// MergeMaybe merges other into self and returns the result, which replaces
// self. Version maps are merged in place.
//
// The cases are asymmetric: a common value absorbs a version map holding the same value at
// every version, and is otherwise expanded into a version map. A common
// value merged into a version map is checked against every existing version;
// versions unknown to the map are not covered, which is logged as a warning.
//
// Either side may be nil, meaning the value is absent.
func MergeMaybe[T Value[T]](logger log.Logger, self, other MaybeVersionDep[T]) (MaybeVersionDep[T], error) {
	if other == nil {
		return self, nil
	}
	if self == nil {
		return other.Clone(), nil
	}
	switch s := self.(type) {
	case Common[T]:
		switch o := other.(type) {
		case Common[T]:
			v, err := s.Value.Merge(o.Value)
			if err != nil {
				return self, err
			}
			return NewCommon(v), nil
		case *VersionMap[T]:
			if o.Len() == 0 {
				return self, nil
			}
			if shared, ok := o.uniform(); ok {
				v, err := s.Value.Merge(shared)
				if err != nil {
					return self, err
				}
				return NewCommon(v), nil
			}
			return MergeMaybe[T](logger, o.clone(), s)
		}
	case *VersionMap[T]:
		switch o := other.(type) {
		case Common[T]:
			if s.Len() == 0 {
				return o, nil
			}
			level.Warn(loggerOrNop(logger)).Log(
				"msg", "merging common value into version-dependent value, implicit versions may be lost",
				"value", o.String(),
				"versions", s.String(),
			)
			for _, e := range s.Entries() {
				merged, err := e.Value.Merge(o.Value)
				if err != nil {
					return self, errors.Wrapf(err, "version %q", e.Version.Name)
				}
				s.Set(e.Version, merged)
			}
			return s, nil
		case *VersionMap[T]:
			return s, s.Merge(o)
		}
	}
	return self, errors.Errorf("unexpected value types %T and %T", self, other)
}

// Merge folds other into the symbol. The symbols must share at least one
// name. Names of other that s doesn't carry yet become aliases.
func (s *Symbol) Merge(logger log.Logger, other *Symbol) error {
	shared := false
	for name := range other.Names() {
		if s.HasName(name) {
			shared = true
			break
		}
	}
	if !shared {
		return newConflict("symbols %q and %q have no name in common", s.Name, other.Name)
	}
	if err := mergeDescription(&s.Description, other.Description); err != nil {
		return errors.Wrap(err, "description")
	}

	var err error
	if s.Address, err = MergeMaybe(logger, s.Address, other.Address); err != nil {
		return errors.Wrap(err, "address")
	}
	if s.Length, err = MergeMaybe(logger, s.Length, other.Length); err != nil {
		return errors.Wrap(err, "length")
	}
	for name := range other.Names() {
		if !s.HasName(name) {
			s.Aliases = append(s.Aliases, name)
		}
	}
	return nil
}

func mergeDescription(self *string, other string) error {
	switch {
	case other == "":
	case *self == "":
		*self = other
	case *self != other:
		return descriptionConflict(*self, other)
	}
	return nil
}

// nameIndex maps every name of a symbol list to the index of the symbol
// carrying it. It holds indexes, not pointers, so it stays valid while the
// list grows; it must only ever be used with the list it was built from.
type nameIndex struct {
	names *swiss.Map[string, int]
}

func newNameIndex(list SymbolList) *nameIndex {
	x := &nameIndex{names: swiss.NewMap[string, int](uint32(len(list)))}
	// Primary names take precedence over aliases.
	for i := range list {
		x.put(list[i].Name, i)
	}
	for i := range list {
		for _, a := range list[i].Aliases {
			x.put(a, i)
		}
	}
	return x
}

// put records the name unless it is already taken.
func (x *nameIndex) put(name string, i int) {
	if !x.names.Has(name) {
		x.names.Put(name, i)
	}
}

func (x *nameIndex) add(s *Symbol, i int) {
	for name := range s.Names() {
		x.put(name, i)
	}
}

// lookup returns the index of the first symbol sharing a name with s.
func (x *nameIndex) lookup(s *Symbol) (int, bool) {
	for name := range s.Names() {
		if i, ok := x.names.Get(name); ok {
			return i, true
		}
	}
	return -1, false
}

// Merge folds other into the list. Symbols sharing a name with an existing
// symbol are expanded to versions and merged into it; the others are
// appended.
func (l *SymbolList) Merge(logger log.Logger, other SymbolList, versions []Version) error {
	return l.merge(logger, newNameIndex(*l), other, versions)
}

func (l *SymbolList) merge(logger log.Logger, index *nameIndex, other SymbolList, versions []Version) error {
	for i := range other {
		if err := l.mergeSymbol(logger, index, &other[i], versions); err != nil {
			return err
		}
	}
	return nil
}

func (l *SymbolList) mergeSymbol(logger log.Logger, index *nameIndex, sym *Symbol, versions []Version) error {
	i, ok := index.lookup(sym)
	if !ok {
		*l = append(*l, sym.Clone())
		index.add(&(*l)[len(*l)-1], len(*l)-1)
		return nil
	}
	incoming := expandSymbol(sym, versions)
	if err := (*l)[i].Merge(logger, &incoming); err != nil {
		return errors.Wrapf(err, "symbol %q", (*l)[i].Name)
	}
	index.add(&(*l)[i], i)
	return nil
}

// expandSymbol returns a copy of the symbol with common fields expanded to
// the versions.
func expandSymbol(s *Symbol, versions []Version) Symbol {
	c := s.Clone()
	if len(versions) > 0 {
		c.Address = Expand(c.Address, versions)
		c.Length = Expand(c.Length, versions)
	}
	return c
}

// Merge folds other into the block.
func (b *Block) Merge(logger log.Logger, other *Block) error {
	if err := mergeDescription(&b.Description, other.Description); err != nil {
		return errors.Wrap(err, "description")
	}

	// Once the version lists are merged, common values of b would be
	// broadcast to versions they were never checked against.
	if b.Versions != nil && addsVersions(b.Versions, other.Versions) {
		b.Address = Expand(b.Address, b.Versions)
		b.Length = Expand(b.Length, b.Versions)
	}
	realizeAgainst := other.Versions
	if realizeAgainst == nil {
		realizeAgainst = b.Versions
	}
	if other.Versions != nil {
		b.Versions = appendVersions(b.Versions, other.Versions)
	}

	for _, sub := range other.Subregions {
		existing, ok := b.Subregion(sub.Name)
		if !ok {
			b.Subregions = append(b.Subregions, sub.Clone())
			continue
		}
		if err := existing.Merge(logger, sub); err != nil {
			return errors.Wrapf(err, "subregion %q", sub.Name)
		}
	}

	var err error
	if b.Address, err = MergeMaybe(logger, b.Address, Expand(other.Address, realizeAgainst)); err != nil {
		return errors.Wrap(err, "address")
	}
	if b.Length, err = MergeMaybe(logger, b.Length, Expand(other.Length, realizeAgainst)); err != nil {
		return errors.Wrap(err, "length")
	}
	if err = b.Functions.Merge(logger, other.Functions, realizeAgainst); err != nil {
		return errors.Wrap(err, "functions")
	}
	if err = b.Data.Merge(logger, other.Data, realizeAgainst); err != nil {
		return errors.Wrap(err, "data")
	}
	return nil
}

// Merge folds other into the subregion. An unloaded subregion adopts the
// contents of other.
func (s *Subregion) Merge(logger log.Logger, other *Subregion) error {
	if s.Name != other.Name {
		return newConflict("subregion names %q and %q differ", s.Name, other.Name)
	}
	if other.Contents == nil {
		return nil
	}
	if s.Contents == nil {
		s.Contents = other.Contents.Clone()
		return nil
	}
	return s.Contents.Merge(logger, other.Contents)
}

// Merge folds every block of other into the table, inserting the blocks s
// doesn't have, then re-initializes the table. If an error is returned the
// table is left partially merged and must be discarded.
func (s *SymGen) Merge(logger log.Logger, other *SymGen) error {
	for name, ob := range other.Blocks() {
		b, ok := s.Block(name)
		if !ok {
			s.Insert(name, ob.Clone())
			continue
		}
		if err := b.Merge(logger, ob); err != nil {
			return errors.Wrapf(err, "block %q", name)
		}
	}
	s.Init()
	return nil
}
