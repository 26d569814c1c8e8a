package symgen

import (
	"cmp"
	"fmt"
	"math/bits"
	"slices"
)

// Extent is an address with an optional length. Extents without a length
// are single points when checked against a bound, and unbounded above when
// used as a bound.
type Extent struct {
	Address   uint64
	Length    uint64
	HasLength bool
}

func Point(addr uint64) Extent {
	return Extent{Address: addr}
}

func Span(addr, length uint64) Extent {
	return Extent{Address: addr, Length: length, HasLength: true}
}

func (e Extent) String() string {
	if !e.HasLength {
		return fmt.Sprintf("%#x", e.Address)
	}
	return fmt.Sprintf("%#x..%#x", e.Address, e.Address+e.Length)
}

// end returns the exclusive end of the extent as a 65-bit value.
func (e Extent) end() (hi, lo uint64) {
	lo, hi = bits.Add64(e.Address, e.Length, 0)
	return hi, lo
}

// Last returns the last address covered by the extent, saturating at the
// top of the address space. Extents without a length cover one address;
// empty extents report their own address.
func (e Extent) Last() uint64 {
	if !e.HasLength || e.Length == 0 {
		return e.Address
	}
	hi, lo := e.end()
	if hi != 0 {
		return ^uint64(0)
	}
	return lo - 1
}

func cmpEnd(ahi, alo, bhi, blo uint64) int {
	if c := cmp.Compare(ahi, bhi); c != 0 {
		return c
	}
	return cmp.Compare(alo, blo)
}

// Contains reports whether extent lies inside bound.
func Contains(extent, bound Extent) bool {
	if extent.Address < bound.Address {
		return false
	}
	if !bound.HasLength {
		return true
	}
	bhi, blo := bound.end()
	if cmpEnd(0, extent.Address, bhi, blo) >= 0 {
		return false
	}
	if extent.HasLength {
		ehi, elo := extent.end()
		if cmpEnd(ehi, elo, bhi, blo) > 0 {
			return false
		}
	}
	return true
}

// Overlaps reports whether two extents share at least one address. Extents
// without a length occupy a single address.
func Overlaps(a, b Extent) bool {
	if !a.HasLength {
		a.Length, a.HasLength = 1, true
	}
	if !b.HasLength {
		b.Length, b.HasLength = 1, true
	}
	if a.Length == 0 || b.Length == 0 {
		return false
	}
	ahi, alo := a.end()
	bhi, blo := b.end()
	return cmpEnd(0, a.Address, bhi, blo) < 0 && cmpEnd(0, b.Address, ahi, alo) < 0
}

func (e Extent) Merge(other Extent) (Extent, error) {
	if e != other {
		return e, newConflict("conflicting extents %s and %s", e, other)
	}
	return e, nil
}

func (e Extent) Compare(other Extent) int {
	if c := cmp.Compare(e.Address, other.Address); c != 0 {
		return c
	}
	if e.HasLength != other.HasLength {
		if e.HasLength {
			return 1
		}
		return -1
	}
	return cmp.Compare(e.Length, other.Length)
}

func (e Extent) Equal(other Extent) bool {
	return e == other
}

// Extents is the realized extent of every address of a symbol.
type Extents []Extent

func (e Extents) Merge(other Extents) (Extents, error) {
	merged := slices.Clone(e)
	for _, x := range other {
		if !slices.Contains(merged, x) {
			merged = append(merged, x)
		}
	}
	return merged, nil
}

func (e Extents) Compare(other Extents) int {
	return slices.CompareFunc(e, other, Extent.Compare)
}

func (e Extents) Equal(other Extents) bool {
	return slices.Equal(e, other)
}

func (e Extents) String() string {
	return fmt.Sprint([]Extent(e))
}

// BoundViolation describes a symbol extent found outside its bound.
type BoundViolation struct {
	// Version is empty when the violation applies to every version.
	Version string
	Bound   Extent
	Extent  Extent
}

func (v *BoundViolation) String() string {
	if v.Version == "" {
		return fmt.Sprintf("extent %s is outside of %s", v.Extent, v.Bound)
	}
	return fmt.Sprintf("extent %s is outside of %s in version %q", v.Extent, v.Bound, v.Version)
}

// SymbolInBounds checks every extent of the symbol against the bound for
// the same version, and returns the first violation found, or nil. A common
// bound applies to every version. Versions of the symbol missing from a
// version-dependent bound are not checked. all is the list of versions
// common values are realized against.
func SymbolInBounds(bound MaybeVersionDep[Extent], sym *Symbol, all []Version) *BoundViolation {
	if bound == nil || sym.Address == nil {
		return nil
	}
	extents := sym.Extents(all)
	switch b := bound.(type) {
	case Common[Extent]:
		switch e := extents.(type) {
		case Common[Extents]:
			return firstViolation("", b.Value, e.Value)
		case *VersionMap[Extents]:
			for _, entry := range e.Entries() {
				if v := firstViolation(entry.Version.Name, b.Value, entry.Value); v != nil {
					return v
				}
			}
		}
	case *VersionMap[Extent]:
		switch e := extents.(type) {
		case Common[Extents]:
			for _, entry := range b.Entries() {
				if v := firstViolation(entry.Version.Name, entry.Value, e.Value); v != nil {
					return v
				}
			}
		case *VersionMap[Extents]:
			for _, entry := range e.Entries() {
				bv, ok := b.Get(entry.Version.Name)
				if !ok {
					continue
				}
				if v := firstViolation(entry.Version.Name, bv, entry.Value); v != nil {
					return v
				}
			}
		}
	}
	return nil
}

func firstViolation(version string, bound Extent, extents Extents) *BoundViolation {
	for _, e := range extents {
		if !Contains(e, bound) {
			return &BoundViolation{Version: version, Bound: bound, Extent: e}
		}
	}
	return nil
}
