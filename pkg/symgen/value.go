package symgen

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
)

// Value is implemented by every type that can be held by a MaybeVersionDep.
type Value[T any] interface {
	// Merge combines two values, returning a *MergeConflict error when
	// they can't be reconciled. Neither operand is modified.
	Merge(other T) (T, error)
	Compare(other T) int
	Equal(other T) bool
}

// Uint is an address or length.
type Uint uint64

func (u Uint) String() string {
	return fmt.Sprintf("%#x", uint64(u))
}

func (u Uint) Merge(other Uint) (Uint, error) {
	if u != other {
		return u, newConflict("conflicting values %s and %s", u, other)
	}
	return u, nil
}

func (u Uint) Compare(other Uint) int {
	return cmp.Compare(u, other)
}

func (u Uint) Equal(other Uint) bool {
	return u == other
}

// Linkable is the address set of a symbol: usually a single address, or
// several when a symbol with internal linkage is defined identically in more
// than one translation unit. Linkable values are immutable.
type Linkable struct {
	addrs    []uint64
	multiple bool
}

func Single(addr uint64) Linkable {
	return Linkable{addrs: []uint64{addr}}
}

// Multiple returns an address set holding the given addresses, without
// duplicates.
func Multiple(addrs ...uint64) Linkable {
	l := Linkable{multiple: true}
	for _, a := range addrs {
		if !slices.Contains(l.addrs, a) {
			l.addrs = append(l.addrs, a)
		}
	}
	return l
}

func (l Linkable) IsMultiple() bool {
	return l.multiple
}

// Addresses returns a copy of the contained addresses.
func (l Linkable) Addresses() []uint64 {
	return slices.Clone(l.addrs)
}

func (l Linkable) Len() int {
	return len(l.addrs)
}

func (l Linkable) Contains(addr uint64) bool {
	return slices.Contains(l.addrs, addr)
}

// Min returns the lowest address in the set.
func (l Linkable) Min() uint64 {
	if len(l.addrs) == 0 {
		return 0
	}
	return slices.Min(l.addrs)
}

// Sorted returns a copy of the set with the addresses in ascending order.
func (l Linkable) Sorted() Linkable {
	s := Linkable{addrs: slices.Clone(l.addrs), multiple: l.multiple}
	slices.Sort(s.addrs)
	return s
}

// Merge folds the addresses of other into the set. It never fails.
func (l Linkable) Merge(other Linkable) (Linkable, error) {
	merged := Linkable{addrs: slices.Clone(l.addrs), multiple: l.multiple}
	for _, a := range other.addrs {
		if !slices.Contains(merged.addrs, a) {
			merged.addrs = append(merged.addrs, a)
		}
	}
	if len(merged.addrs) > 1 {
		merged.multiple = true
	}
	return merged, nil
}

func (l Linkable) Compare(other Linkable) int {
	if c := cmp.Compare(l.Min(), other.Min()); c != 0 {
		return c
	}
	return slices.Compare(l.Sorted().addrs, other.Sorted().addrs)
}

func (l Linkable) Equal(other Linkable) bool {
	return l.multiple == other.multiple && slices.Equal(l.addrs, other.addrs)
}

func (l Linkable) String() string {
	if !l.multiple && len(l.addrs) == 1 {
		return Uint(l.addrs[0]).String()
	}
	parts := make([]string, len(l.addrs))
	for i, a := range l.addrs {
		parts[i] = Uint(a).String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
