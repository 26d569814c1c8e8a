package symgen

import (
	"strings"

	"github.com/grafana/symgen/pkg/ordered"
)

// Version names one release of the binary. Versions compare equal by name;
// their rank only affects iteration order within ordered containers.
type Version = ordered.ID

func NewVersion(name string) Version {
	return ordered.NewID(name)
}

// NewVersions is a shorthand for a list of unranked versions.
func NewVersions(names ...string) []Version {
	versions := make([]Version, len(names))
	for i, name := range names {
		versions[i] = NewVersion(name)
	}
	return versions
}

// VersionNames returns the names of the given versions.
func VersionNames(versions []Version) []string {
	names := make([]string, len(versions))
	for i, v := range versions {
		names[i] = v.Name
	}
	return names
}

func containsVersion(versions []Version, name string) bool {
	for _, v := range versions {
		if v.Name == name {
			return true
		}
	}
	return false
}

// addsVersions reports whether extra holds a version missing from base.
func addsVersions(base, extra []Version) bool {
	for _, v := range extra {
		if !containsVersion(base, v.Name) {
			return true
		}
	}
	return false
}

// MaybeVersionDep is a value that is either shared by every version
// (Common) or given per version (*VersionMap). No other implementations
// exist.
type MaybeVersionDep[T Value[T]] interface {
	// Get returns the value for the named version. Common values are valid
	// for every version.
	Get(version string) (T, bool)
	// Versions returns the versions with an explicit value, in order. It is
	// empty for Common values.
	Versions() []Version
	Clone() MaybeVersionDep[T]
	String() string

	maybeVersionDep()
}

// Common is a value valid for every version.
type Common[T Value[T]] struct {
	Value T
}

func NewCommon[T Value[T]](v T) Common[T] {
	return Common[T]{Value: v}
}

func (c Common[T]) Get(string) (T, bool) {
	return c.Value, true
}

func (Common[T]) Versions() []Version {
	return nil
}

func (c Common[T]) Clone() MaybeVersionDep[T] {
	return c
}

func (c Common[T]) String() string {
	return valueString(c.Value)
}

func (Common[T]) maybeVersionDep() {}

// VersionMap holds one value per version, in version rank order once
// initialized.
type VersionMap[T Value[T]] struct {
	m ordered.Map[T]
}

func NewVersionMap[T Value[T]]() *VersionMap[T] {
	return &VersionMap[T]{}
}

// VersionMapOf builds a map holding the given entries in order.
func VersionMapOf[T Value[T]](entries ...VersionEntry[T]) *VersionMap[T] {
	vm := NewVersionMap[T]()
	for _, e := range entries {
		vm.Set(e.Version, e.Value)
	}
	return vm
}

// VersionEntry is one entry of a VersionMap.
type VersionEntry[T Value[T]] struct {
	Version Version
	Value   T
}

// At is a shorthand for a VersionEntry of an unranked version.
func At[T Value[T]](version string, v T) VersionEntry[T] {
	return VersionEntry[T]{Version: NewVersion(version), Value: v}
}

func (vm *VersionMap[T]) Len() int {
	return vm.m.Len()
}

func (vm *VersionMap[T]) Get(version string) (T, bool) {
	return vm.m.Get(version)
}

// Set stores a value for the version. An existing entry for the same
// version name keeps its position.
func (vm *VersionMap[T]) Set(version Version, v T) {
	vm.m.Set(version, v)
}

func (vm *VersionMap[T]) Versions() []Version {
	return vm.m.Keys()
}

func (vm *VersionMap[T]) Entries() []VersionEntry[T] {
	entries := make([]VersionEntry[T], 0, vm.m.Len())
	for k, v := range vm.m.All() {
		entries = append(entries, VersionEntry[T]{Version: k, Value: v})
	}
	return entries
}

func (vm *VersionMap[T]) Clone() MaybeVersionDep[T] {
	return vm.clone()
}

func (vm *VersionMap[T]) clone() *VersionMap[T] {
	return &VersionMap[T]{m: *vm.m.Clone(nil)}
}

func (vm *VersionMap[T]) String() string {
	var sb strings.Builder
	sb.WriteString("{")
	for i, e := range vm.Entries() {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(e.Version.Name)
		sb.WriteString(": ")
		sb.WriteString(valueString(e.Value))
	}
	sb.WriteString("}")
	return sb.String()
}

func (*VersionMap[T]) maybeVersionDep() {}

// initRanks applies the version rank table and re-sorts the entries.
func (vm *VersionMap[T]) initRanks(ranks ordered.RankTable) {
	vm.m.InitRanks(ranks)
}

// uniform returns the value shared by every entry, if they are all equal.
func (vm *VersionMap[T]) uniform() (T, bool) {
	var shared T
	for i, e := range vm.Entries() {
		if i == 0 {
			shared = e.Value
			continue
		}
		if !shared.Equal(e.Value) {
			return shared, false
		}
	}
	return shared, vm.Len() > 0
}

// Compare orders two maps lexicographically over their entries. At the
// first version where they differ, the map missing the version sorts last.
func (vm *VersionMap[T]) Compare(other *VersionMap[T]) int {
	for _, v := range unionVersions(vm.Versions(), other.Versions()) {
		a, aok := vm.Get(v.Name)
		b, bok := other.Get(v.Name)
		switch {
		case aok && bok:
			if c := a.Compare(b); c != 0 {
				return c
			}
		case aok:
			return -1
		case bok:
			return 1
		}
	}
	return 0
}

// unionVersions merges two version lists in rank order, without duplicates.
func unionVersions(a, b []Version) []Version {
	union := make([]Version, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) || j < len(b) {
		var next Version
		switch {
		case j >= len(b) || (i < len(a) && a[i].Compare(b[j]) <= 0):
			next = a[i]
			i++
		default:
			next = b[j]
			j++
		}
		if !containsVersion(union, next.Name) {
			union = append(union, next)
		}
	}
	return union
}

// appendVersions appends the versions of extra that are missing from base.
func appendVersions(base []Version, extra ...[]Version) []Version {
	result := append([]Version(nil), base...)
	for _, list := range extra {
		for _, v := range list {
			if !containsVersion(result, v.Name) {
				result = append(result, v)
			}
		}
	}
	return result
}

// CompareMaybe orders two possibly version-dependent values. Mixed values
// compare the common value against the first entry of the map, with the
// common value first on ties.
func CompareMaybe[T Value[T]](a, b MaybeVersionDep[T]) int {
	switch a := a.(type) {
	case Common[T]:
		switch b := b.(type) {
		case Common[T]:
			return a.Value.Compare(b.Value)
		case *VersionMap[T]:
			if b.Len() == 0 {
				return -1
			}
			if c := a.Value.Compare(b.m.At(0).Value); c != 0 {
				return c
			}
			return -1
		}
	case *VersionMap[T]:
		switch b := b.(type) {
		case Common[T]:
			return -CompareMaybe[T](b, a)
		case *VersionMap[T]:
			return a.Compare(b)
		}
	}
	return 0
}

// Expand turns a common value into a map holding the value at each of the
// given versions. Version maps, and any value when versions is empty, are
// returned as clones.
func Expand[T Value[T]](m MaybeVersionDep[T], versions []Version) MaybeVersionDep[T] {
	if m == nil {
		return nil
	}
	c, ok := m.(Common[T])
	if !ok || len(versions) == 0 {
		return m.Clone()
	}
	vm := NewVersionMap[T]()
	for _, v := range versions {
		vm.Set(v, c.Value)
	}
	return vm
}

// HasVersion reports whether the value is defined for the version.
func HasVersion[T Value[T]](m MaybeVersionDep[T], version string) bool {
	if m == nil {
		return false
	}
	_, ok := m.Get(version)
	return ok
}

func valueString(v any) string {
	if s, ok := v.(interface{ String() string }); ok {
		return s.String()
	}
	return "?"
}
