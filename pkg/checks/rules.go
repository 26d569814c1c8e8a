package checks

import (
	"cmp"
	"fmt"
	"path"
	"slices"
	"strings"

	"github.com/grafana/regexp"
	"github.com/samber/lo"

	"github.com/grafana/symgen/pkg/symgen"
)

func symbolKinds() []symgen.SymbolType {
	return []symgen.SymbolType{symgen.Function, symgen.Data}
}

// CompleteVersionList requires blocks with version-dependent values to
// declare their versions.
func CompleteVersionList() Check {
	return Check{Name: NameCompleteVersionList, run: func(r *reporter, c symgen.Cursor) {
		for name, b := range c.Table.Blocks() {
			if b.Versions == nil && len(b.UsedVersions()) > 0 {
				r.failf("block %q: version-dependent values without a version list", name)
			}
		}
	}}
}

// ExplicitVersions requires every version in use to be declared by the
// block.
func ExplicitVersions() Check {
	return Check{Name: NameExplicitVersions, run: func(r *reporter, c symgen.Cursor) {
		for name, b := range c.Table.Blocks() {
			if b.Versions == nil {
				continue
			}
			declared := symgen.VersionNames(b.Versions)
			for _, v := range b.UsedVersions() {
				if !lo.Contains(declared, v.Name) {
					r.failf("block %q: version %q is not declared", name, v.Name)
				}
			}
		}
	}}
}

func isEmptyMap[T symgen.Value[T]](m symgen.MaybeVersionDep[T]) bool {
	vm, ok := m.(*symgen.VersionMap[T])
	return ok && vm.Len() == 0
}

// NonEmptyMaps rejects version maps without entries.
func NonEmptyMaps() Check {
	return Check{Name: NameNonEmptyMaps, run: func(r *reporter, c symgen.Cursor) {
		for name, b := range c.Table.Blocks() {
			if isEmptyMap(b.Address) {
				r.failf("block %q: empty address map", name)
			}
			if isEmptyMap(b.Length) {
				r.failf("block %q: empty length map", name)
			}
			for _, t := range symbolKinds() {
				for _, s := range *b.Symbols(t) {
					if isEmptyMap(s.Address) {
						r.failf("block %q: %s %q: empty address map", name, t, s.Name)
					}
					if isEmptyMap(s.Length) {
						r.failf("block %q: %s %q: empty length map", name, t, s.Name)
					}
				}
			}
		}
	}}
}

// UniqueSymbols requires names and aliases to be unique within the
// functions, and within the data, of each block.
func UniqueSymbols() Check {
	return Check{Name: NameUniqueSymbols, run: func(r *reporter, c symgen.Cursor) {
		for name, b := range c.Table.Blocks() {
			for _, t := range symbolKinds() {
				owners := make(map[string]string)
				for _, s := range *b.Symbols(t) {
					for _, n := range lo.Uniq(append([]string{s.Name}, s.Aliases...)) {
						if owner, ok := owners[n]; ok {
							r.failf("block %q: %s name %q is used by both %q and %q", name, t, n, owner, s.Name)
							continue
						}
						owners[n] = s.Name
					}
				}
			}
		}
	}}
}

// InBounds requires every symbol to lie inside its block.
func InBounds() Check {
	return Check{Name: NameInBounds, run: func(r *reporter, c symgen.Cursor) {
		for name, b := range c.Table.Blocks() {
			extent := b.Extent()
			for _, t := range symbolKinds() {
				list := *b.Symbols(t)
				for i := range list {
					if v := symgen.SymbolInBounds(extent, &list[i], b.Versions); v != nil {
						r.failf("block %q: %s %q: %s", name, t, list[i].Name, v)
					}
				}
			}
		}
	}}
}

type placed struct {
	extent symgen.Extent
	name   string
	typ    symgen.SymbolType
}

// NoOverlap rejects symbols of a block sharing addresses in some version.
func NoOverlap() Check {
	return Check{Name: NameNoOverlap, run: func(r *reporter, c symgen.Cursor) {
		for name, b := range c.Table.Blocks() {
			versions := lo.Uniq(append(symgen.VersionNames(b.Versions), symgen.VersionNames(b.UsedVersions())...))
			if len(versions) == 0 {
				// only common values, which every version name resolves
				versions = []string{""}
			}
			for _, version := range versions {
				overlaps(r, name, version, b)
			}
		}
	}}
}

func overlaps(r *reporter, block, version string, b *symgen.Block) {
	var symbols []placed
	for e := range b.Realize(block, version) {
		extent := symgen.Extent{Address: e.Symbol.Address, Length: e.Symbol.Length, HasLength: e.Symbol.HasLength}
		if extent.HasLength && extent.Length == 0 {
			continue
		}
		symbols = append(symbols, placed{extent: extent, name: e.Symbol.Name, typ: e.Type})
	}
	slices.SortStableFunc(symbols, func(a, b placed) int {
		return cmp.Compare(a.extent.Address, b.extent.Address)
	})

	// reach is the symbol reaching the furthest so far
	var reach *placed
	for i := range symbols {
		cur := &symbols[i]
		if reach != nil && symgen.Overlaps(reach.extent, cur.extent) {
			where := ""
			if version != "" {
				where = fmt.Sprintf(" in version %q", version)
			}
			r.failf("block %q: %s %q (%s) overlaps %s %q (%s)%s",
				block, reach.typ, reach.name, reach.extent, cur.typ, cur.name, cur.extent, where)
		}
		if reach == nil || cur.extent.Last() > reach.extent.Last() {
			reach = cur
		}
	}
}

var subregionPattern = regexp.MustCompile(`^[\w.-]+(?:/[\w.-]+)*\.yml$`)

// SubregionPaths requires subregion names to be clean relative paths to
// .yml files, each declared once per table.
func SubregionPaths() Check {
	return Check{Name: NameSubregionPaths, run: func(r *reporter, c symgen.Cursor) {
		seen := make(map[string]string)
		for name, b := range c.Table.Blocks() {
			for _, sub := range b.Subregions {
				switch {
				case !subregionPattern.MatchString(sub.Name):
					r.failf("block %q: subregion %q is not a relative path to a .yml file", name, sub.Name)
				case path.Clean(sub.Name) != sub.Name || slices.Contains(strings.Split(sub.Name, "/"), ".."):
					r.failf("block %q: subregion %q is not a clean path", name, sub.Name)
				}
				if owner, ok := seen[sub.Name]; ok {
					r.failf("block %q: subregion %q is already declared by block %q", name, sub.Name, owner)
					continue
				}
				seen[sub.Name] = name
			}
		}
	}}
}

// FunctionNames requires function names and aliases to follow the
// convention.
func FunctionNames(convention NamingConvention) Check {
	return namingCheck(NameFunctionNames, symgen.Function, convention)
}

// DataNames requires data names and aliases to follow the convention.
func DataNames(convention NamingConvention) Check {
	return namingCheck(NameDataNames, symgen.Data, convention)
}

func namingCheck(checkName string, t symgen.SymbolType, convention NamingConvention) Check {
	return Check{Name: checkName, run: func(r *reporter, c symgen.Cursor) {
		for name, b := range c.Table.Blocks() {
			for _, s := range *b.Symbols(t) {
				for n := range s.Names() {
					if !convention.Matches(n) {
						r.failf("block %q: %s name %q is not %s (try %q)", name, t, n, convention, convention.Suggest(n))
					}
				}
			}
		}
	}}
}
