package checks

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/samber/lo"

	"github.com/grafana/symgen/pkg/symgen"
)

const (
	NameCompleteVersionList = "complete_version_list"
	NameExplicitVersions    = "explicit_versions"
	NameNonEmptyMaps        = "nonempty_maps"
	NameUniqueSymbols       = "unique_symbols"
	NameInBounds            = "in_bounds"
	NameNoOverlap           = "no_overlap"
	NameSubregionPaths      = "subregion_paths"
	NameFunctionNames       = "function_names"
	NameDataNames           = "data_names"
)

// Result is the outcome of one check over a whole tree.
type Result struct {
	Check     string
	Succeeded bool
	// Details holds one message per failure.
	Details []string
}

// Check validates a symbol table without modifying it.
type Check struct {
	Name string
	run  func(r *reporter, c symgen.Cursor)
}

// reporter collects the failures of a check.
type reporter struct {
	path string
	errs *multierror.Error
}

func (r *reporter) failf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if r.path != "" {
		msg = r.path + ": " + msg
	}
	r.errs = multierror.Append(r.errs, errors.New(msg))
}

// Run applies the check to the table stored at path and every loaded
// subregion below it. Every failure is reported.
func (c Check) Run(path string, table *symgen.SymGen) Result {
	r := &reporter{}
	it := symgen.BreadthFirst(path, table)
	for it.Next() {
		cur := it.At()
		r.path = cur.Path
		c.run(r, cur)
	}
	_ = it.Close()

	result := Result{Check: c.Name, Succeeded: r.errs.ErrorOrNil() == nil}
	if r.errs != nil {
		result.Details = lo.Map(r.errs.Errors, func(err error, _ int) string {
			return err.Error()
		})
	}
	return result
}

// Options configure the checks that take parameters.
type Options struct {
	FunctionNames NamingConvention
	DataNames     NamingConvention
}

func DefaultOptions() Options {
	return Options{
		FunctionNames: SnakeCase,
		DataNames:     ScreamingSnakeCase,
	}
}

// Names lists every check in the order they run.
func Names() []string {
	return []string{
		NameCompleteVersionList,
		NameExplicitVersions,
		NameNonEmptyMaps,
		NameUniqueSymbols,
		NameInBounds,
		NameNoOverlap,
		NameSubregionPaths,
		NameFunctionNames,
		NameDataNames,
	}
}

func ByName(name string, opts Options) (Check, error) {
	switch name {
	case NameCompleteVersionList:
		return CompleteVersionList(), nil
	case NameExplicitVersions:
		return ExplicitVersions(), nil
	case NameNonEmptyMaps:
		return NonEmptyMaps(), nil
	case NameUniqueSymbols:
		return UniqueSymbols(), nil
	case NameInBounds:
		return InBounds(), nil
	case NameNoOverlap:
		return NoOverlap(), nil
	case NameSubregionPaths:
		return SubregionPaths(), nil
	case NameFunctionNames:
		return FunctionNames(opts.FunctionNames), nil
	case NameDataNames:
		return DataNames(opts.DataNames), nil
	}
	return Check{}, errors.Errorf("unknown check %q", name)
}

// All returns every check.
func All(opts Options) []Check {
	return lo.Map(Names(), func(name string, _ int) Check {
		c, _ := ByName(name, opts)
		return c
	})
}

// Run applies every check to the tree.
func Run(path string, table *symgen.SymGen, checks []Check) []Result {
	return lo.Map(checks, func(c Check, _ int) Result {
		return c.Run(path, table)
	})
}

// Err combines the failures of the results, or returns nil when every
// check succeeded.
func Err(results []Result) error {
	var result error
	for _, r := range results {
		if r.Succeeded {
			continue
		}
		for _, d := range r.Details {
			result = multierror.Append(result, errors.Errorf("%s: %s", r.Check, d))
		}
	}
	return result
}
