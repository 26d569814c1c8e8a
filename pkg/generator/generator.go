package generator

import (
	"bytes"
	"io"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/spf13/afero"

	"github.com/grafana/symgen/pkg/symgen"
)

// Generator writes the symbols of a table realized for one version.
type Generator interface {
	Generate(w io.Writer, table *symgen.SymGen, version string) error
}

// GeneratorFunc adapts a function to the Generator interface.
type GeneratorFunc func(w io.Writer, table *symgen.SymGen, version string) error

func (f GeneratorFunc) Generate(w io.Writer, table *symgen.SymGen, version string) error {
	return f(w, table, version)
}

// Format is a named output format.
type Format struct {
	Name      string
	Extension string
	Generator Generator
}

var formats = []Format{
	{Name: "ghidra", Extension: "ghidra", Generator: GeneratorFunc(Ghidra)},
	{Name: "sym", Extension: "sym", Generator: GeneratorFunc(Sym)},
	{Name: "json", Extension: "json", Generator: GeneratorFunc(JSON)},
}

// Formats lists the supported output formats.
func Formats() []Format {
	return formats
}

// FormatNames returns the names of the supported output formats.
func FormatNames() []string {
	return lo.Map(formats, func(f Format, _ int) string { return f.Name })
}

func ByName(name string) (Format, error) {
	f, ok := lo.Find(formats, func(f Format) bool {
		return f.Name == strings.ToLower(name)
	})
	if !ok {
		return Format{}, errors.Errorf("unknown output format %q", name)
	}
	return f, nil
}

// Versions returns the names of the versions the table knows about: the
// declared versions of every block, then any other version in use, in order
// of first appearance. Loaded subregions are included.
func Versions(table *symgen.SymGen) []string {
	var declared, used []string
	it := symgen.BreadthFirst("", table)
	for it.Next() {
		for _, b := range it.At().Table.Blocks() {
			declared = append(declared, symgen.VersionNames(b.Versions)...)
			used = append(used, symgen.VersionNames(b.UsedVersions())...)
		}
	}
	return lo.Uniq(append(declared, used...))
}

// Path returns where GenerateFile writes the symbols of a version.
func Path(dir, stem, version string, f Format) string {
	return filepath.Join(dir, version, stem+"."+f.Extension)
}

// GenerateFile writes the table in every format and version to
// <dir>/<version>/<stem>.<extension>. Every combination is attempted; the
// errors are combined.
func GenerateFile(fs afero.Fs, dir, stem string, table *symgen.SymGen, versions []string, outputs []Format) error {
	var result error
	for _, version := range versions {
		for _, f := range outputs {
			if err := generateFile(fs, Path(dir, stem, version, f), table, version, f); err != nil {
				result = multierror.Append(result, err)
			}
		}
	}
	return result
}

func generateFile(fs afero.Fs, path string, table *symgen.SymGen, version string, f Format) error {
	var buf bytes.Buffer
	if err := f.Generator.Generate(&buf, table, version); err != nil {
		return errors.Wrapf(err, "generating %s for version %q", f.Name, version)
	}
	if err := fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrapf(err, "creating directory for %s", path)
	}
	if err := afero.WriteFile(fs, path, buf.Bytes(), 0o644); err != nil {
		return errors.Wrapf(err, "writing %s", path)
	}
	return nil
}
