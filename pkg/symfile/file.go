package symfile

import (
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/afero"

	"github.com/grafana/symgen/pkg/symgen"
)

// LoadOptions control how a symbol table file is loaded.
type LoadOptions struct {
	// Recursive loads the contents of every subregion file below the table.
	Recursive bool
}

// ReadFile decodes the symbol table file at path. Subregions are left
// unloaded.
func ReadFile(fs afero.Fs, path string) (*symgen.SymGen, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}
	defer f.Close()
	table, err := Decode(f)
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	return table, nil
}

// Load reads the symbol table at path, and its subregions when recursive.
func Load(fs afero.Fs, path string, opts LoadOptions) (*symgen.SymGen, error) {
	table, err := ReadFile(fs, path)
	if err != nil {
		return nil, err
	}
	if !opts.Recursive {
		return table, nil
	}
	if err = LoadSubregions(fs, path, table); err != nil {
		return nil, err
	}
	return table, nil
}

// LoadSubregions loads the unloaded subregions of the table stored at path,
// depth first.
func LoadSubregions(fs afero.Fs, path string, table *symgen.SymGen) error {
	for _, b := range table.Blocks() {
		for _, sub := range b.Subregions {
			if err := loadSubregion(fs, symgen.SubregionPath(path, sub.Name), sub); err != nil {
				return errors.Wrapf(err, "subregion %q", sub.Name)
			}
		}
	}
	table.Init()
	return nil
}

func loadSubregion(fs afero.Fs, path string, sub *symgen.Subregion) error {
	if sub.Contents == nil {
		contents, err := ReadFile(fs, path)
		if err != nil {
			return err
		}
		sub.Contents = contents
	}
	return LoadSubregions(fs, path, sub.Contents)
}

// WriteFile encodes the table to path, creating missing directories.
// Subregion contents are not written.
func WriteFile(fs afero.Fs, path string, table *symgen.SymGen, opts Options) error {
	data, err := Marshal(table, opts)
	if err != nil {
		return errors.Wrap(err, path)
	}
	if err = fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrapf(err, "creating directory for %s", path)
	}
	return afero.WriteFile(fs, path, data, 0o644)
}

// Store writes the table to path and every loaded subregion to its own
// file.
func Store(fs afero.Fs, path string, table *symgen.SymGen, opts Options) error {
	it := symgen.DepthFirst(path, table)
	for it.Next() {
		c := it.At()
		if err := WriteFile(fs, c.Path, c.Table, opts); err != nil {
			_ = it.Close()
			return err
		}
	}
	return it.Close()
}
