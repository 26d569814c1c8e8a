package loader

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/grafana/symgen/pkg/iter"
	"github.com/grafana/symgen/pkg/symgen"
)

// LoadParams fill in what the input leaves unspecified.
type LoadParams struct {
	// DefaultBlockName is used for symbols without a block. When empty, the
	// block is inferred from the symbol address.
	DefaultBlockName string
	// DefaultSymbolType is used for symbols without a type.
	DefaultSymbolType symgen.SymbolType
	// DefaultVersionName is used for symbols without a version. When empty,
	// such symbols get common addresses.
	DefaultVersionName string
}

// Format is a symbol input format.
type Format int

const (
	FormatCSV Format = iota
	FormatYAML
)

func (f Format) String() string {
	switch f {
	case FormatCSV:
		return "csv"
	case FormatYAML:
		return "yml"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// Formats lists the supported input formats.
func Formats() []Format {
	return []Format{FormatCSV, FormatYAML}
}

func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "csv":
		return FormatCSV, nil
	case "yml", "yaml":
		return FormatYAML, nil
	}
	return FormatCSV, errors.Errorf("unknown input format %q", s)
}

// FormatOf guesses the format of a file from its extension.
func FormatOf(path string) (Format, error) {
	return ParseFormat(filepath.Ext(path))
}

// Load returns an iterator over the symbols of r.
func (f Format) Load(r io.Reader, params LoadParams) iter.Iterator[symgen.AddSymbol] {
	switch f {
	case FormatCSV:
		return CSV(r, params)
	case FormatYAML:
		return YAML(r, params)
	default:
		return iter.NewErrIterator[symgen.AddSymbol](errors.Errorf("unknown input format %s", f))
	}
}
