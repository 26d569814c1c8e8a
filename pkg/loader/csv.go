package loader

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/samber/lo"

	"github.com/grafana/symgen/pkg/iter"
	"github.com/grafana/symgen/pkg/symgen"
)

const (
	columnName        = "name"
	columnAddress     = "address"
	columnLength      = "length"
	columnDescription = "description"
	columnAliases     = "aliases"
	columnType        = "type"
	columnBlock       = "block"
	columnVersion     = "version"
)

var (
	requiredColumns = []string{columnName, columnAddress}
	knownColumns    = []string{
		columnName, columnAddress, columnLength, columnDescription,
		columnAliases, columnType, columnBlock, columnVersion,
	}
)

type csvIterator struct {
	r       *csv.Reader
	params  LoadParams
	columns map[string]int
	cur     symgen.AddSymbol
	err     error
}

// CSV reads symbols from CSV records, one per row. The first row names the
// columns, in any order and case: name and address are required; length,
// description, aliases (separated by ";"), type, block and version are
// optional. Empty cells take their value from params.
func CSV(r io.Reader, params LoadParams) iter.Iterator[symgen.AddSymbol] {
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true
	cr.FieldsPerRecord = -1
	return &csvIterator{r: cr, params: params}
}

func (i *csvIterator) Next() bool {
	if i.err != nil {
		return false
	}
	if i.columns == nil {
		if i.err = i.readHeader(); i.err != nil {
			return false
		}
	}
	rec, err := i.r.Read()
	if errors.Is(err, io.EOF) {
		return false
	}
	if err != nil {
		i.err = errors.Wrap(err, "reading csv")
		return false
	}
	line, _ := i.r.FieldPos(0)
	add, err := i.parse(rec)
	if err != nil {
		i.err = errors.Wrapf(err, "line %d", line)
		return false
	}
	i.cur = add
	return true
}

func (i *csvIterator) readHeader() error {
	header, err := i.r.Read()
	if errors.Is(err, io.EOF) {
		return errors.New("missing csv header")
	}
	if err != nil {
		return errors.Wrap(err, "reading csv header")
	}
	columns := make(map[string]int, len(header))
	for idx, name := range header {
		name = strings.ToLower(strings.TrimSpace(name))
		if !lo.Contains(knownColumns, name) {
			return errors.Errorf("unknown csv column %q", name)
		}
		if _, ok := columns[name]; ok {
			return errors.Errorf("duplicate csv column %q", name)
		}
		columns[name] = idx
	}
	for _, name := range requiredColumns {
		if _, ok := columns[name]; !ok {
			return errors.Errorf("missing csv column %q", name)
		}
	}
	i.columns = columns
	return nil
}

func (i *csvIterator) field(rec []string, column string) string {
	idx, ok := i.columns[column]
	if !ok || idx >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[idx])
}

func parseUint(column, s string) (uint64, error) {
	v, err := strconv.ParseUint(s, 0, 64)
	if err != nil {
		return 0, errors.Errorf("invalid %s %q", column, s)
	}
	return v, nil
}

func (i *csvIterator) parse(rec []string) (symgen.AddSymbol, error) {
	add := symgen.AddSymbol{
		Type:      i.params.DefaultSymbolType,
		BlockName: i.params.DefaultBlockName,
	}
	s := &add.Symbol
	s.Name = i.field(rec, columnName)
	if s.Name == "" {
		return add, errors.New("missing symbol name")
	}
	s.Description = i.field(rec, columnDescription)
	if aliases := i.field(rec, columnAliases); aliases != "" {
		s.Aliases = lo.Compact(lo.Map(strings.Split(aliases, ";"), func(a string, _ int) string {
			return strings.TrimSpace(a)
		}))
	}
	if t := i.field(rec, columnType); t != "" {
		typ, err := symgen.ParseSymbolType(strings.ToLower(t))
		if err != nil {
			return add, err
		}
		add.Type = typ
	}
	if b := i.field(rec, columnBlock); b != "" {
		add.BlockName = b
	}
	version := i.field(rec, columnVersion)
	if version == "" {
		version = i.params.DefaultVersionName
	}

	a := i.field(rec, columnAddress)
	if a == "" {
		return add, errors.Errorf("missing address for symbol %q", s.Name)
	}
	addr, err := parseUint(columnAddress, a)
	if err != nil {
		return add, err
	}
	s.Address = versioned(version, symgen.Single(addr))

	if l := i.field(rec, columnLength); l != "" {
		length, err := parseUint(columnLength, l)
		if err != nil {
			return add, err
		}
		s.Length = versioned(version, symgen.Uint(length))
	}
	return add, nil
}

func versioned[T symgen.Value[T]](version string, v T) symgen.MaybeVersionDep[T] {
	if version == "" {
		return symgen.NewCommon(v)
	}
	return symgen.VersionMapOf(symgen.At(version, v))
}

func (i *csvIterator) At() symgen.AddSymbol { return i.cur }
func (i *csvIterator) Err() error            { return i.err }
func (i *csvIterator) Close() error          { return nil }
