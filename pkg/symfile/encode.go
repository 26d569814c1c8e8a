package symfile

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/grafana/symgen/pkg/symgen"
)

// IntFormat selects how addresses and lengths are written.
type IntFormat int

const (
	Hex IntFormat = iota
	Decimal
)

func (f IntFormat) String() string {
	switch f {
	case Hex:
		return "hex"
	case Decimal:
		return "decimal"
	default:
		return fmt.Sprintf("IntFormat(%d)", int(f))
	}
}

func ParseIntFormat(s string) (IntFormat, error) {
	switch strings.ToLower(s) {
	case "hex", "x", "":
		return Hex, nil
	case "decimal", "dec", "d":
		return Decimal, nil
	}
	return Hex, errors.Errorf("unknown integer format %q", s)
}

// Options control how a table is written.
type Options struct {
	IntFormat IntFormat
}

// Encode writes the table in its current order. Call Sort first for a
// canonical layout.
func Encode(w io.Writer, table *symgen.SymGen, opts Options) error {
	e := encoder{opts: opts}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(e.table(table)); err != nil {
		return errors.Wrap(err, "encoding yaml")
	}
	return enc.Close()
}

// Marshal returns the encoded table.
func Marshal(table *symgen.SymGen, opts Options) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, table, opts); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type encoder struct {
	opts Options
}

func mapping() *yaml.Node {
	return &yaml.Node{Kind: yaml.MappingNode}
}

func add(m *yaml.Node, key string, value *yaml.Node) {
	m.Content = append(m.Content, str(key), value)
}

func str(s string) *yaml.Node {
	n := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
	if strings.Contains(s, "\n") {
		n.Style = yaml.LiteralStyle
	}
	return n
}

func strs(values []string) *yaml.Node {
	n := &yaml.Node{Kind: yaml.SequenceNode}
	for _, v := range values {
		n.Content = append(n.Content, str(v))
	}
	return n
}

func (e encoder) integer(v uint64) *yaml.Node {
	value := strconv.FormatUint(v, 10)
	if e.opts.IntFormat == Hex {
		value = fmt.Sprintf("0x%X", v)
	}
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: value}
}

func (e encoder) number(v symgen.Uint) *yaml.Node {
	return e.integer(uint64(v))
}

// linkable writes a single address as a scalar and address sets as a flow
// sequence.
func (e encoder) linkable(l symgen.Linkable) *yaml.Node {
	addrs := l.Addresses()
	if !l.IsMultiple() && len(addrs) == 1 {
		return e.integer(addrs[0])
	}
	n := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
	for _, a := range addrs {
		n.Content = append(n.Content, e.integer(a))
	}
	return n
}

func maybe[T symgen.Value[T]](m symgen.MaybeVersionDep[T], value func(T) *yaml.Node) *yaml.Node {
	switch m := m.(type) {
	case symgen.Common[T]:
		return value(m.Value)
	case *symgen.VersionMap[T]:
		n := mapping()
		for _, entry := range m.Entries() {
			add(n, entry.Version.Name, value(entry.Value))
		}
		return n
	}
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
}

func (e encoder) table(s *symgen.SymGen) *yaml.Node {
	n := mapping()
	for name, b := range s.Blocks() {
		add(n, name, e.block(b))
	}
	return n
}

func (e encoder) block(b *symgen.Block) *yaml.Node {
	n := mapping()
	if b.Versions != nil {
		add(n, "versions", strs(symgen.VersionNames(b.Versions)))
	}
	if b.Address != nil {
		add(n, "address", maybe(b.Address, e.number))
	}
	if b.Length != nil {
		add(n, "length", maybe(b.Length, e.number))
	}
	if b.Description != "" {
		add(n, "description", str(b.Description))
	}
	if len(b.Subregions) > 0 {
		names := make([]string, len(b.Subregions))
		for i, sub := range b.Subregions {
			names[i] = sub.Name
		}
		add(n, "subregions", strs(names))
	}
	add(n, "functions", e.symbols(b.Functions))
	add(n, "data", e.symbols(b.Data))
	return n
}

func (e encoder) symbols(l symgen.SymbolList) *yaml.Node {
	n := &yaml.Node{Kind: yaml.SequenceNode}
	for i := range l {
		n.Content = append(n.Content, e.symbol(&l[i]))
	}
	return n
}

func (e encoder) symbol(s *symgen.Symbol) *yaml.Node {
	n := mapping()
	add(n, "name", str(s.Name))
	if len(s.Aliases) > 0 {
		add(n, "aliases", strs(s.Aliases))
	}
	if s.Address != nil {
		add(n, "address", maybe(s.Address, e.linkable))
	}
	if s.Length != nil {
		add(n, "length", maybe(s.Length, e.number))
	}
	if s.Description != "" {
		add(n, "description", str(s.Description))
	}
	return n
}
