package symfile

import (
	"fmt"
	"io"
	"strconv"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"

	"github.com/grafana/symgen/pkg/symgen"
)

// DecodeError reports a malformed symbol table, with the position of the
// offending node.
type DecodeError struct {
	Line   int
	Column int
	Msg    string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("line %d, column %d: %s", e.Line, e.Column, e.Msg)
}

func errorf(n *yaml.Node, format string, args ...any) error {
	return &DecodeError{Line: n.Line, Column: n.Column, Msg: fmt.Sprintf(format, args...)}
}

// Decode reads a symbol table. Blocks, versions and symbols keep the order
// they appear in.
func Decode(r io.Reader) (*symgen.SymGen, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return symgen.New(), nil
		}
		return nil, errors.Wrap(err, "parsing yaml")
	}
	root := &doc
	if root.Kind == yaml.DocumentNode {
		if len(root.Content) == 0 {
			return symgen.New(), nil
		}
		root = root.Content[0]
	}
	table, err := decodeTable(root)
	if err != nil {
		return nil, err
	}
	table.Init()
	return table, nil
}

func resolve(n *yaml.Node) *yaml.Node {
	for n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}

func isNull(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && n.ShortTag() == "!!null"
}

func kindName(n *yaml.Node) string {
	switch n.Kind {
	case yaml.MappingNode:
		return "mapping"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.ScalarNode:
		if isNull(n) {
			return "null"
		}
		return "scalar"
	default:
		return "node"
	}
}

// fields iterates over the key/value pairs of a mapping, rejecting keys
// not in known, and duplicates.
func fields(n *yaml.Node, what string, known []string, fn func(key string, value *yaml.Node) error) error {
	if n.Kind != yaml.MappingNode {
		return errorf(n, "%s: expected a mapping, got %s", what, kindName(n))
	}
	seen := make(map[string]struct{}, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := resolve(n.Content[i]), resolve(n.Content[i+1])
		if k.Kind != yaml.ScalarNode {
			return errorf(k, "%s: expected a scalar key, got %s", what, kindName(k))
		}
		if known != nil && !lo.Contains(known, k.Value) {
			return errorf(k, "%s: unknown field %q", what, k.Value)
		}
		if _, ok := seen[k.Value]; ok {
			return errorf(k, "%s: duplicate key %q", what, k.Value)
		}
		seen[k.Value] = struct{}{}
		if err := fn(k.Value, v); err != nil {
			return err
		}
	}
	return nil
}

func decodeTable(n *yaml.Node) (*symgen.SymGen, error) {
	table := symgen.New()
	n = resolve(n)
	if isNull(n) {
		return table, nil
	}
	err := fields(n, "table", nil, func(name string, value *yaml.Node) error {
		b, err := decodeBlock(value)
		if err != nil {
			return errors.Wrapf(err, "block %q", name)
		}
		table.Insert(name, b)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return table, nil
}

var blockFields = []string{"versions", "address", "length", "description", "subregions", "functions", "data"}

func decodeBlock(n *yaml.Node) (*symgen.Block, error) {
	b := &symgen.Block{}
	err := fields(n, "block", blockFields, func(key string, value *yaml.Node) error {
		var err error
		switch key {
		case "versions":
			b.Versions, err = decodeVersions(value)
		case "address":
			b.Address, err = decodeMaybe(value, decodeUint)
		case "length":
			b.Length, err = decodeMaybe(value, decodeUint)
		case "description":
			b.Description, err = decodeOptionalString(value)
		case "subregions":
			var names []string
			names, err = decodeStrings(value)
			for _, name := range names {
				b.Subregions = append(b.Subregions, &symgen.Subregion{Name: name})
			}
		case "functions":
			b.Functions, err = decodeSymbols(value)
		case "data":
			b.Data, err = decodeSymbols(value)
		}
		if err != nil {
			return errors.Wrap(err, key)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if b.Address == nil {
		return nil, errorf(n, "missing address")
	}
	if b.Length == nil {
		return nil, errorf(n, "missing length")
	}
	return b, nil
}

var symbolFields = []string{"name", "aliases", "address", "length", "description"}

func decodeSymbols(n *yaml.Node) (symgen.SymbolList, error) {
	n = resolve(n)
	if isNull(n) {
		return nil, nil
	}
	if n.Kind != yaml.SequenceNode {
		return nil, errorf(n, "expected a sequence, got %s", kindName(n))
	}
	list := make(symgen.SymbolList, 0, len(n.Content))
	for i, item := range n.Content {
		s, err := decodeSymbol(resolve(item))
		if err != nil {
			if s.Name != "" {
				return nil, errors.Wrapf(err, "symbol %q", s.Name)
			}
			return nil, errors.Wrapf(err, "symbol %d", i)
		}
		list = append(list, s)
	}
	return list, nil
}

func decodeSymbol(n *yaml.Node) (symgen.Symbol, error) {
	var (
		s       symgen.Symbol
		hasName bool
	)
	err := fields(n, "symbol", symbolFields, func(key string, value *yaml.Node) error {
		var err error
		switch key {
		case "name":
			s.Name, err = decodeString(value)
			hasName = true
		case "aliases":
			s.Aliases, err = decodeStrings(value)
		case "address":
			s.Address, err = decodeMaybe(value, decodeLinkable)
		case "length":
			s.Length, err = decodeMaybe(value, decodeUint)
		case "description":
			s.Description, err = decodeOptionalString(value)
		}
		if err != nil {
			return errors.Wrap(err, key)
		}
		return nil
	})
	if err != nil {
		return s, err
	}
	if !hasName {
		return s, errorf(n, "missing name")
	}
	if s.Address == nil {
		return s, errorf(n, "missing address")
	}
	return s, nil
}

// decodeMaybe decodes either a single value or a mapping from version name
// to value. Null decodes to nil.
func decodeMaybe[T symgen.Value[T]](n *yaml.Node, decode func(*yaml.Node) (T, error)) (symgen.MaybeVersionDep[T], error) {
	n = resolve(n)
	if isNull(n) {
		return nil, nil
	}
	if n.Kind != yaml.MappingNode {
		v, err := decode(n)
		if err != nil {
			return nil, err
		}
		return symgen.NewCommon(v), nil
	}
	vm := symgen.NewVersionMap[T]()
	err := fields(n, "version map", nil, func(version string, value *yaml.Node) error {
		v, err := decode(value)
		if err != nil {
			return errors.Wrapf(err, "version %q", version)
		}
		vm.Set(symgen.NewVersion(version), v)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return vm, nil
}

func decodeUint(n *yaml.Node) (symgen.Uint, error) {
	n = resolve(n)
	if n.Kind != yaml.ScalarNode || isNull(n) {
		return 0, errorf(n, "expected an integer, got %s", kindName(n))
	}
	v, err := strconv.ParseUint(n.Value, 0, 64)
	if err != nil {
		return 0, errorf(n, "invalid integer %q", n.Value)
	}
	return symgen.Uint(v), nil
}

// decodeLinkable accepts an integer, or a sequence of integers for symbols
// with several addresses.
func decodeLinkable(n *yaml.Node) (symgen.Linkable, error) {
	n = resolve(n)
	if n.Kind != yaml.SequenceNode {
		v, err := decodeUint(n)
		if err != nil {
			return symgen.Linkable{}, err
		}
		return symgen.Single(uint64(v)), nil
	}
	if len(n.Content) == 0 {
		return symgen.Linkable{}, errorf(n, "empty address list")
	}
	addrs := make([]uint64, 0, len(n.Content))
	for _, item := range n.Content {
		v, err := decodeUint(item)
		if err != nil {
			return symgen.Linkable{}, err
		}
		addrs = append(addrs, uint64(v))
	}
	return symgen.Multiple(addrs...), nil
}

func decodeString(n *yaml.Node) (string, error) {
	n = resolve(n)
	if n.Kind != yaml.ScalarNode || isNull(n) {
		return "", errorf(n, "expected a string, got %s", kindName(n))
	}
	return n.Value, nil
}

func decodeOptionalString(n *yaml.Node) (string, error) {
	if isNull(resolve(n)) {
		return "", nil
	}
	return decodeString(n)
}

func decodeStrings(n *yaml.Node) ([]string, error) {
	n = resolve(n)
	if isNull(n) {
		return nil, nil
	}
	if n.Kind != yaml.SequenceNode {
		return nil, errorf(n, "expected a sequence, got %s", kindName(n))
	}
	values := make([]string, 0, len(n.Content))
	for _, item := range n.Content {
		s, err := decodeString(item)
		if err != nil {
			return nil, err
		}
		values = append(values, s)
	}
	return values, nil
}

func decodeVersions(n *yaml.Node) ([]symgen.Version, error) {
	n = resolve(n)
	names, err := decodeStrings(n)
	if err != nil || names == nil {
		return nil, err
	}
	for i, name := range names {
		if lo.Contains(names[:i], name) {
			return nil, errorf(n.Content[i], "duplicate version %q", name)
		}
	}
	return symgen.NewVersions(names...), nil
}
