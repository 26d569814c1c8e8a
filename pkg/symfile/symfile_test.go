package symfile

import (
	"bytes"
	"reflect"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grafana/symgen/pkg/ordered"
	"github.com/grafana/symgen/pkg/symgen"
)

const testFile = `main:
  versions:
    - v1
    - v2
  address:
    v1: 0x2000000
    v2: 0x2000100
  length: 0x100000
  description: |-
    The main binary.
    Loaded at boot.
  subregions:
    - sub1.yml
  functions:
    - name: fn1
      aliases:
        - fn1_alias
      address:
        v1: 0x2001000
        v2: [0x2001100, 0x2001200]
      length: 0x10
      description: first function
    - name: fn2
      address: 0x2002000
  data:
    - name: data1
      address: 0x2003000
      length:
        v1: 4
other:
  address: 0x3000000
  length: 4096
  functions: []
  data: []
`

func entries[V any](m ordered.Map[V]) []ordered.Entry[V] {
	return m.Entries()
}

func diff(a, b *symgen.SymGen) string {
	return cmp.Diff(a, b,
		cmp.Exporter(func(reflect.Type) bool { return true }),
		cmp.Transformer("blocks", entries[*symgen.Block]),
		cmp.Transformer("uints", entries[symgen.Uint]),
		cmp.Transformer("linkables", entries[symgen.Linkable]),
	)
}

func mustDecode(t *testing.T, s string) *symgen.SymGen {
	t.Helper()
	table, err := Decode(strings.NewReader(s))
	require.NoError(t, err)
	return table
}

func mustEncode(t *testing.T, table *symgen.SymGen, opts Options) string {
	t.Helper()
	data, err := Marshal(table, opts)
	require.NoError(t, err)
	return string(data)
}

func TestDecode(t *testing.T) {
	table := mustDecode(t, testFile)
	assert.Equal(t, []string{"main", "other"}, table.BlockNames())

	main, ok := table.Block("main")
	require.True(t, ok)
	assert.Equal(t, []string{"v1", "v2"}, symgen.VersionNames(main.Versions))
	assert.Equal(t, "{v1: 0x2000000, v2: 0x2000100}", main.Address.String())
	assert.Equal(t, "0x100000", main.Length.String())
	assert.Equal(t, "The main binary.\nLoaded at boot.", main.Description)
	require.Len(t, main.Subregions, 1)
	assert.Equal(t, "sub1.yml", main.Subregions[0].Name)
	assert.Nil(t, main.Subregions[0].Contents)

	require.Len(t, main.Functions, 2)
	fn1 := main.Functions[0]
	assert.Equal(t, []string{"fn1_alias"}, fn1.Aliases)
	assert.Equal(t, "{v1: 0x2001000, v2: [0x2001100, 0x2001200]}", fn1.Address.String())
	assert.Equal(t, "first function", fn1.Description)
	assert.Nil(t, main.Functions[1].Length)
	assert.Equal(t, "{v1: 0x4}", main.Data[0].Length.String())

	other, _ := table.Block("other")
	assert.Nil(t, other.Versions)
	assert.Equal(t, "0x1000", other.Length.String())
	assert.Empty(t, other.Functions)
}

func TestDecodeEmpty(t *testing.T) {
	for _, input := range []string{"", "~\n", "{}\n"} {
		table := mustDecode(t, input)
		assert.Equal(t, 0, table.Len())
	}
}

func TestDecodeErrors(t *testing.T) {
	for _, tc := range []struct {
		name     string
		input    string
		line     int
		column   int
		contains string
	}{
		{
			name:     "unknown block field",
			input:    "main:\n  address: 0x0\n  length: 0x10\n  size: 3\n",
			line:     4,
			column:   3,
			contains: `block "main": line 4, column 3: block: unknown field "size"`,
		},
		{
			name:     "unknown symbol field",
			input:    "main:\n  address: 0\n  length: 1\n  functions:\n    - name: f\n      address: 0\n      size: 1\n",
			line:     7,
			column:   7,
			contains: `functions: symbol "f": line 7, column 7: symbol: unknown field "size"`,
		},
		{
			name:     "malformed integer",
			input:    "main:\n  address: 0xZZ\n  length: 1\n",
			line:     2,
			column:   12,
			contains: `address: line 2, column 12: invalid integer "0xZZ"`,
		},
		{
			name:     "malformed versioned integer",
			input:    "main:\n  address:\n    v1: -1\n  length: 1\n",
			line:     3,
			column:   9,
			contains: `address: version "v1": line 3, column 9: invalid integer "-1"`,
		},
		{
			name:     "wrong kind",
			input:    "main:\n  address: 0\n  length: 1\n  functions: 3\n",
			line:     4,
			column:   14,
			contains: "expected a sequence, got scalar",
		},
		{
			name:     "missing symbol address",
			input:    "main:\n  address: 0\n  length: 1\n  data:\n    - name: d\n",
			line:     5,
			column:   7,
			contains: `data: symbol "d": line 5, column 7: missing address`,
		},
		{
			name:     "missing block length",
			input:    "main:\n  address: 0\n",
			line:     2,
			column:   3,
			contains: "missing length",
		},
		{
			name:     "duplicate version",
			input:    "main:\n  versions: [v1, v1]\n  address: 0\n  length: 1\n",
			line:     2,
			column:   18,
			contains: `duplicate version "v1"`,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tc.input))
			require.Error(t, err)
			var decodeErr *DecodeError
			require.True(t, errors.As(err, &decodeErr), err.Error())
			assert.Equal(t, tc.line, decodeErr.Line)
			assert.Equal(t, tc.column, decodeErr.Column)
			assert.Contains(t, err.Error(), tc.contains)
		})
	}
}

func TestDecodeDuplicateBlock(t *testing.T) {
	_, err := Decode(strings.NewReader("main:\n  address: 0\n  length: 1\nmain:\n  address: 0\n  length: 1\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"main"`)
}

func TestDecodeSyntaxError(t *testing.T) {
	_, err := Decode(strings.NewReader("main: [\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing yaml")
}

func TestEncode(t *testing.T) {
	table := mustDecode(t, testFile)

	hex := mustEncode(t, table, Options{})
	assert.Contains(t, hex, "v2: [0x2001100, 0x2001200]")
	assert.Contains(t, hex, "length: 0x1000\n")
	assert.Contains(t, hex, "description: |-\n")
	assert.Contains(t, hex, "functions: []")
	assert.NotContains(t, hex, "versions: []")

	dec := mustEncode(t, table, Options{IntFormat: Decimal})
	assert.Contains(t, dec, "length: 16\n")
	assert.Contains(t, dec, "v2: [33558784, 33559040]")
	assert.NotContains(t, dec, "0x")

	// both formats read back to the same table
	require.Empty(t, diff(table, mustDecode(t, hex)))
	require.Empty(t, diff(table, mustDecode(t, dec)))
}

func TestEncodeQuotesAmbiguousStrings(t *testing.T) {
	table := mustDecode(t, "\"0x10\":\n  versions: [\"1.0\", \"true\"]\n  address: {\"1.0\": 0}\n  length: 1\n")
	out := mustEncode(t, table, Options{})
	back := mustDecode(t, out)
	require.Empty(t, diff(table, back))
	assert.Equal(t, []string{"0x10"}, back.BlockNames())
}

func TestRoundTripThroughSelfMerge(t *testing.T) {
	table := mustDecode(t, testFile)
	expected := mustEncode(t, table, Options{})

	merged := mustDecode(t, testFile)
	require.NoError(t, merged.Merge(nil, mustDecode(t, testFile)))
	assert.Equal(t, expected, mustEncode(t, merged, Options{}))
	require.Empty(t, diff(table, merged))
}

func TestParseIntFormat(t *testing.T) {
	f, err := ParseIntFormat("Decimal")
	require.NoError(t, err)
	assert.Equal(t, Decimal, f)
	f, err = ParseIntFormat("hex")
	require.NoError(t, err)
	assert.Equal(t, Hex, f)
	_, err = ParseIntFormat("octal")
	assert.Error(t, err)
}

const (
	rootFile = `main:
  address: 0x1000
  length: 0x1000
  subregions:
    - sub1.yml
  functions: []
  data: []
`
	sub1File = `sub1:
  address: 0x1100
  length: 0x100
  subregions:
    - nested.yml
  functions:
    - name: sub_fn
      address: 0x1110
  data: []
`
	nestedFile = `nested:
  address: 0x1180
  length: 0x10
  functions: []
  data:
    - name: nested_data
      address: 0x1184
`
)

func testFs(t *testing.T) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "symbols/root.yml", []byte(rootFile), 0o644))
	require.NoError(t, afero.WriteFile(fs, "symbols/root/sub1.yml", []byte(sub1File), 0o644))
	require.NoError(t, afero.WriteFile(fs, "symbols/root/sub1/nested.yml", []byte(nestedFile), 0o644))
	return fs
}

func TestLoad(t *testing.T) {
	fs := testFs(t)

	shallow, err := Load(fs, "symbols/root.yml", LoadOptions{})
	require.NoError(t, err)
	main, _ := shallow.Block("main")
	assert.Nil(t, main.Subregions[0].Contents)

	table, err := Load(fs, "symbols/root.yml", LoadOptions{Recursive: true})
	require.NoError(t, err)
	main, _ = table.Block("main")
	sub1 := main.Subregions[0].Contents
	require.NotNil(t, sub1)
	b, ok := sub1.Block("sub1")
	require.True(t, ok)
	require.NotNil(t, b.Subregions[0].Contents)
	nested, ok := b.Subregions[0].Contents.Block("nested")
	require.True(t, ok)
	assert.Equal(t, "nested_data", nested.Data[0].Name)
}

func TestLoadMissingSubregion(t *testing.T) {
	fs := testFs(t)
	require.NoError(t, fs.Remove("symbols/root/sub1/nested.yml"))
	_, err := Load(fs, "symbols/root.yml", LoadOptions{Recursive: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `subregion "sub1.yml": subregion "nested.yml": opening`)
}

func TestStore(t *testing.T) {
	fs := testFs(t)
	table, err := Load(fs, "symbols/root.yml", LoadOptions{Recursive: true})
	require.NoError(t, err)

	require.NoError(t, Store(fs, "out/copy.yml", table, Options{}))
	for path, expected := range map[string]string{
		"out/copy.yml":             rootFile,
		"out/copy/sub1.yml":        sub1File,
		"out/copy/sub1/nested.yml": nestedFile,
	} {
		data, err := afero.ReadFile(fs, path)
		require.NoError(t, err, path)
		require.Empty(t, diff(mustDecode(t, expected), mustDecode(t, string(data))), path)
	}

	copied, err := Load(fs, "out/copy.yml", LoadOptions{Recursive: true})
	require.NoError(t, err)
	require.Empty(t, diff(table, copied))
}

func TestWriteFileLeavesSubregionsAlone(t *testing.T) {
	fs := afero.NewMemMapFs()
	table := mustDecode(t, rootFile)
	main, _ := table.Block("main")
	main.Subregions[0].Contents = mustDecode(t, sub1File)

	require.NoError(t, WriteFile(fs, "a/b.yml", table, Options{}))
	exists, err := afero.Exists(fs, "a/b/sub1.yml")
	require.NoError(t, err)
	assert.False(t, exists)

	data, err := afero.ReadFile(fs, "a/b.yml")
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, table, Options{}))
	assert.Equal(t, buf.String(), string(data))
}
