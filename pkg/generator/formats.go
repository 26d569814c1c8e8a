package generator

import (
	"bufio"
	"fmt"
	"io"

	jsoniter "github.com/json-iterator/go"

	"github.com/grafana/symgen/pkg/symgen"
)

func names(s symgen.RealizedSymbol) []string {
	return append([]string{s.Name}, s.Aliases...)
}

// Ghidra writes one "name address kind" line per symbol name, in the format
// of Ghidra's ImportSymbolsScript.py. The kind is "f" for functions and "l"
// for data labels.
func Ghidra(w io.Writer, table *symgen.SymGen, version string) error {
	bw := bufio.NewWriter(w)
	for e := range table.Realize(version) {
		kind := "f"
		if e.Type == symgen.Data {
			kind = "l"
		}
		for _, name := range names(e.Symbol) {
			if _, err := fmt.Fprintf(bw, "%s %#x %s\n", name, e.Symbol.Address, kind); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}

// Sym writes one "ADDRESS name" line per symbol name, with the address in
// upper case hex padded to 8 digits.
func Sym(w io.Writer, table *symgen.SymGen, version string) error {
	bw := bufio.NewWriter(w)
	for e := range table.Realize(version) {
		for _, name := range names(e.Symbol) {
			if _, err := fmt.Fprintf(bw, "%08X %s\n", e.Symbol.Address, name); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}

type jsonSymbol struct {
	Name        string   `json:"name"`
	Address     uint64   `json:"address"`
	Length      *uint64  `json:"length,omitempty"`
	Description string   `json:"description,omitempty"`
	Aliases     []string `json:"aliases,omitempty"`
	Block       string   `json:"block"`
}

type jsonTable struct {
	Version   string       `json:"version"`
	Functions []jsonSymbol `json:"functions"`
	Data      []jsonSymbol `json:"data"`
}

// JSON writes a single document holding the functions and the data of the
// table.
func JSON(w io.Writer, table *symgen.SymGen, version string) error {
	doc := jsonTable{
		Version:   version,
		Functions: []jsonSymbol{},
		Data:      []jsonSymbol{},
	}
	for e := range table.Realize(version) {
		s := jsonSymbol{
			Name:        e.Symbol.Name,
			Address:     e.Symbol.Address,
			Description: e.Symbol.Description,
			Aliases:     e.Symbol.Aliases,
			Block:       e.Block,
		}
		if e.Symbol.HasLength {
			length := e.Symbol.Length
			s.Length = &length
		}
		if e.Type == symgen.Data {
			doc.Data = append(doc.Data, s)
		} else {
			doc.Functions = append(doc.Functions, s)
		}
	}
	enc := jsoniter.ConfigCompatibleWithStandardLibrary.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
