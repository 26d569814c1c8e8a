package main

import (
	"context"

	"github.com/go-kit/log/level"
	"github.com/pkg/errors"
	"github.com/spf13/afero"

	appcontext "github.com/grafana/symgen/pkg/app/context"
	"github.com/grafana/symgen/pkg/config"
	"github.com/grafana/symgen/pkg/loader"
	"github.com/grafana/symgen/pkg/symfile"
	"github.com/grafana/symgen/pkg/symgen"
)

type mergeParams struct {
	target      string
	inputs      []string
	tables      bool
	block       string
	symbolType  string
	version     string
	inputFormat string
}

func addMergeParams(cmd commander) *mergeParams {
	params := &mergeParams{}
	cmd.Arg("target", "Symbol table file to merge into.").Required().StringVar(&params.target)
	cmd.Arg("input", "Files to merge.").Required().StringsVar(&params.inputs)
	cmd.Flag("tables", "Merge the inputs as whole symbol tables instead of symbol lists.").Default("false").BoolVar(&params.tables)
	cmd.Flag("block", "Block for input symbols without one. Inferred from the address when empty.").Default("").StringVar(&params.block)
	cmd.Flag("type", "Symbol type for input symbols without one: function or data.").Default("").StringVar(&params.symbolType)
	cmd.Flag("version", "Version for input symbols without one. Addresses are common to all versions when empty.").Default("").StringVar(&params.version)
	cmd.Flag("input-format", "Format of the inputs: csv or yml. Detected from the extension when empty.").Default("").StringVar(&params.inputFormat)
	return params
}

func (p *mergeParams) apply(c config.Config) config.Config {
	if p.block != "" {
		c.Merge.DefaultBlock = p.block
	}
	if p.symbolType != "" {
		c.Merge.DefaultType = p.symbolType
	}
	if p.version != "" {
		c.Merge.DefaultVersion = p.version
	}
	if p.inputFormat != "" {
		c.Merge.InputFormat = p.inputFormat
	}
	return c
}

// mergeFiles merges every input into the target and stores it. Nothing is
// written when a merge fails.
func mergeFiles(ctx context.Context, fs afero.Fs, conf config.Config, params *mergeParams) error {
	if err := conf.Validate(); err != nil {
		return err
	}
	intFormat, _ := conf.IntFormat()
	loadParams, _ := conf.LoadParams()

	table, err := symfile.Load(fs, params.target, symfile.LoadOptions{Recursive: true})
	if err != nil {
		return err
	}
	for _, input := range params.inputs {
		inputCtx := appcontext.WithFile(ctx, input)
		if params.tables {
			err = mergeTable(inputCtx, fs, table, input)
		} else {
			err = mergeSymbols(inputCtx, fs, table, input, conf.Merge.InputFormat, loadParams)
		}
		if err != nil {
			return errors.Wrapf(err, "merging %s", input)
		}
	}

	if conf.Format.Sort {
		table.Sort()
	}
	return symfile.Store(fs, params.target, table, symfile.Options{IntFormat: intFormat})
}

func mergeTable(ctx context.Context, fs afero.Fs, table *symgen.SymGen, input string) error {
	other, err := symfile.Load(fs, input, symfile.LoadOptions{Recursive: true})
	if err != nil {
		return err
	}
	return table.Merge(appcontext.Logger(ctx), other)
}

func mergeSymbols(ctx context.Context, fs afero.Fs, table *symgen.SymGen, input, format string, params loader.LoadParams) error {
	var (
		f   loader.Format
		err error
	)
	if format != "" {
		f, err = loader.ParseFormat(format)
	} else {
		f, err = loader.FormatOf(input)
	}
	if err != nil {
		return err
	}

	r, err := fs.Open(input)
	if err != nil {
		return errors.Wrapf(err, "opening %s", input)
	}
	defer r.Close()

	logger := appcontext.Logger(ctx)
	unmerged, err := table.MergeSymbols(logger, f.Load(r, params))
	for _, add := range unmerged {
		level.Warn(logger).Log("msg", "no block contains symbol", "symbol", add.Symbol.Name, "type", add.Type)
	}
	return err
}
