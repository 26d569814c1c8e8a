package main

import (
	"context"

	"github.com/cespare/xxhash/v2"
	"github.com/go-kit/log/level"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/spf13/afero"

	appcontext "github.com/grafana/symgen/pkg/app/context"
	"github.com/grafana/symgen/pkg/config"
	"github.com/grafana/symgen/pkg/symfile"
	"github.com/grafana/symgen/pkg/symgen"
)

type fmtParams struct {
	paths     []string
	check     bool
	sort      bool
	intFormat string
	recursive bool
}

func addFmtParams(cmd commander) *fmtParams {
	params := &fmtParams{}
	cmd.Arg("path", "Symbol table file(s) to format.").Required().StringsVar(&params.paths)
	cmd.Flag("check", "Only report files that are not formatted.").Default("false").BoolVar(&params.check)
	cmd.Flag("sort", "Sort symbols by address.").Default("false").BoolVar(&params.sort)
	cmd.Flag("int-format", "How to write addresses and lengths: hex or decimal.").Default("").StringVar(&params.intFormat)
	cmd.Flag("recursive", "Also format every subregion file.").Short('r').Default("false").BoolVar(&params.recursive)
	return params
}

func (p *fmtParams) apply(c config.Config) config.Config {
	if p.intFormat != "" {
		c.Format.IntFormat = p.intFormat
	}
	c.Format.Sort = c.Format.Sort || p.sort
	return c
}

func formatFiles(ctx context.Context, fs afero.Fs, conf config.Config, params *fmtParams) error {
	intFormat, err := conf.IntFormat()
	if err != nil {
		return err
	}
	opts := symfile.Options{IntFormat: intFormat}

	var result error
	for _, path := range params.paths {
		fileCtx := appcontext.WithFile(ctx, path)
		if err := formatFile(fileCtx, fs, path, opts, conf.Format.Sort, params); err != nil {
			level.Error(appcontext.Logger(fileCtx)).Log("msg", "formatting failed", "err", err)
			result = multierror.Append(result, err)
		}
	}
	return result
}

func formatFile(ctx context.Context, fs afero.Fs, path string, opts symfile.Options, sort bool, params *fmtParams) error {
	table, err := symfile.Load(fs, path, symfile.LoadOptions{Recursive: params.recursive})
	if err != nil {
		return err
	}
	if sort {
		table.Sort()
	}

	it := symgen.DepthFirst(path, table)
	defer it.Close()

	var result error
	for it.Next() {
		c := it.At()
		changed, err := rewrite(fs, c.Path, c.Table, opts, params.check)
		switch {
		case err != nil:
			return err
		case !changed:
			continue
		case params.check:
			result = multierror.Append(result, errors.Errorf("%s is not formatted", c.Path))
		default:
			level.Info(appcontext.Logger(ctx)).Log("msg", "formatted", "path", c.Path)
		}
	}
	return result
}

// rewrite writes the table to path unless the file already holds the same
// content, and reports whether it differed.
func rewrite(fs afero.Fs, path string, table *symgen.SymGen, opts symfile.Options, dryRun bool) (bool, error) {
	data, err := symfile.Marshal(table, opts)
	if err != nil {
		return false, errors.Wrap(err, path)
	}
	current, err := afero.ReadFile(fs, path)
	if err != nil {
		return false, errors.Wrapf(err, "reading %s", path)
	}
	if xxhash.Sum64(current) == xxhash.Sum64(data) {
		return false, nil
	}
	if dryRun {
		return true, nil
	}
	if err := afero.WriteFile(fs, path, data, 0o644); err != nil {
		return true, errors.Wrapf(err, "writing %s", path)
	}
	return true, nil
}
