package main

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/go-kit/log/level"
	"github.com/spf13/afero"

	appcontext "github.com/grafana/symgen/pkg/app/context"
	"github.com/grafana/symgen/pkg/config"
	"github.com/grafana/symgen/pkg/generator"
	"github.com/grafana/symgen/pkg/symfile"
)

type genParams struct {
	path      string
	formats   []string
	outputDir string
	versions  []string
}

func addGenParams(cmd commander) *genParams {
	params := &genParams{}
	cmd.Arg("path", "Symbol table file to generate from.").Required().StringVar(&params.path)
	cmd.Flag("format", "Output format: "+strings.Join(generator.FormatNames(), ", ")+". Repeatable.").Short('f').StringsVar(&params.formats)
	cmd.Flag("output-dir", "Directory to write the generated files to.").Short('o').Default("").StringVar(&params.outputDir)
	cmd.Flag("version", "Version to generate. Repeatable. Defaults to every version found.").StringsVar(&params.versions)
	return params
}

func (p *genParams) apply(c config.Config) config.Config {
	if len(p.formats) > 0 {
		c.Gen.Formats = p.formats
	}
	if p.outputDir != "" {
		c.Gen.OutputDir = p.outputDir
	}
	if len(p.versions) > 0 {
		c.Gen.Versions = p.versions
	}
	return c
}

func generate(ctx context.Context, fs afero.Fs, conf config.Config, params *genParams) error {
	formats, err := conf.Generators()
	if err != nil {
		return err
	}
	table, err := symfile.Load(fs, params.path, symfile.LoadOptions{Recursive: true})
	if err != nil {
		return err
	}

	versions := conf.Gen.Versions
	if len(versions) == 0 {
		versions = generator.Versions(table)
	}
	if len(versions) == 0 {
		// only common values: generate once, outside of any version directory
		versions = []string{""}
	}

	stem := strings.TrimSuffix(filepath.Base(params.path), filepath.Ext(params.path))
	level.Debug(appcontext.Logger(ctx)).Log("msg", "generating", "path", params.path, "versions", strings.Join(versions, ","), "dir", conf.Gen.OutputDir)
	return generator.GenerateFile(fs, conf.Gen.OutputDir, stem, table, versions, formats)
}
