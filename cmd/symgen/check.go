package main

import (
	"context"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/go-kit/log/level"
	"github.com/hashicorp/go-multierror"
	"github.com/mitchellh/go-wordwrap"
	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"
	"github.com/spf13/afero"

	appcontext "github.com/grafana/symgen/pkg/app/context"
	"github.com/grafana/symgen/pkg/checks"
	"github.com/grafana/symgen/pkg/config"
	"github.com/grafana/symgen/pkg/symfile"
)

var errChecksFailed = errors.New("checks failed")

const detailsWidth = 100

type checkParams struct {
	paths         []string
	enabled       []string
	functionNames string
	dataNames     string
}

func addCheckParams(cmd commander) *checkParams {
	params := &checkParams{}
	cmd.Arg("path", "Symbol table file(s) to check.").Required().StringsVar(&params.paths)
	cmd.Flag("check", "Check to run: "+strings.Join(checks.Names(), ", ")+". Repeatable. Defaults to every check.").StringsVar(&params.enabled)
	cmd.Flag("function-names", "Naming convention of function names.").Default("").StringVar(&params.functionNames)
	cmd.Flag("data-names", "Naming convention of data names.").Default("").StringVar(&params.dataNames)
	return params
}

func (p *checkParams) apply(c config.Config) config.Config {
	if len(p.enabled) > 0 {
		c.Check.Enabled = p.enabled
	}
	if p.functionNames != "" {
		c.Check.FunctionNames = p.functionNames
	}
	if p.dataNames != "" {
		c.Check.DataNames = p.dataNames
	}
	return c
}

func checkFiles(ctx context.Context, fs afero.Fs, conf config.Config, params *checkParams) error {
	enabled, err := conf.Checks()
	if err != nil {
		return err
	}

	var (
		result error
		failed bool
		out    = appcontext.Output(ctx)
	)
	for _, path := range params.paths {
		table, err := symfile.Load(fs, path, symfile.LoadOptions{Recursive: true})
		if err != nil {
			level.Error(appcontext.Logger(ctx)).Log("msg", "loading failed", "file", path, "err", err)
			result = multierror.Append(result, err)
			continue
		}
		results := checks.Run(path, table, enabled)
		renderResults(out, path, results)
		if checks.Err(results) != nil {
			failed = true
		}
	}
	if result == nil && failed {
		return errChecksFailed
	}
	return result
}

func renderResults(w io.Writer, path string, results []checks.Result) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Check", "Status", "Details"})
	table.SetAutoWrapText(false)
	table.SetCaption(true, path)
	for _, r := range results {
		status := color.GreenString("ok")
		if !r.Succeeded {
			status = color.RedString("FAILED")
		}
		details := make([]string, len(r.Details))
		for i, d := range r.Details {
			details[i] = wordwrap.WrapString(d, detailsWidth)
		}
		table.Append([]string{r.Check, status, strings.Join(details, "\n")})
	}
	table.Render()
}
