package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"github.com/prometheus/common/version"
	"github.com/spf13/afero"
	"gopkg.in/alecthomas/kingpin.v2"

	appcontext "github.com/grafana/symgen/pkg/app/context"
	"github.com/grafana/symgen/pkg/config"
)

var cfg struct {
	verbose         bool
	configFile      string
	configExpandEnv bool
}

var (
	consoleOutput = os.Stderr
	logger        = log.NewLogfmtLogger(consoleOutput)
)

func main() {
	app := kingpin.New(filepath.Base(os.Args[0]), "Maintain version-aware symbol tables.").UsageWriter(os.Stdout)
	app.Version(version.Print("symgen"))
	app.HelpFlag.Short('h')
	app.Flag("verbose", "Enable verbose logging.").Short('v').Default("0").BoolVar(&cfg.verbose)
	app.Flag("config.file", "Configuration file to load.").Default("").StringVar(&cfg.configFile)
	app.Flag("config.expand-env", "Expands ${var} in config according to the values of the environment variables.").Default("false").BoolVar(&cfg.configExpandEnv)

	fmtCmd := app.Command("fmt", "Rewrite symbol table files in canonical form.")
	fmtParams := addFmtParams(fmtCmd)

	mergeCmd := app.Command("merge", "Merge symbols or other symbol tables into a symbol table file.")
	mergeParams := addMergeParams(mergeCmd)

	genCmd := app.Command("gen", "Generate symbol files for every version of a symbol table.")
	genParams := addGenParams(genCmd)

	checkCmd := app.Command("check", "Validate symbol table files.")
	checkParams := addCheckParams(checkCmd)

	treeCmd := app.Command("tree", "Print the blocks and subregions of symbol table files.")
	treeParams := addTreeParams(treeCmd)

	// parse command line arguments
	parsedCmd := kingpin.MustParse(app.Parse(os.Args[1:]))

	// enable verbose logging if requested
	if !cfg.verbose {
		logger = level.NewFilter(logger, level.AllowInfo())
	}
	color.NoColor = !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd())

	ctx := appcontext.WithLogger(context.Background(), logger)
	ctx = appcontext.WithOutput(ctx, os.Stdout)

	fs := afero.NewOsFs()
	conf, err := loadConfig(fs, cfg.configFile, cfg.configExpandEnv)
	if err != nil {
		os.Exit(checkError(err))
	}

	switch parsedCmd {
	case fmtCmd.FullCommand():
		os.Exit(checkError(formatFiles(ctx, fs, fmtParams.apply(conf), fmtParams)))
	case mergeCmd.FullCommand():
		os.Exit(checkError(mergeFiles(ctx, fs, mergeParams.apply(conf), mergeParams)))
	case genCmd.FullCommand():
		os.Exit(checkError(generate(ctx, fs, genParams.apply(conf), genParams)))
	case checkCmd.FullCommand():
		os.Exit(checkError(checkFiles(ctx, fs, checkParams.apply(conf), checkParams)))
	case treeCmd.FullCommand():
		os.Exit(checkError(printTrees(ctx, fs, treeParams)))
	default:
		level.Error(logger).Log("msg", "unknown command", "cmd", parsedCmd)
	}
}

type commander interface {
	Flag(name, help string) *kingpin.FlagClause
	Arg(name, help string) *kingpin.ArgClause
}

func loadConfig(fs afero.Fs, path string, expandEnv bool) (config.Config, error) {
	if path == "" {
		return config.DefaultConfig(), nil
	}
	return config.Load(fs, path, expandEnv)
}

func checkError(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errChecksFailed):
		// The failures are already printed, so just exit with an error code.
	default:
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
	}
	return 1
}
