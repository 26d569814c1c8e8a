package config

import (
	"bytes"
	"io"
	"os"

	"github.com/drone/envsubst"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/grafana/symgen/pkg/checks"
	"github.com/grafana/symgen/pkg/generator"
	"github.com/grafana/symgen/pkg/loader"
	"github.com/grafana/symgen/pkg/symfile"
	"github.com/grafana/symgen/pkg/symgen"
)

// Config holds the settings of every command. Command line flags take
// precedence over it.
type Config struct {
	Format Format `yaml:"format"`
	Merge  Merge  `yaml:"merge"`
	Gen    Gen    `yaml:"gen"`
	Check  Check  `yaml:"check"`
}

type Format struct {
	IntFormat string `yaml:"int_format"`
	Sort      bool   `yaml:"sort"`
}

type Merge struct {
	DefaultBlock   string `yaml:"default_block"`
	DefaultType    string `yaml:"default_type"`
	DefaultVersion string `yaml:"default_version"`
	// InputFormat overrides detection of the input format from the file
	// extension.
	InputFormat string `yaml:"input_format"`
}

type Gen struct {
	Formats   []string `yaml:"formats"`
	OutputDir string   `yaml:"output_dir"`
	// Versions defaults to every version found in the table.
	Versions []string `yaml:"versions"`
}

type Check struct {
	// Enabled defaults to every check.
	Enabled       []string `yaml:"enabled"`
	FunctionNames string   `yaml:"function_names"`
	DataNames     string   `yaml:"data_names"`
}

func DefaultConfig() Config {
	opts := checks.DefaultOptions()
	return Config{
		Format: Format{IntFormat: symfile.Hex.String()},
		Merge:  Merge{DefaultType: symgen.Function.String()},
		Gen:    Gen{Formats: generator.FormatNames(), OutputDir: "."},
		Check: Check{
			FunctionNames: string(opts.FunctionNames),
			DataNames:     string(opts.DataNames),
		},
	}
}

// Load reads the config file at path on top of the defaults. With
// expandEnv set, ${VAR} references are replaced by environment variables
// before parsing.
func Load(fs afero.Fs, path string, expandEnv bool) (Config, error) {
	cfg := DefaultConfig()
	buf, err := afero.ReadFile(fs, path)
	if err != nil {
		return cfg, errors.Wrapf(err, "reading config %s", path)
	}
	if expandEnv {
		s, err := envsubst.Eval(string(buf), os.Getenv)
		if err != nil {
			return cfg, errors.Wrapf(err, "expanding environment in %s", path)
		}
		buf = []byte(s)
	}

	dec := yaml.NewDecoder(bytes.NewReader(buf))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && err != io.EOF {
		return cfg, errors.Wrapf(err, "parsing config %s", path)
	}
	return cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	var result error
	if _, err := c.IntFormat(); err != nil {
		result = multierror.Append(result, errors.Wrap(err, "format"))
	}
	if _, err := c.LoadParams(); err != nil {
		result = multierror.Append(result, errors.Wrap(err, "merge"))
	}
	if c.Merge.InputFormat != "" {
		if _, err := loader.ParseFormat(c.Merge.InputFormat); err != nil {
			result = multierror.Append(result, errors.Wrap(err, "merge"))
		}
	}
	if _, err := c.Generators(); err != nil {
		result = multierror.Append(result, errors.Wrap(err, "gen"))
	}
	if _, err := c.Checks(); err != nil {
		result = multierror.Append(result, errors.Wrap(err, "check"))
	}
	return result
}

func (c *Config) IntFormat() (symfile.IntFormat, error) {
	return symfile.ParseIntFormat(c.Format.IntFormat)
}

func (c *Config) LoadParams() (loader.LoadParams, error) {
	t, err := symgen.ParseSymbolType(c.Merge.DefaultType)
	if err != nil {
		return loader.LoadParams{}, err
	}
	return loader.LoadParams{
		DefaultBlockName:   c.Merge.DefaultBlock,
		DefaultSymbolType:  t,
		DefaultVersionName: c.Merge.DefaultVersion,
	}, nil
}

func (c *Config) Generators() ([]generator.Format, error) {
	var (
		formats []generator.Format
		result  error
	)
	for _, name := range c.Gen.Formats {
		f, err := generator.ByName(name)
		if err != nil {
			result = multierror.Append(result, err)
			continue
		}
		formats = append(formats, f)
	}
	return formats, result
}

func (c *Config) CheckOptions() (checks.Options, error) {
	opts := checks.DefaultOptions()
	var result error
	if c.Check.FunctionNames != "" {
		conv, err := checks.ParseNamingConvention(c.Check.FunctionNames)
		if err != nil {
			result = multierror.Append(result, errors.Wrap(err, "function_names"))
		}
		opts.FunctionNames = conv
	}
	if c.Check.DataNames != "" {
		conv, err := checks.ParseNamingConvention(c.Check.DataNames)
		if err != nil {
			result = multierror.Append(result, errors.Wrap(err, "data_names"))
		}
		opts.DataNames = conv
	}
	return opts, result
}

// Checks returns the enabled checks, or every check when none is listed.
func (c *Config) Checks() ([]checks.Check, error) {
	opts, err := c.CheckOptions()
	if err != nil {
		return nil, err
	}
	if len(c.Check.Enabled) == 0 {
		return checks.All(opts), nil
	}
	var (
		enabled []checks.Check
		result  error
	)
	for _, name := range c.Check.Enabled {
		check, err := checks.ByName(name, opts)
		if err != nil {
			result = multierror.Append(result, err)
			continue
		}
		enabled = append(enabled, check)
	}
	return enabled, result
}
