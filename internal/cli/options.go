package cli

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/esmap/pkg/config"
)

// scanFlags holds the walk flags shared by generate, serve and bundle.
// A flag overrides the config file only when it was set explicitly.
type scanFlags struct {
	config      string
	output      string
	exclude     []string
	excludeGlob []string
	ext         []string
	maxDepth    int
	backups     int
	concurrency int
}

func (f *scanFlags) register(cmd *cobra.Command, withOutput bool) {
	flags := cmd.Flags()
	flags.StringVarP(&f.config, "config", "c", "", "config file (default: esmap.toml or esmap.yaml in root)")
	if withOutput {
		flags.StringVarP(&f.output, "output", "o", "", "write the import map to this file (stdout if empty)")
		flags.IntVar(&f.backups, "backups", 0, "number of previous output files to keep")
	}
	flags.StringSliceVarP(&f.exclude, "exclude", "e", nil, "skip entries whose name or path contains this substring")
	flags.StringSliceVar(&f.excludeGlob, "exclude-glob", nil, "skip entries whose path matches this glob")
	flags.StringSliceVar(&f.ext, "ext", nil, "module file extensions (default .js,.mjs)")
	flags.IntVar(&f.maxDepth, "max-depth", 0, "maximum directory depth (default 10000)")
	flags.IntVar(&f.concurrency, "concurrency", 0, "maximum concurrent filesystem calls (default 64)")
}

// load reads the config for root and applies explicitly set flags on top.
// Relative paths in a config file resolve against the file's directory.
func (f *scanFlags) load(cmd *cobra.Command, root string) (config.Config, error) {
	cfg := config.Default()
	path := f.config
	if path == "" {
		path = config.Discover(root)
	}
	if path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
		base := filepath.Dir(path)
		cfg.Output = resolveAgainst(base, cfg.Output)
		cfg.Bundle.Outfile = resolveAgainst(base, cfg.Bundle.Outfile)
		loggerFromContext(cmd.Context()).Debug("loaded config", "path", path)
	}

	flags := cmd.Flags()
	if flags.Changed("output") {
		cfg.Output = f.output
	}
	if flags.Changed("backups") {
		cfg.Backups = f.backups
	}
	if flags.Changed("exclude") {
		cfg.ExcludedPatterns = f.exclude
	}
	if flags.Changed("exclude-glob") {
		cfg.ExcludedGlobs = f.excludeGlob
	}
	if flags.Changed("ext") {
		cfg.IncludedExtensions = f.ext
	}
	if flags.Changed("max-depth") {
		cfg.MaxDepth = f.maxDepth
	}
	if flags.Changed("concurrency") {
		cfg.Concurrency = f.concurrency
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg.Normalize(), nil
}

func resolveAgainst(base, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}

// rootArg returns the root directory argument, defaulting to ".".
func rootArg(args []string, i int) string {
	if len(args) > i {
		return args[i]
	}
	return "."
}
