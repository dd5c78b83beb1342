package cli

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/esmap/pkg/backup"
	"github.com/matzehuels/esmap/pkg/bundle"
	"github.com/matzehuels/esmap/pkg/config"
	"github.com/matzehuels/esmap/pkg/errors"
	"github.com/matzehuels/esmap/pkg/scan"
)

type bundleOpts struct {
	scanFlags
	outfile   string
	minify    bool
	keepNames bool
}

// bundleCommand creates the bundle command.
func (c *CLI) bundleCommand() *cobra.Command {
	var opts bundleOpts

	cmd := &cobra.Command{
		Use:   "bundle [specifier] [root]",
		Short: "Bundle the module a specifier resolves to",
		Long: `Resolve a specifier through the import map of root and bundle its module
with all of its imports into a single ES module file.

The specifier defaults to bundle.entry from the config file. The previous
output file is kept as a numbered backup when --backups is set.

Examples:
  esmap bundle app web --outfile dist/app.js --minify
  esmap bundle vendor/lit web -O dist/lit.js`,
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := rootArg(args, 1)
			cfg, err := opts.load(cmd, root)
			if err != nil {
				return err
			}
			opts.apply(cmd, &cfg)

			specifier := cfg.Bundle.Entry
			if len(args) > 0 {
				specifier = args[0]
			}
			return c.bundle(cmd.Context(), root, specifier, cfg)
		},
	}

	opts.register(cmd, false)
	cmd.Flags().StringVarP(&opts.outfile, "outfile", "O", "", "bundle output file")
	cmd.Flags().BoolVar(&opts.minify, "minify", false, "minify the bundle")
	cmd.Flags().BoolVar(&opts.keepNames, "keep-names", false, "preserve function and class names when minifying")
	cmd.Flags().IntVar(&opts.backups, "backups", 0, "number of previous bundles to keep")

	return cmd
}

// apply overrides the bundle section with explicitly set flags.
func (o *bundleOpts) apply(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("outfile") {
		cfg.Bundle.Outfile = o.outfile
	}
	if flags.Changed("minify") {
		cfg.Bundle.Minify = o.minify
	}
	if flags.Changed("keep-names") {
		cfg.Bundle.KeepNames = o.keepNames
	}
}

func (c *CLI) bundle(ctx context.Context, root, specifier string, cfg config.Config) error {
	logger := loggerFromContext(ctx)
	if cfg.Bundle.Outfile == "" {
		return errors.New(errors.ErrCodeInvalidInput, "no output file: pass --outfile or set bundle.outfile")
	}
	entry, err := resolveEntry(ctx, root, specifier, cfg)
	if err != nil {
		return err
	}
	logger.Debug("resolved entry", "specifier", specifier, "path", entry)

	if err := backup.Rotate(cfg.Bundle.Outfile, cfg.Backups); err != nil {
		return errors.Wrap(errors.ErrCodeWriteFailed, err, "cannot rotate %s", cfg.Bundle.Outfile)
	}

	spin := newSpinner(ctx, os.Stderr, "Bundling "+specifier)
	spin.Start()
	err = c.Bundler.Bundle(ctx, bundle.Options{
		Entry:     entry,
		Outfile:   cfg.Bundle.Outfile,
		Minify:    cfg.Bundle.Minify,
		KeepNames: cfg.Bundle.KeepNames,
	})
	if err != nil {
		spin.StopWithError(c.Out, "Bundle failed")
		return err
	}
	spin.StopWithSuccess(c.Out, "Bundled "+specifier)
	printFile(c.Out, cfg.Bundle.Outfile)
	return nil
}

// resolveEntry maps a specifier to a file below root through a fresh walk.
func resolveEntry(ctx context.Context, root, specifier string, cfg config.Config) (string, error) {
	if specifier == "" {
		return "", errors.New(errors.ErrCodeInvalidInput, "no specifier: pass one or set bundle.entry")
	}
	if strings.HasSuffix(specifier, "/") {
		return "", errors.New(errors.ErrCodeInvalidInput, "cannot bundle directory prefix %q", specifier)
	}

	opts := cfg.Options()
	opts.Output = ""
	opts.Logger = loggerFromContext(ctx)
	m, err := scan.Generate(ctx, root, opts)
	if err != nil {
		return "", err
	}
	target, ok := m.Get(specifier)
	if !ok {
		return "", errors.New(errors.ErrCodeSpecifierNotFound, "specifier %q not found in %s", specifier, root)
	}
	return filepath.Join(root, filepath.FromSlash(strings.TrimPrefix(target, "./"))), nil
}
