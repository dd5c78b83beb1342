package cli

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/esmap/pkg/importmap"
	"github.com/matzehuels/esmap/pkg/scan"
	"github.com/matzehuels/esmap/pkg/watch"
)

type generateOpts struct {
	scanFlags
	watch    bool
	debounce time.Duration
}

// generateCommand creates the generate command.
func (c *CLI) generateCommand() *cobra.Command {
	var opts generateOpts

	cmd := &cobra.Command{
		Use:   "generate [root]",
		Short: "Generate an import map for a module tree",
		Long: `Generate an import map for every ES module below root (default ".").

Files register under their path without extension, index files also
register their directory, and package.json main/exports entries map
package directories to their entry points.

Examples:
  esmap generate                          # print the map for the current directory
  esmap generate web -o web/importmap.json
  esmap generate web -o importmap.json --exclude node_modules --watch`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := rootArg(args, 0)
			cfg, err := opts.load(cmd, root)
			if err != nil {
				return err
			}
			scanOpts := cfg.Options()
			scanOpts.Logger = loggerFromContext(cmd.Context())

			if err := c.generate(cmd.Context(), root, scanOpts); err != nil {
				return err
			}
			if !opts.watch {
				return nil
			}
			return c.watch(cmd.Context(), root, scanOpts, opts.debounce)
		},
	}

	opts.register(cmd, true)
	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "regenerate whenever the tree changes")
	cmd.Flags().DurationVar(&opts.debounce, "debounce", watch.DefaultDebounce, "quiet period before regenerating in watch mode")

	return cmd
}

// generate runs one walk and either prints the map or reports the written file.
func (c *CLI) generate(ctx context.Context, root string, opts scan.Options) error {
	prog := newProgress(opts.Logger)

	m, err := scan.Generate(ctx, root, opts)
	if err != nil {
		return err
	}
	opts.Logger.Debug("generated import map", "root", root, "specifiers", m.Len())

	if opts.Output == "" {
		return importmap.WriteJSON(m, c.Out)
	}
	prog.done("Generated import map")
	printSuccess(c.Out, "Mapped %s", root)
	printFile(c.Out, opts.Output)
	printStats(c.Out, m.Len(), time.Since(prog.start))
	return nil
}

// watch regenerates the map on every change until ctx is cancelled.
func (c *CLI) watch(ctx context.Context, root string, opts scan.Options, debounce time.Duration) error {
	printInfo(c.Out, "Watching %s for changes", root)
	return watch.Run(ctx, watch.Config{
		Root:     root,
		Debounce: debounce,
		Logger:   opts.Logger,
		Skip:     watchSkip(root, opts),
		OnChange: func(ctx context.Context, changed []string) error {
			opts.Logger.Debug("tree changed", "paths", strings.Join(changed, ","))
			if err := c.generate(ctx, root, opts); err != nil && ctx.Err() == nil {
				printWarning(c.Out, "Regeneration failed: %v", err)
			}
			return nil
		},
	})
}

// watchSkip ignores excluded paths and the output file with its lock,
// backup and temporary siblings.
func watchSkip(root string, opts scan.Options) func(string, bool) bool {
	outRel := ""
	if opts.Output != "" {
		absRoot, err1 := filepath.Abs(root)
		absOut, err2 := filepath.Abs(opts.Output)
		if err1 == nil && err2 == nil {
			if rel, err := filepath.Rel(absRoot, absOut); err == nil && !strings.HasPrefix(rel, "..") {
				outRel = filepath.ToSlash(rel)
			}
		}
	}
	return func(rel string, _ bool) bool {
		if outRel != "" && (rel == outRel || strings.HasPrefix(rel, outRel+".")) {
			return true
		}
		return opts.ExcludedPath(rel)
	}
}
