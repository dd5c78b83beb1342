package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/esmap/pkg/backup"
	"github.com/matzehuels/esmap/pkg/importmap"
)

type cleanOpts struct {
	scanFlags
	keep int
}

// cleanCommand creates the clean command, which removes the backups and
// lock file left next to a generated import map.
func (c *CLI) cleanCommand() *cobra.Command {
	var opts cleanOpts

	cmd := &cobra.Command{
		Use:   "clean [root]",
		Short: "Remove import map backups and lock files",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := rootArg(args, 0)
			cfg, err := opts.load(cmd, root)
			if err != nil {
				return err
			}
			if cfg.Output == "" {
				printInfo(c.Out, "No output configured, nothing to clean")
				return nil
			}

			logger := loggerFromContext(cmd.Context())
			removed := 0
			files := append(backup.List(cfg.Output, max(opts.keep, cfg.Backups)), importmap.LockName(cfg.Output))
			for _, f := range files {
				if err := os.Remove(f); err != nil {
					if !os.IsNotExist(err) {
						logger.Warn("cannot remove", "path", f, "err", err)
					}
					continue
				}
				removed++
				logger.Debug("removed", "path", f)
			}

			if removed == 0 {
				printInfo(c.Out, "Nothing to clean")
				return nil
			}
			printSuccess(c.Out, "Removed %d files", removed)
			printDetail(c.Out, "Output: %s", cfg.Output)
			return nil
		},
	}

	opts.register(cmd, true)
	cmd.Flags().IntVar(&opts.keep, "slots", 32, "highest backup number to look for")

	return cmd
}
