package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/esmap/pkg/server"
)

type serveOpts struct {
	scanFlags
	addr string
}

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve [root]",
		Short: "Serve a module tree with a live import map",
		Long: `Serve the files below root over HTTP together with an import map at
/importmap.json that is regenerated on every request.

Dot-prefixed paths are never served.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := rootArg(args, 0)
			cfg, err := opts.load(cmd, root)
			if err != nil {
				return err
			}
			logger := loggerFromContext(cmd.Context())

			srv := server.New(root, server.Options{
				Addr:   opts.addr,
				Scan:   cfg.Options(),
				Logger: logger,
			})
			ln, err := srv.Listen()
			if err != nil {
				return err
			}

			url := "http://" + ln.Addr().String()
			printSuccess(c.Out, "Serving %s", root)
			printKeyValue(c.Out, "Files", StyleLink.Render(url+"/"))
			printKeyValue(c.Out, "Import map", StyleLink.Render(url+server.MapPath))

			return srv.Run(cmd.Context(), ln)
		},
	}

	opts.register(cmd, false)
	cmd.Flags().StringVarP(&opts.addr, "addr", "a", defaultAddr, "listen address")

	return cmd
}
