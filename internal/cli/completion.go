package cli

import (
	"github.com/spf13/cobra"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for esmap.

To load completions:

Bash:
  $ source <(esmap completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ esmap completion bash > /etc/bash_completion.d/esmap
  # macOS:
  $ esmap completion bash > $(brew --prefix)/etc/bash_completion.d/esmap

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. You can execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ esmap completion zsh > "${fpath[1]}/_esmap"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ esmap completion fish | source

  # To load completions for each session, execute once:
  $ esmap completion fish > ~/.config/fish/completions/esmap.fish

PowerShell:
  PS> esmap completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> esmap completion powershell > esmap.ps1
  # and source this file from your PowerShell profile.
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := cmd.Root()
			switch args[0] {
			case "bash":
				return root.GenBashCompletionV2(c.Out, true)
			case "zsh":
				return root.GenZshCompletion(c.Out)
			case "fish":
				return root.GenFishCompletion(c.Out, true)
			case "powershell":
				return root.GenPowerShellCompletionWithDesc(c.Out)
			}
			return nil
		},
	}

	return cmd
}
