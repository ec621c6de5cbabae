package completion

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// Shells lists the shells completion scripts can be generated for.
var Shells = []string{"bash", "zsh", "fish", "powershell"}

// Command creates the `completion` command
func Command() *cobra.Command {
	var cmd = &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate a shell completion script",
		Long: `Prints a completion script for the given shell to stdout.

Bash:
  $ source <(deployctl completion bash)
  # Permanently, on Linux:
  $ deployctl completion bash > /etc/bash_completion.d/deployctl

Zsh:
  $ deployctl completion zsh > "${fpath[1]}/_deployctl"
  # Requires compinit, e.g. echo "autoload -U compinit; compinit" >> ~/.zshrc

fish:
  $ deployctl completion fish > ~/.config/fish/completions/deployctl.fish

PowerShell:
  PS> deployctl completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             Shells,
		Args:                  cobra.ExactValidArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return Run(cmd.Root(), cmd.OutOrStdout(), args[0])
		},
	}

	return cmd
}

// Run writes the completion script of root for shell to w.
func Run(root *cobra.Command, w io.Writer, shell string) error {
	switch shell {
	case "bash":
		return root.GenBashCompletion(w)
	case "zsh":
		return root.GenZshCompletion(w)
	case "fish":
		return root.GenFishCompletion(w, true)
	case "powershell":
		return root.GenPowerShellCompletionWithDesc(w)
	}
	return fmt.Errorf("unsupported shell '%s'", shell)
}
