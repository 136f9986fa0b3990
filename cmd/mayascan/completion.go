package mayascan

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Print a completion script for mayascan to stdout.

The script completes subcommands and flags, including the scan targets
(--file, --dir, --open) and the history, log and quarantine commands.
Load it once per shell session or install it in your shell's completion
directory as shown below.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return rootCmd.GenBashCompletion(os.Stdout)
			case "zsh":
				return rootCmd.GenZshCompletion(os.Stdout)
			case "fish":
				return rootCmd.GenFishCompletion(os.Stdout, true)
			case "powershell":
				return rootCmd.GenPowerShellCompletionWithDesc(os.Stdout)
			default:
				return fmt.Errorf("unsupported shell: %s", args[0])
			}
		},
		Example: `
# Bash
mayascan completion bash > /etc/bash_completion.d/mayascan

# Zsh
mayascan completion zsh > "${fpath[1]}/_mayascan"

# Fish
mayascan completion fish > ~/.config/fish/completions/mayascan.fish

# PowerShell
mayascan completion powershell > $PROFILE\mayascan.ps1
`,
	}
	rootCmd.AddCommand(cmd)
}
