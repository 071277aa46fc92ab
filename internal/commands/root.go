package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pkoval/tally/internal/buildinfo"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "tally",
		Short:   "Personal finance tracker with recurring scheduled transactions",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		newRunCommand(),
		newTickCommand(),
		newGenerateCommand(),
		newRecoverCommand(),
		newAddCommand(),
		newListCommand(),
		newUpcomingCommand(),
		newConfirmCommand(),
		newRetryCommand(),
		newDeleteCommand(),
		newCancelCommand(),
		newResetCommand(),
	)

	return rootCmd
}
