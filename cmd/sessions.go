package cmd

import (
	"fmt"

	"github.com/iksnae/devchat/internal"
	"github.com/spf13/cobra"
)

var sessionsCmd = &cobra.Command{
	Use:     "sessions",
	Aliases: []string{"list", "ls"},
	Short:   "List your chat sessions",
	Long: `List the sessions stored on the backend, newest first.

When the backend cannot be reached, the last successfully fetched list
is shown from the local cache.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a := newApp(cfg)
		defer a.Close()
		if err := a.RequireAuth(); err != nil {
			return commandError(err)
		}

		cached := a.registry.RestoreCached()
		if err := a.registry.Refresh(cmd.Context()); err != nil {
			if internal.IsAuthFailure(err) || !cached {
				return commandError(fmt.Errorf("failed to list sessions: %w", err))
			}
			internal.PrintWarning(fmt.Sprintf("Backend unavailable: %v", err))
			internal.PrintInfo("Showing the last cached session list")
		}

		printSessionList(cmd.OutOrStdout(), a.registry.Sessions(), "")
		return nil
	},
}

var sessionsDeleteCmd = &cobra.Command{
	Use:     "delete <session-id>",
	Aliases: []string{"rm"},
	Short:   "Delete a session",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := newApp(cfg)
		defer a.Close()
		if err := a.RequireAuth(); err != nil {
			return commandError(err)
		}

		if err := a.registry.Delete(cmd.Context(), args[0]); err != nil {
			return commandError(fmt.Errorf("failed to delete session: %w", err))
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted session %s\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sessionsCmd)
	sessionsCmd.AddCommand(sessionsDeleteCmd)
}
