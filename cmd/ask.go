package cmd

import (
	"fmt"
	"strings"

	"github.com/iksnae/devchat/internal"
	"github.com/spf13/cobra"
)

var askSession string

var askCmd = &cobra.Command{
	Use:   "ask <message>",
	Short: "Send a single message and print the reply",
	Long: `Send one message to the assistant and print the rendered reply.

Without --session a new session is started; its ID is printed so the
conversation can be continued with --session.`,
	Example: `  devchat ask "How do I reverse a slice in Go?"
  devchat ask --session 3f2c... "And in Python?"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text := strings.Join(args, " ")

		a := newApp(cfg)
		defer a.Close()
		if err := a.RequireAuth(); err != nil {
			return commandError(err)
		}

		if askSession != "" {
			if err := a.registry.Load(cmd.Context(), askSession); err != nil {
				return commandError(fmt.Errorf("failed to load session: %w", err))
			}
		}

		var result internal.SendResult
		err := internal.ShowProgress(cmd.Context(), "Thinking...", func() error {
			var sendErr error
			result, sendErr = a.pipeline.Send(cmd.Context(), text)
			return sendErr
		})
		if err != nil {
			return commandError(err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, a.terminal.FormatText(result.Reply.Content))

		if result.Outcome == internal.OutcomeFailed {
			return fmt.Errorf("message not answered: %w", result.Err)
		}
		fmt.Fprintln(cmd.ErrOrStderr(), dimStyle.Render("Session: "+result.SessionID))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(askCmd)
	askCmd.Flags().StringVarP(&askSession, "session", "s", "", "Continue an existing session")
}
