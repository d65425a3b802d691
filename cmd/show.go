package cmd

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/iksnae/devchat/internal"
	"github.com/spf13/cobra"
)

var (
	limit int
)

var (
	// Styles for show command
	sessionHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("212")).
				MarginBottom(1)

	sessionMetaStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("243"))
)

// showCmd represents the show command
var showCmd = &cobra.Command{
	Use:   "show <session-id>",
	Short: "Show messages for a specific session",
	Long: `Display the history of a chat session.

Assistant replies are rendered with headings, lists and
syntax-highlighted code blocks.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sessionID := args[0]

		a := newApp(cfg)
		defer a.Close()
		if err := a.RequireAuth(); err != nil {
			return commandError(err)
		}

		// Best effort: the list only supplies the title.
		a.registry.RestoreCached()
		if err := a.registry.Refresh(cmd.Context()); err != nil {
			if internal.IsAuthFailure(err) {
				return commandError(err)
			}
			internal.LogDebug("Session list unavailable: %v", err)
		}

		if err := a.registry.Load(cmd.Context(), sessionID); err != nil {
			return commandError(fmt.Errorf("failed to load session: %w", err))
		}

		session, ok := a.registry.Lookup(sessionID)
		if !ok {
			session = internal.Session{ID: sessionID}
		}
		messages := a.registry.Transcript().Messages()

		out := cmd.OutOrStdout()
		displaySessionHeader(out, session, len(messages))

		total := len(messages)
		if limit > 0 && limit < len(messages) {
			messages = messages[:limit]
		}
		printTranscript(out, a.terminal, messages)

		if limit > 0 && limit < total {
			fmt.Fprintln(out, dimStyle.Italic(true).Render(fmt.Sprintf("... (%d more message(s))", total-limit)))
		}
		return nil
	},
}

func displaySessionHeader(w io.Writer, session internal.Session, count int) {
	fmt.Fprintln(w, sessionHeaderStyle.Render(session.DisplayTitle()))
	fmt.Fprintln(w, sessionMetaStyle.Render(fmt.Sprintf("Session: %s • Messages: %d", session.ID, count)))
	fmt.Fprintln(w)
}

func init() {
	rootCmd.AddCommand(showCmd)
	showCmd.Flags().IntVarP(&limit, "limit", "n", 0, "Limit number of messages to show")
}
