package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/iksnae/devchat/internal"
	"github.com/peterh/liner"
	"github.com/spf13/cobra"
)

const chatHelp = `Commands:
  /new           Start a new session
  /sessions      Refresh and list your sessions
  /load <id>     Switch to a session and show its history
  /delete <id>   Delete a session
  /whoami        Show the signed-in user
  /logout        Sign out and leave the chat
  /help          Show this help
  /quit          Leave the chat
Anything else is sent to the assistant.`

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Open the interactive chat view",
	Long: `Open an interactive conversation with the assistant.

Replies are rendered with headings, lists and syntax-highlighted code
blocks. Type /help inside the chat for the available commands.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a := newApp(cfg)
		defer a.Close()
		if err := a.RequireAuth(); err != nil {
			return commandError(err)
		}
		return runChat(cmd, a)
	},
}

// lineReader is the prompt source for the chat loop
type lineReader interface {
	Prompt(prompt string) (string, error)
	Close() error
}

// scanReader reads prompts from a non-interactive input
type scanReader struct {
	scanner *bufio.Scanner
}

func (r *scanReader) Prompt(string) (string, error) {
	if !r.scanner.Scan() {
		if err := r.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return r.scanner.Text(), nil
}

func (r *scanReader) Close() error { return nil }

// historyReader is a liner prompt that persists its history on close
type historyReader struct {
	*liner.State
	path string
}

func newHistoryReader(path string) *historyReader {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)
	if f, err := os.Open(path); err == nil {
		_, _ = line.ReadHistory(f)
		f.Close()
	}
	return &historyReader{State: line, path: path}
}

func (r *historyReader) Prompt(prompt string) (string, error) {
	input, err := r.State.Prompt(prompt)
	if err == nil && strings.TrimSpace(input) != "" {
		r.AppendHistory(input)
	}
	return input, err
}

func (r *historyReader) Close() error {
	if f, err := os.OpenFile(r.path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600); err == nil {
		_, _ = r.WriteHistory(f)
		f.Close()
	} else {
		internal.LogDebug("Failed to save chat history: %v", err)
	}
	return r.State.Close()
}

// chatView is the protected conversation view
type chatView struct {
	a   *app
	out io.Writer
}

func runChat(cmd *cobra.Command, a *app) error {
	var reader lineReader
	if f, ok := cmd.InOrStdin().(*os.File); ok && internal.IsTerminal(f) {
		reader = newHistoryReader(a.cfg.Paths.HistoryPath())
	} else {
		reader = &scanReader{scanner: bufio.NewScanner(cmd.InOrStdin())}
	}
	defer reader.Close()

	view := &chatView{a: a, out: cmd.OutOrStdout()}
	return view.run(cmd.Context(), reader)
}

func (c *chatView) run(ctx context.Context, reader lineReader) error {
	if ctx == nil {
		ctx = context.Background()
	}

	fmt.Fprintf(c.out, "%s %s\n", headerStyle.Render("devchat"),
		dimStyle.Render(fmt.Sprintf("signed in as %s <%s>", c.a.profile.Name, c.a.profile.Email)))
	fmt.Fprintln(c.out, dimStyle.Render("Type /help for commands, /quit to leave."))
	fmt.Fprintln(c.out)

	if c.a.registry.RestoreCached() {
		internal.LogDebug("Showing cached session list")
	}
	if err := c.a.registry.Refresh(ctx); err != nil {
		if internal.IsAuthFailure(err) {
			return commandError(err)
		}
		internal.LogWarn("Could not refresh sessions: %v", err)
	}

	for {
		input, err := reader.Prompt(c.prompt())
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
				fmt.Fprintln(c.out)
				return nil
			}
			return err
		}

		quit, err := c.handleLine(ctx, input)
		if err != nil {
			return commandError(err)
		}
		if quit {
			return nil
		}
	}
}

func (c *chatView) prompt() string {
	title := "new session"
	if s, ok := c.a.registry.Lookup(c.a.registry.ActiveID()); ok {
		title = truncateTitle(s.DisplayTitle(), 24)
	}
	return fmt.Sprintf("[%s] > ", title)
}

// handleLine processes one line of input. It reports whether the view should
// close; a non-nil error means the view must be left (authentication lost).
func (c *chatView) handleLine(ctx context.Context, line string) (bool, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return false, nil
	}
	if !strings.HasPrefix(line, "/") {
		return false, c.send(ctx, line)
	}

	command, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)
	reg := c.a.registry

	switch command {
	case "/quit", "/exit":
		return true, nil

	case "/help":
		fmt.Fprintln(c.out, chatHelp)

	case "/new":
		id := reg.CreateNew()
		fmt.Fprintf(c.out, "Started a new session %s\n", idStyle.Render(id))

	case "/sessions":
		if err := reg.Refresh(ctx); err != nil {
			if internal.IsAuthFailure(err) {
				return false, err
			}
			fmt.Fprintf(c.out, "Could not refresh sessions: %v\n", err)
		}
		printSessionList(c.out, reg.Sessions(), reg.ActiveID())

	case "/load":
		if err := reg.Load(ctx, arg); err != nil {
			if internal.IsAuthFailure(err) {
				return false, err
			}
			fmt.Fprintf(c.out, "Could not load session: %v\n", err)
			return false, nil
		}
		printTranscript(c.out, c.a.terminal, reg.Transcript().Messages())

	case "/delete":
		if arg == "" {
			fmt.Fprintln(c.out, "Usage: /delete <session-id>")
			return false, nil
		}
		wasActive := arg == reg.ActiveID()
		if err := reg.Delete(ctx, arg); err != nil {
			if internal.IsAuthFailure(err) {
				return false, err
			}
			fmt.Fprintf(c.out, "Could not delete session: %v\n", err)
			return false, nil
		}
		fmt.Fprintf(c.out, "Deleted session %s\n", idStyle.Render(arg))
		if wasActive {
			fmt.Fprintf(c.out, "Started a new session %s\n", idStyle.Render(reg.ActiveID()))
		}

	case "/whoami":
		printProfile(c.out, c.a.profile)

	case "/logout":
		if err := c.a.Logout(); err != nil {
			return false, fmt.Errorf("failed to log out: %w", err)
		}
		fmt.Fprintln(c.out, "Logged out.")
		return true, nil

	default:
		fmt.Fprintf(c.out, "Unknown command %s. Type /help for commands.\n", command)
	}
	return false, nil
}

func (c *chatView) send(ctx context.Context, text string) error {
	var result internal.SendResult
	err := internal.ShowProgress(ctx, "Thinking...", func() error {
		var sendErr error
		result, sendErr = c.a.pipeline.Send(ctx, text)
		return sendErr
	})
	if err != nil {
		if internal.IsAuthFailure(err) {
			return err
		}
		fmt.Fprintf(c.out, "%v\n", err)
		return nil
	}

	switch result.Outcome {
	case internal.OutcomeReplied, internal.OutcomeFailed:
		if result.Err != nil {
			internal.LogDebug("Send failed: %v", result.Err)
		}
		printMessage(c.out, c.a.terminal, result.Reply)
	case internal.OutcomeDiscarded:
		fmt.Fprintln(c.out, dimStyle.Render("(a reply arrived for a session that is no longer open)"))
	}
	return nil
}

func init() {
	rootCmd.AddCommand(chatCmd)
}
