package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/iksnae/devchat/internal"
	"github.com/iksnae/devchat/internal/render"
	"github.com/mattn/go-runewidth"
)

// maxTitleWidth bounds session titles in listings (display cells)
const maxTitleWidth = 48

var (
	// Styles
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62"))

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	idStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")).
		Italic(true)

	activeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	userLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")).
			Bold(true)

	assistantLabelStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("212")).
				Bold(true)

	systemLabelStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("196")).
				Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))
)

// truncateTitle shortens s to width display cells, wide runes included
func truncateTitle(s string, width int) string {
	s = strings.Join(strings.Fields(s), " ")
	if runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, "...")
}

// printSessionList writes one line per session, marking the active one with '*'
func printSessionList(w io.Writer, sessions []internal.Session, activeID string) {
	if len(sessions) == 0 {
		fmt.Fprintln(w, dimStyle.Render("No sessions yet."))
		return
	}
	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("%d session(s)", len(sessions))))
	for _, s := range sessions {
		marker := " "
		if s.ID == activeID {
			marker = activeStyle.Render("*")
		}
		title := truncateTitle(s.DisplayTitle(), maxTitleWidth)
		pad := strings.Repeat(" ", maxTitleWidth-runewidth.StringWidth(title))
		fmt.Fprintf(w, "%s %s%s  %s\n", marker, titleStyle.Render(title), pad, idStyle.Render(s.ID))
	}
}

func roleLabel(role internal.Role) string {
	switch role {
	case internal.RoleUser:
		return userLabelStyle.Render("You")
	case internal.RoleAssistant:
		return assistantLabelStyle.Render("Assistant")
	default:
		return systemLabelStyle.Render("System")
	}
}

// printMessage writes a role label followed by the message body. Assistant
// replies go through the content renderer; user and system text is wrapped as is.
func printMessage(w io.Writer, term *render.Terminal, msg internal.Message) {
	label := roleLabel(msg.Role)
	if msg.Pending {
		label += " " + dimStyle.Render("(unconfirmed)")
	}
	fmt.Fprintln(w, label)
	if msg.Role == internal.RoleAssistant {
		fmt.Fprintln(w, term.FormatText(msg.Content))
	} else {
		fmt.Fprintln(w, term.Wrap(msg.Content))
	}
	fmt.Fprintln(w)
}

func printTranscript(w io.Writer, term *render.Terminal, msgs []internal.Message) {
	for _, msg := range msgs {
		printMessage(w, term, msg)
	}
}
