package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

var (
	headingStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	topHeadingStyle = headingStyle.
			Underline(true)

	linkStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")).
			Underline(true)

	hrefStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	inlineCodeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("203")).
			Background(lipgloss.Color("236"))

	bulletStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("62")).
			Bold(true)

	badgeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	codeBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)
)

// Terminal formats node sequences as styled terminal text
type Terminal struct {
	highlighter Highlighter
	width       int
}

// NewTerminal creates a presenter wrapping prose at width columns
// (0 disables wrapping). A nil highlighter leaves code undecorated.
func NewTerminal(h Highlighter, width int) *Terminal {
	if h == nil {
		h = PlainHighlighter{}
	}
	return &Terminal{highlighter: h, width: width}
}

// FormatText renders and formats message text in one step
func (t *Terminal) FormatText(text string) string {
	return t.Format(Render(text))
}

// Wrap word-wraps unrendered text at the presenter width
func (t *Terminal) Wrap(text string) string {
	return wrap(text, t.width)
}

// Format formats block nodes separated by blank lines
func (t *Terminal) Format(nodes []Node) string {
	parts := make([]string, 0, len(nodes))
	for _, n := range nodes {
		if s := t.block(n, t.width); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "\n\n")
}

func (t *Terminal) block(n Node, width int) string {
	switch n.Kind {
	case KindHeading:
		prefix := strings.Repeat("#", n.Level) + " "
		style := headingStyle
		if n.Level == 1 {
			style = topHeadingStyle
		}
		return style.Render(prefix + t.inline(n.Children))
	case KindList:
		return t.list(n, width)
	case KindFencedCode:
		return t.code(n)
	case KindParagraph:
		return wrap(t.inline(n.Children), width)
	default:
		return wrap(t.inline([]Node{n}), width)
	}
}

func (t *Terminal) list(n Node, width int) string {
	var lines []string
	for i, item := range n.Items {
		marker := "•"
		if n.Ordered {
			marker = strconv.Itoa(n.Start+i) + "."
		}
		indent := strings.Repeat(" ", ansi.StringWidth(marker)+1)

		var parts []string
		for _, child := range item {
			if s := t.block(child, max(width-len(indent), 0)); s != "" {
				parts = append(parts, s)
			}
		}
		body := strings.Join(parts, "\n")
		for j, line := range strings.Split(body, "\n") {
			if j == 0 {
				lines = append(lines, bulletStyle.Render(marker)+" "+line)
				continue
			}
			lines = append(lines, indent+line)
		}
	}
	return strings.Join(lines, "\n")
}

// code boxes a fenced block. Tagged blocks are highlighted under a language
// badge; untagged blocks are shown as-is.
func (t *Terminal) code(n Node) string {
	body := n.Text
	if n.Language != "" {
		body = strings.TrimSuffix(t.highlighter.Highlight(n.Language, n.Text), "\n")
	}
	box := codeBoxStyle.Render(body)
	if n.Language == "" {
		return box
	}
	return badgeStyle.Render(LanguageName(n.Language)) + "\n" + box
}

func (t *Terminal) inline(nodes []Node) string {
	var b strings.Builder
	for _, n := range nodes {
		switch n.Kind {
		case KindText:
			b.WriteString(n.Text)
		case KindInlineCode:
			b.WriteString(inlineCodeStyle.Render(n.Text))
		case KindLink:
			label := t.inline(n.Children)
			if label == "" {
				label = n.Href
			}
			b.WriteString(linkStyle.Render(label))
			if n.Href != "" && ansi.Strip(label) != n.Href {
				b.WriteString(" " + hrefStyle.Render(fmt.Sprintf("(%s)", n.Href)))
			}
		default:
			b.WriteString(t.block(n, 0))
		}
	}
	return b.String()
}

func wrap(s string, width int) string {
	if width <= 0 {
		return s
	}
	return ansi.Wordwrap(s, width, "")
}
