package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/iksnae/devchat/internal"
)

// MarkdownExporter exports a session as a readable Markdown transcript
type MarkdownExporter struct{}

var roleHeadings = map[internal.Role]string{
	internal.RoleUser:      "You",
	internal.RoleAssistant: "Assistant",
	internal.RoleSystem:    "System",
}

// Export writes doc as Markdown
func (e *MarkdownExporter) Export(doc *Document, w io.Writer) error {
	if _, err := fmt.Fprintf(w, "# %s\n\n", doc.Session.DisplayTitle()); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(w, "**Session:** `%s`  \n", doc.Session.ID)
	_, _ = fmt.Fprintf(w, "**Messages:** %d\n\n", len(doc.Messages))

	for i, msg := range doc.Messages {
		_, _ = fmt.Fprintf(w, "---\n\n")

		heading, ok := roleHeadings[msg.Role]
		if !ok {
			heading = string(msg.Role)
		}

		// Assistant replies are already Markdown; user text is shown literally.
		content := msg.Content
		if msg.Role == internal.RoleUser {
			content = escapeMarkdown(content)
		}

		_, _ = fmt.Fprintf(w, "### %s\n\n%s\n", heading, content)
		if i < len(doc.Messages)-1 {
			_, _ = fmt.Fprintln(w)
		}
	}

	return nil
}

// escapeMarkdown escapes emphasis markers outside code fences
func escapeMarkdown(text string) string {
	lines := strings.Split(text, "\n")
	var result []string
	inCodeBlock := false

	for _, line := range lines {
		if strings.HasPrefix(line, "```") {
			inCodeBlock = !inCodeBlock
			result = append(result, line)
		} else if inCodeBlock {
			result = append(result, line)
		} else {
			line = strings.ReplaceAll(line, "**", "\\*\\*")
			line = strings.ReplaceAll(line, "__", "\\_\\_")
			result = append(result, line)
		}
	}

	return strings.Join(result, "\n")
}

// Extension returns the file extension for this format
func (e *MarkdownExporter) Extension() string {
	return "md"
}
