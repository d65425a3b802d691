package export

import (
	"fmt"
	"io"

	"github.com/iksnae/devchat/internal"
)

// Document is a loaded session ready to be written out
type Document struct {
	Session  internal.Session   `json:"session" yaml:"session"`
	Messages []internal.Message `json:"messages" yaml:"messages"`
}

// NewDocument builds a document from a session and its history
func NewDocument(session internal.Session, messages []internal.Message) *Document {
	if messages == nil {
		messages = []internal.Message{}
	}
	return &Document{Session: session, Messages: messages}
}

// Exporter defines the interface for all export formats
type Exporter interface {
	Export(doc *Document, w io.Writer) error
	Extension() string
}

// Formats lists the accepted format names
var Formats = []string{"md", "json", "yaml", "jsonl"}

// NewExporter creates a new exporter based on format
func NewExporter(format string) (Exporter, error) {
	switch format {
	case "jsonl":
		return &JSONLExporter{}, nil
	case "md", "markdown":
		return &MarkdownExporter{}, nil
	case "yaml", "yml":
		return &YAMLExporter{}, nil
	case "json":
		return &JSONExporter{}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s (supported: md, json, yaml, jsonl)", format)
	}
}
