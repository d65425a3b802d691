package export

import (
	"encoding/json"
	"fmt"
	"io"
)

// JSONLExporter exports one message per line
type JSONLExporter struct{}

type jsonlLine struct {
	SessionID string `json:"sessionId"`
	Role      string `json:"role"`
	Content   string `json:"content"`
}

// Export writes each message of doc as a JSON line
func (e *JSONLExporter) Export(doc *Document, w io.Writer) error {
	enc := json.NewEncoder(w)

	for _, msg := range doc.Messages {
		line := jsonlLine{
			SessionID: doc.Session.ID,
			Role:      string(msg.Role),
			Content:   msg.Content,
		}
		if err := enc.Encode(line); err != nil {
			return fmt.Errorf("failed to encode message: %w", err)
		}
	}

	return nil
}

// Extension returns the file extension for this format
func (e *JSONLExporter) Extension() string {
	return "jsonl"
}
