package export

import (
	"encoding/json"
	"io"
)

// JSONExporter exports a session and its messages as one pretty-printed JSON object
type JSONExporter struct{}

// Export writes doc as JSON
func (e *JSONExporter) Export(doc *Document, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(doc)
}

// Extension returns the file extension for this format
func (e *JSONExporter) Extension() string {
	return "json"
}
