package export

import (
	"bytes"
	"testing"

	"github.com/iksnae/devchat/internal"
	"gopkg.in/yaml.v3"
)

func TestYAMLExporter_Export(t *testing.T) {
	doc := NewDocument(internal.CreateTestSession("s1"), internal.CreateTestMessages())

	var buf bytes.Buffer
	if err := (&YAMLExporter{}).Export(doc, &buf); err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	var got Document
	if err := yaml.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not valid YAML: %v\n%s", err, buf.String())
	}
	if got.Session != doc.Session {
		t.Errorf("session = %+v, want %+v", got.Session, doc.Session)
	}
	if len(got.Messages) != len(doc.Messages) {
		t.Fatalf("got %d messages, want %d", len(got.Messages), len(doc.Messages))
	}
	if got.Messages[1].Content != doc.Messages[1].Content {
		t.Errorf("multi-line content changed: %q", got.Messages[1].Content)
	}
	if !bytes.Contains(buf.Bytes(), []byte("session_id: s1")) {
		t.Errorf("expected session_id key in output:\n%s", buf.String())
	}
}
