package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/iksnae/devchat/internal"
)

func TestMarkdownExporter_Export(t *testing.T) {
	tests := []struct {
		name    string
		doc     *Document
		want    []string
		notWant []string
	}{
		{
			name: "conversation",
			doc:  NewDocument(internal.CreateTestSession("s1"), internal.CreateTestMessages()),
			want: []string{
				"# Test Conversation",
				"**Session:** `s1`",
				"**Messages:** 4",
				"### You",
				"How do I print in \\*\\*Go\\*\\*?",
				"### Assistant",
				"```go\nfmt.Println(\"hi\")\n```",
				"### System",
			},
		},
		{
			name:    "untitled session",
			doc:     NewDocument(internal.Session{ID: "s2"}, nil),
			want:    []string{"# Untitled", "**Messages:** 0"},
			notWant: []string{"###"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := (&MarkdownExporter{}).Export(tt.doc, &buf); err != nil {
				t.Fatalf("Export() error = %v", err)
			}
			out := buf.String()
			for _, want := range tt.want {
				if !strings.Contains(out, want) {
					t.Errorf("output missing %q:\n%s", want, out)
				}
			}
			for _, nw := range tt.notWant {
				if strings.Contains(out, nw) {
					t.Errorf("output unexpectedly contains %q:\n%s", nw, out)
				}
			}
		})
	}
}

func TestEscapeMarkdown(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"bold escaped", "a **b**", "a \\*\\*b\\*\\*"},
		{"underscores escaped", "__init__", "\\_\\_init\\_\\_"},
		{"code fence untouched", "```\n**x**\n```", "```\n**x**\n```"},
		{"plain", "hello", "hello"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := escapeMarkdown(tt.input); got != tt.want {
				t.Errorf("escapeMarkdown() = %q, want %q", got, tt.want)
			}
		})
	}
}
