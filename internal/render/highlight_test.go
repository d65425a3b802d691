package render

import (
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
)

func TestChromaHighlighter_KeepsCode(t *testing.T) {
	tests := []struct {
		name     string
		language string
		code     string
	}{
		{"known language", "go", "package main\n\nfunc main() {}\n"},
		{"case-insensitive tag", "Python", "print(1)\n"},
		{"unknown language", "no-such-lang", "just some text\n"},
	}

	h := NewChromaHighlighter("monokai")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := h.Highlight(tt.language, tt.code)
			assert.Equal(t, tt.code, ansi.Strip(got), "highlighting must only add escape sequences")
		})
	}
}

func TestChromaHighlighter_UnknownStyleFallsBack(t *testing.T) {
	h := NewChromaHighlighter("definitely-not-a-style")
	assert.NotNil(t, h.style)
	assert.Equal(t, "x := 1\n", ansi.Strip(h.Highlight("go", "x := 1\n")))
}

func TestPlainHighlighter(t *testing.T) {
	assert.Equal(t, "a < b", PlainHighlighter{}.Highlight("go", "a < b"))
}

func TestLanguageName(t *testing.T) {
	assert.Equal(t, "Go", LanguageName("go"))
	assert.Equal(t, "mystery", LanguageName("mystery"))
}
