package render

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	chromaStyles "github.com/alecthomas/chroma/v2/styles"
)

// Highlighter decorates source code for display. Implementations must be
// pure and return code unchanged when they cannot decorate it.
type Highlighter interface {
	Highlight(language, code string) string
}

// PlainHighlighter returns code unchanged
type PlainHighlighter struct{}

func (PlainHighlighter) Highlight(_, code string) string {
	return code
}

// ChromaHighlighter highlights code with chroma's terminal formatter
type ChromaHighlighter struct {
	style     *chroma.Style
	formatter chroma.Formatter
}

// NewChromaHighlighter creates a highlighter using the named chroma style.
// Unknown styles fall back to chroma's default.
func NewChromaHighlighter(styleName string) *ChromaHighlighter {
	style := chromaStyles.Get(styleName)
	if style == nil {
		style = chromaStyles.Fallback
	}
	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}
	return &ChromaHighlighter{style: style, formatter: formatter}
}

// Highlight tokenises code with the lexer for language, guessing from the
// code when the language is unknown.
func (h *ChromaHighlighter) Highlight(language, code string) string {
	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Analyse(code)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return code
	}

	var buf strings.Builder
	if err := h.formatter.Format(&buf, h.style, iterator); err != nil {
		return code
	}
	return buf.String()
}

// LanguageName returns chroma's display name for a language tag, or the tag itself
func LanguageName(language string) string {
	if lexer := lexers.Get(language); lexer != nil {
		return lexer.Config().Name
	}
	return language
}
