// Package render turns assistant message text into a sequence of typed
// nodes and formats those nodes for the terminal.
package render

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	gmtext "github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// Kind identifies a render node variant
type Kind string

const (
	KindParagraph  Kind = "paragraph"
	KindHeading    Kind = "heading"
	KindList       Kind = "list"
	KindLink       Kind = "link"
	KindInlineCode Kind = "inline-code"
	KindFencedCode Kind = "fenced-code"
	// KindText is a literal run inside a paragraph, heading, list item or link.
	KindText Kind = "text"
)

// MaxHeadingLevel is the deepest heading level emitted; deeper headings are clamped.
const MaxHeadingLevel = 3

// Node is one element of rendered message content. Which fields are set
// depends on Kind.
type Node struct {
	Kind Kind

	Level   int      // heading
	Ordered bool     // list
	Start   int      // ordered list start number
	Items   [][]Node // list items, each a sequence of block nodes

	Href     string // link
	Language string // fenced-code; empty when untagged
	Text     string // text, inline-code, fenced-code

	Children []Node // inline content of paragraph, heading and link
}

var markdown = goldmark.New(goldmark.WithExtensions(extension.Strikethrough))

// Render parses text and returns its node sequence. It never fails: any
// input, including malformed markup, yields nodes covering its text.
func Render(text string) []Node {
	src := []byte(text)
	doc := markdown.Parser().Parse(gmtext.NewReader(src))
	return blocks(doc, src)
}

func blocks(parent ast.Node, src []byte) []Node {
	var out []Node
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		out = append(out, block(n, src)...)
	}
	return out
}

func block(n ast.Node, src []byte) []Node {
	switch n := n.(type) {
	case *ast.Paragraph, *ast.TextBlock:
		return []Node{{Kind: KindParagraph, Children: inlines(n, src)}}

	case *ast.Heading:
		level := n.Level
		if level > MaxHeadingLevel {
			level = MaxHeadingLevel
		}
		return []Node{{Kind: KindHeading, Level: level, Children: inlines(n, src)}}

	case *ast.List:
		list := Node{Kind: KindList, Ordered: n.IsOrdered()}
		if list.Ordered {
			list.Start = n.Start
		}
		for item := n.FirstChild(); item != nil; item = item.NextSibling() {
			list.Items = append(list.Items, blocks(item, src))
		}
		return []Node{list}

	case *ast.FencedCodeBlock:
		var lang string
		if n.Info != nil {
			lang = string(n.Language(src))
		}
		return []Node{{Kind: KindFencedCode, Language: lang, Text: codeText(n.Lines(), src)}}

	case *ast.CodeBlock:
		return []Node{{Kind: KindFencedCode, Text: codeText(n.Lines(), src)}}

	case *ast.HTMLBlock:
		raw := linesText(n.Lines(), src)
		if n.HasClosure() {
			raw += string(n.ClosureLine.Value(src))
		}
		raw = trimLineEnding(raw)
		if raw == "" {
			return nil
		}
		return []Node{{Kind: KindParagraph, Children: []Node{{Kind: KindText, Text: raw}}}}

	case *ast.ThematicBreak:
		return nil

	default:
		// block quotes and extension containers contribute their children
		return blocks(n, src)
	}
}

func linesText(lines *gmtext.Segments, src []byte) string {
	var b strings.Builder
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		b.Write(seg.Value(src))
	}
	return b.String()
}

// codeText joins code lines and drops exactly one trailing line ending.
func codeText(lines *gmtext.Segments, src []byte) string {
	return trimLineEnding(linesText(lines, src))
}

// trimLineEnding removes one trailing "\n" or "\r\n"
func trimLineEnding(s string) string {
	if !strings.HasSuffix(s, "\n") {
		return s
	}
	return strings.TrimSuffix(strings.TrimSuffix(s, "\n"), "\r")
}

func inlines(parent ast.Node, src []byte) []Node {
	var out []Node
	for c := parent.FirstChild(); c != nil; c = c.NextSibling() {
		out = appendInline(out, c, src)
	}
	return out
}

func appendInline(out []Node, n ast.Node, src []byte) []Node {
	switch n := n.(type) {
	case *ast.Text:
		s := decodeText(n.Segment.Value(src))
		if n.SoftLineBreak() || n.HardLineBreak() {
			s += "\n"
		}
		return appendText(out, s)

	case *ast.String:
		return appendText(out, string(n.Value))

	case *ast.CodeSpan:
		return append(out, Node{Kind: KindInlineCode, Text: rawText(n, src)})

	case *ast.Link:
		return append(out, Node{Kind: KindLink, Href: string(n.Destination), Children: inlines(n, src)})

	case *ast.Image:
		// images are shown as links labelled by their alt text
		return append(out, Node{Kind: KindLink, Href: string(n.Destination), Children: inlines(n, src)})

	case *ast.AutoLink:
		label := string(n.Label(src))
		href := string(n.URL(src))
		if n.AutoLinkType == ast.AutoLinkEmail && !strings.HasPrefix(strings.ToLower(href), "mailto:") {
			href = "mailto:" + href
		}
		return append(out, Node{Kind: KindLink, Href: href, Children: []Node{{Kind: KindText, Text: label}}})

	case *ast.RawHTML:
		for i := 0; i < n.Segments.Len(); i++ {
			seg := n.Segments.At(i)
			out = appendText(out, string(seg.Value(src)))
		}
		return out

	default:
		// emphasis, strong and strikethrough are flattened to their text
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			out = appendInline(out, c, src)
		}
		return out
	}
}

// decodeText resolves backslash escapes and character references
func decodeText(b []byte) string {
	b = util.UnescapePunctuations(b)
	b = util.ResolveNumericReferences(b)
	b = util.ResolveEntityNames(b)
	return string(b)
}

// appendText merges adjacent literal runs
func appendText(out []Node, s string) []Node {
	if s == "" {
		return out
	}
	if last := len(out) - 1; last >= 0 && out[last].Kind == KindText {
		out[last].Text += s
		return out
	}
	return append(out, Node{Kind: KindText, Text: s})
}

func rawText(n ast.Node, src []byte) string {
	var b strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch c := c.(type) {
		case *ast.Text:
			b.Write(c.Segment.Value(src))
		case *ast.String:
			b.Write(c.Value)
		}
	}
	return b.String()
}

// PlainText returns the literal text carried by n and its descendants
func PlainText(n Node) string {
	var b strings.Builder
	writePlain(&b, n)
	return b.String()
}

func writePlain(b *strings.Builder, n Node) {
	switch n.Kind {
	case KindText, KindInlineCode, KindFencedCode:
		b.WriteString(n.Text)
	case KindList:
		for i, item := range n.Items {
			if i > 0 {
				b.WriteString("\n")
			}
			for j, child := range item {
				if j > 0 {
					b.WriteString("\n")
				}
				writePlain(b, child)
			}
		}
	default:
		for _, child := range n.Children {
			writePlain(b, child)
		}
	}
}
