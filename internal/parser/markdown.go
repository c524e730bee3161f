package parser

import (
	"bytes"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownParser handles Markdown files using goldmark. Headings become
// plain lines in the flattened text so section titles stay retrievable.
type MarkdownParser struct{}

func (p *MarkdownParser) Parse(r io.Reader, filename string) (*Document, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	md := goldmark.New()
	reader := text.NewReader(src)
	root := md.Parser().Parse(reader)

	var blocks []string
	for n := root.FirstChild(); n != nil; n = n.NextSibling() {
		var t string
		if heading, ok := n.(*ast.Heading); ok {
			t = string(heading.Text(src))
		} else {
			t = extractText(n, src)
		}
		if t != "" {
			blocks = append(blocks, t)
		}
	}

	return &Document{
		Title: titleFromFilename(filename),
		Text:  strings.Join(blocks, "\n\n"),
	}, nil
}

// extractText gets the text content of a goldmark AST node.
func extractText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	if n.Type() == ast.TypeBlock {
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			line := lines.At(i)
			buf.Write(line.Value(src))
		}
	}
	if buf.Len() == 0 {
		// Container blocks (lists, quotes) carry no lines of their own.
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			if t := extractText(c, src); t != "" {
				if buf.Len() > 0 {
					buf.WriteByte('\n')
				}
				buf.WriteString(t)
			}
		}
	}
	return strings.TrimSpace(buf.String())
}
