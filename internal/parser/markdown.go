package parser

import (
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// extractMarkdown strips markdown structure down to plain text, one block per
// line, so headings and prose embed the same way as PDF text does.
func extractMarkdown(r io.ReaderAt, size int64) ([]string, error) {
	src, err := io.ReadAll(io.NewSectionReader(r, 0, size))
	if err != nil {
		return nil, err
	}

	md := goldmark.New()
	reader := text.NewReader(src)
	doc := md.Parser().Parse(reader)

	var blocks []string
	for node := doc.FirstChild(); node != nil; node = node.NextSibling() {
		switch n := node.(type) {
		case *ast.FencedCodeBlock:
			var code strings.Builder
			for i := 0; i < n.Lines().Len(); i++ {
				line := n.Lines().At(i)
				code.Write(line.Value(src))
			}
			if code.Len() > 0 {
				blocks = append(blocks, code.String())
			}
		default:
			txt := string(node.Text(src))
			if strings.TrimSpace(txt) != "" {
				blocks = append(blocks, txt)
			}
		}
	}
	return []string{strings.Join(blocks, "\n")}, nil
}
