package fs

import (
	"path"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// extractTitle returns the text of the first level-1 heading, else of the
// first heading of any level, else the file name without extension.
func extractTitle(relPath string, body []byte) string {
	reader := text.NewReader(body)
	doc := goldmark.DefaultParser().Parse(reader)

	var first, top string
	ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering || n.Kind() != ast.KindHeading {
			return ast.WalkContinue, nil
		}
		heading := n.(*ast.Heading)
		title := strings.TrimSpace(string(n.Text(body)))
		if title == "" {
			return ast.WalkContinue, nil
		}
		if first == "" {
			first = title
		}
		if heading.Level == 1 {
			top = title
			return ast.WalkStop, nil
		}
		return ast.WalkContinue, nil
	})

	switch {
	case top != "":
		return top
	case first != "":
		return first
	default:
		return strings.TrimSuffix(path.Base(relPath), path.Ext(relPath))
	}
}
