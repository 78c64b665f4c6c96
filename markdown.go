package inlinemedia

import (
	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/ast"
	"github.com/gomarkdown/markdown/parser"
)

// parseMarkdownURLs extracts links from markdown-formatted message text in
// context-aware mode: preformatted blocks and inline code spans are skipped,
// explicit link destinations are taken as-is and remaining text nodes go
// through the plain scanner.
func parseMarkdownURLs(content string, scan ScanFunc, maxItems int) []string {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.Autolink)
	doc := markdown.Parse([]byte(content), p)

	var urls []string
	seen := make(map[string]struct{})
	add := func(s string) bool {
		if maxItems >= 0 && len(urls) >= maxItems {
			return false
		}
		if _, ok := seen[s]; ok {
			return true
		}
		seen[s] = struct{}{}
		urls = append(urls, s)
		return true
	}
	ast.WalkFunc(doc, func(node ast.Node, entering bool) ast.WalkStatus {
		if !entering {
			return ast.GoToNext
		}
		switch n := node.(type) {
		case *ast.CodeBlock, *ast.Code:
			return ast.SkipChildren
		case *ast.Link:
			if !add(string(n.Destination)) {
				return ast.Terminate
			}
			return ast.SkipChildren
		case *ast.Text:
			for _, u := range scan(string(n.Literal), -1) {
				if !add(u) {
					return ast.Terminate
				}
			}
		}
		return ast.GoToNext
	})
	return urls
}
