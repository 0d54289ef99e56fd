// Package markdown renders standard Markdown to HTML for previews.
package markdown

import (
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

const extensions = parser.CommonExtensions | parser.Footnotes | parser.MathJax | parser.SuperSubscript

// ToHTML converts a Markdown fragment to HTML.
func ToHTML(md string) string {
	out := markdown.ToHTML([]byte(md), parser.NewWithExtensions(extensions), nil)
	return strings.TrimSpace(string(out))
}

// ToHTMLPage converts a Markdown document to a standalone HTML page.
func ToHTMLPage(title, md string) string {
	renderer := html.NewRenderer(html.RendererOptions{
		Title: title,
		Flags: html.CommonFlags | html.CompletePage | html.HrefTargetBlank,
	})
	out := markdown.ToHTML([]byte(md), parser.NewWithExtensions(extensions), renderer)
	return string(out)
}
