package convert

import (
	"fmt"
	"html"
	"strings"

	"github.com/julien-sobczak/the-noteexporter/internal/resolve"
	"github.com/yuin/goldmark/ast"
)

// setHMDRules overrides the Markdown rules with HTML elements.
func setHMDRules(t *Tokenizer) {
	t.SetRule(KindHighlight, func(r *Renderer, n ast.Node) string {
		return "<mark>" + r.Children(n) + "</mark>"
	})
	t.SetRule(KindCallout, func(r *Renderer, n ast.Node) string {
		callout := n.(*Callout)
		class := "callout callout-" + callout.CalloutType
		body := calloutBody(r, callout)

		var sb strings.Builder
		if callout.Foldable() {
			open := ""
			if callout.Fold == "+" {
				open = " open"
			}
			sb.WriteString(fmt.Sprintf("<details class=%q%s>\n", class, open))
			sb.WriteString("<summary>" + calloutTitle(r, callout) + "</summary>\n")
		} else {
			sb.WriteString(fmt.Sprintf("<div class=%q>\n", class))
			sb.WriteString("<p class=\"callout-title\">" + calloutTitle(r, callout) + "</p>\n")
		}
		if body != "" {
			sb.WriteString("\n" + body + "\n")
		}
		if callout.Foldable() {
			sb.WriteString("</details>")
		} else {
			sb.WriteString("</div>")
		}
		return sb.String()
	})
	t.SetRule(KindColumns, func(r *Renderer, n ast.Node) string {
		return "<div style=\"display: flex; gap: 1em\">\n" + r.TightBlocks(n) + "</div>"
	})
	t.SetRule(KindColumn, func(r *Renderer, n ast.Node) string {
		width := n.(*Column).Width
		if width == "" {
			width = "1"
		}
		return fmt.Sprintf("<div style=\"flex: %s\">\n\n", html.EscapeString(width)) + r.Blocks(n) + "\n</div>"
	})
	t.SetRule(KindWikilink, wikilinkRule(hmdAttachment, markdownReference))
}

func hmdAttachment(r *Renderer, link *resolve.Link, fileName string) string {
	src := html.EscapeString(fileName)
	switch link.Type {
	case resolve.Video:
		return fmt.Sprintf("<video src=%q controls></video>", src)
	case resolve.Audio:
		return fmt.Sprintf("<audio src=%q controls></audio>", src)
	}
	if link.Width == 0 {
		return markdownAttachment(r, link, fileName)
	}
	size := fmt.Sprintf(" width=\"%d\"", link.Width)
	if link.Height > 0 {
		size += fmt.Sprintf(" height=\"%d\"", link.Height)
	}
	return fmt.Sprintf("<img src=%q alt=%q%s />", src, html.EscapeString(attachmentAlt(link)), size)
}
