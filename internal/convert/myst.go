package convert

import (
	"fmt"
	"strings"

	"github.com/julien-sobczak/the-noteexporter/internal/resolve"
	"github.com/julien-sobczak/the-noteexporter/pkg/text"
	"github.com/yuin/goldmark/ast"
)

// mystAdmonitions maps Obsidian callout types to MyST admonitions.
// Unknown types use the generic admonition directive.
var mystAdmonitions = map[string]string{
	"note":      "note",
	"info":      "note",
	"todo":      "note",
	"abstract":  "seealso",
	"summary":   "seealso",
	"tldr":      "seealso",
	"tip":       "tip",
	"hint":      "hint",
	"important": "important",
	"success":   "tip",
	"check":     "tip",
	"done":      "tip",
	"question":  "hint",
	"help":      "hint",
	"faq":       "hint",
	"warning":   "warning",
	"caution":   "caution",
	"attention": "attention",
	"failure":   "error",
	"fail":      "error",
	"missing":   "error",
	"error":     "error",
	"danger":    "danger",
	"bug":       "danger",
}

// setMySTRules overrides the Markdown rules with MyST directives.
func setMySTRules(t *Tokenizer) {
	t.SetRule(KindHighlight, func(r *Renderer, n ast.Node) string {
		return "<mark>" + r.Children(n) + "</mark>"
	})
	t.SetRule(KindCallout, func(r *Renderer, n ast.Node) string {
		callout := n.(*Callout)
		fence := strings.Repeat(":", 3+directiveDepth(n))

		var sb strings.Builder
		admonition, known := mystAdmonitions[callout.CalloutType]
		if known && callout.Title() == nil && !callout.Foldable() {
			sb.WriteString(fence + "{" + admonition + "}\n")
		} else {
			sb.WriteString(fence + "{admonition} " + calloutTitle(r, callout) + "\n")
			class := callout.CalloutType
			if known {
				class = admonition
			}
			if callout.Foldable() {
				class += " dropdown"
			}
			sb.WriteString(":class: " + class + "\n")
			if callout.Fold == "+" {
				sb.WriteString(":open:\n")
			}
		}
		sb.WriteString(calloutBody(r, callout))
		sb.WriteString(fence)
		return sb.String()
	})
	t.SetRule(KindColumns, func(r *Renderer, n ast.Node) string {
		fence := strings.Repeat(":", 3+directiveDepth(n))
		var sb strings.Builder
		sb.WriteString(fmt.Sprintf("%s{grid} %d\n", fence, n.ChildCount()))
		sb.WriteString(r.TightBlocks(n))
		sb.WriteString(fence)
		return sb.String()
	})
	t.SetRule(KindColumn, func(r *Renderer, n ast.Node) string {
		fence := strings.Repeat(":", 3+directiveDepth(n))
		return fence + "{grid-item}\n" + r.Blocks(n) + fence
	})
	t.SetRule(KindWikilink, wikilinkRule(mystAttachment, markdownReference))
}

// directiveDepth returns the number of nested directives inside a node.
// Outer directives use longer fences than the inner ones.
func directiveDepth(n ast.Node) int {
	depth := 0
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		d := directiveDepth(c)
		switch c.Kind() {
		case KindCallout, KindColumns, KindColumn:
			d++
		}
		if d > depth {
			depth = d
		}
	}
	return depth
}

func mystAttachment(r *Renderer, link *resolve.Link, fileName string) string {
	switch link.Type {
	case resolve.Image, resolve.Diagram:
		if link.Width == 0 {
			return markdownAttachment(r, link, fileName)
		}
		var sb strings.Builder
		sb.WriteString(":::{image} " + fileName + "\n")
		sb.WriteString(":alt: " + attachmentAlt(link) + "\n")
		sb.WriteString(fmt.Sprintf(":width: %dpx\n", link.Width))
		if link.Height > 0 {
			sb.WriteString(fmt.Sprintf(":height: %dpx\n", link.Height))
		}
		sb.WriteString(":::")
		return text.EnsureTrailingNewline(sb.String())
	}
	return markdownReference(r, link, fileName)
}
