package convert

import (
	"fmt"
	"path"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/gosimple/slug"
	"github.com/julien-sobczak/the-noteexporter/internal/resolve"
	"github.com/julien-sobczak/the-noteexporter/pkg/text"
	"github.com/yuin/goldmark/ast"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/util"
)

// typstSpecialChars are interpreted by Typst in markup mode.
const typstSpecialChars = "\\()[]{}*_#.$@<>`~/"

// escapeTypst protects literal text. Markdown escapes and entities are
// resolved first so that "\*" is not escaped twice.
func escapeTypst(s string) string {
	value := util.UnescapePunctuations(util.ResolveEntityNames(util.ResolveNumericReferences([]byte(s))))
	var sb strings.Builder
	for _, c := range string(value) {
		if strings.ContainsRune(typstSpecialChars, c) {
			sb.WriteByte('\\')
		}
		sb.WriteRune(c)
	}
	return sb.String()
}

var typstLineText = textRule(" \\\n")

// typstText renders text like other formats but also escapes the markers
// of headings and lists that Typst recognizes at the start of a line.
func typstText(r *Renderer, n ast.Node) string {
	value := typstLineText(r, n)
	if n.(*ast.Text).IsRaw() || !startsLine(n) {
		return value
	}
	switch {
	case strings.HasPrefix(value, "="),
		strings.HasPrefix(value, "+ "),
		strings.HasPrefix(value, "- "):
		return "\\" + value
	}
	return value
}

// startsLine reports if the inline node is the first one of a line in the output.
func startsLine(n ast.Node) bool {
	for {
		if prev := n.PreviousSibling(); prev != nil {
			text, ok := prev.(*ast.Text)
			return ok && (text.SoftLineBreak() || text.HardLineBreak())
		}
		parent := n.Parent()
		if parent == nil || parent.Type() == ast.TypeBlock || parent.Type() == ast.TypeDocument {
			return true
		}
		n = parent
	}
}

// typstString quotes a value as a Typst string literal.
func typstString(s string) string {
	var sb strings.Builder
	sb.WriteByte('"')
	for _, c := range s {
		switch c {
		case '"', '\\':
			sb.WriteByte('\\')
			sb.WriteRune(c)
		case '\n':
			sb.WriteString(`\n`)
		default:
			sb.WriteRune(c)
		}
	}
	sb.WriteByte('"')
	return sb.String()
}

// typstContent wraps rendered blocks in a content block.
func typstContent(content string) string {
	content = strings.TrimRight(content, "\n")
	if !strings.Contains(content, "\n") {
		return "[" + content + "]"
	}
	return "[\n" + content + "\n]"
}

// setTypstRules installs the Typst render rules.
func setTypstRules(t *Tokenizer) {
	t.SetRule(ast.KindDocument, renderDocument)
	t.SetRule(ast.KindParagraph, renderParagraph)
	t.SetRule(ast.KindTextBlock, renderParagraph)
	t.SetRule(ast.KindText, typstText)
	t.SetRule(ast.KindString, renderString)
	t.SetRule(ast.KindHeading, func(r *Renderer, n ast.Node) string {
		heading := n.(*ast.Heading)
		result := strings.Repeat("=", heading.Level) + " " + r.Children(n)
		if label := slug.Make(r.PlainText(n)); label != "" {
			result += " <" + label + ">"
		}
		return result
	})
	t.SetRule(ast.KindThematicBreak, func(r *Renderer, n ast.Node) string {
		return "#line(length: 100%)"
	})
	t.SetRule(ast.KindEmphasis, func(r *Renderer, n ast.Node) string {
		emphasis := n.(*ast.Emphasis)
		content := r.Children(n)
		if emphasis.Level >= 2 {
			if touchesWord(r, n) {
				return "#strong[" + content + "]"
			}
			return "*" + content + "*"
		}
		if touchesWord(r, n) {
			return "#emph[" + content + "]"
		}
		return "_" + content + "_"
	})
	t.SetRule(ast.KindCodeSpan, func(r *Renderer, n ast.Node) string {
		code := codeSpanValue(r, n)
		if strings.Contains(code, "`") {
			return "#raw(" + typstString(code) + ")"
		}
		return "`" + code + "`"
	})
	t.SetRule(ast.KindFencedCodeBlock, renderMarkdownCodeBlock)
	t.SetRule(ast.KindCodeBlock, renderMarkdownCodeBlock)
	t.SetRule(ast.KindBlockquote, func(r *Renderer, n ast.Node) string {
		return "#quote(block: true)" + typstContent(r.Blocks(n))
	})
	t.SetRule(ast.KindList, func(r *Renderer, n ast.Node) string {
		return renderList(r, n, typstListMarker)
	})
	t.SetRule(ast.KindLink, func(r *Renderer, n ast.Node) string {
		link := n.(*ast.Link)
		destination := string(link.Destination)
		label := r.Children(n)
		if label == "" || label == escapeTypst(destination) {
			return "#link(" + typstString(destination) + ")"
		}
		return "#link(" + typstString(destination) + ")[" + label + "]"
	})
	t.SetRule(ast.KindImage, func(r *Renderer, n ast.Node) string {
		image := n.(*ast.Image)
		alt := r.PlainText(n)
		if alt == "" {
			return "#image(" + typstString(string(image.Destination)) + ")"
		}
		return "#image(" + typstString(string(image.Destination)) + ", alt: " + typstString(alt) + ")"
	})
	t.SetRule(ast.KindAutoLink, func(r *Renderer, n ast.Node) string {
		autolink := n.(*ast.AutoLink)
		url := string(autolink.URL(r.Source()))
		if autolink.AutoLinkType == ast.AutoLinkEmail && !strings.HasPrefix(url, "mailto:") {
			url = "mailto:" + url
		}
		return "#link(" + typstString(url) + ")"
	})
	t.SetRule(ast.KindRawHTML, renderNothing)
	t.SetRule(ast.KindHTMLBlock, renderNothing)

	t.SetRule(east.KindStrikethrough, func(r *Renderer, n ast.Node) string {
		return "#strike[" + r.Children(n) + "]"
	})
	t.SetRule(east.KindTaskCheckBox, func(r *Renderer, n ast.Node) string {
		if n.(*east.TaskCheckBox).IsChecked {
			return "☒ "
		}
		return "☐ "
	})
	t.SetRule(east.KindTable, renderTypstTable)
	t.SetRule(east.KindFootnoteLink, func(r *Renderer, n ast.Node) string {
		link := n.(*east.FootnoteLink)
		footnote, first := r.Footnote(link)
		if footnote == nil {
			return ""
		}
		label := "<fn-" + slug.Make(r.FootnoteRef(footnote)) + ">"
		if !first {
			return "#footnote(" + label + ")"
		}
		body := "#footnote" + typstContent(r.Blocks(footnote))
		if link.RefCount > 1 {
			body += " " + label
		}
		return body
	})
	t.SetRule(east.KindFootnoteBacklink, renderNothing)
	t.SetRule(east.KindFootnoteList, renderNothing)

	t.SetRule(KindWikilink, wikilinkRule(typstAttachment, typstReference))
	t.SetRule(KindCallout, func(r *Renderer, n ast.Node) string {
		callout := n.(*Callout)
		fold := "none"
		switch callout.Fold {
		case "-":
			fold = "true"
		case "+":
			fold = "false"
		}
		return fmt.Sprintf("#callout(kind: %s, title: [%s], fold: %s)%s",
			typstString(callout.CalloutType), calloutTitle(r, callout), fold, typstContent(calloutBody(r, callout)))
	})
	t.SetRule(KindCalloutTitle, renderNothing)
	t.SetRule(KindColumns, renderTypstColumns)
	t.SetRule(KindColumn, func(r *Renderer, n ast.Node) string {
		return r.Blocks(n)
	})
	t.SetRule(KindColumnBreak, renderNothing)
	t.SetRule(KindMathInline, func(r *Renderer, n ast.Node) string {
		return "$" + string(n.(*MathInline).Formula) + "$"
	})
	t.SetRule(KindMathBlock, func(r *Renderer, n ast.Node) string {
		return "$ " + strings.TrimSpace(r.Lines(n)) + " $"
	})
	t.SetRule(KindHighlight, func(r *Renderer, n ast.Node) string {
		return "#highlight[" + r.Children(n) + "]"
	})
	t.SetRule(KindUnderline, func(r *Renderer, n ast.Node) string {
		return "#underline[" + r.Children(n) + "]"
	})
	t.SetRule(KindHTMLTag, renderHTMLTag)
}

func typstListMarker(list *ast.List, i int) string {
	if !list.IsOrdered() {
		return "- "
	}
	if list.Start <= 1 {
		return "+ "
	}
	return strconv.Itoa(list.Start+i) + ". "
}

// touchesWord reports if the node is glued to a word.
// Typst only recognizes "*" and "_" markup at word boundaries.
func touchesWord(r *Renderer, n ast.Node) bool {
	if prev, ok := n.PreviousSibling().(*ast.Text); ok {
		value := prev.Segment.Value(r.Source())
		c, _ := utf8.DecodeLastRune(value)
		if len(value) > 0 && !prev.SoftLineBreak() && !prev.HardLineBreak() && isWordRune(c) {
			return true
		}
	}
	if next, ok := n.NextSibling().(*ast.Text); ok {
		c, _ := utf8.DecodeRune(next.Segment.Value(r.Source()))
		if isWordRune(c) {
			return true
		}
	}
	return false
}

func isWordRune(c rune) bool {
	return c != utf8.RuneError && (unicode.IsLetter(c) || unicode.IsDigit(c))
}

func renderTypstTable(r *Renderer, n ast.Node) string {
	table := n.(*east.Table)
	header, rows := tableCells(r, n)

	cell := func(content string) string {
		if content == "" {
			return "[~]"
		}
		return "[" + content + "]"
	}

	var sb strings.Builder
	sb.WriteString("#table(\n")
	sb.WriteString(fmt.Sprintf("  columns: %d,\n", len(table.Alignments)))
	var alignments []string
	aligned := false
	for _, alignment := range table.Alignments {
		switch alignment {
		case east.AlignLeft:
			alignments, aligned = append(alignments, "left"), true
		case east.AlignRight:
			alignments, aligned = append(alignments, "right"), true
		case east.AlignCenter:
			alignments, aligned = append(alignments, "center"), true
		default:
			alignments = append(alignments, "auto")
		}
	}
	if aligned {
		sb.WriteString("  align: (" + strings.Join(alignments, ", ") + "),\n")
	}
	var cells []string
	for _, content := range header {
		cells = append(cells, cell(content))
	}
	sb.WriteString("  table.header(" + strings.Join(cells, ", ") + "),\n")
	for _, row := range rows {
		cells = cells[:0]
		for _, content := range row {
			cells = append(cells, cell(content))
		}
		sb.WriteString("  " + strings.Join(cells, ", ") + ",\n")
	}
	sb.WriteString(")")
	return sb.String()
}

func renderTypstColumns(r *Renderer, n ast.Node) string {
	var widths, columns []string
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		width := "1"
		if column, ok := c.(*Column); ok && column.Width != "" {
			width = column.Width
		}
		if _, err := strconv.ParseFloat(width, 64); err == nil {
			width += "fr"
		}
		widths = append(widths, width)
		columns = append(columns, text.PrefixLines(typstContent(r.Render(c)), "  "))
	}
	var sb strings.Builder
	sb.WriteString("#grid(\n")
	sb.WriteString("  columns: (" + strings.Join(widths, ", ") + "),\n")
	sb.WriteString("  gutter: 1em,\n")
	for _, column := range columns {
		sb.WriteString(strings.TrimRight(column, "\n") + ",\n")
	}
	sb.WriteString(")")
	return sb.String()
}

func typstAttachment(r *Renderer, link *resolve.Link, fileName string) string {
	switch link.Type {
	case resolve.Image, resolve.Diagram:
		if link.Width > 0 {
			return fmt.Sprintf("#image(%s, width: %dpt)", typstString(fileName), link.Width)
		}
		return "#image(" + typstString(fileName) + ")"
	}
	return typstReference(r, link, fileName)
}

func typstReference(r *Renderer, link *resolve.Link, fileName string) string {
	label := link.Alias
	if label == "" {
		label = path.Base(link.Target)
	}
	return "#link(" + typstString(fileName) + ")[" + escapeTypst(label) + "]"
}
