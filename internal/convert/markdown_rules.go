package convert

import (
	"fmt"
	"path"
	"strconv"
	"strings"

	"github.com/julien-sobczak/the-noteexporter/internal/placeholder"
	"github.com/julien-sobczak/the-noteexporter/internal/resolve"
	"github.com/julien-sobczak/the-noteexporter/pkg/text"
	"github.com/yuin/goldmark/ast"
	east "github.com/yuin/goldmark/extension/ast"
)

// attachmentRenderer renders an attachment when no template is configured.
type attachmentRenderer func(r *Renderer, link *resolve.Link, fileName string) string

// setMarkdownRules installs the rules shared by the Markdown-based formats.
// Formats override some of them afterwards.
func setMarkdownRules(t *Tokenizer) {
	t.SetRule(ast.KindDocument, renderDocument)
	t.SetRule(ast.KindParagraph, renderParagraph)
	t.SetRule(ast.KindTextBlock, renderParagraph)
	t.SetRule(ast.KindText, textRule("\\\n"))
	t.SetRule(ast.KindString, renderString)
	t.SetRule(ast.KindHeading, func(r *Renderer, n ast.Node) string {
		heading := n.(*ast.Heading)
		return strings.Repeat("#", heading.Level) + " " + r.Children(n)
	})
	t.SetRule(ast.KindThematicBreak, func(r *Renderer, n ast.Node) string {
		return "---"
	})
	t.SetRule(ast.KindEmphasis, func(r *Renderer, n ast.Node) string {
		marker := strings.Repeat("*", n.(*ast.Emphasis).Level)
		return marker + r.Children(n) + marker
	})
	t.SetRule(ast.KindCodeSpan, func(r *Renderer, n ast.Node) string {
		code := codeSpanValue(r, n)
		fence := fenceFor(code, "`", 1)
		if strings.HasPrefix(code, "`") || strings.HasSuffix(code, "`") {
			code = " " + code + " "
		}
		return fence + code + fence
	})
	t.SetRule(ast.KindFencedCodeBlock, renderMarkdownCodeBlock)
	t.SetRule(ast.KindCodeBlock, renderMarkdownCodeBlock)
	t.SetRule(ast.KindBlockquote, func(r *Renderer, n ast.Node) string {
		return text.PrefixLines(r.Blocks(n), "> ")
	})
	t.SetRule(ast.KindList, func(r *Renderer, n ast.Node) string {
		return renderList(r, n, markdownListMarker)
	})
	t.SetRule(ast.KindLink, func(r *Renderer, n ast.Node) string {
		link := n.(*ast.Link)
		return "[" + r.Children(n) + "](" + markdownDestination(link.Destination, link.Title) + ")"
	})
	t.SetRule(ast.KindImage, func(r *Renderer, n ast.Node) string {
		image := n.(*ast.Image)
		return "![" + r.PlainText(n) + "](" + markdownDestination(image.Destination, image.Title) + ")"
	})
	t.SetRule(ast.KindAutoLink, func(r *Renderer, n ast.Node) string {
		return "<" + string(n.(*ast.AutoLink).Label(r.Source())) + ">"
	})
	t.SetRule(ast.KindRawHTML, func(r *Renderer, n ast.Node) string {
		return rawHTMLValue(n.(*ast.RawHTML), r.Source())
	})
	t.SetRule(ast.KindHTMLBlock, func(r *Renderer, n ast.Node) string {
		block := n.(*ast.HTMLBlock)
		result := r.Lines(n)
		if block.HasClosure() {
			result += string(block.ClosureLine.Value(r.Source()))
		}
		return result
	})

	t.SetRule(east.KindStrikethrough, func(r *Renderer, n ast.Node) string {
		return "~~" + r.Children(n) + "~~"
	})
	t.SetRule(east.KindTaskCheckBox, func(r *Renderer, n ast.Node) string {
		if n.(*east.TaskCheckBox).IsChecked {
			return "[x] "
		}
		return "[ ] "
	})
	t.SetRule(east.KindTable, renderMarkdownTable)
	t.SetRule(east.KindFootnoteLink, func(r *Renderer, n ast.Node) string {
		footnote, _ := r.Footnote(n.(*east.FootnoteLink))
		if footnote == nil {
			return ""
		}
		return "[^" + r.FootnoteRef(footnote) + "]"
	})
	t.SetRule(east.KindFootnoteBacklink, renderNothing)
	t.SetRule(east.KindFootnoteList, func(r *Renderer, n ast.Node) string {
		return r.TightBlocks(n)
	})
	t.SetRule(east.KindFootnote, func(r *Renderer, n ast.Node) string {
		footnote := n.(*east.Footnote)
		body := strings.TrimSpace(r.Blocks(n))
		return text.PrefixLinesFirst(body, "[^"+r.FootnoteRef(footnote)+"]: ", "    ")
	})

	t.SetRule(KindWikilink, wikilinkRule(markdownAttachment, markdownReference))
	t.SetRule(KindCallout, func(r *Renderer, n ast.Node) string {
		callout := n.(*Callout)
		content := "**" + calloutTitle(r, callout) + "**\n"
		if body := calloutBody(r, callout); body != "" {
			content += "\n" + body
		}
		return text.PrefixLines(content, "> ")
	})
	t.SetRule(KindCalloutTitle, renderNothing)
	t.SetRule(KindColumns, func(r *Renderer, n ast.Node) string {
		return r.Blocks(n)
	})
	t.SetRule(KindColumn, func(r *Renderer, n ast.Node) string {
		return r.Blocks(n)
	})
	t.SetRule(KindColumnBreak, renderNothing)
	t.SetRule(KindMathInline, func(r *Renderer, n ast.Node) string {
		return "$" + string(n.(*MathInline).Formula) + "$"
	})
	t.SetRule(KindMathBlock, func(r *Renderer, n ast.Node) string {
		return "$$\n" + text.EnsureTrailingNewline(r.Lines(n)) + "$$"
	})
	t.SetRule(KindHighlight, func(r *Renderer, n ast.Node) string {
		return "==" + r.Children(n) + "=="
	})
	t.SetRule(KindUnderline, func(r *Renderer, n ast.Node) string {
		return "<u>" + r.Children(n) + "</u>"
	})
	t.SetRule(KindHTMLTag, renderHTMLTag)
}

func renderNothing(r *Renderer, n ast.Node) string {
	return ""
}

func renderDocument(r *Renderer, n ast.Node) string {
	return r.Blocks(n)
}

func renderParagraph(r *Renderer, n ast.Node) string {
	if link, ok := isEmbedParagraph(n); ok {
		return r.Render(link)
	}
	return r.Children(n)
}

// textRule renders literal text. Only the hard line break differs between formats.
func textRule(hardBreak string) RenderFunc {
	return func(r *Renderer, n ast.Node) string {
		node := n.(*ast.Text)
		value := string(node.Segment.Value(r.Source()))
		if !node.IsRaw() {
			value = r.Escape(value)
		}
		switch {
		case node.HardLineBreak():
			value += hardBreak
		case node.SoftLineBreak():
			value += "\n"
		}
		return value
	}
}

func renderString(r *Renderer, n ast.Node) string {
	node := n.(*ast.String)
	if node.IsCode() || node.IsRaw() {
		return string(node.Value)
	}
	return r.Escape(string(node.Value))
}

func renderHTMLTag(r *Renderer, n ast.Node) string {
	tag := n.(*HTMLTag)
	result, ok := placeholder.ReplaceTag(tag.Template, r.Children(n))
	if !ok {
		r.Warn("mapping of <%s> ignored: template must contain %s", tag.Tag, placeholder.TagContent)
		return ""
	}
	return result
}

func codeSpanValue(r *Renderer, n ast.Node) string {
	var sb strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch child := c.(type) {
		case *ast.Text:
			sb.Write(child.Segment.Value(r.Source()))
		case *ast.String:
			sb.Write(child.Value)
		}
	}
	return sb.String()
}

// fenceFor returns a fence longer than any run of the fence character in the code.
func fenceFor(code, char string, minLength int) string {
	longest, current := 0, 0
	for _, c := range code {
		if string(c) == char {
			current++
			if current > longest {
				longest = current
			}
		} else {
			current = 0
		}
	}
	if longest >= minLength {
		minLength = longest + 1
	}
	return strings.Repeat(char, minLength)
}

func codeBlockLanguage(r *Renderer, n ast.Node) string {
	if fenced, ok := n.(*ast.FencedCodeBlock); ok && fenced.Info != nil {
		return strings.TrimSpace(string(fenced.Info.Segment.Value(r.Source())))
	}
	return ""
}

func renderMarkdownCodeBlock(r *Renderer, n ast.Node) string {
	code := r.Lines(n)
	fence := fenceFor(code, "`", 3)
	return fence + codeBlockLanguage(r, n) + "\n" + text.EnsureTrailingNewline(code) + fence
}

// listMarker returns the marker of the i-th item.
type listMarker func(list *ast.List, i int) string

func markdownListMarker(list *ast.List, i int) string {
	if list.IsOrdered() {
		return strconv.Itoa(list.Start+i) + string(list.Marker) + " "
	}
	return string(list.Marker) + " "
}

func renderList(r *Renderer, n ast.Node, marker listMarker) string {
	list := n.(*ast.List)
	var items []string
	i := 0
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		var content string
		if list.IsTight {
			content = r.TightBlocks(c)
		} else {
			content = r.Blocks(c)
		}
		first := marker(list, i)
		items = append(items, text.PrefixLinesFirst(content, first, strings.Repeat(" ", len(first))))
		i++
	}
	if list.IsTight {
		return strings.Join(items, "")
	}
	return strings.Join(items, "\n")
}

func markdownDestination(destination, title []byte) string {
	result := string(destination)
	if strings.ContainsAny(result, " ()") {
		result = "<" + result + ">"
	}
	if len(title) > 0 {
		result += " " + strconv.Quote(string(title))
	}
	return result
}

func renderMarkdownTable(r *Renderer, n ast.Node) string {
	table := n.(*east.Table)
	header, rows := tableCells(r, n)

	var separators []string
	for _, alignment := range table.Alignments {
		switch alignment {
		case east.AlignLeft:
			separators = append(separators, ":---")
		case east.AlignRight:
			separators = append(separators, "---:")
		case east.AlignCenter:
			separators = append(separators, ":---:")
		default:
			separators = append(separators, "---")
		}
	}

	var sb strings.Builder
	sb.WriteString("| " + strings.Join(header, " | ") + " |\n")
	sb.WriteString("| " + strings.Join(separators, " | ") + " |\n")
	for _, row := range rows {
		sb.WriteString("| " + strings.Join(row, " | ") + " |\n")
	}
	return sb.String()
}

// tableCells returns the rendered cells of a table, header row first.
func tableCells(r *Renderer, n ast.Node) (header []string, rows [][]string) {
	for row := n.FirstChild(); row != nil; row = row.NextSibling() {
		var cells []string
		for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
			cells = append(cells, strings.TrimSpace(r.Children(cell)))
		}
		if row.Kind() == east.KindTableHeader {
			header = cells
		} else {
			rows = append(rows, cells)
		}
	}
	return header, rows
}

func calloutTitle(r *Renderer, callout *Callout) string {
	if title := callout.Title(); title != nil {
		return r.Children(title)
	}
	return callout.DefaultTitle()
}

// calloutBody renders the content of a callout, title excluded.
func calloutBody(r *Renderer, callout *Callout) string {
	var parts []string
	for c := callout.FirstChild(); c != nil; c = c.NextSibling() {
		if c.Kind() == KindCalloutTitle {
			continue
		}
		if block := r.Render(c); block != "" {
			parts = append(parts, text.EnsureTrailingNewline(block))
		}
	}
	return strings.Join(parts, "\n")
}

// wikilinkRule renders internal links, embeds and attachments.
// embed renders embedded attachments when no template is configured,
// reference renders links to attachments.
func wikilinkRule(embed, reference attachmentRenderer) RenderFunc {
	return func(r *Renderer, n ast.Node) string {
		node := n.(*Wikilink)
		link := node.Link
		if link == nil {
			return r.Escape(node.Raw)
		}
		switch link.Kind {
		case resolve.LinkMissing, resolve.LinkHidden:
			return ""
		case resolve.LinkEmbed:
			if node.Document != nil {
				return r.Embedded(node.Source, node.Document)
			}
			return r.Escape(link.Text())
		case resolve.LinkAttachment:
			fileName := attachmentFileName(r, link)
			if !link.Embedded {
				return reference(r, link, fileName)
			}
			template := attachmentTemplate(r.options, link.Type)
			if template == "" {
				return embed(r, link, fileName)
			}
			result, ok := placeholder.ReplaceAttachment(template, fileName)
			if !ok {
				r.Warn("%s template ignored: template must contain %s", link.Type, placeholder.AttachmentFileName)
				return ""
			}
			return result
		}
		return r.Escape(link.Text())
	}
}

func attachmentFileName(r *Renderer, link *resolve.Link) string {
	if r.options.AttachmentPath == "" {
		return link.ExportName
	}
	return path.Join(r.options.AttachmentPath, link.ExportName)
}

func attachmentTemplate(options *Options, attachmentType resolve.AttachmentType) string {
	switch attachmentType {
	case resolve.Image, resolve.Diagram:
		return options.ImageTemplate
	case resolve.Video:
		return options.VideoTemplate
	case resolve.Audio:
		return options.AudioTemplate
	}
	return ""
}

// attachmentAlt returns the alternative text of an embedded attachment.
func attachmentAlt(link *resolve.Link) string {
	if link.Alias != "" {
		return link.Alias
	}
	return text.TrimExtension(path.Base(link.Target))
}

func markdownAttachment(r *Renderer, link *resolve.Link, fileName string) string {
	switch link.Type {
	case resolve.Image, resolve.Diagram:
		return fmt.Sprintf("![%s](%s)", attachmentAlt(link), markdownDestination([]byte(fileName), nil))
	}
	return markdownReference(r, link, fileName)
}

func markdownReference(r *Renderer, link *resolve.Link, fileName string) string {
	label := link.Alias
	if label == "" {
		label = path.Base(link.Target)
	}
	return fmt.Sprintf("[%s](%s)", label, markdownDestination([]byte(fileName), nil))
}
