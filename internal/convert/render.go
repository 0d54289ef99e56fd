package convert

import (
	"fmt"
	"strings"

	"github.com/julien-sobczak/the-noteexporter/internal/format"
	"github.com/julien-sobczak/the-noteexporter/pkg/text"
	"github.com/yuin/goldmark/ast"
	east "github.com/yuin/goldmark/extension/ast"
)

// Renderer walks the AST and applies the render rules of the active format.
type Renderer struct {
	format  format.Format
	rules   map[ast.NodeKind]RenderFunc
	escaper TextEscaper
	options *Options

	source []byte

	// Footnote bodies are collected before rendering
	// as some formats inline them at the first reference.
	footnotes map[int]*east.Footnote
	seen      map[int]bool

	// Footnote refs of embedded notes are prefixed to stay unique in the output.
	footnotePrefix string
	embeds         *int
}

func newRenderer(f format.Format, t *Tokenizer, options *Options, source []byte, doc ast.Node) *Renderer {
	r := &Renderer{
		format:  f,
		rules:   t.rules,
		escaper: t.escaper,
		options: options,
		embeds:  new(int),
	}
	r.reset(source, doc)
	return r
}

func (r *Renderer) reset(source []byte, doc ast.Node) {
	r.source = source
	r.footnotes = collectFootnotes(doc)
	r.seen = make(map[int]bool)
}

func collectFootnotes(doc ast.Node) map[int]*east.Footnote {
	footnotes := make(map[int]*east.Footnote)
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if footnote, ok := n.(*east.Footnote); ok && entering {
			footnotes[footnote.Index] = footnote
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return footnotes
}

// Format returns the output format.
func (r *Renderer) Format() format.Format {
	return r.format
}

// Source returns the Markdown source of the nodes being rendered.
func (r *Renderer) Source() []byte {
	return r.source
}

// Render renders a node using the rule of its kind.
// Nodes without rule are replaced by their rendered children.
func (r *Renderer) Render(n ast.Node) string {
	if fn, ok := r.rules[n.Kind()]; ok {
		return fn(r, n)
	}
	return r.Children(n)
}

// Children concatenates the rendering of the children.
func (r *Renderer) Children(n ast.Node) string {
	var sb strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		sb.WriteString(r.Render(c))
	}
	return sb.String()
}

// Blocks renders block children separated by blank lines.
func (r *Renderer) Blocks(n ast.Node) string {
	return r.joinBlocks(n, "\n")
}

// TightBlocks renders block children without blank lines between them.
func (r *Renderer) TightBlocks(n ast.Node) string {
	return r.joinBlocks(n, "")
}

func (r *Renderer) joinBlocks(n ast.Node, separator string) string {
	var parts []string
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		block := r.Render(c)
		if block == "" {
			continue
		}
		parts = append(parts, text.EnsureTrailingNewline(block))
	}
	return strings.Join(parts, separator)
}

// Lines returns the raw lines of a block (code, math...).
func (r *Renderer) Lines(n ast.Node) string {
	var sb strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		segment := lines.At(i)
		sb.Write(segment.Value(r.source))
	}
	return sb.String()
}

// Escape protects literal text.
func (r *Renderer) Escape(s string) string {
	if r.escaper == nil {
		return s
	}
	return r.escaper(s)
}

// PlainText returns the text of the node without any markup (ex: image alt).
func (r *Renderer) PlainText(n ast.Node) string {
	var sb strings.Builder
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := c.(type) {
		case *ast.Text:
			sb.Write(node.Segment.Value(r.source))
			if node.SoftLineBreak() || node.HardLineBreak() {
				sb.WriteByte(' ')
			}
		case *ast.String:
			sb.Write(node.Value)
		case *MathInline:
			sb.Write(node.Formula)
		case *Wikilink:
			if node.Link != nil {
				sb.WriteString(node.Link.Text())
			}
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(sb.String())
}

// Footnote returns the footnote of a reference.
// first is true only for the first reference rendered.
func (r *Renderer) Footnote(link *east.FootnoteLink) (footnote *east.Footnote, first bool) {
	footnote, ok := r.footnotes[link.Index]
	if !ok {
		return nil, false
	}
	first = !r.seen[link.Index]
	r.seen[link.Index] = true
	return footnote, first
}

// FootnoteRef returns the reference of a footnote, unique among
// the host note and all embedded notes.
func (r *Renderer) FootnoteRef(footnote *east.Footnote) string {
	return r.footnotePrefix + string(footnote.Ref)
}

// Embedded renders the document of an embedded note.
// The note has its own source and its own footnotes.
// Each embed gets a new footnote namespace, even when the same note is embedded twice.
func (r *Renderer) Embedded(source []byte, doc ast.Node) string {
	*r.embeds++
	sub := &Renderer{
		format:         r.format,
		rules:          r.rules,
		escaper:        r.escaper,
		options:        r.options,
		footnotePrefix: fmt.Sprintf("embed%d-", *r.embeds),
		embeds:         r.embeds,
	}
	sub.reset(source, doc)
	return sub.Render(doc)
}

// Warn reports a recoverable problem to the user.
func (r *Renderer) Warn(format string, args ...any) {
	if r.options.Notifier != nil {
		r.options.Notifier.Warn(fmt.Sprintf(format, args...))
	}
}

// isEmbedParagraph reports if a paragraph only contains an embedded note.
// The embed is rendered as blocks without the paragraph.
func isEmbedParagraph(n ast.Node) (*Wikilink, bool) {
	if n.ChildCount() != 1 {
		return nil, false
	}
	link, ok := n.FirstChild().(*Wikilink)
	if !ok || link.Document == nil {
		return nil, false
	}
	return link, true
}
