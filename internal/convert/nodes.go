package convert

import (
	"strings"

	"github.com/julien-sobczak/the-noteexporter/internal/resolve"
	"github.com/yuin/goldmark/ast"
)

// Node kinds added to the goldmark AST.
var (
	KindWikilink     = ast.NewNodeKind("Wikilink")
	KindCallout      = ast.NewNodeKind("Callout")
	KindCalloutTitle = ast.NewNodeKind("CalloutTitle")
	KindColumns      = ast.NewNodeKind("Columns")
	KindColumn       = ast.NewNodeKind("Column")
	KindColumnBreak  = ast.NewNodeKind("ColumnBreak")
	KindMathInline   = ast.NewNodeKind("MathInline")
	KindMathBlock    = ast.NewNodeKind("MathBlock")
	KindHighlight    = ast.NewNodeKind("Highlight")
	KindUnderline    = ast.NewNodeKind("Underline")
	KindHTMLTag      = ast.NewNodeKind("HTMLTag")
)

// Wikilink is an internal link ("[[target]]") or an embed ("![[target]]").
type Wikilink struct {
	ast.BaseInline

	Raw      string
	Embedded bool
	Link     *resolve.Link

	// Parsed content of an embedded note
	Document ast.Node
	Source   []byte
}

func (n *Wikilink) Kind() ast.NodeKind {
	return KindWikilink
}

func (n *Wikilink) Dump(source []byte, level int) {
	kind := "unresolved"
	if n.Link != nil {
		kind = n.Link.Kind.String()
	}
	ast.DumpHelper(n, source, level, map[string]string{
		"Raw":      n.Raw,
		"Embedded": boolString(n.Embedded),
		"Link":     kind,
	}, nil)
}

// Callout is an Obsidian callout ("> [!note]+ Title").
// When present, the first child is a CalloutTitle.
type Callout struct {
	ast.BaseBlock

	CalloutType string
	Fold        string // "+", "-" or ""
}

func (n *Callout) Kind() ast.NodeKind {
	return KindCallout
}

func (n *Callout) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{
		"Type": n.CalloutType,
		"Fold": n.Fold,
	}, nil)
}

// Foldable reports if the callout can be collapsed.
func (n *Callout) Foldable() bool {
	return n.Fold != ""
}

// Title returns the explicit title node if any.
func (n *Callout) Title() *CalloutTitle {
	if title, ok := n.FirstChild().(*CalloutTitle); ok {
		return title
	}
	return nil
}

// DefaultTitle is the title displayed by Obsidian when none is specified.
func (n *Callout) DefaultTitle() string {
	if n.CalloutType == "" {
		return ""
	}
	return strings.ToUpper(n.CalloutType[:1]) + n.CalloutType[1:]
}

// CalloutTitle contains the inline title of a callout.
type CalloutTitle struct {
	ast.BaseBlock
}

func (n *CalloutTitle) Kind() ast.NodeKind {
	return KindCalloutTitle
}

func (n *CalloutTitle) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, nil, nil)
}

// Columns is a multi-column container (":::col" ... ":::").
type Columns struct {
	ast.BaseBlock

	Widths []string

	// Parsing state
	fence string // Opening fence of the code block being read
	depth int    // Nested containers being read
}

func (n *Columns) Kind() ast.NodeKind {
	return KindColumns
}

func (n *Columns) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{
		"Widths": strings.Join(n.Widths, " "),
	}, nil)
}

// Column is a single column. Columns are created after parsing from "@col" separators.
type Column struct {
	ast.BaseBlock

	Width string
}

func (n *Column) Kind() ast.NodeKind {
	return KindColumn
}

func (n *Column) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{"Width": n.Width}, nil)
}

// ColumnBreak is the "@col" separator.
type ColumnBreak struct {
	ast.BaseBlock
}

func (n *ColumnBreak) Kind() ast.NodeKind {
	return KindColumnBreak
}

func (n *ColumnBreak) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, nil, nil)
}

// MathInline is a formula between single dollars.
type MathInline struct {
	ast.BaseInline

	Formula []byte
}

func (n *MathInline) Kind() ast.NodeKind {
	return KindMathInline
}

func (n *MathInline) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{"Formula": string(n.Formula)}, nil)
}

// MathBlock is a formula between "$$" lines. The formula is stored in the node lines.
type MathBlock struct {
	ast.BaseBlock

	closed bool
}

func (n *MathBlock) Kind() ast.NodeKind {
	return KindMathBlock
}

func (n *MathBlock) IsRaw() bool {
	return true
}

func (n *MathBlock) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, nil, nil)
}

// Highlight is a "==marked==" text.
type Highlight struct {
	ast.BaseInline
}

func (n *Highlight) Kind() ast.NodeKind {
	return KindHighlight
}

func (n *Highlight) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, nil, nil)
}

// Underline is a "<u>text</u>" fragment.
type Underline struct {
	ast.BaseInline
}

func (n *Underline) Kind() ast.NodeKind {
	return KindUnderline
}

func (n *Underline) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, nil, nil)
}

// HTMLTag is an inline HTML element remapped through a user template.
type HTMLTag struct {
	ast.BaseInline

	Tag      string
	Class    string
	Template string
}

func (n *HTMLTag) Kind() ast.NodeKind {
	return KindHTMLTag
}

func (n *HTMLTag) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{
		"Tag":   n.Tag,
		"Class": n.Class,
	}, nil)
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
