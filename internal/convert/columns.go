package convert

import (
	"regexp"
	"strings"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

var (
	regexColumnsStart = regexp.MustCompile(`^[ ]{0,3}:::col(?:[ \t]+([^\n]*?))?[ \t]*\n?$`)
	regexColumnsEnd   = regexp.MustCompile(`^[ ]{0,3}:::[ \t]*\n?$`)
	regexColumnBreak  = regexp.MustCompile(`^[ ]{0,3}@col[ \t]*\n?$`)
	regexFence        = regexp.MustCompile("^[ \t]*(`{3,}|~{3,})([^\n]*)")
)

// columnsParser parses multi-column containers:
//
//	:::col 1 2
//	Left column (1/3)
//	@col
//	Right column (2/3)
//	:::
//
// Widths are optional and relative to each other.
type columnsParser struct{}

func (p *columnsParser) Trigger() []byte {
	return []byte{':'}
}

func (p *columnsParser) Open(parent ast.Node, reader text.Reader, pc parser.Context) (ast.Node, parser.State) {
	line, _ := reader.PeekLine()
	match := regexColumnsStart.FindSubmatch(line)
	if match == nil {
		return nil, parser.NoChildren
	}
	node := &Columns{
		Widths: strings.Fields(strings.ReplaceAll(string(match[1]), ",", " ")),
	}
	reader.Advance(len(line) - trailingNewline(line))
	return node, parser.HasChildren
}

// Continue sees every line of the container before its children.
// Lines of code blocks and of nested containers never close it.
func (p *columnsParser) Continue(node ast.Node, reader text.Reader, pc parser.Context) parser.State {
	columns := node.(*Columns)
	line, _ := reader.PeekLine()

	if columns.fence != "" {
		if match := regexFence.FindSubmatch(line); match != nil && isClosingFence(columns.fence, match) {
			columns.fence = ""
		}
		return parser.Continue | parser.HasChildren
	}
	if match := regexFence.FindSubmatch(line); match != nil {
		columns.fence = string(match[1])
		return parser.Continue | parser.HasChildren
	}

	switch {
	case regexColumnsStart.Match(line):
		columns.depth++
	case regexColumnsEnd.Match(line):
		if columns.depth > 0 {
			// Closes the nested container
			columns.depth--
			break
		}
		reader.Advance(len(line) - trailingNewline(line))
		return parser.Close
	}
	return parser.Continue | parser.HasChildren
}

// isClosingFence reports if a fence line closes the code block opened with fence.
func isClosingFence(fence string, match [][]byte) bool {
	marker := match[1]
	return marker[0] == fence[0] &&
		len(marker) >= len(fence) &&
		len(strings.TrimSpace(string(match[2]))) == 0
}

func (p *columnsParser) Close(node ast.Node, reader text.Reader, pc parser.Context) {
}

func (p *columnsParser) CanInterruptParagraph() bool {
	return true
}

func (p *columnsParser) CanAcceptIndentedLine() bool {
	return false
}

// columnBreakParser parses the "@col" separator inside a columns container.
type columnBreakParser struct{}

func (p *columnBreakParser) Trigger() []byte {
	return []byte{'@'}
}

func (p *columnBreakParser) Open(parent ast.Node, reader text.Reader, pc parser.Context) (ast.Node, parser.State) {
	if parent.Kind() != KindColumns {
		return nil, parser.NoChildren
	}
	line, _ := reader.PeekLine()
	if !regexColumnBreak.Match(line) {
		return nil, parser.NoChildren
	}
	reader.Advance(len(line) - trailingNewline(line))
	return &ColumnBreak{}, parser.NoChildren
}

func (p *columnBreakParser) Continue(node ast.Node, reader text.Reader, pc parser.Context) parser.State {
	return parser.Close
}

func (p *columnBreakParser) Close(node ast.Node, reader text.Reader, pc parser.Context) {
}

func (p *columnBreakParser) CanInterruptParagraph() bool {
	return true
}

func (p *columnBreakParser) CanAcceptIndentedLine() bool {
	return false
}

// columnsTransformer groups the children of each container into columns.
type columnsTransformer struct{}

func (t *columnsTransformer) Transform(doc *ast.Document, reader text.Reader, pc parser.Context) {
	var containers []*Columns
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if columns, ok := n.(*Columns); ok && entering {
			containers = append(containers, columns)
		}
		return ast.WalkContinue, nil
	})

	for _, container := range containers {
		var children []ast.Node
		for c := container.FirstChild(); c != nil; c = c.NextSibling() {
			children = append(children, c)
		}
		container.RemoveChildren(container)

		column := &Column{}
		container.AppendChild(container, column)
		for _, child := range children {
			if child.Kind() == KindColumnBreak {
				column = &Column{}
				container.AppendChild(container, column)
				continue
			}
			column.AppendChild(column, child)
		}

		i := 0
		for c := container.FirstChild(); c != nil; c = c.NextSibling() {
			if i < len(container.Widths) {
				c.(*Column).Width = container.Widths[i]
			}
			i++
		}
	}
}

func trailingNewline(line []byte) int {
	if len(line) > 0 && line[len(line)-1] == '\n' {
		return 1
	}
	return 0
}
