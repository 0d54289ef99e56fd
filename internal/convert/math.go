package convert

import (
	"bytes"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// mathInlineParser parses "$formula$".
// As in Obsidian, the formula cannot start or end with a space ("$5 and $6" is text).
type mathInlineParser struct{}

func (p *mathInlineParser) Trigger() []byte {
	return []byte{'$'}
}

func (p *mathInlineParser) Parse(parent ast.Node, block text.Reader, pc parser.Context) ast.Node {
	line, _ := block.PeekLine()
	if len(line) < 3 || line[1] == '$' || line[1] == ' ' || line[1] == '\t' {
		return nil
	}
	end := -1
	for i := 2; i < len(line); i++ {
		if line[i] == '\n' {
			break
		}
		if line[i] == '$' && line[i-1] != '\\' {
			end = i
			break
		}
	}
	if end < 0 || line[end-1] == ' ' || line[end-1] == '\t' {
		return nil
	}
	node := &MathInline{
		Formula: append([]byte{}, line[1:end]...),
	}
	block.Advance(end + 1)
	return node
}

// mathBlockParser parses formulas between "$$" lines.
// The opening and closing "$$" may share the line of the formula.
type mathBlockParser struct{}

func (p *mathBlockParser) Trigger() []byte {
	return []byte{'$'}
}

func (p *mathBlockParser) Open(parent ast.Node, reader text.Reader, pc parser.Context) (ast.Node, parser.State) {
	line, segment := reader.PeekLine()
	w, pos := util.IndentWidth(line, reader.LineOffset())
	if w > 3 || !bytes.HasPrefix(line[pos:], []byte("$$")) {
		return nil, parser.NoChildren
	}
	node := &MathBlock{}

	start := pos + 2
	rest := util.TrimRightSpace(line[start:])
	if len(rest) >= 2 && bytes.HasSuffix(rest, []byte("$$")) {
		// Single-line formula ($$x$$)
		formula := rest[:len(rest)-2]
		if len(bytes.TrimSpace(formula)) > 0 {
			node.Lines().Append(text.NewSegment(segment.Start+start, segment.Start+start+len(formula)))
		}
		reader.Advance(len(line) - trailingNewline(line))
		node.closed = true
		return node, parser.NoChildren
	}
	if len(bytes.TrimSpace(rest)) > 0 {
		node.Lines().Append(text.NewSegment(segment.Start+start, segment.Stop))
	}
	reader.Advance(len(line) - trailingNewline(line))
	return node, parser.NoChildren
}

func (p *mathBlockParser) Continue(node ast.Node, reader text.Reader, pc parser.Context) parser.State {
	if node.(*MathBlock).closed {
		return parser.Close
	}
	line, segment := reader.PeekLine()
	if line == nil {
		return parser.Close
	}
	trimmed := util.TrimRightSpace(util.TrimLeftSpace(line))
	if bytes.HasSuffix(trimmed, []byte("$$")) {
		formula := bytes.TrimSuffix(trimmed, []byte("$$"))
		if len(bytes.TrimSpace(formula)) > 0 {
			start := segment.Start + bytes.Index(line, formula)
			node.Lines().Append(text.NewSegment(start, start+len(formula)))
		}
		reader.Advance(len(line) - trailingNewline(line))
		return parser.Close
	}
	node.Lines().Append(segment)
	reader.AdvanceLine()
	return parser.Continue | parser.NoChildren
}

func (p *mathBlockParser) Close(node ast.Node, reader text.Reader, pc parser.Context) {
}

func (p *mathBlockParser) CanInterruptParagraph() bool {
	return true
}

func (p *mathBlockParser) CanAcceptIndentedLine() bool {
	return false
}
