package convert

import (
	"regexp"
	"strings"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

var regexCallout = regexp.MustCompile(`^[ ]{0,3}>[ \t]?\[!([A-Za-z0-9_-]+)\]([+-]?)[ \t]*(.*?)[ \t]*\n?$`)

// calloutParser parses Obsidian callouts.
// It must run before the goldmark blockquote parser (priority 800).
//
//	> [!warning]- Optional title
//	> Content
type calloutParser struct{}

func (p *calloutParser) Trigger() []byte {
	return []byte{'>'}
}

func (p *calloutParser) Open(parent ast.Node, reader text.Reader, pc parser.Context) (ast.Node, parser.State) {
	line, segment := reader.PeekLine()
	match := regexCallout.FindSubmatchIndex(line)
	if match == nil {
		return nil, parser.NoChildren
	}

	node := &Callout{
		CalloutType: strings.ToLower(string(line[match[2]:match[3]])),
		Fold:        string(line[match[4]:match[5]]),
	}
	if match[7] > match[6] {
		title := &CalloutTitle{}
		start := segment.Start + match[6] - segment.Padding
		stop := segment.Start + match[7] - segment.Padding
		title.Lines().Append(text.NewSegment(start, stop))
		node.AppendChild(node, title)
	}

	// The content starts on the next line
	advance := len(line)
	if advance > 0 && line[advance-1] == '\n' {
		advance--
	}
	reader.Advance(advance)
	return node, parser.HasChildren
}

func (p *calloutParser) Continue(node ast.Node, reader text.Reader, pc parser.Context) parser.State {
	line, _ := reader.PeekLine()
	w, pos := util.IndentWidth(line, reader.LineOffset())
	if w > 3 || pos >= len(line) || line[pos] != '>' {
		return parser.Close
	}
	pos++
	if pos >= len(line) || line[pos] == '\n' {
		reader.Advance(pos)
		return parser.Continue | parser.HasChildren
	}
	reader.Advance(pos)
	if line[pos] == ' ' || line[pos] == '\t' {
		padding := 0
		if line[pos] == '\t' {
			padding = util.TabWidth(reader.LineOffset()) - 1
		}
		reader.AdvanceAndSetPadding(1, padding)
	}
	return parser.Continue | parser.HasChildren
}

func (p *calloutParser) Close(node ast.Node, reader text.Reader, pc parser.Context) {
}

func (p *calloutParser) CanInterruptParagraph() bool {
	return true
}

func (p *calloutParser) CanAcceptIndentedLine() bool {
	return false
}
