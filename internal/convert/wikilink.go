package convert

import (
	"bytes"
	"strings"

	"github.com/julien-sobczak/the-noteexporter/internal/resolve"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// maxEmbedDepth stops pathological embed chains that are not cycles.
const maxEmbedDepth = 16

// wikilinkParser parses "[[target|alias]]" and "![[target]]".
// It must run before the goldmark link parser (priority 200).
type wikilinkParser struct{}

func (p *wikilinkParser) Trigger() []byte {
	return []byte{'!', '['}
}

func (p *wikilinkParser) Parse(parent ast.Node, block text.Reader, pc parser.Context) ast.Node {
	line, _ := block.PeekLine()

	start := 0
	embedded := false
	if len(line) > 0 && line[0] == '!' {
		embedded = true
		start = 1
	}
	if !bytes.HasPrefix(line[start:], []byte("[[")) {
		return nil
	}
	end := bytes.Index(line[start+2:], []byte("]]"))
	if end < 0 {
		return nil
	}
	raw := line[start+2 : start+2+end]
	if len(bytes.TrimSpace(raw)) == 0 || bytes.ContainsAny(raw, "[]\n") {
		return nil
	}
	block.Advance(start + 2 + end + 2)

	// Pipes are escaped inside tables
	link := strings.ReplaceAll(string(raw), `\|`, "|")

	node := &Wikilink{
		Raw:      link,
		Embedded: embedded,
	}
	resolveWikilink(node, stateOf(pc))
	return node
}

// resolveWikilink classifies the link and parses the embedded note.
// The embedded note is parsed with its own frame on the file stack
// so that its links are resolved relative to it.
func resolveWikilink(node *Wikilink, state *parseState) {
	if state.resolver == nil {
		node.Link = resolve.Unresolved(node.Raw, node.Embedded)
		return
	}
	node.Link = state.resolver.ParseLink(node.Raw, node.Embedded, state.stack)
	if node.Link.Kind != resolve.LinkEmbed || state.embed == nil {
		return
	}
	if state.stack.Depth() >= maxEmbedDepth {
		state.warnf("too many nested embeds in " + state.stack.Current())
		node.Link.Kind = resolve.LinkNote
		return
	}
	state.debugf("Embedding %q in %q", node.Link.Path, state.stack.Current())
	node.Document, node.Source = state.embed([]byte(node.Link.Content), state.stack.PushSection(node.Link.Path, node.Link.Section))
}
