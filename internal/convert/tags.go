package convert

import (
	"fmt"
	"strings"

	"github.com/julien-sobczak/the-noteexporter/internal/format"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"golang.org/x/net/html"
)

// TagMapping remaps an inline HTML element to the output format.
//
//	<span class="warning">Hot</span>  =>  #text(fill: red)[Hot]
type TagMapping struct {
	Tag      string
	Class    string // Optional
	Template string // Must contain ${tagContent}
	Formats  []format.Format
}

func (m TagMapping) String() string {
	if m.Class == "" {
		return "<" + m.Tag + ">"
	}
	return fmt.Sprintf("<%s class=%q>", m.Tag, m.Class)
}

// htmlTag is an inline HTML fragment parsed by x/net/html.
type htmlTag struct {
	name    string
	classes []string
	closing bool
}

func (t htmlTag) hasClass(class string) bool {
	for _, c := range t.classes {
		if c == class {
			return true
		}
	}
	return false
}

// parseHTMLTag reads a single opening or closing tag.
func parseHTMLTag(raw string) (htmlTag, error) {
	z := html.NewTokenizer(strings.NewReader(raw))
	switch z.Next() {
	case html.StartTagToken:
		name, hasAttr := z.TagName()
		tag := htmlTag{name: string(name)}
		for hasAttr {
			var key, val []byte
			key, val, hasAttr = z.TagAttr()
			if string(key) == "class" {
				tag.classes = strings.Fields(string(val))
			}
		}
		return tag, nil
	case html.EndTagToken:
		name, _ := z.TagName()
		return htmlTag{name: string(name), closing: true}, nil
	case html.SelfClosingTagToken:
		name, _ := z.TagName()
		return htmlTag{}, fmt.Errorf("self-closing tag <%s/> cannot wrap content", name)
	case html.ErrorToken:
		return htmlTag{}, fmt.Errorf("invalid HTML fragment %q: %v", raw, z.Err())
	}
	return htmlTag{}, fmt.Errorf("unexpected HTML fragment %q", raw)
}

// tagTransformer wraps the inline nodes between an opening and a closing
// HTML tag into a new node.
type tagTransformer struct {
	match func(tag htmlTag) bool
	build func(tag htmlTag) ast.Node
}

// newTagMappingTransformer creates the transformer of a user mapping.
func newTagMappingTransformer(mapping TagMapping) *tagTransformer {
	return &tagTransformer{
		match: func(tag htmlTag) bool {
			return tag.name == mapping.Tag && (mapping.Class == "" || tag.hasClass(mapping.Class))
		},
		build: func(tag htmlTag) ast.Node {
			return &HTMLTag{
				Tag:      mapping.Tag,
				Class:    mapping.Class,
				Template: mapping.Template,
			}
		},
	}
}

func (t *tagTransformer) Transform(doc *ast.Document, reader text.Reader, pc parser.Context) {
	source := reader.Source()
	state := stateOf(pc)

	var openers []*ast.RawHTML
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if raw, ok := n.(*ast.RawHTML); ok && entering {
			openers = append(openers, raw)
		}
		return ast.WalkContinue, nil
	})

	for _, opener := range openers {
		if opener.Parent() == nil {
			continue // Already wrapped
		}
		fragment := rawHTMLValue(opener, source)
		tag, err := parseHTMLTag(fragment)
		if err != nil {
			state.debugf("Ignoring HTML fragment: %v", err)
			continue
		}
		if tag.closing || !t.match(tag) {
			continue
		}
		closer := findClosingTag(opener, tag.name, source)
		if closer == nil {
			state.debugf("Ignoring HTML fragment %q: missing </%s>", fragment, tag.name)
			continue
		}

		parent := opener.Parent()
		wrapper := t.build(tag)
		parent.InsertBefore(parent, opener, wrapper)
		for c := opener.NextSibling(); c != nil && c != ast.Node(closer); {
			next := c.NextSibling()
			wrapper.AppendChild(wrapper, c)
			c = next
		}
		parent.RemoveChild(parent, opener)
		parent.RemoveChild(parent, closer)
	}
}

// findClosingTag searches the matching closing tag among the next siblings.
func findClosingTag(opener *ast.RawHTML, name string, source []byte) *ast.RawHTML {
	depth := 0
	for c := opener.NextSibling(); c != nil; c = c.NextSibling() {
		raw, ok := c.(*ast.RawHTML)
		if !ok {
			continue
		}
		tag, err := parseHTMLTag(rawHTMLValue(raw, source))
		if err != nil || tag.name != name {
			continue
		}
		if !tag.closing {
			depth++
			continue
		}
		if depth == 0 {
			return raw
		}
		depth--
	}
	return nil
}

func rawHTMLValue(n *ast.RawHTML, source []byte) string {
	var sb strings.Builder
	for i := 0; i < n.Segments.Len(); i++ {
		segment := n.Segments.At(i)
		sb.Write(segment.Value(source))
	}
	return sb.String()
}
