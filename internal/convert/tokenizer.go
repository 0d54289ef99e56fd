package convert

import (
	"github.com/julien-sobczak/the-noteexporter/internal/resolve"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// RenderFunc renders a node (and usually its children) in the output format.
type RenderFunc func(r *Renderer, n ast.Node) string

// TextEscaper protects literal text from being interpreted by the output format.
type TextEscaper func(s string) string

// Tokenizer is a goldmark parser whose grammar is configured by processors,
// together with the render rules of the active format.
//
// A new Tokenizer is created each time a converter is activated for a format.
type Tokenizer struct {
	extensions    []goldmark.Extender
	blockParsers  []util.PrioritizedValue
	inlineParsers []util.PrioritizedValue
	transformers  []util.PrioritizedValue

	rules   map[ast.NodeKind]RenderFunc
	escaper TextEscaper

	md goldmark.Markdown
}

func NewTokenizer() *Tokenizer {
	return &Tokenizer{
		rules: make(map[ast.NodeKind]RenderFunc),
	}
}

// Use enables goldmark extensions (tables, footnotes...).
func (t *Tokenizer) Use(extensions ...goldmark.Extender) {
	t.extensions = append(t.extensions, extensions...)
	t.md = nil
}

// AddBlockParser registers a block parser. Lower priorities run first.
func (t *Tokenizer) AddBlockParser(p parser.BlockParser, priority int) {
	t.blockParsers = append(t.blockParsers, util.Prioritized(p, priority))
	t.md = nil
}

// AddInlineParser registers an inline parser. Lower priorities run first.
func (t *Tokenizer) AddInlineParser(p parser.InlineParser, priority int) {
	t.inlineParsers = append(t.inlineParsers, util.Prioritized(p, priority))
	t.md = nil
}

// AddTransformer registers a transformation of the AST after parsing.
func (t *Tokenizer) AddTransformer(tr parser.ASTTransformer, priority int) {
	t.transformers = append(t.transformers, util.Prioritized(tr, priority))
	t.md = nil
}

// SetRule defines how a node kind is rendered. The last rule set wins.
func (t *Tokenizer) SetRule(kind ast.NodeKind, fn RenderFunc) {
	t.rules[kind] = fn
}

// Rule returns the render rule of a node kind.
func (t *Tokenizer) Rule(kind ast.NodeKind) (RenderFunc, bool) {
	fn, ok := t.rules[kind]
	return fn, ok
}

// SetTextEscaper defines how literal text is escaped. The last escaper set wins.
func (t *Tokenizer) SetTextEscaper(fn TextEscaper) {
	t.escaper = fn
}

func (t *Tokenizer) parser() parser.Parser {
	if t.md == nil {
		t.md = goldmark.New(
			goldmark.WithExtensions(t.extensions...),
			goldmark.WithParserOptions(
				parser.WithBlockParsers(t.blockParsers...),
				parser.WithInlineParsers(t.inlineParsers...),
				parser.WithASTTransformers(t.transformers...),
			),
		)
	}
	return t.md.Parser()
}

// Parse tokenizes a Markdown document.
func (t *Tokenizer) Parse(source []byte, state *parseState) ast.Node {
	pc := parser.NewContext()
	pc.Set(stateKey, state)
	return t.parser().Parse(text.NewReader(source), parser.WithContext(pc))
}

// parseState is shared with the parsers through the goldmark context.
type parseState struct {
	resolver *resolve.Resolver
	stack    *resolve.FileStack
	// embed parses the content of an embedded note
	embed func(content []byte, stack *resolve.FileStack) (ast.Node, []byte)
	warn  func(msg string)
	debug func(format string, args ...any)
}

var stateKey = parser.NewContextKey()

func stateOf(pc parser.Context) *parseState {
	if state, ok := pc.Get(stateKey).(*parseState); ok && state != nil {
		return state
	}
	return &parseState{}
}

func (s *parseState) warnf(msg string) {
	if s.warn != nil {
		s.warn(msg)
	}
}

func (s *parseState) debugf(format string, args ...any) {
	if s.debug != nil {
		s.debug(format, args...)
	}
}
