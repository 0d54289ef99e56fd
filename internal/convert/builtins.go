package convert

import (
	"strings"

	"github.com/julien-sobczak/the-noteexporter/internal/format"
	"github.com/julien-sobczak/the-noteexporter/internal/markdown"
	"github.com/julien-sobczak/the-noteexporter/pkg/resync"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
)

var (
	defaultRegistryOnce resync.Once
	defaultRegistry     *Registry
)

// DefaultRegistry returns the built-in processors.
// The registry is frozen: use Options.Processors to add more.
func DefaultRegistry() *Registry {
	defaultRegistryOnce.Do(func() {
		defaultRegistry = NewRegistry().MustRegister(BuiltinProcessors()...).Freeze()
	})
	return defaultRegistry
}

// BuiltinProcessors returns the processors of the default registry in order.
func BuiltinProcessors() []Processor {
	markdownFormats := []format.Format{format.MyST, format.HMD, format.Plain}
	return []Processor{
		{
			Name:       "front-matter",
			PreProcess: markdown.StripFrontMatter(),
		},
		{
			Name:       "obsidian-comments",
			PreProcess: markdown.StripComments(),
		},
		{
			Name:       "block-ids",
			PreProcess: markdown.StripBlockIDs(),
		},
		{
			Name:  "core-syntax",
			Setup: setupCoreSyntax,
		},
		{
			Name:    "markdown",
			Formats: markdownFormats,
			Setup:   setMarkdownRules,
		},
		{
			Name:    "myst",
			Formats: []format.Format{format.MyST},
			Setup:   setMySTRules,
		},
		{
			Name:    "hmd",
			Formats: []format.Format{format.HMD},
			Setup:   setHMDRules,
		},
		{
			Name:    "plain",
			Formats: []format.Format{format.Plain},
			Setup:   setPlainRules,
		},
		{
			Name:    "typst",
			Formats: []format.Format{format.Typst},
			Setup:   setTypstRules,
		},
		{
			Name:    "typst-escape",
			Formats: []format.Format{format.Typst},
			Setup: func(t *Tokenizer) {
				t.SetTextEscaper(escapeTypst)
			},
		},
		{
			Name: "squash-blank-lines",
			PostProcess: func(text string, c *Converter) (string, error) {
				result, err := markdown.Document(text).Transform(markdown.SquashBlankLines())
				return string(result), err
			},
		},
		{
			Name: "trailing-newline",
			PostProcess: func(text string, c *Converter) (string, error) {
				text = strings.TrimRight(text, "\n")
				if text == "" {
					return "", nil
				}
				return text + "\n", nil
			},
		},
	}
}

// setupCoreSyntax registers the Obsidian syntax on top of CommonMark.
func setupCoreSyntax(t *Tokenizer) {
	t.Use(
		extension.Table,
		extension.Strikethrough,
		extension.TaskList,
		extension.Footnote,
	)

	// Inline: before links (200) and footnotes (101)
	t.AddInlineParser(&wikilinkParser{}, 99)
	t.AddInlineParser(&mathInlineParser{}, 450)
	t.AddInlineParser(&highlightParser{}, 500)

	// Blocks: before blockquotes (800) and paragraphs (1000)
	t.AddBlockParser(&mathBlockParser{}, 720)
	t.AddBlockParser(&columnsParser{}, 750)
	t.AddBlockParser(&columnBreakParser{}, 751)
	t.AddBlockParser(&calloutParser{}, 799)

	t.AddTransformer(&columnsTransformer{}, 100)
	t.AddTransformer(&tagTransformer{
		match: func(tag htmlTag) bool { return tag.name == "u" },
		build: func(tag htmlTag) ast.Node { return &Underline{} },
	}, 900)
	t.AddTransformer(&tagTransformer{
		match: func(tag htmlTag) bool { return tag.name == "mark" },
		build: func(tag htmlTag) ast.Node { return &Highlight{} },
	}, 900)
}
