package convert

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yuin/goldmark/ast"
)

func parseCoreSyntax(t *testing.T, source string) ast.Node {
	tokenizer := NewTokenizer()
	setupCoreSyntax(tokenizer)
	doc := tokenizer.Parse([]byte(source), &parseState{})
	require.NotNil(t, doc)
	return doc
}

// findNodes returns the nodes of a kind in document order.
func findNodes(doc ast.Node, kind ast.NodeKind) []ast.Node {
	var result []ast.Node
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if entering && n.Kind() == kind {
			result = append(result, n)
		}
		return ast.WalkContinue, nil
	})
	return result
}

func TestWikilinkParser(t *testing.T) {
	doc := parseCoreSyntax(t, "A [[Go#Tooling|tools]] and ![[logo.png|100x50]].\n\n| [[A\\|B]] |\n|---|\n| [not a link] |\n")

	links := findNodes(doc, KindWikilink)
	require.Len(t, links, 3)

	first := links[0].(*Wikilink)
	assert.Equal(t, "Go#Tooling|tools", first.Raw)
	assert.False(t, first.Embedded)
	assert.Equal(t, "tools", first.Link.Alias)
	assert.Equal(t, "Tooling", first.Link.Section)

	second := links[1].(*Wikilink)
	assert.True(t, second.Embedded)
	assert.Equal(t, 100, second.Link.Width)
	assert.Equal(t, 50, second.Link.Height)

	// Pipes are escaped in tables
	third := links[2].(*Wikilink)
	assert.Equal(t, "A|B", third.Raw)
	assert.Equal(t, "B", third.Link.Alias)
}

func TestCalloutParser(t *testing.T) {
	doc := parseCoreSyntax(t, "> [!TIP]- My *title*\n> Line 1\n> Line 2\n\n> Quote\n")

	callouts := findNodes(doc, KindCallout)
	require.Len(t, callouts, 1)
	callout := callouts[0].(*Callout)
	assert.Equal(t, "tip", callout.CalloutType)
	assert.Equal(t, "-", callout.Fold)
	assert.True(t, callout.Foldable())
	require.NotNil(t, callout.Title())
	assert.Equal(t, ast.KindParagraph, callout.Title().NextSibling().Kind())

	assert.Len(t, findNodes(doc, ast.KindBlockquote), 1)
	assert.Len(t, findNodes(doc, ast.KindEmphasis), 1)
}

func TestColumnsParser(t *testing.T) {
	doc := parseCoreSyntax(t, ":::col 1, 3\nLeft\n\n@col\n\n- Right\n:::\n\n@col\n")

	containers := findNodes(doc, KindColumns)
	require.Len(t, containers, 1)
	container := containers[0].(*Columns)
	assert.Equal(t, []string{"1", "3"}, container.Widths)
	require.Equal(t, 2, container.ChildCount())
	assert.Equal(t, "1", container.FirstChild().(*Column).Width)
	assert.Equal(t, "3", container.LastChild().(*Column).Width)
	assert.Equal(t, ast.KindList, container.LastChild().FirstChild().Kind())

	// Separators are only recognized inside columns
	assert.Empty(t, findNodes(doc, KindColumnBreak))
	assert.Len(t, findNodes(doc, ast.KindParagraph), 2)
}

func TestColumnsParserNesting(t *testing.T) {
	t.Run("Code block", func(t *testing.T) {
		doc := parseCoreSyntax(t, ":::col\n```\n:::\n```\n@col\nRight\n:::\n\nAfter\n")

		containers := findNodes(doc, KindColumns)
		require.Len(t, containers, 1)
		assert.Equal(t, 2, containers[0].ChildCount())
		blocks := findNodes(doc, ast.KindFencedCodeBlock)
		require.Len(t, blocks, 1)
		assert.Equal(t, 1, blocks[0].Lines().Len())
		// The paragraph after the container is outside
		assert.Equal(t, ast.KindParagraph, doc.LastChild().Kind())
	})

	t.Run("Nested columns", func(t *testing.T) {
		doc := parseCoreSyntax(t, ":::col\nLeft\n:::col\nA\n@col\nB\n:::\n@col\nRight\n:::\n")

		containers := findNodes(doc, KindColumns)
		require.Len(t, containers, 2)
		outer, inner := containers[0], containers[1]
		assert.Equal(t, 2, outer.ChildCount())
		assert.Equal(t, 2, inner.ChildCount())
		assert.Equal(t, outer.FirstChild(), inner.Parent())
		assert.Empty(t, findNodes(doc, KindColumnBreak))
	})
}

func TestMathParsers(t *testing.T) {
	doc := parseCoreSyntax(t, "Inline $a+b$ but not $5 and $6.\n\n$$x^2$$\n\n$$\n\\frac{1}{2}\n$$\n")

	inlines := findNodes(doc, KindMathInline)
	require.Len(t, inlines, 1)
	assert.Equal(t, "a+b", string(inlines[0].(*MathInline).Formula))

	assert.Len(t, findNodes(doc, KindMathBlock), 2)
}

func TestHighlightParser(t *testing.T) {
	doc := parseCoreSyntax(t, "A ==marked== text, a = b and a === b.\n")

	highlights := findNodes(doc, KindHighlight)
	require.Len(t, highlights, 1)
	assert.Equal(t, ast.KindText, highlights[0].FirstChild().Kind())
}
