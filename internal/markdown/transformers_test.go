package markdown_test

import (
	"testing"

	"github.com/julien-sobczak/the-noteexporter/internal/markdown"
	"github.com/stretchr/testify/assert"
)

func TestStripComments(t *testing.T) {
	input := markdown.Document("Visible %%hidden%% text\n\n%%\nmultiline\n%%\n```\n%%kept%%\n```\n<!--- removed --->Done")
	actual := input.MustTransform(markdown.StripComments())
	assert.Equal(t, markdown.Document("Visible  text\n\n\n```\n%%kept%%\n```\nDone"), actual)
}

func TestStripBlockIDs(t *testing.T) {
	input := markdown.Document("Paragraph ^abc-123\nNot^an-id\n")
	actual := input.MustTransform(markdown.StripBlockIDs())
	assert.Equal(t, markdown.Document("Paragraph\nNot^an-id\n"), actual)
}

func TestStripCodeBlocks(t *testing.T) {
	input := markdown.Document("A\n```md\n[[link]]\n```\nB")
	actual := input.MustTransform(markdown.StripCodeBlocks())
	assert.Equal(t, markdown.Document("A\n\n\n\nB"), actual)
}

func TestTransform(t *testing.T) {
	input := markdown.Document("A %%x%%\n\n\n\nB ^id")
	actual, err := input.Transform(markdown.StripComments(), markdown.StripBlockIDs(), markdown.SquashBlankLines())
	assert.NoError(t, err)
	assert.Equal(t, markdown.Document("A \n\nB"), actual)
}

func TestStripFrontMatter(t *testing.T) {
	input := markdown.Document("---\ntitle: Go\n---\n# Go\n\n---\n")
	actual := input.MustTransform(markdown.StripFrontMatter())
	assert.Equal(t, markdown.Document("# Go\n\n---\n"), actual)

	// Nothing to strip
	input = markdown.Document("# Go\n")
	assert.Equal(t, input, input.MustTransform(markdown.StripFrontMatter()))
}

func TestSquashBlankLines(t *testing.T) {
	input := markdown.Document("A\n\n\n\nB\n```\n1\n\n\n2\n```\n")
	actual := input.MustTransform(markdown.SquashBlankLines())
	assert.Equal(t, markdown.Document("A\n\nB\n```\n1\n\n\n2\n```\n"), actual)
}
