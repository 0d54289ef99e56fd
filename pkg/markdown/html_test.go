package markdown_test

import (
	"testing"

	"github.com/julien-sobczak/the-noteexporter/pkg/markdown"
	"github.com/stretchr/testify/assert"
)

func TestToHTML(t *testing.T) {
	html := markdown.ToHTML("# Title\n\nSome **bold** text.\n")
	assert.Contains(t, html, "<h1>Title</h1>")
	assert.Contains(t, html, "<p>Some <strong>bold</strong> text.</p>")
}

func TestToHTMLPage(t *testing.T) {
	page := markdown.ToHTMLPage("My Note", "Hello\n")
	assert.Contains(t, page, "<title>My Note</title>")
	assert.Contains(t, page, "<p>Hello</p>")
}
