package text_test

import (
	"testing"

	"github.com/julien-sobczak/the-noteexporter/pkg/text"
	"github.com/stretchr/testify/assert"
)

func TestSquashBlankLines(t *testing.T) {
	var tests = []struct {
		name     string // name
		input    string // input
		expected string // expected result
	}{
		{
			name:     "TwoLines",
			input:    "A\n\n\nB\n",
			expected: "A\n\nB\n",
		},
		{
			name:     "NoEmptyLines",
			input:    "A\nB\nC",
			expected: "A\nB\nC",
		},
		{
			name:     "WhitespaceLines",
			input:    "A\n  \n\t\n\nC\n",
			expected: "A\n\nC\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, text.SquashBlankLines(tt.input))
		})
	}
}

func TestPrefixLines(t *testing.T) {
	tests := []struct {
		name     string
		input    string // input
		prefix   string // input
		expected string // output
	}{
		{
			name:     "Basic",
			input:    "Hello\nWorld",
			prefix:   "> ",
			expected: "> Hello\n> World\n",
		},
		{
			name:     "BlankLine",
			input:    "Hello\n\nWorld\n",
			prefix:   "> ",
			expected: "> Hello\n>\n> World\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, text.PrefixLines(tt.input, tt.prefix))
		})
	}
}

func TestPrefixLinesFirst(t *testing.T) {
	actual := text.PrefixLinesFirst("item\ncontinued", "- ", "  ")
	assert.Equal(t, "- item\n  continued\n", actual)
}

func TestIsBlank(t *testing.T) {
	assert.True(t, text.IsBlank(""))
	assert.True(t, text.IsBlank("   "))
	assert.True(t, text.IsBlank("\n"))
	assert.False(t, text.IsBlank(" Not blank"))
}

func TestTrimExtension(t *testing.T) {
	var tests = []struct {
		name     string // name
		path     string // input
		expected string // output
	}{
		{"Basic filename", "index.md", "index"},
		{"Relative path", "notes/go/index.md", "notes/go/index"},
		{"Double extension", "drawing.excalidraw.md", "drawing.excalidraw"},
		{"No extension", "README", "README"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, text.TrimExtension(tt.path))
		})
	}
}

func TestSplitAround(t *testing.T) {
	before, after, found := text.SplitAround("#text(red)[${tagContent}]", "${tagContent}")
	assert.True(t, found)
	assert.Equal(t, "#text(red)[", before)
	assert.Equal(t, "]", after)

	_, _, found = text.SplitAround("#text(red)", "${tagContent}")
	assert.False(t, found)
}
