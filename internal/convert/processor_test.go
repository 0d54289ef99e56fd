package convert

import (
	"testing"

	"github.com/julien-sobczak/the-noteexporter/internal/format"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry(t *testing.T) {
	registry := NewRegistry()
	require.NoError(t, registry.Register(Processor{Name: "first"}))
	require.NoError(t, registry.Register(Processor{Name: "second", Formats: []format.Format{format.Typst}}))

	assert.Error(t, registry.Register(Processor{Name: "first"}))
	assert.Error(t, registry.Register(Processor{}))

	assert.Equal(t, []string{"first", "second"}, registry.Names(format.Typst))
	assert.Equal(t, []string{"first"}, registry.Names(format.Plain))

	registry.Freeze()
	err := registry.Register(Processor{Name: "third"})
	assert.ErrorIs(t, err, ErrRegistryFrozen)
	assert.Len(t, registry.Processors(), 2)

	assert.Panics(t, func() {
		registry.MustRegister(Processor{Name: "fourth"})
	})
}

func TestDefaultRegistry(t *testing.T) {
	registry := DefaultRegistry()
	assert.Same(t, registry, DefaultRegistry())
	assert.ErrorIs(t, registry.Register(Processor{Name: "custom"}), ErrRegistryFrozen)

	var tests = []struct {
		format   format.Format
		expected []string
	}{
		{
			format:   format.Typst,
			expected: []string{"front-matter", "obsidian-comments", "block-ids", "core-syntax", "typst", "typst-escape", "squash-blank-lines", "trailing-newline"},
		},
		{
			format:   format.MyST,
			expected: []string{"front-matter", "obsidian-comments", "block-ids", "core-syntax", "markdown", "myst", "squash-blank-lines", "trailing-newline"},
		},
		{
			format:   format.HMD,
			expected: []string{"front-matter", "obsidian-comments", "block-ids", "core-syntax", "markdown", "hmd", "squash-blank-lines", "trailing-newline"},
		},
		{
			format:   format.Plain,
			expected: []string{"front-matter", "obsidian-comments", "block-ids", "core-syntax", "markdown", "plain", "squash-blank-lines", "trailing-newline"},
		},
	}
	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			assert.Equal(t, tt.expected, registry.Names(tt.format))
		})
	}
}

func TestActivate(t *testing.T) {
	c := New(Options{
		TagMappings: []TagMapping{
			{Tag: "span", Template: "${tagContent}", Formats: []format.Format{format.HMD}},
		},
	})

	require.NoError(t, c.Activate(format.HMD))
	assert.Contains(t, c.Processors(), `tag-mapping <span>`)
	_, ok := c.tokenizer.Rule(KindCallout)
	assert.True(t, ok)
	assert.Len(t, c.pre, 3)
	assert.Len(t, c.post, 2)

	// Reactivation rebuilds the tokenizer
	previous := c.tokenizer
	require.NoError(t, c.Activate(format.Typst))
	assert.NotSame(t, previous, c.tokenizer)
	assert.NotContains(t, c.Processors(), `tag-mapping <span>`)
	assert.NotNil(t, c.tokenizer.escaper)

	assert.ErrorIs(t, c.Activate("docx"), ErrUnsupportedFormat)
	assert.Equal(t, format.Typst, c.Format())
}
