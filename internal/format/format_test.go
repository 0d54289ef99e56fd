package format_test

import (
	"testing"

	"github.com/julien-sobczak/the-noteexporter/internal/format"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		input     string
		expected  format.Format
		extension string
	}{
		{"typst", format.Typst, ".typ"},
		{"MyST", format.MyST, ".md"},
		{" hmd ", format.HMD, ".md"},
		{"plain", format.Plain, ".md"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			actual, err := format.Parse(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, actual)
			assert.Equal(t, tt.extension, actual.Extension())
		})
	}

	_, err := format.Parse("docx")
	assert.ErrorContains(t, err, `unsupported format "docx"`)
}

func TestIn(t *testing.T) {
	assert.True(t, format.Typst.In(nil))
	assert.True(t, format.Typst.In([]format.Format{format.MyST, format.Typst}))
	assert.False(t, format.Plain.In([]format.Format{format.MyST, format.Typst}))
}

func TestSupportsMedia(t *testing.T) {
	assert.True(t, format.HMD.SupportsMedia())
	assert.False(t, format.Typst.SupportsMedia())
}
