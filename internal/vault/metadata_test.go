package vault

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/julien-sobczak/the-noteexporter/internal/markdown"
	"github.com/julien-sobczak/the-noteexporter/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveLinkTarget(t *testing.T) {
	v, err := Open("testdata/vault")
	require.NoError(t, err)

	var tests = []struct {
		name   string
		raw    string
		source string
		want   string
		found  bool
	}{
		{"basename", "Go", "Home.md", "projects/go/Go.md", true},
		{"shortest path wins", "go", "Home.md", "projects/go/Go.md", true},
		{"full path", "archive/2020/Go", "Home.md", "archive/2020/Go.md", true},
		{"partial path", "2020/Go", "Home.md", "archive/2020/Go.md", true},
		{"with extension", "Home.md", "projects/go/Go.md", "Home.md", true},
		{"with section", "Go#Concurrency", "Home.md", "projects/go/Go.md", true},
		{"with alias", "Go|the language", "Home.md", "projects/go/Go.md", true},
		{"anchor in same note", "#Links", "Home.md", "Home.md", true},
		{"attachment", "logo.png", "Home.md", "medias/logo.png", true},
		{"case-insensitive", "HOME", "projects/go/Go.md", "Home.md", true},
		{"decomposed unicode", "Cafe\u0301", "Home.md", "Café.md", true},
		{"hidden directory", "app.json", "Home.md", "", false},
		{"missing", "Rust", "Home.md", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actual, found := v.ResolveLinkTarget(tt.raw, tt.source)
			assert.Equal(t, tt.found, found)
			assert.Equal(t, tt.want, actual)
		})
	}
}

func TestGetEmbeds(t *testing.T) {
	v, err := Open("testdata/vault")
	require.NoError(t, err)

	embeds, err := v.GetEmbeds("Home.md")
	require.NoError(t, err)
	assert.Equal(t, []Embed{
		{Link: "Go#Concurrency", Line: 7},
		{Link: "logo.png", Line: 9},
	}, embeds)

	_, err = v.GetEmbeds("Missing.md")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetFrontmatter(t *testing.T) {
	v, err := Open("testdata/vault")
	require.NoError(t, err)

	frontMatter, err := v.GetFrontmatter("Home.md")
	require.NoError(t, err)
	assert.Equal(t, "Home", frontMatter["title"])
	assert.Equal(t, []any{"index"}, frontMatter["tags"])

	frontMatter, err = v.GetFrontmatter("projects/go/Go.md")
	require.NoError(t, err)
	assert.Empty(t, frontMatter)
}

func TestGetHeadingIndex(t *testing.T) {
	v, err := Open("testdata/vault")
	require.NoError(t, err)

	headings, err := v.GetHeadingIndex("projects/go/Go.md")
	require.NoError(t, err)
	var actual []string
	for _, heading := range headings {
		actual = append(actual, heading.String())
	}
	assert.Equal(t, []string{"# Go", "## Concurrency", "### Channels", "## Tooling"}, actual)
}

func TestNoteCache(t *testing.T) {
	dir := testutil.SetUpFromGoldenDirNamed(t, "vault")
	v, err := Open(dir)
	require.NoError(t, err)

	first, err := v.Note("Home.md")
	require.NoError(t, err)
	second, err := v.Note("Home.md")
	require.NoError(t, err)
	assert.Same(t, first, second)

	path := filepath.Join(dir, "Home.md")
	require.NoError(t, os.WriteFile(path, []byte("# Home (edited)\n"), 0644))
	later := time.Now().Add(time.Minute)
	require.NoError(t, os.Chtimes(path, later, later))

	third, err := v.Note("Home.md")
	require.NoError(t, err)
	assert.NotSame(t, first, third)
	assert.Equal(t, markdown.Document("# Home (edited)\n"), third.Body)
}

func TestRefresh(t *testing.T) {
	dir := testutil.SetUpFromGoldenDirNamed(t, "vault")
	v, err := Open(dir)
	require.NoError(t, err)

	_, found := v.ResolveLinkTarget("Rust", "Home.md")
	assert.False(t, found)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "Rust.md"), []byte("# Rust\n"), 0644))
	_, found = v.ResolveLinkTarget("Rust", "Home.md")
	assert.False(t, found) // index not refreshed yet

	v.Refresh()
	target, found := v.ResolveLinkTarget("Rust", "Home.md")
	assert.True(t, found)
	assert.Equal(t, "Rust.md", target)
}
