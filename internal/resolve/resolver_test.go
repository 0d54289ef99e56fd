package resolve

import (
	"context"
	"testing"

	"github.com/julien-sobczak/the-noteexporter/internal/format"
	"github.com/julien-sobczak/the-noteexporter/internal/markdown"
	"github.com/julien-sobczak/the-noteexporter/internal/vault"
	"github.com/julien-sobczak/the-noteexporter/pkg/oid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	warnings []string
}

func (n *recordingNotifier) Warn(msg string) {
	n.warnings = append(n.warnings, msg)
}

func newTestResolver(t *testing.T, options Options) (*Resolver, *recordingNotifier) {
	v, err := vault.Open("testdata/vault")
	require.NoError(t, err)
	notifier := &recordingNotifier{}
	return New(v, v, notifier, options), notifier
}

func TestResolveEmbeds(t *testing.T) {
	r, notifier := newTestResolver(t, Options{Format: format.Typst, RecursiveEmbeds: true})
	assert.Equal(t, Idle, r.State())

	require.NoError(t, r.ResolveEmbeds(context.Background(), "Entry.md"))
	assert.Equal(t, LinkParsing, r.State())
	assert.Empty(t, notifier.warnings)

	entry, ok := r.Note("Entry.md")
	require.True(t, ok)
	assert.Equal(t, markdown.Document("# Entry\n"), entry.Body.ExtractLines(1, 1)+"\n")
	assert.NotContains(t, entry.Body.String(), "title: Entry")

	goNote, ok := r.Note("Go.md")
	require.True(t, ok)
	require.Len(t, goNote.Headings, 3)
	assert.Equal(t, "Concurrency", goNote.Headings[1].Text)

	_, ok = r.Note("Drawing.excalidraw.md")
	assert.False(t, ok)
	assert.True(t, r.IsDiagram("Drawing.excalidraw.md"))

	// A second resolution requires a reset
	assert.Error(t, r.ResolveEmbeds(context.Background(), "Entry.md"))
	r.Reset()
	assert.Equal(t, Idle, r.State())
	_, ok = r.Note("Go.md")
	assert.False(t, ok)
}

func TestResolveEmbedsCycle(t *testing.T) {
	r, notifier := newTestResolver(t, Options{Format: format.Typst, RecursiveEmbeds: true})

	require.NoError(t, r.ResolveEmbeds(context.Background(), "cycle/A.md"))

	_, ok := r.Note("cycle/A.md")
	assert.True(t, ok)
	_, ok = r.Note("cycle/B.md")
	assert.True(t, ok)

	// B embeds A which is being rendered
	stack := NewFileStack("cycle/A.md")
	linkB := r.ParseLink("B", true, stack)
	assert.Equal(t, LinkEmbed, linkB.Kind)
	assert.Contains(t, linkB.Content.String(), "Content of B.")

	linkA := r.ParseLink("A", true, stack.Push("cycle/B.md"))
	assert.Equal(t, LinkNote, linkA.Kind)
	assert.Empty(t, linkA.Content)
	require.Len(t, notifier.warnings, 1)
	assert.Contains(t, notifier.warnings[0], "embed cycle on cycle/A.md")
}

func TestSameNoteSectionEmbed(t *testing.T) {
	r, notifier := newTestResolver(t, Options{Format: format.Typst, RecursiveEmbeds: true})
	require.NoError(t, r.ResolveEmbeds(context.Background(), "Go.md"))
	warnings := len(notifier.warnings)

	stack := NewFileStack("Go.md")
	link := r.ParseLink("#Concurrency", true, stack)
	assert.Equal(t, LinkEmbed, link.Kind)
	assert.Equal(t, "Go.md", link.Path)
	assert.Contains(t, link.Content.String(), "Goroutines and channels.")

	section := stack.PushSection("Go.md", "Concurrency")
	other := r.ParseLink("#Tooling", true, section)
	assert.Equal(t, LinkEmbed, other.Kind)
	assert.Contains(t, other.Content.String(), "The go command.")
	assert.Len(t, notifier.warnings, warnings)

	// The section being rendered and the whole note are cycles
	again := r.ParseLink("#Concurrency", true, section)
	assert.Equal(t, LinkNote, again.Kind)
	whole := r.ParseLink("Go", true, section)
	assert.Equal(t, LinkNote, whole.Kind)
	assert.Len(t, notifier.warnings, warnings+2)
}

func TestResolveEmbedsMissingEntry(t *testing.T) {
	r, _ := newTestResolver(t, Options{Format: format.Typst})
	err := r.ResolveEmbeds(context.Background(), "Unknown.md")
	assert.ErrorIs(t, err, vault.ErrNotFound)
	assert.Equal(t, Idle, r.State())
}

func TestResolveEmbedsCanceled(t *testing.T) {
	r, _ := newTestResolver(t, Options{Format: format.Typst})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, r.ResolveEmbeds(ctx, "Entry.md"), context.Canceled)
}

func TestParseLink(t *testing.T) {
	var tests = []struct {
		name     string
		raw      string
		embedded bool
		// Expected
		kind       LinkKind
		path       string
		exportName string
		alias      string
		width      int
		height     int
		section    string
		content    string
	}{
		{
			name: "note",
			raw:  "Go",
			kind: LinkNote,
			path: "Go.md",
		},
		{
			name:  "note with alias",
			raw:   "Go|the Go language",
			kind:  LinkNote,
			path:  "Go.md",
			alias: "the Go language",
		},
		{
			name:    "heading in the same note",
			raw:     "#Entry",
			kind:    LinkNote,
			path:    "Entry.md",
			section: "Entry",
		},
		{
			name:       "image",
			raw:        "medias/logo.png",
			embedded:   true,
			kind:       LinkAttachment,
			path:       "medias/logo.png",
			exportName: "logo.png",
		},
		{
			name:       "image with size and alias",
			raw:        "medias/logo.png|300x200|The logo",
			embedded:   true,
			kind:       LinkAttachment,
			path:       "medias/logo.png",
			exportName: "logo.png",
			alias:      "The logo",
			width:      300,
			height:     200,
		},
		{
			name:       "alias stops segment processing",
			raw:        "medias/logo.png|The logo|300",
			embedded:   true,
			kind:       LinkAttachment,
			path:       "medias/logo.png",
			exportName: "logo.png",
			alias:      "The logo",
		},
		{
			name:     "embedded note",
			raw:      "Go",
			embedded: true,
			kind:     LinkEmbed,
			path:     "Go.md",
			content:  "# Go\n\nGo is a programming language.",
		},
		{
			name:     "embedded section",
			raw:      "Go#Concurrency",
			embedded: true,
			kind:     LinkEmbed,
			path:     "Go.md",
			section:  "Concurrency",
			content:  "## Concurrency\n\nGoroutines and channels.\n",
		},
		{
			name:     "embedded block",
			raw:      "Go#^tooling",
			embedded: true,
			kind:     LinkEmbed,
			path:     "Go.md",
			section:  "^tooling",
			content:  "The go command.\n",
		},
		{
			name:       "diagram",
			raw:        "Drawing.excalidraw",
			embedded:   true,
			kind:       LinkAttachment,
			path:       "Drawing.excalidraw.md",
			exportName: "Drawing.svg",
		},
		{
			name:       "diagram note",
			raw:        "Drawing.excalidraw.md",
			embedded:   true,
			kind:       LinkAttachment,
			path:       "Drawing.excalidraw.md",
			exportName: "Drawing.svg",
		},
		{
			name: "document",
			raw:  "paper.pdf",
			kind: LinkFile,
			path: "medias/paper.pdf",
		},
		{
			name:     "hidden video",
			raw:      "my clip.mp4",
			embedded: true,
			kind:     LinkHidden,
			path:     "medias/my clip.mp4",
		},
		{
			name:     "missing",
			raw:      "Rust",
			embedded: true,
			kind:     LinkMissing,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := newTestResolver(t, Options{Format: format.Typst, RecursiveEmbeds: true})
			require.NoError(t, r.ResolveEmbeds(context.Background(), "Entry.md"))

			link := r.ParseLink(tt.raw, tt.embedded, NewFileStack("Entry.md"))
			assert.Equal(t, tt.kind, link.Kind)
			assert.Equal(t, tt.path, link.Path)
			assert.Equal(t, tt.exportName, link.ExportName)
			assert.Equal(t, tt.alias, link.Alias)
			assert.Equal(t, tt.width, link.Width)
			assert.Equal(t, tt.height, link.Height)
			assert.Equal(t, tt.section, link.Section)
			if tt.content != "" {
				assert.Contains(t, link.Content.String(), tt.content)
			}
			assert.Equal(t, "Entry.md", link.Source())
		})
	}
}

func TestParseLinkMissing(t *testing.T) {
	r, notifier := newTestResolver(t, Options{Format: format.Typst})
	link := r.ParseLink("Rust|the Rust language", false, NewFileStack("Entry.md"))
	assert.Equal(t, LinkMissing, link.Kind)
	assert.Equal(t, "the Rust language", link.Alias)
	require.Len(t, notifier.warnings, 1)
	assert.Equal(t, "Entry.md: unresolved link [[Rust|the Rust language]]", notifier.warnings[0])
	assert.Empty(t, r.LinkList())
}

func TestParseLinkWithoutRecursiveEmbeds(t *testing.T) {
	r, _ := newTestResolver(t, Options{Format: format.Typst, RecursiveEmbeds: false})
	require.NoError(t, r.ResolveEmbeds(context.Background(), "Entry.md"))

	link := r.ParseLink("Go#Concurrency", true, NewFileStack("Entry.md"))
	assert.Equal(t, LinkNote, link.Kind)
	assert.Equal(t, "Go > Concurrency", link.Text())
}

func TestParseLinkMissingSection(t *testing.T) {
	r, notifier := newTestResolver(t, Options{Format: format.Typst, RecursiveEmbeds: true})
	require.NoError(t, r.ResolveEmbeds(context.Background(), "Entry.md"))

	link := r.ParseLink("Go#Generics", true, NewFileStack("Entry.md"))
	assert.Equal(t, LinkEmbed, link.Kind)
	assert.Empty(t, link.Content)
	assert.Equal(t, []string{`Entry.md: section "Generics" not found in "Go.md"`}, notifier.warnings)
}

func TestLinkDedup(t *testing.T) {
	r, _ := newTestResolver(t, Options{Format: format.Typst, RenameAttachments: true})
	oid.UseSequence(t)

	stack := NewFileStack("Entry.md")
	first := r.ParseLink("medias/logo.png", true, stack)
	second := r.ParseLink("medias/logo.png|The logo", true, stack)
	other := r.ParseLink("other/logo.png", true, stack)

	assert.Equal(t, "logo-000001.png", first.ExportName)
	assert.Equal(t, first.ExportName, second.ExportName)
	assert.Equal(t, "logo-000002.png", other.ExportName)

	assert.Equal(t, []LinkDescriptor{
		{SourcePath: "medias/logo.png", ExportName: "logo-000001.png", Type: Image},
		{SourcePath: "other/logo.png", ExportName: "logo-000002.png", Type: Image},
	}, r.LinkList())
}

func TestExportNames(t *testing.T) {
	r, _ := newTestResolver(t, Options{Format: format.HMD, DiagramType: "png"})
	require.NoError(t, r.ResolveEmbeds(context.Background(), "Entry.md"))

	stack := NewFileStack("Entry.md")
	r.ParseLink("medias/logo.png", true, stack)
	r.ParseLink("other/logo.png", true, stack)
	r.ParseLink("my clip.mp4", true, stack)
	r.ParseLink("Drawing.excalidraw", true, stack)
	r.Finish()
	assert.Equal(t, Done, r.State())

	assert.Equal(t, []LinkDescriptor{
		{SourcePath: "medias/logo.png", ExportName: "logo.png", Type: Image},
		{SourcePath: "other/logo.png", ExportName: "logo_2.png", Type: Image},
		{SourcePath: "medias/my clip.mp4", ExportName: "my_clip.mp4", Type: Video},
		{SourcePath: "Drawing.excalidraw.md", ExportName: "Drawing.png", Type: Diagram},
	}, r.LinkList())
}

func TestExportNamesReserved(t *testing.T) {
	// Names already used by other conversions sharing the same directory
	reserved := map[string]string{"logo.png": "somewhere/logo.png"}
	r, _ := newTestResolver(t, Options{
		Format: format.HMD,
		ReserveName: func(exportName, sourcePath string) bool {
			if owner, ok := reserved[exportName]; ok && owner != sourcePath {
				return false
			}
			reserved[exportName] = sourcePath
			return true
		},
	})
	require.NoError(t, r.ResolveEmbeds(context.Background(), "Entry.md"))

	stack := NewFileStack("Entry.md")
	r.ParseLink("medias/logo.png", true, stack)
	r.ParseLink("other/logo.png", true, stack)
	r.Finish()

	assert.Equal(t, []LinkDescriptor{
		{SourcePath: "medias/logo.png", ExportName: "logo_2.png", Type: Image},
		{SourcePath: "other/logo.png", ExportName: "logo_3.png", Type: Image},
	}, r.LinkList())
}

func TestMediaGating(t *testing.T) {
	var tests = []struct {
		name    string
		options Options
		kind    LinkKind
	}{
		{"format with media", Options{Format: format.HMD}, LinkAttachment},
		{"format without media", Options{Format: format.Typst}, LinkHidden},
		{"format without media but processed", Options{Format: format.Typst, ProcessVideo: true, ProcessAudio: true}, LinkAttachment},
		{"only video processed", Options{Format: format.MyST, ProcessVideo: true}, LinkHidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, notifier := newTestResolver(t, tt.options)
			link := r.ParseLink("song.mp3", true, NewFileStack("Entry.md"))
			assert.Equal(t, tt.kind, link.Kind)
			assert.Equal(t, "medias/song.mp3", link.Path)
			assert.Empty(t, notifier.warnings)
			if tt.kind == LinkHidden {
				assert.Empty(t, r.LinkList())
			} else {
				assert.Equal(t, Audio, link.Type)
				assert.Len(t, r.LinkList(), 1)
			}
		})
	}
}

func TestRuleSet(t *testing.T) {
	var warnings []string
	warn := func(msg string) { warnings = append(warnings, msg) }

	set := NewRuleSet(warn,
		Rule{Name: "note", Kind: NoExtName},
		Rule{Name: "alias", Kind: Alias},
		Rule{Name: "image", Kind: ExtName, Match: hasKind(0)},
		Rule{Name: "other-note", Kind: NoExtName},
		Rule{Name: "other-alias", Kind: Alias},
		Rule{Name: "size", Kind: Decorator},
		Rule{Name: "color", Kind: Decorator},
	)
	assert.Equal(t, []string{
		`link rule "other-note" ignored: a no_ext_name rule is already registered ("note")`,
		`link rule "other-alias" ignored: a alias rule is already registered ("alias")`,
	}, warnings)
	assert.Len(t, set.Rules(NoExtName), 1)
	assert.Len(t, set.Rules(Alias), 1)
	assert.Len(t, set.Rules(Decorator), 2)
	assert.Len(t, set.Rules(ExtName), 1)
}

func TestRuleProcessorsFilteredByFormat(t *testing.T) {
	var applied []string
	set := NewRuleSet(nil,
		Rule{
			Name: "note",
			Kind: NoExtName,
			Processors: []RuleProcessor{
				{Formats: []format.Format{format.Typst}, Apply: func(_ *Resolver, link *Link, _ string) {
					applied = append(applied, "typst")
				}},
				{Apply: func(_ *Resolver, link *Link, _ string) {
					applied = append(applied, "all")
				}},
			},
		},
	)

	r, _ := newTestResolver(t, Options{Format: format.MyST, Rules: set})
	r.ParseLink("Go", false, NewFileStack("Entry.md"))
	assert.Equal(t, []string{"all"}, applied)

	applied = nil
	r, _ = newTestResolver(t, Options{Format: format.Typst, Rules: set})
	r.ParseLink("Go", false, NewFileStack("Entry.md"))
	assert.Equal(t, []string{"typst", "all"}, applied)
}
