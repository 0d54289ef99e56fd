package core

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/julien-sobczak/the-noteexporter/internal/resolve"
	"github.com/julien-sobczak/the-noteexporter/internal/vault"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestExporter(t *testing.T, presetName string) (*Exporter, *RecordingNotifier, string) {
	dir := SetUpVaultFromGoldenDirNamed(t, "vault")
	notifier := &RecordingNotifier{}
	exporter, err := NewExporter(CurrentConfig(), presetName, notifier)
	require.NoError(t, err)
	return exporter, notifier, dir
}

func TestExport(t *testing.T) {
	exporter, notifier, dir := newTestExporter(t, "typst")

	result, err := exporter.Export(context.Background(), "notes/Go.md")
	require.NoError(t, err)
	assert.Empty(t, notifier.Warnings())

	outputDir := filepath.Join(dir, "export", "typst")
	assert.Equal(t, filepath.Join(outputDir, "Go.typ"), result.OutputPath)
	assert.Equal(t, result.Content, mustReadFile(t, result.OutputPath))

	// Content template
	assert.Contains(t, result.Content, "#import \"style.typ\": *\n\n= Go <go>\n")
	// Tag mappings
	assert.Contains(t, result.Content, "#text(fill: red)[hot]")
	// Attachments
	assert.Contains(t, result.Content, `#image("attachments/gopher.png")`)
	assert.Contains(t, result.Content, `#image("attachments/Drawing.svg")`)
	// Embedded section
	assert.Contains(t, result.Content, "Goroutines are cheap\\.")
	assert.NotContains(t, result.Content, "Channels")

	require.Len(t, result.Attachments, 2)
	assert.Equal(t, resolve.LinkDescriptor{SourcePath: "medias/gopher.png", ExportName: "gopher.png", Type: resolve.Image}, result.Attachments[0].LinkDescriptor)
	assert.Equal(t, resolve.LinkDescriptor{SourcePath: "Drawing.excalidraw.md", ExportName: "Drawing.svg", Type: resolve.Diagram}, result.Attachments[1].LinkDescriptor)
	for _, attachment := range result.Attachments {
		assert.NoError(t, attachment.Err)
		assert.False(t, attachment.Skipped)
		assertFileExists(t, attachment.Dest)
	}
	assert.Equal(t, "PNG", mustReadFile(t, filepath.Join(outputDir, "attachments", "gopher.png")))

	// Assets are filtered using .nteignore
	assertFileExists(t, filepath.Join(outputDir, "style.typ"))
	assertNoFile(t, filepath.Join(outputDir, "old.bak"))

	assert.Equal(t, "notes/Go.md => "+result.OutputPath+" (2 attachment(s))", result.Summary())
}

func TestExportDryRun(t *testing.T) {
	FreezeAt(t, time.Date(2023, time.January, 1, 12, 0, 0, 0, time.UTC))
	exporter, _, dir := newTestExporter(t, "plain")
	CurrentConfig().DryRun = true
	exporter.Diff = true

	result, err := exporter.Export(context.Background(), "notes/Go.md")
	require.NoError(t, err)

	outputDir := filepath.Join(dir, "export", "plain")
	assert.Equal(t, filepath.Join(outputDir, "Go-2023-01-01.md"), result.OutputPath)
	assert.Contains(t, result.Patch, "+# Go\n")
	assert.Contains(t, result.Content, `Go is <span class="warning">hot</span>.`)
	require.Len(t, result.Attachments, 2)
	assert.Equal(t, "Drawing.png", result.Attachments[1].ExportName)

	// Nothing is written
	assertNoFile(t, result.OutputPath)
	for _, attachment := range result.Attachments {
		assertNoFile(t, attachment.Dest)
	}
}

func TestExportDiff(t *testing.T) {
	exporter, _, dir := newTestExporter(t, "plain")

	_, err := exporter.Export(context.Background(), "notes/Python.md")
	require.NoError(t, err)

	notePath := filepath.Join(dir, "notes", "Python.md")
	content := mustReadFile(t, notePath)
	require.NoError(t, os.WriteFile(notePath, []byte(content+"\nMore text.\n"), 0644))

	exporter.Diff = true
	result, err := exporter.Export(context.Background(), "notes/Python.md")
	require.NoError(t, err)
	assert.Contains(t, result.Patch, "+More text.\n")
	assert.NotContains(t, result.Patch, "-# Python")

	// Attachments are copied once
	require.Len(t, result.Attachments, 1)
	assert.True(t, result.Attachments[0].Skipped)

	exporter.Reset()
	result, err = exporter.Export(context.Background(), "notes/Python.md")
	require.NoError(t, err)
	assert.False(t, result.Attachments[0].Skipped)
}

func TestExportConflict(t *testing.T) {
	exporter, _, _ := newTestExporter(t, "inplace")

	_, err := exporter.Export(context.Background(), "notes/Go.md")
	assert.ErrorIs(t, err, ErrOutputConflict)
}

func TestExportMissingNote(t *testing.T) {
	exporter, _, _ := newTestExporter(t, "typst")

	_, err := exporter.Export(context.Background(), "notes/Missing.md")
	assert.ErrorIs(t, err, vault.ErrNotFound)
}

type failingExporter struct{}

func (failingExporter) OnPreGeneration(func(cmd string, args ...string)) {}
func (failingExporter) ExportToRaster(ctx context.Context, src, dest string, scale int) error {
	return errors.New("no display")
}
func (failingExporter) ExportToVector(ctx context.Context, src, dest string) error {
	return errors.New("no display")
}

func TestExportAttachmentFailure(t *testing.T) {
	exporter, notifier, _ := newTestExporter(t, "typst")
	exporter.WithDiagramExporter(failingExporter{})

	result, err := exporter.Export(context.Background(), "notes/Go.md")
	require.NoError(t, err)
	require.Len(t, result.Attachments, 2)

	// Other attachments are still copied
	assert.NoError(t, result.Attachments[0].Err)
	assertFileExists(t, result.Attachments[0].Dest)
	assert.ErrorContains(t, result.Attachments[1].Err, "no display")
	assert.Contains(t, result.Summary(), "1 failed")

	warnings := notifier.Warnings()
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "notes/Go.md: failed to export Drawing.excalidraw.md")
}

func TestListNotes(t *testing.T) {
	exporter, _, _ := newTestExporter(t, "typst")

	notes, err := exporter.ListNotes("")
	require.NoError(t, err)
	assert.Equal(t, []string{"notes/Concurrency.md", "notes/Go.md", "notes/Python.md"}, notes)

	notes, err = exporter.ListNotes("drafts")
	require.NoError(t, err)
	assert.Empty(t, notes)
}

func TestExportAll(t *testing.T) {
	exporter, notifier, dir := newTestExporter(t, "typst")
	CurrentConfig().SetParallel(2)

	notes, err := exporter.ListNotes("")
	require.NoError(t, err)

	var mu sync.Mutex
	var done []string
	results, err := exporter.ExportAll(context.Background(), notes, func(notePath string, result *ExportResult, err error) {
		mu.Lock()
		defer mu.Unlock()
		assert.NoError(t, err)
		done = append(done, notePath)
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, notes, done)
	assert.Empty(t, notifier.Warnings())

	// Results are in the order of the notes
	require.Len(t, results, 3)
	outputDir := filepath.Join(dir, "export", "typst")
	for i, name := range []string{"Concurrency.typ", "Go.typ", "Python.typ"} {
		require.NotNil(t, results[i])
		assert.Equal(t, filepath.Join(outputDir, name), results[i].OutputPath)
		assertFileExists(t, results[i].OutputPath)
	}

	// gopher.png is embedded by two notes but copied once
	skipped := 0
	for _, result := range results {
		for _, attachment := range result.Attachments {
			if attachment.Skipped {
				skipped++
			}
		}
	}
	assert.Equal(t, 1, skipped)
	assertFileExists(t, filepath.Join(outputDir, "attachments", "gopher.png"))
}

func TestExportAllSameBasename(t *testing.T) {
	exporter, notifier, dir := newTestExporter(t, "typst")
	CurrentConfig().SetParallel(2)

	// Another gopher.png in a different directory
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "archives", "2020"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "archives", "2020", "gopher.png"), []byte("OLD PNG"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes", "Archive.md"), []byte("# Archive\n\n![[archives/2020/gopher.png]]\n"), 0644))
	exporter.Reset()

	results, err := exporter.ExportAll(context.Background(), []string{"notes/Go.md", "notes/Archive.md"}, func(notePath string, result *ExportResult, err error) {
		assert.NoError(t, err)
	})
	require.NoError(t, err)
	assert.Empty(t, notifier.Warnings())

	expected := map[string]string{
		"medias/gopher.png":   "PNG",
		"archives/2020/gopher.png": "OLD PNG",
	}
	var names []string
	for _, result := range results {
		require.NotNil(t, result)
		for _, attachment := range result.Attachments {
			content, ok := expected[attachment.SourcePath]
			if !ok {
				continue
			}
			assert.False(t, attachment.Skipped)
			assert.Equal(t, content, mustReadFile(t, attachment.Dest))
			assert.Contains(t, result.Content, `#image("attachments/`+attachment.ExportName+`")`)
			names = append(names, attachment.ExportName)
		}
	}
	assert.ElementsMatch(t, []string{"gopher.png", "gopher_2.png"}, names)
}

func TestExportAllErrors(t *testing.T) {
	exporter, _, _ := newTestExporter(t, "typst")

	t.Run("Failing note", func(t *testing.T) {
		var mu sync.Mutex
		var failures []string
		results, err := exporter.ExportAll(context.Background(), []string{"notes/Missing.md", "notes/Concurrency.md"}, func(notePath string, result *ExportResult, err error) {
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failures = append(failures, notePath)
			}
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"notes/Missing.md"}, failures)
		assert.Nil(t, results[0])
		assert.NotNil(t, results[1])
	})

	t.Run("Canceled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		called := false
		_, err := exporter.ExportAll(ctx, []string{"notes/Go.md"}, func(string, *ExportResult, error) {
			called = true
		})
		assert.ErrorIs(t, err, context.Canceled)
		assert.False(t, called)
	})
}

func TestRelativePath(t *testing.T) {
	exporter, _, dir := newTestExporter(t, "typst")

	rel, err := exporter.RelativePath(filepath.Join(dir, "notes", "Go.md"))
	require.NoError(t, err)
	assert.Equal(t, "notes/Go.md", rel)

	rel, err = exporter.RelativePath("notes/Go.md")
	require.NoError(t, err)
	assert.Equal(t, "notes/Go.md", rel)

	_, err = exporter.RelativePath(filepath.Join(filepath.Dir(dir), "Outside.md"))
	assert.Error(t, err)
}

func TestPreviewExporter(t *testing.T) {
	SetUpVaultFromGoldenDirNamed(t, "vault")
	outputDir := t.TempDir()

	exporter, err := NewPreviewExporter(CurrentConfig(), outputDir, &RecordingNotifier{})
	require.NoError(t, err)
	result, err := exporter.Export(context.Background(), "notes/Python.md")
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(outputDir, "Python.md"), result.OutputPath)
	assert.Contains(t, result.Content, "# Python\n")
	assertFileExists(t, filepath.Join(outputDir, "gopher.png"))
}
