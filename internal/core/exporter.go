package core

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/julien-sobczak/the-noteexporter/internal/convert"
	"github.com/julien-sobczak/the-noteexporter/internal/format"
	"github.com/julien-sobczak/the-noteexporter/internal/medias"
	"github.com/julien-sobczak/the-noteexporter/internal/placeholder"
	"github.com/julien-sobczak/the-noteexporter/internal/resolve"
	"github.com/julien-sobczak/the-noteexporter/internal/vault"
	godiffpatch "github.com/sourcegraph/go-diff-patch"
	"golang.org/x/sync/errgroup"
)

// ErrOutputConflict is returned when two notes of a batch share the same output file
// or when an export would overwrite its own source note.
var ErrOutputConflict = errors.New("output conflict")

// Exporter exports the notes of a vault using a preset.
// An Exporter can be used concurrently: each note gets its own converter.
type Exporter struct {
	config   *Config
	vault    *vault.FS
	preset   *Preset
	notifier Notifier
	diagrams medias.DiagramExporter

	// Compute the patch against the previous output
	Diff bool

	mu          sync.Mutex
	claimed     map[string]string // destination => note having claimed it
	attachments map[string]string // destination => attachment source
	copied      map[string]bool

	assetsOnce sync.Once
	assetsErr  error
}

// ExportResult describes the export of a single note.
type ExportResult struct {
	NotePath    string
	OutputPath  string
	Content     string
	Attachments []*ExportedAttachment
	Patch       string // Only when Diff is enabled
}

// ExportedAttachment is a file copied (or generated) next to the output.
type ExportedAttachment struct {
	resolve.LinkDescriptor
	Dest    string
	Skipped bool  // Already copied by another note
	Err     error // Errors are isolated per attachment
}

func (a ExportedAttachment) String() string {
	return fmt.Sprintf("%s => %s", a.SourcePath, a.Dest)
}

// NewExporter prepares the export using the named preset.
func NewExporter(config *Config, presetName string, notifier Notifier) (*Exporter, error) {
	preset, err := config.Preset(presetName)
	if err != nil {
		return nil, err
	}
	return newExporter(config, preset, notifier)
}

// NewPreviewExporter exports notes in HTML-flavoured Markdown to outputDir.
// Embeds are expanded and medias are kept, as browsers can display them.
func NewPreviewExporter(config *Config, outputDir string, notifier Notifier) (*Exporter, error) {
	preset := &Preset{
		Name:            "preview",
		Format:          string(format.HMD),
		OutputDir:       outputDir,
		RecursiveEmbeds: true,
		ProcessVideo:    true,
		ProcessAudio:    true,
	}
	preset.withDefaults()
	return newExporter(config, preset, notifier)
}

func newExporter(config *Config, preset *Preset, notifier Notifier) (*Exporter, error) {
	v, err := vault.Open(config.RootDirectory)
	if err != nil {
		return nil, err
	}
	if notifier == nil {
		notifier = NewConsoleNotifier()
	}
	return &Exporter{
		config:      config,
		vault:       v,
		preset:      preset,
		notifier:    notifier,
		claimed:     make(map[string]string),
		attachments: make(map[string]string),
		copied:      make(map[string]bool),
	}, nil
}

// WithDiagramExporter overrides the exporter of Excalidraw drawings (useful in tests).
func (e *Exporter) WithDiagramExporter(exporter medias.DiagramExporter) *Exporter {
	e.diagrams = exporter
	return e
}

func (e *Exporter) Preset() *Preset {
	return e.preset
}

func (e *Exporter) Vault() *vault.FS {
	return e.vault
}

// Reset forgets the files written by previous exports (ex: before re-exporting a note).
func (e *Exporter) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.claimed = make(map[string]string)
	e.attachments = make(map[string]string)
	e.copied = make(map[string]bool)
	e.vault.Refresh()
}

// diagramExporter is created on first use as most notes do not embed drawings.
func (e *Exporter) diagramExporter() (medias.DiagramExporter, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.diagrams != nil {
		return e.diagrams, nil
	}
	exporter, err := e.config.DiagramExporter()
	if err != nil {
		return nil, err
	}
	e.diagrams = exporter
	return exporter, nil
}

// RelativePath returns the vault-relative path of a note given on the command line.
func (e *Exporter) RelativePath(notePath string) (string, error) {
	if !filepath.IsAbs(notePath) {
		// Relative to the working directory first, then to the vault root
		abs, err := filepath.Abs(notePath)
		if err == nil {
			if _, err := os.Stat(abs); err == nil {
				return e.vault.Rel(abs)
			}
		}
		return filepath.ToSlash(filepath.Clean(notePath)), nil
	}
	return e.vault.Rel(notePath)
}

// Export exports a single note (relative to the vault).
func (e *Exporter) Export(ctx context.Context, notePath string) (*ExportResult, error) {
	logger := CurrentLogger()
	logger.Infof("Exporting %q using preset %s", notePath, e.preset)

	content, err := e.vault.Read(notePath)
	if err != nil {
		return nil, err
	}
	frontMatter, err := e.vault.GetFrontmatter(notePath)
	if err != nil {
		return nil, err
	}

	notifier := prefixNotifier{prefix: notePath + ": ", target: e.notifier}
	placeholders := placeholder.NewResolver(placeholder.Context{
		VaultDir:   e.vault.Root(),
		NotePath:   notePath,
		PresetName: e.preset.Name,
		Metadata:   frontMatter,
		OutputDir:  e.preset.OutputDir,
	}, placeholder.WithWarn(notifier.Warn))

	outputDir := e.absolute(placeholders.Value("outputDir"))
	attachmentDir := e.absolute(placeholders.Replace(e.preset.AttachmentDir))
	attachmentPath, err := filepath.Rel(outputDir, attachmentDir)
	if err != nil {
		return nil, fmt.Errorf("invalid attachment directory %q: %w", attachmentDir, err)
	}
	if attachmentPath == "." {
		attachmentPath = ""
	}

	f := e.preset.OutputFormat()
	converter := convert.NewNoteConverter(notePath, e.vault, e.vault, placeholders,
		resolve.Options{
			RecursiveEmbeds:   e.preset.RecursiveEmbeds,
			RenameAttachments: e.preset.RenameAttachments,
			ProcessVideo:      e.preset.ProcessVideo,
			ProcessAudio:      e.preset.ProcessAudio,
			DiagramType:       e.preset.DiagramType,
			ReserveName: func(exportName, sourcePath string) bool {
				return e.reserveAttachment(filepath.Join(attachmentDir, exportName), sourcePath)
			},
		},
		convert.Options{
			ImageTemplate:  e.preset.ImageTemplate,
			VideoTemplate:  e.preset.VideoTemplate,
			AudioTemplate:  e.preset.AudioTemplate,
			AttachmentPath: filepath.ToSlash(attachmentPath),
			TagMappings:    e.config.ConfigFile.TagMappings(),
			Notifier:       notifier,
			Logger:         logger,
		})

	body, err := converter.Convert(ctx, string(content), f)
	if err != nil {
		return nil, fmt.Errorf("failed to convert %q: %w", notePath, err)
	}

	result := &ExportResult{
		NotePath:   notePath,
		OutputPath: filepath.Join(outputDir, placeholders.Replace(e.preset.OutputBasename)+f.Extension()),
		Content:    converter.ReplacePlaceholders(e.preset.ContentTemplate, body),
	}
	if source, _ := e.vault.Abs(notePath); source == result.OutputPath {
		return nil, fmt.Errorf("%w: %q would overwrite the source note", ErrOutputConflict, result.OutputPath)
	}
	if err := e.claim(result.OutputPath, notePath); err != nil {
		return nil, err
	}

	for _, descriptor := range converter.LinkList() {
		result.Attachments = append(result.Attachments, &ExportedAttachment{
			LinkDescriptor: descriptor,
			Dest:           filepath.Join(attachmentDir, descriptor.ExportName),
		})
	}

	if e.Diff {
		previous, err := os.ReadFile(result.OutputPath)
		if err != nil && !os.IsNotExist(err) {
			return nil, err
		}
		result.Patch = godiffpatch.GeneratePatch(filepath.Base(result.OutputPath), string(previous), result.Content)
	}

	if e.config.DryRun {
		logger.Infof("Dry run: skip writing %q", result.OutputPath)
		return result, nil
	}

	if err := e.vault.WriteFile(result.OutputPath, []byte(result.Content)); err != nil {
		return nil, err
	}
	logger.Debugf("Wrote %q", result.OutputPath)

	if err := e.copyAttachments(ctx, notePath, result.Attachments, notifier); err != nil {
		return nil, err
	}
	if err := e.copyAssets(outputDir); err != nil {
		return nil, err
	}
	return result, nil
}

// absolute resolves a path template result against the vault root.
func (e *Exporter) absolute(dir string) string {
	if filepath.IsAbs(dir) {
		return filepath.Clean(dir)
	}
	return filepath.Join(e.vault.Root(), dir)
}

// claim reserves an output file for a note.
func (e *Exporter) claim(dest, notePath string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if owner, ok := e.claimed[dest]; ok && owner != notePath {
		return fmt.Errorf("%w: %q is already exported by %q", ErrOutputConflict, dest, owner)
	}
	e.claimed[dest] = notePath
	return nil
}

// reserveAttachment returns false when the destination is used by another attachment.
// Notes sharing an attachment directory get distinct names for distinct files.
func (e *Exporter) reserveAttachment(dest, sourcePath string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if owner, ok := e.attachments[dest]; ok && owner != sourcePath {
		return false
	}
	if _, ok := e.claimed[dest]; ok {
		return false
	}
	e.attachments[dest] = sourcePath
	return true
}

// claimAttachment returns false when the attachment was already copied during this export.
func (e *Exporter) claimAttachment(dest string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.copied[dest] {
		return false
	}
	e.copied[dest] = true
	return true
}

// copyAttachments copies the attachments one by one.
// A failing attachment is reported and does not stop the others.
func (e *Exporter) copyAttachments(ctx context.Context, notePath string, attachments []*ExportedAttachment, notifier Notifier) error {
	for _, attachment := range attachments {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !e.claimAttachment(attachment.Dest) {
			attachment.Skipped = true
			continue
		}
		attachment.Err = e.copyAttachment(ctx, attachment)
		if attachment.Err != nil {
			notifier.Warn(fmt.Sprintf("failed to export %s: %v", attachment.SourcePath, attachment.Err))
			continue
		}
		CurrentLogger().Debugf("Copied %s", attachment)
	}
	return nil
}

func (e *Exporter) copyAttachment(ctx context.Context, attachment *ExportedAttachment) error {
	src, err := e.vault.Abs(attachment.SourcePath)
	if err != nil {
		return err
	}
	if attachment.Type != resolve.Diagram {
		return e.vault.CopyFile(src, attachment.Dest)
	}

	exporter, err := e.diagramExporter()
	if err != nil {
		return err
	}
	if err := e.vault.MkdirAll(filepath.Dir(attachment.Dest)); err != nil {
		return err
	}
	if e.preset.DiagramType == "png" {
		return exporter.ExportToRaster(ctx, src, attachment.Dest, e.preset.DiagramScale)
	}
	return exporter.ExportToVector(ctx, src, attachment.Dest)
}

// copyAssets copies the assets directory of the preset once per export.
func (e *Exporter) copyAssets(outputDir string) error {
	if e.preset.AssetsDir == "" {
		return nil
	}
	e.assetsOnce.Do(func() {
		src, err := e.vault.Abs(e.preset.AssetsDir)
		if err != nil {
			e.assetsErr = err
			return
		}
		e.assetsErr = e.vault.CopyTree(src, outputDir, func(rel string, dir bool) bool {
			return e.config.IgnoreFile.MustExcludeFile(path.Join(e.preset.AssetsDir, rel), dir)
		})
		if e.assetsErr == nil {
			CurrentLogger().Debugf("Copied assets %q to %q", e.preset.AssetsDir, outputDir)
		}
	})
	return e.assetsErr
}

/* Batch */

// ListNotes returns the notes under dir (relative to the vault) not excluded by .nteignore.
func (e *Exporter) ListNotes(dir string) ([]string, error) {
	return e.vault.List(dir, func(rel string, isDir bool) bool {
		if e.config.IgnoreFile.MustExcludeFile(rel, isDir) {
			return false
		}
		return isDir || e.config.SupportedNote(rel)
	})
}

// BatchCallback is called after each note, from the worker goroutine.
type BatchCallback func(notePath string, result *ExportResult, err error)

// ExportAll exports notes concurrently. A failing note does not stop the others:
// its error is passed to the callback and the batch continues.
// The returned error only reports a cancellation.
func (e *Exporter) ExportAll(ctx context.Context, notes []string, callback BatchCallback) ([]*ExportResult, error) {
	results := make([]*ExportResult, len(notes))

	g, gctx := errgroup.WithContext(ctx)
	parallel := e.config.Parallel
	if parallel <= 0 {
		parallel = 4
	}
	g.SetLimit(parallel)

	for i, notePath := range notes {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			result, err := e.Export(gctx, notePath)
			if errors.Is(err, context.Canceled) {
				return err
			}
			results[i] = result
			if callback != nil {
				callback(notePath, result, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, ctx.Err()
}

// Summary is a one-line description of an export result.
func (r *ExportResult) Summary() string {
	var failures int
	for _, attachment := range r.Attachments {
		if attachment.Err != nil {
			failures++
		}
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s => %s", r.NotePath, r.OutputPath))
	if len(r.Attachments) > 0 {
		sb.WriteString(fmt.Sprintf(" (%d attachment(s)", len(r.Attachments)))
		if failures > 0 {
			sb.WriteString(fmt.Sprintf(", %d failed", failures))
		}
		sb.WriteString(")")
	}
	return sb.String()
}
