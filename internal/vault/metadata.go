package vault

import (
	"fmt"
	"os"
	"path"
	"strings"
	"time"

	"github.com/julien-sobczak/the-noteexporter/internal/markdown"
	"golang.org/x/exp/slices"
)

// Metadata is the note metadata service (the equivalent of the Obsidian metadata cache).
type Metadata interface {
	// ResolveLinkTarget returns the vault-relative path of the file a link points to.
	ResolveLinkTarget(raw, sourcePath string) (string, bool)
	GetEmbeds(notePath string) ([]Embed, error)
	GetFrontmatter(notePath string) (map[string]any, error)
	GetHeadingIndex(notePath string) ([]markdown.Heading, error)
}

var _ Metadata = (*FS)(nil)

// Embed is an embedded link ("![[link]]") found in a note.
type Embed struct {
	Link string // Without the "!" and the brackets, alias excluded
	Line int
}

type cachedNote struct {
	modTime time.Time
	file    *markdown.File
}

// Note returns the parsed note. Parsed notes are cached until the file changes.
func (f *FS) Note(rel string) (*markdown.File, error) {
	abs, err := f.Abs(rel)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(abs)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, rel)
	}
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	cached, ok := f.notes[rel]
	f.mu.Unlock()
	if ok && cached.modTime.Equal(info.ModTime()) {
		return cached.file, nil
	}

	file, err := markdown.ParseFile(abs, rel)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	f.notes[rel] = &cachedNote{modTime: info.ModTime(), file: file}
	f.mu.Unlock()
	return file, nil
}

func (f *FS) GetEmbeds(notePath string) ([]Embed, error) {
	file, err := f.Note(notePath)
	if err != nil {
		return nil, err
	}
	var embeds []Embed
	for _, link := range file.Body.EmbeddedWikilinks() {
		embeds = append(embeds, Embed{
			Link: link.Link,
			Line: link.Line + file.BodyLine - 1,
		})
	}
	return embeds, nil
}

func (f *FS) GetFrontmatter(notePath string) (map[string]any, error) {
	file, err := f.Note(notePath)
	if err != nil {
		return nil, err
	}
	frontMatter, err := file.FrontMatter.AsMap()
	if err != nil {
		return nil, fmt.Errorf("invalid front matter in %q: %w", notePath, err)
	}
	return frontMatter, nil
}

func (f *FS) GetHeadingIndex(notePath string) ([]markdown.Heading, error) {
	file, err := f.Note(notePath)
	if err != nil {
		return nil, err
	}
	return file.Headings(), nil
}

// ResolveLinkTarget follows the Obsidian resolution rules:
//   - an empty path ("#Heading") targets the source note,
//   - the link is tried as a vault-relative path, then relative to the source note,
//   - otherwise the shortest path ending with the link wins.
//
// The extension ".md" is optional for notes.
func (f *FS) ResolveLinkTarget(raw, sourcePath string) (string, bool) {
	target, _, _ := strings.Cut(raw, "|")
	target, _, _ = strings.Cut(target, "#")
	target = strings.TrimSpace(target)
	if target == "" {
		return sourcePath, sourcePath != ""
	}
	target = strings.TrimPrefix(path.Clean("/"+target), "/")

	candidates := []string{target}
	if path.Ext(target) != ".md" {
		candidates = append(candidates, target+".md")
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.loadIndex(); err != nil {
		return "", false
	}

	for _, candidate := range candidates {
		if rel, ok := f.paths[normalize(candidate)]; ok {
			return rel, true
		}
	}
	if sourcePath != "" {
		dir := path.Dir(sourcePath)
		for _, candidate := range candidates {
			if rel, ok := f.paths[normalize(path.Join(dir, candidate))]; ok {
				return rel, true
			}
		}
	}
	for _, candidate := range candidates {
		key := normalize(candidate)
		var matches []string
		for _, rel := range f.index[normalize(path.Base(candidate))] {
			if strings.HasSuffix(normalize(rel), "/"+key) {
				matches = append(matches, rel)
			}
		}
		if len(matches) == 0 {
			continue
		}
		slices.SortFunc(matches, func(a, b string) int {
			if len(a) != len(b) {
				return len(a) - len(b)
			}
			return strings.Compare(a, b)
		})
		return matches[0], true
	}
	return "", false
}
