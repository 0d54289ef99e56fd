package resolve

import (
	"fmt"
	"strings"

	"github.com/julien-sobczak/the-noteexporter/internal/markdown"
)

// AttachmentType is the type of a file copied next to the exported note.
type AttachmentType string

const (
	Image   AttachmentType = "image"
	Video   AttachmentType = "video"
	Audio   AttachmentType = "audio"
	Diagram AttachmentType = "excalidraw-diagram"
)

// LinkDescriptor describes an attachment to copy after the conversion.
type LinkDescriptor struct {
	SourcePath string // Relative to the vault, unique per conversion
	ExportName string
	Type       AttachmentType
}

func (d LinkDescriptor) String() string {
	return fmt.Sprintf("%s %s => %s", d.Type, d.SourcePath, d.ExportName)
}

// LinkKind tells the renderers what to output for a wikilink.
type LinkKind int

const (
	// LinkMissing is a link whose target does not exist.
	LinkMissing LinkKind = iota
	// LinkNote is a reference to a note (or a note embed rendered as a reference).
	LinkNote
	// LinkFile is a reference to a file that is not copied (ex: PDF).
	LinkFile
	// LinkEmbed is an embedded note whose content must be spliced.
	LinkEmbed
	// LinkAttachment is a media (or a diagram) copied with the export.
	LinkAttachment
	// LinkHidden is a media the output format cannot display.
	LinkHidden
)

var linkKindNames = map[LinkKind]string{
	LinkMissing:    "missing",
	LinkNote:       "note",
	LinkFile:       "file",
	LinkEmbed:      "embed",
	LinkAttachment: "attachment",
	LinkHidden:     "hidden",
}

func (k LinkKind) String() string {
	return linkKindNames[k]
}

// Link is a parsed wikilink ("[[target#section|decorator|alias]]").
type Link struct {
	Raw      string
	Embedded bool

	Target  string // Before "#"
	Section string // After "#" ("^id" for blocks)

	Kind LinkKind
	Path string // Resolved path relative to the vault

	Alias  string
	Width  int
	Height int

	// Attachments
	Type       AttachmentType
	ExportName string

	// Embedded notes
	Content markdown.Document

	stack *FileStack
}

// Source returns the note containing the link.
func (l *Link) Source() string {
	return l.stack.Current()
}

// Text returns the text to display for a non-embedded link.
func (l *Link) Text() string {
	if l.Alias != "" {
		return l.Alias
	}
	if l.Target == "" {
		return strings.TrimPrefix(l.Section, "^")
	}
	if l.Section != "" {
		return l.Target + " > " + strings.TrimPrefix(l.Section, "^")
	}
	return l.Target
}

func (l *Link) String() string {
	prefix := ""
	if l.Embedded {
		prefix = "!"
	}
	return fmt.Sprintf("%s[[%s]] (%s)", prefix, l.Raw, l.Kind)
}

func newLink(raw string, embedded bool, stack *FileStack) *Link {
	target, section, _ := strings.Cut(strings.Split(raw, "|")[0], "#")
	return &Link{
		Raw:      raw,
		Embedded: embedded,
		Target:   strings.TrimSpace(target),
		Section:  strings.TrimSpace(section),
		stack:    stack,
	}
}

// Unresolved parses a link without looking for its target.
// Used when converting text outside of a vault.
func Unresolved(raw string, embedded bool) *Link {
	link := newLink(raw, embedded, nil)
	link.Kind = LinkNote
	for _, segment := range strings.Split(raw, "|")[1:] {
		if regexSize.MatchString(segment) {
			applySize(link, segment)
			continue
		}
		link.Alias = strings.TrimSpace(segment)
		break
	}
	return link
}
