// Package resolve resolves wikilinks: embedded notes, attachments and diagrams.
//
// A Resolver is used for a single conversion in two phases.
// ResolveEmbeds reads every note reachable through embeds (the only phase doing I/O),
// then ParseLink is called synchronously by the tokenizer for each wikilink.
// A Resolver is not safe for concurrent use.
package resolve

import (
	"context"
	"fmt"
	"path"
	"strconv"
	"strings"

	"github.com/julien-sobczak/the-noteexporter/internal/format"
	"github.com/julien-sobczak/the-noteexporter/internal/markdown"
	"github.com/julien-sobczak/the-noteexporter/internal/medias"
	"github.com/julien-sobczak/the-noteexporter/internal/vault"
	"github.com/julien-sobczak/the-noteexporter/pkg/oid"
)

// Notifier reports recoverable problems to the user.
type Notifier interface {
	Warn(msg string)
}

// State is the progress of a conversion.
type State int

const (
	Idle State = iota
	ResolvingEmbeds
	LinkParsing
	Done
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case ResolvingEmbeds:
		return "resolving-embeds"
	case LinkParsing:
		return "link-parsing"
	case Done:
		return "done"
	}
	return "State(" + strconv.Itoa(int(s)) + ")"
}

// Options are the preset settings relevant to link resolution.
type Options struct {
	Format            format.Format
	RecursiveEmbeds   bool
	RenameAttachments bool
	ProcessVideo      bool
	ProcessAudio      bool
	DiagramType       string // "png" or "svg"
	Rules             *RuleSet

	// ReserveName reports if an export name can be used for the attachment.
	// Used to share the names of an attachment directory between conversions.
	// All names are available when nil.
	ReserveName func(exportName, sourcePath string) bool
}

// NoteInfo is a note read during the resolution of embeds.
type NoteInfo struct {
	Path     string
	Content  []byte
	Body     markdown.Document // Front matter excluded
	Headings []markdown.Heading

	file *markdown.File
}

// Resolver resolves the links of one conversion.
type Resolver struct {
	vault    vault.Vault
	meta     vault.Metadata
	notifier Notifier
	options  Options

	state State

	notes    map[string]*NoteInfo
	diagrams map[string]bool

	descriptors map[string]*LinkDescriptor
	order       []string
	exportNames map[string]string // export name => source path
}

func New(v vault.Vault, meta vault.Metadata, notifier Notifier, options Options) *Resolver {
	if options.Rules == nil {
		options.Rules = DefaultRuleSet()
	}
	if options.DiagramType == "" {
		options.DiagramType = "svg"
	}
	r := &Resolver{
		vault:    v,
		meta:     meta,
		notifier: notifier,
		options:  options,
	}
	r.Reset()
	return r
}

// Reset forgets everything about the previous conversion.
func (r *Resolver) Reset() {
	r.state = Idle
	r.notes = make(map[string]*NoteInfo)
	r.diagrams = make(map[string]bool)
	r.descriptors = make(map[string]*LinkDescriptor)
	r.order = nil
	r.exportNames = make(map[string]string)
}

func (r *Resolver) State() State {
	return r.state
}

func (r *Resolver) Options() Options {
	return r.options
}

// Note returns a note read by ResolveEmbeds.
func (r *Resolver) Note(notePath string) (*NoteInfo, bool) {
	info, ok := r.notes[notePath]
	return info, ok
}

// IsDiagram reports if the note was identified as an Excalidraw drawing.
func (r *Resolver) IsDiagram(notePath string) bool {
	return r.diagrams[notePath]
}

// ResolveEmbeds reads the entry note and, depth-first, every note it embeds.
// Each note is read at most once, which also stops embed cycles.
func (r *Resolver) ResolveEmbeds(ctx context.Context, entry string) error {
	if r.state != Idle {
		return fmt.Errorf("resolve: cannot resolve embeds in state %s", r.state)
	}
	r.state = ResolvingEmbeds
	if err := r.resolveEmbedNoteInfo(ctx, entry, true); err != nil {
		r.state = Idle
		return err
	}
	r.state = LinkParsing
	return nil
}

func (r *Resolver) resolveEmbedNoteInfo(ctx context.Context, notePath string, entry bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, ok := r.notes[notePath]; ok {
		return nil
	}
	if r.diagrams[notePath] {
		return nil
	}

	content, err := r.vault.Read(notePath)
	if err != nil {
		if entry {
			return fmt.Errorf("resolve: read entry note: %w", err)
		}
		r.warn("unable to read embedded note %q: %v", notePath, err)
		return nil
	}
	file := markdown.ParseContent(notePath, content)
	if file.FrontMatter.IsDiagram() {
		r.diagrams[notePath] = true
		return nil
	}

	headings, err := r.meta.GetHeadingIndex(notePath)
	if err != nil {
		headings = file.Headings()
	}
	r.notes[notePath] = &NoteInfo{
		Path:     notePath,
		Content:  content,
		Body:     file.Body,
		Headings: headings,
		file:     file,
	}

	embeds, err := r.meta.GetEmbeds(notePath)
	if err != nil {
		r.warn("unable to list embeds of %q: %v", notePath, err)
		return nil
	}
	for _, embed := range embeds {
		target, ok := r.meta.ResolveLinkTarget(embed.Link, notePath)
		if !ok {
			continue // Reported when the link is parsed
		}
		if medias.DetectKind(target) != medias.KindNote {
			continue
		}
		if err := r.resolveEmbedNoteInfo(ctx, target, false); err != nil {
			return err
		}
	}
	return nil
}

// ParseLink classifies a wikilink found in the current note of the stack.
// raw is the text between the brackets.
func (r *Resolver) ParseLink(raw string, embedded bool, stack *FileStack) *Link {
	if r.state == Idle {
		r.state = LinkParsing
	}

	segments := strings.Split(raw, "|")
	link := newLink(raw, embedded, stack)

	rules := r.options.Rules
	rules.classify(r, link, segments[0], ExtName, NoExtName)
	for _, segment := range segments[1:] {
		if rules.classify(r, link, segment, Decorator, Alias) == Alias {
			break
		}
	}
	return link
}

// Finish marks the end of the conversion. Only LinkList remains meaningful.
func (r *Resolver) Finish() {
	r.state = Done
}

// LinkList returns the attachments to copy, in order of discovery.
func (r *Resolver) LinkList() []LinkDescriptor {
	var result []LinkDescriptor
	for _, sourcePath := range r.order {
		result = append(result, *r.descriptors[sourcePath])
	}
	return result
}

// locate resolves the target of the link relative to the note containing it.
func (r *Resolver) locate(link *Link) bool {
	target, ok := r.meta.ResolveLinkTarget(link.Target, link.stack.Current())
	if !ok {
		link.Kind = LinkMissing
		r.warn("%s: unresolved link [[%s]]", link.stack.Current(), link.Raw)
		return false
	}
	link.Path = target
	return true
}

func (r *Resolver) attach(link *Link, attachmentType AttachmentType) {
	if !r.locate(link) {
		return
	}
	link.Kind = LinkAttachment
	link.Type = attachmentType
	link.ExportName = r.register(link.Path, attachmentType)
}

func (r *Resolver) linkNote(link *Link) {
	if !r.locate(link) {
		return
	}
	link.Kind = LinkNote
	if !link.Embedded {
		return
	}
	if r.diagrams[link.Path] {
		link.Kind = LinkAttachment
		link.Type = Diagram
		link.ExportName = r.register(link.Path, Diagram)
		return
	}
	if !r.options.RecursiveEmbeds {
		return
	}
	if link.stack.ContainsSection(link.Path, link.Section) {
		r.warn("%s: embed cycle on %s, rendered as a link", link.stack.Current(), link.Path)
		return
	}
	info, ok := r.notes[link.Path]
	if !ok {
		return
	}

	link.Kind = LinkEmbed
	switch {
	case link.Section == "":
		link.Content = info.Body
	case strings.HasPrefix(link.Section, "^"):
		content, found := info.file.Block(strings.TrimPrefix(link.Section, "^"))
		if !found {
			r.warn("%s: block %q not found in %q", link.stack.Current(), link.Section, link.Path)
		}
		link.Content = content
	default:
		content, found := info.file.Section(link.Section)
		if !found {
			r.warn("%s: section %q not found in %q", link.stack.Current(), link.Section, link.Path)
		}
		link.Content = content
	}
}

// register returns the export name of an attachment.
// The first resolution of a source path wins.
func (r *Resolver) register(sourcePath string, attachmentType AttachmentType) string {
	if descriptor, ok := r.descriptors[sourcePath]; ok {
		return descriptor.ExportName
	}

	name := path.Base(sourcePath)
	if attachmentType == Diagram {
		name = strings.TrimSuffix(name, ".md")
		name = strings.TrimSuffix(name, ".excalidraw")
		name += "." + r.options.DiagramType
	}
	name = strings.ReplaceAll(name, " ", "_")
	ext := path.Ext(name)
	if r.options.RenameAttachments {
		name = strings.TrimSuffix(name, ext) + "-" + oid.New().String() + ext
	}
	// Two attachments with the same name in different directories
	base := strings.TrimSuffix(name, ext)
	for i := 2; ; i++ {
		if _, used := r.exportNames[name]; !used && r.reserveName(name, sourcePath) {
			break
		}
		name = fmt.Sprintf("%s_%d%s", base, i, ext)
	}

	r.exportNames[name] = sourcePath
	r.descriptors[sourcePath] = &LinkDescriptor{
		SourcePath: sourcePath,
		ExportName: name,
		Type:       attachmentType,
	}
	r.order = append(r.order, sourcePath)
	return name
}

func (r *Resolver) reserveName(name, sourcePath string) bool {
	if r.options.ReserveName == nil {
		return true
	}
	return r.options.ReserveName(name, sourcePath)
}

func (r *Resolver) warn(format string, args ...any) {
	if r.notifier != nil {
		r.notifier.Warn(fmt.Sprintf(format, args...))
	}
}
