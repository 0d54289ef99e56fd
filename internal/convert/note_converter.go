package convert

import (
	"context"
	"fmt"

	"github.com/julien-sobczak/the-noteexporter/internal/format"
	"github.com/julien-sobczak/the-noteexporter/internal/placeholder"
	"github.com/julien-sobczak/the-noteexporter/internal/resolve"
	"github.com/julien-sobczak/the-noteexporter/internal/vault"
)

// NoteConverter converts a note of a vault.
// Links are resolved relative to the note and embedded notes are inlined.
type NoteConverter struct {
	*Converter

	entry          string
	vault          vault.Vault
	meta           vault.Metadata
	resolveOptions resolve.Options
	placeholders   *placeholder.Resolver

	resolver *resolve.Resolver
}

// NewNoteConverter creates a converter for the note entry (relative to the vault).
func NewNoteConverter(entry string, v vault.Vault, meta vault.Metadata, placeholders *placeholder.Resolver, resolveOptions resolve.Options, options Options) *NoteConverter {
	return &NoteConverter{
		Converter:      New(options),
		entry:          entry,
		vault:          v,
		meta:           meta,
		resolveOptions: resolveOptions,
		placeholders:   placeholders,
	}
}

// Entry returns the path of the converted note.
func (c *NoteConverter) Entry() string {
	return c.entry
}

// Convert reads the embedded notes then converts the text of the entry note.
// A new resolver is used for each conversion.
func (c *NoteConverter) Convert(ctx context.Context, text string, f format.Format) (string, error) {
	if f == "" {
		f = c.format
	}
	if !f.Supported() {
		return "", fmt.Errorf("%w %q", ErrUnsupportedFormat, f)
	}
	options := c.resolveOptions
	options.Format = f
	c.resolver = resolve.New(c.vault, c.meta, c.options.Notifier, options)
	if err := c.resolver.ResolveEmbeds(ctx, c.entry); err != nil {
		return "", err
	}
	defer c.resolver.Finish()

	c.debugf("Converting %q to %s", c.entry, f)
	return c.convert(text, f, &parseState{
		resolver: c.resolver,
		stack:    resolve.NewFileStack(c.entry),
	})
}

// Resolver returns the resolver of the last conversion.
func (c *NoteConverter) Resolver() *resolve.Resolver {
	return c.resolver
}

// LinkList returns the attachments found during the last conversion.
func (c *NoteConverter) LinkList() []resolve.LinkDescriptor {
	if c.resolver == nil {
		return nil
	}
	return c.resolver.LinkList()
}

// ReplacePlaceholders substitutes the placeholders of a template.
func (c *NoteConverter) ReplacePlaceholders(template string, content ...string) string {
	return c.placeholders.Replace(template, content...)
}
