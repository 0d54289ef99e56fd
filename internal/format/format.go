// Package format lists the supported output formats.
package format

import (
	"fmt"
	"strings"

	"golang.org/x/exp/slices"
)

// Format identifies an output format.
type Format string

const (
	// Typst typesetting markup
	Typst Format = "typst"
	// MyST scientific-publishing Markdown
	MyST Format = "myst"
	// HMD is Markdown using HTML tags for everything Markdown cannot express
	HMD Format = "hmd"
	// Plain is Markdown without any Obsidian extension
	Plain Format = "plain"
)

// All lists the supported formats in display order.
var All = []Format{Typst, MyST, HMD, Plain}

type capabilities struct {
	extension string
	media     bool // <video>/<audio> can be referenced
}

var registry = map[Format]capabilities{
	Typst: {extension: ".typ"},
	MyST:  {extension: ".md"},
	HMD:   {extension: ".md", media: true},
	Plain: {extension: ".md"},
}

// Parse validates a format identifier (case-insensitive).
func Parse(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if !f.Supported() {
		return "", fmt.Errorf("unsupported format %q (supported: %s)", s, strings.Join(Names(), ", "))
	}
	return f, nil
}

// Names returns the identifiers of all supported formats.
func Names() []string {
	var names []string
	for _, f := range All {
		names = append(names, string(f))
	}
	return names
}

func (f Format) Supported() bool {
	_, ok := registry[f]
	return ok
}

// Extension returns the extension of exported files, dot included.
func (f Format) Extension() string {
	return registry[f].extension
}

// SupportsMedia reports if video and audio can be referenced without extra processing.
func (f Format) SupportsMedia() bool {
	return registry[f].media
}

// In reports if the format is present in the list.
// An empty list matches every format.
func (f Format) In(formats []Format) bool {
	return len(formats) == 0 || slices.Contains(formats, f)
}

func (f Format) String() string {
	return string(f)
}
