package markdown

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/julien-sobczak/the-noteexporter/pkg/text"
)

// Regex to match wikilinks
const regexWikilinkRaw = `\[\[([^\[\]|]+?)(?:\|([^\[\]]*?))?\]\]`

var regexWikilink = regexp.MustCompile(`(!?)` + regexWikilinkRaw)

// Wikilink is an internal link.
// See https://help.obsidian.md/Linking+notes+and+files/Internal+links
type Wikilink struct {
	Link     string
	Text     string
	Embedded bool
	Line     int
}

// NewWikilink instantiates a new wikilink.
func NewWikilink(link string) (*Wikilink, error) {
	match := regexWikilink.FindStringSubmatch(link)
	if match == nil {
		return nil, fmt.Errorf("invalid wikilink %q", link)
	}
	return &Wikilink{
		Link:     match[2],
		Text:     match[3],
		Embedded: match[1] == "!",
	}, nil
}

// Anchored indicates if a link points to a section in the current file. (ex: [[#A section below]])
func (w *Wikilink) Anchored() bool {
	return strings.HasPrefix(w.Link, "#")
}

// Path returns the link without the optional fragment.
func (w *Wikilink) Path() string {
	path, _, _ := strings.Cut(w.Link, "#")
	return path
}

// Section returns the fragment part of the link.
func (w *Wikilink) Section() string {
	_, section, _ := strings.Cut(w.Link, "#")
	return section
}

// Piped indicates if a text is present to describe the link. (ex: [[link|A text]])
func (w *Wikilink) Piped() bool {
	return w.Text != ""
}

// ContainsExtension tests if the extension is specified in the link.
func (w *Wikilink) ContainsExtension() bool {
	return text.TrimExtension(w.Path()) != w.Path()
}

func (w Wikilink) String() string {
	prefix := ""
	if w.Embedded {
		prefix = "!"
	}
	if w.Piped() {
		return fmt.Sprintf("%s[[%s|%s]]", prefix, w.Link, w.Text)
	}
	return fmt.Sprintf("%s[[%s]]", prefix, w.Link)
}

/*
 * Document
 */

// Wikilinks searches for wikilinks inside a Markdown document, embedded or not.
func (m Document) Wikilinks() []Wikilink {
	// Ignore links inside code blocks (ex: a sample Markdown code block)
	text := m.MustTransform(StripCodeBlocks()).String()

	var results []Wikilink
	for i, line := range strings.Split(text, "\n") {
		for _, match := range regexWikilink.FindAllStringSubmatch(line, -1) {
			results = append(results, Wikilink{
				Link:     match[2],
				Text:     match[3],
				Embedded: match[1] == "!",
				Line:     i + 1,
			})
		}
	}
	return results
}

// EmbeddedWikilinks returns only the wikilinks prefixed by "!".
func (m Document) EmbeddedWikilinks() []Wikilink {
	var results []Wikilink
	for _, link := range m.Wikilinks() {
		if link.Embedded {
			results = append(results, link)
		}
	}
	return results
}
