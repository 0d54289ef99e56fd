package markdown

import (
	"regexp"
	"strings"

	"github.com/julien-sobczak/the-noteexporter/pkg/text"
)

// Document represents a Markdown document (can be a whole file, or just a snippet)
type Document string

// Null object
var EmptyDocument = Document("")

// Lines returns the lines present in the Markdown document
func (m Document) Lines() []string {
	return strings.Split(string(m), "\n")
}

func (m Document) IsBlank() bool {
	return text.IsBlank(string(m))
}

func (m Document) String() string {
	return string(m)
}

// TrimSpace removes spaces at the start and end of a markdown document.
func (m Document) TrimSpace() Document {
	return Document(strings.TrimSpace(string(m)))
}

// ExtractLines returns the lines between start and end (1-based, inclusive).
// A negative end means until the end of the document.
func (m Document) ExtractLines(start, end int) Document {
	lines := m.Lines()
	if end < 0 || end > len(lines) {
		end = len(lines)
	}
	if start < 1 {
		start = 1
	}
	if start > end {
		return EmptyDocument
	}
	return Document(strings.Join(lines[start-1:end], "\n"))
}

var regexHeading = regexp.MustCompile(`^(#{1,6})[ \t]+(.*?)[ \t#]*$`)

// IsHeading returns if a given line is a Markdown ATX heading, its text and its level.
func IsHeading(line string) (bool, string, int) {
	match := regexHeading.FindStringSubmatch(line)
	if match == nil {
		return false, "", 0
	}
	return true, match[2], len(match[1])
}

// isFence returns if the line opens or closes a fenced code block.
func isFence(line string) bool {
	trimmed := strings.TrimLeft(line, " ")
	return strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~")
}
