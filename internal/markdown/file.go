package markdown

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/julien-sobczak/the-noteexporter/pkg/text"
)

// File is a Markdown note split into its front matter and its body.
type File struct {
	RelativePath string
	Content      []byte
	FrontMatter  FrontMatter
	Body         Document
	BodyLine     int // 1-based line of the body in the file
}

func (m File) String() string {
	return fmt.Sprintf("Markdown file %q", m.RelativePath)
}

// Heading is an entry of the heading index of a note.
type Heading struct {
	Text   string
	Level  int
	Line   int // 1-based line in the body
	Offset int // byte offset in the body
}

func (h Heading) String() string {
	return fmt.Sprintf("%s %s", strings.Repeat("#", h.Level), h.Text)
}

// ParseFile reads and parses a Markdown file.
func ParseFile(path, relativePath string) (*File, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseContent(relativePath, content), nil
}

// ParseContent parses Markdown content.
// The front matter must start on the first line to be recognized.
func ParseContent(relativePath string, content []byte) *File {
	raw := strings.ReplaceAll(string(content), "\r\n", "\n")
	lines := strings.Split(raw, "\n")

	file := &File{
		RelativePath: relativePath,
		Content:      content,
		Body:         Document(raw),
		BodyLine:     1,
	}

	if len(lines) == 0 || strings.TrimRight(lines[0], " \t") != "---" {
		return file
	}
	for i := 1; i < len(lines); i++ {
		if strings.TrimRight(lines[i], " \t") == "---" {
			file.FrontMatter = FrontMatter(strings.Join(lines[1:i], "\n"))
			file.Body = Document(strings.Join(lines[i+1:], "\n"))
			file.BodyLine = i + 2
			break
		}
	}
	return file
}

// Headings returns the heading index of the body.
// Headings inside fenced code blocks are ignored.
func (m *File) Headings() []Heading {
	var headings []Heading

	offset := 0
	insideCodeBlock := false
	for i, line := range m.Body.Lines() {
		if isFence(line) {
			insideCodeBlock = !insideCodeBlock
		} else if !insideCodeBlock {
			if ok, headingText, headingLevel := IsHeading(line); ok {
				headings = append(headings, Heading{
					Text:   headingText,
					Level:  headingLevel,
					Line:   i + 1,
					Offset: offset,
				})
			}
		}
		offset += len(line) + 1
	}

	return headings
}

// Section returns the content under the given heading (heading line included)
// until the next heading of the same or a higher level.
// Nested references (ex: "Chapter#Section") match on the last heading.
func (m *File) Section(heading string) (Document, bool) {
	if i := strings.LastIndex(heading, "#"); i >= 0 {
		heading = heading[i+1:]
	}
	heading = normalizeHeading(heading)

	headings := m.Headings()
	for i, candidate := range headings {
		if normalizeHeading(candidate.Text) != heading {
			continue
		}
		end := len(m.Body)
		for _, next := range headings[i+1:] {
			if next.Level <= candidate.Level {
				end = next.Offset
				break
			}
		}
		return Document(strings.TrimRight(string(m.Body)[candidate.Offset:end], "\n") + "\n"), true
	}
	return EmptyDocument, false
}

// Block returns the paragraph identified by a block identifier ("Text ^my-id").
func (m *File) Block(id string) (Document, bool) {
	marker := regexp.MustCompile(`[ \t]\^` + regexp.QuoteMeta(id) + `[ \t]*$`)

	lines := m.Body.Lines()
	for i, line := range lines {
		if !marker.MatchString(line) {
			continue
		}
		start := i
		for start > 0 && !text.IsBlank(lines[start-1]) {
			start--
		}
		block := append([]string{}, lines[start:i]...)
		block = append(block, marker.ReplaceAllString(line, ""))
		return Document(strings.Join(block, "\n") + "\n"), true
	}
	return EmptyDocument, false
}

func normalizeHeading(heading string) string {
	return strings.ToLower(strings.TrimSpace(heading))
}
