package markdown

import (
	"regexp"
	"strings"

	"github.com/julien-sobczak/the-noteexporter/pkg/text"
)

// Transformer applies changes on a Markdown document
type Transformer func(document Document) (Document, error)

// Transform applies transformers successively to create a new Markdown document
func (m Document) Transform(transformers ...Transformer) (Document, error) {
	result := m
	for _, transformer := range transformers {
		resultTransformed, err := transformer(result)
		if err != nil {
			return m, err
		}
		result = resultTransformed
	}
	return result, nil
}

// MustTransform is similar to Transform but does not expect an error
func (m Document) MustTransform(transformers ...Transformer) Document {
	result, err := m.Transform(transformers...)
	if err != nil {
		panic(err)
	}
	return result
}

/*
 * Transformers
 */

var (
	regexObsidianComment   = regexp.MustCompile(`(?s)%%.*?%%`)
	regexUnofficialComment = regexp.MustCompile(`(?s)<!---.+?--->`)
	regexBlockID           = regexp.MustCompile(`[ \t]\^[A-Za-z0-9-]+[ \t]*$`)
)

// StripComments removes Obsidian comments (%%...%%) and Markdown unofficial comments (<!--- ... --->).
// Code blocks are left untouched.
func StripComments() Transformer {
	return mapOutsideCodeBlocks(func(chunk string) string {
		chunk = regexObsidianComment.ReplaceAllString(chunk, "")
		return regexUnofficialComment.ReplaceAllString(chunk, "")
	})
}

// StripBlockIDs removes Obsidian block identifiers ("Some text ^block-id").
func StripBlockIDs() Transformer {
	return mapOutsideCodeBlocks(func(chunk string) string {
		lines := strings.Split(chunk, "\n")
		for i, line := range lines {
			lines[i] = regexBlockID.ReplaceAllString(line, "")
		}
		return strings.Join(lines, "\n")
	})
}

// StripFrontMatter removes the front matter at the top of a note.
func StripFrontMatter() Transformer {
	return func(document Document) (Document, error) {
		return ParseContent("", []byte(document)).Body, nil
	}
}

// StripCodeBlocks removes code blocks from a Markdown document.
// Lines are blanked, not removed, so that line numbers are preserved.
func StripCodeBlocks() Transformer {
	return func(document Document) (Document, error) {
		lines := document.Lines()
		insideCodeBlock := false
		for i, line := range lines {
			if isFence(line) {
				insideCodeBlock = !insideCodeBlock
				lines[i] = ""
				continue
			}
			if insideCodeBlock {
				lines[i] = ""
			}
		}
		return Document(strings.Join(lines, "\n")), nil
	}
}

// SquashBlankLines removes blank lines when multiple successive blank lines are present.
// Code blocks are left untouched.
func SquashBlankLines() Transformer {
	return mapOutsideCodeBlocks(text.SquashBlankLines)
}

// mapOutsideCodeBlocks applies fn on every chunk of text found between fenced code blocks.
func mapOutsideCodeBlocks(fn func(chunk string) string) Transformer {
	return func(document Document) (Document, error) {
		var result []string
		var chunk []string
		insideCodeBlock := false

		flush := func() {
			if len(chunk) > 0 {
				result = append(result, fn(strings.Join(chunk, "\n")))
				chunk = nil
			}
		}

		for _, line := range document.Lines() {
			if isFence(line) {
				if !insideCodeBlock {
					flush()
				}
				insideCodeBlock = !insideCodeBlock
				result = append(result, line)
				continue
			}
			if insideCodeBlock {
				result = append(result, line)
				continue
			}
			chunk = append(chunk, line)
		}
		flush()

		return Document(strings.Join(result, "\n")), nil
	}
}
