package text

import (
	"path/filepath"
	"strings"
)

// SquashBlankLines replaces successive blank lines by a single empty one.
func SquashBlankLines(text string) string {
	var sb strings.Builder
	previousBlank := false
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		blank := IsBlank(line)
		if blank && previousBlank {
			continue
		}
		previousBlank = blank
		if blank {
			line = ""
		}
		sb.WriteString(line)
		if i < len(lines)-1 {
			sb.WriteRune('\n')
		}
	}
	return sb.String()
}

// IsBlank returns if a text is blank.
func IsBlank(text string) bool {
	return len(strings.TrimSpace(text)) == 0
}

// TrimExtension removes the extension from a file name or file path.
func TrimExtension(path string) string {
	path = strings.TrimSuffix(path, string(filepath.Separator))
	return strings.TrimSuffix(path, filepath.Ext(path))
}

// PrefixLines prepends prefix to every line. Blank lines receive the prefix
// without its trailing spaces.
func PrefixLines(text, prefix string) string {
	return PrefixLinesFirst(text, prefix, prefix)
}

// PrefixLinesFirst is PrefixLines with a dedicated prefix for the first line
// (ex: list items "- " followed by "  ").
func PrefixLinesFirst(text, first, others string) string {
	text = strings.TrimRight(text, "\n")
	var sb strings.Builder
	for i, line := range strings.Split(text, "\n") {
		prefix := others
		if i == 0 {
			prefix = first
		}
		if IsBlank(line) {
			sb.WriteString(strings.TrimRight(prefix, " "))
		} else {
			sb.WriteString(prefix)
			sb.WriteString(line)
		}
		sb.WriteRune('\n')
	}
	return sb.String()
}

// SplitAround splits a template around the first occurrence of a token.
// The boolean reports whether the token was found.
func SplitAround(template, token string) (before, after string, found bool) {
	before, after, found = strings.Cut(template, token)
	return
}

// EnsureTrailingNewline appends a newline unless the text already ends with one.
func EnsureTrailingNewline(text string) string {
	if text == "" || strings.HasSuffix(text, "\n") {
		return text
	}
	return text + "\n"
}
