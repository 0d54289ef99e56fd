// Package placeholder substitutes the ${...} tokens used in preset templates
// (output directory, output file name, content wrapper, attachment references).
package placeholder

import (
	"encoding/json"
	"fmt"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/itchyny/gojq"
	"github.com/itchyny/timefmt-go"
	"github.com/julien-sobczak/the-noteexporter/pkg/clock"
	"github.com/julien-sobczak/the-noteexporter/pkg/text"
)

// Tokens recognized in templates.
const (
	VaultDir           = "${vaultDir}"
	NoteDir            = "${noteDir}"
	NoteName           = "${noteName}"
	Date               = "${date}"
	PresetName         = "${presetName}"
	OutputDir          = "${outputDir}"
	Content            = "${content}"
	AttachmentFileName = "${attachmentFileName}"
	TagContent         = "${tagContent}"
)

// DefaultDateLayout is the strftime layout used by ${date}.
const DefaultDateLayout = "%Y-%m-%d"

// regexPlaceholder matches ${name} and ${name:argument}.
var regexPlaceholder = regexp.MustCompile(`\$\{([A-Za-z]+)(?::([^}]*))?\}`)

// Context describes the note being exported.
type Context struct {
	VaultDir   string // Absolute path
	NotePath   string // Relative to the vault
	PresetName string
	Metadata   map[string]any // Front matter of the note

	// Templates of dependent placeholders
	OutputDir string
}

// dependent is a placeholder defined by a template using other placeholders.
type dependent struct {
	name     string
	template string
}

// Resolver replaces placeholders for a single note.
// Values are computed once so that ${date} stays stable during an export.
type Resolver struct {
	values map[string]string
	now    time.Time

	metadata any
	warn     func(msg string)
}

// Option configures a Resolver.
type Option func(r *Resolver)

// WithWarn reports recoverable problems (ex: invalid jq expression).
func WithWarn(fn func(msg string)) Option {
	return func(r *Resolver) {
		r.warn = fn
	}
}

// NewResolver resolves independent placeholders first,
// then each dependent placeholder in declaration order.
func NewResolver(ctx Context, opts ...Option) *Resolver {
	r := &Resolver{
		values: make(map[string]string),
		now:    clock.Now(),
		warn:   func(string) {},
	}
	for _, opt := range opts {
		opt(r)
	}
	r.metadata = normalizeMetadata(ctx.Metadata)

	noteDir := path.Dir(ctx.NotePath)
	r.values["vaultDir"] = ctx.VaultDir
	r.values["noteDir"] = filepath.Join(ctx.VaultDir, filepath.FromSlash(noteDir))
	r.values["noteName"] = text.TrimExtension(path.Base(ctx.NotePath))
	r.values["presetName"] = ctx.PresetName

	outputDir := ctx.OutputDir
	if outputDir == "" {
		outputDir = NoteDir
	}
	dependents := []dependent{
		{name: "outputDir", template: outputDir},
	}
	for i, d := range dependents {
		available := make(map[string]bool)
		for _, previous := range dependents[:i] {
			available[previous.name] = true
		}
		r.values[d.name] = r.substitute(d.template, func(name string) bool {
			if r.isDependent(name, dependents) && !available[name] {
				r.warn(fmt.Sprintf("placeholder ${%s} cannot be used to define ${%s}", name, d.name))
				return false
			}
			return true
		})
	}
	return r
}

func (r *Resolver) isDependent(name string, dependents []dependent) bool {
	for _, d := range dependents {
		if d.name == name {
			return true
		}
	}
	return false
}

// Value returns the resolved value of a named placeholder (ex: "outputDir").
func (r *Resolver) Value(name string) string {
	return r.values[name]
}

// Replace substitutes all placeholders in the template.
// When content is given, it replaces ${content}, or is appended after a newline
// if the template does not reference it.
func (r *Resolver) Replace(template string, content ...string) string {
	result := r.substitute(template, func(string) bool { return true })
	if len(content) == 0 {
		return result
	}
	body := strings.Join(content, "")
	if before, after, found := text.SplitAround(result, Content); found {
		return before + body + after
	}
	return result + "\n" + body
}

// substitute replaces known placeholders in a single pass.
// Substituted values are never scanned again.
func (r *Resolver) substitute(template string, allowed func(name string) bool) string {
	return regexPlaceholder.ReplaceAllStringFunc(template, func(match string) string {
		groups := regexPlaceholder.FindStringSubmatch(match)
		name, argument := groups[1], groups[2]
		switch name {
		case "date":
			layout := argument
			if layout == "" {
				layout = DefaultDateLayout
			}
			return timefmt.Format(r.now, layout)
		case "metadata":
			return r.query(argument)
		}
		if !allowed(name) {
			return ""
		}
		value, ok := r.values[name]
		if !ok {
			// Not a placeholder known at this stage (ex: ${content})
			return match
		}
		return value
	})
}

// query evaluates a jq expression over the note front matter.
func (r *Resolver) query(expr string) string {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		r.warn("missing jq expression in ${metadata:...}")
		return ""
	}
	if !strings.HasPrefix(expr, ".") {
		expr = "." + expr
	}
	query, err := gojq.Parse(expr)
	if err != nil {
		r.warn(fmt.Sprintf("invalid jq expression %q: %v", expr, err))
		return ""
	}
	var values []string
	iter := query.Run(r.metadata)
	for {
		v, ok := iter.Next()
		if !ok {
			break
		}
		if err, ok := v.(error); ok {
			r.warn(fmt.Sprintf("jq expression %q failed: %v", expr, err))
			return ""
		}
		values = append(values, stringify(v))
	}
	return strings.Join(values, ", ")
}

func stringify(v any) string {
	switch typed := v.(type) {
	case nil:
		return ""
	case string:
		return typed
	case []any:
		var values []string
		for _, item := range typed {
			values = append(values, stringify(item))
		}
		return strings.Join(values, ", ")
	case map[string]any:
		data, err := json.Marshal(typed)
		if err != nil {
			return ""
		}
		return string(data)
	default:
		return fmt.Sprint(typed)
	}
}

// normalizeMetadata converts YAML values to the types supported by gojq.
func normalizeMetadata(v any) any {
	switch typed := v.(type) {
	case nil:
		return map[string]any{}
	case map[string]any:
		result := make(map[string]any, len(typed))
		for key, value := range typed {
			result[key] = normalizeValue(value)
		}
		return result
	default:
		return normalizeValue(typed)
	}
}

func normalizeValue(v any) any {
	switch typed := v.(type) {
	case time.Time:
		if typed.Hour() == 0 && typed.Minute() == 0 && typed.Second() == 0 {
			return typed.Format("2006-01-02")
		}
		return typed.Format(time.RFC3339)
	case map[string]any:
		return normalizeMetadata(typed)
	case []any:
		result := make([]any, len(typed))
		for i, item := range typed {
			result[i] = normalizeValue(item)
		}
		return result
	case int64:
		return int(typed)
	case float32:
		return float64(typed)
	default:
		return typed
	}
}

// ReplaceAttachment substitutes ${attachmentFileName} in a reference template.
// The template must contain the token.
func ReplaceAttachment(template, fileName string) (string, bool) {
	return replaceRequired(template, AttachmentFileName, fileName)
}

// ReplaceTag substitutes ${tagContent} in a HTML tag template.
// The template must contain the token.
func ReplaceTag(template, content string) (string, bool) {
	return replaceRequired(template, TagContent, content)
}

func replaceRequired(template, token, value string) (string, bool) {
	if !strings.Contains(template, token) {
		return "", false
	}
	return strings.ReplaceAll(template, token, value), true
}
