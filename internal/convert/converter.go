package convert

import (
	"errors"
	"fmt"

	"github.com/julien-sobczak/the-noteexporter/internal/format"
	"github.com/julien-sobczak/the-noteexporter/internal/markdown"
	"github.com/julien-sobczak/the-noteexporter/internal/resolve"
	"github.com/yuin/goldmark/ast"
)

// ErrUnsupportedFormat is returned when converting to an unknown format.
var ErrUnsupportedFormat = errors.New("unsupported format")

// Logger receives debugging traces.
type Logger interface {
	Debugf(format string, v ...any)
}

// Options configures a converter.
type Options struct {
	// Templates of embedded attachments (must contain ${attachmentFileName})
	ImageTemplate string
	VideoTemplate string
	AudioTemplate string
	// Directory of the attachments relative to the output file
	AttachmentPath string

	TagMappings []TagMapping

	Notifier resolve.Notifier
	Logger   Logger

	// Registry defaults to the built-in processors
	Registry *Registry
	// Processors are applied after the ones of the registry
	Processors []Processor
}

// Converter converts Markdown text to an output format.
type Converter struct {
	options    Options
	registry   *Registry
	processors []Processor

	// Active format
	format    format.Format
	tokenizer *Tokenizer
	pre       []markdown.Transformer
	post      []PostTransformer
}

func New(options Options) *Converter {
	registry := options.Registry
	if registry == nil {
		registry = DefaultRegistry()
	}
	c := &Converter{
		options:  options,
		registry: registry,
	}
	c.processors = append(c.processors, options.Processors...)
	for _, mapping := range options.TagMappings {
		c.processors = append(c.processors, tagMappingProcessor(mapping))
	}
	return c
}

// tagMappingProcessor remaps a custom HTML tag for the formats of the mapping.
func tagMappingProcessor(mapping TagMapping) Processor {
	return Processor{
		Name:    "tag-mapping " + mapping.String(),
		Formats: mapping.Formats,
		Setup: func(t *Tokenizer) {
			// Before the built-in <u> and <mark> transformers
			t.AddTransformer(newTagMappingTransformer(mapping), 890)
		},
	}
}

// WithProcessors appends instance processors. The next conversion reactivates the format.
func (c *Converter) WithProcessors(processors ...Processor) *Converter {
	c.processors = append(c.processors, processors...)
	c.tokenizer = nil
	return c
}

// Format returns the active format.
func (c *Converter) Format() format.Format {
	return c.format
}

// Processors returns the names of the active processors.
func (c *Converter) Processors() []string {
	var names []string
	for _, p := range c.allProcessors() {
		if p.AppliesTo(c.format) {
			names = append(names, p.Name)
		}
	}
	return names
}

func (c *Converter) allProcessors() []Processor {
	return append(c.registry.Processors(), c.processors...)
}

// Activate prepares the tokenizer and the processing chains of a format.
func (c *Converter) Activate(f format.Format) error {
	if !f.Supported() {
		return fmt.Errorf("%w %q", ErrUnsupportedFormat, f)
	}
	t := NewTokenizer()
	var pre []markdown.Transformer
	var post []PostTransformer
	for _, p := range c.allProcessors() {
		if !p.AppliesTo(f) {
			continue
		}
		if p.PreProcess != nil {
			pre = append(pre, p.PreProcess)
		}
		if p.Setup != nil {
			p.Setup(t)
		}
		if p.PostProcess != nil {
			post = append(post, p.PostProcess)
		}
	}
	c.format = f
	c.tokenizer = t
	c.pre = pre
	c.post = post
	c.debugf("Activated format %s", f)
	return nil
}

// Convert converts a Markdown text. An empty format keeps the active one.
// Wikilinks are rendered as text as no vault is available.
func (c *Converter) Convert(text string, f format.Format) (string, error) {
	return c.convert(text, f, &parseState{})
}

func (c *Converter) convert(text string, f format.Format, state *parseState) (string, error) {
	if f == "" {
		f = c.format
	}
	if f == "" {
		return "", fmt.Errorf("%w: no format", ErrUnsupportedFormat)
	}
	if f != c.format || c.tokenizer == nil {
		if err := c.Activate(f); err != nil {
			return "", err
		}
	}

	doc, err := markdown.Document(text).Transform(c.pre...)
	if err != nil {
		return "", fmt.Errorf("pre-processing failed: %w", err)
	}

	state.warn = c.warn
	state.debug = c.debugf
	state.embed = func(content []byte, stack *resolve.FileStack) (ast.Node, []byte) {
		embedded, err := markdown.Document(content).Transform(c.pre...)
		if err != nil {
			c.warn(fmt.Sprintf("%s: %v", stack.Current(), err))
			embedded = markdown.Document(content)
		}
		nested := *state
		nested.stack = stack
		source := []byte(embedded)
		return c.tokenizer.Parse(source, &nested), source
	}

	source := []byte(doc)
	root := c.tokenizer.Parse(source, state)
	result := newRenderer(c.format, c.tokenizer, &c.options, source, root).Render(root)

	for _, fn := range c.post {
		result, err = fn(result, c)
		if err != nil {
			return "", fmt.Errorf("post-processing failed: %w", err)
		}
	}
	return result, nil
}

func (c *Converter) warn(msg string) {
	if c.options.Notifier != nil {
		c.options.Notifier.Warn(msg)
	}
}

func (c *Converter) debugf(format string, v ...any) {
	if c.options.Logger != nil {
		c.options.Logger.Debugf(format, v...)
	}
}
