package convert

import (
	"errors"
	"fmt"
	"sync"

	"github.com/julien-sobczak/the-noteexporter/internal/format"
	"github.com/julien-sobczak/the-noteexporter/internal/markdown"
)

// PostTransformer transforms the rendered text.
type PostTransformer func(text string, c *Converter) (string, error)

// Processor contributes to the conversion of some formats.
type Processor struct {
	Name string
	// Formats the processor applies to (all formats when empty)
	Formats []format.Format

	// PreProcess transforms the Markdown text before parsing.
	PreProcess markdown.Transformer
	// Setup registers parsers and render rules on a new tokenizer.
	Setup func(t *Tokenizer)
	// PostProcess transforms the rendered text.
	PostProcess PostTransformer
}

// AppliesTo reports if the processor must be activated for the format.
func (p Processor) AppliesTo(f format.Format) bool {
	return f.In(p.Formats)
}

func (p Processor) String() string {
	return fmt.Sprintf("processor %q", p.Name)
}

// ErrRegistryFrozen is returned when registering a processor after initialization.
var ErrRegistryFrozen = errors.New("processor registry is frozen")

// Registry is the ordered list of processors.
// Processors are applied in registration order.
type Registry struct {
	mu         sync.RWMutex
	processors []Processor
	frozen     bool
}

func NewRegistry() *Registry {
	return &Registry{}
}

// Register appends a processor.
func (r *Registry) Register(p Processor) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen {
		return fmt.Errorf("%w: cannot register %q", ErrRegistryFrozen, p.Name)
	}
	if p.Name == "" {
		return errors.New("processor name is required")
	}
	for _, existing := range r.processors {
		if existing.Name == p.Name {
			return fmt.Errorf("processor %q already registered", p.Name)
		}
	}
	r.processors = append(r.processors, p)
	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(processors ...Processor) *Registry {
	for _, p := range processors {
		if err := r.Register(p); err != nil {
			panic(err)
		}
	}
	return r
}

// Freeze makes the registry read-only.
func (r *Registry) Freeze() *Registry {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frozen = true
	return r
}

// Processors returns the registered processors in order.
func (r *Registry) Processors() []Processor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Processor{}, r.processors...)
}

// Names returns the names of the processors applying to a format.
func (r *Registry) Names(f format.Format) []string {
	var names []string
	for _, p := range r.Processors() {
		if p.AppliesTo(f) {
			names = append(names, p.Name)
		}
	}
	return names
}
