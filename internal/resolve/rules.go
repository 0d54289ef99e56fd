package resolve

import (
	"fmt"
	"path"
	"regexp"
	"strconv"
	"strings"

	"github.com/julien-sobczak/the-noteexporter/internal/format"
	"github.com/julien-sobczak/the-noteexporter/internal/medias"
)

// RuleKind classifies the pipe-delimited segments of a wikilink.
type RuleKind int

const (
	// ExtName rules recognize the first segment from its file extension.
	ExtName RuleKind = iota
	// NoExtName is the fallback rule for the first segment.
	NoExtName
	// Decorator rules recognize annotations in the following segments (ex: size).
	Decorator
	// Alias is the fallback rule for the following segments. It stops the parsing.
	Alias
)

func (k RuleKind) String() string {
	switch k {
	case ExtName:
		return "ext_name"
	case NoExtName:
		return "no_ext_name"
	case Decorator:
		return "decorator"
	case Alias:
		return "alias"
	}
	return fmt.Sprintf("RuleKind(%d)", int(k))
}

// catchAll reports if at most one rule of this kind can exist.
func (k RuleKind) catchAll() bool {
	return k == NoExtName || k == Alias
}

// Rule classifies a link segment.
type Rule struct {
	Name string
	Kind RuleKind
	// Match is ignored for catch-all rules.
	Match func(segment string) bool
	// Processors are filtered by the output format before being applied.
	Processors []RuleProcessor
}

// RuleProcessor updates the link for a subset of output formats.
type RuleProcessor struct {
	Formats []format.Format // Empty means all formats
	Apply   func(r *Resolver, link *Link, segment string)
}

func (r Rule) apply(resolver *Resolver, link *Link, segment string) {
	for _, processor := range r.Processors {
		if resolver.options.Format.In(processor.Formats) {
			processor.Apply(resolver, link, segment)
		}
	}
}

// RuleSet is the immutable list of rules used to parse links.
type RuleSet struct {
	byKind map[RuleKind][]Rule
}

// NewRuleSet validates the rules.
// A second catch-all rule of the same kind is ignored with a warning.
func NewRuleSet(warn func(msg string), rules ...Rule) *RuleSet {
	set := &RuleSet{byKind: make(map[RuleKind][]Rule)}
	for _, rule := range rules {
		if rule.Kind.catchAll() && len(set.byKind[rule.Kind]) > 0 {
			if warn != nil {
				warn(fmt.Sprintf("link rule %q ignored: a %s rule is already registered (%q)",
					rule.Name, rule.Kind, set.byKind[rule.Kind][0].Name))
			}
			continue
		}
		set.byKind[rule.Kind] = append(set.byKind[rule.Kind], rule)
	}
	return set
}

// Rules returns the rules of a kind in registration order.
func (s *RuleSet) Rules(kind RuleKind) []Rule {
	return s.byKind[kind]
}

// classify applies the first rule matching the segment, then the fallback.
func (s *RuleSet) classify(resolver *Resolver, link *Link, segment string, kind, fallback RuleKind) RuleKind {
	for _, rule := range s.byKind[kind] {
		if rule.Match != nil && rule.Match(segment) {
			rule.apply(resolver, link, segment)
			return kind
		}
	}
	if rules := s.byKind[fallback]; len(rules) > 0 {
		rules[0].apply(resolver, link, segment)
	}
	return fallback
}

/* Default rules */

var defaultRuleSet = NewRuleSet(nil,
	Rule{
		Name:  "image",
		Kind:  ExtName,
		Match: hasKind(medias.KindPicture),
		Processors: []RuleProcessor{
			{Apply: func(r *Resolver, link *Link, _ string) {
				r.attach(link, Image)
			}},
		},
	},
	Rule{
		Name:       "video",
		Kind:       ExtName,
		Match:      hasKind(medias.KindVideo),
		Processors: mediaProcessors(Video, func(o Options) bool { return o.ProcessVideo }),
	},
	Rule{
		Name:       "audio",
		Kind:       ExtName,
		Match:      hasKind(medias.KindAudio),
		Processors: mediaProcessors(Audio, func(o Options) bool { return o.ProcessAudio }),
	},
	Rule{
		Name:  "diagram",
		Kind:  ExtName,
		Match: hasKind(medias.KindDiagram),
		Processors: []RuleProcessor{
			{Apply: func(r *Resolver, link *Link, _ string) {
				r.attach(link, Diagram)
			}},
		},
	},
	Rule{
		Name:  "note-with-extension",
		Kind:  ExtName,
		Match: hasKind(medias.KindNote),
		Processors: []RuleProcessor{
			{Apply: func(r *Resolver, link *Link, _ string) {
				r.linkNote(link)
			}},
		},
	},
	Rule{
		Name:  "file",
		Kind:  ExtName,
		Match: hasKind(medias.KindDocument),
		Processors: []RuleProcessor{
			{Apply: func(r *Resolver, link *Link, _ string) {
				if r.locate(link) {
					link.Kind = LinkFile
				}
			}},
		},
	},
	Rule{
		Name: "note",
		Kind: NoExtName,
		Processors: []RuleProcessor{
			{Apply: func(r *Resolver, link *Link, _ string) {
				r.linkNote(link)
			}},
		},
	},
	Rule{
		Name:  "size",
		Kind:  Decorator,
		Match: regexSize.MatchString,
		Processors: []RuleProcessor{
			{Apply: func(_ *Resolver, link *Link, segment string) {
				applySize(link, segment)
			}},
		},
	},
	Rule{
		Name: "alias",
		Kind: Alias,
		Processors: []RuleProcessor{
			{Apply: func(_ *Resolver, link *Link, segment string) {
				link.Alias = strings.TrimSpace(segment)
			}},
		},
	},
)

// DefaultRuleSet returns the rules used when none are configured.
func DefaultRuleSet() *RuleSet {
	return defaultRuleSet
}

var regexSize = regexp.MustCompile(`^\s*\d+(x\d+)?\s*$`)

// applySize reads "width" or "widthxheight".
func applySize(link *Link, segment string) {
	width, height, _ := strings.Cut(strings.TrimSpace(segment), "x")
	link.Width, _ = strconv.Atoi(width)
	link.Height, _ = strconv.Atoi(height)
}

func hasKind(kind medias.Kind) func(segment string) bool {
	return func(segment string) bool {
		target, _, _ := strings.Cut(segment, "#")
		return path.Ext(target) != "" && medias.DetectKind(target) == kind
	}
}

// mediaProcessors hides video and audio links unless the format can display them
// or the preset explicitly asks to process them.
func mediaProcessors(attachmentType AttachmentType, enabled func(Options) bool) []RuleProcessor {
	var withMedia, withoutMedia []format.Format
	for _, f := range format.All {
		if f.SupportsMedia() {
			withMedia = append(withMedia, f)
		} else {
			withoutMedia = append(withoutMedia, f)
		}
	}
	return []RuleProcessor{
		{
			Formats: withMedia,
			Apply: func(r *Resolver, link *Link, _ string) {
				r.attach(link, attachmentType)
			},
		},
		{
			Formats: withoutMedia,
			Apply: func(r *Resolver, link *Link, _ string) {
				if enabled(r.options) {
					r.attach(link, attachmentType)
					return
				}
				if r.locate(link) {
					link.Kind = LinkHidden
				}
			},
		},
	}
}
