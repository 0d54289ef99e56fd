package core

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/jinzhu/copier"
	"github.com/julien-sobczak/the-noteexporter/internal/convert"
	"github.com/julien-sobczak/the-noteexporter/internal/format"
	"github.com/julien-sobczak/the-noteexporter/internal/medias"
	"github.com/julien-sobczak/the-noteexporter/internal/placeholder"
	"github.com/julien-sobczak/the-noteexporter/pkg/resync"
	"github.com/julien-sobczak/the-noteexporter/pkg/text"
	"github.com/pelletier/go-toml/v2"
	"golang.org/x/exp/slices"
)

// How many parent directories to traverse before considering a directory as not a vault
const maxDepth = 10

// Default .nte/config content
const DefaultConfig = `
[diagrams]
command = "excalidraw-brute-export-cli"

[[presets]]
name = "typst"
format = "typst"
output_dir = "${vaultDir}/export/typst"
attachment_dir = "${outputDir}/attachments"
recursive_embeds = true
diagram_type = "svg"
content_template = '''
#let callout(kind: "note", title: none, fold: none, body) = block(
  fill: luma(240),
  inset: 8pt,
  radius: 4pt,
  width: 100%,
)[
  #if title != none [*#title* \ ]
  #body
]

${content}'''

[[presets]]
name = "myst"
format = "myst"
output_dir = "${vaultDir}/export/myst"
attachment_dir = "${outputDir}/attachments"
recursive_embeds = true

[[presets]]
name = "hmd"
format = "hmd"
output_dir = "${vaultDir}/export/hmd"
attachment_dir = "${outputDir}/attachments"
recursive_embeds = true
process_video = true
process_audio = true

[[presets]]
name = "plain"
format = "plain"
output_dir = "${vaultDir}/export/plain"
attachment_dir = "${outputDir}"
`

// Default .nteignore content
const DefaultIgnore = `
.trash/
export/
`

// Diagram commands with a special meaning
const (
	DiagramCommandRandom = "random"
)

func init() {
	// Report validation errors using the configuration keys
	validation.ErrorTag = "toml"
}

var (
	// Lazy-load configuration and ensure a single read
	configOnce      resync.Once
	configSingleton *Config
)

// Note: Fields must be public for toml package to unmarshall
type ConfigFile struct {
	Diagrams ConfigDiagrams     `toml:"diagrams"`
	Tags     []ConfigTagMapping `toml:"tags"`
	Presets  []Preset           `toml:"presets"`
}
type ConfigDiagrams struct {
	Command string `toml:"command"`
}

// ConfigTagMapping remaps a custom inline HTML tag.
//
//	[[tags]]
//	tag = "span"
//	class = "warning"
//	template = "#text(fill: red)[${tagContent}]"
//	formats = ["typst"]
type ConfigTagMapping struct {
	Tag      string   `toml:"tag"`
	Class    string   `toml:"class"`
	Template string   `toml:"template"`
	Formats  []string `toml:"formats"`
}

func (m ConfigTagMapping) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Tag, validation.Required, validation.Match(regexTagName)),
		validation.Field(&m.Template, validation.Required, validation.By(requireToken(placeholder.TagContent))),
		validation.Field(&m.Formats, validation.Required, validation.Each(validation.In(formatValues()...))),
	)
}

// TagMapping returns the mapping expected by converters.
func (m ConfigTagMapping) TagMapping() convert.TagMapping {
	var formats []format.Format
	for _, f := range m.Formats {
		formats = append(formats, format.Format(strings.ToLower(f)))
	}
	return convert.TagMapping{
		Tag:      strings.ToLower(m.Tag),
		Class:    m.Class,
		Template: m.Template,
		Formats:  formats,
	}
}

var (
	regexTagName    = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9-]*$`)
	regexPresetName = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
)

// Preset groups the settings of an export.
// Templates support the placeholders of the placeholder package.
type Preset struct {
	Name   string `toml:"name"`
	Format string `toml:"format"`

	// Output file
	OutputDir       string `toml:"output_dir"`       // Default to ${noteDir}
	OutputBasename  string `toml:"output_basename"`  // Default to ${noteName}
	ContentTemplate string `toml:"content_template"` // Default to ${content}

	// Attachment references (must contain ${attachmentFileName})
	ImageTemplate string `toml:"image_template"`
	VideoTemplate string `toml:"video_template"`
	AudioTemplate string `toml:"audio_template"`
	AttachmentDir string `toml:"attachment_dir"` // Default to ${outputDir}

	RecursiveEmbeds   bool `toml:"recursive_embeds"`
	RenameAttachments bool `toml:"rename_attachments"`
	ProcessVideo      bool `toml:"process_video"`
	ProcessAudio      bool `toml:"process_audio"`

	// Excalidraw drawings
	DiagramType  string `toml:"diagram_type"` // png or svg
	DiagramScale int    `toml:"diagram_scale"`

	// Directory (relative to the vault) copied in the output directory
	AssetsDir string `toml:"assets_dir"`
}

func (p Preset) String() string {
	return fmt.Sprintf("%s (%s)", p.Name, p.Format)
}

// OutputFormat returns the format of the exported files.
func (p Preset) OutputFormat() format.Format {
	return format.Format(strings.ToLower(p.Format))
}

func (p Preset) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Name, validation.Required, validation.Match(regexPresetName)),
		validation.Field(&p.Format, validation.Required, validation.In(formatValues()...)),
		validation.Field(&p.ImageTemplate, validation.By(requireToken(placeholder.AttachmentFileName))),
		validation.Field(&p.VideoTemplate, validation.By(requireToken(placeholder.AttachmentFileName))),
		validation.Field(&p.AudioTemplate, validation.By(requireToken(placeholder.AttachmentFileName))),
		validation.Field(&p.DiagramType, validation.In("png", "svg")),
		validation.Field(&p.DiagramScale, validation.Min(0), validation.Max(10)),
		validation.Field(&p.AssetsDir, validation.By(relativePath)),
	)
}

// withDefaults fills the optional settings.
func (p *Preset) withDefaults() {
	p.Format = strings.ToLower(p.Format)
	if p.OutputDir == "" {
		p.OutputDir = placeholder.NoteDir
	}
	if p.OutputBasename == "" {
		p.OutputBasename = placeholder.NoteName
	}
	if p.ContentTemplate == "" {
		p.ContentTemplate = placeholder.Content
	}
	if p.AttachmentDir == "" {
		p.AttachmentDir = placeholder.OutputDir
	}
	if p.DiagramType == "" {
		p.DiagramType = "svg"
	}
	if p.DiagramScale == 0 {
		p.DiagramScale = 1
	}
}

// Snapshot returns a deep copy that the caller can freely modify.
func (p *Preset) Snapshot() *Preset {
	var result Preset
	if err := copier.CopyWithOption(&result, p, copier.Option{DeepCopy: true}); err != nil {
		// Only happens with incompatible types
		panic(err)
	}
	return &result
}

func formatValues() []any {
	var values []any
	for _, name := range format.Names() {
		values = append(values, name)
	}
	return values
}

func requireToken(token string) validation.RuleFunc {
	return func(value any) error {
		s, _ := value.(string)
		if s != "" && !strings.Contains(s, token) {
			return fmt.Errorf("must contain %s", token)
		}
		return nil
	}
}

func relativePath(value any) error {
	s, _ := value.(string)
	if filepath.IsAbs(s) || strings.HasPrefix(filepath.ToSlash(filepath.Clean(s)), "..") {
		return errors.New("must be relative to the vault")
	}
	return nil
}

// Validate checks the presets and the tag mappings.
func (f *ConfigFile) Validate() error {
	names := make(map[string]bool)
	for i, preset := range f.Presets {
		if err := preset.Validate(); err != nil {
			return fmt.Errorf("invalid preset #%d %q: %w", i+1, preset.Name, err)
		}
		if names[preset.Name] {
			return fmt.Errorf("duplicate preset %q", preset.Name)
		}
		names[preset.Name] = true
	}
	for i, mapping := range f.Tags {
		if err := mapping.Validate(); err != nil {
			return fmt.Errorf("invalid tag mapping #%d <%s>: %w", i+1, mapping.Tag, err)
		}
	}
	return nil
}

// PresetNames returns the names of the presets in declaration order.
func (f *ConfigFile) PresetNames() []string {
	var names []string
	for _, preset := range f.Presets {
		names = append(names, preset.Name)
	}
	return names
}

// TagMappings returns the mappings expected by converters.
func (f *ConfigFile) TagMappings() []convert.TagMapping {
	var result []convert.TagMapping
	for _, mapping := range f.Tags {
		result = append(result, mapping.TagMapping())
	}
	return result
}

type IgnoreFile struct {
	Entries GlobPaths
}

func (i *IgnoreFile) MustExcludeFile(path string, dir bool) bool {
	path = strings.Trim(path, "/")
	if dir {
		path += "/"
	}
	return i.Entries.Match(path)
}

type GlobPath string

func (g GlobPath) Negate() bool {
	return strings.HasPrefix(string(g), "!")
}

func (g GlobPath) Expr() string {
	return strings.TrimPrefix(string(g), "!")
}

// Match tests a given path. NB: Directories must have a trailing /.
func (g GlobPath) Match(path string) bool {
	// filepath.Match does not support the gitignore syntax (ex: **)
	if runtime.GOOS == "windows" {
		path = filepath.ToSlash(path)
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	expr := g.Expr()
	leadingSlash := strings.HasPrefix(expr, "/")
	trailingSlash := strings.HasSuffix(expr, "/")
	// "export/" => `/export/.*?` to match "export/index.md" but not "myexport/"
	if !leadingSlash {
		expr = "/" + expr
	}
	if trailingSlash {
		expr = expr + "**/"
	}

	var partsPatterns []string
	for _, part := range strings.Split(expr, "**/") {
		var quoted []string
		for _, subpart := range strings.Split(part, "*") {
			quoted = append(quoted, regexp.QuoteMeta(subpart))
		}
		partsPatterns = append(partsPatterns, strings.Join(quoted, "[^/]*?")) // * => [^/]*
	}
	pattern := strings.Join(partsPatterns, "(?:.*?/)?") // **/ => 0-n directories

	if leadingSlash {
		pattern = "^" + pattern
	}

	return regexp.MustCompile(pattern).MatchString(path)
}

type GlobPaths []GlobPath

// Match tests if a file path satisfies the conditions.
func (g GlobPaths) Match(path string) bool {
	foundMatch := false
	for _, entry := range g {
		if entry.Match(path) {
			if entry.Negate() {
				// An exclusion matched, the file must no longer be included.
				return false
			}
			foundMatch = true
		}
	}
	return foundMatch
}

type Config struct {
	// Absolute path to the vault
	RootDirectory string

	// .nte/config content
	ConfigFile ConfigFile

	// .nteignore content
	IgnoreFile IgnoreFile

	// Toggle this flag to skip writing files
	DryRun bool

	// Number of notes exported concurrently by a batch
	Parallel int
}

func CurrentConfig() *Config {
	configOnce.Do(func() {
		var err error
		configSingleton, err = ReadConfigFromDirectory(currentHome())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Unable to read current configuration: %v\n", err)
			os.Exit(1)
		}
		if configSingleton == nil {
			fmt.Fprintln(os.Stderr, "fatal: not an Obsidian vault (or any of the parent directories): .nte or .obsidian")
			os.Exit(1)
		}
	})
	return configSingleton
}

// SetParallel overrides the number of workers used by batch exports.
func (c *Config) SetParallel(parallel int) *Config {
	c.Parallel = parallel
	return c
}

// Preset returns a copy of the preset with the given name.
func (c *Config) Preset(name string) (*Preset, error) {
	for _, preset := range c.ConfigFile.Presets {
		if preset.Name == name {
			return preset.Snapshot(), nil
		}
	}
	return nil, fmt.Errorf("unknown preset %q (available: %s)", name, strings.Join(c.ConfigFile.PresetNames(), ", "))
}

// DiagramExporter returns the exporter of Excalidraw drawings.
func (c *Config) DiagramExporter() (medias.DiagramExporter, error) {
	if c.ConfigFile.Diagrams.Command == DiagramCommandRandom {
		return medias.NewRandomExporter(), nil
	}
	exporter, err := medias.NewCommandExporter(c.ConfigFile.Diagrams.Command)
	if err != nil {
		return nil, err
	}
	exporter.OnPreGeneration(func(cmd string, args ...string) {
		CurrentLogger().Debugf("Running command %q", cmd+" "+strings.Join(args, " "))
	})
	return exporter, nil
}

func currentHome() string {
	// Supports overriding the vault directory mainly for testing purposes. Ex:
	//
	//   $ env NTE_HOME=./examples go run main.go export Go.md --preset typst
	if path, ok := os.LookupEnv("NTE_HOME"); ok {
		abspath, err := filepath.Abs(path)
		if err != nil {
			fmt.Fprintln(os.Stderr, "Failed to evaluate $NTE_HOME")
			os.Exit(1)
		}
		if _, err := os.Stat(abspath); os.IsNotExist(err) {
			fmt.Fprintln(os.Stderr, "Path in $NTE_HOME undefined")
			os.Exit(1)
		}
		return abspath
	}

	cwd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to determine current directory: %v\n", err)
		os.Exit(1)
	}
	return cwd
}

// ReadConfigFromDirectory loads the configuration by searching for a .nte (or .obsidian)
// directory in the given directory or any parent directories.
// It returns nil when no vault is found.
func ReadConfigFromDirectory(path string) (*Config, error) {
	rootPath, err := findVaultRoot(path)
	if err != nil || rootPath == "" {
		return nil, err
	}

	configFile, err := readOrDefault(filepath.Join(rootPath, ".nte", "config"), DefaultConfig, parseConfigFile)
	if err != nil {
		return nil, err
	}
	if err := configFile.Validate(); err != nil {
		return nil, fmt.Errorf("invalid .nte/config file: %w", err)
	}
	for i := range configFile.Presets {
		configFile.Presets[i].withDefaults()
	}

	ignoreFile, err := readOrDefault(filepath.Join(rootPath, ".nteignore"), DefaultIgnore, parseIgnoreFile)
	if err != nil {
		return nil, err
	}

	return &Config{
		RootDirectory: rootPath,
		ConfigFile:    *configFile,
		IgnoreFile:    *ignoreFile,
	}, nil
}

// findVaultRoot returns the first directory containing .nte or .obsidian.
func findVaultRoot(path string) (string, error) {
	rootPath, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	for i := 0; i < maxDepth; i++ {
		for _, marker := range []string{".nte", ".obsidian"} {
			_, err := os.Stat(filepath.Join(rootPath, marker))
			if err == nil {
				return rootPath, nil
			}
			if !os.IsNotExist(err) {
				return "", fmt.Errorf("error while searching for configuration directory: %w", err)
			}
		}
		parent := filepath.Dir(rootPath)
		if parent == rootPath {
			// Root directory detected
			return "", nil
		}
		rootPath = parent
	}
	return "", nil
}

// readOrDefault parses a configuration file, or the default content when the file does not exist.
func readOrDefault[T any](path, defaultContent string, parse func(string) (*T, error)) (*T, error) {
	name := filepath.Base(path)
	content, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		result, err := parse(defaultContent)
		if err != nil {
			return nil, fmt.Errorf("default %s is broken: %w", name, err)
		}
		return result, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s file: %w", name, err)
	}
	result, err := parse(string(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s file: %w", name, err)
	}
	return result, nil
}

func parseConfigFile(content string) (*ConfigFile, error) {
	r := strings.NewReader(content)
	d := toml.NewDecoder(r)
	d.DisallowUnknownFields()
	var result ConfigFile
	err := d.Decode(&result)
	return &result, err
}

func parseIgnoreFile(content string) (*IgnoreFile, error) {
	var result IgnoreFile
	scanner := bufio.NewScanner(strings.NewReader(content))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if text.IsBlank(line) {
			continue
		}
		if strings.HasPrefix(line, "#") {
			// ignore comment
			continue
		}
		result.Entries = append(result.Entries, GlobPath(line))
	}
	return &result, scanner.Err()
}

// InitConfigFromDirectory creates the .nte configuration directory and the .nteignore file.
func InitConfigFromDirectory(path string) (*Config, error) {
	if _, err := os.Stat(filepath.Join(path, ".nte")); err == nil {
		// Do not override current configuration
		return nil, fmt.Errorf("current configuration detected")
	}

	nteConfigPath := filepath.Join(path, ".nte", "config")
	if err := os.MkdirAll(filepath.Dir(nteConfigPath), 0755); err != nil {
		return nil, err
	}
	if err := os.WriteFile(nteConfigPath, []byte(strings.TrimLeft(DefaultConfig, "\n")), 0644); err != nil {
		return nil, err
	}

	nteIgnorePath := filepath.Join(path, ".nteignore")
	_, err := os.Stat(nteIgnorePath)
	if os.IsNotExist(err) { // Do not override existing file!
		if err := os.WriteFile(nteIgnorePath, []byte(strings.TrimLeft(DefaultIgnore, "\n")), 0644); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	}

	// Reread configuration
	return ReadConfigFromDirectory(path)
}

// SupportedNote reports if the file must be exported by a batch.
func (c *Config) SupportedNote(path string) bool {
	return slices.Contains([]string{".md", ".markdown"}, strings.ToLower(filepath.Ext(path))) &&
		!strings.HasSuffix(strings.ToLower(path), ".excalidraw.md")
}
