package markdown

import (
	"gopkg.in/yaml.v3"
)

// DiagramMarker is the front matter attribute identifying Excalidraw drawings.
const DiagramMarker = "excalidraw-plugin"

// FrontMatter represents the Front Matter
type FrontMatter string

func (f FrontMatter) AsNode() (*yaml.Node, error) {
	var frontMatter = new(yaml.Node)
	if err := yaml.Unmarshal([]byte(f), frontMatter); err != nil {
		return nil, err
	}
	if frontMatter.Kind > 0 { // Happen when no Front Matter is present
		frontMatter = frontMatter.Content[0]
	}
	return frontMatter, nil
}

func (f FrontMatter) AsMap() (map[string]any, error) {
	var attributes = make(map[string]any)
	if err := yaml.Unmarshal([]byte(f), attributes); err != nil {
		return nil, err
	}
	return attributes, nil
}

// IsDiagram reports if the front matter flags the note as an Excalidraw drawing.
func (f FrontMatter) IsDiagram() bool {
	attributes, err := f.AsMap()
	if err != nil {
		return false
	}
	_, ok := attributes[DiagramMarker]
	return ok
}
